package relate_test

import (
	"context"
	"fmt"

	"github.com/gregghz/relate"
)

// fakeConn implements the Conn capability in memory so tests can count
// prepared statements and verify the close discipline of streams and
// pagers without a database.
type fakeConn struct {
	driver string
	stmts  []*fakeStmt

	// run produces the rows for a Query call.
	run func(sql string, args []any) ([][]any, error)

	// exec outcome
	lastID   int64
	affected int64
	execErr  error
}

func (c *fakeConn) Prepare(ctx context.Context, sql string, opt relate.StmtOptions) (relate.Stmt, error) {
	st := &fakeStmt{conn: c, sql: sql, opt: opt}
	c.stmts = append(c.stmts, st)
	return st, nil
}

func (c *fakeConn) DriverInfo() string {
	return c.driver
}

type fakeStmt struct {
	conn   *fakeConn
	sql    string
	opt    relate.StmtOptions
	rows   *fakeRows
	closes int
}

func (s *fakeStmt) Query(ctx context.Context, args ...any) (relate.Rows, error) {
	data, err := s.conn.run(s.sql, args)
	if err != nil {
		return nil, err
	}
	s.rows = &fakeRows{data: data}
	return s.rows, nil
}

func (s *fakeStmt) Exec(ctx context.Context, args ...any) (relate.Result, error) {
	if s.conn.execErr != nil {
		return nil, s.conn.execErr
	}
	return fakeResult{id: s.conn.lastID, affected: s.conn.affected}, nil
}

func (s *fakeStmt) Close() error {
	s.closes++
	return nil
}

type fakeRows struct {
	data   [][]any
	idx    int
	closes int
}

func (r *fakeRows) Next() bool {
	if r.idx < len(r.data) {
		r.idx++
		return true
	}
	return false
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) > len(row) {
		return fmt.Errorf("scan: %d targets for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int:
			p2, ok := row[i].(int)
			if !ok {
				return fmt.Errorf("scan: column %d is %T, not int", i, row[i])
			}
			*p = p2
		case *string:
			p2, ok := row[i].(string)
			if !ok {
				return fmt.Errorf("scan: column %d is %T, not string", i, row[i])
			}
			*p = p2
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	r.closes++
	return nil
}

type fakeResult struct {
	id       int64
	affected int64
}

func (r fakeResult) LastInsertId() (int64, error) { return r.id, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

// staticConn returns a fakeConn serving the same rows for any query.
func staticConn(data [][]any) *fakeConn {
	return &fakeConn{
		driver: "fake",
		run: func(sql string, args []any) ([][]any, error) {
			return data, nil
		},
	}
}

// intRows builds single-column rows 0..n-1.
func intRows(n int) [][]any {
	out := make([][]any, n)
	for i := range out {
		out[i] = []any{i}
	}
	return out
}

func scanInt(rows relate.Rows) (int, error) {
	var n int
	err := rows.Scan(&n)
	return n, err
}
