package relate

import (
	"context"
	"database/sql"
	"math"
	"strings"
)

// StmtOptions carries preparation hints. Adapters are free to ignore
// hints their driver has no use for.
type StmtOptions struct {
	// GeneratedKeys requests that generated-key reporting is enabled
	// for the prepared statement.
	GeneratedKeys bool
	// ForwardOnly requests a forward-only, read-only cursor.
	ForwardOnly bool
	// FetchSize hints how many rows the driver should fetch per round
	// trip. See streamFetchSize for the MySQL special case.
	FetchSize int
}

// Conn is the prepared-statement capability queries execute against.
// NewConn adapts a database/sql handle; tests and exotic drivers can
// implement it directly.
type Conn interface {
	Prepare(ctx context.Context, query string, opt StmtOptions) (Stmt, error)

	// DriverInfo identifies the underlying driver, used only to
	// special-case drivers with known streaming quirks.
	DriverInfo() string
}

// Stmt is an open prepared statement. Arguments are bound by position:
// args[0] fills slot 1 and so on.
type Stmt interface {
	Query(ctx context.Context, args ...any) (Rows, error)
	Exec(ctx context.Context, args ...any) (Result, error)
	Close() error
}

// Rows is an open cursor over a result set. *sql.Rows satisfies it.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Result reports the outcome of a statement execution, including the
// generated key of an insert where the driver supports it.
// sql.Result satisfies it.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// defaultFetchSize is the row count hinted per round trip for
// streaming queries.
const defaultFetchSize = 100

// streamFetchSize adjusts a fetch-size hint for the driver at hand.
// MySQL drivers buffer the entire result set for any finite fetch
// size; the protocol streams row by row only when the fetch size is
// the MinInt32 sentinel, so that driver is special-cased by name.
func streamFetchSize(driverInfo string, fetchSize int) int {
	if strings.Contains(strings.ToLower(driverInfo), "mysql") {
		return math.MinInt32
	}
	return fetchSize
}

// Preparer is the slice of database/sql the adapter needs. *sql.DB,
// *sql.Tx and *sql.Conn all satisfy it.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

/*
NewConn adapts a database/sql handle to the Conn capability:

	db, err := sql.Open("sqlite3", ":memory:")
	// ...
	conn := relate.NewConn(db, "sqlite3")

db may be a *sql.DB, *sql.Tx or *sql.Conn. driverName is reported by
DriverInfo and should be the name the driver registered with
database/sql.
*/
func NewConn(db Preparer, driverName string) *SQLConn {
	return &SQLConn{db: db, driver: driverName}
}

// SQLConn is the database/sql implementation of Conn.
type SQLConn struct {
	db     Preparer
	driver string
}

// Prepare compiles the statement. database/sql exposes no fetch-size
// or cursor-mode controls, so the options are accepted for interface
// compatibility and dropped.
func (c *SQLConn) Prepare(ctx context.Context, query string, opt StmtOptions) (Stmt, error) {
	st, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return sqlStmt{st}, nil
}

// DriverInfo returns the driver name the adapter was created with.
func (c *SQLConn) DriverInfo() string {
	return c.driver
}

type sqlStmt struct {
	st *sql.Stmt
}

func (s sqlStmt) Query(ctx context.Context, args ...any) (Rows, error) {
	return s.st.QueryContext(ctx, args...)
}

func (s sqlStmt) Exec(ctx context.Context, args ...any) (Result, error) {
	return s.st.ExecContext(ctx, args...)
}

func (s sqlStmt) Close() error {
	return s.st.Close()
}
