package relate

import "context"

// prepare builds the query and opens a statement for it. On success
// the caller owns the returned statement and must close it.
func (q *Query) prepare(ctx context.Context, conn Conn, opt StmtOptions) (Stmt, []any, error) {
	sqlText, args, err := q.Build()
	if err != nil {
		return nil, nil, err
	}
	st, err := conn.Prepare(ctx, sqlText, opt)
	if err != nil {
		return nil, nil, err
	}
	return st, args, nil
}

/*
Exec builds and executes the query for its effect.

	err := relate.SQL("DELETE FROM sessions WHERE user_id = {id}").
		Bind("id", 42).
		Exec(ctx, conn)

The statement is closed before Exec returns, on success and on error.
*/
func (q *Query) Exec(ctx context.Context, conn Conn) error {
	st, args, err := q.prepare(ctx, conn, StmtOptions{})
	if err != nil {
		return err
	}
	_, err = st.Exec(ctx, args...)
	if cerr := st.Close(); err == nil {
		err = cerr
	}
	return err
}

// ExecUpdate builds and executes the query and returns the number of
// rows the statement affected. Same close discipline as Exec.
func (q *Query) ExecUpdate(ctx context.Context, conn Conn) (int64, error) {
	st, args, err := q.prepare(ctx, conn, StmtOptions{})
	if err != nil {
		return 0, err
	}
	res, err := st.Exec(ctx, args...)
	var count int64
	if err == nil {
		count, err = res.RowsAffected()
	}
	if cerr := st.Close(); err == nil {
		err = cerr
	}
	return count, err
}

/*
QueryRows builds and executes the query and hands the open cursor to
fn. The cursor and the statement are closed when fn returns, whatever
fn did:

	err := q.QueryRows(ctx, conn, func(rows relate.Rows) error {
		for rows.Next() {
			// ...
		}
		return rows.Err()
	})

fn must not retain the cursor.
*/
func (q *Query) QueryRows(ctx context.Context, conn Conn, fn func(Rows) error) error {
	st, args, err := q.prepare(ctx, conn, StmtOptions{})
	if err != nil {
		return err
	}
	rows, err := st.Query(ctx, args...)
	if err != nil {
		st.Close()
		return err
	}
	err = fn(rows)
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	if cerr := st.Close(); err == nil {
		err = cerr
	}
	return err
}

/*
InsertReturning executes an insert prepared with generated-key
reporting and decodes the key through the supplied decoder:

	ts, err := relate.InsertReturning(ctx, conn, q,
		func(res relate.Result) (time.Time, error) {
			id, err := res.LastInsertId()
			return time.UnixMilli(id), err
		})

Statement close is unconditional, including on decode failure. For the
common integer key types use InsertReturningInt64 or
InsertReturningInt.
*/
func InsertReturning[T any](ctx context.Context, conn Conn, q *Query, decode func(Result) (T, error)) (T, error) {
	var zero T
	st, args, err := q.prepare(ctx, conn, StmtOptions{GeneratedKeys: true})
	if err != nil {
		return zero, err
	}
	res, err := st.Exec(ctx, args...)
	var v T
	if err == nil {
		v, err = decode(res)
	}
	if cerr := st.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}

// InsertReturningInt64 executes an insert and returns the generated
// key as int64.
func (q *Query) InsertReturningInt64(ctx context.Context, conn Conn) (int64, error) {
	return InsertReturning(ctx, conn, q, func(res Result) (int64, error) {
		return res.LastInsertId()
	})
}

// InsertReturningInt executes an insert and returns the generated key
// as int.
func (q *Query) InsertReturningInt(ctx context.Context, conn Conn) (int, error) {
	return InsertReturning(ctx, conn, q, func(res Result) (int, error) {
		id, err := res.LastInsertId()
		return int(id), err
	})
}
