// Package relate is a SQL template parser, parameter binder and executor.
/*
relate takes a literal SQL string with named placeholders, rewrites it
into the positional form the database driver expects and keeps track of
which positions belong to which name:

	q := relate.SQL("SELECT id, name FROM users WHERE id = {id}").
		Bind("id", 42)
	defer q.Close()

	user, err := relate.QueryOne(ctx, conn, q, func(rows relate.Rows) (User, error) {
		var u User
		err := rows.Scan(&u.ID, &u.Name)
		return u, err
	})

Placeholders are written as {name}. Literal braces are escaped by
doubling them: {{ and }}. A name may appear any number of times; a
single Bind call fills every occurrence.

List parameters change the shape of the query text and must be declared
before the query is built:

	q := relate.SQL("SELECT id FROM users WHERE id IN ({ids})").
		WithCommaGroup("ids", len(ids)).
		BindMany("ids", ids...)

	q := relate.SQL("INSERT INTO points (x, y) VALUES {rows}").
		WithTupleGroup("rows", []string{"x", "y"}, len(points)).
		BindTuples("rows", len(points), func(i int, t *relate.Tuple) {
			t.Bind("x", points[i].X).Bind("y", points[i].Y)
		})

Use relate.PostgreSQL.SQL(...) or relate.SetDialect(relate.PostgreSQL)
to emit numbered $1, $2... markers instead of the default ?.

Queries execute against the small Conn capability; NewConn adapts any
database/sql handle. Results come back as a scalar, a shaped collection
(QueryOne, QueryMaybe, QuerySlice, QuerySet, QueryMap, QueryCollect), a
lazily pulled RowStream, or an unbounded paginated sequence (Pager).
*/
package relate
