package relate

import "context"

// RowFunc decodes the current row of an open cursor into a value. It
// is called once per row and must not advance or close the cursor.
type RowFunc[T any] func(Rows) (T, error)

/*
QueryOne executes the query and decodes exactly one row.

	name, err := relate.QueryOne(ctx, conn, q, func(rows relate.Rows) (string, error) {
		var s string
		err := rows.Scan(&s)
		return s, err
	})

An empty result set fails with ErrNoRows, more than one row with
ErrMultiRows.
*/
func QueryOne[T any](ctx context.Context, conn Conn, q *Query, decode RowFunc[T]) (T, error) {
	var v T
	err := q.QueryRows(ctx, conn, func(rows Rows) error {
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return ErrNoRows
		}
		var err error
		v, err = decode(rows)
		if err != nil {
			return err
		}
		if rows.Next() {
			return ErrMultiRows
		}
		return rows.Err()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// QueryMaybe executes the query and decodes at most one row. The
// second result reports whether a row was present; more than one row
// fails with ErrMultiRows.
func QueryMaybe[T any](ctx context.Context, conn Conn, q *Query, decode RowFunc[T]) (T, bool, error) {
	var v T
	found := false
	err := q.QueryRows(ctx, conn, func(rows Rows) error {
		if !rows.Next() {
			return rows.Err()
		}
		var err error
		v, err = decode(rows)
		if err != nil {
			return err
		}
		found = true
		if rows.Next() {
			return ErrMultiRows
		}
		return rows.Err()
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, found, nil
}

// QuerySlice executes the query and decodes every row into a slice,
// in cursor order.
func QuerySlice[T any](ctx context.Context, conn Conn, q *Query, decode RowFunc[T]) ([]T, error) {
	var out []T
	err := q.QueryRows(ctx, conn, func(rows Rows) error {
		for rows.Next() {
			v, err := decode(rows)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QuerySet executes the query and decodes every row into a set.
// Duplicate keys collapse.
func QuerySet[K comparable](ctx context.Context, conn Conn, q *Query, decode RowFunc[K]) (map[K]struct{}, error) {
	out := make(map[K]struct{})
	err := q.QueryRows(ctx, conn, func(rows Rows) error {
		for rows.Next() {
			k, err := decode(rows)
			if err != nil {
				return err
			}
			out[k] = struct{}{}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryMap executes the query and decodes every row into a key and a
// value. A later duplicate key overwrites the earlier entry.
func QueryMap[K comparable, V any](ctx context.Context, conn Conn, q *Query, decode func(Rows) (K, V, error)) (map[K]V, error) {
	out := make(map[K]V)
	err := q.QueryRows(ctx, conn, func(rows Rows) error {
		for rows.Next() {
			k, v, err := decode(rows)
			if err != nil {
				return err
			}
			out[k] = v
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Collector is an arbitrary insertable container QueryCollect feeds
// decoded rows into.
type Collector[T any] interface {
	Collect(T)
}

// CollectorFunc adapts a function to the Collector capability.
type CollectorFunc[T any] func(T)

// Collect calls f(v).
func (f CollectorFunc[T]) Collect(v T) { f(v) }

// QueryCollect executes the query and feeds every decoded row to the
// collector, in cursor order.
func QueryCollect[T any](ctx context.Context, conn Conn, q *Query, decode RowFunc[T], into Collector[T]) error {
	return q.QueryRows(ctx, conn, func(rows Rows) error {
		for rows.Next() {
			v, err := decode(rows)
			if err != nil {
				return err
			}
			into.Collect(v)
		}
		return rows.Err()
	})
}
