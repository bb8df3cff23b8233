package relate

import (
	"context"
	"fmt"
	"iter"
)

/*
RowStream is a pull-based, single-pass sequence of decoded rows backed
by an open cursor. It keeps a one-row lookahead: HasNext reports it,
Next decodes the buffered row and advances. When the lookahead finds no
further row the stream closes its cursor and statement on its own.

	s, err := relate.QueryStream(ctx, conn, q, decodeUser)
	if err != nil {
		// ...
	}
	defer s.Close()
	for s.HasNext() {
		u, err := s.Next()
		// ...
	}
	if err := s.Err(); err != nil {
		// ...
	}

A consumer that abandons the stream before exhaustion MUST call Close;
nothing reclaims the cursor otherwise. Close after exhaustion is a
harmless no-op, so the deferred call above is the safe default.
*/
type RowStream[T any] struct {
	stmt   Stmt
	rows   Rows
	decode RowFunc[T]
	ready  bool
	closed bool
	err    error
}

/*
QueryStream builds and executes the query with a forward-only cursor
and hands back a RowStream. Ownership of the statement and cursor
transfers to the stream; the caller releases them through the stream
only (see RowStream for the abandonment obligation).

An empty result set yields an already-closed stream whose HasNext is
false from the start.
*/
func QueryStream[T any](ctx context.Context, conn Conn, q *Query, decode RowFunc[T]) (*RowStream[T], error) {
	opt := StmtOptions{
		ForwardOnly: true,
		FetchSize:   streamFetchSize(conn.DriverInfo(), defaultFetchSize),
	}
	st, args, err := q.prepare(ctx, conn, opt)
	if err != nil {
		return nil, err
	}
	rows, err := st.Query(ctx, args...)
	if err != nil {
		st.Close()
		return nil, err
	}
	s := &RowStream[T]{stmt: st, rows: rows, decode: decode}
	s.ready = rows.Next()
	if !s.ready {
		err = rows.Err()
		if cerr := s.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// HasNext reports whether a row is buffered for Next.
func (s *RowStream[T]) HasNext() bool {
	return s.ready
}

/*
Next decodes the buffered row and advances the lookahead. When the
advance finds no further row, the cursor and statement are closed
before Next returns; errors discovered during that final advance or
close are reported by Err.

Calling Next without a preceding positive HasNext is a programming
error and fails with ErrIllegalState. A decode failure propagates
without consuming the row: the stream stays open and positioned, so the
caller can still Close it (or try again).
*/
func (s *RowStream[T]) Next() (T, error) {
	var zero T
	if !s.ready {
		return zero, fmt.Errorf("%w: Next called with no buffered row", ErrIllegalState)
	}
	v, err := s.decode(s.rows)
	if err != nil {
		return zero, err
	}
	s.ready = s.rows.Next()
	if !s.ready {
		s.err = s.rows.Err()
		if cerr := s.Close(); s.err == nil {
			s.err = cerr
		}
	}
	return v, nil
}

// Err returns the cursor or close error discovered when the stream
// exhausted itself, if any. Check it after HasNext turns false.
func (s *RowStream[T]) Err() error {
	return s.err
}

// Close releases the cursor and the statement. It is idempotent and
// safe to defer alongside manual iteration.
func (s *RowStream[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.ready = false
	err := s.rows.Close()
	if cerr := s.stmt.Close(); err == nil {
		err = cerr
	}
	return err
}

/*
Iter adapts the stream to a range-over-func sequence:

	for u, err := range s.Iter() {
		if err != nil {
			// ...
		}
		// ...
	}

Breaking out of the loop closes the stream, so range is exempt from the
explicit-Close obligation. The iteration stops after yielding the first
error.
*/
func (s *RowStream[T]) Iter() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for s.HasNext() {
			v, err := s.Next()
			if !yield(v, err) || err != nil {
				s.Close()
				return
			}
		}
		if err := s.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
