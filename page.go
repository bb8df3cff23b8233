package relate

import (
	"context"
	"fmt"

	"github.com/valyala/bytebufferpool"
)

/*
Pager concatenates repeated page queries into one logical sequence of
decoded rows. Each page is fetched eagerly, page-to-page chaining is
lazy, so memory use is bounded by the page size:

	p, err := relate.PagedByOffset(ctx, conn, q, 500, 0, decodeEvent)
	if err != nil {
		// ...
	}
	for p.HasNext() {
		e, err := p.Next()
		// ...
	}
	if err := p.Err(); err != nil {
		// ...
	}

Every page runs as its own statement, opened and closed within the
fetch. A Pager is single-pass; restart means building a new one.
*/
type Pager[T any] struct {
	fetch    func(last *T) (page []T, done bool, err error)
	page     []T
	idx      int
	last     T
	haveLast bool
	done     bool
	err      error
}

/*
PagedByOffset pages through a query by appending LIMIT and OFFSET to
its built SQL text, advancing the offset by pageSize per page. A page
shorter than pageSize ends the sequence.

The base query is built once, up front, and its binds are copied, so
the Query may be closed as soon as the Pager is constructed. pageSize
and offset are trusted as supplied, no validation is applied.
Skip-free, duplicate-free paging depends entirely on the query having a
stable ORDER BY; that is the caller's obligation, nothing here checks
it.
*/
func PagedByOffset[T any](ctx context.Context, conn Conn, q *Query, pageSize, offset int, decode RowFunc[T]) (*Pager[T], error) {
	base, built, err := q.Build()
	if err != nil {
		return nil, err
	}
	// The Pager outlives the Query; Close would zero the built slice.
	args := append([]any(nil), built...)
	off := offset
	p := &Pager[T]{}
	p.fetch = func(_ *T) ([]T, bool, error) {
		buf := bytebufferpool.Get()
		buf.WriteString(base)
		buf.WriteString(" LIMIT ")
		writeInt(buf, pageSize)
		buf.WriteString(" OFFSET ")
		writeInt(buf, off)
		sqlText := buf.String()
		bytebufferpool.Put(buf)

		page, err := fetchPage(ctx, conn, sqlText, args, decode)
		if err != nil {
			return nil, true, err
		}
		off += pageSize
		return page, len(page) < pageSize, nil
	}
	return p, nil
}

/*
PagedByCursor pages through queries produced by a continuation: the
first page runs next(nil), every following page runs next(&lastRow) with
the last row decoded so far. An empty page ends the sequence.

The produced query runs completely unmodified; no LIMIT or OFFSET is
injected. Forward progress is therefore entirely on the continuation: a
next function whose query does not advance past the last row will page
forever. The Pager closes each produced query after running it.
*/
func PagedByCursor[T any](ctx context.Context, conn Conn, next func(last *T) *Query, decode RowFunc[T]) *Pager[T] {
	p := &Pager[T]{}
	p.fetch = func(last *T) ([]T, bool, error) {
		q := next(last)
		sqlText, args, err := q.Build()
		if err != nil {
			q.Close()
			return nil, true, err
		}
		page, err := fetchPage(ctx, conn, sqlText, args, decode)
		q.Close()
		if err != nil {
			return nil, true, err
		}
		return page, len(page) == 0, nil
	}
	return p
}

// fetchPage runs one page query and materializes its rows. Statement
// and cursor are closed before it returns, on every path.
func fetchPage[T any](ctx context.Context, conn Conn, sqlText string, args []any, decode RowFunc[T]) ([]T, error) {
	st, err := conn.Prepare(ctx, sqlText, StmtOptions{})
	if err != nil {
		return nil, err
	}
	rows, err := st.Query(ctx, args...)
	if err != nil {
		st.Close()
		return nil, err
	}
	var out []T
	for rows.Next() {
		v, err := decode(rows)
		if err != nil {
			rows.Close()
			st.Close()
			return nil, err
		}
		out = append(out, v)
	}
	err = rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	if cerr := st.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pager[T]) fill() {
	for p.err == nil && !p.done && p.idx >= len(p.page) {
		var last *T
		if p.haveLast {
			last = &p.last
		}
		page, done, err := p.fetch(last)
		if err != nil {
			p.err = err
			p.done = true
			return
		}
		p.page, p.idx = page, 0
		p.done = done
		if len(page) > 0 {
			p.last = page[len(page)-1]
			p.haveLast = true
		}
	}
}

// HasNext reports whether another row is available, fetching the next
// page when the current one is consumed. It turns false on a fetch
// error; check Err after the loop.
func (p *Pager[T]) HasNext() bool {
	p.fill()
	return p.idx < len(p.page)
}

// Next returns the next row of the logical sequence. Calling Next when
// HasNext is false is a programming error.
func (p *Pager[T]) Next() (T, error) {
	var zero T
	if !p.HasNext() {
		if p.err != nil {
			return zero, p.err
		}
		return zero, fmt.Errorf("%w: Next called on exhausted pager", ErrIllegalState)
	}
	v := p.page[p.idx]
	p.idx++
	return v, nil
}

// NextPage returns what remains of the current page, fetching the next
// page when the current one is consumed. A nil page with a nil error
// means the sequence is over. Mixing NextPage with Next is fine: rows
// already taken by Next are not repeated.
func (p *Pager[T]) NextPage() ([]T, error) {
	p.fill()
	if p.err != nil {
		return nil, p.err
	}
	if p.idx >= len(p.page) {
		return nil, nil
	}
	page := p.page[p.idx:]
	p.idx = len(p.page)
	return page, nil
}

// Err returns the error that ended the sequence early, if any.
func (p *Pager[T]) Err() error {
	return p.err
}
