package relate_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/gregghz/relate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableConn serves a single-column table of total rows and understands
// the LIMIT/OFFSET suffix PagedByOffset appends.
func tableConn(total int) *fakeConn {
	conn := &fakeConn{driver: "fake"}
	conn.run = func(sql string, args []any) ([][]any, error) {
		limit, offset := total, 0
		if n := strings.Index(sql, " LIMIT "); n >= 0 {
			if _, err := fmt.Sscanf(sql[n:], " LIMIT %d OFFSET %d", &limit, &offset); err != nil {
				return nil, err
			}
		}
		var out [][]any
		for i := offset; i < total && i < offset+limit; i++ {
			out = append(out, []any{i})
		}
		return out, nil
	}
	return conn
}

func TestPagedByOffsetYieldsAllRowsInOrder(t *testing.T) {
	conn := tableConn(7)
	q := relate.SQL("SELECT n FROM numbers ORDER BY n")
	defer q.Close()

	p, err := relate.PagedByOffset(context.Background(), conn, q, 3, 0, scanInt)
	require.NoError(t, err)

	var got []int
	for p.HasNext() {
		n, err := p.Next()
		require.NoError(t, err)
		got = append(got, n)
	}
	require.NoError(t, p.Err())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, got)
}

func TestPagedByOffsetQueryCount(t *testing.T) {
	// Exactly ceil((total+1)/size) page queries; when size divides
	// total evenly the last query observes the empty terminating page.
	for _, tc := range []struct {
		total, size, queries int
	}{
		{0, 3, 1},
		{4, 2, 3},
		{5, 2, 3},
		{6, 2, 4},
		{7, 3, 3},
		{1, 1, 2},
	} {
		conn := tableConn(tc.total)
		q := relate.SQL("SELECT n FROM numbers ORDER BY n")

		p, err := relate.PagedByOffset(context.Background(), conn, q, tc.size, 0, scanInt)
		require.NoError(t, err)

		count := 0
		for p.HasNext() {
			_, err := p.Next()
			require.NoError(t, err)
			count++
		}
		require.NoError(t, p.Err())
		assert.Equal(t, tc.total, count, "rows for total=%d size=%d", tc.total, tc.size)
		assert.Len(t, conn.stmts, tc.queries, "queries for total=%d size=%d", tc.total, tc.size)
		q.Close()
	}
}

func TestPagedByOffsetClosesEachPage(t *testing.T) {
	conn := tableConn(5)
	q := relate.SQL("SELECT n FROM numbers ORDER BY n")
	defer q.Close()

	p, err := relate.PagedByOffset(context.Background(), conn, q, 2, 0, scanInt)
	require.NoError(t, err)
	for p.HasNext() {
		_, err := p.Next()
		require.NoError(t, err)
	}
	require.NoError(t, p.Err())

	for i, st := range conn.stmts {
		assert.Equal(t, 1, st.closes, "statement %d", i)
		assert.Equal(t, 1, st.rows.closes, "cursor %d", i)
	}
}

func TestPagedByOffsetStartOffset(t *testing.T) {
	conn := tableConn(6)
	q := relate.SQL("SELECT n FROM numbers ORDER BY n")
	defer q.Close()

	p, err := relate.PagedByOffset(context.Background(), conn, q, 2, 3, scanInt)
	require.NoError(t, err)

	var got []int
	for p.HasNext() {
		n, err := p.Next()
		require.NoError(t, err)
		got = append(got, n)
	}
	require.NoError(t, p.Err())
	assert.Equal(t, []int{3, 4, 5}, got)
}

func TestPagedByOffsetBuildError(t *testing.T) {
	conn := tableConn(3)
	q := relate.SQL("SELECT n FROM numbers WHERE n = {n}").Bind("missing", 1)
	defer q.Close()

	_, err := relate.PagedByOffset(context.Background(), conn, q, 2, 0, scanInt)
	assert.ErrorIs(t, err, relate.ErrUnknownParameter)
}

func TestPagedByCursor(t *testing.T) {
	// Five rows, the continuation requests id > last two at a time.
	const total, pageSize = 5, 2
	conn := &fakeConn{driver: "fake"}
	conn.run = func(sql string, args []any) ([][]any, error) {
		after := -1
		if len(args) > 0 {
			after = args[0].(int)
		}
		var out [][]any
		for i := after + 1; i < total && len(out) < pageSize; i++ {
			out = append(out, []any{i})
		}
		return out, nil
	}

	p := relate.PagedByCursor(context.Background(), conn, func(last *int) *relate.Query {
		after := -1
		if last != nil {
			after = *last
		}
		return relate.SQL("SELECT n FROM numbers WHERE n > {after} ORDER BY n LIMIT 2").
			Bind("after", after)
	}, scanInt)

	var got []int
	for p.HasNext() {
		n, err := p.Next()
		require.NoError(t, err)
		got = append(got, n)
	}
	require.NoError(t, p.Err())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	// Pages [0 1], [2 3], [4], then the empty page that ends it.
	assert.Len(t, conn.stmts, 4)
}

func TestPagedByCursorQueryUnmodified(t *testing.T) {
	conn := &fakeConn{driver: "fake"}
	var seen []string
	conn.run = func(sql string, args []any) ([][]any, error) {
		seen = append(seen, sql)
		return nil, nil
	}

	p := relate.PagedByCursor(context.Background(), conn, func(last *int) *relate.Query {
		return relate.SQL("SELECT n FROM numbers WHERE n > {after}").Bind("after", 0)
	}, scanInt)

	assert.False(t, p.HasNext())
	require.Len(t, seen, 1)
	assert.Equal(t, "SELECT n FROM numbers WHERE n > ?", seen[0])
}

func TestPagerNextPage(t *testing.T) {
	conn := tableConn(5)
	q := relate.SQL("SELECT n FROM numbers ORDER BY n")
	defer q.Close()

	p, err := relate.PagedByOffset(context.Background(), conn, q, 2, 0, scanInt)
	require.NoError(t, err)

	var pages [][]int
	for {
		page, err := p.NextPage()
		require.NoError(t, err)
		if page == nil {
			break
		}
		pages = append(pages, page)
	}
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4}}, pages)

	// Exhausted pager keeps reporting the end.
	page, err := p.NextPage()
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestPagerNextPageAfterNext(t *testing.T) {
	conn := tableConn(4)
	q := relate.SQL("SELECT n FROM numbers ORDER BY n")
	defer q.Close()

	p, err := relate.PagedByOffset(context.Background(), conn, q, 3, 0, scanInt)
	require.NoError(t, err)

	n, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// NextPage hands over the rest of the current page, nothing twice.
	page, err := p.NextPage()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, page)

	page, err = p.NextPage()
	require.NoError(t, err)
	assert.Equal(t, []int{3}, page)
}

func TestPagedByOffsetSurvivesQueryClose(t *testing.T) {
	var seen [][]any
	conn := &fakeConn{driver: "fake"}
	conn.run = func(sql string, args []any) ([][]any, error) {
		seen = append(seen, append([]any(nil), args...))
		return nil, nil
	}

	q := relate.SQL("SELECT n FROM numbers WHERE grp = {grp} ORDER BY n").
		Bind("grp", "alpha")
	p, err := relate.PagedByOffset(context.Background(), conn, q, 2, 0, scanInt)
	require.NoError(t, err)
	// Closing the query recycles its argument table; the pager must
	// keep paging with the values bound at construction time.
	q.Close()

	assert.False(t, p.HasNext())
	require.NoError(t, p.Err())
	require.Len(t, seen, 1)
	assert.Equal(t, []any{"alpha"}, seen[0])
}

func TestPagerNextOnExhausted(t *testing.T) {
	conn := tableConn(0)
	q := relate.SQL("SELECT n FROM numbers")
	defer q.Close()

	p, err := relate.PagedByOffset(context.Background(), conn, q, 2, 0, scanInt)
	require.NoError(t, err)
	require.False(t, p.HasNext())

	_, err = p.Next()
	assert.ErrorIs(t, err, relate.ErrIllegalState)
}
