package relate

import "fmt"

/*
Query is a single-use SQL template with its list declarations and
binds. Build the pipeline in any order, then execute or Build:

	q := relate.SQL("UPDATE users SET name = {name} WHERE id = {id}").
		Bind("name", "bob").
		Bind("id", 42)
	err := q.Exec(ctx, conn)
	q.Close()

A Query is owned by the single logical call that created it and is not
safe for concurrent use. Once built (directly or by an execution
method) its declarations and binds are frozen; further WithCommaGroup,
WithTupleGroup or Bind calls are programming errors surfaced on the
next Build or execution.
*/
type Query struct {
	dialect *Dialect
	text    string
	groups  []group
	actions []bindAction
	res     *parsed
	args    []any
	err     error
}

// bindAction fills one name's slots in the argument table once the
// positional map exists. Actions run in the order they were added, so
// a later bind for the same name wins.
type bindAction func(res *parsed, args []any) error

/*
SQL starts a query from a template using the default dialect.

	q := relate.SQL("SELECT id FROM users WHERE id = {id}").Bind("id", 42)
	// ...
	q.Close()
*/
func SQL(template string) *Query {
	return defaultDialect.Load().SQL(template)
}

// SQL starts a query from a template using this dialect.
func (d *Dialect) SQL(template string) *Query {
	q := getQuery()
	q.dialect = d
	q.text = template
	return q
}

// Template returns the raw template text the query was created from.
func (q *Query) Template() string {
	return q.text
}

// mutable records an IllegalState error when the query was already
// built. Mutating methods bail out through it so the error surfaces on
// the next Build or execution instead of being silently ignored.
func (q *Query) mutable(op string) bool {
	if q.err != nil {
		return false
	}
	if q.res != nil {
		q.err = fmt.Errorf("%w: %s after query was built", ErrIllegalState, op)
		return false
	}
	return true
}

/*
Build compiles the query: the template is parsed (or fetched from the
dialect's cache), an argument table with one slot per positional marker
is allocated and every bind is applied in call order. Returns the
rewritten SQL and the positional arguments.

Build is idempotent; execution methods call it implicitly. Slots never
bound are passed to the driver as nil.
*/
func (q *Query) Build() (sql string, args []any, err error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if q.res == nil {
		res, err := q.dialect.parse(q.text, q.groups)
		if err != nil {
			q.err = err
			return "", nil, err
		}
		q.res = res
		q.args = make([]any, res.slots)
		for _, act := range q.actions {
			if err := act(res, q.args); err != nil {
				q.err = err
				return "", nil, err
			}
		}
	}
	return q.res.sql, q.args, nil
}

// Positions returns the 1-based positional slots owned by a name,
// building the query first if needed. The returned slice is shared
// with the parse cache and must not be modified.
func (q *Query) Positions(name string) ([]int, error) {
	if _, _, err := q.Build(); err != nil {
		return nil, err
	}
	pos, ok := q.res.positions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return pos, nil
}

/*
Close releases the Query to an internal pool for reuse.

Do not call any Query methods after Close.
*/
func (q *Query) Close() {
	putQuery(q)
}
