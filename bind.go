package relate

import "fmt"

/*
Bind sets a value for a named placeholder. If the name occurs several
times in the template, the one bind fills every occurrence:

	q := relate.SQL("SELECT * FROM t WHERE a = {id} OR b = {id}").
		Bind("id", 7)

Binding a name that does not occur in the rewritten text fails the
query with ErrUnknownParameter. Binding the same name again overrides
the earlier value.
*/
func (q *Query) Bind(name string, value any) *Query {
	if !q.mutable("bind") {
		return q
	}
	q.actions = append(q.actions, func(res *parsed, args []any) error {
		pos, ok := res.positions[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		for _, n := range pos {
			args[n-1] = value
		}
		return nil
	})
	return q
}

/*
BindMany sets one value per position of a name, in position order. It
is the natural way to fill a comma group:

	q.WithCommaGroup("ids", 3).BindMany("ids", 7, 8, 9)

The number of values must match the number of positions the name owns,
else the query fails with ErrTupleArity.
*/
func (q *Query) BindMany(name string, values ...any) *Query {
	if !q.mutable("bind") {
		return q
	}
	q.actions = append(q.actions, func(res *parsed, args []any) error {
		pos, ok := res.positions[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		if len(values) != len(pos) {
			return fmt.Errorf("%w: %q has %d positions, got %d values", ErrTupleArity, name, len(pos), len(values))
		}
		for i, n := range pos {
			args[n-1] = values[i]
		}
		return nil
	})
	return q
}

// Tuple is the positional view of one record of a tuple group handed
// to a BindTuples callback. Its column names resolve to absolute slots
// within that record's stride.
type Tuple struct {
	columns []string
	args    []any
	base    int
	err     error
}

// Bind sets the value of one named column of the record.
func (t *Tuple) Bind(column string, value any) *Tuple {
	for i, c := range t.columns {
		if c == column {
			t.args[t.base+i] = value
			return t
		}
	}
	if t.err == nil {
		t.err = fmt.Errorf("%w: tuple column %q", ErrUnknownParameter, column)
	}
	return t
}

/*
BindTuples fills a tuple group record by record. The callback runs once
per record with a Tuple scoped to that record's stride of positions:

	q := relate.SQL("INSERT INTO points (x, y) VALUES {rows}").
		WithTupleGroup("rows", []string{"x", "y"}, len(points)).
		BindTuples("rows", len(points), func(i int, t *relate.Tuple) {
			t.Bind("x", points[i].X).Bind("y", points[i].Y)
		})

count must equal the declared tuple count, else the query fails with
ErrTupleArity. The binder walks positions, never SQL text.
*/
func (q *Query) BindTuples(name string, count int, fn func(i int, t *Tuple)) *Query {
	if !q.mutable("bind") {
		return q
	}
	// The group is resolved when the action runs, not here: a later
	// redeclaration of the same name must win for the bind too.
	q.actions = append(q.actions, func(res *parsed, args []any) error {
		g, ok := findGroup(q.groups, name)
		if !ok || g.columns == nil {
			return fmt.Errorf("%w: %q is not a declared tuple group", ErrIllegalState, name)
		}
		pos, ok := res.positions[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		if count != g.count {
			return fmt.Errorf("%w: %q declared %d tuples, got %d", ErrTupleArity, name, g.count, count)
		}
		columns := g.columns
		width := len(columns)
		for i := 0; i < count; i++ {
			t := Tuple{
				columns: columns,
				args:    args,
				base:    pos[i*width] - 1,
			}
			fn(i, &t)
			if t.err != nil {
				return t.err
			}
		}
		return nil
	})
	return q
}
