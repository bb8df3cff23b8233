package relate

import "github.com/valyala/bytebufferpool"

// group is a registered list declaration. columns is nil for a comma
// group; for a tuple group it maps each column to its offset within one
// tuple by slice index.
type group struct {
	name    string
	columns []string
	count   int
}

// width is the number of positional slots one element contributes.
func (g *group) width() int {
	if g.columns == nil {
		return 1
	}
	return len(g.columns)
}

// expand writes the group's marker text and records the contiguous run
// of positions it occupies. Returns the next free position number.
// A count of zero writes nothing and claims no positions, but the name
// still gets its (empty) entry in the positional map: the placeholder
// is present in the text, so binding it stays legal.
func (g *group) expand(d *Dialect, buf *bytebufferpool.ByteBuffer, argNo int, positions map[string][]int) int {
	if positions[g.name] == nil {
		positions[g.name] = []int{}
	}
	w := g.width()
	for i := 0; i < g.count; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		if g.columns != nil {
			buf.WriteByte('(')
		}
		for k := 0; k < w; k++ {
			if k > 0 {
				buf.WriteByte(',')
			}
			d.writeMarker(buf, argNo)
			positions[g.name] = append(positions[g.name], argNo)
			argNo++
		}
		if g.columns != nil {
			buf.WriteByte(')')
		}
	}
	return argNo
}

func findGroup(groups []group, name string) (*group, bool) {
	for n := range groups {
		if groups[n].name == name {
			return &groups[n], true
		}
	}
	return nil, false
}

/*
WithCommaGroup declares {name} to expand into count comma-separated
positional markers:

	q := relate.SQL("SELECT id FROM users WHERE id IN ({ids})").
		WithCommaGroup("ids", len(ids)).
		BindMany("ids", ids...)
	// SELECT id FROM users WHERE id IN (?,?,?)

A count of 0 expands to nothing; whether the resulting IN () is valid
SQL is between the caller and the database. Declaring the same name
again replaces the earlier declaration. Declarations are only valid
before the query is built.
*/
func (q *Query) WithCommaGroup(name string, count int) *Query {
	return q.declare(group{name: name, count: count})
}

/*
WithTupleGroup declares {name} to expand into count parenthesized
groups of len(columns) markers each:

	q := relate.SQL("INSERT INTO points (x, y) VALUES {rows}").
		WithTupleGroup("rows", []string{"x", "y"}, len(points))
	// INSERT INTO points (x, y) VALUES (?,?),(?,?)

Use BindTuples to fill the declared records. Declaring the same name
again replaces the earlier declaration. Declarations are only valid
before the query is built.
*/
func (q *Query) WithTupleGroup(name string, columns []string, count int) *Query {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return q.declare(group{name: name, columns: cols, count: count})
}

func (q *Query) declare(g group) *Query {
	if !q.mutable("declare expansion") {
		return q
	}
	if prev, ok := findGroup(q.groups, g.name); ok {
		*prev = g
		return q
	}
	q.groups = append(q.groups, g)
	return q
}
