package relate

import (
	"fmt"

	"github.com/valyala/bytebufferpool"
)

// parsed is the outcome of rewriting one template: driver-ready SQL,
// the name to 1-based positions map and the total number of slots.
type parsed struct {
	sql       string
	positions map[string][]int
	slots     int
}

/*
parseTemplate rewrites a template in a single left-to-right pass:

  - {{ and }} emit literal { and } characters,
  - {name} emits one positional marker, or the declared expansion when
    name has a list declaration,
  - everything else is copied through verbatim.

Each marker written is recorded against its name, so a plain name used
M times owns M positions in textual order and a list placeholder owns a
contiguous run of positions at the point it appeared. The parser is
pure text transformation; it never touches the database.
*/
func parseTemplate(d *Dialect, template string, groups []group) (*parsed, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	positions := make(map[string][]int)
	argNo := 1

	for i := 0; i < len(template); {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				buf.WriteByte('{')
				i += 2
				continue
			}
			j := i + 1
			for j < len(template) && isNameByte(template[j]) {
				j++
			}
			if j == len(template) {
				return nil, fmt.Errorf("%w: unterminated placeholder at offset %d", ErrMalformedTemplate, i)
			}
			if template[j] != '}' {
				return nil, fmt.Errorf("%w: invalid character %q in placeholder at offset %d", ErrMalformedTemplate, template[j], i)
			}
			if j == i+1 {
				return nil, fmt.Errorf("%w: empty placeholder name at offset %d", ErrMalformedTemplate, i)
			}
			name := template[i+1 : j]
			if g, ok := findGroup(groups, name); ok {
				argNo = g.expand(d, buf, argNo, positions)
			} else {
				d.writeMarker(buf, argNo)
				positions[name] = append(positions[name], argNo)
				argNo++
			}
			i = j + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				buf.WriteByte('}')
				i += 2
				continue
			}
			buf.WriteByte('}')
			i++
		default:
			buf.WriteByte(c)
			i++
		}
	}

	return &parsed{
		sql:       buf.String(),
		positions: positions,
		slots:     argNo - 1,
	}, nil
}
