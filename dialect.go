package relate

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/valyala/bytebufferpool"
)

// parseCacheSize bounds the per-dialect cache of parsed templates.
// Applications executing more unique templates than this just re-parse.
const parseCacheSize = 512

/*
Dialect defines the positional marker a template compiles down to.

Question is the default mode: every placeholder becomes a ? marker.
PostgreSQL mode emits numbered markers instead:

	q := relate.PostgreSQL.SQL("SELECT id FROM users WHERE id = {id}")
	// Produces
	// SELECT id FROM users WHERE id = $1

or as the default:

	relate.SetDialect(relate.PostgreSQL)
	// ...
	q := relate.SQL("SELECT id FROM users WHERE id = {id}")
	q.Close()

Each Dialect keeps a bounded cache of parse results so a template that
is executed repeatedly is rewritten only once.
*/
type Dialect struct {
	writeMarker func(buf *bytebufferpool.ByteBuffer, argNo int)
	cacheOnce   sync.Once
	cache       *lru.Cache[string, *parsed]
}

var (
	// Question emits ? markers (MySQL, SQLite and most drivers).
	Question *Dialect = &Dialect{writeMarker: writeQuestion}
	// PostgreSQL emits numbered $1, $2... markers.
	PostgreSQL *Dialect = &Dialect{writeMarker: writeDollar}
)

var defaultDialect atomic.Pointer[Dialect]

func init() {
	defaultDialect.Store(Question)
}

/*
SetDialect selects the Dialect used by relate.SQL.

	relate.SetDialect(relate.PostgreSQL)
*/
func SetDialect(d *Dialect) {
	defaultDialect.Store(d)
}

func writeQuestion(buf *bytebufferpool.ByteBuffer, argNo int) {
	buf.WriteByte('?')
}

func writeDollar(buf *bytebufferpool.ByteBuffer, argNo int) {
	buf.WriteByte('$')
	writeInt(buf, argNo)
}

/*
ClearCache clears the parsed template cache.

In most cases you don't need to care about it. It's there to let a
caller free memory after executing zillions of unique templates.
*/
func (d *Dialect) ClearCache() {
	d.getCache().Purge()
}

func (d *Dialect) getCache() *lru.Cache[string, *parsed] {
	d.cacheOnce.Do(func() {
		d.cache, _ = lru.New[string, *parsed](parseCacheSize)
	})
	return d.cache
}

// parse returns the rewritten form of a template, from cache when the
// same template was compiled with the same list declarations before.
// Cached entries are read-only and shared between queries.
func (d *Dialect) parse(template string, groups []group) (*parsed, error) {
	key := cacheKey(template, groups)
	c := d.getCache()
	if p, ok := c.Get(key); ok {
		return p, nil
	}
	p, err := parseTemplate(d, template, groups)
	if err != nil {
		return nil, err
	}
	c.Add(key, p)
	return p, nil
}

// cacheKey folds the expansion declarations into the cache key: the
// same template text parses differently under different declarations.
func cacheKey(template string, groups []group) string {
	if len(groups) == 0 {
		return template
	}
	buf := bytebufferpool.Get()
	buf.WriteString(template)
	for _, g := range groups {
		buf.WriteByte(0)
		buf.WriteString(g.name)
		buf.WriteByte(0)
		writeInt(buf, g.count)
		for _, col := range g.columns {
			buf.WriteByte(0)
			buf.WriteString(col)
		}
	}
	key := buf.String()
	bytebufferpool.Put(buf)
	return key
}
