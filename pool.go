package relate

import "sync"

var queryPool = sync.Pool{New: newQuery}

func newQuery() interface{} {
	return &Query{
		groups:  make([]group, 0, 4),
		actions: make([]bindAction, 0, 8),
	}
}

func getQuery() *Query {
	return queryPool.Get().(*Query)
}

func putQuery(q *Query) {
	q.dialect = nil
	q.text = ""
	q.groups = q.groups[:0]
	if len(q.actions) > 0 {
		for n := range q.actions {
			q.actions[n] = nil
		}
		q.actions = q.actions[:0]
	}
	q.res = nil
	if len(q.args) > 0 {
		for n := range q.args {
			q.args[n] = nil
		}
		q.args = q.args[:0]
	}
	q.err = nil
	queryPool.Put(q)
}
