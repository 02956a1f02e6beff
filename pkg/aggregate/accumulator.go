package aggregate

import "github.com/katha-begin/Montu-sub000/pkg/core"

// accumulator folds one field across a group bucket. add is called once per
// input document; resolved is false when the operand expression did not
// resolve for that document, which every accumulator except $count skips.
type accumulator interface {
	add(val any, resolved bool)
	result() any
}

var accumulators = map[string]func() accumulator{
	"$sum":   func() accumulator { return &sumAcc{} },
	"$avg":   func() accumulator { return &avgAcc{} },
	"$min":   func() accumulator { return &minAcc{} },
	"$max":   func() accumulator { return &maxAcc{} },
	"$first": func() accumulator { return &firstAcc{} },
	"$last":  func() accumulator { return &lastAcc{} },
	"$count": func() accumulator { return &countAcc{} },
}

// sumAcc totals numeric operand values; non-numeric values are ignored, so a
// bucket of strings sums to 0 like an empty bucket.
type sumAcc struct {
	total float64
}

func (a *sumAcc) add(val any, resolved bool) {
	if !resolved {
		return
	}
	if n, ok := core.AsNumber(val); ok {
		a.total += n
	}
}

func (a *sumAcc) result() any { return a.total }

// avgAcc averages numeric operand values. A bucket with no numeric values
// averages to null.
type avgAcc struct {
	total float64
	n     int
}

func (a *avgAcc) add(val any, resolved bool) {
	if !resolved {
		return
	}
	if num, ok := core.AsNumber(val); ok {
		a.total += num
		a.n++
	}
}

func (a *avgAcc) result() any {
	if a.n == 0 {
		return nil
	}
	return a.total / float64(a.n)
}

// minAcc keeps the smallest value seen, comparing only same-kind values per
// the store's no-coercion rule. The first value seeds the comparison.
type minAcc struct {
	best any
	seen bool
}

func (a *minAcc) add(val any, resolved bool) {
	if !resolved {
		return
	}
	if !a.seen {
		a.best, a.seen = val, true
		return
	}
	if c, ok := core.Compare(val, a.best); ok && c < 0 {
		a.best = val
	}
}

func (a *minAcc) result() any { return a.best }

// maxAcc keeps the largest value seen.
type maxAcc struct {
	best any
	seen bool
}

func (a *maxAcc) add(val any, resolved bool) {
	if !resolved {
		return
	}
	if !a.seen {
		a.best, a.seen = val, true
		return
	}
	if c, ok := core.Compare(val, a.best); ok && c > 0 {
		a.best = val
	}
}

func (a *maxAcc) result() any { return a.best }

// firstAcc keeps the first resolved value in input order.
type firstAcc struct {
	val  any
	seen bool
}

func (a *firstAcc) add(val any, resolved bool) {
	if !resolved || a.seen {
		return
	}
	a.val, a.seen = val, true
}

func (a *firstAcc) result() any { return a.val }

// lastAcc keeps the last resolved value in input order.
type lastAcc struct {
	val any
}

func (a *lastAcc) add(val any, resolved bool) {
	if resolved {
		a.val = val
	}
}

func (a *lastAcc) result() any { return a.val }

// countAcc counts bucket members regardless of operand resolution.
type countAcc struct {
	n int
}

func (a *countAcc) add(any, bool) { a.n++ }

func (a *countAcc) result() any   { return float64(a.n) }
