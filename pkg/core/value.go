package core

import "sort"

// Kind classifies a stored value into one of the six JSON shapes. Every place
// the store inspects a value switches exhaustively on Kind rather than doing
// ad-hoc type assertions.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lowercase name of the kind, for error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// KindOf reports the Kind of a decoded JSON value. Integer values that did
// not pass through encoding/json (callers constructing documents in Go code)
// are treated as numbers.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	}
	return KindNull
}

// AsNumber converts a numeric value to float64. ok is false for non-numbers.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Equal reports deep equality of two stored values. Values of different kinds
// are never equal; in particular a number never equals its string rendering.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull:
		return true
	case KindBool:
		return a.(bool) == b.(bool)
	case KindNumber:
		na, _ := AsNumber(a)
		nb, _ := AsNumber(b)
		return na == nb
	case KindString:
		return a.(string) == b.(string)
	case KindArray:
		aa, ba := a.([]any), b.([]any)
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ao, bo := a.(map[string]any), b.(map[string]any)
		if len(ao) != len(bo) {
			return false
		}
		for k, av := range ao {
			bv, ok := bo[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values of the same kind. It returns ok=false when the
// kinds differ or the kind has no natural order (arrays, objects); the caller
// treats that as a non-match, never as an error.
func Compare(a, b any) (int, bool) {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return 0, false
	}
	switch ka {
	case KindNumber:
		na, _ := AsNumber(a)
		nb, _ := AsNumber(b)
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		}
		return 0, true
	case KindString:
		sa, sb := a.(string), b.(string)
		switch {
		case sa < sb:
			return -1, true
		case sa > sb:
			return 1, true
		}
		return 0, true
	case KindBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0, true
		case !ba:
			return -1, true
		}
		return 1, true
	case KindNull:
		return 0, true
	}
	return 0, false
}

// SortCompare orders any two values for sort stages and sorted finds, where a
// total order is required even across kinds. Kinds order as
// null < bool < number < string < array < object; unordered kinds compare
// equal within themselves.
func SortCompare(a, b any) int {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	if c, ok := Compare(a, b); ok {
		return c
	}
	return 0
}

// SortDocuments sorts docs in place by the given keys. Directions are 1
// (ascending) or -1 (descending). Missing fields sort as null. The sort is
// stable so equal keys keep their input order.
func SortDocuments(docs []Document, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range keys {
			vi, _ := Resolve(docs[i], key.Field)
			vj, _ := Resolve(docs[j], key.Field)
			c := SortCompare(vi, vj)
			if c == 0 {
				continue
			}
			if key.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// SortKey names one field of a multi-key sort.
type SortKey struct {
	Field      string
	Descending bool
}
