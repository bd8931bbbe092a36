package query

import (
	"fmt"
	"sort"
)

// Match evalúa el filtro en memoria sobre un documento plano.
func Match(f Filter, doc map[string]any) bool {
	switch t := f.(type) {
	case nil, All:
		return true
	case Eq:
		if t.Value == nil {
			return isNull(doc, t.Field)
		}
		v, ok := doc[t.Field]
		return ok && equalValues(v, t.Value)
	case IsNull:
		return isNull(doc, t.Field)
	case In:
		v, ok := doc[t.Field]
		if !ok || v == nil {
			return false
		}
		for _, want := range t.Values {
			if equalValues(v, want) {
				return true
			}
		}
		return false
	case Not:
		return !Match(t.Filter, doc)
	case And:
		for _, sub := range t {
			if !Match(sub, doc) {
				return false
			}
		}
		return true
	case Or:
		for _, sub := range t {
			if Match(sub, doc) {
				return true
			}
		}
		return false
	}
	return false
}

func isNull(doc map[string]any, field string) bool {
	v, ok := doc[field]
	if !ok || v == nil {
		return true
	}
	if p, isPtr := v.(*int64); isPtr {
		return p == nil
	}
	return false
}

// equalValues compara numéricos por valor (JSON trae float64, la BD int64) y el resto como texto.
func equalValues(a, b any) bool {
	if p, ok := a.(*int64); ok && p != nil {
		a = *p
	}
	if p, ok := b.(*int64); ok && p != nil {
		b = *p
	}
	na, aNum := toFloat(a)
	nb, bNum := toFloat(b)
	if aNum && bNum {
		return na == nb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func sortStrings(s []string) { sort.Strings(s) }
