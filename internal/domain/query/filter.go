// Package query define un lenguaje mínimo de filtros sobre documentos, independiente del
// motor de persistencia. Los adaptadores (postgres, mongo, memory) lo traducen a su dialecto.
package query

import "strings"

// Filter es un predicado sobre un documento plano (campo -> valor).
type Filter interface {
	isFilter()
}

// All no restringe nada.
type All struct{}

// Eq exige Field == Value. Value nil equivale a IsNull.
type Eq struct {
	Field string
	Value any
}

// IsNull se cumple si el campo no existe o es nulo.
type IsNull struct {
	Field string
}

// In exige que el campo tenga alguno de los valores.
type In struct {
	Field  string
	Values []any
}

// Not niega el filtro interno. Un valor ausente nunca "pertenece", así que Not(In) lo incluye.
type Not struct {
	Filter Filter
}

// And conjunción. Vacío equivale a All.
type And []Filter

// Or disyunción. Vacío no coincide con nada.
type Or []Filter

func (All) isFilter()    {}
func (Eq) isFilter()     {}
func (IsNull) isFilter() {}
func (In) isFilter()     {}
func (Not) isFilter()    {}
func (And) isFilter()    {}
func (Or) isFilter()     {}

// Conj combina filtros omitiendo nil y All. Con un solo término lo devuelve tal cual.
func Conj(filters ...Filter) Filter {
	out := make(And, 0, len(filters))
	for _, f := range filters {
		if f == nil {
			continue
		}
		if _, ok := f.(All); ok {
			continue
		}
		out = append(out, f)
	}
	switch len(out) {
	case 0:
		return All{}
	case 1:
		return out[0]
	}
	return out
}

// Equals construye un And de igualdades a partir de un mapa (p. ej. query params).
// Las claves se ordenan para que el filtro resultante sea determinista.
func Equals(fields map[string]any) Filter {
	if len(fields) == 0 {
		return All{}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sortStrings(keys)
	out := make([]Filter, 0, len(keys))
	for _, k := range keys {
		out = append(out, Eq{Field: k, Value: fields[k]})
	}
	return Conj(out...)
}

// ValidField rechaza nombres de campo vacíos, con NUL o con algún segmento que empiece por "$"
// (operadores del motor de documentos).
func ValidField(name string) bool {
	if name == "" || strings.ContainsRune(name, 0) {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" || strings.HasPrefix(seg, "$") {
			return false
		}
	}
	return true
}
