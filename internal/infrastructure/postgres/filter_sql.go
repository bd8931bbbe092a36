package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
)

// whereBuilder traduce query.Filter a SQL parametrizado sobre la tabla records.
// companyId e id son columnas; el resto de campos se leen de data->>campo (texto).
// El nombre del campo también viaja como parámetro, nunca se interpola.
type whereBuilder struct {
	args []any
}

func newWhereBuilder(args ...any) *whereBuilder {
	return &whereBuilder{args: args}
}

func (b *whereBuilder) param(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *whereBuilder) column(field string) (expr string, isCompany bool) {
	switch field {
	case entity.FieldCompanyID:
		return "company_id", true
	case entity.FieldID:
		return "id", false
	}
	return "(data->>" + b.param(field) + ")", false
}

func (b *whereBuilder) build(f query.Filter) (string, error) {
	switch t := f.(type) {
	case nil, query.All:
		return "TRUE", nil
	case query.Eq:
		if t.Value == nil {
			return b.build(query.IsNull{Field: t.Field})
		}
		col, isCompany := b.column(t.Field)
		v, err := sqlValue(t.Value, isCompany)
		if err != nil {
			return "", err
		}
		return col + " = " + b.param(v), nil
	case query.IsNull:
		col, _ := b.column(t.Field)
		return col + " IS NULL", nil
	case query.In:
		col, isCompany := b.column(t.Field)
		if isCompany {
			ids := make([]int64, 0, len(t.Values))
			for _, v := range t.Values {
				id, err := toInt64(v)
				if err != nil {
					return "", err
				}
				ids = append(ids, id)
			}
			return col + " = ANY(" + b.param(ids) + ")", nil
		}
		vals := make([]string, 0, len(t.Values))
		for _, v := range t.Values {
			vals = append(vals, fmt.Sprint(v))
		}
		return col + " = ANY(" + b.param(vals) + ")", nil
	case query.Not:
		inner, err := b.build(t.Filter)
		if err != nil {
			return "", err
		}
		// COALESCE: con NULL la comparación interna es desconocida y NOT no la incluiría.
		return "NOT COALESCE((" + inner + "), FALSE)", nil
	case query.And:
		return b.join(t, " AND ", "TRUE")
	case query.Or:
		return b.join(t, " OR ", "FALSE")
	}
	return "", fmt.Errorf("filtro no soportado: %T", f)
}

func (b *whereBuilder) join(parts []query.Filter, sep, empty string) (string, error) {
	if len(parts) == 0 {
		return empty, nil
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s, err := b.build(p)
		if err != nil {
			return "", err
		}
		out = append(out, "("+s+")")
	}
	return strings.Join(out, sep), nil
}

func sqlValue(v any, isCompany bool) (any, error) {
	if isCompany {
		return toInt64(v)
	}
	return fmt.Sprint(v), nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case *int64:
		if n != nil {
			return *n, nil
		}
	case float64:
		if n == float64(int64(n)) {
			return int64(n), nil
		}
	case string:
		if id, err := strconv.ParseInt(n, 10, 64); err == nil {
			return id, nil
		}
	}
	return 0, fmt.Errorf("companyId inválido: %v", v)
}
