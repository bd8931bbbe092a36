package mongodb

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
)

const (
	fieldMongoID   = "_id"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// matchNothing es falso para todo documento (todos tienen _id).
var matchNothing = bson.M{fieldMongoID: bson.M{"$exists": false}}

// toBSON traduce query.Filter al lenguaje de consultas de MongoDB.
// {campo: nil} coincide con null y con campo ausente, igual que query.IsNull.
// companyId se compara como número y como texto (datos de scripts antiguos).
func toBSON(f query.Filter) (bson.M, error) {
	switch t := f.(type) {
	case nil, query.All:
		return bson.M{}, nil
	case query.Eq:
		name, err := mongoField(t.Field)
		if err != nil {
			return nil, err
		}
		v, err := bsonValue(t.Field, t.Value)
		if err != nil {
			return nil, err
		}
		if id, ok := v.(int64); ok && t.Field == entity.FieldCompanyID {
			return bson.M{name: bson.M{"$in": companyIDForms(id)}}, nil
		}
		return bson.M{name: v}, nil
	case query.IsNull:
		name, err := mongoField(t.Field)
		if err != nil {
			return nil, err
		}
		return bson.M{name: nil}, nil
	case query.In:
		name, err := mongoField(t.Field)
		if err != nil {
			return nil, err
		}
		vals := make(bson.A, 0, len(t.Values))
		for _, v := range t.Values {
			bv, err := bsonValue(t.Field, v)
			if err != nil {
				return nil, err
			}
			if id, ok := bv.(int64); ok && t.Field == entity.FieldCompanyID {
				vals = append(vals, companyIDForms(id)...)
				continue
			}
			vals = append(vals, bv)
		}
		return bson.M{name: bson.M{"$in": vals}}, nil
	case query.Not:
		inner, err := toBSON(t.Filter)
		if err != nil {
			return nil, err
		}
		return bson.M{"$nor": bson.A{inner}}, nil
	case query.And:
		if len(t) == 0 {
			return bson.M{}, nil
		}
		parts, err := toBSONList(t)
		if err != nil {
			return nil, err
		}
		return bson.M{"$and": parts}, nil
	case query.Or:
		if len(t) == 0 {
			return matchNothing, nil
		}
		parts, err := toBSONList(t)
		if err != nil {
			return nil, err
		}
		return bson.M{"$or": parts}, nil
	}
	return nil, fmt.Errorf("filtro no soportado: %T", f)
}

func toBSONList(fs []query.Filter) (bson.A, error) {
	out := make(bson.A, 0, len(fs))
	for _, f := range fs {
		m, err := toBSON(f)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// mongoField traduce el nombre de campo; nunca deja pasar operadores como nombre.
func mongoField(field string) (string, error) {
	if !query.ValidField(field) {
		return "", fmt.Errorf("%w: campo %q", domain.ErrInvalidInput, field)
	}
	if field == entity.FieldID {
		return fieldMongoID, nil
	}
	return field, nil
}

// companyIDForms: el id como número y como texto, para que el filtro coincida con lo que
// fromDocument acepta al leer.
func companyIDForms(id int64) bson.A {
	return bson.A{id, strconv.FormatInt(id, 10)}
}

// bsonValue normaliza companyId a int64; el resto pasa tal cual.
func bsonValue(field string, v any) (any, error) {
	if field != entity.FieldCompanyID || v == nil {
		return v, nil
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case *int64:
		if n == nil {
			return nil, nil
		}
		return *n, nil
	case float64:
		if n == float64(int64(n)) {
			return int64(n), nil
		}
	}
	return nil, fmt.Errorf("companyId inválido: %v", v)
}
