package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Reckonix-api/internal/domain"
	"github.com/jhoicas/Reckonix-api/internal/domain/entity"
	"github.com/jhoicas/Reckonix-api/internal/domain/query"
	"github.com/jhoicas/Reckonix-api/internal/domain/repository"
)

var _ repository.RecordRepository = (*RecordRepo)(nil)

// RecordRepo guarda cada colección de negocio en su colección MongoDB homónima.
type RecordRepo struct {
	db *mongo.Database
}

// NewRecordRepository construye el adaptador de documentos sobre MongoDB.
func NewRecordRepository(db *mongo.Database) *RecordRepo {
	return &RecordRepo{db: db}
}

// CollectionExists consulta listCollections.
func (r *RecordRepo) CollectionExists(ctx context.Context, collection string) (bool, error) {
	names, err := r.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: collection}})
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	return len(names) > 0, nil
}

// RegisterCollections crea las colecciones configuradas que aún no existen.
func (r *RecordRepo) RegisterCollections(ctx context.Context, names []string) error {
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := r.db.CreateCollection(ctx, name); err != nil && !namespaceExists(err) {
			return fmt.Errorf("registrar colección %s: %w", name, err)
		}
	}
	return nil
}

// namespaceExists reconoce el código 48 (NamespaceExists) de createCollection.
func namespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == 48
}

// Find lista documentos que cumplen filter, en orden de alta.
func (r *RecordRepo) Find(ctx context.Context, collection string, filter query.Filter, limit, offset int) ([]*entity.Record, error) {
	coll, q, err := r.prepare(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: fieldCreatedAt, Value: 1}, {Key: fieldMongoID, Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	cur, err := coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer cur.Close(ctx)

	var list []*entity.Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		rec, err := fromDocument(collection, doc)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, cur.Err()
}

// Count cuenta documentos que cumplen filter.
func (r *RecordRepo) Count(ctx context.Context, collection string, filter query.Filter) (int64, error) {
	coll, q, err := r.prepare(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *RecordRepo) GetByID(ctx context.Context, collection, id string) (*entity.Record, error) {
	var doc bson.M
	err := r.db.Collection(collection).FindOne(ctx, bson.M{fieldMongoID: id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return fromDocument(collection, doc)
}

// Create inserta el documento. La colección debe existir: no se crean colecciones implícitamente.
func (r *RecordRepo) Create(ctx context.Context, rec *entity.Record) error {
	if err := r.requireCollection(ctx, rec.Collection); err != nil {
		return err
	}
	_, err := r.db.Collection(rec.Collection).InsertOne(ctx, toDocument(rec))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s/%s", domain.ErrDuplicate, rec.Collection, rec.ID)
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Update reemplaza el documento completo.
func (r *RecordRepo) Update(ctx context.Context, rec *entity.Record) error {
	res, err := r.db.Collection(rec.Collection).ReplaceOne(ctx, bson.M{fieldMongoID: rec.ID}, toDocument(rec))
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el documento.
func (r *RecordRepo) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{fieldMongoID: id})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AssignCompany fija companyId con un único UpdateMany; ModifiedCount excluye los que ya lo tenían.
func (r *RecordRepo) AssignCompany(ctx context.Context, collection string, filter query.Filter, companyID int64) (int64, error) {
	coll, q, err := r.prepare(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	update := bson.M{"$set": bson.M{
		entity.FieldCompanyID: companyID,
		fieldUpdatedAt:        time.Now().UTC(),
	}}
	scoped := bson.M{"$and": bson.A{q, bson.M{entity.FieldCompanyID: bson.M{"$ne": companyID}}}}
	res, err := coll.UpdateMany(ctx, scoped, update)
	if err != nil {
		return 0, fmt.Errorf("assign company: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *RecordRepo) prepare(ctx context.Context, collection string, filter query.Filter) (*mongo.Collection, bson.M, error) {
	if err := r.requireCollection(ctx, collection); err != nil {
		return nil, nil, err
	}
	q, err := toBSON(filter)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return r.db.Collection(collection), q, nil
}

func (r *RecordRepo) requireCollection(ctx context.Context, collection string) error {
	ok, err := r.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("colección %s: %w", collection, domain.ErrNotFound)
	}
	return nil
}

func toDocument(rec *entity.Record) bson.M {
	doc := bson.M{}
	for k, v := range rec.Data {
		doc[k] = v
	}
	doc[fieldMongoID] = rec.ID
	if rec.CompanyID != nil {
		doc[entity.FieldCompanyID] = *rec.CompanyID
	} else {
		doc[entity.FieldCompanyID] = nil
	}
	doc[fieldCreatedAt] = rec.CreatedAt
	doc[fieldUpdatedAt] = rec.UpdatedAt
	delete(doc, entity.FieldID)
	return doc
}

// fromDocument falla si companyId no es interpretable: tratarlo como nil lo haría visible
// para todos los tenants como si fuera un registro legado.
func fromDocument(collection string, doc bson.M) (*entity.Record, error) {
	rec := &entity.Record{Collection: collection, Data: map[string]any{}}
	for k, v := range doc {
		switch k {
		case fieldMongoID:
			rec.ID = fmt.Sprint(v)
		case entity.FieldCompanyID:
			id, err := companyIDFrom(v)
			if err != nil {
				return nil, fmt.Errorf("decode record %s/%v: %w", collection, doc[fieldMongoID], err)
			}
			rec.CompanyID = id
		case fieldCreatedAt:
			rec.CreatedAt = timeFrom(v)
		case fieldUpdatedAt:
			rec.UpdatedAt = timeFrom(v)
		default:
			rec.Data[k] = plain(v)
		}
	}
	return rec, nil
}

// companyIDFrom acepta lo que dejan scripts antiguos: int32, double entero o el número como texto.
func companyIDFrom(v any) (*int64, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return entity.CompanyIDPtr(n), nil
	case int32:
		return entity.CompanyIDPtr(int64(n)), nil
	case float64:
		if n == float64(int64(n)) {
			return entity.CompanyIDPtr(int64(n)), nil
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return entity.CompanyIDPtr(id), nil
		}
	}
	return nil, fmt.Errorf("companyId no numérico: %v", v)
}

func timeFrom(v any) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t
	}
	return time.Time{}
}

// plain convierte tipos bson anidados a map/slice para serializar como JSON.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = plain(val)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	}
	return v
}
