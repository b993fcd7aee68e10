package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Connect opens a client for uri and verifies it with a ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// DocumentStore implements domain.RecordStore with one MongoDB collection
// per record collection. Ids are ObjectID hex strings.
type DocumentStore struct {
	db *mongo.Database
}

var _ domain.RecordStore = (*DocumentStore)(nil)

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *mongo.Database) *DocumentStore {
	return &DocumentStore{db: db}
}

// List returns every document in collection sorted on orderBy.Field
func (s *DocumentStore) List(ctx context.Context, collection string, orderBy domain.OrderBy) ([]domain.Document, error) {
	opts := options.Find().SetSort(sortSpec(orderBy))
	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, unavailable("list "+collection, err)
	}
	return collect(ctx, cursor, collection)
}

// Create inserts fields under a new ObjectID and returns its hex form
func (s *DocumentStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	oid := primitive.NewObjectID()
	doc := bson.M{"_id": oid}
	for k, v := range fields {
		doc[k] = v
	}

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", unavailable("create in "+collection, err)
	}
	return oid.Hex(), nil
}

// Get returns a single document
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Document{}, domain.ErrNotFound
	}

	var raw bson.M
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Document{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Document{}, unavailable("get "+collection+"/"+id, err)
	}
	return toDocument(raw)
}

// Update sets the given fields; nil values are stored as null
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return unavailable("update "+collection+"/"+id, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a document
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return unavailable("delete "+collection+"/"+id, err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// QueryLimited returns at most limit documents
func (s *DocumentStore) QueryLimited(ctx context.Context, collection string, limit int) ([]domain.Document, error) {
	opts := options.Find().SetLimit(int64(limit))
	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, unavailable("query "+collection, err)
	}
	return collect(ctx, cursor, collection)
}

func collect(ctx context.Context, cursor *mongo.Cursor, collection string) ([]domain.Document, error) {
	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, unavailable("read "+collection, err)
	}

	docs := make([]domain.Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := toDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func sortSpec(orderBy domain.OrderBy) bson.D {
	direction := 1
	if orderBy.Descending {
		direction = -1
	}
	return bson.D{{Key: orderBy.Field, Value: direction}, {Key: "_id", Value: 1}}
}

// toDocument splits off _id and converts BSON-specific values to the plain
// Go types the expense mapper understands
func toDocument(raw bson.M) (domain.Document, error) {
	var id string
	switch v := raw["_id"].(type) {
	case primitive.ObjectID:
		id = v.Hex()
	case string:
		id = v
	default:
		return domain.Document{}, fmt.Errorf("%w: unsupported _id %T", domain.ErrInvalidDocument, raw["_id"])
	}

	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = normalizeValue(v)
	}
	return domain.Document{ID: id, Fields: fields}, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Decimal128:
		return val.String()
	case primitive.Null:
		return nil
	default:
		return v
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
