package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Mongo is the production backend. Documents live under their key as _id, so
// every Upsert and Delete is a single atomic operation on one document.
type Mongo struct {
	client *mongo.Client
	db     string
}

var _ Store = (*Mongo)(nil)

func NewMongo(uri, db string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &Mongo{client: client, db: db}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) coll(name string) *mongo.Collection {
	return m.client.Database(m.db).Collection(name)
}

func (m *Mongo) Get(ctx context.Context, collection, key string, out any) error {
	err := m.coll(collection).FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) FindOne(ctx context.Context, collection, field, value string, out any) error {
	err := m.coll(collection).FindOne(ctx, bson.D{{Key: field, Value: value}}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) List(ctx context.Context, collection string, out any) error {
	cur, err := m.coll(collection).Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (m *Mongo) ListByField(ctx context.Context, collection, field, value string, out any) error {
	cur, err := m.coll(collection).Find(ctx, bson.D{{Key: field, Value: value}})
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (m *Mongo) Upsert(ctx context.Context, collection, key string, doc any) error {
	_, err := m.coll(collection).ReplaceOne(
		ctx,
		bson.D{{Key: "_id", Value: key}},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (m *Mongo) Delete(ctx context.Context, collection, key string) (bool, error) {
	res, err := m.coll(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
