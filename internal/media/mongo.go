package media

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHost keeps display pictures as blobs in a mongo collection.
type MongoHost struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoHost(ctx context.Context, uri, dbName, collName string) (*MongoHost, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(pctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return &MongoHost{client: cli, coll: cli.Database(dbName).Collection(collName)}, nil
}

func (m *MongoHost) Upload(ctx context.Context, data []byte) (string, error) {
	id := uuid.NewString()
	_, err := m.coll.InsertOne(ctx, bson.M{
		"_id":       id,
		"data":      data,
		"createdAt": time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (m *MongoHost) Fetch(ctx context.Context, publicID string) ([]byte, error) {
	if publicID == "" {
		return nil, ErrNotFound
	}
	var doc struct {
		Data []byte `bson:"data"`
	}
	err := m.coll.FindOne(ctx, bson.M{"_id": publicID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (m *MongoHost) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
