// Package mongo persists the state slot as one document per key in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nutritrack/pkg/domain"
)

var _ domain.StateSlot = (*Slot)(nil)

const (
	// DefaultDatabase is used when no database name is configured.
	DefaultDatabase = "nutritrack"
	// CollectionName holds the state documents.
	CollectionName = "state"
)

// collection is the subset of *mongo.Collection the slot relies on.
type collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

type stateDocument struct {
	Key       string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Slot reads and replaces state documents keyed by slot key.
type Slot struct {
	client *mongo.Client
	coll   collection
	now    func() time.Time
}

// Connect dials uri, pings the server and binds the state collection of database.
func Connect(ctx context.Context, uri, database string) (*Slot, error) {
	if uri == "" {
		return nil, errors.New("mongo uri required")
	}
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Slot{
		client: client,
		coll:   client.Database(database).Collection(CollectionName),
		now:    time.Now,
	}, nil
}

func newSlotWithCollection(coll collection, now func() time.Time) *Slot {
	return &Slot{coll: coll, now: now}
}

// Read returns the payload stored under key.
func (s *Slot) Read(ctx context.Context, key string) ([]byte, error) {
	var doc stateDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", key, err)
	}
	return []byte(doc.Payload), nil
}

// Write replaces (or inserts) the document for key.
func (s *Slot) Write(ctx context.Context, key string, payload []byte) error {
	doc := stateDocument{Key: key, Payload: string(payload), UpdatedAt: s.now().UTC()}
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Close disconnects the client when the slot owns one.
func (s *Slot) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
