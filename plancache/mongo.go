package plancache

import (
	"context"
	"time"

	"github.com/parserator/kernel/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Mongo is a Cache backend over the official mongo-driver/v2, for
// deployments that already run MongoDB and want plan cache entries queryable
// alongside other application data rather than opaque blobs in Redis.
type Mongo struct {
	coll *mongo.Collection
}

// mongoDoc is the on-disk document shape; _id is the cache key.
type mongoDoc struct {
	ID        string    `bson:"_id"`
	Entry     bson.Raw  `bson:"entry"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongo constructs a Mongo-backed Cache over an already-connected
// collection handle. Callers are expected to have created a TTL or unique
// index on _id as appropriate for their deployment.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

func (m *Mongo) Get(ctx context.Context, key string) (types.PlanCacheEntry, bool, error) {
	var doc mongoDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return types.PlanCacheEntry{}, false, nil
	}
	if err != nil {
		return types.PlanCacheEntry{}, false, err
	}
	var entry types.PlanCacheEntry
	if err := bson.Unmarshal(doc.Entry, &entry); err != nil {
		return types.PlanCacheEntry{}, false, err
	}
	return types.ClonePlanCacheEntry(entry), true, nil
}

func (m *Mongo) Set(ctx context.Context, key string, entry types.PlanCacheEntry) error {
	raw, err := bson.Marshal(types.ClonePlanCacheEntry(entry))
	if err != nil {
		return err
	}
	doc := mongoDoc{ID: key, Entry: raw, UpdatedAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	_, err = m.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts)
	return err
}

func (m *Mongo) Delete(ctx context.Context, key string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *Mongo) Clear(ctx context.Context) error {
	_, err := m.coll.DeleteMany(ctx, bson.M{})
	return err
}
