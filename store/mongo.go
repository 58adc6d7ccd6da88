package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo persists the state tree in a single collection: one document
// per top-level key ({_id: "guide", value: {...}}). Writes below the
// top level become nested $set updates, so child writes stay atomic at
// the path level. Subscribe is backed by a change stream on the
// collection (requires a replica set, as change streams do).
type Mongo struct {
	coll *mongo.Collection
}

// NewMongo wires the tree onto the given collection.
func NewMongo(db *mongo.Database, collection string) *Mongo {
	return &Mongo{coll: db.Collection(collection)}
}

type treeDoc struct {
	ID    string `bson:"_id"`
	Value any    `bson:"value"`
}

func (s *Mongo) Get(ctx context.Context, path string) (json.RawMessage, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, fmt.Errorf("store: empty path")
	}

	var doc treeDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": segs[0]}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	node := denormalize(doc.Value)
	for _, seg := range segs[1:] {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, nil
		}
		node, ok = obj[seg]
		if !ok {
			return nil, nil
		}
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("store: encode %s: %w", path, err)
	}
	return raw, nil
}

func (s *Mongo) Set(ctx context.Context, path string, value any) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		return fmt.Errorf("store: empty path")
	}

	// Same JSON round-trip as the in-memory tree: the stored value is
	// shape-identical regardless of the caller's Go type.
	buf, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	var node any
	if err := json.Unmarshal(buf, &node); err != nil {
		return fmt.Errorf("store: normalize %s: %w", path, err)
	}

	filter := bson.M{"_id": segs[0]}
	opts := options.Update().SetUpsert(true)

	field := "value"
	if len(segs) > 1 {
		field = "value." + strings.Join(segs[1:], ".")
	}
	_, err = s.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{field: node}}, opts)
	if err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

func (s *Mongo) Subscribe(path string, fn func(json.RawMessage)) (func(), error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, fmt.Errorf("store: empty path")
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": segs[0]}}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := s.coll.Watch(ctx, pipeline)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("store: watch %s: %w", path, err)
	}

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			raw, err := s.Get(ctx, path)
			if err != nil {
				log.Printf("store: re-read %s after change: %v", path, err)
				continue
			}
			fn(raw)
		}
	}()

	return cancel, nil
}

// denormalize rewrites the bson decode shapes (primitive.D/A) into the
// plain map/slice tree json.Marshal expects.
func denormalize(v any) any {
	switch t := v.(type) {
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = denormalize(e.Value)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = denormalize(e)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = denormalize(e)
		}
		return out
	case primitive.DateTime:
		return t.Time()
	default:
		return v
	}
}
