// Package mongostore implements the storage interfaces on MongoDB. Each
// entity lives in its own collection; ids are ObjectID hex strings.
package mongostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/fastshift/internal/store"
)

// Collection names.
const (
	ParcelsCollection   = "parcels"
	PaymentsCollection  = "payments"
	UsersCollection     = "users"
	RidersCollection    = "riders"
	TrackingsCollection = "trackings"
)

// Connect dials uri and verifies the deployment answers a ping. Embedded
// documents decode as bson.M so unknown client keys round-trip as JSON
// objects.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// NewStore binds every repository to database dbName. MongoDB writes are
// issued independently, so the returned store has no Transactor.
func NewStore(client *mongo.Client, dbName string) *store.Store {
	db := client.Database(dbName)
	return &store.Store{
		Parcels:   &ParcelRepo{coll: db.Collection(ParcelsCollection)},
		Payments:  &PaymentRepo{coll: db.Collection(PaymentsCollection)},
		Users:     &UserRepo{coll: db.Collection(UsersCollection)},
		Riders:    &RiderRepo{coll: db.Collection(RidersCollection)},
		Trackings: &TrackingRepo{coll: db.Collection(TrackingsCollection)},
		Closer:    disconnector{client: client},
	}
}

// EnsureIndexes creates the indexes the queries rely on. It is safe to run
// repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ParcelsCollection: {
			{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "assigned_rider_email", Value: 1}, {Key: "delivery_status", Value: 1}}},
			{Keys: bson.D{{Key: "payment_status", Value: 1}, {Key: "delivery_status", Value: 1}}},
		},
		PaymentsCollection: {
			{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "paid_at", Value: -1}}},
		},
		RidersCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "district", Value: 1}}},
		},
		TrackingsCollection: {
			{Keys: bson.D{{Key: "tracking_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

type disconnector struct{ client *mongo.Client }

func (d disconnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// objectID parses a hex id. Malformed ids can never match a document.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}

func updated(res *mongo.UpdateResult) store.UpdateResult {
	return store.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// utc truncates to the millisecond precision BSON dates carry.
func utc(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := utc(*t)
	return &v
}

func extraOf(m bson.M) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// bsonOf copies extra keys for an inline map, dropping any key the document
// struct already owns.
func bsonOf(m map[string]any, owned ...string) bson.M {
	if len(m) == 0 {
		return nil
	}
	out := make(bson.M, len(m))
outer:
	for k, v := range m {
		if k == "_id" {
			continue
		}
		for _, o := range owned {
			if k == o {
				continue outer
			}
		}
		out[k] = v
	}
	return out
}
