package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/fastshift/internal/model"
)

type trackingDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	TrackingID string             `bson:"tracking_id"`
	Status     string             `bson:"status"`
	Timestamp  time.Time          `bson:"timestamp"`
	Extra      bson.M             `bson:",inline"`
}

// TrackingRepo appends tracking events to the trackings collection.
type TrackingRepo struct {
	coll *mongo.Collection
}

func (r *TrackingRepo) Append(ctx context.Context, e *model.TrackingEvent) (string, error) {
	res, err := r.coll.InsertOne(ctx, trackingDoc{
		TrackingID: e.TrackingID,
		Status:     e.Status,
		Timestamp:  utc(e.Timestamp),
		Extra:      bsonOf(e.Extra, "tracking_id", "status", "timestamp"),
	})
	if err != nil {
		return "", err
	}
	e.ID = insertedID(res)
	return e.ID, nil
}

// List returns events oldest first; insertion order breaks timestamp ties.
func (r *TrackingRepo) List(ctx context.Context, trackingID string) ([]*model.TrackingEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"tracking_id": trackingID}, opts)
	if err != nil {
		return nil, err
	}
	var docs []trackingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.TrackingEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, &model.TrackingEvent{
			ID:         d.ID.Hex(),
			TrackingID: d.TrackingID,
			Status:     d.Status,
			Timestamp:  d.Timestamp.UTC(),
			Extra:      extraOf(d.Extra),
		})
	}
	return out, nil
}
