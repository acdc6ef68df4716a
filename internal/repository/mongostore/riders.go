package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/store"
)

type riderDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	District   string             `bson:"district"`
	Status     model.RiderStatus  `bson:"status"`
	WorkStatus model.WorkStatus   `bson:"work_status"`
	CreatedAt  time.Time          `bson:"created_at"`
	Extra      bson.M             `bson:",inline"`
}

func (d riderDoc) model() *model.Rider {
	return &model.Rider{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		Email:      d.Email,
		District:   d.District,
		Status:     d.Status,
		WorkStatus: d.WorkStatus,
		CreatedAt:  d.CreatedAt.UTC(),
		Extra:      extraOf(d.Extra),
	}
}

// RiderRepo stores rider applications in the riders collection.
type RiderRepo struct {
	coll *mongo.Collection
}

func (r *RiderRepo) Insert(ctx context.Context, rd *model.Rider) (string, error) {
	rd.Email = normalizeEmail(rd.Email)
	res, err := r.coll.InsertOne(ctx, riderDoc{
		Name:       rd.Name,
		Email:      rd.Email,
		District:   rd.District,
		Status:     rd.Status,
		WorkStatus: rd.WorkStatus,
		CreatedAt:  utc(rd.CreatedAt),
		Extra:      bsonOf(rd.Extra, "name", "email", "district", "status", "work_status", "created_at"),
	})
	if err != nil {
		return "", err
	}
	rd.ID = insertedID(res)
	return rd.ID, nil
}

func (r *RiderRepo) Get(ctx context.Context, id string) (*model.Rider, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	var d riderDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return d.model(), nil
}

func (r *RiderRepo) List(ctx context.Context, f store.RiderFilter) ([]*model.Rider, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.District != "" {
		q["district"] = f.District
	}
	cur, err := r.coll.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []riderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.Rider, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *RiderRepo) SetStatus(ctx context.Context, id string, s model.RiderStatus) (store.UpdateResult, error) {
	return r.set(ctx, id, bson.M{"status": s})
}

func (r *RiderRepo) SetWorkStatus(ctx context.Context, id string, s model.WorkStatus) (store.UpdateResult, error) {
	return r.set(ctx, id, bson.M{"work_status": s})
}

func (r *RiderRepo) set(ctx context.Context, id string, fields bson.M) (store.UpdateResult, error) {
	oid, ok := objectID(id)
	if !ok {
		return store.UpdateResult{}, nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res), nil
}
