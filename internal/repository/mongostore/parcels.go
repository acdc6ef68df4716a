package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/store"
)

type parcelDoc struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty"`
	CreatedBy          string               `bson:"created_by"`
	TrackingID         string               `bson:"tracking_id,omitempty"`
	PaymentStatus      model.PaymentStatus  `bson:"payment_status"`
	DeliveryStatus     model.DeliveryStatus `bson:"delivery_status"`
	AssignedRiderID    string               `bson:"assigned_rider_id,omitempty"`
	AssignedRiderEmail string               `bson:"assigned_rider_email,omitempty"`
	AssignedRiderName  string               `bson:"assigned_rider_name,omitempty"`
	CashoutStatus      model.CashoutStatus  `bson:"cashout_status"`
	CreatedAt          time.Time            `bson:"created_at"`
	AssignedAt         *time.Time           `bson:"assigned_at,omitempty"`
	PickedAt           *time.Time           `bson:"picked_at,omitempty"`
	DeliveredAt        *time.Time           `bson:"delivered_at,omitempty"`
	CashedOutAt        *time.Time           `bson:"cashed_out_at,omitempty"`
	Extra              bson.M               `bson:",inline"`
}

var parcelFields = []string{"created_by", "tracking_id", "payment_status", "delivery_status",
	"assigned_rider_id", "assigned_rider_email", "assigned_rider_name", "cashout_status",
	"created_at", "assigned_at", "picked_at", "delivered_at", "cashed_out_at"}

func parcelToDoc(p *model.Parcel) parcelDoc {
	return parcelDoc{
		CreatedBy:          p.CreatedBy,
		TrackingID:         p.TrackingID,
		PaymentStatus:      p.PaymentStatus,
		DeliveryStatus:     p.DeliveryStatus,
		AssignedRiderID:    p.AssignedRiderID,
		AssignedRiderEmail: p.AssignedRiderEmail,
		AssignedRiderName:  p.AssignedRiderName,
		CashoutStatus:      p.CashoutStatus,
		CreatedAt:          utc(p.CreatedAt),
		AssignedAt:         utcPtr(p.AssignedAt),
		PickedAt:           utcPtr(p.PickedAt),
		DeliveredAt:        utcPtr(p.DeliveredAt),
		CashedOutAt:        utcPtr(p.CashedOutAt),
		Extra:              bsonOf(p.Extra, parcelFields...),
	}
}

func (d parcelDoc) model() *model.Parcel {
	return &model.Parcel{
		ID:                 d.ID.Hex(),
		CreatedBy:          d.CreatedBy,
		TrackingID:         d.TrackingID,
		PaymentStatus:      d.PaymentStatus,
		DeliveryStatus:     d.DeliveryStatus,
		AssignedRiderID:    d.AssignedRiderID,
		AssignedRiderEmail: d.AssignedRiderEmail,
		AssignedRiderName:  d.AssignedRiderName,
		CashoutStatus:      d.CashoutStatus,
		CreatedAt:          d.CreatedAt.UTC(),
		AssignedAt:         utcPtr(d.AssignedAt),
		PickedAt:           utcPtr(d.PickedAt),
		DeliveredAt:        utcPtr(d.DeliveredAt),
		CashedOutAt:        utcPtr(d.CashedOutAt),
		Extra:              extraOf(d.Extra),
	}
}

// ParcelRepo stores parcels in the parcels collection.
type ParcelRepo struct {
	coll *mongo.Collection
}

func (r *ParcelRepo) Insert(ctx context.Context, p *model.Parcel) (string, error) {
	res, err := r.coll.InsertOne(ctx, parcelToDoc(p))
	if err != nil {
		return "", err
	}
	p.ID = insertedID(res)
	return p.ID, nil
}

func (r *ParcelRepo) Get(ctx context.Context, id string) (*model.Parcel, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	var d parcelDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return d.model(), nil
}

// parcelFilter renders f as a query document.
func parcelFilter(f store.ParcelFilter) bson.M {
	q := bson.M{}
	if f.CreatedBy != "" {
		q["created_by"] = f.CreatedBy
	}
	if f.PaymentStatus != "" {
		q["payment_status"] = f.PaymentStatus
	}
	if f.RiderEmail != "" {
		q["assigned_rider_email"] = f.RiderEmail
	}
	switch len(f.DeliveryStatuses) {
	case 0:
	case 1:
		q["delivery_status"] = f.DeliveryStatuses[0]
	default:
		q["delivery_status"] = bson.M{"$in": f.DeliveryStatuses}
	}
	return q
}

func parcelSort(s store.ParcelSort) bson.D {
	if s == store.SortAssignedDesc {
		return bson.D{{Key: "assigned_at", Value: -1}, {Key: "created_at", Value: -1}}
	}
	return bson.D{{Key: "created_at", Value: -1}}
}

func (r *ParcelRepo) List(ctx context.Context, f store.ParcelFilter, sort store.ParcelSort) ([]*model.Parcel, error) {
	cur, err := r.coll.Find(ctx, parcelFilter(f), options.Find().SetSort(parcelSort(sort)))
	if err != nil {
		return nil, err
	}
	var docs []parcelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.Parcel, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *ParcelRepo) Assign(ctx context.Context, id string, a model.Assignment) (store.UpdateResult, error) {
	oid, ok := objectID(id)
	if !ok {
		return store.UpdateResult{}, nil
	}
	filter := bson.M{
		"_id":             oid,
		"payment_status":  model.PaymentPaid,
		"delivery_status": model.DeliveryNotCollected,
	}
	update := bson.M{"$set": bson.M{
		"delivery_status":      model.DeliveryRiderAssigned,
		"assigned_rider_id":    a.RiderID,
		"assigned_rider_email": a.RiderEmail,
		"assigned_rider_name":  a.RiderName,
		"assigned_at":          utc(a.At),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res), nil
}

func (r *ParcelRepo) Advance(ctx context.Context, id string, to model.DeliveryStatus, at time.Time) (store.UpdateResult, error) {
	from, ok := to.Predecessor()
	if !ok || to == model.DeliveryRiderAssigned {
		return store.UpdateResult{}, fmt.Errorf("%w: %s", store.ErrInvalidTransition, to)
	}
	oid, ok := objectID(id)
	if !ok {
		return store.UpdateResult{}, nil
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "delivery_status": from},
		bson.M{"$set": bson.M{"delivery_status": to, to.TimestampField(): utc(at)}})
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res), nil
}

func (r *ParcelRepo) MarkPaid(ctx context.Context, id string) (store.UpdateResult, error) {
	oid, ok := objectID(id)
	if !ok {
		return store.UpdateResult{}, nil
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"payment_status": model.PaymentPaid}})
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res), nil
}

func (r *ParcelRepo) Cashout(ctx context.Context, id string, at time.Time) (store.UpdateResult, error) {
	oid, ok := objectID(id)
	if !ok {
		return store.UpdateResult{}, nil
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "cashout_status": bson.M{"$ne": model.CashoutCompleted}},
		bson.M{"$set": bson.M{"cashout_status": model.CashoutCompleted, "cashed_out_at": utc(at)}})
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res), nil
}

func (r *ParcelRepo) CountByDeliveryStatus(ctx context.Context) ([]model.StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$delivery_status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "status", Value: "$_id"},
			{Key: "count", Value: 1},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status model.DeliveryStatus `bson:"status"`
		Count  int64                `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]model.StatusCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.StatusCount{Status: row.Status, Count: row.Count})
	}
	return out, nil
}

func (r *ParcelRepo) Delete(ctx context.Context, id string) (int64, error) {
	oid, ok := objectID(id)
	if !ok {
		return 0, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
