package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/fastshift/internal/model"
)

type paymentDoc struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	ParcelID      string               `bson:"parcel_id"`
	Amount        primitive.Decimal128 `bson:"amount"`
	TransactionID string               `bson:"transaction_id"`
	CreatedBy     string               `bson:"created_by"`
	PaymentMethod string               `bson:"payment_method,omitempty"`
	PaidAtString  string               `bson:"paid_at_string"`
	PaidAt        time.Time            `bson:"paid_at"`
}

func paymentToDoc(p *model.Payment) (paymentDoc, error) {
	amount, err := primitive.ParseDecimal128(p.Amount.String())
	if err != nil {
		return paymentDoc{}, fmt.Errorf("encode amount: %w", err)
	}
	return paymentDoc{
		ParcelID:      p.ParcelID,
		Amount:        amount,
		TransactionID: p.TransactionID,
		CreatedBy:     p.CreatedBy,
		PaymentMethod: p.PaymentMethod,
		PaidAtString:  p.PaidAtString,
		PaidAt:        utc(p.PaidAt),
	}, nil
}

func (d paymentDoc) model() (*model.Payment, error) {
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	return &model.Payment{
		ID:            d.ID.Hex(),
		ParcelID:      d.ParcelID,
		Amount:        amount,
		TransactionID: d.TransactionID,
		CreatedBy:     d.CreatedBy,
		PaymentMethod: d.PaymentMethod,
		PaidAtString:  d.PaidAtString,
		PaidAt:        d.PaidAt.UTC(),
	}, nil
}

// PaymentRepo stores payments in the payments collection.
type PaymentRepo struct {
	coll *mongo.Collection
}

func (r *PaymentRepo) Insert(ctx context.Context, p *model.Payment) (string, error) {
	doc, err := paymentToDoc(p)
	if err != nil {
		return "", err
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	p.ID = insertedID(res)
	return p.ID, nil
}

func (r *PaymentRepo) List(ctx context.Context, createdBy string) ([]*model.Payment, error) {
	q := bson.M{}
	if createdBy != "" {
		q["created_by"] = createdBy
	}
	cur, err := r.coll.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.Payment, 0, len(docs))
	for _, d := range docs {
		p, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
