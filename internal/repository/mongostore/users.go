package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/fastshift/internal/model"
	"github.com/iliyamo/fastshift/internal/store"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name,omitempty"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
	LastLoggedIn *time.Time         `bson:"last_logged_in,omitempty"`
	Extra        bson.M             `bson:",inline"`
}

func (d userDoc) model() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Name:         d.Name,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt.UTC(),
		LastLoggedIn: utcPtr(d.LastLoggedIn),
		Extra:        extraOf(d.Extra),
	}
}

// UserRepo stores users in the users collection.
type UserRepo struct {
	coll *mongo.Collection
}

func (r *UserRepo) Insert(ctx context.Context, u *model.User) (string, error) {
	u.Email = normalizeEmail(u.Email)
	res, err := r.coll.InsertOne(ctx, userDoc{
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		CreatedAt:    utc(u.CreatedAt),
		LastLoggedIn: utcPtr(u.LastLoggedIn),
		Extra:        bsonOf(u.Extra, "email", "name", "role", "created_at", "last_logged_in"),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: email %s", store.ErrDuplicate, u.Email)
		}
		return "", err
	}
	u.ID = insertedID(res)
	return u.ID, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var d userDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return d.model(), nil
}

func (r *UserRepo) TouchLogin(ctx context.Context, email string, at time.Time) (store.UpdateResult, error) {
	return r.set(ctx, bson.M{"email": normalizeEmail(email)}, bson.M{"last_logged_in": utc(at)})
}

func (r *UserRepo) SetRoleByID(ctx context.Context, id, role string) (store.UpdateResult, error) {
	oid, ok := objectID(id)
	if !ok {
		return store.UpdateResult{}, nil
	}
	return r.set(ctx, bson.M{"_id": oid}, bson.M{"role": role})
}

func (r *UserRepo) SetRoleByEmail(ctx context.Context, email, role string) (store.UpdateResult, error) {
	return r.set(ctx, bson.M{"email": normalizeEmail(email)}, bson.M{"role": role})
}

func (r *UserRepo) set(ctx context.Context, filter, fields bson.M) (store.UpdateResult, error) {
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return store.UpdateResult{}, err
	}
	return updated(res), nil
}

// searchFilter matches q literally and case-insensitively inside email or
// name.
func searchFilter(q string) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"email": re},
		bson.M{"name": re},
	}}
}

func (r *UserRepo) Search(ctx context.Context, q string, limit int) ([]*model.User, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, searchFilter(q), opts)
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*model.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}
