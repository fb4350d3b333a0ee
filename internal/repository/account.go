package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/persona-fest/server-go/internal/database"
	"github.com/persona-fest/server-go/internal/model"
)

// ErrDuplicateEmail is returned by Create when the unique email index
// rejects the insert.
var ErrDuplicateEmail = errors.New("email already exists")

type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindAll(ctx context.Context) ([]model.Account, error)
	Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Count(ctx context.Context) (int, error)
}

type accountRepo struct {
	col *mongo.Collection
}

func NewAccountRepository(db *database.DB) AccountRepository {
	return &accountRepo{col: db.Collection(database.UsersCollection)}
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var account model.Account
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&account)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	return HandleNotFound(&account, err)
}

func (r *accountRepo) FindAll(ctx context.Context) ([]model.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var accounts []model.Account
	if err := cur.All(ctx, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	account := model.Account{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		IsAdmin:      false,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	res, err := r.col.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	account.ID = res.InsertedID.(primitive.ObjectID)
	return &account, nil
}

func (r *accountRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"lastLogin": at},
	})
	return err
}

func (r *accountRepo) Count(ctx context.Context) (int, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	return int(n), err
}
