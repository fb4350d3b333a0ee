package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/persona-fest/server-go/internal/database"
	"github.com/persona-fest/server-go/internal/model"
)

type RegistrationRepository interface {
	Insert(ctx context.Context, reg *model.Registration) (*model.Registration, error)
	FindAll(ctx context.Context) ([]model.Registration, error)
	Count(ctx context.Context) (int, error)
}

type registrationRepo struct {
	col *mongo.Collection
}

func NewRegistrationRepository(db *database.DB) RegistrationRepository {
	return &registrationRepo{col: db.Collection(database.RegistrationsCollection)}
}

func (r *registrationRepo) Insert(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	res, err := r.col.InsertOne(ctx, reg)
	if err != nil {
		return nil, err
	}
	reg.ID = res.InsertedID.(primitive.ObjectID)
	return reg, nil
}

func (r *registrationRepo) FindAll(ctx context.Context) ([]model.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var regs []model.Registration
	if err := cur.All(ctx, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepo) Count(ctx context.Context) (int, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	return int(n), err
}
