package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HandleNotFound processes a FindOne decode result, converting
// mongo.ErrNoDocuments to a nil result without error. Find* operations treat
// a missing document as an absent value, not a failure.
//
// Usage:
//
//	var account model.Account
//	err := r.col.FindOne(ctx, filter).Decode(&account)
//	return HandleNotFound(&account, err)
func HandleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
