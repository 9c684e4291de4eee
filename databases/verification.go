package databases

// go generate: mockery --name VerificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alisto-app/alisto-api/models"
)

const verificationCollectionName = "verifications"

// VerificationDatabase contains the methods to use with the verification database
type VerificationDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Verification, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Verification, error)
	InsertOne(ctx context.Context, verification models.Verification) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
}

type verificationDatabase struct {
	db DatabaseHelper
}

// NewVerificationDatabase initializes a new instance of verification database with the provided db connection
func NewVerificationDatabase(db DatabaseHelper) VerificationDatabase {
	return &verificationDatabase{
		db: db,
	}
}

func (v *verificationDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Verification, error) {
	verification := &models.Verification{}
	err := v.db.Collection(verificationCollectionName).FindOne(ctx, filter).Decode(&verification)
	if err != nil {
		return nil, err
	}
	return verification, nil
}

func (v *verificationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Verification, error) {
	cursor, err := v.db.Collection(verificationCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var verifications []models.Verification
	if err := cursor.All(ctx, &verifications); err != nil {
		return nil, err
	}
	return verifications, nil
}

func (v *verificationDatabase) InsertOne(ctx context.Context, verification models.Verification) (InsertOneResultHelper, error) {
	return v.db.Collection(verificationCollectionName).InsertOne(ctx, verification)
}

func (v *verificationDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return v.db.Collection(verificationCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (v *verificationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return v.db.Collection(verificationCollectionName).CountDocuments(ctx, filter, opts...)
}

func (v *verificationDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	return v.db.Collection(verificationCollectionName).DeleteMany(ctx, filter)
}
