package databases

// go generate: mockery --name PasswordResetDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alisto-app/alisto-api/models"
)

const passwordResetCollectionName = "passwordResets"

// PasswordResetDatabase contains the methods to use with the password reset database
type PasswordResetDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.PasswordReset, error)
	InsertOne(ctx context.Context, reset models.PasswordReset) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type passwordResetDatabase struct {
	db DatabaseHelper
}

// NewPasswordResetDatabase initializes a new instance of password reset database with the provided db connection
func NewPasswordResetDatabase(db DatabaseHelper) PasswordResetDatabase {
	return &passwordResetDatabase{
		db: db,
	}
}

func (p *passwordResetDatabase) FindOne(ctx context.Context, filter interface{}) (*models.PasswordReset, error) {
	reset := &models.PasswordReset{}
	err := p.db.Collection(passwordResetCollectionName).FindOne(ctx, filter).Decode(&reset)
	if err != nil {
		return nil, err
	}
	return reset, nil
}

func (p *passwordResetDatabase) InsertOne(ctx context.Context, reset models.PasswordReset) (InsertOneResultHelper, error) {
	return p.db.Collection(passwordResetCollectionName).InsertOne(ctx, reset)
}

func (p *passwordResetDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return p.db.Collection(passwordResetCollectionName).UpdateOne(ctx, filter, update, opts...)
}
