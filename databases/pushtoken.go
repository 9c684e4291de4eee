package databases

// go generate: mockery --name PushTokenDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alisto-app/alisto-api/models"
)

const pushTokenCollectionName = "pushTokens"

// PushTokenDatabase contains the methods to use with the push token database
type PushTokenDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.PushToken, error)
	UpsertOne(ctx context.Context, token models.PushToken) (*mongo.UpdateResult, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
}

type pushTokenDatabase struct {
	db DatabaseHelper
}

// NewPushTokenDatabase initializes a new instance of push token database with the provided db connection
func NewPushTokenDatabase(db DatabaseHelper) PushTokenDatabase {
	return &pushTokenDatabase{
		db: db,
	}
}

func (p *pushTokenDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.PushToken, error) {
	cursor, err := p.db.Collection(pushTokenCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var tokens []models.PushToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// UpsertOne keeps one row per (user, token) pair no matter how often the
// mobile app re-registers
func (p *pushTokenDatabase) UpsertOne(ctx context.Context, token models.PushToken) (*mongo.UpdateResult, error) {
	upsert := true
	filter := bson.M{"userID": token.UserID, "token": token.Token}
	update := bson.M{
		"$set":         bson.M{"createdAt": token.CreatedAt},
		"$setOnInsert": bson.M{"_id": token.ID, "userID": token.UserID, "token": token.Token},
	}
	return p.db.Collection(pushTokenCollectionName).UpdateOne(ctx, filter, update, &options.UpdateOptions{Upsert: &upsert})
}

func (p *pushTokenDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	return p.db.Collection(pushTokenCollectionName).DeleteMany(ctx, filter)
}
