package databases

// go generate: mockery --name BroadcastDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alisto-app/alisto-api/models"
)

const broadcastCollectionName = "crowdsourceBroadcasts"

// BroadcastDatabase contains the methods to use with the crowdsource broadcast database
type BroadcastDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CrowdsourceBroadcast, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CrowdsourceBroadcast, error)
	InsertOne(ctx context.Context, broadcast models.CrowdsourceBroadcast) (InsertOneResultHelper, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
}

type broadcastDatabase struct {
	db DatabaseHelper
}

// NewBroadcastDatabase initializes a new instance of broadcast database with the provided db connection
func NewBroadcastDatabase(db DatabaseHelper) BroadcastDatabase {
	return &broadcastDatabase{
		db: db,
	}
}

func (b *broadcastDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CrowdsourceBroadcast, error) {
	broadcast := &models.CrowdsourceBroadcast{}
	err := b.db.Collection(broadcastCollectionName).FindOne(ctx, filter, opts...).Decode(&broadcast)
	if err != nil {
		return nil, err
	}
	return broadcast, nil
}

func (b *broadcastDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CrowdsourceBroadcast, error) {
	cursor, err := b.db.Collection(broadcastCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var broadcasts []models.CrowdsourceBroadcast
	if err := cursor.All(ctx, &broadcasts); err != nil {
		return nil, err
	}
	return broadcasts, nil
}

func (b *broadcastDatabase) InsertOne(ctx context.Context, broadcast models.CrowdsourceBroadcast) (InsertOneResultHelper, error) {
	return b.db.Collection(broadcastCollectionName).InsertOne(ctx, broadcast)
}

func (b *broadcastDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	return b.db.Collection(broadcastCollectionName).DeleteMany(ctx, filter)
}
