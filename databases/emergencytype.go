package databases

// go generate: mockery --name EmergencyTypeDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alisto-app/alisto-api/models"
)

const emergencyTypeCollectionName = "emergencyTypes"

// EmergencyTypeDatabase contains the methods to use with the emergency type database
type EmergencyTypeDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.EmergencyType, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.EmergencyType, error)
	InsertOne(ctx context.Context, emergencyType models.EmergencyType) (InsertOneResultHelper, error)
}

type emergencyTypeDatabase struct {
	db DatabaseHelper
}

// NewEmergencyTypeDatabase initializes a new instance of emergency type database with the provided db connection
func NewEmergencyTypeDatabase(db DatabaseHelper) EmergencyTypeDatabase {
	return &emergencyTypeDatabase{
		db: db,
	}
}

func (e *emergencyTypeDatabase) FindOne(ctx context.Context, filter interface{}) (*models.EmergencyType, error) {
	emergencyType := &models.EmergencyType{}
	err := e.db.Collection(emergencyTypeCollectionName).FindOne(ctx, filter).Decode(&emergencyType)
	if err != nil {
		return nil, err
	}
	return emergencyType, nil
}

func (e *emergencyTypeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.EmergencyType, error) {
	cursor, err := e.db.Collection(emergencyTypeCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var emergencyTypes []models.EmergencyType
	if err := cursor.All(ctx, &emergencyTypes); err != nil {
		return nil, err
	}
	return emergencyTypes, nil
}

func (e *emergencyTypeDatabase) InsertOne(ctx context.Context, emergencyType models.EmergencyType) (InsertOneResultHelper, error) {
	return e.db.Collection(emergencyTypeCollectionName).InsertOne(ctx, emergencyType)
}
