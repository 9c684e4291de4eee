package databases

// go generate: mockery --name AgencyDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alisto-app/alisto-api/models"
)

const (
	agencyCollectionName              = "agencies"
	agencyEmergencyTypeCollectionName = "agencyEmergencyTypes"
)

// AgencyDatabase contains the methods to use with the agency database
type AgencyDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Agency, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Agency, error)
	InsertOne(ctx context.Context, agency models.Agency) (InsertOneResultHelper, error)
}

type agencyDatabase struct {
	db DatabaseHelper
}

// NewAgencyDatabase initializes a new instance of agency database with the provided db connection
func NewAgencyDatabase(db DatabaseHelper) AgencyDatabase {
	return &agencyDatabase{
		db: db,
	}
}

func (a *agencyDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Agency, error) {
	agency := &models.Agency{}
	err := a.db.Collection(agencyCollectionName).FindOne(ctx, filter).Decode(&agency)
	if err != nil {
		return nil, err
	}
	return agency, nil
}

func (a *agencyDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Agency, error) {
	cursor, err := a.db.Collection(agencyCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var agencies []models.Agency
	if err := cursor.All(ctx, &agencies); err != nil {
		return nil, err
	}
	return agencies, nil
}

func (a *agencyDatabase) InsertOne(ctx context.Context, agency models.Agency) (InsertOneResultHelper, error) {
	return a.db.Collection(agencyCollectionName).InsertOne(ctx, agency)
}

// AgencyEmergencyTypeDatabase contains the methods to use with the
// agency/emergency-type association database
type AgencyEmergencyTypeDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AgencyEmergencyType, error)
	InsertOne(ctx context.Context, link models.AgencyEmergencyType) (InsertOneResultHelper, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type agencyEmergencyTypeDatabase struct {
	db DatabaseHelper
}

// NewAgencyEmergencyTypeDatabase initializes a new instance of the association database with the provided db connection
func NewAgencyEmergencyTypeDatabase(db DatabaseHelper) AgencyEmergencyTypeDatabase {
	return &agencyEmergencyTypeDatabase{
		db: db,
	}
}

func (a *agencyEmergencyTypeDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AgencyEmergencyType, error) {
	cursor, err := a.db.Collection(agencyEmergencyTypeCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var links []models.AgencyEmergencyType
	if err := cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (a *agencyEmergencyTypeDatabase) InsertOne(ctx context.Context, link models.AgencyEmergencyType) (InsertOneResultHelper, error) {
	return a.db.Collection(agencyEmergencyTypeCollectionName).InsertOne(ctx, link)
}

func (a *agencyEmergencyTypeDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(agencyEmergencyTypeCollectionName).CountDocuments(ctx, filter, opts...)
}
