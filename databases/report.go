package databases

// go generate: mockery --name ReportDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alisto-app/alisto-api/models"
)

const reportCollectionName = "emergencyReports"

// ReportDatabase contains the methods to use with the emergency report database
type ReportDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.EmergencyReport, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.EmergencyReport, error)
	FindPaginated(ctx context.Context, filter interface{}, limit, page int) ([]models.EmergencyReport, error)
	InsertOne(ctx context.Context, report models.EmergencyReport) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.EmergencyReport, error)
	DeleteOne(ctx context.Context, filter interface{}) error
}

type reportDatabase struct {
	db DatabaseHelper
}

// NewReportDatabase initializes a new instance of report database with the provided db connection
func NewReportDatabase(db DatabaseHelper) ReportDatabase {
	return &reportDatabase{
		db: db,
	}
}

func (r *reportDatabase) FindOne(ctx context.Context, filter interface{}) (*models.EmergencyReport, error) {
	report := &models.EmergencyReport{}
	err := r.db.Collection(reportCollectionName).FindOne(ctx, filter).Decode(&report)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.EmergencyReport, error) {
	cursor, err := r.db.Collection(reportCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var reports []models.EmergencyReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportDatabase) FindPaginated(ctx context.Context, filter interface{}, limit, page int) ([]models.EmergencyReport, error) {
	return r.Find(ctx, filter, newMongoPaginate(limit, page).getPaginatedOpts())
}

func (r *reportDatabase) InsertOne(ctx context.Context, report models.EmergencyReport) (InsertOneResultHelper, error) {
	return r.db.Collection(reportCollectionName).InsertOne(ctx, report)
}

func (r *reportDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(reportCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (r *reportDatabase) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) (*models.EmergencyReport, error) {
	report := &models.EmergencyReport{}
	err := r.db.Collection(reportCollectionName).FindOneAndUpdate(ctx, filter, update, opts...).Decode(&report)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	_, err := r.db.Collection(reportCollectionName).DeleteOne(ctx, filter)
	return err
}
