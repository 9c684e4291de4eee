package databases

// go generate: mockery --name EvaluationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alisto-app/alisto-api/models"
)

const evaluationCollectionName = "userEvaluations"

// EvaluationDatabase contains the methods to use with the user evaluation database
type EvaluationDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.UserEvaluation, error)
	InsertOne(ctx context.Context, evaluation models.UserEvaluation) (InsertOneResultHelper, error)
}

type evaluationDatabase struct {
	db DatabaseHelper
}

// NewEvaluationDatabase initializes a new instance of evaluation database with the provided db connection
func NewEvaluationDatabase(db DatabaseHelper) EvaluationDatabase {
	return &evaluationDatabase{
		db: db,
	}
}

func (e *evaluationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.UserEvaluation, error) {
	cursor, err := e.db.Collection(evaluationCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var evaluations []models.UserEvaluation
	if err := cursor.All(ctx, &evaluations); err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (e *evaluationDatabase) InsertOne(ctx context.Context, evaluation models.UserEvaluation) (InsertOneResultHelper, error) {
	return e.db.Collection(evaluationCollectionName).InsertOne(ctx, evaluation)
}
