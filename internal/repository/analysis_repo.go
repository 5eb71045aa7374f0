package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"callmood/internal/model"
)

// AnalysisRepo stores completed raw analyses, one per call
type AnalysisRepo interface {
	Save(ctx context.Context, record *model.AnalysisRecord) error
	Get(ctx context.Context, callID string) (*model.AnalysisRecord, error)
	Delete(ctx context.Context, callID string) error
}

type analysisRepo struct {
	collection *mongo.Collection
}

// NewAnalysisRepo creates a new analysis repository
func NewAnalysisRepo(db *mongo.Database) AnalysisRepo {
	return &analysisRepo{
		collection: db.Collection("analyses"),
	}
}

func (r *analysisRepo) Save(ctx context.Context, record *model.AnalysisRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.CallID}, record, opts)
	return err
}

func (r *analysisRepo) Get(ctx context.Context, callID string) (*model.AnalysisRecord, error) {
	var record model.AnalysisRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": callID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *analysisRepo) Delete(ctx context.Context, callID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": callID})
	return err
}
