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

// StatusUpdate is a partial update of a call's analysis state.
// Nil fields are left untouched.
type StatusUpdate struct {
	Status            model.AnalysisStatus
	ErrorMessage      *string
	AnalysisAvailable *bool
	OverallEmotion    *model.OverallEmotion
	RecordingURL      string
	BumpRevision      bool
}

// CallRepo handles MongoDB operations for registered calls
type CallRepo interface {
	Get(ctx context.Context, callID string) (*model.Call, error)
	SaveDetails(ctx context.Context, call *model.Call) error
	TransitionStatus(ctx context.Context, callID string, from []model.AnalysisStatus, to model.AnalysisStatus) (bool, error)
	Delete(ctx context.Context, callID string) error
	List(ctx context.Context, skip, limit int64) ([]*model.Call, int64, error)
	ListIDs(ctx context.Context) ([]string, error)
	UpdateStatus(ctx context.Context, callID string, update StatusUpdate) (*model.Call, error)
}

type callRepo struct {
	collection *mongo.Collection
}

// NewCallRepo creates a new call repository
func NewCallRepo(db *mongo.Database) CallRepo {
	return &callRepo{
		collection: db.Collection("calls"),
	}
}

// EnsureIndexes creates the indexes the listing query relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("calls").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "start_timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "analysis_status", Value: 1}}},
		{Keys: bson.D{{Key: "overall_emotion_label", Value: 1}}},
	})
	return err
}

func (r *callRepo) Get(ctx context.Context, callID string) (*model.Call, error) {
	var call model.Call
	err := r.collection.FindOne(ctx, bson.M{"_id": callID}).Decode(&call)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &call, nil
}

// SaveDetails upserts the platform data and eligibility of a call. Analysis
// progress is only written when the call is inserted, so a job finishing
// concurrently is never overwritten.
func (r *callRepo) SaveDetails(ctx context.Context, call *model.Call) error {
	now := time.Now().UTC()
	set := bson.M{
		"agent_id":                    call.AgentID,
		"agent_name":                  call.AgentName,
		"user_phone_number":           call.UserPhoneNumber,
		"start_timestamp":             call.StartTimestamp,
		"end_timestamp":               call.EndTimestamp,
		"duration_ms":                 call.DurationMS,
		"recording_multi_channel_url": call.RecordingURL,
		"call_summary":                call.CallSummary,
		"transcript":                  call.Transcript,
		"transcript_available":        call.TranscriptAvailable,
		"transcript_object":           call.TranscriptObject,
		"disconnection_reason":        call.DisconnectionReason,
		"analysis_allowed":            call.AnalysisAllowed,
		"analysis_block_reason":       call.AnalysisBlockReason,
		"analysis_constraints":        call.Constraints,
		"last_updated":                now,
	}
	onInsert := bson.M{
		"analysis_status":    model.StatusPending,
		"analysis_available": false,
		"analysis_revision":  int64(0),
		"created_at":         now,
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": call.CallID}, bson.M{"$set": set, "$setOnInsert": onInsert}, opts)
	return err
}

// TransitionStatus moves a call to status `to` only while its current status
// is one of from. It reports whether the call moved.
func (r *callRepo) TransitionStatus(ctx context.Context, callID string, from []model.AnalysisStatus, to model.AnalysisStatus) (bool, error) {
	filter := bson.M{"_id": callID, "analysis_status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{
		"analysis_status": to,
		"error_message":   "",
		"last_updated":    time.Now().UTC(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *callRepo) Delete(ctx context.Context, callID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": callID})
	return err
}

// listFilter excludes calls known to have no audio. Calls without a
// duration are kept.
var listFilter = bson.M{"$or": bson.A{
	bson.M{"duration_ms": bson.M{"$exists": false}},
	bson.M{"duration_ms": nil},
	bson.M{"duration_ms": bson.M{"$gt": 0}},
}}

func (r *callRepo) List(ctx context.Context, skip, limit int64) ([]*model.Call, int64, error) {
	total, err := r.collection.CountDocuments(ctx, listFilter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_timestamp", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, listFilter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	calls := []*model.Call{}
	if err := cursor.All(ctx, &calls); err != nil {
		return nil, 0, err
	}
	return calls, total, nil
}

func (r *callRepo) ListIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *callRepo) UpdateStatus(ctx context.Context, callID string, update StatusUpdate) (*model.Call, error) {
	set := bson.M{"last_updated": time.Now().UTC()}
	if update.Status != "" {
		set["analysis_status"] = update.Status
	}
	if update.ErrorMessage != nil {
		set["error_message"] = *update.ErrorMessage
	}
	if update.AnalysisAvailable != nil {
		set["analysis_available"] = *update.AnalysisAvailable
	}
	if update.OverallEmotion != nil {
		set["overall_emotion"] = update.OverallEmotion
		set["overall_emotion_label"] = update.OverallEmotion.Label
	}
	if update.RecordingURL != "" {
		set["recording_multi_channel_url"] = update.RecordingURL
	}

	doc := bson.M{"$set": set}
	if update.BumpRevision {
		doc["$inc"] = bson.M{"analysis_revision": 1}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var call model.Call
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": callID}, doc, opts).Decode(&call)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &call, nil
}
