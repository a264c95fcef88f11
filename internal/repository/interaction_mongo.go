package repository

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openlive/faq-chatbot/internal/models"
)

// MongoInteractionRepository appends interaction records to the
// "interactions" collection.
type MongoInteractionRepository struct {
	col *mongo.Collection
}

// NewMongoInteractionRepository returns a repository on db.interactions.
func NewMongoInteractionRepository(db *mongo.Database) *MongoInteractionRepository {
	return &MongoInteractionRepository{col: db.Collection("interactions")}
}

func (r *MongoInteractionRepository) Name() string { return "mongo" }

// Append inserts rec; its ID becomes the document _id.
func (r *MongoInteractionRepository) Append(ctx context.Context, rec models.InteractionRecord) error {
	if _, err := r.col.InsertOne(ctx, rec); err != nil {
		log.Printf("[Interaction Repository] Error inserting record %s: %v", rec.ID, err)
		return err
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (r *MongoInteractionRepository) Recent(ctx context.Context, limit int) ([]models.InteractionRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.InteractionRecord{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
