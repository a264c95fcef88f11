package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openlive/faq-chatbot/internal/models"
)

const corpusMetadataID = "corpus"

// MongoCorpusRepository keeps the corpus in two collections.
//
// Expected schema:
//
//	faq_categories
//	  { _id: string, title, order: int, questions: [ {id, question, answer, keywords, related, ...} ] }
//
//	faq_metadata
//	  { _id: "corpus", last_updated, version, schema_version, max_questions, contact }
type MongoCorpusRepository struct {
	catCol  *mongo.Collection
	metaCol *mongo.Collection
}

type metadataDoc struct {
	ID              string `bson:"_id"`
	models.Metadata `bson:",inline"`
}

// NewMongoCorpusRepository wires the collections.
func NewMongoCorpusRepository(db *mongo.Database) *MongoCorpusRepository {
	return &MongoCorpusRepository{
		catCol:  db.Collection("faq_categories"),
		metaCol: db.Collection("faq_metadata"),
	}
}

// Load reads every category in display order plus the metadata document.
// A missing metadata document yields zero metadata.
func (r *MongoCorpusRepository) Load(ctx context.Context) (models.Corpus, error) {
	cur, err := r.catCol.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "order", Value: 1}}))
	if err != nil {
		return models.Corpus{}, fmt.Errorf("find categories: %w", err)
	}
	defer cur.Close(ctx)

	var categories []models.Category
	if err := cur.All(ctx, &categories); err != nil {
		return models.Corpus{}, fmt.Errorf("decode categories: %w", err)
	}

	var meta metadataDoc
	err = r.metaCol.FindOne(ctx, bson.M{"_id": corpusMetadataID}).Decode(&meta)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Corpus{}, fmt.Errorf("find metadata: %w", err)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		log.Printf("[Corpus Mongo] No metadata document found")
	}

	log.Printf("[Corpus Mongo] Loaded %d categories", len(categories))
	return models.Corpus{Categories: categories, Metadata: meta.Metadata}, nil
}

// Save upserts every category, removes categories no longer present and
// replaces the metadata document.
func (r *MongoCorpusRepository) Save(ctx context.Context, corpus models.Corpus) error {
	ids := make([]string, 0, len(corpus.Categories))
	for i, cat := range corpus.Categories {
		cat.Order = i
		_, err := r.catCol.ReplaceOne(ctx, bson.M{"_id": cat.ID}, cat, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", cat.ID, err)
		}
		ids = append(ids, cat.ID)
	}

	if _, err := r.catCol.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return fmt.Errorf("prune categories: %w", err)
	}

	doc := metadataDoc{ID: corpusMetadataID, Metadata: corpus.Metadata}
	if _, err := r.metaCol.ReplaceOne(ctx, bson.M{"_id": corpusMetadataID}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}

	log.Printf("[Corpus Mongo] Saved %d categories", len(corpus.Categories))
	return nil
}
