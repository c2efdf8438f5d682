package repository

import (
	"context"
	"errors"

	"adam-store/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// ConversationRepository owns conversation records in the document store
type ConversationRepository interface {
	// FindByID returns the conversation or ErrNotFound
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	// Save persists the conversation, assigning an ID when empty
	Save(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error)
	// FindAllByParticipantEmail returns every conversation the email takes part in
	FindAllByParticipantEmail(ctx context.Context, email string) ([]models.Conversation, error)
}

type MongoConversationRepository struct {
	collection *mongo.Collection
}

func NewMongoConversationRepository(db *mongo.Database) *MongoConversationRepository {
	return &MongoConversationRepository{collection: db.Collection("conversations")}
}

func (r *MongoConversationRepository) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conversation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *MongoConversationRepository) Save(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error) {
	if conversation.ID == "" {
		conversation.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, conversation)
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

func (r *MongoConversationRepository) FindAllByParticipantEmail(ctx context.Context, email string) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"participants.email": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}
