package repository

import (
	"context"

	"adam-store/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatMessageRepository owns chat messages in the document store
type ChatMessageRepository interface {
	// Save persists the message, assigning an ID when empty
	Save(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error)
	// FindAllByConversationID returns all messages for a conversation,
	// newest first
	FindAllByConversationID(ctx context.Context, conversationID string) ([]models.ChatMessage, error)
}

type MongoChatMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoChatMessageRepository(db *mongo.Database) *MongoChatMessageRepository {
	return &MongoChatMessageRepository{collection: db.Collection("chat_messages")}
}

func (r *MongoChatMessageRepository) Save(ctx context.Context, message *models.ChatMessage) (*models.ChatMessage, error) {
	if message.ID == "" {
		message.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (r *MongoChatMessageRepository) FindAllByConversationID(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// EnsureIndexes creates the conversation/created_date index used by the
// newest-first listing query
func (r *MongoChatMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "conversation_id", Value: 1},
			{Key: "created_date", Value: -1},
		},
	})
	return err
}
