package models

import (
	"time"
)

// ParticipantInfo is a denormalized snapshot of a user embedded in
// conversations and messages. It is a copy taken at reference time:
// later edits to the User record do not propagate.
type ParticipantInfo struct {
	UserID    uint   `bson:"user_id" json:"userId"`
	Email     string `bson:"email" json:"email"`
	Name      string `bson:"name" json:"name"`
	AvatarURL string `bson:"avatar_url" json:"avatarUrl"`
}

// Conversation is a chat thread stored in the document store. The
// participant set is the sole authority for message access control.
type Conversation struct {
	ID           string            `bson:"_id,omitempty" json:"id"`
	Participants []ParticipantInfo `bson:"participants" json:"participants"`
	CreatedDate  time.Time         `bson:"created_date" json:"createdDate"`
}

// HasParticipant reports whether the given email belongs to a participant
func (c *Conversation) HasParticipant(email string) bool {
	for _, p := range c.Participants {
		if p.Email == email {
			return true
		}
	}
	return false
}

// ChatMessage is a single message in a conversation, stored in the
// document store. Created once per send, immutable thereafter.
type ChatMessage struct {
	ID             string          `bson:"_id,omitempty" json:"id"`
	ConversationID string          `bson:"conversation_id" json:"conversationId"`
	Message        string          `bson:"message" json:"message"`
	Sender         ParticipantInfo `bson:"sender" json:"sender"`
	CreatedDate    time.Time       `bson:"created_date" json:"createdDate"`
}

// ChatMessageRequest is the request structure for sending a message
type ChatMessageRequest struct {
	ConversationID string `json:"conversationId" binding:"required"`
	Message        string `json:"message" binding:"required"`
}

// ChatMessageResponse is the wire view of a message. Me is computed at
// read time by comparing the stored sender to the requesting user; it is
// never persisted.
type ChatMessageResponse struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversationId"`
	Message        string          `json:"message"`
	Sender         ParticipantInfo `json:"sender"`
	CreatedDate    time.Time       `json:"createdDate"`
	Me             bool            `json:"me"`
}

// CreateConversationRequest is the request structure for opening a
// conversation with one or more other users
type CreateConversationRequest struct {
	ParticipantIDs []uint `json:"participantIds" binding:"required,min=1"`
}
