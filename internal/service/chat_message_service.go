package service

import (
	"context"
	"time"

	"adam-store/backend/internal/models"
	"adam-store/backend/internal/repository"
	"adam-store/backend/pkg/errors"
	"adam-store/backend/pkg/logger"
)

// Terminal guard failures. ErrConversationNotFound covers both an
// unknown conversation id and a caller who is not a participant, so a
// non-member cannot learn which ids exist.
var (
	ErrConversationNotFound = errors.NewNotFoundError("CONVERSATION_NOT_FOUND", "Conversation not found")
	ErrUserNotExisted       = errors.NewNotFoundError("USER_NOT_EXISTED", "User not found")
)

// ChatMessageService mediates all reads and writes of chat messages
// through a participant-membership guard, and shapes stored entities into
// response views.
type ChatMessageService struct {
	conversations repository.ConversationRepository
	messages      repository.ChatMessageRepository
	users         repository.UserRepository
	logger        *logger.Logger
}

func NewChatMessageService(
	conversations repository.ConversationRepository,
	messages repository.ChatMessageRepository,
	users repository.UserRepository,
	log *logger.Logger,
) *ChatMessageService {
	return &ChatMessageService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		logger:        log,
	}
}

// CreateMessage persists a new message in a conversation on behalf of the
// caller. The caller must be a participant; the membership check runs
// before the caller's user record is resolved, so an unknown conversation
// never surfaces as a user error. The creation timestamp is assigned
// server-side.
func (s *ChatMessageService) CreateMessage(ctx context.Context, req models.ChatMessageRequest, callerEmail string) (*models.ChatMessageResponse, error) {
	if err := s.checkMembership(ctx, req.ConversationID, callerEmail); err != nil {
		return nil, err
	}

	caller, err := s.resolveCaller(ctx, callerEmail)
	if err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		ConversationID: req.ConversationID,
		Message:        req.Message,
		Sender:         toParticipantInfo(caller),
		CreatedDate:    time.Now(),
	}

	saved, err := s.messages.Save(ctx, message)
	if err != nil {
		return nil, err
	}

	response := toChatMessageResponse(saved, caller)
	return &response, nil
}

// GetMessages returns all messages of a conversation, newest first, with
// the Me flag computed per message against the caller. Same guard and
// ordering of checks as CreateMessage.
func (s *ChatMessageService) GetMessages(ctx context.Context, conversationID string, callerEmail string) ([]models.ChatMessageResponse, error) {
	s.logger.Info("fetching messages", "conversation_id", conversationID)

	if err := s.checkMembership(ctx, conversationID, callerEmail); err != nil {
		return nil, err
	}

	caller, err := s.resolveCaller(ctx, callerEmail)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.FindAllByConversationID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.ChatMessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toChatMessageResponse(&messages[i], caller))
	}
	return responses, nil
}

// CheckAccess runs the membership guard without touching messages. The
// websocket transport uses it before subscribing a connection to a
// conversation.
func (s *ChatMessageService) CheckAccess(ctx context.Context, conversationID string, callerEmail string) error {
	return s.checkMembership(ctx, conversationID, callerEmail)
}

// checkMembership verifies the conversation exists and the caller is a
// participant. Both failure modes return the same error on purpose: a
// non-member must not learn whether a conversation id exists.
func (s *ChatMessageService) checkMembership(ctx context.Context, conversationID string, callerEmail string) error {
	conversation, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		if err == repository.ErrNotFound {
			return ErrConversationNotFound
		}
		return err
	}

	if !conversation.HasParticipant(callerEmail) {
		return ErrConversationNotFound
	}
	return nil
}

// resolveCaller maps a store miss to the consistency fault between
// identity provider and user store; infrastructure failures propagate
// untranslated.
func (s *ChatMessageService) resolveCaller(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotExisted
		}
		return nil, err
	}
	return user, nil
}

func toParticipantInfo(user *models.User) models.ParticipantInfo {
	return models.ParticipantInfo{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}

// toChatMessageResponse copies message fields into the wire view and
// computes Me from the stored sender and the caller. Pure function.
func toChatMessageResponse(message *models.ChatMessage, caller *models.User) models.ChatMessageResponse {
	return models.ChatMessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Message:        message.Message,
		Sender:         message.Sender,
		CreatedDate:    message.CreatedDate,
		Me:             message.Sender.UserID == caller.ID,
	}
}
