package service

import (
	"context"
	"time"

	"adam-store/backend/internal/models"
	"adam-store/backend/internal/repository"
	"adam-store/backend/pkg/errors"
)

// ConversationService creates conversations and lists the caller's
// threads. Participants are stored as denormalized snapshots of the user
// records at creation time.
type ConversationService struct {
	conversations repository.ConversationRepository
	users         repository.UserRepository
}

func NewConversationService(conversations repository.ConversationRepository, users repository.UserRepository) *ConversationService {
	return &ConversationService{conversations: conversations, users: users}
}

// CreateConversation opens a conversation between the caller and the
// requested users. The caller is always a participant; duplicate ids are
// collapsed.
func (s *ConversationService) CreateConversation(ctx context.Context, req models.CreateConversationRequest, callerEmail string) (*models.Conversation, error) {
	caller, err := s.users.FindByEmail(ctx, callerEmail)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotExisted
		}
		return nil, err
	}

	seen := map[uint]bool{caller.ID: true}
	participants := []models.ParticipantInfo{toParticipantInfo(caller)}

	for _, id := range req.ParticipantIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, ErrUserNotExisted
			}
			return nil, err
		}
		participants = append(participants, toParticipantInfo(user))
	}

	if len(participants) < 2 {
		return nil, errors.NewBadRequestError("INVALID_PARTICIPANTS", "A conversation needs at least one other participant")
	}

	conversation := &models.Conversation{
		Participants: participants,
		CreatedDate:  time.Now(),
	}
	return s.conversations.Save(ctx, conversation)
}

// GetMyConversations lists every conversation the caller takes part in
func (s *ConversationService) GetMyConversations(ctx context.Context, callerEmail string) ([]models.Conversation, error) {
	return s.conversations.FindAllByParticipantEmail(ctx, callerEmail)
}
