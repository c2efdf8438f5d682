package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"adam-store/backend/internal/models"
	"adam-store/backend/internal/repository"
	"adam-store/backend/pkg/errors"
	"adam-store/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes for the repository interfaces

type fakeConversationRepo struct {
	conversations map[string]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*models.Conversation)}
}

func (f *fakeConversationRepo) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	c, ok := f.conversations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeConversationRepo) Save(ctx context.Context, c *models.Conversation) (*models.Conversation, error) {
	if c.ID == "" {
		c.ID = "conv-" + time.Now().Format("150405.000000000")
	}
	f.conversations[c.ID] = c
	return c, nil
}

func (f *fakeConversationRepo) FindAllByParticipantEmail(ctx context.Context, email string) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range f.conversations {
		if c.HasParticipant(email) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	messages []models.ChatMessage
	nextID   int
}

func (f *fakeMessageRepo) Save(ctx context.Context, m *models.ChatMessage) (*models.ChatMessage, error) {
	if m.ID == "" {
		f.nextID++
		m.ID = string(rune('a' + f.nextID))
	}
	f.messages = append(f.messages, *m)
	return m, nil
}

func (f *fakeMessageRepo) FindAllByConversationID(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	// Newest first, like the store query
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedDate.After(out[j].CreatedDate)
	})
	return out, nil
}

type fakeUserRepo struct {
	byEmail map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{byEmail: make(map[string]*models.User)}
	for _, u := range users {
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

// Fixtures

var (
	alice = &models.User{ID: 1, Name: "Alice", Email: "alice@x.com", AvatarURL: "https://cdn/a.png"}
	bob   = &models.User{ID: 2, Name: "Bob", Email: "bob@x.com", AvatarURL: "https://cdn/b.png"}
	carol = &models.User{ID: 3, Name: "Carol", Email: "carol@x.com"}
)

func snapshot(u *models.User) models.ParticipantInfo {
	return models.ParticipantInfo{UserID: u.ID, Email: u.Email, Name: u.Name, AvatarURL: u.AvatarURL}
}

func newTestService(t *testing.T) (*ChatMessageService, *fakeConversationRepo, *fakeMessageRepo, *fakeUserRepo) {
	t.Helper()
	conversations := newFakeConversationRepo()
	messages := &fakeMessageRepo{}
	users := newFakeUserRepo(alice, bob, carol)
	svc := NewChatMessageService(conversations, messages, users, logger.New(logger.DefaultConfig()))
	return svc, conversations, messages, users
}

func seedConversation(repo *fakeConversationRepo, id string, participants ...*models.User) {
	conv := &models.Conversation{ID: id, CreatedDate: time.Now()}
	for _, u := range participants {
		conv.Participants = append(conv.Participants, snapshot(u))
	}
	repo.conversations[id] = conv
}

func TestCreateMessageByParticipant(t *testing.T) {
	svc, conversations, messages, _ := newTestService(t)
	seedConversation(conversations, "C1", alice, bob)

	before := time.Now()
	resp, err := svc.CreateMessage(context.Background(), models.ChatMessageRequest{
		ConversationID: "C1",
		Message:        "hi",
	}, "bob@x.com")
	require.NoError(t, err)

	assert.True(t, resp.Me, "sender is always the caller on the create path")
	assert.Equal(t, "hi", resp.Message)
	assert.Equal(t, "C1", resp.ConversationID)
	assert.Equal(t, "bob@x.com", resp.Sender.Email)
	assert.Equal(t, bob.ID, resp.Sender.UserID)
	assert.NotEmpty(t, resp.ID)

	// Timestamp is server-assigned
	assert.False(t, resp.CreatedDate.Before(before))
	assert.False(t, resp.CreatedDate.After(time.Now()))

	// Exactly one write hit the message store
	require.Len(t, messages.messages, 1)
	assert.Equal(t, snapshot(bob), messages.messages[0].Sender)
}

func TestCreateMessageNonParticipant(t *testing.T) {
	svc, conversations, messages, _ := newTestService(t)
	seedConversation(conversations, "C1", alice, bob)

	_, err := svc.CreateMessage(context.Background(), models.ChatMessageRequest{
		ConversationID: "C1",
		Message:        "let me in",
	}, "carol@x.com")

	require.Error(t, err)
	assert.Equal(t, "CONVERSATION_NOT_FOUND", errors.GetErrorCode(err))
	assert.Empty(t, messages.messages, "guard failures must not write")
}

func TestCreateMessageUnknownConversation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateMessage(context.Background(), models.ChatMessageRequest{
		ConversationID: "C404",
		Message:        "hello?",
	}, "alice@x.com")

	require.Error(t, err)
	assert.Equal(t, "CONVERSATION_NOT_FOUND", errors.GetErrorCode(err))
}

func TestUnknownConversationMasksMissingUser(t *testing.T) {
	// The conversation check must run before user resolution: a missing
	// conversation never surfaces as USER_NOT_EXISTED, even when the
	// caller has no user record at all.
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateMessage(context.Background(), models.ChatMessageRequest{
		ConversationID: "C404",
		Message:        "hi",
	}, "ghost@x.com")

	require.Error(t, err)
	assert.Equal(t, "CONVERSATION_NOT_FOUND", errors.GetErrorCode(err))

	_, err = svc.GetMessages(context.Background(), "C404", "ghost@x.com")
	require.Error(t, err)
	assert.Equal(t, "CONVERSATION_NOT_FOUND", errors.GetErrorCode(err))
}

func TestCreateMessageParticipantWithoutUserRecord(t *testing.T) {
	// Participant snapshot present in the conversation, but the identity
	// no longer resolves in the user store
	svc, conversations, _, users := newTestService(t)
	seedConversation(conversations, "C1", alice, bob)
	delete(users.byEmail, "bob@x.com")

	_, err := svc.CreateMessage(context.Background(), models.ChatMessageRequest{
		ConversationID: "C1",
		Message:        "hi",
	}, "bob@x.com")

	require.Error(t, err)
	assert.Equal(t, "USER_NOT_EXISTED", errors.GetErrorCode(err))
}

type failingUserRepo struct {
	*fakeUserRepo
	err error
}

func (f *failingUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, f.err
}

func TestCreateMessageUserStoreOutage(t *testing.T) {
	// An infrastructure failure resolving the caller is not a missing
	// user: the error propagates instead of being translated to 404.
	conversations := newFakeConversationRepo()
	messages := &fakeMessageRepo{}
	users := &failingUserRepo{
		fakeUserRepo: newFakeUserRepo(alice, bob),
		err:          fmt.Errorf("dial tcp 127.0.0.1:5432: connect: connection refused"),
	}
	svc := NewChatMessageService(conversations, messages, users, logger.New(logger.DefaultConfig()))
	seedConversation(conversations, "C1", alice, bob)

	_, err := svc.CreateMessage(context.Background(), models.ChatMessageRequest{
		ConversationID: "C1",
		Message:        "hi",
	}, "alice@x.com")

	require.Error(t, err)
	assert.NotEqual(t, "USER_NOT_EXISTED", errors.GetErrorCode(err))
	assert.NotEqual(t, "CONVERSATION_NOT_FOUND", errors.GetErrorCode(err))
	assert.Equal(t, 500, errors.GetStatusCode(err))
	assert.Empty(t, messages.messages, "nothing is written when the caller cannot be resolved")
}

func TestGetMessagesOrderingAndMeFlag(t *testing.T) {
	svc, conversations, messages, _ := newTestService(t)
	seedConversation(conversations, "C1", alice, bob)

	base := time.Now()
	for i, m := range []struct {
		sender *models.User
		text   string
	}{
		{alice, "first"},
		{bob, "second"},
		{alice, "third"},
	} {
		messages.messages = append(messages.messages, models.ChatMessage{
			ID:             m.text,
			ConversationID: "C1",
			Message:        m.text,
			Sender:         snapshot(m.sender),
			CreatedDate:    base.Add(time.Duration(i) * time.Second),
		})
	}

	got, err := svc.GetMessages(context.Background(), "C1", "alice@x.com")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first
	assert.Equal(t, "third", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
	assert.Equal(t, "first", got[2].Message)

	// Me is computed per message against the caller
	assert.True(t, got[0].Me)
	assert.False(t, got[1].Me)
	assert.True(t, got[2].Me)
}

func TestGetMessagesNonParticipant(t *testing.T) {
	svc, conversations, messages, _ := newTestService(t)
	seedConversation(conversations, "C1", alice, bob)
	messages.messages = append(messages.messages, models.ChatMessage{
		ID:             "m1",
		ConversationID: "C1",
		Message:        "secret",
		Sender:         snapshot(alice),
		CreatedDate:    time.Now(),
	})

	_, err := svc.GetMessages(context.Background(), "C1", "carol@x.com")
	require.Error(t, err)
	assert.Equal(t, "CONVERSATION_NOT_FOUND", errors.GetErrorCode(err))
}

func TestCheckAccess(t *testing.T) {
	svc, conversations, _, _ := newTestService(t)
	seedConversation(conversations, "C1", alice, bob)

	assert.NoError(t, svc.CheckAccess(context.Background(), "C1", "alice@x.com"))
	assert.Error(t, svc.CheckAccess(context.Background(), "C1", "carol@x.com"))
	assert.Error(t, svc.CheckAccess(context.Background(), "C404", "alice@x.com"))
}

func TestToChatMessageResponseIsPure(t *testing.T) {
	message := &models.ChatMessage{
		ID:             "m1",
		ConversationID: "C1",
		Message:        "hi",
		Sender:         snapshot(bob),
		CreatedDate:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	first := toChatMessageResponse(message, alice)
	second := toChatMessageResponse(message, alice)

	assert.Equal(t, first, second, "mapping must be idempotent")
	assert.False(t, first.Me)
	assert.Equal(t, message.ID, first.ID)
	assert.Equal(t, message.Message, first.Message)
	assert.Equal(t, message.ConversationID, first.ConversationID)
	assert.Equal(t, message.CreatedDate, first.CreatedDate)
	assert.Equal(t, message.Sender, first.Sender)

	asSender := toChatMessageResponse(message, bob)
	assert.True(t, asSender.Me)
}
