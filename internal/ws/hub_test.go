package ws

import (
	"encoding/json"
	"testing"

	"adam-store/backend/internal/models"
	"adam-store/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewForRecomputesMePerViewer(t *testing.T) {
	hub := NewHub(logger.New(logger.DefaultConfig()))

	response := &models.ChatMessageResponse{
		ID:             "m1",
		ConversationID: "C1",
		Message:        "hi",
		Sender:         models.ParticipantInfo{UserID: 2, Email: "bob@x.com"},
		Me:             true, // the creator's view, must not leak to others
	}

	senderView, err := hub.viewFor(&Client{userID: 2}, response)
	require.NoError(t, err)
	otherView, err := hub.viewFor(&Client{userID: 1}, response)
	require.NoError(t, err)

	var sender, other models.ChatMessageResponse
	require.NoError(t, json.Unmarshal(senderView, &sender))
	require.NoError(t, json.Unmarshal(otherView, &other))

	assert.True(t, sender.Me)
	assert.False(t, other.Me)
	assert.Equal(t, "hi", other.Message)

	// The shared response is left untouched
	assert.True(t, response.Me)
}

func TestBroadcastDoesNotBlockWhenQueueFull(t *testing.T) {
	hub := NewHub(logger.New(logger.DefaultConfig()))

	// Hub is not running; fill the queue and make sure Broadcast drops
	// instead of blocking the caller
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.Broadcast(&models.ChatMessageResponse{ConversationID: "C1"})
	}
}
