package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONNeverCarriesPassword(t *testing.T) {
	// The cache layer and API responses both serialize User with
	// encoding/json, so the hash must never survive a marshal.
	hash, err := HashPassword("super-secret-pw")
	require.NoError(t, err)

	u := User{
		ID:       1,
		Name:     "Alice",
		Email:    "alice@x.com",
		Password: hash,
		Role:     "USER",
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), hash)
	assert.NotContains(t, string(data), "password")
	assert.Contains(t, string(data), "alice@x.com")
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("super-secret-pw")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("super-secret-pw", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
