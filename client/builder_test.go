package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderFluentAssembly(t *testing.T) {
	cfg := NewBuilder("test-room").
		WithUsername("bot").
		WithForceUsername(true).
		WithPassword("secret").
		WithHuman(true).
		Config()

	assert.Equal(t, "test-room", cfg.Room)
	assert.Equal(t, "bot", cfg.Username)
	assert.True(t, cfg.ForceUsername)
	require.NotNil(t, cfg.Password)
	assert.Equal(t, "secret", *cfg.Password)
	assert.True(t, cfg.Server.Human)
}

func TestBuilderIsImmutablePerStep(t *testing.T) {
	base := NewBuilder("room")
	withName := base.WithUsername("bot")

	assert.Equal(t, "", base.Config().Username, "WithUsername must not mutate the receiver in place")
	assert.Equal(t, "bot", withName.Config().Username)
}

func TestNewBuilderForServerSharesServerConfig(t *testing.T) {
	server := DefaultServerConfig()
	server.Domain = "example.test"

	cfg := NewBuilderForServer(server, "room").Config()
	assert.Equal(t, "example.test", cfg.Server.Domain)
}
