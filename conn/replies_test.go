package conn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrnaut/euphoxide-go/api"
)

func TestRepliesCompleteDeliversPacket(t *testing.T) {
	r := newReplies(time.Second)
	pending := r.waitFor("1")

	want := &api.ParsedPacket{Type: api.PacketTypeNickReply}
	r.complete("1", want)

	got, err := pending.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestRepliesCompleteUnknownIdIsNoop(t *testing.T) {
	r := newReplies(time.Second)
	r.complete("missing", &api.ParsedPacket{})
}

func TestPendingReplyTimesOut(t *testing.T) {
	r := newReplies(10 * time.Millisecond)
	pending := r.waitFor("1")

	_, err := pending.Get(context.Background())
	assert.True(t, IsReplyTimeout(err))
	assert.False(t, IsReplyCanceled(err))
}

func TestPendingReplyCanceled(t *testing.T) {
	r := newReplies(time.Second)
	pending := r.waitFor("1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pending.Get(ctx)
	assert.True(t, IsReplyCanceled(err))
	assert.False(t, IsReplyTimeout(err))
}

func TestRepliesCancelRemovesEntry(t *testing.T) {
	r := newReplies(time.Second)
	r.waitFor("1")
	r.cancel("1")

	r.mu.Lock()
	_, ok := r.pending["1"]
	r.mu.Unlock()
	assert.False(t, ok)
}

func TestRepliesPurgeDropsExpiredOnly(t *testing.T) {
	r := newReplies(time.Millisecond)
	r.waitFor("expired")
	time.Sleep(5 * time.Millisecond)

	r.timeout = time.Hour
	r.waitFor("fresh")

	r.purge()

	r.mu.Lock()
	defer r.mu.Unlock()
	_, expiredStillThere := r.pending["expired"]
	_, freshStillThere := r.pending["fresh"]
	assert.False(t, expiredStillThere)
	assert.True(t, freshStillThere)
}
