package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrnaut/euphoxide-go/api"
	"github.com/zephyrnaut/euphoxide-go/conn"
)

func TestParsePrefixInitiated(t *testing.T) {
	cases := []struct {
		text, prefix string
		name, rest   string
		ok           bool
	}{
		{"!foo", "!", "foo", "", true},
		{"    !foo", "!", "foo", "", true},
		{"!foo    ", "!", "foo", "   ", true},
		{"    !foo    ", "!", "foo", "   ", true},
		{"!foo @bar", "!", "foo", "@bar", true},
		{"!foo    @bar", "!", "foo", "   @bar", true},
		{"!foo @bar   ", "!", "foo", "@bar   ", true},
		{"! foo @bar", "!", "", "", false},
		{"!", "!", "", "", false},
		{"?foo", "!", "", "", false},
		{"  !foo   bar  baz ", "!", "foo", "  bar  baz ", true},
	}

	for _, c := range cases {
		name, rest, ok := ParsePrefixInitiated(c.text, c.prefix)
		if !c.ok {
			assert.False(t, ok, "ParsePrefixInitiated(%q, %q)", c.text, c.prefix)
			continue
		}
		require.True(t, ok, "ParsePrefixInitiated(%q, %q)", c.text, c.prefix)
		assert.Equal(t, c.name, name, "name for %q", c.text)
		assert.Equal(t, c.rest, rest, "rest for %q", c.text)
	}
}

func handlerReturning(called *bool, args *string) HandlerFunc[string] {
	return func(ctx context.Context, cctx *Context[string], msg api.SendEvent, a string) (Propagate, error) {
		*called = true
		*args = a
		return PropagateNo, nil
	}
}

func TestGeneralMatchesBareTrigger(t *testing.T) {
	var called bool
	var gotArgs string
	cmd := General[string]("ping", handlerReturning(&called, &gotArgs))

	msg := api.SendEvent{}
	msg.Content = "!ping hi"

	propagate, err := cmd.Execute(context.Background(), nil, msg)
	require.NoError(t, err)
	assert.Equal(t, PropagateNo, propagate)
	assert.True(t, called)
	assert.Equal(t, "hi", gotArgs)
}

func TestGeneralIgnoresNonMatchingMessage(t *testing.T) {
	var called bool
	var gotArgs string
	cmd := General[string]("ping", handlerReturning(&called, &gotArgs))

	msg := api.SendEvent{}
	msg.Content = "not a command"

	propagate, err := cmd.Execute(context.Background(), nil, msg)
	require.NoError(t, err)
	assert.Equal(t, PropagateYes, propagate)
	assert.False(t, called)
}

func TestGeneralDeclinesWhenRestLooksLikeAMention(t *testing.T) {
	var called bool
	var gotArgs string
	cmd := General[string]("ping", handlerReturning(&called, &gotArgs))

	msg := api.SendEvent{}
	msg.Content = "!ping @otherbot args"

	propagate, err := cmd.Execute(context.Background(), nil, msg)
	require.NoError(t, err)
	assert.Equal(t, PropagateYes, propagate, "a mention-qualified message must not be swallowed as a General match")
	assert.False(t, called)
}

func contextWithJoinedNick(nick string) *Context[string] {
	return &Context[string]{Joined: &conn.Joined{Session: api.SessionView{Name: nick}}}
}

func TestSpecificRequiresMatchingMentionOfOwnNick(t *testing.T) {
	var called bool
	var gotArgs string
	cmd := Specific[string]("ping", handlerReturning(&called, &gotArgs))
	cctx := contextWithJoinedNick("mybot")

	bare := api.SendEvent{}
	bare.Content = "!ping"
	_, err := cmd.Execute(context.Background(), cctx, bare)
	require.NoError(t, err)
	assert.False(t, called, "bare trigger must not satisfy a Specific command")

	qualified := api.SendEvent{}
	qualified.Content = "!ping @mybot"
	_, err = cmd.Execute(context.Background(), cctx, qualified)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "", gotArgs)
}

func TestSpecificRejectsMentionOfAnotherNick(t *testing.T) {
	var called bool
	var gotArgs string
	cmd := Specific[string]("ping", handlerReturning(&called, &gotArgs))
	cctx := contextWithJoinedNick("mybot")

	msg := api.SendEvent{}
	msg.Content = "!ping @otherbot"
	_, err := cmd.Execute(context.Background(), cctx, msg)
	require.NoError(t, err)
	assert.False(t, called)
}

func TestSpecificWithoutJoinedStateNeverMatches(t *testing.T) {
	var called bool
	var gotArgs string
	cmd := Specific[string]("ping", handlerReturning(&called, &gotArgs))

	msg := api.SendEvent{}
	msg.Content = "!ping @mybot"
	_, err := cmd.Execute(context.Background(), &Context[string]{}, msg)
	require.NoError(t, err)
	assert.False(t, called)
}

func TestGlobalMatchesRegardlessOfMention(t *testing.T) {
	for _, content := range []string{"!ping", "!ping @mybot", "!ping @otherbot"} {
		var called bool
		var gotArgs string
		cmd := Global[string]("ping", handlerReturning(&called, &gotArgs))

		msg := api.SendEvent{}
		msg.Content = content
		_, err := cmd.Execute(context.Background(), nil, msg)
		require.NoError(t, err)
		assert.True(t, called, "Global command should match %q", content)
	}
}

func TestGlobalIgnoresUnrelatedTrigger(t *testing.T) {
	var called bool
	var gotArgs string
	cmd := Global[string]("ping", handlerReturning(&called, &gotArgs))

	msg := api.SendEvent{}
	msg.Content = "!pong"
	_, err := cmd.Execute(context.Background(), nil, msg)
	require.NoError(t, err)
	assert.False(t, called)
}
