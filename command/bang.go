package command

import (
	"context"
	"strings"

	"github.com/zephyrnaut/euphoxide-go/api"
)

// ParsePrefixInitiated parses leading whitespace followed by a
// prefix-initiated command: text is trimmed of leading whitespace, prefix
// is stripped from what remains, and the rest is split at the first
// whitespace character into a name and whatever follows. ok is false if
// text (after trimming) doesn't start with prefix, or if the name would be
// empty.
func ParsePrefixInitiated(text, prefix string) (name, rest string, ok bool) {
	trimmed := strings.TrimLeftFunc(text, isUnicodeSpace)
	after, found := strings.CutPrefix(trimmed, prefix)
	if !found {
		return "", "", false
	}

	if idx := strings.IndexFunc(after, isUnicodeSpace); idx >= 0 {
		name, rest = after[:idx], after[idx+1:]
	} else {
		name, rest = after, ""
	}

	if name == "" {
		return "", "", false
	}
	return name, rest, true
}

func isUnicodeSpace(r rune) bool {
	return strings.ContainsRune(" \t\n\v\f\r", r) || r == 0x85 || r == 0xa0
}

type bangCommand[K comparable] struct {
	info    Info
	match   func(cctx *Context[K], content string) (string, bool)
	handler HandlerFunc[K]
}

func (b bangCommand[K]) Info() Info {
	return b.info
}

func (b bangCommand[K]) Execute(ctx context.Context, cctx *Context[K], msg api.SendEvent) (Propagate, error) {
	args, ok := b.match(cctx, msg.Content)
	if !ok {
		return PropagateYes, nil
	}
	return b.handler(ctx, cctx, msg, args)
}

// Global matches a bare "!trigger" regardless of what follows, including a
// following mention: the inner handler runs with whatever comes after the
// trigger name. Use General or Specific instead when a bot sharing a room
// with other bots needs to avoid answering on another bot's behalf.
func Global[K comparable](trigger string, handler HandlerFunc[K]) Command[K] {
	match := func(_ *Context[K], content string) (string, bool) {
		name, rest, ok := ParsePrefixInitiated(content, "!")
		if !ok || name != trigger {
			return "", false
		}
		return rest, true
	}
	return bangCommand[K]{info: Info{Trigger: trigger}, match: match, handler: handler}
}

// General matches "!trigger" only when what follows is not itself a
// mention (an "@something" token). Without this guard, a message of the
// form "!trigger @otherbot args" aimed at a different bot's Specific
// command would be misread as a General invocation of this one.
func General[K comparable](trigger string, handler HandlerFunc[K]) Command[K] {
	match := func(_ *Context[K], content string) (string, bool) {
		name, rest, ok := ParsePrefixInitiated(content, "!")
		if !ok || name != trigger {
			return "", false
		}
		if _, _, mention := ParsePrefixInitiated(rest, "@"); mention {
			return "", false
		}
		return rest, true
	}
	return bangCommand[K]{info: Info{Trigger: trigger}, match: match, handler: handler}
}

// Specific matches "!trigger @nick", where nick, after normalization,
// equals the room's own joined session name after normalization. It lets
// several bots that all implement the same trigger share a room without
// answering on each other's behalf.
func Specific[K comparable](trigger string, handler HandlerFunc[K]) Command[K] {
	match := func(cctx *Context[K], content string) (string, bool) {
		name, rest, ok := ParsePrefixInitiated(content, "!")
		if !ok || name != trigger {
			return "", false
		}
		nick, rest, ok := ParsePrefixInitiated(rest, "@")
		if !ok {
			return "", false
		}
		if cctx == nil || cctx.Joined == nil {
			return "", false
		}
		if NormalizeNick(nick) != NormalizeNick(cctx.Joined.Session.Name) {
			return "", false
		}
		return rest, true
	}
	return bangCommand[K]{info: Info{Trigger: trigger}, match: match, handler: handler}
}
