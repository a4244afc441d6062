// Package botrulez implements the standard bot commands every well-behaved
// Euphoria bot supports: !ping, !help (in its short and full forms), and
// !uptime.
package botrulez

import (
	"context"

	"github.com/zephyrnaut/euphoxide-go/api"
	"github.com/zephyrnaut/euphoxide-go/command"
)

// Ping answers a bare "!ping" with reply (defaulting to "pong!"). It
// declines to reply (propagates) when called with an argument.
func Ping[K comparable](reply string) command.Command[K] {
	if reply == "" {
		reply = "pong!"
	}

	handler := func(ctx context.Context, cctx *command.Context[K], msg api.SendEvent, args string) (command.Propagate, error) {
		if args != "" {
			return command.PropagateYes, nil
		}
		if err := cctx.ReplyOnly(ctx, msg.ID, reply); err != nil {
			return command.PropagateNo, err
		}
		return command.PropagateNo, nil
	}

	return command.Described(command.Global[K]("ping", handler), "replies to show the bot is alive")
}
