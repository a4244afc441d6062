package botrulez

import (
	"context"

	"github.com/zephyrnaut/euphoxide-go/api"
	"github.com/zephyrnaut/euphoxide-go/command"
)

// ShortHelp answers a bare "!help" with a one-line description of the bot.
// It declines to handle "!help" with an argument, so a FullHelp or a more
// specific help command registered alongside it can answer instead; don't
// register both ShortHelp and FullHelp for the same bot.
func ShortHelp[K comparable](description string) command.Command[K] {
	handler := func(ctx context.Context, cctx *command.Context[K], msg api.SendEvent, args string) (command.Propagate, error) {
		if args != "" {
			return command.PropagateYes, nil
		}
		if err := cctx.ReplyOnly(ctx, msg.ID, description); err != nil {
			return command.PropagateNo, err
		}
		return command.PropagateNo, nil
	}

	return command.Described(command.Global[K]("help", handler), "replies with a one-line description of the bot")
}
