package botrulez

import (
	"context"
	"fmt"
	"strings"

	"github.com/zephyrnaut/euphoxide-go/api"
	"github.com/zephyrnaut/euphoxide-go/command"
)

// FullHelp answers "!help" with before, a listing of every non-hidden
// registered command's trigger and description, then after. Don't
// register both ShortHelp and FullHelp for the same bot.
func FullHelp[K comparable](before, after string) command.Command[K] {
	handler := func(ctx context.Context, cctx *command.Context[K], msg api.SendEvent, args string) (command.Propagate, error) {
		var b strings.Builder

		if before != "" {
			fmt.Fprintln(&b, before)
		}
		for _, info := range cctx.Commands.Infos() {
			if info.Description != "" {
				fmt.Fprintf(&b, "!%s: %s\n", info.Trigger, info.Description)
			} else {
				fmt.Fprintf(&b, "!%s\n", info.Trigger)
			}
		}
		if after != "" {
			fmt.Fprintln(&b, after)
		}

		if err := cctx.ReplyOnly(ctx, msg.ID, strings.TrimRight(b.String(), "\n")); err != nil {
			return command.PropagateNo, err
		}
		return command.PropagateNo, nil
	}

	return command.Described(command.Global[K]("help", handler), "replies with a full command listing")
}
