package botrulez

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zephyrnaut/euphoxide-go/api"
	"github.com/zephyrnaut/euphoxide-go/command"
)

// Uptime answers "!uptime" with how long the owning MultiClient (or, if
// there isn't one, the Client) has been running, plus how long it has been
// in this room if currently joined.
func Uptime[K comparable]() command.Command[K] {
	handler := func(ctx context.Context, cctx *command.Context[K], msg api.SendEvent, args string) (command.Propagate, error) {
		if err := cctx.ReplyOnly(ctx, msg.ID, formulateUptimeReply(cctx)); err != nil {
			return command.PropagateNo, err
		}
		return command.PropagateNo, nil
	}

	return command.Described(command.Global[K]("uptime", handler), "replies with how long the bot has been running")
}

func formulateUptimeReply[K comparable](cctx *command.Context[K]) string {
	now := time.Now()

	var since time.Time
	switch {
	case cctx.Clients != nil:
		since = cctx.Clients.StartTime()
	case cctx.Client != nil:
		since = cctx.Client.StartTime()
	default:
		return "/me doesn't know how long it's been running"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "/me has been up since %s (%s)", formatAbsoluteTime(since), formatDuration(now.Sub(since)))

	if cctx.Joined != nil {
		fmt.Fprintf(&b, ", joined this room %s ago", formatDuration(now.Sub(cctx.Joined.Since)))
	}

	return b.String()
}

func formatAbsoluteTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
