// Package command implements bang-command routing over a room: parsing
// "!trigger args" out of chat messages, dispatching to registered
// handlers in order, and the botrulez convention of a "!trigger @nick"
// form so multiple bots sharing a room don't all answer a bare trigger at
// once.
package command

import (
	"context"

	"github.com/zephyrnaut/euphoxide-go/api"
	"github.com/zephyrnaut/euphoxide-go/client"
	"github.com/zephyrnaut/euphoxide-go/conn"
	"github.com/zephyrnaut/euphoxide-go/multiclient"
)

// Propagate reports whether a command's execution should let later
// commands in the list also see the same message.
type Propagate bool

const (
	PropagateNo  Propagate = false
	PropagateYes Propagate = true
)

// Info describes one command for the benefit of help commands.
type Info struct {
	Trigger     string
	Description string
}

func (i Info) WithTrigger(trigger string) Info {
	i.Trigger = trigger
	return i
}

func (i Info) WithDescription(description string) Info {
	i.Description = description
	return i
}

// PrependTrigger returns a copy of i with prefix joined to the front of
// Trigger, for nesting a command group under a shared namespace in help
// listings.
func (i Info) PrependTrigger(prefix string) Info {
	if prefix == "" {
		return i
	}
	i.Trigger = prefix + " " + i.Trigger
	return i
}

// HandlerFunc is a command's behavior, invoked once its trigger has
// already matched. msg is the full message that triggered it; args is
// whatever followed the trigger name and the one whitespace character
// after it, with any further whitespace kept rather than trimmed.
type HandlerFunc[K comparable] func(ctx context.Context, cctx *Context[K], msg api.SendEvent, args string) (Propagate, error)

// Command is one entry in a Commands list. Most are built with General,
// Specific, or Global rather than implemented from scratch.
type Command[K comparable] interface {
	Info() Info
	Execute(ctx context.Context, cctx *Context[K], msg api.SendEvent) (Propagate, error)
}

// EventCommand is implemented by commands that also want to observe
// packets other than chat messages (presence feeds, for instance).
type EventCommand[K comparable] interface {
	Command[K]
	ExecuteEvent(ctx context.Context, cctx *Context[K], pkt *api.ParsedPacket) (Propagate, error)
}

// Context is handed to every command invocation: the command list itself
// (so help commands can enumerate it), the MultiClient the triggering
// Client belongs to and the key it was added under, the Client, its
// current connection Handle, and the room's Joined snapshot at the time of
// the message.
type Context[K comparable] struct {
	Commands  *Commands[K]
	Clients   *multiclient.MultiClient[K]
	ClientKey K
	Client    *client.Client
	Conn      *conn.Handle
	Joined    *conn.Joined
}

// Send sends payload and returns its PendingReply.
func (c *Context[K]) Send(ctx context.Context, payload api.Data) (*conn.PendingReply, error) {
	return c.Conn.SendCommand(ctx, payload)
}

// SendOnly sends payload without waiting for a reply.
func (c *Context[K]) SendOnly(ctx context.Context, payload api.Data) error {
	return c.Conn.SendOnly(ctx, payload)
}

// Reply sends content as a message replying to parent, returning its
// PendingReply.
func (c *Context[K]) Reply(ctx context.Context, parent api.MessageId, content string) (*conn.PendingReply, error) {
	return c.Send(ctx, &api.Send{Content: content, Parent: &parent})
}

// ReplyOnly is Reply without waiting for a reply.
func (c *Context[K]) ReplyOnly(ctx context.Context, parent api.MessageId, content string) error {
	return c.SendOnly(ctx, &api.Send{Content: content, Parent: &parent})
}

// Commands is an ordered list of registered commands, dispatched in
// registration order; a command returning PropagateNo stops the rest from
// seeing the same message.
type Commands[K comparable] struct {
	entries []Command[K]
}

// New returns an empty Commands list.
func New[K comparable]() *Commands[K] {
	return &Commands[K]{}
}

// Add registers cmd and returns the list, so registrations can be chained:
// command.New[string]().Add(a).Add(b).
func (c *Commands[K]) Add(cmd Command[K]) *Commands[K] {
	c.entries = append(c.entries, cmd)
	return c
}

// Infos returns the Info of every registered, non-Hidden command, in
// registration order.
func (c *Commands[K]) Infos() []Info {
	infos := make([]Info, 0, len(c.entries))
	for _, cmd := range c.entries {
		if isHidden(cmd) {
			continue
		}
		infos = append(infos, cmd.Info())
	}
	return infos
}

// HandleMessage runs msg through every registered command in order, until
// one returns PropagateNo or an error.
func (c *Commands[K]) HandleMessage(ctx context.Context, cctx *Context[K], msg api.SendEvent) error {
	for _, cmd := range c.entries {
		propagate, err := cmd.Execute(ctx, cctx, msg)
		if err != nil {
			return err
		}
		if propagate == PropagateNo {
			return nil
		}
	}
	return nil
}

// HandleEvent dispatches pkt to every registered command that also
// implements EventCommand, in order, until one returns PropagateNo or an
// error.
func (c *Commands[K]) HandleEvent(ctx context.Context, cctx *Context[K], pkt *api.ParsedPacket) error {
	for _, cmd := range c.entries {
		ec, ok := cmd.(EventCommand[K])
		if !ok {
			continue
		}
		propagate, err := ec.ExecuteEvent(ctx, cctx, pkt)
		if err != nil {
			return err
		}
		if propagate == PropagateNo {
			return nil
		}
	}
	return nil
}
