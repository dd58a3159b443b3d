package server

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/NicolasHaas/wirechat/pkg/model"
	"github.com/NicolasHaas/wirechat/pkg/protocol"
)

// Notice texts sent as INFO lines.
const (
	noticeIdleDisconnect = "You have been disconnected due to inactivity"
	noticeShutdown       = "Server is shutting down"
	noticeNoUsers        = "No other users connected"
)

// Router applies parsed commands against a session and the registry. Each
// dispatch runs on the originating connection's read goroutine, so for a
// single sender the fan-out order matches the order commands were issued.
type Router struct {
	registry *Registry
	metrics  *Metrics
}

// NewRouter creates a router over the given registry.
func NewRouter(registry *Registry, metrics *Metrics) *Router {
	return &Router{registry: registry, metrics: metrics}
}

// Dispatch handles one complete inbound frame from c.
func (rt *Router) Dispatch(c *client, frame string) {
	cmd := protocol.ParseCommand(frame)

	// Heartbeat traffic is legal in any state and handled before the
	// authentication gate.
	switch cmd.Verb {
	case protocol.VerbPong:
		// Response to a server PING; the activity reset already happened
		// when the frame arrived. Unsolicited PONGs are accepted silently.
		return
	case protocol.VerbPing:
		c.reply(protocol.ReplyPong)
		return
	}

	if !c.sess.Authenticated() {
		if cmd.Verb == protocol.VerbLogin {
			rt.handleLogin(c, cmd)
		} else {
			c.reply(protocol.Err(protocol.ErrCodePleaseLogin))
		}
		return
	}

	switch cmd.Verb {
	case protocol.VerbMsg:
		rt.handleMsg(c, cmd)
	case protocol.VerbDM:
		rt.handleDM(c, cmd)
	case protocol.VerbWho:
		rt.handleWho(c)
	default:
		// This also catches LOGIN re-sent after authentication: the state
		// machine has no re-login transition, so it is just another verb
		// with no meaning here.
		c.reply(protocol.ErrDetail(protocol.ErrCodeUnknownCommand, cmd.Verb))
	}
}

func (rt *Router) handleLogin(c *client, cmd protocol.Command) {
	// A LOGIN with no tokens after the verb and one with only whitespace
	// are the same thing by the time tokenization has run: no name.
	name := cmd.Rest(0)
	if err := model.ValidateUsername(name); err != nil {
		rt.metrics.FailedLogins.Add(1)
		c.reply(protocol.Err(protocol.ErrCodeInvalidUsername))
		return
	}

	if err := rt.registry.Bind(c, name); err != nil {
		rt.metrics.FailedLogins.Add(1)
		if errors.Is(err, ErrUsernameTaken) {
			c.reply(protocol.Err(protocol.ErrCodeUsernameTaken))
			return
		}
		c.reply(protocol.Err(protocol.ErrCodeInvalidUsername))
		return
	}

	c.reply(protocol.ReplyOK)
	rt.registry.Broadcast(protocol.Info(name+" connected"), c.sess.ID)
	c.liveness.startHeartbeat()
	rt.metrics.Logins.Add(1)
	slog.Info("user logged in", "user", name, "remote", c.conn.RemoteAddr())
}

func (rt *Router) handleMsg(c *client, cmd protocol.Command) {
	if len(cmd.Args) == 0 {
		c.reply(protocol.Err(protocol.ErrCodeInvalidFormat))
		return
	}
	text := cmd.Rest(0)
	if text == "" {
		c.reply(protocol.Err(protocol.ErrCodeInvalidFormat))
		return
	}
	rt.registry.Broadcast(protocol.Chat(c.sess.Username, text), c.sess.ID)
	rt.metrics.Broadcasts.Add(1)
}

func (rt *Router) handleDM(c *client, cmd protocol.Command) {
	if len(cmd.Args) < 2 {
		c.reply(protocol.Err(protocol.ErrCodeInvalidFormat))
		return
	}
	target := cmd.Args[0]
	text := cmd.Rest(1)
	if text == "" {
		c.reply(protocol.Err(protocol.ErrCodeInvalidFormat))
		return
	}

	tc, ok := rt.registry.FindByUsername(target)
	if !ok {
		// Echo the caller's spelling, not a canonical form we don't have.
		c.reply(protocol.ErrDetail(protocol.ErrCodeUserNotFound, target))
		return
	}

	tc.deliver(protocol.PrivateChat(c.sess.Username, text))
	c.reply(protocol.PrivateEcho(tc.sess.Username, text))
	rt.metrics.DirectMessages.Add(1)
}

func (rt *Router) handleWho(c *client) {
	names := rt.registry.Usernames()
	if len(names) == 0 {
		c.reply(protocol.Info(noticeNoUsers))
		return
	}
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(protocol.UserLine(name))
	}
	c.reply(b.String())
}
