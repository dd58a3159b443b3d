package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	rt, reg := newTestRouter()
	a, rca := newTestClient(reg)
	b, rcb := newTestClient(reg)
	login(t, rt, b, rcb, "bob")

	rt.Dispatch(a, "LOGIN alice")
	assert.Equal(t, []string{"OK"}, rca.Lines())
	assert.True(t, a.sess.Authenticated())
	assert.Equal(t, "alice", a.sess.Username)

	// Other authenticated sessions get the connect notice; the new user
	// does not get one about itself.
	assert.Equal(t, []string{"INFO alice connected"}, queued(b))
	assert.Empty(t, queued(a))
}

func TestLoginErrors(t *testing.T) {
	rt, reg := newTestRouter()
	taken, rcTaken := newTestClient(reg)
	login(t, rt, taken, rcTaken, "Carol")
	queued(taken)

	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"missing name", "LOGIN", "ERR invalid-username"},
		{"name too long", "LOGIN " + strings.Repeat("x", 40), "ERR invalid-username"},
		{"taken exact", "LOGIN Carol", "ERR username-taken"},
		{"taken case-insensitive", "LOGIN cArOl", "ERR username-taken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rc := newTestClient(reg)
			rt.Dispatch(c, tt.frame)
			assert.Equal(t, []string{tt.want}, rc.Lines())
			assert.False(t, c.sess.Authenticated(), "failed LOGIN must not change state")
		})
	}

	// Registry still holds exactly the one carol.
	assert.Equal(t, 1, reg.CountAuthenticated())
}

func TestAnonymousCommandGating(t *testing.T) {
	rt, reg := newTestRouter()

	for _, frame := range []string{"MSG hello", "WHO", "DM carol hi", "BOGUS"} {
		t.Run(frame, func(t *testing.T) {
			c, rc := newTestClient(reg)
			rt.Dispatch(c, frame)
			assert.Equal(t, []string{"ERR please-login-first"}, rc.Lines())
		})
	}
	assert.Equal(t, 0, reg.CountAuthenticated(), "gated commands must not alter the registry")
}

func TestHeartbeatBypassesGating(t *testing.T) {
	rt, reg := newTestRouter()
	c, rc := newTestClient(reg)

	rt.Dispatch(c, "PING")
	assert.Equal(t, []string{"PONG"}, rc.Lines())

	// Unsolicited PONG is accepted silently, before and after login.
	rt.Dispatch(c, "PONG")
	assert.Empty(t, rc.Lines())

	login(t, rt, c, rc, "pat")
	rt.Dispatch(c, "PONG")
	assert.Empty(t, rc.Lines())
}

func TestMsgBroadcast(t *testing.T) {
	rt, reg := newTestRouter()
	a, rca := newTestClient(reg)
	b, rcb := newTestClient(reg)
	c, rcc := newTestClient(reg)
	login(t, rt, a, rca, "A")
	login(t, rt, b, rcb, "B")
	login(t, rt, c, rcc, "C")
	queued(a)
	queued(b)
	queued(c)

	rt.Dispatch(a, "MSG hello   world")
	assert.Empty(t, rca.Lines(), "no reply to sender on success")
	assert.Empty(t, queued(a), "sender excluded from fan-out")
	assert.Equal(t, []string{"MSG A hello world"}, queued(b))
	assert.Equal(t, []string{"MSG A hello world"}, queued(c))
}

func TestMsgInvalidFormat(t *testing.T) {
	rt, reg := newTestRouter()
	a, rca := newTestClient(reg)
	login(t, rt, a, rca, "A")

	rt.Dispatch(a, "MSG")
	assert.Equal(t, []string{"ERR invalid-format"}, rca.Lines())
}

func TestDMDelivery(t *testing.T) {
	rt, reg := newTestRouter()
	a, rca := newTestClient(reg)
	b, rcb := newTestClient(reg)
	c, rcc := newTestClient(reg)
	login(t, rt, a, rca, "A")
	login(t, rt, b, rcb, "Bob")
	login(t, rt, c, rcc, "C")
	queued(a)
	queued(b)
	queued(c)

	// Target resolved case-insensitively; the echo uses Bob's canonical name.
	rt.Dispatch(a, "DM bob secret stuff")
	assert.Equal(t, []string{"MSG You (private to Bob): secret stuff"}, rca.Lines())
	assert.Equal(t, []string{"MSG A (private): secret stuff"}, queued(b))
	assert.Empty(t, queued(c), "third parties receive nothing")
}

func TestDMErrors(t *testing.T) {
	rt, reg := newTestRouter()
	a, rca := newTestClient(reg)
	login(t, rt, a, rca, "A")

	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"no args", "DM", "ERR invalid-format"},
		{"no text", "DM bob", "ERR invalid-format"},
		{"unknown target echoes caller casing", "DM GhOsT hi", "ERR user-not-found: GhOsT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt.Dispatch(a, tt.frame)
			assert.Equal(t, []string{tt.want}, rca.Lines())
		})
	}
}

func TestWhoIncludesCaller(t *testing.T) {
	rt, reg := newTestRouter()
	a, rca := newTestClient(reg)
	b, rcb := newTestClient(reg)
	login(t, rt, a, rca, "A")
	login(t, rt, b, rcb, "B")
	queued(a)

	rt.Dispatch(a, "WHO")
	lines := rca.Lines()
	require.Len(t, lines, 2)
	assert.ElementsMatch(t, []string{"USER A", "USER B"}, lines)
}

func TestUnknownCommand(t *testing.T) {
	rt, reg := newTestRouter()
	a, rca := newTestClient(reg)
	login(t, rt, a, rca, "A")

	rt.Dispatch(a, "frobnicate now")
	assert.Equal(t, []string{"ERR unknown-command: FROBNICATE"}, rca.Lines())
}

func TestReloginFallsThroughToUnknown(t *testing.T) {
	rt, reg := newTestRouter()
	a, rca := newTestClient(reg)
	login(t, rt, a, rca, "A")

	rt.Dispatch(a, "LOGIN again")
	assert.Equal(t, []string{"ERR unknown-command: LOGIN"}, rca.Lines())
	assert.Equal(t, "A", a.sess.Username, "username is immutable once bound")
}
