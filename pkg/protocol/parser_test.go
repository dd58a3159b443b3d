package protocol

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		wantVerb string
		wantArgs []string
	}{
		{"upper-cases verb", "login alice", "LOGIN", []string{"alice"}},
		{"mixed case verb", "Msg hello there", "MSG", []string{"hello", "there"}},
		{"collapses whitespace runs", "DM   bob   hi    you", "DM", []string{"bob", "hi", "you"}},
		{"bare verb", "WHO", "WHO", nil},
		{"tabs as separators", "MSG\thello\tworld", "MSG", []string{"hello", "world"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseCommand(tt.frame)
			if cmd.Verb != tt.wantVerb {
				t.Fatalf("Verb = %q, want %q", cmd.Verb, tt.wantVerb)
			}
			if len(cmd.Args) != len(tt.wantArgs) || (len(cmd.Args) > 0 && !reflect.DeepEqual(cmd.Args, tt.wantArgs)) {
				t.Fatalf("Args = %v, want %v", cmd.Args, tt.wantArgs)
			}
		})
	}
}

func TestCommandRest(t *testing.T) {
	cmd := ParseCommand("DM bob   hello   spaced   world")
	if got := cmd.Rest(0); got != "bob hello spaced world" {
		t.Fatalf("Rest(0) = %q", got)
	}
	if got := cmd.Rest(1); got != "hello spaced world" {
		t.Fatalf("Rest(1) = %q", got)
	}
	if got := cmd.Rest(4); got != "" {
		t.Fatalf("Rest(4) = %q, want empty", got)
	}
}

func TestReplyBuilders(t *testing.T) {
	if got := ErrDetail(ErrCodeUserNotFound, "ghost"); got != "ERR user-not-found: ghost" {
		t.Fatalf("ErrDetail = %q", got)
	}
	if got := Chat("alice", "hi all"); got != "MSG alice hi all" {
		t.Fatalf("Chat = %q", got)
	}
	if got := PrivateChat("alice", "psst"); got != "MSG alice (private): psst" {
		t.Fatalf("PrivateChat = %q", got)
	}
	if got := PrivateEcho("Bob", "psst"); got != "MSG You (private to Bob): psst" {
		t.Fatalf("PrivateEcho = %q", got)
	}
}
