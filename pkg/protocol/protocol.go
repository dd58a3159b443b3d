// Package protocol defines the wire format of the chat protocol: the command
// verbs clients may send, the reply lines the server emits, and the error
// code taxonomy. Everything on the wire is newline-delimited ASCII text, one
// command or reply per line.
package protocol

import "fmt"

// Client-to-server command verbs. Verbs are matched case-insensitively; the
// parser upper-cases them before dispatch.
const (
	VerbLogin = "LOGIN"
	VerbMsg   = "MSG"
	VerbDM    = "DM"
	VerbWho   = "WHO"
	VerbPing  = "PING"
	VerbPong  = "PONG"
)

// Error codes carried in ERR replies.
const (
	ErrCodeInvalidFormat   = "invalid-format"
	ErrCodeInvalidUsername = "invalid-username"
	ErrCodeUsernameTaken   = "username-taken"
	ErrCodePleaseLogin     = "please-login-first"
	ErrCodeUserNotFound    = "user-not-found"
	ErrCodeUnknownCommand  = "unknown-command"
	ErrCodeLineTooLong     = "line-too-long"
)

// Fixed reply lines.
const (
	ReplyOK   = "OK"
	ReplyPing = "PING"
	ReplyPong = "PONG"
)

// Info builds an informational line: "INFO <text>".
func Info(text string) string {
	return "INFO " + text
}

// Err builds a bare error line: "ERR <code>".
func Err(code string) string {
	return "ERR " + code
}

// ErrDetail builds an error line with detail: "ERR <code>: <detail>".
func ErrDetail(code, detail string) string {
	return fmt.Sprintf("ERR %s: %s", code, detail)
}

// Chat builds a broadcast chat line: "MSG <from> <text>".
func Chat(from, text string) string {
	return fmt.Sprintf("MSG %s %s", from, text)
}

// PrivateChat builds the line delivered to a direct-message target:
// "MSG <from> (private): <text>".
func PrivateChat(from, text string) string {
	return fmt.Sprintf("MSG %s (private): %s", from, text)
}

// PrivateEcho builds the confirmation line echoed to a direct-message sender:
// "MSG You (private to <target>): <text>". Target is the canonical username
// of the recipient, not the caller's spelling.
func PrivateEcho(target, text string) string {
	return fmt.Sprintf("MSG You (private to %s): %s", target, text)
}

// UserLine builds a WHO listing entry: "USER <name>".
func UserLine(name string) string {
	return "USER " + name
}
