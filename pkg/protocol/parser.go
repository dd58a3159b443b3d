package protocol

import "strings"

// Command is one parsed client command: an upper-cased verb plus its
// positional arguments split on runs of whitespace. Commands whose trailing
// argument is free text (MSG, DM) rejoin the remaining tokens via Rest.
type Command struct {
	// Verb is the first token of the frame, upper-cased. Unknown verbs are
	// not rejected here; legality depends on session state, which is the
	// router's business.
	Verb string
	// Args holds the tokens after the verb.
	Args []string
}

// ParseCommand splits a non-empty trimmed frame into a Command.
func ParseCommand(frame string) Command {
	tokens := strings.Fields(frame)
	if len(tokens) == 0 {
		return Command{}
	}
	return Command{
		Verb: strings.ToUpper(tokens[0]),
		Args: tokens[1:],
	}
}

// Rest rejoins the arguments from index i onward with single spaces and trims
// the result. This is how MSG recovers its message text and DM its body after
// the target-username token; original inter-word spacing is not preserved.
func (c Command) Rest(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.TrimSpace(strings.Join(c.Args[i:], " "))
}
