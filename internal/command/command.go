// Package command parses chat messages into the bot's closed set of
// command kinds. Anything unrecognized is treated as plain chatter.
package command

import "strings"

// Kind identifies a recognized chat command.
type Kind int

const (
	KindVouches Kind = iota
	KindTopVouches
)

func (k Kind) String() string {
	switch k {
	case KindVouches:
		return "vouches"
	case KindTopVouches:
		return "topvouches"
	default:
		return "unknown"
	}
}

// Command is a parsed chat command. Target is only set for KindVouches and
// holds the mentioned user ID; empty means the requester asked about
// themselves.
type Command struct {
	Kind   Kind
	Target string
}

// Parse extracts a command from raw message content. The boolean is false
// when the content is not a recognized command. Command words match
// case-insensitively; unknown prefixed words are ignored like plain chatter.
func Parse(prefix, content string) (Command, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, prefix) {
		return Command{}, false
	}

	fields := strings.Fields(trimmed[len(prefix):])
	if len(fields) == 0 {
		return Command{}, false
	}

	switch strings.ToLower(fields[0]) {
	case "vouches":
		cmd := Command{Kind: KindVouches}
		if len(fields) > 1 {
			if id, ok := ParseMention(fields[1]); ok {
				cmd.Target = id
			}
		}
		return cmd, true
	case "topvouches":
		return Command{Kind: KindTopVouches}, true
	default:
		return Command{}, false
	}
}

// ParseMention extracts the user ID from a mention token, accepting both
// the plain <@id> and nickname <@!id> forms.
func ParseMention(token string) (string, bool) {
	if !strings.HasPrefix(token, "<@") || !strings.HasSuffix(token, ">") {
		return "", false
	}

	id := strings.TrimSuffix(strings.TrimPrefix(token, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}
