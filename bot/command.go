package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"
)

var (
	ErrNotCommand = errors.New("not a command")
	ErrOtherBot   = errors.New("command addressed to another bot")
)

// Command is a parsed "/name[@bot] args..." message.
type Command struct {
	Name string
	Args []string
}

// Arg returns the i-th argument or "".
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// ParseCommand splits text with shell quoting rules. The command name is
// lower-cased; an "@bot" suffix must name botName (spaces ignored) when
// botName is set.
func ParseCommand(text, botName string) (Command, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, ErrNotCommand
	}

	fields, err := shlex.Split(text)
	if err != nil {
		return Command{}, fmt.Errorf("parse command: %w", err)
	}
	if len(fields) == 0 {
		return Command{}, ErrNotCommand
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		target := name[at+1:]
		name = name[:at]
		if botName != "" && !strings.EqualFold(target, strings.ReplaceAll(botName, " ", "")) {
			return Command{}, ErrOtherBot
		}
	}
	if name == "" {
		return Command{}, ErrNotCommand
	}

	return Command{Name: strings.ToLower(name), Args: fields[1:]}, nil
}
