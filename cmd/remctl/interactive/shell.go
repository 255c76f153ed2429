// Package interactive provides the readline loop for remctl -interactive.
// Every entered line is one command on its own connection.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/remctl-protocol/remctl-go/pkg/remctl"
)

// Runner executes one command.
type Runner interface {
	Run(ctx context.Context, args [][]byte) (*remctl.Result, error)
}

// ErrUnterminatedQuote is returned by SplitArgs.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Shell reads commands and runs them against one server.
type Shell struct {
	runner Runner
	rl     *readline.Instance
	out    io.Writer

	// status is the status of the last command, or 255 after an error.
	status int
}

// New creates a shell with a "host> " prompt.
func New(runner Runner, host string) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          host + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{runner: runner, rl: rl, out: rl.Stdout()}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run reads lines until EOF, "quit" or ctx is done, and returns the
// status of the last command.
func (s *Shell) Run(ctx context.Context) int {
	defer s.rl.Close()

	fmt.Fprintln(s.out, `Enter a command and its arguments; "?" for help, "quit" to leave.`)
	for ctx.Err() == nil {
		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			break
		}
		if s.Execute(ctx, line) {
			break
		}
	}
	return s.status
}

// Execute handles one input line and reports whether the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	words, err := SplitArgs(line)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	if len(words) == 0 {
		return false
	}

	switch words[0] {
	case "quit", "exit":
		if len(words) == 1 {
			return true
		}
	case "?":
		s.printHelp()
		return false
	}

	args := make([][]byte, len(words))
	for i, w := range words {
		args[i] = []byte(w)
	}

	result, err := s.runner.Run(ctx, args)
	if err != nil {
		s.status = 255
		fmt.Fprintf(s.out, "remctl: %s\n", strings.TrimPrefix(err.Error(), "remctl: "))
		return false
	}

	s.status = int(result.Status)
	if _, err := s.out.Write(result.Message); err != nil {
		return true
	}
	if len(result.Message) > 0 && result.Message[len(result.Message)-1] != '\n' {
		fmt.Fprintln(s.out)
	}
	if result.Status != 0 {
		fmt.Fprintf(s.out, "[status %d]\n", result.Status)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Each line is sent as one command: the first word is the command, the rest
are its arguments. Quote arguments containing spaces with '...' or "...";
a backslash escapes the next character outside single quotes.

  ?      Show this help
  quit   Leave (also "exit" or Ctrl-D)`)
}

// SplitArgs splits a line into words using shell-style quoting.
func SplitArgs(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			inWord = true
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, ErrUnterminatedQuote
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
