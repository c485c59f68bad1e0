package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

// Prompt is shown before every line of interactive input.
const Prompt = "You: "

// ErrLineAborted is returned by a LineReader when the user abandons the current line.
var ErrLineAborted = errors.New("line aborted")

// LineReader reads one line of user input at a time. It returns io.EOF when
// the input ends.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type terminalReader struct {
	state *liner.State
}

// NewTerminalReader reads lines with editing and history. Ctrl+C abandons the
// current line and Ctrl+D ends the input. On terminals without line editing
// support it reads plain lines from in instead.
func NewTerminalReader(in io.Reader, out io.Writer) LineReader {
	if !liner.TerminalSupported() {
		return NewScannerReader(in, out)
	}
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &terminalReader{state: state}
}

func (r *terminalReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		return "", ErrLineAborted
	case err != nil:
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

func (r *terminalReader) Close() error {
	return r.state.Close()
}

type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScannerReader reads lines from r and writes the prompt to out.
func NewScannerReader(r io.Reader, out io.Writer) LineReader {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	return &scannerReader{scanner: scanner, out: out}
}

func (r *scannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, color.CyanString(prompt))
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scannerReader) Close() error {
	return nil
}

// Interactive runs turns for every non-blank line until the input ends.
// Turn failures are reported and the loop continues; resolution failures end it.
func (c *Conversation) Interactive(ctx context.Context, lines LineReader) error {
	c.renderer.Notice("Starting interactive session: %s (Ctrl+D to exit)", c.session.ID())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := lines.ReadLine(Prompt)
		switch {
		case errors.Is(err, ErrLineAborted):
			continue
		case errors.Is(err, io.EOF):
			c.renderer.Notice("\nSession ended.")
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := c.Turn(ctx, line, ""); err != nil {
			if IsFatal(err) {
				return err
			}
			c.renderer.Error(err)
		}
	}
}
