// Package render writes conversation output to the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

var (
	bannerColor  = color.New(color.FgMagenta, color.Bold)
	noticeColor  = color.New(color.FgCyan, color.Bold)
	infoColor    = color.New(color.FgHiBlack)
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	accentColor  = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

// Console renders to injected writers: regular output to out, failures to errOut.
type Console struct {
	out    io.Writer
	errOut io.Writer

	markdownStyle string
	glamOnce      sync.Once
	glam          *glamour.TermRenderer
	glamErr       error
}

// New creates a console. Markdown uses glamour's auto style, which picks a
// plain style when out is not a terminal.
func New(out, errOut io.Writer) *Console {
	return &Console{out: out, errOut: errOut}
}

// WithMarkdownStyle selects a named glamour style such as "dark", "light" or "notty".
func (c *Console) WithMarkdownStyle(style string) *Console {
	c.markdownStyle = style
	return c
}

// Banner announces the assistant's answer.
func (c *Console) Banner() {
	bannerColor.Fprintln(c.out, "AG:")
}

// Fragment writes a piece of a streamed answer as soon as it arrives.
func (c *Console) Fragment(s string) {
	fmt.Fprint(c.out, s)
}

// EndStream terminates a streamed answer so the shell prompt starts on a new line.
func (c *Console) EndStream() {
	fmt.Fprintln(c.out)
}

// Info writes a low-key status line.
func (c *Console) Info(format string, args ...any) {
	infoColor.Fprintln(c.out, fmt.Sprintf(format, args...))
}

// Notice writes a highlighted status line.
func (c *Console) Notice(format string, args ...any) {
	noticeColor.Fprintln(c.out, fmt.Sprintf(format, args...))
}

// Success writes a confirmation line.
func (c *Console) Success(format string, args ...any) {
	successColor.Fprintln(c.out, fmt.Sprintf(format, args...))
}

// Error writes a failure to the error stream.
func (c *Console) Error(err error) {
	errorColor.Fprintln(c.errOut, "Error: "+err.Error())
}

// Markdown renders finished markdown text.
func (c *Console) Markdown(text string) error {
	c.glamOnce.Do(func() {
		opt := glamour.WithAutoStyle()
		if c.markdownStyle != "" {
			opt = glamour.WithStandardStyle(c.markdownStyle)
		}
		c.glam, c.glamErr = glamour.NewTermRenderer(opt)
	})
	if c.glamErr != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", c.glamErr)
	}

	out, err := c.glam.Render(text)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = fmt.Fprint(c.out, out)
	return err
}

// ProviderEntry is one line of the provider listing.
type ProviderEntry struct {
	Name         string
	Current      bool
	DefaultModel string
	Models       []string
	SystemPrompt string
}

const systemPromptPreview = 40

// Providers writes the provider listing used by `agc provider-list`.
func (c *Console) Providers(entries []ProviderEntry) {
	fmt.Fprintln(c.out, color.New(color.Bold).Sprint("Available Providers:"))
	for _, e := range entries {
		var line strings.Builder
		line.WriteString(" - ")
		line.WriteString(accentColor.Sprint(e.Name))
		if e.Current {
			line.WriteString(" (current)")
			model := e.DefaultModel
			if model == "" {
				model = "N/A"
			}
			line.WriteString(" (default model: " + warnColor.Sprint(model) + ")")
		}

		models := "N/A"
		if len(e.Models) > 0 {
			models = strings.Join(e.Models, ", ")
		}
		line.WriteString("\n   Models: " + models)

		if e.SystemPrompt != "" {
			preview := []rune(e.SystemPrompt)
			if len(preview) > systemPromptPreview {
				preview = preview[:systemPromptPreview]
			}
			line.WriteString("\n   System Prompt: " + successColor.Sprintf("%q", string(preview)+"..."))
		}
		fmt.Fprintln(c.out, line.String())
	}
}
