// Package prompt turns what the user typed or piped into the content of a user message.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
)

var fileRef = regexp.MustCompile(`@(\S+)`)

const pipedTemplate = "CONTEXT FROM PIPE:\n---\n%s\n---\n\nUSER QUESTION:\n%s"

// Assembler expands file references and merges piped input into a prompt.
type Assembler struct {
	readFile func(string) ([]byte, error)
}

// New creates an assembler that reads referenced files from the local filesystem.
func New() *Assembler {
	return &Assembler{readFile: os.ReadFile}
}

// ExpandFileReferences replaces every @path token with the content of the file
// it names. Tokens are resolved left to right in a single pass, substituted
// content is not scanned again. A file that cannot be read is replaced with an
// inline error marker, so the result always carries text for every token.
func (a *Assembler) ExpandFileReferences(text string) string {
	return fileRef.ReplaceAllStringFunc(text, func(token string) string {
		return a.resolve(token[1:])
	})
}

func (a *Assembler) resolve(path string) string {
	data, err := a.readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("[Error: File '%s' not found]", path)
		}
		return fmt.Sprintf("[Error reading file '%s': %s]", path, reason(err))
	}
	if !utf8.Valid(data) {
		return fmt.Sprintf("[Error reading file '%s': %s]", path, "content is not valid UTF-8 text")
	}
	return string(data)
}

// reason drops the operation and path that *fs.PathError repeats, since the
// marker already names the file.
func reason(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

// AssembleContent expands file references in userPrompt. When piped is not
// empty the result wraps both in the piped-context template:
//
//	CONTEXT FROM PIPE:
//	---
//	<piped>
//	---
//
//	USER QUESTION:
//	<expanded prompt>
func (a *Assembler) AssembleContent(userPrompt, piped string) string {
	expanded := a.ExpandFileReferences(userPrompt)
	if piped == "" {
		return expanded
	}
	return fmt.Sprintf(pipedTemplate, piped, expanded)
}

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ReadPiped reads everything from stdin when it is redirected. It returns ""
// without reading when stdin is a terminal.
func ReadPiped(stdin *os.File) (string, error) {
	if IsTerminal(stdin) {
		return "", nil
	}
	return readAll(stdin)
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read piped input: %w", err)
	}
	return string(b), nil
}
