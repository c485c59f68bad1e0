// Package session persists conversation history as one JSON array per session id.
//
// A session file that cannot be decoded is not an error for the caller: Open
// returns an empty session and the conversation proceeds as if it were new.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/utmux/ag/messages"
	"github.com/utmux/ag/pkg/fsx"
	"github.com/utmux/ag/pkg/slogx"
)

const (
	// DefaultID is the session used when neither --new nor --session-id is given.
	DefaultID = "default"

	historyDir = "history"
	idLayout   = "20060102-150405"
)

// ErrDecode marks a session file that exists but does not hold a message array.
var ErrDecode = errors.New("session file is not a valid message list")

// ErrInvalidID is returned for session ids that would escape the history directory.
var ErrInvalidID = errors.New("invalid session id")

// ValidateID checks that id names a file directly inside the history directory.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: '%s'", ErrInvalidID, id)
	}
	return nil
}

// NewID returns a session id derived from t, e.g. 20240131-154502.
func NewID(t time.Time) string {
	return t.Format(idLayout)
}

// Path returns the file backing session id under the configuration directory.
func Path(dir, id string) string {
	return filepath.Join(dir, historyDir, id+".json")
}

// Session is the in-memory message history of one conversation.
// It is owned by a single process and is not safe for concurrent use.
type Session struct {
	id       string
	path     string
	messages []messages.Message
}

// Open loads the session id stored under dir. A session that was never saved,
// or whose file cannot be read or decoded, starts out empty.
func Open(dir, id string) *Session {
	s := &Session{
		id:   id,
		path: Path(dir, id),
	}

	msgs, err := load(s.path)
	switch {
	case err == nil:
		s.messages = msgs
	case errors.Is(err, fs.ErrNotExist):
	case errors.Is(err, ErrDecode):
		slog.Debug("discarding unreadable session", slogx.Session(id), slogx.Path(s.path), slogx.Error(err))
	default:
		slog.Warn("failed to read session, starting empty", slogx.Session(id), slogx.Path(s.path), slogx.Error(err))
	}
	if s.messages == nil {
		s.messages = make([]messages.Message, 0)
	}
	return s
}

func load(path string) ([]messages.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) ([]messages.Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrDecode)
	}
	if !gjson.ParseBytes(data).IsArray() {
		return nil, fmt.Errorf("%w: expected a json array", ErrDecode)
	}

	var msgs []messages.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	for i, m := range msgs {
		if !m.Role.Valid() {
			return nil, fmt.Errorf("%w: message %d has no valid role", ErrDecode, i)
		}
	}
	return msgs, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Path returns the file the session is persisted to.
func (s *Session) Path() string {
	return s.path
}

// Len returns the number of messages in the session.
func (s *Session) Len() int {
	return len(s.messages)
}

// Append adds a message at the end of the history.
func (s *Session) Append(role messages.Role, content string) {
	s.messages = append(s.messages, messages.New(role, content))
}

// Messages returns the in-memory history. The slice is shared with the session,
// callers must not modify it.
func (s *Session) Messages() []messages.Message {
	return s.messages
}

// Persist overwrites the session file with the full in-memory history.
func (s *Session) Persist() error {
	data, err := json.MarshalIndent(s.messages, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", s.id, err)
	}
	if err := fsx.WriteFile(s.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.id, err)
	}
	return nil
}
