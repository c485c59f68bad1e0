package messages

import "fmt"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role: %q", string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects unknown roles.
func (r *Role) UnmarshalText(data []byte) error {
	role := Role(data)
	if !role.Valid() {
		return fmt.Errorf("invalid role: %q", string(data))
	}
	*r = role
	return nil
}

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// New creates a message with the given role and content.
func New(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// System creates a system message.
func System(content string) Message {
	return New(RoleSystem, content)
}

// User creates a user message.
func User(content string) Message {
	return New(RoleUser, content)
}

// Assistant creates an assistant message.
func Assistant(content string) Message {
	return New(RoleAssistant, content)
}
