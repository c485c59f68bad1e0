// Package messages defines the role-tagged conversation turns exchanged with a
// chat-completion endpoint and persisted in session files.
//
// A Message is the unit stored on disk and sent over the wire:
//
//	[
//	  {"role": "system", "content": "You are a Linux expert."},
//	  {"role": "user", "content": "how do I list open ports?"},
//	  {"role": "assistant", "content": "Use `ss -tlnp`."}
//	]
//
// Content is always fully expanded text: file references and piped input have
// already been substituted by the time a message is constructed.
//
// Example usage:
//
//	history := []messages.Message{
//	    messages.System("You are terse."),
//	    messages.User("hello"),
//	}
package messages
