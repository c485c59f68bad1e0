package chat

import (
	"regexp"
	"strings"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)

// StripThink removes reasoning blocks from an answer and trims the result.
// Removing a block can join the halves of another one, so it repeats until
// nothing changes.
func StripThink(s string) string {
	for {
		next := thinkBlock.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(s)
}
