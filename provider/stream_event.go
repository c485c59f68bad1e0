package provider

import (
	"iter"
	"strings"
)

// Fragments returns a stream that yields each fragment in order and then err,
// when err is not nil.
func Fragments(err error, fragments ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range fragments {
			if !yield(f, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

// Collect drains stream and returns the concatenated fragments. On failure it
// returns the text received so far together with the error.
func Collect(stream iter.Seq2[string, error]) (string, error) {
	var sb strings.Builder
	for fragment, err := range stream {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(fragment)
	}
	return sb.String(), nil
}
