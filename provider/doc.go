// Package provider defines the contract between the conversation pipeline and a
// chat-completion backend.
//
// A completion is a pull-based stream of text fragments. The caller ranges over
// it and each iteration blocks until the next fragment arrives:
//
//	for fragment, err := range p.ChatCompletion(ctx, params) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(fragment)
//	}
//
// Fragments arrive in the order the backend produced them. A failure at any point
// (connection, authentication, malformed event) is delivered as the final element
// of the sequence with an empty fragment. Breaking out of the loop early releases
// the underlying connection.
//
// Implementations are bound to one endpoint; see the openai sub-package.
package provider
