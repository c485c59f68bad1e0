// Package chat runs conversation turns: it resolves the model and provider,
// builds the request from the session history, streams the answer to the
// renderer and persists the session once the answer is complete.
//
// A turn either completes, in which case the cleaned answer is appended to the
// session and written to disk, or aborts with ErrTurnAborted, in which case
// nothing is written. The user message of an aborted turn stays in memory so
// an interactive session keeps its context.
package chat
