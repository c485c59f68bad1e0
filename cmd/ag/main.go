// Command ag asks a chat model a question, optionally with piped context, and
// keeps the conversation in a named session.
package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/utmux/ag/internal/cli"
)

func main() {
	app, err := cli.New()
	if err == nil {
		err = app.AgCommand().ExecuteContext(context.Background())
	}
	if err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
