// Command agc edits the ag configuration.
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
		err = app.AgcCommand().ExecuteContext(context.Background())
	}
	if err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
