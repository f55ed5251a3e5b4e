// Command helloasso-token obtains a HelloAsso access token, refreshes it once,
// and prints the resulting token state.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mattherix/hello-asso/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
