// Command lib-tools derives build plans for the library projects described
// in a libconfig.json workspace document.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Aakash-Pandya/lib-tools/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
