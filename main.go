package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/cognite/powerops/internal/cmd/root"
	"github.com/cognite/powerops/internal/iostreams"
)

func main() {
	// A second signal after cancellation kills the process with the default handler.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root.Execute(ctx, iostreams.GetOSIOStreams())
}
