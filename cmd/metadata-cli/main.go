package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/feral-file/nft-metadata-gateway/internal/cli"
	"github.com/feral-file/nft-metadata-gateway/internal/config"
)

func main() {
	config.ChdirRepoRoot()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCommand(cli.Options{}).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
