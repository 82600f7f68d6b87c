package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tulisify/tulisify/internal/cli"
	"github.com/tulisify/tulisify/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	root := cli.NewRootCommand(cli.Options{
		Config:  config.NewConfig(),
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
	})

	// No command runs the HTTP server
	if len(os.Args) < 2 {
		root.SetArgs([]string{"serve"})
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
