package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/calebglawson/cecil/internal/client/cli"
	"github.com/calebglawson/cecil/internal/client/config"
)

func main() {
	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := app.Run(context.Background(), args); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", cli.Describe(err))
		os.Exit(1)
	}
}
