package main

import (
	"fmt"
	"os"

	"github.com/skycast-dev/skycast-be/internal/client/cli"
	"github.com/skycast-dev/skycast-be/internal/client/config"
)

func main() {
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	if err := app.Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
