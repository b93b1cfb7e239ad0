package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deusflow/newshub/internal/app"
	"github.com/deusflow/newshub/internal/config"
	"github.com/deusflow/newshub/internal/logger"
)

const usage = "usage: newshub <config_path> [output_path]"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger.Init()

	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}
	configPath := args[0]
	outputPath := ""
	if len(args) == 2 {
		outputPath = args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := app.Run(ctx, configPath, outputPath)
	if err != nil {
		if errors.Is(err, config.ErrConfig) {
			logger.Error("Configuration error", "path", configPath, "error", err)
		} else {
			logger.Error("Run failed", "error", err)
		}
		return 1
	}

	fmt.Println(path)
	return 0
}
