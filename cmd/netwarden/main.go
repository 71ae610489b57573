// netwarden detects Docker DNS naming conflicts: containers on a
// shared network whose names, compose service names, or aliases
// collide and silently steal each other's traffic.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "netwarden",
	Short: "Docker network DNS conflict detector",
	Long: `netwarden scans Docker networks for DNS naming conflicts.

When two containers on the same network answer to the same DNS name
(container name, compose service name, or network alias), Docker's
embedded DNS resolves the name to one of them arbitrarily. netwarden
finds these collisions before they bite, rates their severity, and
suggests fixes.`,
	Version: "1.0.0",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceUsage = true
}
