package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netwarden/internal/conflict"
	"netwarden/internal/config"
	"netwarden/internal/dockerd"
	"netwarden/internal/render"
)

var mapOpts struct {
	includeDefault bool
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print the network topology as a tree",
	Long: `Print every network and its attached containers as an ASCII
tree, with conflicting names marked. Multi-homed containers are
listed at the end.`,
	RunE: runMap,
}

func init() {
	mapCmd.Flags().BoolVar(&mapOpts.includeDefault, "include-default", false, "include bridge/host/none networks")
	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, _, err := config.Load()
	if err != nil {
		return err
	}

	client, err := dockerd.New(ctx)
	if err != nil {
		return fmt.Errorf("connect to docker: %w", err)
	}
	defer client.Close()

	topo, err := dockerd.NewScanner(client).Scan(ctx, mapOpts.includeDefault || cfg.Scan.IncludeDefault)
	if err != nil {
		return fmt.Errorf("scan topology: %w", err)
	}

	detector := conflict.NewDetector(conflict.Config{WarnGenericNames: cfg.Scan.WarnGeneric()})
	report := detector.Analyze(topo)

	r := render.New(os.Stdout)
	r.Topology(topo, report)
	r.CrossNetwork(conflict.CrossNetwork(topo))
	return nil
}
