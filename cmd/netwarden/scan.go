package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netwarden/internal/conflict"
	"netwarden/internal/config"
	"netwarden/internal/dockerd"
	"netwarden/internal/render"
	"netwarden/internal/topology"
)

var scanOpts struct {
	network        string
	includeDefault bool
	noWarnings     bool
	quiet          bool
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan networks once and report conflicts",
	Long: `Scan all Docker networks (or one, with --network), analyze DNS
names for conflicts, and print a report.

Exit codes: 0 clean or warnings only, 1 high-severity conflicts,
2 critical conflicts.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanOpts.network, "network", "", "scan a single network by name")
	scanCmd.Flags().BoolVar(&scanOpts.includeDefault, "include-default", false, "include bridge/host/none networks")
	scanCmd.Flags().BoolVar(&scanOpts.noWarnings, "no-warnings", false, "suppress generic-name warnings")
	scanCmd.Flags().BoolVarP(&scanOpts.quiet, "quiet", "q", false, "print only the summary line")
	rootCmd.AddCommand(scanCmd)
}

// scanTopology scans one named network or all of them. Naming a
// network that does not exist (or has no containers) is an error, not
// a clean empty report.
func scanTopology(ctx context.Context, scanner *dockerd.Scanner, networkName string, includeDefault bool) (*topology.Topology, error) {
	if networkName == "" {
		topo, err := scanner.Scan(ctx, includeDefault)
		if err != nil {
			return nil, fmt.Errorf("scan topology: %w", err)
		}
		return topo, nil
	}

	topo, err := scanner.ScanNetwork(ctx, networkName)
	if err != nil {
		return nil, fmt.Errorf("scan topology: %w", err)
	}
	if topo.IsEmpty() {
		return nil, fmt.Errorf("network '%s' not found or empty", networkName)
	}
	return topo, nil
}

func runScan(cmd *cobra.Command, args []string) error {
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

	topo, err := scanTopology(ctx, dockerd.NewScanner(client), scanOpts.network, scanOpts.includeDefault || cfg.Scan.IncludeDefault)
	if err != nil {
		return err
	}

	detector := conflict.NewDetector(conflict.Config{
		WarnGenericNames: cfg.Scan.WarnGeneric() && !scanOpts.noWarnings,
	})
	report := detector.Analyze(topo)

	r := render.New(os.Stdout)
	if scanOpts.quiet {
		r.Summary(report)
	} else {
		r.Report(report)
	}

	switch {
	case report.CriticalCount() > 0:
		os.Exit(2)
	case report.HighCount() > 0:
		os.Exit(1)
	}
	return nil
}
