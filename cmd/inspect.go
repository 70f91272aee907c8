package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/content"
	"marquee/internal/httputil"
	"marquee/internal/inspect"
	"marquee/internal/registry"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <locator>",
	Short: "Classify a locator and show how it would be presented",
	Args:  cobra.ExactArgs(1),
	RunE:  inspectRun,
}

func inspectRun(cmd *cobra.Command, args []string) error {
	locator := args[0]

	kind, err := content.Classify(locator)
	if err != nil {
		return fmt.Errorf("classifying %q: %w", locator, err)
	}
	fmt.Printf("Locator:  %s\n", locator)
	fmt.Printf("Kind:     %s\n", kind)

	if d, ok := registry.Default(kind); ok {
		fmt.Printf("Default:  %s (%s)\n", d.Name, strategyName(d.Strategy))
	}

	if kind != content.Website {
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	report, err := inspect.Probe(ctx, httputil.NewClient(), locator)
	if err != nil {
		return fmt.Errorf("probing %q: %w", locator, err)
	}

	fmt.Printf("Status:   %d\n", report.Status)
	if report.Title != "" {
		fmt.Printf("Title:    %s\n", report.Title)
	}
	if report.MetaRefresh {
		fmt.Printf("Refresh:  page refreshes itself every %ds\n", report.RefreshEvery)
	}
	return nil
}
