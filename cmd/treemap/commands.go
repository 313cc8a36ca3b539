package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/iish/treemap-go/internal/cache"
	"github.com/iish/treemap-go/internal/snapshot"
	"github.com/iish/treemap-go/pkg/treemap"
	"github.com/iish/treemap-go/pkg/treemap/filter"
	"github.com/iish/treemap-go/pkg/treemap/output"
	"github.com/iish/treemap-go/pkg/treemap/tabular"
)

func newService(cmd *cobra.Command, reg prometheus.Registerer) (*treemap.Service, error) {
	cfg := getConfig(cmd.Context())
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	logger := getLogger(cmd.Context())

	c := cache.New(cfg.Cache.MaximumSize, cfg.Cache.MaxAccessTime,
		cache.WithLogger(logger), cache.WithMetrics(cache.NewMetrics(reg)))
	return treemap.NewService(cfg, treemap.WithLogger(logger), treemap.WithCache(c))
}

func newBuildCmd() *cobra.Command {
	var (
		req        treemap.Request
		values     []string
		minimums   []string
		maximums   []string
		outputPath string
		pretty     bool
		metrics    bool
	)

	cmd := &cobra.Command{
		Use:   "build <dataset>...",
		Short: "Build a treemap from one or more datasets",
		Long: `Build a treemap from spreadsheets or snapshots. The dataset id "dataset"
refers to the configured standard dataset.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var exprs []string
			for _, set := range []struct {
				kind  string
				exprs []string
			}{{"filter", values}, {"min", minimums}, {"max", maximums}} {
				for _, expr := range set.exprs {
					exprs = append(exprs, set.kind+":"+expr)
				}
			}
			spec, err := filter.ParseSpec(exprs)
			if err != nil {
				return err
			}
			req.Filters = spec
			req.Datasets = args

			reg := prometheus.NewRegistry()
			svc, err := newService(cmd, reg)
			if err != nil {
				return err
			}

			info, err := svc.Treemap(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), outputPath, info, pretty); err != nil {
				return err
			}
			if metrics {
				return writeMetrics(cmd.ErrOrStderr(), reg)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&req.Hierarchy, "hierarchy", nil, "Grouping columns, outermost first")
	cmd.Flags().StringVar(&req.Size, "size", "", "Column summed into leaf sizes (default from config)")
	cmd.Flags().StringArrayVar(&values, "filter", nil, "Keep rows whose column has the value: column=value (repeatable)")
	cmd.Flags().StringArrayVar(&minimums, "min", nil, "Keep rows whose column exceeds the number: column=number")
	cmd.Flags().StringArrayVar(&maximums, "max", nil, "Keep rows whose column is below the number: column=number")
	cmd.Flags().StringSliceVar(&req.FilterInfo, "filter-info", nil, "Columns to describe filter information for")
	cmd.Flags().BoolVar(&req.Multiples, "multiples", false, "Combine multiple labour relations")
	cmd.Flags().BoolVar(&req.Population, "population", false, "Add the population not covered by the datasets")
	cmd.Flags().BoolVar(&req.Window, "window", false, "Keep per country only the years matched to a time period")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Print dataset cache metrics to stderr")
	return cmd
}

func newColumnsCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "columns <dataset>...",
		Short: "List the columns of the combined datasets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			columns, err := svc.Columns(cmd.Context(), args)
			if err != nil {
				return err
			}
			return output.WriteJSON(cmd.OutOrStdout(), columns, pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <input.xlsx> <output>",
		Short: "Parse a spreadsheet once and store it as a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			d, err := svc.Dataset(cmd.Context(), args[:1])
			if err != nil {
				return err
			}
			table, ok := d.(*tabular.Table)
			if !ok {
				return fmt.Errorf("%s is not a single table", args[0])
			}
			if err := snapshot.WriteFile(args[1], table); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
			getLogger(cmd.Context()).Info("wrote snapshot", "path", args[1], "rows", table.Size())
			return nil
		},
	}
}

func writeOutput(stdout io.Writer, path string, v interface{}, pretty bool) error {
	if path == "" {
		return output.WriteJSON(stdout, v, pretty)
	}
	data, err := output.ToJSON(v, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
