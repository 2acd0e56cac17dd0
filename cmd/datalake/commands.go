package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Harsh-BH/datalake/internal/config"
	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/usecase"
)

func newProvisionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the bucket, catalog and table, ingest the feed and run the analytics query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, config.WorkflowProvision, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.runPlan(cmd.Context(), a.workflows.ProvisionPlan())
		},
	}
}

func newTeardownCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "teardown",
		Short: "Delete query results, objects, the bucket and the catalog database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, config.WorkflowTeardown, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.runPlan(cmd.Context(), a.workflows.TeardownPlan())
		},
	}
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query [sql]",
		Short: "Run a query against the lake and print the rows",
		Long: `Run a SQL query against the catalog database and print the first page of rows.
Without an argument the per-team player count and salary query is run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts, config.WorkflowQuery, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.pushMetrics(cmd.Context(), "query")

			s := a.settings
			query := domain.AnalyticsQuery(s.Database, s.Table)
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				query = args[0]
			}

			job, result, err := a.queries.Run(cmd.Context(), query, s.Database, s.OutputLocation())
			if err != nil {
				return err
			}
			if job.State != domain.StateSucceeded {
				return queryFailure(job)
			}
			return usecase.RenderResults(cmd.OutOrStdout(), result)
		},
	}
}
