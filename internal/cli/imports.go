package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"property-import-backend/internal/app"
)

func newSourcesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured listing sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := map[string]string{}
			schedules := map[string]string{}
			for _, sc := range rt.app.SourceConfigs {
				kinds[sc.Name] = string(sc.Kind)
				schedules[sc.Name] = sc.Schedule
			}

			names := rt.app.Sources.Names()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), hintStyle.Render("No sources configured. Set SOURCES_FILE or ENABLE_DEMO_SOURCE."))
				return nil
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				kind := kinds[name]
				if kind == "" && name == app.DemoSourceName {
					kind = "mock"
				}
				schedule := schedules[name]
				if schedule == "" {
					schedule = "-"
				}
				rows = append(rows, []string{name, kind, schedule})
			}
			printTable(cmd.OutOrStdout(), []string{"NAME", "KIND", "SCHEDULE"}, rows)
			return nil
		},
	}
}

func newScrapeCmd(rt *runtime) *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "scrape <source>",
		Short: "Scrape a source and re-host its images",
		Long: `Scrape acquires listings from a source and moves their images to the
media host. Nothing is written to the document store unless --commit is set.

Examples:
  importctl scrape testsource
  importctl scrape lagos-feed --commit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			job, listings, err := rt.app.Scraping.ScrapeProperties(cmd.Context(), args[0])
			printJob(out, job)
			if err != nil {
				return err
			}

			if len(listings) > 0 {
				printTable(out, []string{"TITLE", "PRICE", "LOCATION", "IMAGES"}, listingRows(listings))
			}
			if !commit {
				return nil
			}

			ids, err := rt.app.Scraping.ImportPropertiesToDatabase(cmd.Context(), listings)
			fmt.Fprintf(out, "imported %d/%d listings\n", len(ids), len(listings))
			return err
		},
	}
	cmd.Flags().BoolVar(&commit, "commit", false, "write the scraped listings to the document store")
	return cmd
}

func newRunCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "run <source>",
		Short: "Scrape a source and import the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, ids, err := rt.app.Scraping.RunImport(cmd.Context(), args[0])
			printJob(cmd.OutOrStdout(), job)
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return err
		},
	}
}

func newSnapshotsCmd(rt *runtime) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "snapshots <source>",
		Short: "List or prune archived scrape snapshots for a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.app.Snapshots == nil {
				return fmt.Errorf("snapshot archive is not configured (set SUPABASE_SNAPSHOT_BUCKET)")
			}
			if prune {
				removed, err := rt.app.Snapshots.PruneSnapshots(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d snapshots\n", removed)
				return err
			}

			names, err := rt.app.Snapshots.ListSnapshots(args[0])
			if err != nil {
				return err
			}
			sort.Strings(names)
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "delete every snapshot archived for the source")
	return cmd
}
