// ABOUTME: Records command for querying the archived error records
// ABOUTME: Supports list, get, and stats against the local BadgerDB archive

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sinugotshifhiwa4/errsift/internal/archive"
	"github.com/sinugotshifhiwa4/errsift/internal/config"
	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
	"github.com/sinugotshifhiwa4/errsift/internal/types"
)

func newRecordsCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Query archived error records",
	}

	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", config.DefaultDataDir(), "data directory containing the archive")

	cmd.AddCommand(newRecordsListCmd(&dataDir))
	cmd.AddCommand(newRecordsGetCmd(&dataDir))
	cmd.AddCommand(newRecordsDeleteCmd(&dataDir))
	cmd.AddCommand(newRecordsStatsCmd(&dataDir))

	return cmd
}

func newRecordsListCmd(dataDir *string) *cobra.Command {
	var (
		category   string
		source     string
		limit      int
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived records, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, err := openArchive(*dataDir)
			if err != nil {
				return err
			}
			defer arch.Close()

			opts := archive.ListOptions{Source: source, Limit: limit}
			if category != "" {
				cat, err := taxonomy.Parse(category)
				if err != nil {
					return fmt.Errorf("unknown category %q: %w", category, err)
				}
				opts.Category = cat
				opts.FilterCategory = true
			}

			recs, err := arch.List(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("failed to list records: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}

			if len(recs) == 0 {
				fmt.Println("no records found")
				return nil
			}
			for _, rec := range recs {
				printRecordLine(rec)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category (e.g. CONNECTION, TIMEOUT)")
	cmd.Flags().StringVar(&source, "source", "", "filter by source label")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of records to return (0 = no limit)")
	cmd.Flags().BoolVarP(&outputJSON, "json", "j", false, "output records as JSON")

	return cmd
}

func newRecordsGetCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a single archived record by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, err := openArchive(*dataDir)
			if err != nil {
				return err
			}
			defer arch.Close()

			rec, err := arch.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get record: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("record %q not found", args[0])
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newRecordsDeleteCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete archived records by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, err := openArchive(*dataDir)
			if err != nil {
				return err
			}
			defer arch.Close()

			for _, id := range args {
				if err := arch.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete record %q: %w", id, err)
				}
			}
			fmt.Printf("deleted %d record(s)\n", len(args))
			return nil
		},
	}
}

func newRecordsStatsCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show archive statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, err := openArchive(*dataDir)
			if err != nil {
				return err
			}
			defer arch.Close()

			stats, err := arch.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read stats: %w", err)
			}

			fmt.Printf("Records: %d\n", stats.RecordCount)
			fmt.Printf("Size:    %.2f MB\n", float64(stats.SizeBytes)/(1024*1024))
			return nil
		},
	}
}

func openArchive(dataDir string) (*archive.Archive, error) {
	path := filepath.Join(dataDir, "archive")
	arch, err := archive.New(archive.Config{Path: path})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive at %s: %w", path, err)
	}
	return arch, nil
}

func printRecordLine(rec *types.ErrorRecord) {
	ts := rec.Timestamp.Format("2006-01-02 15:04:05")
	fmt.Printf("%s  %-16s %-12s [%s] %s\n", ts, rec.Category, rec.Source, rec.Context, rec.Message)
}
