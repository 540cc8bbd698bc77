package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/personal-website-api/internal/models"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored content",
}

var exportBlogsCmd = &cobra.Command{
	Use:   "blogs",
	Short: "Stream blogs to stdout or a file",
	Long: `Stream blogs with their tags and related links. NDJSON output can be
imported again with "blogctl import blogs".

Examples:
  blogctl export blogs > blogs.ndjson
  blogctl export blogs --format json --status published -o published.json`,
	Args: cobra.NoArgs,
	RunE: runExportBlogs,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	exportBlogsCmd.Flags().String("format", "ndjson", "output format (ndjson, json)")
	exportBlogsCmd.Flags().String("status", "", "only export blogs with this status (draft, published, archived)")
	exportBlogsCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	exportCmd.AddCommand(exportBlogsCmd)

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}

func runExportBlogs(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	status, _ := cmd.Flags().GetString("status")
	output, _ := cmd.Flags().GetString("output")

	if status != "" && !models.ValidStatuses[models.BlogStatus(status)] {
		return fmt.Errorf("invalid status %q", status)
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	count, err := a.services.Export.StreamBlogs(context.Background(), w, format, models.BlogStatus(status))
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Exported %d blogs\n", count)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	counts := make(map[string]int)
	for _, resource := range []string{"users", "blogs", "tags"} {
		n, err := a.services.Export.GetCount(ctx, resource)
		if err != nil {
			return err
		}
		counts[resource] = n
	}

	if jsonOut {
		return printJSON(counts)
	}
	fmt.Printf("users: %d\nblogs: %d\ntags:  %d\n", counts["users"], counts["blogs"], counts["tags"])
	return nil
}
