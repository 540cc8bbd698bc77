package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/personal-website-api/internal/models"
	"github.com/personal-website-api/internal/service"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import users or blogs from files",
	Long: `Bulk import seed data. Every line is validated on its own; invalid
lines are reported and skipped, valid ones are inserted in batches.

Examples:
  blogctl import users users.csv
  blogctl import blogs blogs.ndjson --errors-out blog-errors.csv`,
}

var importUsersCmd = &cobra.Command{
	Use:   "users <file.csv>",
	Short: "Import users from CSV (email,password[,is_active][,id])",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], func(ctx context.Context, seed service.SeedService, r io.Reader) (*models.ImportReport, error) {
			return seed.ImportUsersCSV(ctx, r)
		})
	},
}

var importBlogsCmd = &cobra.Command{
	Use:   "blogs <file.ndjson>",
	Short: "Import blogs from NDJSON, one JSON object per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], func(ctx context.Context, seed service.SeedService, r io.Reader) (*models.ImportReport, error) {
			return seed.ImportBlogsNDJSON(ctx, r)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{importUsersCmd, importBlogsCmd} {
		c.Flags().String("errors-out", "", "write validation errors to this CSV file")
		importCmd.AddCommand(c)
	}

	rootCmd.AddCommand(importCmd)
}

type importFunc func(ctx context.Context, seed service.SeedService, r io.Reader) (*models.ImportReport, error)

func runImport(cmd *cobra.Command, path string, run importFunc) error {
	errorsOut, _ := cmd.Flags().GetString("errors-out")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	// Ctrl-C stops the import between records
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A cancelled import still returns the partial report
	report, err := run(ctx, a.services.Seed, f)
	if report == nil {
		return err
	}

	if errorsOut != "" && len(report.Errors) > 0 {
		if werr := writeErrorsFile(errorsOut, report.Errors); werr != nil {
			printError(werr)
		}
	}

	if jsonOut {
		if perr := printJSON(report); perr != nil {
			return perr
		}
		return err
	}

	printReport(report, errorsOut)
	return err
}

func writeErrorsFile(path string, errs []models.ValidationError) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := service.WriteErrorsCSV(out, errs); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func printReport(report *models.ImportReport, errorsOut string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Resource:\t%s\n", report.Resource)
	fmt.Fprintf(w, "Records:\t%d\n", report.TotalRecords)
	fmt.Fprintf(w, "Imported:\t%d\n", report.SuccessfulCount)
	fmt.Fprintf(w, "Failed:\t%d\n", report.FailedCount)
	fmt.Fprintf(w, "Duration:\t%dms (%.0f rows/sec)\n", report.DurationMs, report.RowsPerSec)
	w.Flush()

	if len(report.Errors) == 0 {
		return
	}
	if errorsOut != "" {
		fmt.Printf("\n%d errors written to %s\n", len(report.Errors), errorsOut)
		return
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tFIELD\tMESSAGE")
	for _, e := range report.Errors {
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.Line, e.Field, e.Message)
	}
	w.Flush()
	if report.ErrorsDropped > 0 {
		fmt.Printf("... and %d more\n", report.ErrorsDropped)
	}
}
