package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/maltedev/review-scraper/internal/dom"
	"github.com/maltedev/review-scraper/internal/output"
	"github.com/maltedev/review-scraper/internal/pacing"
	"github.com/maltedev/review-scraper/internal/scraper"
)

type extractHTMLOptions struct {
	file       string
	host       string
	output     string
	maxReviews int
}

var extractHTMLOpts extractHTMLOptions

func init() {
	f := extractHTMLCmd.Flags()
	f.StringVar(&extractHTMLOpts.file, "file", "", "Saved HTML page.")
	f.StringVar(&extractHTMLOpts.host, "host", "", "Host the page was saved from, e.g. www.amazon.com.")
	f.StringVarP(&extractHTMLOpts.output, "output", "o", "", "Output file (.csv or .xlsx). Only the sample is printed when empty.")
	f.IntVarP(&extractHTMLOpts.maxReviews, "max-reviews", "m", scraper.DefaultMaxReviews, "Maximum number of reviews to extract.")
	_ = extractHTMLCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(extractHTMLCmd)
}

var extractHTMLCmd = &cobra.Command{
	Use:   "extract-html --file <page.html> [--host <host>]",
	Short: "Runs the extraction pipeline over a saved page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtractHTML(cmd.Context(), extractHTMLOpts, cmd.OutOrStdout(), logger)
	},
}

func runExtractHTML(ctx context.Context, opts extractHTMLOptions, w io.Writer, logger *slog.Logger) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	doc, err := dom.NewHTMLDocument(f)
	if err != nil {
		return err
	}

	svc := scraper.NewService(nil, pacing.Nop{}, logger)
	result, err := svc.ExtractDocument(ctx, doc, opts.host, opts.maxReviews)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := output.Write(opts.output, result.Records); err != nil {
			return err
		}
		logger.Info("reviews saved", "file", opts.output, "count", len(result.Records))
	}

	output.PrintSample(w, result.Records)
	return nil
}
