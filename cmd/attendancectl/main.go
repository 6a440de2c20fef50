package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/llm/provider"
	"github.com/joseph-ayodele/attendance-tracker/internal/normalize"
	"github.com/joseph-ayodele/attendance-tracker/internal/ocr"
	"github.com/joseph-ayodele/attendance-tracker/internal/pipeline"
)

// cli holds state shared by every subcommand.
type cli struct {
	cfg     *common.Config
	logger  *slog.Logger
	verbose bool
	noAI    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", common.Message(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "attendancectl",
		Short: "Extract, analyze and plan academic attendance from the command line",
		Long: `attendancectl runs the attendance pipeline without the HTTP server.

Examples:
  attendancectl extract calendar.pdf --tiers
  attendancectl analyze timetable.png
  attendancectl combine calendar.pdf timetable.png
  attendancectl calc --total 100 --attended 60
  attendancectl plan --schedule week.json --start 2025-06-02 --end 2025-08-23 --ics term.ics
  attendancectl ingest ./inbox --out ./analyses --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log pipeline events to stderr")
	root.PersistentFlags().BoolVar(&c.noAI, "no-ai", false, "Skip the AI backend and use heuristic parsing only")

	root.AddCommand(
		c.extractCmd(),
		c.analyzeCmd(),
		c.combineCmd(),
		c.calcCmd(),
		c.planCmd(),
		c.ingestCmd(),
		c.dbhealthCmd(),
	)
	return root
}

func (c *cli) init(stderr io.Writer) error {
	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	if c.noAI {
		cfg.LLM.Provider = "none"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(c.logger)
	return nil
}

func (c *cli) processor() *pipeline.Processor {
	sel := provider.Select(c.cfg.LLM, c.logger)
	return pipeline.NewProcessor(c.logger,
		ocr.NewExtractor(ocr.ConfigFrom(c.cfg.OCR), c.logger),
		normalize.New(sel, c.logger),
	)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
