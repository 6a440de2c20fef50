package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/attendance"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
	"github.com/joseph-ayodele/attendance-tracker/internal/export"
	"github.com/joseph-ayodele/attendance-tracker/internal/ingest"
	repo "github.com/joseph-ayodele/attendance-tracker/internal/repository"
	"github.com/joseph-ayodele/attendance-tracker/internal/schedule"
)

func (c *cli) extractCmd() *cobra.Command {
	var tiers bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text extracted from a PDF or image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.processor()
			if tiers {
				rep, err := p.DiagnosePDF(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rep)
			}
			res, err := p.ExtractText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "method=%s pages=%d chars=%d\n", res.Method, res.Pages, len(res.Text))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return err
		},
	}
	cmd.Flags().BoolVar(&tiers, "tiers", false, "Report what every PDF extraction tier produced")
	return cmd
}

func (c *cli) analyzeCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Extract and normalize a calendar or timetable document",
		Long: `Extract and normalize a calendar or timetable document.

The mode defaults to calendar for PDFs whose name mentions "calendar" and
to timetable otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" {
				mode = string(ingest.Classify(args[0]))
			}
			p := c.processor()
			switch mode {
			case string(ingest.KindCalendar):
				res, err := p.ProcessCalendar(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			case string(ingest.KindTimetable):
				res, err := p.ProcessTimetable(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			default:
				return common.InvalidInputf("unknown mode %q (want calendar or timetable)", mode)
			}
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "calendar or timetable")
	return cmd
}

func (c *cli) combineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine <calendar.pdf> <timetable>",
		Short: "Process a calendar and a timetable into one combined result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.processor().ProcessCombined(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func (c *cli) calcCmd() *cobra.Command {
	var (
		total, attended, workingDays, perDay int
		target                               float64
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute attendance statistics",
		Long: `Compute attendance statistics from a class total, or from working days
times classes per day when --working-days is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				stats entity.AttendanceStats
				err   error
			)
			if cmd.Flags().Changed("working-days") {
				stats, err = attendance.ComputeFromSchedule(workingDays, perDay, attended, target)
			} else {
				stats, err = attendance.Compute(total, attended, target)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().IntVar(&total, "total", 0, "Total classes")
	cmd.Flags().IntVar(&attended, "attended", 0, "Classes attended")
	cmd.Flags().IntVar(&workingDays, "working-days", 0, "Total working days")
	cmd.Flags().IntVar(&perDay, "per-day", 0, "Classes per working day")
	cmd.Flags().Float64Var(&target, "target", constants.DefaultTargetPercentage, "Target percentage")
	return cmd
}

func (c *cli) planCmd() *cobra.Command {
	var (
		schedulePath, startStr, endStr, icsOut, xlsxOut string
		holidays                                        []string
		attended                                        int
		target                                          float64
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Project a weekly timetable over a semester",
		Long: `Project a weekly timetable over a semester and compute the attendance
statistics it implies. --schedule takes a timetable analysis as printed by
"analyze", or a bare weekly schedule object.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weekly, err := loadSchedule(schedulePath)
			if err != nil {
				return err
			}
			start, err := time.Parse(time.DateOnly, startStr)
			if err != nil {
				return common.InvalidInput("--start must be a date (YYYY-MM-DD)")
			}
			end, err := time.Parse(time.DateOnly, endStr)
			if err != nil {
				return common.InvalidInput("--end must be a date (YYYY-MM-DD)")
			}

			plan, err := schedule.BuildPlan(weekly, start, end, holidays, attended, target)
			if err != nil {
				return err
			}

			exp := export.NewService(c.logger)
			if icsOut != "" {
				b, err := exp.ScheduleICS(cmd.Context(), plan.Projection, "")
				if err != nil {
					return err
				}
				if err := os.WriteFile(icsOut, b, 0o644); err != nil {
					return err
				}
			}
			if xlsxOut != "" {
				b, err := exp.AttendanceXLSX(cmd.Context(), export.Report{
					Title:          "Semester plan",
					Stats:          &plan.Stats,
					SemesterStart:  plan.Projection.SemesterStart,
					SemesterEnd:    plan.Projection.SemesterEnd,
					WeeklySchedule: weekly,
				})
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxOut, b, 0o644); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVarP(&schedulePath, "schedule", "s", "", "Timetable analysis or weekly schedule JSON file")
	cmd.Flags().StringVar(&startStr, "start", "", "Semester start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endStr, "end", "", "Semester end (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&holidays, "holiday", nil, "Holiday date (YYYY-MM-DD), repeatable")
	cmd.Flags().IntVar(&attended, "attended", 0, "Classes attended so far")
	cmd.Flags().Float64Var(&target, "target", constants.DefaultTargetPercentage, "Target percentage")
	cmd.Flags().StringVar(&icsOut, "ics", "", "Also write the sessions as an iCalendar file")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "Also write a workbook")
	_ = cmd.MarkFlagRequired("schedule")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func (c *cli) ingestCmd() *cobra.Command {
	var (
		outDir     string
		watch      bool
		skipHidden bool
		debounce   time.Duration
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Analyze every document in a directory, optionally watching for new ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ing, err := ingest.NewFSIngestor(c.processor(), outDir, c.logger)
			if err != nil {
				return err
			}
			report := func(r ingest.Result) {
				if r.Err != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %s\n", r.SourcePath, r.Err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK   %s -> %s (%s)\n", r.SourcePath, r.OutputPath, r.Source)
			}

			if watch {
				err := ing.Watch(cmd.Context(), ingest.WatchConfig{
					Roots:       []string{args[0]},
					InitialScan: true,
					Debounce:    debounce,
					Workers:     workers,
				}, report)
				if cmd.Context().Err() != nil {
					return nil
				}
				return err
			}

			results, stats, err := ing.IngestDirectory(cmd.Context(), args[0], skipHidden)
			for _, r := range results {
				report(r)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d matched=%d succeeded=%d failed=%d\n",
				stats.Scanned, stats.Matched, stats.Succeeded, stats.Failed)
			return err
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "analyses", "Directory for the JSON analyses")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and process new files as they appear")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "Skip dot files and directories")
	cmd.Flags().IntVar(&workers, "workers", 2, "Documents processed concurrently in watch mode")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Wait this long after the last write before processing a file")
	return cmd
}

func (c *cli) dbhealthCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "dbhealth",
		Short: "Check database connectivity, optionally creating the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := repo.Open(cmd.Context(), repo.Config{
				DSN:             c.cfg.Database.DSN,
				MaxConns:        c.cfg.Database.MaxConns,
				MinConns:        c.cfg.Database.MinConns,
				MaxConnLifetime: c.cfg.Database.MaxConnLifetime,
				MaxConnIdleTime: c.cfg.Database.MaxConnIdleTime,
				DialTimeout:     c.cfg.Database.DialTimeout,
			}, c.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.HealthCheck(cmd.Context(), 5*time.Second); err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			if migrate {
				if err := db.Migrate(cmd.Context()); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "DB health: OK (%s)\n", db.Dialect)
			return err
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Create missing tables")
	return cmd
}
