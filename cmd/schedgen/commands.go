package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meenmo/moschedule/calendar"
	"github.com/meenmo/moschedule/cmd/schedgen/internal/batchio"
	"github.com/meenmo/moschedule/cmd/schedgen/internal/server"
)

func (a *app) generateCmd() *cobra.Command {
	var (
		item       batchio.Item
		calID      string
		convention string
		backward   bool
		input      string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate schedules for one request or a JSON batch",
		Example: "  schedgen generate --start 2020-01-31 --end 2020-07-31 --tenor 3M --calendar TARGET\n" +
			"  schedgen generate --input batch.json --format json",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &batchio.Request{}
			if input != "" {
				r, err := a.openInput(input)
				if err != nil {
					return err
				}
				defer r.Close()
				if req, err = batchio.DecodeRequest(r); err != nil {
					return err
				}
			} else {
				if item.Start == "" || item.End == "" || item.Tenor == "" {
					return fmt.Errorf("--start, --end and --tenor are required without --input")
				}
				req.Items = []batchio.Item{item}
			}
			if cmd.Flags().Changed("calendar") || req.Calendar == "" {
				req.Calendar = calID
			}
			if cmd.Flags().Changed("convention") || req.Convention == "" {
				req.Convention = convention
			}
			if cmd.Flags().Changed("backward") {
				req.Backward = backward
			}
			if req.Calendar == "" {
				req.Calendar = a.cfg.Calendar.Default
			}

			start := time.Now()
			resp, rows, err := req.Run(cmd.Context(), a.calendars, a.cfg.Calendar.StartYear, a.cfg.Calendar.EndYear)
			if err != nil {
				return err
			}
			a.metrics.ObserveBatch(req.Backward, rows.Lengths(), time.Since(start))
			a.logger.Debug("Schedules generated",
				zap.String("calendar", req.Calendar),
				zap.Int("items", rows.Len()),
				zap.Duration("elapsed", time.Since(start)))

			switch strings.ToLower(format) {
			case "json":
				return batchio.Encode(a.stdout, resp)
			case "text", "":
				for _, row := range resp.Schedules {
					fmt.Fprintln(a.stdout, strings.Join(row, " "))
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().StringVar(&item.Start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&item.End, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&item.Tenor, "tenor", "", "Tenor such as 1W, 3M, 1Y")
	cmd.Flags().StringVar(&calID, "calendar", "", "Calendar id (default from config)")
	cmd.Flags().StringVar(&convention, "convention", string(batchio.DefaultConvention), "Business day convention")
	cmd.Flags().BoolVar(&backward, "backward", false, "Generate from the end date backwards")
	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON batch file, or - for stdin")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func (a *app) openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(a.stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

func (a *app) rollCmd() *cobra.Command {
	var (
		date       string
		calID      string
		convention string
	)

	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Roll a date to a business day",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := batchio.ParseDate(date)
			if err != nil {
				return err
			}
			conv, err := calendar.ParseConvention(convention)
			if err != nil {
				return err
			}
			if calID == "" {
				calID = a.cfg.Calendar.Default
			}
			cal, err := a.calendars.Calendar(cmd.Context(), calID, a.cfg.Calendar.StartYear, a.cfg.Calendar.EndYear)
			if err != nil {
				return err
			}
			rolled, err := cal.Roll(d, conv)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, rolled)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to roll (YYYY-MM-DD)")
	cmd.Flags().StringVar(&calID, "calendar", "", "Calendar id (default from config)")
	cmd.Flags().StringVar(&convention, "convention", string(calendar.Following), "Business day convention")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func (a *app) calendarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List available calendar ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range a.calendars.IDs() {
				fmt.Fprintln(a.stdout, id)
			}
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			srv := server.New(server.Options{
				Logger:    a.logger,
				Calendars: a.calendars,
				Metrics:   a.metrics,
				Gatherer:  a.promReg,
				Config:    cfg,
				StartYear: a.cfg.Calendar.StartYear,
				EndYear:   a.cfg.Calendar.EndYear,
			})
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
