package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/example/hr-dashboard/internal/calendar"
	"github.com/example/hr-dashboard/internal/dashboard"
	"github.com/example/hr-dashboard/internal/export"
	httptransport "github.com/example/hr-dashboard/internal/http"
	"github.com/example/hr-dashboard/internal/render"
	"github.com/example/hr-dashboard/internal/store"
	"github.com/example/hr-dashboard/internal/worktime"
)

type queryFlags struct {
	view   string
	period string
	date   string
	target string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.view, "view", "user", "user or admin")
	cmd.Flags().StringVar(&q.period, "period", "week", "week or month")
	cmd.Flags().StringVar(&q.date, "date", "", "reference day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&q.target, "target", "", "target hours, decimal or H:MM (default from configuration)")
}

func (q queryFlags) params(loc *time.Location) (dashboard.Params, error) {
	params := dashboard.Params{
		Mode:   dashboard.Mode(strings.ToLower(strings.TrimSpace(q.view))),
		Period: dashboard.Period(strings.ToLower(strings.TrimSpace(q.period))),
	}
	if raw := strings.TrimSpace(q.date); raw != "" {
		date, err := time.ParseInLocation(time.DateOnly, raw, loc)
		if err != nil {
			return dashboard.Params{}, fmt.Errorf("invalid --date %q: must be YYYY-MM-DD", raw)
		}
		params.Reference = date
	}
	if raw := strings.TrimSpace(q.target); raw != "" {
		target := worktime.ParseHours(raw)
		if target <= 0 {
			return dashboard.Params{}, fmt.Errorf("invalid --target %q: must be a positive number of hours", raw)
		}
		params.TargetHours = target
	}
	return params, nil
}

func newServeCommand(flags *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if cmd.Flags().Changed("port") {
				a.cfg.HTTPPort = port
			}
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides DASHBOARD_HTTP_PORT)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Dashboard:  httptransport.NewDashboardHandler(a.service, a.logger),
		Logger:     a.logger,
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(a.logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	a.logger.Info("dashboard API listening", "addr", server.Addr, "backend", a.cfg.BackendURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error("server encountered error", "error", err)
		return err
	}
	return nil
}

func newCalendarCommand(flags *globalFlags) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			reference, err := calendarReference(month, time.Now().In(cfg.Location))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Calendar(calendar.Build(reference)))
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
	return cmd
}

// calendarReference selects today in the current month and the first day
// of any other month.
func calendarReference(month string, now time.Time) (time.Time, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return now, nil
	}
	parsed, err := time.ParseInLocation("2006-01", month, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --month %q: must be YYYY-MM", month)
	}
	if parsed.Year() == now.Year() && parsed.Month() == now.Month() {
		return now, nil
	}
	return parsed, nil
}

func newOverviewCommand(flags *globalFlags) *cobra.Command {
	query := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print hours worked against the target for a week or month",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			params, err := query.params(a.cfg.Location)
			if err != nil {
				return err
			}
			view, err := a.service.Build(a.withToken(cmd.Context()), params)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), render.Error(err))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Dashboard(view, a.now()))
			return nil
		},
	}
	query.register(cmd)
	return cmd
}

func newBrowseCommand(flags *globalFlags) *cobra.Command {
	query := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse weeks and months interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			params, err := query.params(a.cfg.Location)
			if err != nil {
				return err
			}

			ctx := a.withToken(cmd.Context())
			session := dashboard.NewSession(a.service, store.New(), params)
			program := tea.NewProgram(
				render.NewBrowseModel(ctx, session, a.now),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}
	query.register(cmd)
	return cmd
}

func newExportCommand(flags *globalFlags) *cobra.Command {
	query := &queryFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the timesheets of a week or month to an .xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			params, err := query.params(a.cfg.Location)
			if err != nil {
				return err
			}
			view, err := a.service.Build(a.withToken(cmd.Context()), params)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), render.Error(err))
				return err
			}

			path := output
			if path == "" {
				path = export.FileName(view)
			}
			size, err := writeExport(path, view)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d records)\n", path, humanize.Bytes(uint64(size)), len(view.Records))
			return nil
		},
	}
	query.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default derived from view, period and date)")
	return cmd
}

func writeExport(path string, view dashboard.View) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}
	if err := export.WriteTimesheets(file, view); err != nil {
		_ = file.Close()
		return 0, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return 0, err
	}
	return info.Size(), file.Close()
}
