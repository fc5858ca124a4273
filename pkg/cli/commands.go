package cli

import (
	"context"

	"github.com/harrisonrobin/tasksheet/pkg/aggregate"
	"github.com/harrisonrobin/tasksheet/pkg/auth"
	"github.com/harrisonrobin/tasksheet/pkg/config"
	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"github.com/harrisonrobin/tasksheet/pkg/logger"
	"github.com/harrisonrobin/tasksheet/pkg/model"
	"github.com/harrisonrobin/tasksheet/pkg/normalize"
	"github.com/harrisonrobin/tasksheet/pkg/render"
	"github.com/harrisonrobin/tasksheet/pkg/server"
	"github.com/harrisonrobin/tasksheet/pkg/source"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSummaryCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [source]",
		Short: "Pending tasks by officer and department",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			src, err := a.source(args)
			if err != nil {
				return err
			}
			snap, err := a.load(cmd.Context(), src)
			if err != nil {
				return err
			}
			return a.summary(snap)
		},
	}
}

func (a *app) summary(snap model.Snapshot) error {
	v := render.Summarize(snap, a.opts)
	if a.json {
		return render.JSON(a.out, v)
	}
	return a.terminal().Summary(v)
}

func newPriorityCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "priority [source]",
		Short: "Priority distribution, oldest pending task and breakdowns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			src, err := a.source(args)
			if err != nil {
				return err
			}
			snap, err := a.load(cmd.Context(), src)
			if err != nil {
				return err
			}
			v := render.Prioritize(snap, a.opts)
			if a.json {
				return render.JSON(a.out, v)
			}
			return a.terminal().Priority(v)
		},
	}
}

func newListCmd(g *globalFlags) *cobra.Command {
	var f aggregate.Filter
	var priority string
	var all bool

	cmd := &cobra.Command{
		Use:   "list [source]",
		Short: "List pending tasks, optionally filtered",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			src, err := a.source(args)
			if err != nil {
				return err
			}
			snap, err := a.load(cmd.Context(), src)
			if err != nil {
				return err
			}

			tasks := snap.Tasks
			if !all {
				tasks = aggregate.Pending(tasks)
			}
			if priority != "" {
				f.Priority = normalize.ClassifyPriority(priority)
			}
			tasks = f.Apply(tasks)
			if a.json {
				return render.JSON(a.out, tasks)
			}
			return a.terminal().List(tasks)
		},
	}
	cmd.Flags().StringVar(&f.Department, "department", "", "Only tasks of this department")
	cmd.Flags().StringVar(&f.Officer, "officer", "", "Only tasks assigned to this officer")
	cmd.Flags().StringVar(&priority, "priority", "", "Only tasks of this priority (Most Urgent, High, Medium, Low, Unspecified)")
	cmd.Flags().BoolVar(&all, "all", false, "Include completed tasks")
	return cmd
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the dashboards as a JSON HTTP API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			src, err := a.source(args)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Addr
			}
			return server.New(a.board, src, a.opts).Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Redraw the summary whenever a CSV file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			src, err := a.source(args)
			if err != nil {
				return err
			}
			file, ok := src.(source.CSVFile)
			if !ok {
				return errors.WithHint(errors.Newf("%s is not a local file", args[0]),
					"watch works on uploaded CSV files; use summary for URLs")
			}

			draw := func(ctx context.Context) {
				snap, err := a.load(ctx, file)
				if err != nil {
					report(a.out, err)
					return
				}
				if err := a.summary(snap); err != nil {
					logger.Logger.Warnw("render failed", "error", err)
				}
			}

			ctx := cmd.Context()
			draw(ctx)
			return source.Watch(ctx, file.Path, func() {
				a.board.Invalidate(file)
				draw(ctx)
			})
		},
	}
}

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize read access to Google Sheets",
		Long: `Runs the OAuth flow for the Google Sheets API and stores the token in the
config directory. Needs credentials.json from a Google Cloud OAuth client.
Only needed for private sheets; set use_sheets_api to read through the API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.Reset(); err != nil {
				return err
			}
			if _, err := auth.GetClient(cmd.Context(), auth.Scopes); err != nil {
				return errors.Wrap(err, "authentication failed")
			}
			path, err := auth.TokenPath()
			if err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Authentication successful. Token saved to %s", path)
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change saved settings",
	}

	setSource := &cobra.Command{
		Use:   "set-source <url-or-path>",
		Short: "Set the default sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			src, err := source.Detect(args[0], source.Options{UseSheetsAPI: cfg.UseSheetsAPI, Columns: cfg.SheetRange})
			if err != nil {
				return err
			}
			cfg.Source = args[0]
			if f, ok := src.(source.CSVFile); ok {
				cfg.Source = f.Path
			}
			if err := config.Save(cfg); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Default source set to %s", cfg.Source)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return render.JSON(cmd.OutOrStdout(), cfg)
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return errors.Wrap(err, "encode config")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.AddCommand(setSource, show)
	return cmd
}
