// Package cli implements the tasksheet command line.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harrisonrobin/tasksheet/pkg/aggregate"
	"github.com/harrisonrobin/tasksheet/pkg/board"
	"github.com/harrisonrobin/tasksheet/pkg/cache"
	"github.com/harrisonrobin/tasksheet/pkg/columns"
	"github.com/harrisonrobin/tasksheet/pkg/config"
	"github.com/harrisonrobin/tasksheet/pkg/errors"
	"github.com/harrisonrobin/tasksheet/pkg/logger"
	"github.com/harrisonrobin/tasksheet/pkg/model"
	"github.com/harrisonrobin/tasksheet/pkg/normalize"
	"github.com/harrisonrobin/tasksheet/pkg/render"
	"github.com/harrisonrobin/tasksheet/pkg/source"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	json    bool
	now     string
	aliases string
	verbose int
	noCache bool
}

// NewRootCmd builds the tasksheet command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "tasksheet",
		Short: "Pending-task dashboards from a task tracking sheet",
		Long: `tasksheet reads a task tracking sheet (a Google Sheet, a CSV export URL or a
CSV file), normalizes every row and shows what is still pending.

The sheet comes from the command argument, or from the default set with
'tasksheet config set-source'.

Examples:
  tasksheet summary https://docs.google.com/spreadsheets/d/<id>/edit#gid=0
  tasksheet priority ./tasks.csv
  tasksheet list --department Finance --priority high
  tasksheet serve --addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return logger.Initialize(cfg.LogJSON || g.json, g.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&g.json, "json", false, "Write JSON instead of terminal tables")
	pf.StringVar(&g.now, "now", "", "Reference date for days pending (default today)")
	pf.StringVar(&g.aliases, "aliases", "", "YAML file of extra column aliases")
	pf.CountVarP(&g.verbose, "verbose", "v", "Increase log verbosity (-v, -vv)")
	pf.BoolVar(&g.noCache, "no-cache", false, "Always refetch the sheet")

	root.AddCommand(
		newSummaryCmd(g),
		newPriorityCmd(g),
		newListCmd(g),
		newServeCmd(g),
		newWatchCmd(g),
		newAuthCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}

func report(w io.Writer, err error) {
	var diag *model.Diagnostic
	if errors.As(err, &diag) {
		render.Terminal{W: w}.Failure(diag)
		return
	}
	pterm.Error.WithWriter(w).Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.WithWriter(w).Println(hint)
	}
}

// app is the per-invocation wiring shared by the dashboard commands.
type app struct {
	cfg   *config.Config
	board *board.Board
	opts  aggregate.Options
	out   io.Writer
	json  bool
}

func newApp(cmd *cobra.Command, g *globalFlags) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	aliases := columns.DefaultAliases
	aliasFile := cfg.AliasesFile
	if g.aliases != "" {
		aliasFile = g.aliases
	}
	if aliasFile != "" {
		extra, err := columns.LoadAliases(aliasFile)
		if err != nil {
			return nil, err
		}
		aliases = aliases.Merge(extra)
	}

	var c *cache.Cache
	if !g.noCache {
		c, err = cache.Open(cfg.CacheTTL)
		if err != nil {
			logger.Logger.Warnw("cache unavailable, fetching directly", "error", err)
			c = nil
		}
	}

	n := normalize.New(columns.NewReconciler(aliases), normalize.DateParser{DayFirst: cfg.DayFirst, Location: time.Local})
	b := board.New(n, c)
	if g.now != "" {
		ref, ok := (normalize.DateParser{Location: time.Local}).Parse(g.now)
		if !ok {
			return nil, errors.WithHint(errors.Newf("invalid --now %q", g.now), "use a date such as 2024-08-30")
		}
		b.Reference = ref
	}

	return &app{
		cfg:   cfg,
		board: b,
		opts:  aggregate.Options{IncludeUnassigned: cfg.IncludeUnassigned},
		out:   cmd.OutOrStdout(),
		json:  g.json,
	}, nil
}

// source resolves the sheet from the first argument or the configured default.
func (a *app) source(args []string) (source.Source, error) {
	input := a.cfg.Source
	if len(args) > 0 {
		input = args[0]
	}
	return source.Detect(input, source.Options{
		UseSheetsAPI: a.cfg.UseSheetsAPI,
		Columns:      a.cfg.SheetRange,
	})
}

// load fetches a snapshot. A failed load is written out in JSON mode and
// returned as the diagnostic error.
func (a *app) load(ctx context.Context, src source.Source) (model.Snapshot, error) {
	res := a.board.Load(ctx, src)
	if res.OK() {
		return res.Snapshot, nil
	}
	if a.json {
		if err := render.JSON(a.out, res); err != nil {
			return res.Snapshot, err
		}
	}
	return res.Snapshot, res.Err
}

func (a *app) terminal() render.Terminal { return render.Terminal{W: a.out} }
