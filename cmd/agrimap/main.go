// Command agrimap exports and summarizes the agrifood business dataset
// without starting the web server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/agrimap/internal/config"
	"github.com/JonMunkholm/agrimap/internal/core"
	"github.com/JonMunkholm/agrimap/internal/dataset"
	"github.com/JonMunkholm/agrimap/internal/export"
	"github.com/JonMunkholm/agrimap/internal/logging"
	"github.com/JonMunkholm/agrimap/internal/render"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

// viewOptions selects the filtered view, as the dashboard controls would.
type viewOptions struct {
	source  string
	exclude []string
	search  string
	sort    string
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err, followed by its user-facing message and code when
// err matches a known pattern.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, core.FormatUserError(err))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agrimap",
		Short:         "Montreal agrifood business data tools",
		Long:          "Load the Montreal agrifood business dataset, filter it like the dashboard does, and export or summarize the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExportCmd(), newStatsCmd())
	return root
}

func addViewFlags(cmd *cobra.Command, opts *viewOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.source, "source", "", "CSV URL or file path (default: configured source)")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "category to hide; repeatable")
	f.StringVar(&opts.search, "search", "", "case-insensitive search over name, address and borough")
	f.StringVar(&opts.sort, "sort", "", "column to sort by")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
}

func newExportCmd() *cobra.Command {
	var opts viewOptions
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered businesses as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, _, err := buildView(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if out == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), view)
			}
			if err := writeFile(out, view); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d businesses to %s\n", view.Len(), out)
			return nil
		},
	}
	addViewFlags(cmd, &opts)
	cmd.Flags().StringVarP(&out, "out", "o", export.FileName, `output file, "-" for stdout`)
	return cmd
}

func newStatsCmd() *cobra.Command {
	var opts viewOptions

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dataset and filtered totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, tag, err := buildView(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			panel := render.NewStatsPanel(tag)
			panel.RenderStats(view)
			st := panel.Stats()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total businesses:       %d\n", st.Total)
			fmt.Fprintf(w, "Visible:                %d\n", st.Visible)
			fmt.Fprintf(w, "Annual waste (tonnes):  %s\n", st.TotalWasteDisplay)
			return nil
		},
	}
	addViewFlags(cmd, &opts)
	return cmd
}

// buildView loads the dataset and applies the options through a controller.
// Logs go to logw so stdout stays clean for CSV output. The returned tag is
// the configured display locale.
func buildView(ctx context.Context, opts viewOptions, logw io.Writer) (core.View, language.Tag, error) {
	cfg, err := config.Load()
	if err != nil {
		return core.View{}, language.Und, err
	}
	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	logger := logging.New(logw, level, cfg.Logging.Format)

	src, closeSource := dataset.Open(ctx, cfg, opts.source)
	ds, name := dataset.LoadWithFallback(ctx, src, logger)
	closeSource()
	logger.Debug("dataset ready", "source", name, "records", len(ds.Records))

	store := core.NewRecordStore(ds)
	tag := core.ParseLocale(cfg.Data.Locale)
	engine := core.NewEngine(store, core.NewSorter(tag))
	ctrl := core.NewController(engine, core.Renderers{}, logger)

	for _, c := range opts.exclude {
		// Excluding a category the dataset lacks must not switch it on.
		if !ctrl.State().Filter.Active.Has(c) {
			continue
		}
		if err := ctrl.Dispatch(core.ToggleCategory{Category: c}); err != nil {
			return core.View{}, tag, err
		}
	}
	if opts.search != "" {
		if err := ctrl.Dispatch(core.SetSearch{Term: opts.search}); err != nil {
			return core.View{}, tag, err
		}
	}
	if opts.sort != "" {
		if err := ctrl.Dispatch(core.SortBy{Field: opts.sort}); err != nil {
			return core.View{}, tag, err
		}
	}
	return ctrl.View(), tag, nil
}

func writeFile(path string, view core.View) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return export.WriteCSV(f, view)
}
