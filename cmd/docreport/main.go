package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docreport/internal/config"
	"github.com/dgallion1/docreport/internal/logging"
	"github.com/dgallion1/docreport/internal/outline"
	"github.com/dgallion1/docreport/internal/render"
	"github.com/dgallion1/docreport/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// fatalError is a failure that prevents any document from being produced.
// It carries a remediation hint for the user.
type fatalError struct {
	err  error
	hint string
}

func (e *fatalError) Error() string {
	if e.hint == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%v. %s", e.err, e.hint)
}

func (e *fatalError) Unwrap() error { return e.err }

func fatal(err error, hint string) error {
	return &fatalError{err: err, hint: hint}
}

type options struct {
	configPath string
	verbose    bool
	v          *viper.Viper
}

// flagKeys maps persistent flags to their config keys.
var flagKeys = map[string]string{
	"dir":         "dir",
	"output":      "output",
	"template":    "template",
	"image-width": "image_width",
	"log-file":    "log_file",
}

// bindFlags binds each flag in keys to its viper key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := fs.Lookup(flag)
		if f == nil {
			return fmt.Errorf("bind %s: no flag --%s", key, flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &options{v: viper.New()}

	root := &cobra.Command{
		Use:   "docreport",
		Short: "Build the DSA Mastery project report as a .docx",
		Long: `docreport assembles the DSA Mastery project report from a fixed template.

Code listings are read from components/SortingVisualizer.jsx and app/page.js,
screenshots from public/report_screenshots/. Anything missing is replaced by a
placeholder paragraph in the document; the report is always written.

Run without a subcommand to build the report in the current directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ./docreport.yaml if present)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pf.String("dir", ".", "working directory containing the project sources")
	pf.String("output", "", "output .docx (default from template, relative to --dir)")
	pf.String("template", "", "report template YAML (default built-in)")
	pf.Float64("image-width", 0, "screenshot width in inches (default from template)")
	pf.String("log-file", "", "also write logs to this file, rotated by size")
	if err := bindFlags(opts.v, pf, flagKeys); err != nil {
		panic(err)
	}

	root.AddCommand(&cobra.Command{
		Use:   "build",
		Short: "Build the report (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "inspect [file.docx]",
		Short: "Print the heading outline of a .docx",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, args)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "template",
		Short: "Print the built-in report template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(outline.DefaultYAML())
			return err
		},
	})

	return root
}

// setup loads configuration and the logger shared by the commands.
func setup(cmd *cobra.Command, opts *options) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.v, opts.configPath)
	if err != nil {
		return cfg, nil, fatal(err, "Check the config file and DOCREPORT_* variables")
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, fatal(err, "Fix the configuration and run again")
	}

	log, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return cfg, nil, fatal(err, "Check --log-file and DOCREPORT_LOG_LEVEL")
	}
	return cfg, log, nil
}

func runBuild(cmd *cobra.Command, opts *options) error {
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer log.Sync()

	renderer := render.New(log)
	if err := renderer.SelfCheck(); err != nil {
		return fatal(fmt.Errorf("docx backend unavailable: %w", err),
			"Reinstall docreport with 'go install github.com/dgallion1/docreport/cmd/docreport@latest'")
	}

	tmpl := outline.Default()
	if cfg.Template != "" {
		tmpl, err = outline.Load(cfg.Template)
		if err != nil {
			return fatal(err, "Run 'docreport template' for a valid starting point")
		}
	}
	if cfg.ImageWidth > 0 {
		tmpl.ImageWidth = cfg.ImageWidth
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("building report", zap.String("dir", cfg.Dir), zap.Int("blocks", len(tmpl.Blocks)))
	res, err := report.NewBuilder(cfg.Dir, tmpl, log).Build(ctx)
	if err != nil {
		return err
	}

	out := cfg.OutputPath(tmpl.Output)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("build cancelled: %w", err)
	}
	if err := renderer.WriteFile(res.Doc, out); err != nil {
		return fatal(err, "Check that the output directory exists and is writable")
	}

	log.Info("report written",
		zap.String("output", out),
		zap.Int("blocks", len(res.Doc.Blocks)),
		zap.Int("placeholders", res.Placeholders()))
	fmt.Fprintf(cmd.OutOrStdout(), "Document created successfully: %s\n", out)
	return nil
}

func main() {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		var fe *fatalError
		if errors.As(err, &fe) {
			fmt.Fprintln(os.Stderr, fe.Error())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
