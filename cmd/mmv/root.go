package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mmv/internal/config"
	"mmv/internal/journal"
	"mmv/internal/logging"
	"mmv/internal/mmverr"
	"mmv/internal/orchestrator"
	"mmv/internal/output"
)

// app holds the command tree and the state shared by its commands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	fs     afero.Fs
	root   *cobra.Command

	cfg *config.Configuration
	out *output.Output

	configPath         string
	sourcePattern      string
	destinationPattern string
	force              bool
	dryRun             bool
	noJournal          bool
	verbosity          int
	color              string
	logFile            string
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{
		stdout: stdout,
		stderr: stderr,
		fs:     afero.NewOsFs(),
	}
	a.root = a.newRootCmd()
	a.root.AddCommand(
		a.newUndoCmd(),
		a.newConfigCmd(),
		a.newTopicsCmd(),
		newVersionCmd(),
	)
	return a
}

func (a *app) execute(args []string) error {
	a.root.SetArgs(args)
	return a.root.Execute()
}

// output returns the configured output, or a plain one when the command
// failed before configuration was loaded.
func (a *app) output() *output.Output {
	if a.out != nil {
		return a.out
	}
	return output.New(output.Config{
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		IsTTY:     output.IsTerminal(a.stderr),
	})
}

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mmv SOURCE_PATTERN DESTINATION_PATTERN",
		Short: "Move or rename many files at once using wildcard patterns",
		Long: `mmv moves every file matching a wildcard source pattern to a name built
from a destination pattern. Each * in the source binds the text it matched;
#1, #2, ... in the destination insert those texts in order.

Wildcards and placeholders are only allowed in the file name, not in the
directories leading to it. Run "mmv topics patterns" for details.`,
		Example: `  mmv 'a_*_b.txt' 'c_#1_d.txt'
  mmv --source-pattern 'file_*-v*.txt' --destination-pattern 'renamed_#1_version_#2.txt'
  mmv --dry-run 'IMG_*.jpeg' 'photos/img-#1.jpg'
  mmv undo`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:              cobra.MaximumNArgs(2),
		PersistentPreRunE: a.setup,
		RunE:              a.runMove,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.Flags().StringVar(&a.sourcePattern, "source-pattern", "", "Files to move; * in the file name matches any text")
	cmd.Flags().StringVar(&a.destinationPattern, "destination-pattern", "", "New path of each file; #N inserts the text matched by the Nth *")

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&a.force, "force", "f", false, "Overwrite existing destination files")
	pf.BoolVar(&a.dryRun, "dry-run", false, "Show what would be moved without moving anything")
	pf.CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	pf.StringVar(&a.configPath, "config", "", "Config file (default is $XDG_CONFIG_HOME/mmv/config.toml)")
	pf.BoolVar(&a.noJournal, "no-journal", false, "Do not record this run in the journal")
	pf.StringVar(&a.color, "color", config.ColorAuto, "Color output: auto, always or never")
	pf.StringVar(&a.logFile, "log-file", "", "Also append logs to this file")

	return cmd
}

// setup loads the configuration and initializes logging and output. Only
// flags given on the command line override the configuration.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	overrides := make(map[string]interface{})
	if flags.Changed("force") {
		overrides["force"] = a.force
	}
	if flags.Changed("dry-run") {
		overrides["dry_run"] = a.dryRun
	}
	if flags.Changed("verbose") {
		overrides["verbosity"] = a.verbosity
	}
	if flags.Changed("no-journal") {
		overrides["journal.enabled"] = !a.noJournal
	}
	if flags.Changed("color") {
		overrides["output.color"] = a.color
	}
	if flags.Changed("log-file") {
		overrides["log_file"] = a.logFile
	}

	cfg, err := config.Load(config.LoadOptions{Path: a.configPath, Flags: overrides})
	if err != nil {
		return mmverr.Wrap(err, mmverr.ErrConfig, "failed to load configuration")
	}
	a.cfg = cfg

	logging.Setup(cfg.Verbosity, a.stderr, cfg.LogFile)
	a.out = output.New(output.Config{
		Verbose:   cfg.Verbosity > 0,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		IsTTY:     output.IsTerminal(a.stdout),
		Color:     cfg.Output.Color,
	})

	log.Debug().Str("command", cmd.Name()).Msg("Command started")
	return nil
}

func (a *app) runMove(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && a.sourcePattern == "" && a.destinationPattern == "" {
		return cmd.Help()
	}

	src, dst, err := a.patterns(args)
	if err != nil {
		return err
	}

	logger := logging.GetLogger("cmd.move")
	logger.Info().
		Str("source", src).
		Str("destination", dst).
		Bool("force", a.cfg.Force).
		Bool("dryRun", a.cfg.DryRun).
		Msg("Starting move")

	opts := []orchestrator.Option{orchestrator.WithReporter(a.out)}
	if a.cfg.Journal.Enabled && !a.cfg.DryRun {
		dir := a.cfg.Journal.Directory
		opts = append(opts, orchestrator.WithJournalOpener(func() (*journal.Writer, error) {
			return journal.Open(a.fs, dir)
		}))
	}

	summary, err := orchestrator.New(a.fs, opts...).Run(orchestrator.Options{
		SourcePattern:      src,
		DestinationPattern: dst,
		Force:              a.cfg.Force,
		DryRun:             a.cfg.DryRun,
	})
	if a.out.IsVerbose() {
		a.reportStats(summary)
	}
	return err
}

// patterns resolves the source and destination patterns from flags or
// positional arguments.
func (a *app) patterns(args []string) (string, string, error) {
	src, dst := a.sourcePattern, a.destinationPattern
	if len(args) > 0 {
		if src != "" {
			return "", "", fmt.Errorf("source pattern given both as --source-pattern and as an argument")
		}
		src = args[0]
	}
	if len(args) > 1 {
		if dst != "" {
			return "", "", fmt.Errorf("destination pattern given both as --destination-pattern and as an argument")
		}
		dst = args[1]
	}
	if src == "" || dst == "" {
		return "", "", fmt.Errorf("both a source pattern and a destination pattern are required")
	}
	return src, dst, nil
}

func (a *app) reportStats(summary *orchestrator.Summary) {
	if summary == nil {
		return
	}
	a.out.Hint("%s", summary.String())

	stats := orchestrator.GenerateStats(summary, a.cfg.Verbosity > 1)
	dirs := make([]string, 0, len(stats.ByDirectory))
	for dir := range stats.ByDirectory {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		a.out.Hint("  %s %d", dir, stats.ByDirectory[dir])
	}
}
