package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mmv/internal/config"
	"mmv/internal/journal"
	"mmv/internal/logging"
	"mmv/internal/relocator"
	"mmv/internal/topics"
)

func (a *app) newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Move the files of the last run back",
		Long: `undo reads the journal and moves every file of the most recent run back to
where it came from, newest first. Existing files are never overwritten; the
first conflict stops the undo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.undo")
			dir := a.cfg.Journal.Directory
			reader := journal.NewReader(a.fs, dir)

			if a.cfg.DryRun {
				run, restores, err := journal.Preview(reader)
				if err != nil {
					return err
				}
				for _, r := range restores {
					a.out.Planned(r.SourcePath, r.DestinationPath)
				}
				a.out.Verbose("would undo run %s", run.ID)
				return nil
			}

			w, err := journal.Open(a.fs, dir)
			if err != nil {
				return err
			}
			defer w.Close()

			result, err := journal.Undo(reader, w, relocator.New(a.fs))
			if result != nil {
				for _, r := range result.Restored {
					a.out.Move(r.SourcePath, r.DestinationPath)
				}
			}
			if err != nil {
				return err
			}

			logger.Info().
				Str("target", string(result.Target)).
				Str("undoRun", string(result.UndoRun)).
				Int("restored", len(result.Restored)).
				Msg("Undo complete")
			if a.out.IsVerbose() {
				a.out.Hint("Restored %d files from run %s", len(result.Restored), result.Target)
			}
			return nil
		},
	}
}

func (a *app) newConfigCmd() *cobra.Command {
	var check, showPath bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `config prints the configuration mmv would use, merged from the defaults,
the config file, MMV_* environment variables and flags, as TOML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				fmt.Fprintln(cmd.OutOrStdout(), config.DefaultPath())
				return nil
			}

			if check {
				result := config.ValidateConfig(a.cfg)
				for _, w := range result.Warnings {
					a.out.Hint("warning: %s: %s", w.Field, w.Message)
				}
				for _, e := range result.Errors {
					a.out.Error("%s: %s", e.Field, e.Message)
				}
				if !result.Valid {
					return fmt.Errorf("configuration has %d error(s)", len(result.Errors))
				}
				a.out.Info("configuration OK")
				return nil
			}

			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check that the configured paths are usable")
	cmd.Flags().BoolVar(&showPath, "path", false, "Print the default config file path")
	return cmd
}

func (a *app) newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "topics [name]",
		Short:     "Show help topics",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: topics.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, name := range topics.Names() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			text, err := topics.Render(args[0], a.out.IsTTY())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mmv version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
		},
	}
}
