// Package orchestrator coordinates the mass move workflow for mmv.
package orchestrator

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"mmv/internal/journal"
	"mmv/internal/logging"
	"mmv/internal/matcher"
	"mmv/internal/mmverr"
	"mmv/internal/relocator"
	"mmv/internal/renderer"
	"mmv/internal/scanner"
)

// Options describes one mass move.
type Options struct {
	SourcePattern      string
	DestinationPattern string
	Force              bool // overwrite existing destinations
	DryRun             bool // plan and report without touching the filesystem
}

// Move is a source and the destination it was (or would be) moved to.
type Move struct {
	Source      string
	Destination string
}

// Reporter receives one record per move. *output.Output satisfies it.
type Reporter interface {
	Move(src, dst string)
	Planned(src, dst string)
}

// progressReporter is implemented by reporters that can show progress.
type progressReporter interface {
	StartProgress(total int)
	UpdateProgress(current int, message string)
	EndProgress()
}

// Lister enumerates the files matching a source pattern.
type Lister func(fsys afero.Fs, sourcePattern string) ([]scanner.FileEntry, error)

// JournalOpener opens the journal for a run that is about to move files.
type JournalOpener func() (*journal.Writer, error)

// Orchestrator runs mass moves against a filesystem.
type Orchestrator struct {
	fs       afero.Fs
	mover    *relocator.Relocator
	list     Lister
	reporter Reporter
	journal  *journal.Writer
	open     JournalOpener
	owned    bool
	logger   zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter sets where move records go. Without one nothing is printed.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) {
		o.reporter = r
	}
}

// WithJournal records every run and move in w.
func WithJournal(w *journal.Writer) Option {
	return func(o *Orchestrator) {
		o.journal = w
	}
}

// WithJournalOpener records runs in a journal opened by open. The journal is
// only opened once discovery has found files to move, and is closed when the
// run ends.
func WithJournalOpener(open JournalOpener) Option {
	return func(o *Orchestrator) {
		o.open = open
	}
}

// WithLister replaces the scanner used for discovery.
func WithLister(l Lister) Option {
	return func(o *Orchestrator) {
		o.list = l
	}
}

// New creates an Orchestrator operating on fsys.
func New(fsys afero.Fs, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fs:     fsys,
		mover:  relocator.New(fsys),
		list:   scanner.List,
		logger: logging.GetLogger("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run validates both patterns, discovers the matching files and moves each
// of them in lexicographic order. The first failure aborts the run and is
// returned unchanged; files moved before it stay where they are. The
// returned Summary is never nil.
func (o *Orchestrator) Run(opts Options) (*Summary, error) {
	start := time.Now()
	done := logging.Timed(o.logger, "run")
	defer done()
	defer o.releaseJournal()

	summary := &Summary{FailedIndex: -1, DryRun: opts.DryRun}
	finish := func(err error) (*Summary, error) {
		summary.Duration = time.Since(start)
		if err != nil {
			summary.State = Aborted
			summary.ErrCode = mmverr.CodeOf(err)
			return summary, err
		}
		if opts.DryRun {
			summary.State = Planned
		} else {
			summary.State = AllMoved
		}
		return summary, nil
	}

	if opts.DryRun {
		plan, err := o.Plan(opts)
		summary.Moves = plan
		if err != nil {
			if mmverr.IsCode(err, mmverr.ErrMatch) {
				summary.FailedIndex = len(plan)
			}
			return finish(err)
		}
		for _, mv := range plan {
			o.reportPlanned(mv)
		}
		return finish(nil)
	}

	m, err := o.prepare(opts)
	if err != nil {
		return finish(err)
	}

	paths, err := o.discover(opts.SourcePattern)
	if err != nil {
		return finish(err)
	}

	if err := o.startJournal(opts); err != nil {
		return finish(err)
	}

	progress, _ := o.reporter.(progressReporter)
	if progress != nil {
		progress.StartProgress(len(paths))
		defer progress.EndProgress()
	}

	for i, path := range paths {
		if progress != nil {
			progress.UpdateProgress(i+1, "")
		}
		mv, err := o.moveOne(m, opts, path)
		if mv.Source != "" {
			summary.Moves = append(summary.Moves, mv)
		}
		if err != nil {
			summary.FailedIndex = i
			o.logger.Error().Err(err).Fields(mmverr.DetailsOf(err)).Int("index", i).Str("path", path).Msg("Run aborted")
			o.endJournal(err)
			return finish(err)
		}
	}

	o.endJournal(nil)
	o.logger.Info().Int("moved", len(summary.Moves)).Msg("Run complete")
	return finish(nil)
}

// Plan computes every move Run would perform without touching the
// filesystem beyond listing the source directory. On a MATCH error the moves
// planned before the failing path are returned with it.
func (o *Orchestrator) Plan(opts Options) ([]Move, error) {
	m, err := o.prepare(opts)
	if err != nil {
		return nil, err
	}

	paths, err := o.discover(opts.SourcePattern)
	if err != nil {
		return nil, err
	}

	plan := make([]Move, 0, len(paths))
	for _, path := range paths {
		dst, err := o.destinationFor(m, opts.DestinationPattern, path)
		if err != nil {
			return plan, err
		}
		plan = append(plan, Move{Source: path, Destination: dst})
	}
	return plan, nil
}

// prepare checks both patterns before any filesystem access.
func (o *Orchestrator) prepare(opts Options) (*matcher.Matcher, error) {
	m, err := matcher.Compile(opts.SourcePattern)
	if err != nil {
		return nil, err
	}
	if err := matcher.Validate(opts.DestinationPattern, matcher.Placeholder); err != nil {
		return nil, err
	}

	o.logger.Debug().
		Str("pattern", m.Source()).
		Str("regex", m.Expr()).
		Int("wildcards", m.Wildcards()).
		Msg("Compiled source pattern")

	if unresolved := renderer.Unresolved(opts.DestinationPattern, m.Wildcards()); len(unresolved) > 0 {
		o.logger.Warn().
			Ints("placeholders", unresolved).
			Int("wildcards", m.Wildcards()).
			Str("destination", opts.DestinationPattern).
			Msg("Destination references placeholders the source pattern cannot fill; they are kept verbatim")
	}
	return m, nil
}

func (o *Orchestrator) discover(sourcePattern string) ([]string, error) {
	files, err := o.list(o.fs, sourcePattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, mmverr.Newf(mmverr.ErrNotFound, "no files match the pattern %s", sourcePattern).
			WithDetail("pattern", sourcePattern)
	}

	paths := scanner.Paths(files)
	sort.Strings(paths)
	o.logger.Debug().Int("count", len(paths)).Str("pattern", sourcePattern).Msg("Discovered files")
	return paths, nil
}

func (o *Orchestrator) destinationFor(m *matcher.Matcher, destination, path string) (string, error) {
	result, err := m.Match(path)
	if err != nil {
		return "", err
	}
	return renderer.Render(destination, result.Captures)
}

func (o *Orchestrator) moveOne(m *matcher.Matcher, opts Options, path string) (Move, error) {
	dst, err := o.destinationFor(m, opts.DestinationPattern, path)
	if err != nil {
		return Move{}, err
	}

	strategy, err := o.mover.Move(path, dst, opts.Force)
	if err != nil {
		return Move{}, err
	}
	o.logger.Debug().
		Str("source", path).
		Str("destination", dst).
		Str("strategy", string(strategy)).
		Msg("Moved file")

	mv := Move{Source: path, Destination: dst}
	if o.reporter != nil {
		o.reporter.Move(path, dst)
	}
	if o.journal != nil {
		// The file has already moved; report it even if the journal fails.
		if err := o.journal.RecordMove(path, dst); err != nil {
			return mv, err
		}
	}
	return mv, nil
}

func (o *Orchestrator) reportPlanned(mv Move) {
	if o.reporter != nil {
		o.reporter.Planned(mv.Source, mv.Destination)
	}
}

func (o *Orchestrator) startJournal(opts Options) error {
	if o.journal == nil {
		if o.open == nil {
			return nil
		}
		w, err := o.open()
		if err != nil {
			return err
		}
		o.journal, o.owned = w, true
	}
	runID, err := o.journal.StartRun(journal.RunTypeMove, map[string]string{
		journal.MetaSourcePattern: opts.SourcePattern,
		journal.MetaDestPattern:   opts.DestinationPattern,
	})
	if err != nil {
		return err
	}
	o.logger.Debug().Str("runId", string(runID)).Str("journal", o.journal.Path()).Msg("Journal run started")
	return nil
}

func (o *Orchestrator) endJournal(runErr error) {
	if o.journal == nil {
		return
	}
	if err := o.journal.EndRun(runErr); err != nil {
		o.logger.Warn().Err(err).Msg("Failed to close run in journal")
	}
}

// releaseJournal closes a journal opened by the run itself.
func (o *Orchestrator) releaseJournal() {
	if !o.owned {
		return
	}
	if err := o.journal.Close(); err != nil {
		o.logger.Warn().Err(err).Msg("Failed to close journal")
	}
	o.journal, o.owned = nil, false
}
