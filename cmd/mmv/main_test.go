package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmv/internal/journal"
	"mmv/internal/mmverr"
)

// testEnv points the XDG directories at a temp dir and returns a work dir
// with the given files.
func testEnv(t *testing.T, files ...string) (home, work string) {
	t.Helper()
	home = t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	xdg.Reload()

	work = filepath.Join(home, "work")
	require.NoError(t, os.MkdirAll(work, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(work, f), []byte(f), 0644))
	}
	return home, work
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = newApp(&out, &errOut).execute(args)
	return out.String(), errOut.String(), err
}

func TestMoveWithPositionalPatterns(t *testing.T) {
	_, work := testEnv(t, "a_one_b.txt", "a_two_b.txt")

	stdout, _, err := run(t, filepath.Join(work, "a_*_b.txt"), filepath.Join(work, "c_#1_d.txt"))
	require.NoError(t, err)

	assert.Equal(t,
		filepath.Join(work, "a_one_b.txt")+" -> "+filepath.Join(work, "c_one_d.txt")+"\n"+
			filepath.Join(work, "a_two_b.txt")+" -> "+filepath.Join(work, "c_two_d.txt")+"\n",
		stdout)
	assert.FileExists(t, filepath.Join(work, "c_one_d.txt"))
	assert.FileExists(t, filepath.Join(work, "c_two_d.txt"))
}

func TestMoveWithFlagsRecordsJournal(t *testing.T) {
	home, work := testEnv(t, "file_alpha-v2.txt")

	_, _, err := run(t,
		"--source-pattern", filepath.Join(work, "file_*-v*.txt"),
		"--destination-pattern", filepath.Join(work, "renamed_#1_version_#2.txt"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(work, "renamed_alpha_version_2.txt"))

	runs, err := journal.NewReader(afero.NewOsFs(), filepath.Join(home, "state", "mmv")).Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	moves := runs[0].Moves()
	require.Len(t, moves, 1)
	assert.Equal(t, filepath.Join(work, "file_alpha-v2.txt"), moves[0].SourcePath)
}

func TestNoJournalFlag(t *testing.T) {
	home, work := testEnv(t, "a_1.txt")

	_, _, err := run(t, "--no-journal", filepath.Join(work, "a_*.txt"), filepath.Join(work, "b_#1.txt"))
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(home, "state", "mmv", journal.FileName))
}

func TestUndoRestoresLastRun(t *testing.T) {
	_, work := testEnv(t, "a_1.txt", "a_2.txt")

	_, _, err := run(t, filepath.Join(work, "a_*.txt"), filepath.Join(work, "b_#1.txt"))
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(work, "a_1.txt"))

	preview, _, err := run(t, "undo", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, preview, "would move: "+filepath.Join(work, "b_2.txt")+" -> "+filepath.Join(work, "a_2.txt"))
	assert.FileExists(t, filepath.Join(work, "b_2.txt"))

	stdout, _, err := run(t, "undo")
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join(work, "b_2.txt")+" -> "+filepath.Join(work, "a_2.txt")+"\n"+
			filepath.Join(work, "b_1.txt")+" -> "+filepath.Join(work, "a_1.txt")+"\n",
		stdout)
	assert.FileExists(t, filepath.Join(work, "a_1.txt"))
	assert.FileExists(t, filepath.Join(work, "a_2.txt"))

	_, _, err = run(t, "undo")
	require.Error(t, err)
	assert.True(t, mmverr.IsCode(err, mmverr.ErrNotFound))
}

func TestDryRunMovesNothing(t *testing.T) {
	home, work := testEnv(t, "a_1.txt")

	stdout, _, err := run(t, "--dry-run", filepath.Join(work, "a_*.txt"), filepath.Join(work, "b_#1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "would move: "+filepath.Join(work, "a_1.txt")+" -> "+filepath.Join(work, "b_1.txt")+"\n", stdout)
	assert.FileExists(t, filepath.Join(work, "a_1.txt"))
	assert.NoFileExists(t, filepath.Join(home, "state", "mmv", journal.FileName))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args      func(work string) []string
		code      mmverr.ErrorCode
		journaled bool
	}{
		{
			name: "no match",
			args: func(work string) []string {
				return []string{filepath.Join(work, "x_*.txt"), filepath.Join(work, "y_#1.txt")}
			},
			code: mmverr.ErrNotFound,
		},
		{
			name: "wildcard in directory",
			args: func(work string) []string {
				return []string{filepath.Join(work, "*", "a_*.txt"), filepath.Join(work, "y_#1.txt")}
			},
			code: mmverr.ErrPath,
		},
		{
			name: "destination exists",
			args: func(work string) []string {
				return []string{filepath.Join(work, "a_*.txt"), filepath.Join(work, "taken.txt")}
			},
			code:      mmverr.ErrFileExists,
			journaled: true,
		},
		{
			name: "missing config file",
			args: func(work string) []string {
				return []string{"--config", filepath.Join(work, "nope.toml"), "a", "b"}
			},
			code: mmverr.ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, work := testEnv(t, "a_1.txt", "taken.txt")
			_, _, err := run(t, tt.args(work)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, mmverr.CodeOf(err))

			journalDir := filepath.Join(home, "state", "mmv")
			if tt.journaled {
				assert.FileExists(t, filepath.Join(journalDir, journal.FileName))
			} else {
				assert.NoDirExists(t, journalDir)
			}
		})
	}
}

func TestForceFromEnvironment(t *testing.T) {
	_, work := testEnv(t, "a_1.txt", "b_1.txt")
	t.Setenv("MMV_FORCE", "true")

	_, _, err := run(t, filepath.Join(work, "a_*.txt"), filepath.Join(work, "b_#1.txt"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(work, "b_1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a_1.txt", string(data))
}

func TestPatternsGivenTwice(t *testing.T) {
	_, work := testEnv(t)

	_, _, err := run(t, "--source-pattern", "a_*.txt", filepath.Join(work, "a_*.txt"), "b_#1.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source pattern given both")
}

func TestMissingDestination(t *testing.T) {
	testEnv(t)

	_, _, err := run(t, "--source-pattern", "a_*.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination pattern")
}

func TestConfigCommand(t *testing.T) {
	home, _ := testEnv(t)

	stdout, _, err := run(t, "config", "--force")
	require.NoError(t, err)
	assert.Contains(t, stdout, "force = true")
	assert.Contains(t, stdout, "[journal]")

	stdout, _, err = run(t, "config", "--path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config", "mmv", "config.toml")+"\n", stdout)

	stdout, stderr, err := run(t, "config", "--check")
	require.NoError(t, err)
	assert.Equal(t, "configuration OK\n", stdout)
	assert.Contains(t, stderr, "will be created")
}

func TestTopicsCommand(t *testing.T) {
	testEnv(t)

	stdout, _, err := run(t, "topics")
	require.NoError(t, err)
	assert.Equal(t, "journal\npatterns\n", stdout)

	stdout, _, err = run(t, "topics", "patterns")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Patterns")

	_, _, err = run(t, "topics", "unknown")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	testEnv(t)

	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "mmv version dev")
}
