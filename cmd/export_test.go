package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLauncher(t *testing.T) *int {
	t.Helper()

	calls := 0
	orig := launchBrowser
	launchBrowser = func(context.Context, browser.Options) (browserSession, error) {
		calls++
		return nil, errors.New("browser not available in tests")
	}
	t.Cleanup(func() { launchBrowser = orig })

	return &calls
}

func isolate(t *testing.T) string {
	t.Helper()

	t.Setenv("NOVELD_CONFIG_HOME", t.TempDir())
	origDotenv := dotenvPath
	dotenvPath = filepath.Join(t.TempDir(), ".env")
	t.Cleanup(func() { dotenvPath = origDotenv })

	out := filepath.Join(t.TempDir(), "epubs")
	origOutput, origIgnore := flagOutput, flagIgnoreConfig
	flagOutput, flagIgnoreConfig = out, true
	t.Cleanup(func() { flagOutput, flagIgnoreConfig = origOutput, origIgnore })

	return out
}

func TestExport_MissingCredentialsNeverLaunches(t *testing.T) {
	out := isolate(t)
	calls := stubLauncher(t)
	t.Setenv("EMAIL", "")
	t.Setenv("PASSWORD", "")

	err := runExport(&cobra.Command{}, nil)

	require.ErrorIs(t, err, config.ErrMissingCredentials)
	assert.Zero(t, *calls)
	assert.NoDirExists(t, out)
	assert.Equal(t, "Error: Las credenciales de inicio de sesión no están configuradas.", errorMessage(err))
}

func TestExport_RemovesOutputItCreatedWhenNothingWasWritten(t *testing.T) {
	out := isolate(t)
	calls := stubLauncher(t)
	t.Setenv("EMAIL", "lector@example.org")
	t.Setenv("PASSWORD", "secreto")

	err := runExport(&cobra.Command{}, nil)

	assert.ErrorContains(t, err, "browser not available")
	assert.Equal(t, 1, *calls)
	assert.NoDirExists(t, out)
}

func TestExport_KeepsExistingOutputAndReleasesLock(t *testing.T) {
	out := isolate(t)
	require.NoError(t, os.MkdirAll(out, 0755))
	stubLauncher(t)
	t.Setenv("EMAIL", "lector@example.org")
	t.Setenv("PASSWORD", "secreto")

	err := runExport(&cobra.Command{}, nil)

	assert.ErrorContains(t, err, "browser not available")
	assert.DirExists(t, out)
	assert.NoFileExists(t, filepath.Join(out, ".noveld.lock"))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Error: boom", errorMessage(errors.New("boom")))
}
