package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredentials_FromEnvironment(t *testing.T) {
	t.Setenv("EMAIL", "lector@example.org")
	t.Setenv("PASSWORD", "secreto")

	c, err := LoadCredentials("")
	require.NoError(t, err)

	assert.Equal(t, "lector@example.org", c.Email)
	assert.Equal(t, "secreto", c.Password)
	assert.NotContains(t, c.String(), "secreto")
}

func TestLoadCredentials_Missing(t *testing.T) {
	t.Setenv("EMAIL", "")
	t.Setenv("PASSWORD", "")

	_, err := LoadCredentials(filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoadCredentials_OnlyEmail(t *testing.T) {
	t.Setenv("EMAIL", "lector@example.org")
	t.Setenv("PASSWORD", "")

	_, err := LoadCredentials("")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoadCredentials_DotenvDoesNotOverride(t *testing.T) {
	t.Setenv("EMAIL", "ya@example.org")
	t.Setenv("PASSWORD", "")
	require.NoError(t, os.Unsetenv("PASSWORD"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EMAIL=otro@example.org\nPASSWORD=desde-archivo\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("PASSWORD") })

	c, err := LoadCredentials(path)
	require.NoError(t, err)

	assert.Equal(t, "ya@example.org", c.Email)
	assert.Equal(t, "desde-archivo", c.Password)
}
