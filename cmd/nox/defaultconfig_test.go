package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvil/nox"
	main "github.com/mvil/nox/cmd/nox"
	"github.com/mvil/nox/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the default configuration", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}

		err := (&main.DefaultConfigCmd{}).Run(&main.Dependencies{
			Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{},
		})

		require.NoError(t, err)
		assert.Equal(t, toml.DefaultConfig(), stdout.String())
	})

	t.Run("writes the configuration file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nox", "nox.toml")
		deps := &main.Dependencies{
			Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{},
			ConfigPath: path,
		}

		require.NoError(t, (&main.DefaultConfigCmd{Write: true}).Run(deps))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, toml.DefaultConfig(), string(data))
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nox.toml")
		require.NoError(t, os.WriteFile(path, []byte("max_results = 5\n"), 0o644))
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr,
			ConfigPath: path,
		}

		err := (&main.DefaultConfigCmd{Write: true}).Run(deps)
		assert.Equal(t, nox.EINVALID, nox.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--force")

		require.NoError(t, (&main.DefaultConfigCmd{Write: true, Force: true}).Run(deps))
	})
}
