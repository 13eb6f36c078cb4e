package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	genapierrors "github.com/surfacegen/genapi/internal/errors"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.Writer.ForCompilation)
	assert.True(t, cfg.Filter.ExcludeAttributes)
	assert.False(t, cfg.Filter.IncludeForwardedTypes)
	assert.Equal(t, "    ", cfg.Format.Indent)
	assert.Equal(t, 0, cfg.Log.Verbosity)
}

func TestLoad_ConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	content := `
input: widgets.yaml
output: widgets.cs
writer:
  for_compilation: false
  platform_not_supported_message: Not on this platform
filter:
  include_forwarded_types: true
  exclude_list: exclude.txt
format:
  indent: "  "
  color: true
log:
  verbosity: 2
`
	require.NoError(t, os.WriteFile("genapi.yml", []byte(content), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "widgets.yaml", cfg.Input)
	assert.Equal(t, "widgets.cs", cfg.Output)
	assert.False(t, cfg.Writer.ForCompilation)
	assert.Equal(t, "Not on this platform", cfg.Writer.PlatformNotSupportedMessage)
	assert.True(t, cfg.Filter.IncludeForwardedTypes)
	assert.True(t, cfg.Filter.ExcludeAttributes, "unset keys keep their defaults")
	assert.Equal(t, "exclude.txt", cfg.Filter.ExcludeList)
	assert.Equal(t, "  ", cfg.Format.Indent)
	assert.True(t, cfg.Format.Color)
	assert.Equal(t, 2, cfg.Log.Verbosity)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "surface.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: lib.json.gz\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lib.json.gz", cfg.Input)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var diag *genapierrors.Diagnostic
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, genapierrors.ErrReadConfig, diag.Code)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GENAPI_WRITER_FOR_COMPILATION", "false")
	t.Setenv("GENAPI_INPUT", "env.yaml")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Writer.ForCompilation)
	assert.Equal(t, "env.yaml", cfg.Input)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"indent must be whitespace", func(c *Config) { c.Format.Indent = "--" }, "format.indent"},
		{"verbosity must not be negative", func(c *Config) { c.Log.Verbosity = -1 }, "log.verbosity"},
		{"output must differ from input", func(c *Config) {
			c.Input = "lib.yaml"
			c.Output = "./lib.yaml"
		}, "output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}

			var list genapierrors.DiagnosticList
			require.ErrorAs(t, err, &list)
			require.Len(t, list, 1)
			assert.Equal(t, genapierrors.ErrInvalidConfig, list[0].Code)
			assert.Contains(t, list[0].Message, tt.wantKey)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := Default()
	cfg.Input = "lib.yaml"
	cfg.Filter.IncludeInternals = true
	require.NoError(t, Write("genapi.yml", cfg))

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "genapi.yaml"), nil, 0644))
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindProjectRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)

	_, err = FindProjectRoot(t.TempDir())
	assert.Error(t, err)
}
