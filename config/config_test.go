package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/routekit/bus"
	"github.com/c360/routekit/errors"
	"github.com/c360/routekit/identity"
	"github.com/c360/routekit/message"
)

type beat struct{}

func (b beat) AcceptUntargeted(v message.Visitor) error {
	return v.EmitUntargeted(b)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "reject", cfg.DuplicatePolicy)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Diagnostics)
	assert.False(t, cfg.Metrics)
}

func TestParse_EmptyDocumentYieldsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_FullDocument(t *testing.T) {
	doc := []byte(`
duplicate_policy: warn
diagnostics: true
metrics: true
log:
  level: debug
  format: text
`)
	cfg, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.DuplicatePolicy)
	assert.True(t, cfg.Diagnostics)
	assert.True(t, cfg.Metrics)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestParse_PartialDocumentKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("diagnostics: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Diagnostics)
	assert.Equal(t, "reject", cfg.DuplicatePolicy)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse_RejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("duplicat_policy: warn\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestParse_RejectsBadEnum(t *testing.T) {
	_, err := Parse([]byte("duplicate_policy: crash\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = Parse([]byte("log:\n  level: shout\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte(":\n  - ["))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics: true\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Metrics)
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingConfig)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "warn", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := Config{Log: LogConfig{Level: tt.level}}
		assert.Equal(t, tt.want, cfg.LogLevel(), "level %q", tt.level)
	}
}

func TestBuild_DefaultConfig(t *testing.T) {
	b, recorder := Default().Build()
	require.NotNil(t, b)
	assert.Nil(t, recorder, "metrics disabled by default")

	calls := 0
	_, err := bus.RegisterUntargeted[beat](b, func(*beat) { calls++ }, 0)
	require.NoError(t, err)
	require.NoError(t, bus.EmitUntargeted(b, beat{}))
	assert.Equal(t, 1, calls)
}

func TestBuild_WarnPolicy(t *testing.T) {
	cfg, err := Parse([]byte("duplicate_policy: warn\n"))
	require.NoError(t, err)

	b, _ := cfg.Build()
	owner := identity.New(1)

	_, err = b.Register(bus.NewUntargetedHandler[beat](func(*beat) {}, 0).WithOwner(owner))
	require.NoError(t, err)
	_, err = b.Register(bus.NewUntargetedHandler[beat](func(*beat) {}, 0).WithOwner(owner))
	assert.NoError(t, err, "warn policy tolerates the duplicate")
}

func TestBuild_MetricsEnabled(t *testing.T) {
	cfg, err := Parse([]byte("metrics: true\n"))
	require.NoError(t, err)

	b, recorder := cfg.Build()
	require.NotNil(t, recorder)
	require.NotNil(t, recorder.Registry())

	require.NoError(t, bus.EmitUntargeted(b, beat{}))
}
