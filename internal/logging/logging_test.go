package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenWritesLineOrientedLog(t *testing.T) {
	dir := t.TempDir()

	sink, err := Open(Config{Dir: dir, File: "benchmark_1.24.3.log"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "benchmark_1.24.3.log"), sink.Path)

	sink.Logger.Info("Starting CPU benchmark...")
	sink.Logger.Error("malformed input", zap.String("workload", "document-parse"))
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(sink.Path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	fields := strings.Split(lines[0], "\t")
	require.GreaterOrEqual(t, len(fields), 3)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T`, fields[0])
	assert.Equal(t, "INFO", fields[1])
	assert.Equal(t, "Starting CPU benchmark...", fields[2])

	assert.Contains(t, lines[1], "ERROR\tmalformed input")
	assert.Contains(t, lines[1], `"workload": "document-parse"`)
}

func TestOpenAppends(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		sink, err := Open(Config{Dir: dir, File: "run.log"})
		require.NoError(t, err)
		sink.Logger.Info("hello")
		require.NoError(t, sink.Close())
	}

	data, err := os.ReadFile(filepath.Join(dir, "run.log"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "hello"))
}

func TestOpenRespectsLevel(t *testing.T) {
	dir := t.TempDir()
	sink, err := Open(Config{Dir: dir, File: "run.log", Level: "warn"})
	require.NoError(t, err)

	sink.Logger.Info("quiet")
	sink.Logger.Warn("loud")
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(sink.Path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestOpenBadLevel(t *testing.T) {
	_, err := Open(Config{Dir: t.TempDir(), File: "run.log", Level: "chatty"})
	assert.ErrorContains(t, err, "parse log level")
}

func TestOpenConsoleTeesWarnings(t *testing.T) {
	stderr, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)
	orig := os.Stderr
	os.Stderr = stderr
	t.Cleanup(func() { os.Stderr = orig })

	sink, err := Open(Config{Dir: t.TempDir(), File: "run.log", Console: true})
	require.NoError(t, err)
	sink.Logger.Info("progress")
	sink.Logger.Warn("document truncated")
	require.NoError(t, sink.Close())
	require.NoError(t, stderr.Close())

	console, err := os.ReadFile(stderr.Name())
	require.NoError(t, err)
	assert.Contains(t, string(console), "WARN\tdocument truncated")
	assert.NotContains(t, string(console), "progress")

	logged, err := os.ReadFile(sink.Path)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "progress")
	assert.Contains(t, string(logged), "document truncated")
}
