package logging

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"WARNING", zapcore.WarnLevel},
		{"warn", zapcore.WarnLevel},
		{"Error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_WritesLeveledLinesToDailyFile(t *testing.T) {
	dir := t.TempDir()

	logger, closeFn, err := New(Config{Dir: dir, Level: "WARNING"})
	require.NoError(t, err)

	logger.Debug("debug line")
	logger.Info("info line")
	logger.Warnw("warning line", "source", "yahoo")
	logger.Error("error line")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(filepath.Join(dir, FileName(time.Now())))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	require.Len(t, lines, 2, "lines below WARNING must be suppressed: %q", lines)
	assert.Regexp(t, regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[WARNING\] warning line \{"source": "yahoo"\}$`), lines[0])
	assert.Regexp(t, regexp.MustCompile(`^\[[^]]+\] \[ERROR\] error line$`), lines[1])
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Config{Dir: t.TempDir(), Level: "LOUD"})
	assert.Error(t, err)
}

func TestDailyWriter_RotatesOnDayChange(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)

	w, err := NewDailyWriter(dir, func() time.Time { return now })
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	jan, err := os.ReadFile(filepath.Join(dir, "log_2024-01-31.txt"))
	require.NoError(t, err)
	feb, err := os.ReadFile(filepath.Join(dir, "log_2024-02-01.txt"))
	require.NoError(t, err)

	assert.Equal(t, "first\n", string(jan))
	assert.Equal(t, "second\n", string(feb))
}

func TestDailyWriter_Appends(t *testing.T) {
	dir := t.TempDir()
	now := func() time.Time { return time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC) }

	for _, line := range []string{"a\n", "b\n"} {
		w, err := NewDailyWriter(dir, now)
		require.NoError(t, err)
		_, err = w.Write([]byte(line))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	data, err := os.ReadFile(filepath.Join(dir, "log_2024-01-31.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "WARNING", LevelName(zap.WarnLevel))
	assert.Equal(t, "DEBUG", LevelName(zap.DebugLevel))
	assert.Equal(t, "ERROR", LevelName(zap.DPanicLevel))
}
