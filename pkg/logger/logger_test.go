package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func plain(msg string, lvl LogLevel) string {
	return fmt.Sprintf("%v: %v\n", lvl, msg)
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(plain, LevelWarning, &buf)

	log.Debugf("hidden %v", 1)
	log.Info("hidden")
	log.Warnf("shown %v", 2)
	log.Error("shown")

	require.Equal(t, "warn: shown 2\nerror: shown\n", buf.String())
	require.Equal(t, LevelWarning, log.Level())
}

func TestCurrentLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewLogger(plain, LevelTrace, &buf))
	defer SetLogger(DefaultLogger)

	Trace("a")
	Infof("b%v", "c")
	require.Equal(t, "trace: a\ninfo: bc\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	for name, want := range levelNames {
		got, err := ParseLevel(strings.ToUpper(name))
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, name, got.String())
	}
	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestDefaultFmt(t *testing.T) {
	s := DefaultFmt("hello\n", LevelInfo)
	require.True(t, strings.HasPrefix(s, levelString[LevelInfo]))
	require.True(t, strings.HasSuffix(s, ": hello\n"))
}

func TestOutputs(t *testing.T) {
	dir := t.TempDir()
	log := NewLoggerOutputs(LevelInfo, plain, dir, "log/a.log", filepath.Join(dir, "b.log"))
	log.Info("written")

	for _, name := range []string{"log/a.log", "b.log"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		require.Equal(t, "info: written\n", string(b))
	}
}
