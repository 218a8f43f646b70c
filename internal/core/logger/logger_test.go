package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, done := New(Options{Level: "warn", JSON: true, Out: &buf})
	l.Info("hidden")
	l.Warn("shown", zap.String("k", "v"))
	done()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &m))
	assert.Equal(t, "shown", m["msg"])
	assert.Equal(t, "v", m["k"])
	assert.Equal(t, "warn", m["level"])
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, done := New(Options{Level: "nope", JSON: true, Out: &buf})
	l.Debug("d")
	l.Info("i")
	done()
	assert.NotContains(t, buf.String(), `"msg":"d"`)
	assert.Contains(t, buf.String(), `"msg":"i"`)
}

func TestNew_RotateWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	var buf bytes.Buffer
	l, done := New(Options{Level: "info", JSON: true, Out: &buf, Rotate: FileRotate{Enable: true, Filename: file}})
	l.Info("to file")
	done()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to file")
}

func TestToWriterAndRedirect(t *testing.T) {
	var buf bytes.Buffer
	l, done := New(Options{Level: "debug", JSON: true, Out: &buf})
	defer done()

	_, err := ToWriter(l, zapcore.WarnLevel).Write([]byte("from writer\n"))
	require.NoError(t, err)

	undo := RedirectStdLog(l, zapcore.InfoLevel)
	log.Print("from std log")
	undo()

	assert.Contains(t, buf.String(), `"msg":"from writer"`)
	assert.Contains(t, buf.String(), "from std log")
}
