package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsSameLogger(t *testing.T) {
	require.NoError(t, Init(DefaultOptions()))
	assert.Same(t, Get("app"), Get("app"))
	assert.NotSame(t, Get("app"), Get("audit"))
}

func TestJSONEntriesCarryServiceName(t *testing.T) {
	o := DefaultOptions()
	o.Format = "json"
	o.Level = "debug"
	require.NoError(t, Init(o))

	var buf bytes.Buffer
	l := Get("job")
	l.SetOutput(&buf)
	l.WithField("count", 3).Debug("cleanup finished")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "job", entry["service"])
	assert.Equal(t, "cleanup finished", entry["message"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestFileOutputRotatesIntoPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	o := DefaultOptions()
	o.Output = "file"
	o.Path = dir
	require.NoError(t, Init(o))
	t.Cleanup(func() { _ = Init(DefaultOptions()) })

	Get("audit").Info("user created")

	data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "user created")
}
