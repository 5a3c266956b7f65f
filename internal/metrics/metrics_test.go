package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCommand(t *testing.T) {
	c := NewCollector()

	c.ObserveCommand("import", 10*time.Millisecond, nil)
	c.ObserveCommand("import", 20*time.Millisecond, nil)
	c.ObserveCommand("merge", time.Second, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.commandsTotal.WithLabelValues("import", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commandsTotal.WithLabelValues("merge", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.commandsTotal.WithLabelValues("merge", "ok")))
}

func TestGauges(t *testing.T) {
	c := NewCollector()
	c.SetVolumes(12)
	c.SetReflectingSurfaces(3)

	assert.Equal(t, 12.0, testutil.ToFloat64(c.volumes))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.reflectingSurfaces))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveCommand("import", time.Second, nil)
		c.ObserveStep("Import", time.Second)
		c.SetVolumes(1)
		c.SetReflectingSurfaces(1)
	})
	assert.Nil(t, c.Registry())
	assert.NoError(t, c.WriteToTextfile(filepath.Join(t.TempDir(), "metrics.prom")))
}

func TestWriteToTextfile(t *testing.T) {
	c := NewCollector()
	c.SetVolumes(4)
	c.ObserveStep("Import CAD files", 2*time.Second)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, c.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "cad_to_h5m_volumes 4"), text)
	assert.Contains(t, text, `cad_to_h5m_step_duration_seconds_count{step="Import CAD files"} 1`)
}
