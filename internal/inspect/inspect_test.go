package inspect

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fusion-energy/cad-to-h5m/internal/export"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"github.com/fusion-energy/cad-to-h5m/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record() models.GeometryDetails {
	return models.GeometryDetails{
		{CADFilename: "/parts/blanket.stp", MaterialTag: "mat1", Volumes: []int{1}},
		{CADFilename: "/parts/wedge.stp", MaterialTag: "vacuum", Volumes: []int{2},
			Reflectivity: models.SurfaceReflectivity{
				9: {Reflector: true},
				7: {Reflector: true},
				8: {Reflector: false},
			}},
		{CADFilename: "/parts/shield.stp", MaterialTag: "mat1", Volumes: []int{3, 4}},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(record())

	assert.Equal(t, 3, s.Parts)
	assert.Equal(t, 4, s.Volumes)
	assert.Equal(t, []string{"mat:mat1", "mat:vacuum"}, s.Materials)
	assert.Equal(t, "/parts/wedge.stp", s.Wedge)
	assert.Equal(t, []int{7, 9}, s.Reflectors)
}

func TestFormatIDs(t *testing.T) {
	assert.Equal(t, "-", FormatIDs(nil))
	assert.Equal(t, "3 4", FormatIDs([]int{3, 4}))
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geometry_details.json")
	require.NoError(t, export.WriteGeometryDetails(path, record()))

	var buf bytes.Buffer
	ui.SetOutput(&buf)
	t.Cleanup(func() { ui.SetOutput(os.Stdout) })

	require.NoError(t, NewInspector().Inspect(path))

	out := buf.String()
	assert.Contains(t, out, "wedge.stp: 2 reflecting surface(s)")
	assert.Contains(t, out, "surface 8: not reflecting")
	assert.Contains(t, out, "mat:mat1, mat:vacuum")
	assert.Contains(t, out, "shield.stp")
}

func TestInspectMissingFile(t *testing.T) {
	err := NewInspector().Inspect(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "file not found")
}

func TestPrintSource(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"details.json", "details.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, export.WriteGeometryDetails(path, record()))
			raw, err := os.ReadFile(path)
			require.NoError(t, err)

			var plain bytes.Buffer
			require.NoError(t, NewInspector().PrintSource(&plain, path, "noop", "monokai"))
			assert.Equal(t, string(raw), plain.String())

			var colored bytes.Buffer
			require.NoError(t, NewInspector().PrintSource(&colored, path, "terminal256", "monokai"))
			assert.Contains(t, colored.String(), "\x1b[")
		})
	}
}
