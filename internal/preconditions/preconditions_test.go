package preconditions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
	"github.com/fusion-energy/cad-to-h5m/internal/importer"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	bridge := filepath.Join(dir, engine.DefaultBridge)
	require.NoError(t, os.WriteFile(bridge, []byte("#!/bin/sh\n"), 0755))
	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, []byte("data"), 0644))

	tests := []struct {
		name    string
		cfg     engine.Config
		wantErr bool
	}{
		{"bridge in engine path", engine.Config{Path: dir}, false},
		{"absolute bridge", engine.Config{Bridge: bridge}, false},
		{"engine path missing", engine.Config{Path: filepath.Join(dir, "missing")}, true},
		{"engine path is a file", engine.Config{Path: plain}, true},
		{"bridge not executable", engine.Config{Bridge: plain}, true},
		{"bridge not in PATH", engine.Config{Bridge: "no-such-cubit-bridge-binary"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var unavailable *engine.EngineUnavailableError
			assert.ErrorAs(t, err, &unavailable)
		})
	}
}

func TestValidateInputs(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "blanket.stp")
	require.NoError(t, os.WriteFile(existing, []byte("ISO-10303-21;"), 0644))

	t.Run("all present", func(t *testing.T) {
		err := ValidateInputs(models.GeometryDetails{{CADFilename: existing, MaterialTag: "mat1"}})
		assert.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := ValidateInputs(models.GeometryDetails{
			{CADFilename: existing, MaterialTag: "mat1"},
			{CADFilename: filepath.Join(dir, "wedge.stp"), MaterialTag: "vacuum"},
		})
		var missing *importer.MissingFileError
		require.ErrorAs(t, err, &missing)
		assert.Contains(t, err.Error(), "entry 2")
	})

	t.Run("unsupported format", func(t *testing.T) {
		err := ValidateInputs(models.GeometryDetails{{CADFilename: filepath.Join(dir, "part.brep"), MaterialTag: "mat1"}})
		var unsupported *importer.UnsupportedFormatError
		assert.ErrorAs(t, err, &unsupported)
	})
}
