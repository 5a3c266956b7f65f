// Package export validates output destinations and writes the products of a
// conversion: the surface mesh, the volume mesh, the session file and the
// geometry details record.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Required output suffixes
const (
	SuffixH5M  = ".h5m"
	SuffixExo  = ".exo"
	SuffixCub  = ".cub"
	SuffixCub5 = ".cub5"
)

// InvalidFileSuffixError is returned when an output path has the wrong extension
type InvalidFileSuffixError struct {
	Path     string
	Expected []string
}

func (e *InvalidFileSuffixError) Error() string {
	return fmt.Sprintf("output file %q must end in %s", e.Path, strings.Join(e.Expected, " or "))
}

func checkSuffix(path string, expected ...string) error {
	ext := filepath.Ext(path)
	for _, suffix := range expected {
		if ext == suffix {
			return nil
		}
	}
	return &InvalidFileSuffixError{Path: path, Expected: expected}
}

// ValidateOutputNames checks the suffix of every requested output.
// The mesh path is required, the others are checked only when set.
func ValidateOutputNames(out models.OutputFiles) error {
	if err := checkSuffix(out.H5M, SuffixH5M); err != nil {
		return err
	}
	if out.Exo != "" {
		if err := checkSuffix(out.Exo, SuffixExo); err != nil {
			return err
		}
	}
	if out.Cubit != "" {
		if err := checkSuffix(out.Cubit, SuffixCub, SuffixCub5); err != nil {
			return err
		}
	}
	if out.GeometryDetails != "" {
		if _, err := recordFormat(out.GeometryDetails); err != nil {
			return err
		}
	}
	return nil
}

// EnsureDirectories creates the parent directories of the mesh outputs
func EnsureDirectories(out models.OutputFiles) error {
	for _, path := range []string{out.H5M, out.Exo} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}

type recordEncoding int

const (
	encodingJSON recordEncoding = iota
	encodingYAML
)

func recordFormat(path string) (recordEncoding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return encodingJSON, nil
	case ".yaml", ".yml":
		return encodingYAML, nil
	default:
		return 0, &InvalidFileSuffixError{Path: path, Expected: []string{".json", ".yaml", ".yml"}}
	}
}

// MarshalGeometryDetails encodes the record in the format implied by path
func MarshalGeometryDetails(path string, details models.GeometryDetails) ([]byte, error) {
	format, err := recordFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case encodingYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(details); err != nil {
			return nil, fmt.Errorf("failed to encode geometry details: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(details, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode geometry details: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// WriteGeometryDetails writes the enriched part list to path
func WriteGeometryDetails(path string, details models.GeometryDetails) error {
	data, err := MarshalGeometryDetails(path, details)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write geometry details: %w", err)
	}
	return nil
}

// ReadGeometryDetails loads a record written by WriteGeometryDetails
func ReadGeometryDetails(path string) (models.GeometryDetails, error) {
	format, err := recordFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry details: %w", err)
	}

	var details models.GeometryDetails
	switch format {
	case encodingYAML:
		err = yaml.Unmarshal(data, &details)
	default:
		err = json.Unmarshal(data, &details)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return details, nil
}

// Exporter issues the export and save operations of a conversion
type Exporter struct {
	session engine.Session
	logger  *zap.Logger
}

// NewExporter creates an exporter bound to a session
func NewExporter(session engine.Session, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{session: session, logger: logger}
}

// ExportMesh writes the faceted surface mesh
func (e *Exporter) ExportMesh(path string, facetingTolerance float64, watertight bool) error {
	opts := engine.MeshExportOptions{
		FacetingTolerance: facetingTolerance,
		MakeWatertight:    watertight,
	}
	if err := e.session.ExportMesh(path, opts); err != nil {
		return fmt.Errorf("failed to export mesh to %s: %w", path, err)
	}
	e.logger.Info("Exported surface mesh",
		zap.String("path", path),
		zap.Float64("faceting_tolerance", facetingTolerance),
		zap.Bool("make_watertight", watertight))
	return nil
}

// ExportVolumeMesh writes the tetrahedral mesh
func (e *Exporter) ExportVolumeMesh(path string) error {
	if err := e.session.ExportVolumeMesh(path); err != nil {
		return fmt.Errorf("failed to export volume mesh to %s: %w", path, err)
	}
	e.logger.Info("Exported volume mesh", zap.String("path", path))
	return nil
}

// SaveSession saves the modeling session
func (e *Exporter) SaveSession(path string) error {
	if err := e.session.SaveSession(path); err != nil {
		return fmt.Errorf("failed to save session to %s: %w", path, err)
	}
	e.logger.Info("Saved session", zap.String("path", path))
	return nil
}
