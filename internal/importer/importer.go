// Package importer imports CAD files into the modeling session and tracks
// which volumes each input entry owns.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
	"github.com/fusion-energy/cad-to-h5m/internal/entity"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"github.com/fusion-energy/cad-to-h5m/internal/reflector"
	"go.uber.org/zap"
)

// UnsupportedFormatError is returned for files that are neither ACIS nor STEP
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported CAD format for %s (expected .sat, .stp or .step)", e.Path)
}

// MissingFileError is returned when an input file does not exist
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// ResolveFormat determines the import format from the file extension
func ResolveFormat(path string) (engine.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sat":
		return engine.FormatACIS, nil
	case ".stp", ".step":
		return engine.FormatSTEP, nil
	default:
		return "", &UnsupportedFormatError{Path: path}
	}
}

// CheckEntry resolves the entry's format and verifies the file exists
func CheckEntry(entry *models.InputEntry) (engine.Format, error) {
	format, err := ResolveFormat(entry.CADFilename)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(entry.CADFilename)
	if err != nil || info.IsDir() {
		return "", &MissingFileError{Path: entry.CADFilename}
	}
	return format, nil
}

// Tracker imports entries one at a time and records the volumes each introduced
type Tracker struct {
	session    engine.Session
	logger     *zap.Logger
	validation error
}

// NewTracker creates a tracker bound to a session
func NewTracker(session engine.Session, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		session: session,
		logger:  logger,
	}
}

func (t *Tracker) volumes() ([]int, error) {
	ids, err := t.session.Query(engine.KindVolume, engine.All())
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	return ids, nil
}

// Import imports one entry and sets its final volume list.
//
// When the file introduces several volumes they are united into one, and the
// result is diffed against the snapshot taken before the import because unite
// consumes its inputs and produces a new identifier.
func (t *Tracker) Import(entry *models.InputEntry) error {
	format, err := CheckEntry(entry)
	if err != nil {
		return err
	}

	current, err := t.volumes()
	if err != nil {
		return err
	}
	before := entity.Take(current)

	if err := t.session.Import(format, entry.CADFilename, engine.SolidsOnly()); err != nil {
		return fmt.Errorf("failed to import %s: %w", entry.CADFilename, err)
	}

	all, err := t.volumes()
	if err != nil {
		return err
	}
	newVolumes := entity.Diff(before, all)

	if len(newVolumes) > 1 {
		t.logger.Debug("Uniting multi-body import",
			zap.String("file", entry.CADFilename),
			zap.Ints("volumes", newVolumes))
		if err := t.session.Unite(newVolumes); err != nil {
			return fmt.Errorf("failed to unite volumes %v of %s: %w", newVolumes, entry.CADFilename, err)
		}
		all, err = t.volumes()
		if err != nil {
			return err
		}
		newVolumes = entity.Diff(before, all)
	}
	entry.Volumes = newVolumes

	if len(newVolumes) == 0 {
		t.logger.Warn("Import introduced no volumes", zap.String("file", entry.CADFilename))
	} else {
		group := filepath.Base(entry.CADFilename)
		if err := t.session.GroupAdd(group, engine.KindVolume, newVolumes); err != nil {
			return fmt.Errorf("failed to group volumes of %s: %w", entry.CADFilename, err)
		}
	}

	if entry.TrackReflectivity {
		refl, err := reflector.Classify(t.session, newVolumes)
		if err != nil {
			return fmt.Errorf("failed to classify surfaces of %s: %w", entry.CADFilename, err)
		}
		entry.Reflectivity = refl
	}

	t.logger.Info("Imported CAD file",
		zap.String("file", entry.CADFilename),
		zap.String("format", string(format)),
		zap.Ints("volumes", entry.Volumes))
	return nil
}

// ImportAll imports every entry in order, then separates all bodies and runs
// the engine's validation as an advisory check. Validation failures are
// logged and kept for ValidationWarning, never returned.
func (t *Tracker) ImportAll(details models.GeometryDetails) error {
	for i, entry := range details {
		if err := t.Import(entry); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	if err := t.session.SeparateBodies(); err != nil {
		return fmt.Errorf("failed to separate bodies: %w", err)
	}

	t.validation = t.session.Validate(engine.KindVolume)
	if t.validation != nil {
		t.logger.Warn("Volume validation reported problems", zap.Error(t.validation))
	}
	return nil
}

// ValidationWarning returns the advisory validation failure of the last ImportAll
func (t *Tracker) ValidationWarning() error {
	return t.validation
}
