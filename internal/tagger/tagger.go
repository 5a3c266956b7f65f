// Package tagger assigns material groups to imported volumes.
package tagger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"go.uber.org/zap"
)

const (
	// GroupPrefix is prepended to every material tag to form the group name
	GroupPrefix = "mat:"
	// MaxTagLength is the longest material tag in characters
	MaxTagLength = 27
	// Graveyard is the tag of the volume bounding the problem
	Graveyard = "graveyard"
	// complementSuffix marks the implicit complement group
	complementSuffix = "_comp"
)

// MissingMaterialTagError is returned for an entry without a material tag
type MissingMaterialTagError struct {
	CADFilename string
}

func (e *MissingMaterialTagError) Error() string {
	return fmt.Sprintf("no material_tag for %s", e.CADFilename)
}

// MaterialTagTooLongError is returned when a tag exceeds MaxTagLength
type MaterialTagTooLongError struct {
	Tag string
}

func (e *MaterialTagTooLongError) Error() string {
	return fmt.Sprintf("material tag %q is %d characters long, at most %d are allowed", e.Tag, utf8.RuneCountInString(e.Tag), MaxTagLength)
}

// NoVolumesError is returned when an entry reaches tagging without volumes
type NoVolumesError struct {
	CADFilename string
}

func (e *NoVolumesError) Error() string {
	return fmt.Sprintf("%s produced no volumes to tag", e.CADFilename)
}

// GroupName returns the material group name for a tag
func GroupName(tag string) string {
	return GroupPrefix + tag
}

// CheckTag validates a material tag without touching the session
func CheckTag(entry *models.InputEntry) error {
	if entry.MaterialTag == "" {
		return &MissingMaterialTagError{CADFilename: entry.CADFilename}
	}
	if utf8.RuneCountInString(entry.MaterialTag) > MaxTagLength {
		return &MaterialTagTooLongError{Tag: entry.MaterialTag}
	}
	return nil
}

// Tagger groups each entry's volumes under its material
type Tagger struct {
	session    engine.Session
	complement string
	logger     *zap.Logger
}

// NewTagger creates a tagger. complement is the implicit complement material,
// empty when none is wanted.
func NewTagger(session engine.Session, complement string, logger *zap.Logger) *Tagger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tagger{
		session:    session,
		complement: complement,
		logger:     logger,
	}
}

// Tag tags every entry in order and stops at the first failure
func (t *Tagger) Tag(details models.GeometryDetails) error {
	for _, entry := range details {
		if err := t.tagEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tagger) tagEntry(entry *models.InputEntry) error {
	if err := CheckTag(entry); err != nil {
		return err
	}
	if len(entry.Volumes) == 0 {
		return &NoVolumesError{CADFilename: entry.CADFilename}
	}

	group := GroupName(entry.MaterialTag)
	if err := t.session.GroupAdd(group, engine.KindVolume, entry.Volumes); err != nil {
		return fmt.Errorf("failed to tag volumes %v with %q: %w", entry.Volumes, group, err)
	}
	t.logger.Debug("Tagged volumes", zap.String("group", group), zap.Ints("volumes", entry.Volumes))

	if t.complement != "" && strings.EqualFold(entry.MaterialTag, Graveyard) {
		comp := GroupPrefix + t.complement + complementSuffix
		first := entry.Volumes[:1]
		if err := t.session.GroupAdd(comp, engine.KindVolume, first); err != nil {
			return fmt.Errorf("failed to add implicit complement group %q: %w", comp, err)
		}
		t.logger.Debug("Tagged implicit complement", zap.String("group", comp), zap.Int("volume", first[0]))
	}
	return nil
}
