// Package reflector finds the reflecting cut faces of a sector (wedge) volume
// and keeps that classification consistent after imprint and merge.
package reflector

import (
	"fmt"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
	"github.com/fusion-energy/cad-to-h5m/internal/entity"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"go.uber.org/zap"
)

// DefaultGroupName is the group reflecting surfaces are added to when none is configured
const DefaultGroupName = "reflective"

// quadVertices is the vertex count of a flat sector-cut face
const quadVertices = 4

// Classify classifies every surface bounding the given volumes. A surface is a
// reflector candidate iff it is planar and bounded by exactly four vertices.
// Non-reflectors are included in the result.
func Classify(session engine.Session, volumes []int) (models.SurfaceReflectivity, error) {
	result := models.SurfaceReflectivity{}
	if len(volumes) == 0 {
		return result, nil
	}

	surfaces, err := session.Query(engine.KindSurface, engine.In(engine.KindVolume, volumes...))
	if err != nil {
		return nil, fmt.Errorf("failed to list surfaces of volumes %v: %w", volumes, err)
	}

	for _, id := range surfaces {
		planar, err := session.IsPlanar(id)
		if err != nil {
			return nil, err
		}
		vertices, err := engine.VertexCount(session, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count vertices of surface %d: %w", id, err)
		}
		result[id] = models.Reflector{Reflector: planar && vertices == quadVertices}
	}
	return result, nil
}

// Reconciler re-derives the reflecting surfaces of the wedge after the
// surface inventory has been changed by imprint and merge
type Reconciler struct {
	session   engine.Session
	groupName string
	logger    *zap.Logger
}

// NewReconciler creates a reconciler adding new reflectors to groupName
func NewReconciler(session engine.Session, groupName string, logger *zap.Logger) *Reconciler {
	if groupName == "" {
		groupName = DefaultGroupName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		session:   session,
		groupName: groupName,
		logger:    logger,
	}
}

// Result describes what a reconciliation changed
type Result struct {
	// Entry is the wedge entry that was reconciled, nil if there was none
	Entry   *models.InputEntry
	Removed []int
	Added   []int
}

// Reconcile updates the reflectivity map of the first entry that carries one.
//
// Reflectors that no longer bound the wedge are dropped. Surfaces that bound
// the wedge but were never seen before are added as reflectors, put in the
// reflecting group and made visible.
func (r *Reconciler) Reconcile(details models.GeometryDetails) (Result, error) {
	var wedge *models.InputEntry
	for _, entry := range details {
		if entry.Reflectivity != nil {
			wedge = entry
			break
		}
	}
	if wedge == nil {
		return Result{}, nil
	}

	live, err := r.session.Query(engine.KindSurface, engine.In(engine.KindVolume, wedge.Volumes...))
	if err != nil {
		return Result{}, fmt.Errorf("failed to list surfaces of wedge %s: %w", wedge.CADFilename, err)
	}
	liveSet := entity.NewSet(live)

	result := Result{Entry: wedge}
	for _, id := range wedge.Reflectivity.Reflectors() {
		if !liveSet.Contains(id) {
			delete(wedge.Reflectivity, id)
			result.Removed = append(result.Removed, id)
		}
	}

	for _, id := range liveSet.Sorted() {
		if _, known := wedge.Reflectivity[id]; known {
			continue
		}
		result.Added = append(result.Added, id)
	}

	for _, id := range result.Added {
		wedge.Reflectivity[id] = models.Reflector{Reflector: true}
		if err := r.session.GroupAdd(r.groupName, engine.KindSurface, []int{id}); err != nil {
			return result, fmt.Errorf("failed to add surface %d to group %q: %w", id, r.groupName, err)
		}
		if err := r.session.SetVisible(engine.KindSurface, []int{id}); err != nil {
			return result, fmt.Errorf("failed to make surface %d visible: %w", id, err)
		}
	}

	r.logger.Info("Reconciled reflecting surfaces",
		zap.String("file", wedge.CADFilename),
		zap.Ints("removed", result.Removed),
		zap.Ints("added", result.Added),
		zap.Int("reflectors", len(wedge.Reflectivity.Reflectors())))
	return result, nil
}
