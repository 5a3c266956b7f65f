package buildplan

import (
	"context"
	"fmt"

	"github.com/fusion-energy/cad-to-h5m/internal/export"
	"github.com/fusion-energy/cad-to-h5m/internal/importer"
	"github.com/fusion-energy/cad-to-h5m/internal/preconditions"
	"github.com/fusion-energy/cad-to-h5m/internal/reflector"
	"github.com/fusion-energy/cad-to-h5m/internal/tagger"
	"github.com/fusion-energy/cad-to-h5m/internal/ui"
	"go.uber.org/zap"
)

// ValidateOutputsStep checks the output suffixes before anything is imported
type ValidateOutputsStep struct{}

func (s *ValidateOutputsStep) Name() string {
	return "Validate output names"
}

func (s *ValidateOutputsStep) Execute(ctx context.Context, bc *Context) error {
	return export.ValidateOutputNames(bc.Outputs)
}

// ValidateInputsStep checks that every CAD file exists and can be imported
type ValidateInputsStep struct{}

func (s *ValidateInputsStep) Name() string {
	return "Validate input files"
}

func (s *ValidateInputsStep) Execute(ctx context.Context, bc *Context) error {
	if len(bc.Details) == 0 {
		return fmt.Errorf("no parts to convert")
	}
	if err := preconditions.ValidateInputs(bc.Details); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Found %d part%s", len(bc.Details), pluralize(len(bc.Details))))
	return nil
}

// StartEngineStep opens the modeling session
type StartEngineStep struct{}

func (s *StartEngineStep) Name() string {
	return "Start modeling engine"
}

func (s *StartEngineStep) Skip(bc *Context) (string, bool) {
	if bc.Session != nil {
		return "session already open", true
	}
	return "", false
}

func (s *StartEngineStep) Execute(ctx context.Context, bc *Context) error {
	session, err := bc.Open(ctx, bc.Engine, bc.Logger, bc.Metrics)
	if err != nil {
		return err
	}
	bc.Session = session
	return nil
}

// ImportStep imports every part and records the volumes it owns
type ImportStep struct{}

func (s *ImportStep) Name() string {
	return "Import CAD files"
}

func (s *ImportStep) Execute(ctx context.Context, bc *Context) error {
	tracker := importer.NewTracker(bc.Session, bc.Logger)
	if err := tracker.ImportAll(bc.Details); err != nil {
		return err
	}

	bc.ValidationWarning = tracker.ValidationWarning()
	if bc.ValidationWarning != nil {
		ui.PrintWarning(fmt.Sprintf("Geometry validation: %v", bc.ValidationWarning))
	}

	bc.TotalVolumes = bc.Details.TotalVolumes()
	bc.Metrics.SetVolumes(bc.TotalVolumes)

	ui.PrintSuccess(fmt.Sprintf("Imported %d volume%s", bc.TotalVolumes, pluralize(bc.TotalVolumes)))
	if ui.IsVerbose() {
		for _, entry := range bc.Details {
			ui.PrintItem(fmt.Sprintf("%s → volumes %v", entry.CADFilename, entry.Volumes))
		}
	}
	return nil
}

// ScaleStep applies per-part scale factors
type ScaleStep struct{}

func (s *ScaleStep) Name() string {
	return "Scale volumes"
}

func (s *ScaleStep) Skip(bc *Context) (string, bool) {
	for _, entry := range bc.Details {
		if entry.Scale != nil {
			return "", false
		}
	}
	return "no part requests scaling", true
}

func (s *ScaleStep) Execute(ctx context.Context, bc *Context) error {
	for _, entry := range bc.Details {
		if entry.Scale == nil {
			continue
		}
		if err := bc.Session.Scale(entry.Volumes, *entry.Scale); err != nil {
			return fmt.Errorf("failed to scale %s: %w", entry.CADFilename, err)
		}
		bc.Logger.Debug("Scaled volumes", zap.Ints("volumes", entry.Volumes), zap.Float64("factor", *entry.Scale))
	}
	return nil
}

// TagStep groups the volumes of each part under its material
type TagStep struct{}

func (s *TagStep) Name() string {
	return "Tag materials"
}

func (s *TagStep) Execute(ctx context.Context, bc *Context) error {
	t := tagger.NewTagger(bc.Session, bc.Options.ImplicitComplementMaterialTag, bc.Logger)
	if err := t.Tag(bc.Details); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Tagged %d part%s", len(bc.Details), pluralize(len(bc.Details))))
	return nil
}

// ImprintStep imprints all bodies so shared faces become conformal
type ImprintStep struct{}

func (s *ImprintStep) Name() string {
	return "Imprint bodies"
}

func (s *ImprintStep) Skip(bc *Context) (string, bool) {
	if !bc.Options.Imprint {
		return "imprint disabled", true
	}
	if bc.TotalVolumes <= 1 {
		return "single volume", true
	}
	return "", false
}

func (s *ImprintStep) Execute(ctx context.Context, bc *Context) error {
	return bc.Session.ImprintAll()
}

// MergeStep merges coincident entities
type MergeStep struct{}

func (s *MergeStep) Name() string {
	return "Merge volumes"
}

func (s *MergeStep) Skip(bc *Context) (string, bool) {
	if bc.TotalVolumes <= 1 {
		return "single volume", true
	}
	return "", false
}

func (s *MergeStep) Execute(ctx context.Context, bc *Context) error {
	return bc.Session.MergeAll(bc.Options.MergeTolerance)
}

// ReconcileStep brings the reflecting surfaces up to date with the merged session
type ReconcileStep struct{}

func (s *ReconcileStep) Name() string {
	return "Reconcile reflecting surfaces"
}

func (s *ReconcileStep) Execute(ctx context.Context, bc *Context) error {
	r := reflector.NewReconciler(bc.Session, bc.Options.SurfaceReflectivityName, bc.Logger)
	result, err := r.Reconcile(bc.Details)
	if err != nil {
		return err
	}
	bc.Reconciled = result
	if result.Entry != nil {
		reflectors := len(result.Entry.Reflectivity.Reflectors())
		bc.Metrics.SetReflectingSurfaces(reflectors)
		ui.PrintSuccess(fmt.Sprintf("%d reflecting surface%s", reflectors, pluralize(reflectors)))
	}
	return nil
}

// WriteGeometryDetailsStep writes the enriched part list
type WriteGeometryDetailsStep struct{}

func (s *WriteGeometryDetailsStep) Name() string {
	return "Write geometry details"
}

func (s *WriteGeometryDetailsStep) Skip(bc *Context) (string, bool) {
	if bc.Outputs.GeometryDetails == "" {
		return "no geometry details file requested", true
	}
	return "", false
}

func (s *WriteGeometryDetailsStep) Execute(ctx context.Context, bc *Context) error {
	return export.WriteGeometryDetails(bc.Outputs.GeometryDetails, bc.Details)
}

// ExportMeshStep writes the faceted surface mesh
type ExportMeshStep struct{}

func (s *ExportMeshStep) Name() string {
	return "Export surface mesh"
}

func (s *ExportMeshStep) Execute(ctx context.Context, bc *Context) error {
	if err := export.EnsureDirectories(bc.Outputs); err != nil {
		return err
	}
	e := export.NewExporter(bc.Session, bc.Logger)
	return e.ExportMesh(bc.Outputs.H5M, bc.Options.FacetingTolerance, bc.Options.MakeWatertight)
}

// TetMeshStep creates the tetrahedral mesh of the parts that request one
type TetMeshStep struct{}

func (s *TetMeshStep) Name() string {
	return "Mesh volumes"
}

func (s *TetMeshStep) Skip(bc *Context) (string, bool) {
	if !bc.Details.RequiresTetMesh() {
		return "no part requests a tetrahedral mesh", true
	}
	return "", false
}

func (s *TetMeshStep) Execute(ctx context.Context, bc *Context) error {
	for _, entry := range bc.Details {
		if entry.TetMesh == nil {
			continue
		}
		if err := bc.Session.Mesh(entry.Volumes, *entry.TetMesh); err != nil {
			return fmt.Errorf("failed to mesh %s: %w", entry.CADFilename, err)
		}
	}
	return nil
}

// ExportVolumeMeshStep writes the tetrahedral mesh
type ExportVolumeMeshStep struct{}

func (s *ExportVolumeMeshStep) Name() string {
	return "Export volume mesh"
}

func (s *ExportVolumeMeshStep) Skip(bc *Context) (string, bool) {
	if bc.Outputs.Exo == "" {
		return "no volume mesh file requested", true
	}
	return "", false
}

func (s *ExportVolumeMeshStep) Execute(ctx context.Context, bc *Context) error {
	return export.NewExporter(bc.Session, bc.Logger).ExportVolumeMesh(bc.Outputs.Exo)
}

// SaveSessionStep saves the modeling session for later inspection
type SaveSessionStep struct{}

func (s *SaveSessionStep) Name() string {
	return "Save session"
}

func (s *SaveSessionStep) Skip(bc *Context) (string, bool) {
	if bc.Outputs.Cubit == "" {
		return "no session file requested", true
	}
	return "", false
}

func (s *SaveSessionStep) Execute(ctx context.Context, bc *Context) error {
	return export.NewExporter(bc.Session, bc.Logger).SaveSession(bc.Outputs.Cubit)
}

// pluralize returns "s" if count != 1, empty string otherwise
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
