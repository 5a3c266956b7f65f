// Package buildplan sequences a conversion as a linear plan of steps that
// share one explicit Context.
package buildplan

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
	"github.com/fusion-energy/cad-to-h5m/internal/metrics"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"github.com/fusion-energy/cad-to-h5m/internal/preconditions"
	"github.com/fusion-energy/cad-to-h5m/internal/reflector"
	"github.com/fusion-energy/cad-to-h5m/internal/ui"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionOpener starts a modeling session
type SessionOpener func(ctx context.Context, cfg engine.Config, logger *zap.Logger, collector *metrics.Collector) (engine.Session, error)

// OpenEngine checks the engine installation and starts the bridge process
func OpenEngine(ctx context.Context, cfg engine.Config, logger *zap.Logger, collector *metrics.Collector) (engine.Session, error) {
	if err := preconditions.Check(cfg); err != nil {
		return nil, err
	}
	return engine.Open(ctx, cfg, logger, collector)
}

// Context holds shared data between build steps
type Context struct {
	Details models.GeometryDetails
	Outputs models.OutputFiles
	Options models.Options
	Engine  engine.Config
	Open    SessionOpener
	Logger  *zap.Logger
	Metrics *metrics.Collector
	RunID   string

	// Set while the plan executes
	Session           engine.Session
	TotalVolumes      int
	ValidationWarning error
	Reconciled        reflector.Result
}

// BuildStep represents a single step in the build plan
type BuildStep interface {
	Name() string
	Execute(ctx context.Context, bc *Context) error
}

// ConditionalStep is a step that may not apply to a conversion. Skip is
// evaluated when the step is reached, after every earlier step has run.
type ConditionalStep interface {
	BuildStep
	Skip(bc *Context) (reason string, skip bool)
}

// BuildPlan contains all steps of a conversion
type BuildPlan struct {
	Steps      []BuildStep
	OutputFile string
}

// Planner creates build plans
type Planner struct{}

// NewPlanner creates a new build planner
func NewPlanner() *Planner {
	return &Planner{}
}

// CreatePlan creates the conversion plan. The step order is fixed: every
// step works on the numbering state the previous one left in the session.
func (p *Planner) CreatePlan(outputs models.OutputFiles) *BuildPlan {
	return &BuildPlan{
		OutputFile: outputs.H5M,
		Steps: []BuildStep{
			&ValidateOutputsStep{},
			&ValidateInputsStep{},
			&StartEngineStep{},
			&ImportStep{},
			&ScaleStep{},
			&TagStep{},
			&ImprintStep{},
			&MergeStep{},
			&ReconcileStep{},
			&WriteGeometryDetailsStep{},
			&ExportMeshStep{},
			&TetMeshStep{},
			&ExportVolumeMeshStep{},
			&SaveSessionStep{},
		},
	}
}

// Execute runs all steps in the plan and stops at the first failure
func (p *BuildPlan) Execute(ctx context.Context, bc *Context) error {
	if bc.Logger == nil {
		bc.Logger = zap.NewNop()
	}

	if ui.IsVerbose() {
		ui.PrintTitle("Build Plan Execution")
		ui.PrintInfo(fmt.Sprintf("Total steps: %d", len(p.Steps)))
		ui.PrintSeparator()
	}

	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if cond, ok := step.(ConditionalStep); ok {
			if reason, skip := cond.Skip(bc); skip {
				bc.Logger.Info("Step skipped", zap.String("step", step.Name()), zap.String("reason", reason))
				if ui.IsVerbose() {
					ui.PrintInfo(fmt.Sprintf("Skipped %s: %s", step.Name(), reason))
				}
				continue
			}
		}

		if ui.IsVerbose() {
			ui.PrintHeader(fmt.Sprintf("Step %d/%d: %s", i+1, len(p.Steps), step.Name()))
		}
		bc.Logger.Debug("Step started", zap.String("step", step.Name()))

		start := time.Now()
		err := step.Execute(ctx, bc)
		bc.Metrics.ObserveStep(step.Name(), time.Since(start))
		if err != nil {
			bc.Logger.Error("Step failed", zap.String("step", step.Name()), zap.Error(err))
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	ui.PrintSeparator()
	ui.PrintSuccess("Conversion completed successfully!")
	if p.OutputFile != "" {
		relPath, err := filepath.Rel(".", p.OutputFile)
		if err != nil {
			relPath = p.OutputFile
		}
		ui.PrintKeyValue("Output file", relPath)
	}
	return nil
}

// Config configures a conversion run
type Config struct {
	Outputs models.OutputFiles
	Options models.Options
	Engine  engine.Config
	Logger  *zap.Logger
	Metrics *metrics.Collector
	// Open starts the session, OpenEngine when nil
	Open SessionOpener
	// RunID identifies the run in logs, generated when empty
	RunID string
}

// Convert runs the whole conversion of details and returns the path of the
// surface mesh. details is updated in place with volumes and reflectivity.
// The session is closed when Convert returns, also on failure.
func Convert(ctx context.Context, details models.GeometryDetails, cfg Config) (string, error) {
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", runID))

	open := cfg.Open
	if open == nil {
		open = OpenEngine
	}

	bc := &Context{
		Details: details,
		Outputs: cfg.Outputs,
		Options: cfg.Options,
		Engine:  cfg.Engine,
		Open:    open,
		Logger:  logger,
		Metrics: cfg.Metrics,
		RunID:   runID,
	}
	defer func() {
		if bc.Session == nil {
			return
		}
		if err := bc.Session.Close(); err != nil {
			logger.Warn("Failed to close engine session", zap.Error(err))
		}
	}()

	logger.Info("Conversion started", zap.Int("parts", len(details)), zap.String("output", cfg.Outputs.H5M))
	plan := NewPlanner().CreatePlan(cfg.Outputs)
	if err := plan.Execute(ctx, bc); err != nil {
		return "", err
	}
	logger.Info("Conversion finished", zap.Int("volumes", bc.TotalVolumes))
	return cfg.Outputs.H5M, nil
}
