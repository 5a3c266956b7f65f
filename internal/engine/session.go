package engine

import (
	"fmt"
	"time"

	"github.com/fusion-energy/cad-to-h5m/internal/metrics"
	"go.uber.org/zap"
)

// Commander is the raw transport to a running engine
type Commander interface {
	// Execute runs one line of the engine's command language
	Execute(command string) error
	// List returns the ids of all entities of kind matching scope
	List(kind Kind, scope string) ([]int, error)
	// Planar reports whether a surface is planar
	Planar(surface int) (bool, error)
	Close() error
}

// CommandSession implements Session by rendering typed operations into engine commands
type CommandSession struct {
	commander Commander
	logger    *zap.Logger
	metrics   *metrics.Collector
}

// NewCommandSession wraps a commander. logger and collector may be nil.
func NewCommandSession(commander Commander, logger *zap.Logger, collector *metrics.Collector) *CommandSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandSession{
		commander: commander,
		logger:    logger,
		metrics:   collector,
	}
}

func (s *CommandSession) run(cmds ...*Command) error {
	for _, c := range cmds {
		line := c.String()
		s.logger.Debug("Engine command", zap.String("command", line))

		start := time.Now()
		err := s.commander.Execute(line)
		s.metrics.ObserveCommand(c.Verb(), time.Since(start), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *CommandSession) Import(format Format, path string, opts ImportOptions) error {
	return s.run(importCommand(format, path, opts))
}

func (s *CommandSession) Query(kind Kind, scope Scope) ([]int, error) {
	start := time.Now()
	ids, err := s.commander.List(kind, scope.String())
	s.metrics.ObserveCommand("list", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", kind, scope, err)
	}
	s.logger.Debug("Engine query",
		zap.String("kind", string(kind)),
		zap.String("scope", scope.String()),
		zap.Ints("ids", ids))
	return ids, nil
}

func (s *CommandSession) Unite(ids []int) error {
	if len(ids) < 2 {
		return nil
	}
	return s.run(uniteCommand(ids))
}

func (s *CommandSession) ImprintAll() error {
	return s.run(NewCommand("imprint").IDs(KindBody, nil).Keyword("all"))
}

func (s *CommandSession) MergeAll(tolerance float64) error {
	return s.run(mergeCommands(tolerance)...)
}

func (s *CommandSession) GroupAdd(group string, kind Kind, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	return s.run(groupAddCommand(group, kind, ids))
}

func (s *CommandSession) SetVisible(kind Kind, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	return s.run(visibilityCommand(kind, ids))
}

func (s *CommandSession) Scale(ids []int, factor float64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.run(scaleCommand(ids, factor))
}

func (s *CommandSession) Mesh(ids []int, sizing string) error {
	for _, id := range ids {
		if err := s.run(meshCommands(id, sizing)...); err != nil {
			return err
		}
	}
	return nil
}

func (s *CommandSession) SeparateBodies() error {
	return s.run(NewCommand("separate").IDs(KindBody, nil).Keyword("all"))
}

func (s *CommandSession) Validate(kind Kind) error {
	return s.run(NewCommand("validate").IDs(kind, nil).Keyword("all"))
}

func (s *CommandSession) ExportMesh(path string, opts MeshExportOptions) error {
	return s.run(exportMeshCommands(path, opts)...)
}

func (s *CommandSession) ExportVolumeMesh(path string) error {
	return s.run(exportVolumeMeshCommands(path)...)
}

func (s *CommandSession) SaveSession(path string) error {
	return s.run(NewCommand("save", "as").Quoted(path).Keyword("overwrite"))
}

func (s *CommandSession) IsPlanar(surface int) (bool, error) {
	start := time.Now()
	planar, err := s.commander.Planar(surface)
	s.metrics.ObserveCommand("planar", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("planarity of surface %d: %w", surface, err)
	}
	return planar, nil
}

func (s *CommandSession) Close() error {
	return s.commander.Close()
}
