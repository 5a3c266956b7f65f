// Package engine is the boundary to the external solid-modeling session.
//
// Everything the conversion pipeline does to geometry goes through the Session
// interface. The session is a single stateful resource: callers must issue
// operations sequentially, and every identifier they hold is only meaningful
// relative to the numbering state left by the previous operation.
package engine

import (
	"fmt"
	"strings"
)

// Kind is the type of a modeling entity
type Kind string

const (
	KindVolume  Kind = "volume"
	KindBody    Kind = "body"
	KindSurface Kind = "surface"
	KindCurve   Kind = "curve"
	KindVertex  Kind = "vertex"
)

// Format is a CAD interchange format accepted by the engine's import
type Format string

const (
	FormatACIS Format = "acis"
	FormatSTEP Format = "step"
)

// Scope restricts a query to part of the session, e.g. "all" or "in volume 3 4"
type Scope struct {
	expr string
}

// All matches every entity of the queried kind
func All() Scope {
	return Scope{expr: "all"}
}

// In matches entities that belong to the given entities
func In(kind Kind, ids ...int) Scope {
	return Scope{expr: "in " + NewCommand().IDs(kind, ids).String()}
}

// String renders the scope in engine syntax
func (s Scope) String() string {
	if s.expr == "" {
		return "all"
	}
	return s.expr
}

// ImportOptions controls how a CAD file is imported
type ImportOptions struct {
	SeparateBodies bool
	NoSurfaces     bool
	NoCurves       bool
	NoVertices     bool
}

// SolidsOnly imports each body separately without free-standing auxiliary geometry
func SolidsOnly() ImportOptions {
	return ImportOptions{
		SeparateBodies: true,
		NoSurfaces:     true,
		NoCurves:       true,
		NoVertices:     true,
	}
}

// MeshExportOptions controls the surface mesh export
type MeshExportOptions struct {
	FacetingTolerance float64
	MakeWatertight    bool
}

// Session is the command/query contract of a modeling session
type Session interface {
	Import(format Format, path string, opts ImportOptions) error
	Query(kind Kind, scope Scope) ([]int, error)
	Unite(ids []int) error
	ImprintAll() error
	MergeAll(tolerance float64) error
	GroupAdd(group string, kind Kind, ids []int) error
	SetVisible(kind Kind, ids []int) error
	Scale(ids []int, factor float64) error
	Mesh(ids []int, sizing string) error
	SeparateBodies() error
	Validate(kind Kind) error
	ExportMesh(path string, opts MeshExportOptions) error
	ExportVolumeMesh(path string) error
	SaveSession(path string) error
	IsPlanar(surface int) (bool, error)
	Close() error
}

// VertexCount returns the number of vertices bounding a surface
func VertexCount(s Session, surface int) (int, error) {
	vertices, err := s.Query(KindVertex, In(KindSurface, surface))
	if err != nil {
		return 0, err
	}
	return len(vertices), nil
}

// EngineUnavailableError is returned when the modeling engine cannot be started
type EngineUnavailableError struct {
	Path string
	Err  error
}

func (e *EngineUnavailableError) Error() string {
	return fmt.Sprintf("modeling engine not available at %s: %v", e.Path, e.Err)
}

func (e *EngineUnavailableError) Unwrap() error {
	return e.Err
}

// CommandError is returned when the engine rejects a command
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "command failed"
	}
	return fmt.Sprintf("engine command %q: %s", e.Command, msg)
}
