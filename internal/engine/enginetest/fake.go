// Package enginetest provides an in-memory modeling session for tests.
package enginetest

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
)

var _ engine.Session = (*Session)(nil)

// Surface describes a surface created by an import
type Surface struct {
	Planar   bool
	Vertices int
}

// Quad is a planar surface bounded by four vertices
var Quad = Surface{Planar: true, Vertices: 4}

// Solid describes one body of an imported file
type Solid struct {
	Surfaces []Surface
}

// Box is a solid with six planar quad faces
func Box() Solid {
	return Solid{Surfaces: []Surface{Quad, Quad, Quad, Quad, Quad, Quad}}
}

type volume struct {
	body     int
	surfaces []int
}

type surface struct {
	planar   bool
	vertices []int
}

// Group is the content of one engine group
type Group map[engine.Kind][]int

// Session is a fake engine.Session that keeps a tiny topological model
type Session struct {
	files    map[string][]Solid
	volumes  map[int]*volume
	surfaces map[int]*surface

	nextVolume  int
	nextBody    int
	nextSurface int
	nextVertex  int

	// OnMerge is called by MergeAll to simulate surfaces fused or created by merge
	OnMerge func(s *Session)
	// Fail makes the named operation return the given error
	Fail map[string]error

	Ops        []string
	Groups     map[string]Group
	Visible    map[int]bool
	Scaled     map[int]float64
	Meshed     map[int]string
	Exports    map[string]engine.MeshExportOptions
	Tolerances []float64
	Closed     bool
}

// NewSession creates an empty fake session
func NewSession() *Session {
	return &Session{
		files:       map[string][]Solid{},
		volumes:     map[int]*volume{},
		surfaces:    map[int]*surface{},
		nextVolume:  1,
		nextBody:    1,
		nextSurface: 1,
		nextVertex:  1,
		Fail:        map[string]error{},
		Groups:      map[string]Group{},
		Visible:     map[int]bool{},
		Scaled:      map[int]float64{},
		Meshed:      map[int]string{},
		Exports:     map[string]engine.MeshExportOptions{},
	}
}

// AddFile registers what importing path produces
func (s *Session) AddFile(path string, solids ...Solid) {
	s.files[path] = solids
}

// AddSurface creates a new surface on an existing volume and returns its id
func (s *Session) AddSurface(vol int, spec Surface) int {
	id := s.newSurface(spec)
	s.volumes[vol].surfaces = append(s.volumes[vol].surfaces, id)
	return id
}

// RemoveSurface deletes a surface from every volume that references it
func (s *Session) RemoveSurface(id int) {
	delete(s.surfaces, id)
	for _, v := range s.volumes {
		v.surfaces = without(v.surfaces, id)
	}
}

// SurfacesOf returns the surfaces of a volume in ascending order
func (s *Session) SurfacesOf(vol int) []int {
	v, ok := s.volumes[vol]
	if !ok {
		return nil
	}
	return sorted(v.surfaces)
}

// Volumes returns every live volume id in ascending order
func (s *Session) Volumes() []int {
	var ids []int
	for id := range s.volumes {
		ids = append(ids, id)
	}
	return sorted(ids)
}

// Did reports whether an operation was performed
func (s *Session) Did(op string) bool {
	for _, o := range s.Ops {
		if o == op {
			return true
		}
	}
	return false
}

func (s *Session) record(op string) error {
	s.Ops = append(s.Ops, op)
	if err, ok := s.Fail[op]; ok {
		return err
	}
	return nil
}

func (s *Session) newSurface(spec Surface) int {
	id := s.nextSurface
	s.nextSurface++
	sf := &surface{planar: spec.Planar}
	for i := 0; i < spec.Vertices; i++ {
		sf.vertices = append(sf.vertices, s.nextVertex)
		s.nextVertex++
	}
	s.surfaces[id] = sf
	return id
}

func (s *Session) Import(format engine.Format, path string, opts engine.ImportOptions) error {
	if err := s.record("import"); err != nil {
		return err
	}
	solids, ok := s.files[path]
	if !ok {
		return &engine.CommandError{Command: "import " + string(format) + " " + path, Message: "file not readable"}
	}
	for _, solid := range solids {
		v := &volume{body: s.nextBody}
		s.nextBody++
		for _, spec := range solid.Surfaces {
			v.surfaces = append(v.surfaces, s.newSurface(spec))
		}
		s.volumes[s.nextVolume] = v
		s.nextVolume++
	}
	return nil
}

func (s *Session) Query(kind engine.Kind, scope engine.Scope) ([]int, error) {
	if err := s.record("query"); err != nil {
		return nil, err
	}
	fields := strings.Fields(scope.String())
	if len(fields) == 1 && fields[0] == "all" {
		return s.all(kind)
	}
	if len(fields) < 3 || fields[0] != "in" {
		return nil, fmt.Errorf("unsupported scope %q", scope.String())
	}
	owner := engine.Kind(fields[1])
	var owners []int
	for _, f := range fields[2:] {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad id %q in scope", f)
		}
		owners = append(owners, id)
	}

	set := map[int]bool{}
	switch {
	case kind == engine.KindSurface && owner == engine.KindVolume:
		for _, id := range owners {
			if v, ok := s.volumes[id]; ok {
				for _, sf := range v.surfaces {
					set[sf] = true
				}
			}
		}
	case kind == engine.KindVertex && owner == engine.KindSurface:
		for _, id := range owners {
			if sf, ok := s.surfaces[id]; ok {
				for _, vx := range sf.vertices {
					set[vx] = true
				}
			}
		}
	default:
		return nil, fmt.Errorf("unsupported query %s in %s", kind, owner)
	}
	return keys(set), nil
}

func (s *Session) all(kind engine.Kind) ([]int, error) {
	set := map[int]bool{}
	switch kind {
	case engine.KindVolume:
		for id := range s.volumes {
			set[id] = true
		}
	case engine.KindBody:
		for _, v := range s.volumes {
			set[v.body] = true
		}
	case engine.KindSurface:
		for id := range s.surfaces {
			set[id] = true
		}
	default:
		return nil, fmt.Errorf("unsupported query %s all", kind)
	}
	return keys(set), nil
}

func (s *Session) Unite(ids []int) error {
	if err := s.record("unite"); err != nil {
		return err
	}
	if len(ids) < 2 {
		return nil
	}
	united := &volume{body: s.nextBody}
	s.nextBody++
	for _, id := range ids {
		v, ok := s.volumes[id]
		if !ok {
			return &engine.CommandError{Command: "unite", Message: fmt.Sprintf("volume %d does not exist", id)}
		}
		united.surfaces = append(united.surfaces, v.surfaces...)
		delete(s.volumes, id)
	}
	s.volumes[s.nextVolume] = united
	s.nextVolume++
	return nil
}

func (s *Session) ImprintAll() error {
	return s.record("imprint")
}

func (s *Session) MergeAll(tolerance float64) error {
	if err := s.record("merge"); err != nil {
		return err
	}
	s.Tolerances = append(s.Tolerances, tolerance)
	if s.OnMerge != nil {
		s.OnMerge(s)
	}
	return nil
}

func (s *Session) GroupAdd(group string, kind engine.Kind, ids []int) error {
	if err := s.record("group"); err != nil {
		return err
	}
	g, ok := s.Groups[group]
	if !ok {
		g = Group{}
		s.Groups[group] = g
	}
	g[kind] = append(g[kind], ids...)
	return nil
}

func (s *Session) SetVisible(kind engine.Kind, ids []int) error {
	if err := s.record("visible"); err != nil {
		return err
	}
	for _, id := range ids {
		s.Visible[id] = true
	}
	return nil
}

func (s *Session) Scale(ids []int, factor float64) error {
	if err := s.record("scale"); err != nil {
		return err
	}
	for _, id := range ids {
		s.Scaled[id] = factor
	}
	return nil
}

func (s *Session) Mesh(ids []int, sizing string) error {
	if err := s.record("mesh"); err != nil {
		return err
	}
	for _, id := range ids {
		s.Meshed[id] = sizing
	}
	return nil
}

func (s *Session) SeparateBodies() error {
	return s.record("separate")
}

func (s *Session) Validate(kind engine.Kind) error {
	return s.record("validate")
}

func (s *Session) ExportMesh(path string, opts engine.MeshExportOptions) error {
	if err := s.record("export_mesh"); err != nil {
		return err
	}
	s.Exports[path] = opts
	return os.WriteFile(path, []byte("h5m"), 0644)
}

func (s *Session) ExportVolumeMesh(path string) error {
	if err := s.record("export_volume_mesh"); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("exo"), 0644)
}

func (s *Session) SaveSession(path string) error {
	if err := s.record("save"); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("cub"), 0644)
}

func (s *Session) IsPlanar(id int) (bool, error) {
	if err := s.record("planar"); err != nil {
		return false, err
	}
	sf, ok := s.surfaces[id]
	if !ok {
		return false, fmt.Errorf("surface %d does not exist", id)
	}
	return sf.planar, nil
}

func (s *Session) Close() error {
	s.Closed = true
	return nil
}

func keys(set map[int]bool) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return sorted(ids)
}

func sorted(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}

func without(ids []int, id int) []int {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
