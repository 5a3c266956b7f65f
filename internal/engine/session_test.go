package engine

import (
	"errors"
	"testing"

	"github.com/fusion-energy/cad-to-h5m/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Commander that records every command it receives
type recorder struct {
	commands []string
	lists    map[string][]int
	planar   map[int]bool
	failOn   string
	closed   bool
}

func newRecorder() *recorder {
	return &recorder{lists: map[string][]int{}, planar: map[int]bool{}}
}

func (r *recorder) Execute(command string) error {
	r.commands = append(r.commands, command)
	if r.failOn != "" && command == r.failOn {
		return &CommandError{Command: command, Message: "rejected"}
	}
	return nil
}

func (r *recorder) List(kind Kind, scope string) ([]int, error) {
	ids, ok := r.lists[string(kind)+" "+scope]
	if !ok {
		return nil, errors.New("unknown list")
	}
	return ids, nil
}

func (r *recorder) Planar(surface int) (bool, error) {
	return r.planar[surface], nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestCommandRendering(t *testing.T) {
	tests := []struct {
		name string
		run  func(s Session) error
		want []string
	}{
		{
			name: "import step",
			run: func(s Session) error {
				return s.Import(FormatSTEP, "parts/blanket.stp", SolidsOnly())
			},
			want: []string{`import step "parts/blanket.stp" separate_bodies no_surfaces no_curves no_vertices`},
		},
		{
			name: "import acis without options",
			run: func(s Session) error {
				return s.Import(FormatACIS, "a.sat", ImportOptions{})
			},
			want: []string{`import acis "a.sat"`},
		},
		{
			name: "unite restricted to candidates",
			run:  func(s Session) error { return s.Unite([]int{3, 4, 5}) },
			want: []string{"unite volume 3 4 5 with volume 3 4 5"},
		},
		{
			name: "unite of one volume is a no-op",
			run:  func(s Session) error { return s.Unite([]int{3}) },
			want: nil,
		},
		{
			name: "group add",
			run:  func(s Session) error { return s.GroupAdd("mat:steel", KindVolume, []int{1, 2}) },
			want: []string{`group "mat:steel" add volume 1 2`},
		},
		{
			name: "group name with quote",
			run:  func(s Session) error { return s.GroupAdd(`a"b`, KindSurface, []int{7}) },
			want: []string{`group "a\"b" add surface 7`},
		},
		{
			name: "visibility",
			run:  func(s Session) error { return s.SetVisible(KindSurface, []int{7}) },
			want: []string{"surface 7 visibility on"},
		},
		{
			name: "scale",
			run:  func(s Session) error { return s.Scale([]int{1, 2}, 0.1) },
			want: []string{"volume 1 2 scale 0.1"},
		},
		{
			name: "imprint",
			run:  func(s Session) error { return s.ImprintAll() },
			want: []string{"imprint body all"},
		},
		{
			name: "merge",
			run:  func(s Session) error { return s.MergeAll(1e-4) },
			want: []string{"merge tolerance 0.0001", "merge volume all group_results", "graphics tol angle 3"},
		},
		{
			name: "separate and validate",
			run: func(s Session) error {
				if err := s.SeparateBodies(); err != nil {
					return err
				}
				return s.Validate(KindVolume)
			},
			want: []string{"separate body all", "validate volume all"},
		},
		{
			name: "tet mesh with sizing",
			run:  func(s Session) error { return s.Mesh([]int{4}, "size 2") },
			want: []string{"volume 4 scheme tet", "volume 4 size 2", "mesh volume 4"},
		},
		{
			name: "tet mesh with default sizing",
			run:  func(s Session) error { return s.Mesh([]int{4, 5}, "") },
			want: []string{"volume 4 scheme tet", "mesh volume 4", "volume 5 scheme tet", "mesh volume 5"},
		},
		{
			name: "watertight dagmc export",
			run: func(s Session) error {
				return s.ExportMesh("out/dagmc.h5m", MeshExportOptions{FacetingTolerance: 0.01, MakeWatertight: true})
			},
			want: []string{"set attribute on", `export dagmc "out/dagmc.h5m" faceting_tolerance 0.01 make_watertight`},
		},
		{
			name: "plain dagmc export",
			run: func(s Session) error {
				return s.ExportMesh("dagmc.h5m", MeshExportOptions{FacetingTolerance: 0.005})
			},
			want: []string{"set attribute on", `export dagmc "dagmc.h5m" faceting_tolerance 0.005`},
		},
		{
			name: "exodus export",
			run:  func(s Session) error { return s.ExportVolumeMesh("umesh.exo") },
			want: []string{"set exodus netcdf4 off", "set large exodus file on", `export mesh "umesh.exo" overwrite`},
		},
		{
			name: "save session",
			run:  func(s Session) error { return s.SaveSession("dagmc.cub") },
			want: []string{`save as "dagmc.cub" overwrite`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecorder()
			s := NewCommandSession(r, nil, nil)
			require.NoError(t, tt.run(s))
			assert.Equal(t, tt.want, r.commands)
		})
	}
}

func TestCommandSessionStopsOnFirstError(t *testing.T) {
	r := newRecorder()
	r.failOn = "merge tolerance 0.5"
	s := NewCommandSession(r, nil, nil)

	err := s.MergeAll(0.5)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "merge tolerance 0.5", cmdErr.Command)
	assert.Equal(t, []string{"merge tolerance 0.5"}, r.commands)
}

func TestQueryAndVertexCount(t *testing.T) {
	r := newRecorder()
	r.lists["volume all"] = []int{1, 2}
	r.lists["vertex in surface 9"] = []int{10, 11, 12, 13}
	s := NewCommandSession(r, nil, nil)

	ids, err := s.Query(KindVolume, All())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)

	n, err := VertexCount(s, 9)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = s.Query(KindBody, All())
	assert.Error(t, err)
}

func TestScopeRendering(t *testing.T) {
	assert.Equal(t, "all", All().String())
	assert.Equal(t, "all", Scope{}.String())
	assert.Equal(t, "in volume 3 4", In(KindVolume, 3, 4).String())
}

func TestCommandSessionRecordsMetrics(t *testing.T) {
	r := newRecorder()
	r.lists["volume all"] = []int{1}
	collector := metrics.NewCollector()
	s := NewCommandSession(r, nil, collector)

	require.NoError(t, s.ImprintAll())
	_, err := s.Query(KindVolume, All())
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(collector.Registry(), "cad_to_h5m_engine_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCloseClosesCommander(t *testing.T) {
	r := newRecorder()
	s := NewCommandSession(r, nil, nil)
	require.NoError(t, s.Close())
	assert.True(t, r.closed)
}
