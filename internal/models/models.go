package models

import "sort"

// Reflector is the classification of one surface of a reflecting wedge
type Reflector struct {
	Reflector bool `json:"reflector" yaml:"reflector"`
}

// SurfaceReflectivity maps surface ids to their reflector classification
type SurfaceReflectivity map[int]Reflector

// Reflectors returns the ids currently marked as reflecting
func (s SurfaceReflectivity) Reflectors() []int {
	var ids []int
	for id, r := range s {
		if r.Reflector {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// InputEntry is one part of the caller-supplied part list.
//
// Optional inputs are pointers: nil means absent. Volumes and Reflectivity are
// filled in by the pipeline.
type InputEntry struct {
	CADFilename       string   `json:"cad_filename" yaml:"cad_filename"`
	MaterialTag       string   `json:"material_tag" yaml:"material_tag"`
	TetMesh           *string  `json:"tet_mesh,omitempty" yaml:"tet_mesh,omitempty"`
	Scale             *float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	TrackReflectivity bool     `json:"-" yaml:"-"`

	Volumes      []int               `json:"volumes" yaml:"volumes"`
	Reflectivity SurfaceReflectivity `json:"surface_reflectivity,omitempty" yaml:"surface_reflectivity,omitempty"`
}

// GeometryDetails is the list of input entries enriched with their volumes
// and reflecting-surface classification
type GeometryDetails []*InputEntry

// TotalVolumes returns the number of volumes owned by all entries
func (g GeometryDetails) TotalVolumes() int {
	total := 0
	for _, entry := range g {
		total += len(entry.Volumes)
	}
	return total
}

// RequiresTetMesh reports whether any entry asked for a volumetric mesh
func (g GeometryDetails) RequiresTetMesh() bool {
	for _, entry := range g {
		if entry.TetMesh != nil {
			return true
		}
	}
	return false
}

// OutputFiles holds the destination paths of a conversion. Empty means "do not write".
type OutputFiles struct {
	H5M             string `yaml:"h5m"`
	Exo             string `yaml:"exo"`
	Cubit           string `yaml:"cubit"`
	GeometryDetails string `yaml:"geometry_details"`
}

// Options configures the geometry operations of a conversion
type Options struct {
	MergeTolerance                float64 `yaml:"merge_tolerance"`
	FacetingTolerance             float64 `yaml:"faceting_tolerance"`
	MakeWatertight                bool    `yaml:"make_watertight"`
	Imprint                       bool    `yaml:"imprint"`
	SurfaceReflectivityName       string  `yaml:"surface_reflectivity_name"`
	ImplicitComplementMaterialTag string  `yaml:"implicit_complement_material_tag"`
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		MergeTolerance:          1e-4,
		FacetingTolerance:       1e-2,
		MakeWatertight:          true,
		Imprint:                 true,
		SurfaceReflectivityName: "reflective",
	}
}

// DefaultOutputFiles returns the default output paths
func DefaultOutputFiles() OutputFiles {
	return OutputFiles{
		H5M:             "dagmc.h5m",
		GeometryDetails: "geometry_details.json",
	}
}
