package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
	"github.com/fusion-energy/cad-to-h5m/internal/export"
	"github.com/fusion-energy/cad-to-h5m/internal/logging"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"github.com/fusion-energy/cad-to-h5m/internal/tagger"
	"gopkg.in/yaml.v3"
)

// ReflectiveFlag marks a part as the reflecting wedge in a part spec
const ReflectiveFlag = "reflective"

// Part is one CAD part of a conversion config
type Part struct {
	CADFilename         string   `yaml:"cad_filename"`
	MaterialTag         string   `yaml:"material_tag"`
	Scale               *float64 `yaml:"scale,omitempty"`
	TetMesh             *string  `yaml:"tet_mesh,omitempty"`
	SurfaceReflectivity bool     `yaml:"surface_reflectivity,omitempty"`
}

// Conversion is the content of a conversion config file
type Conversion struct {
	Engine      engine.Config      `yaml:"engine"`
	Output      models.OutputFiles `yaml:"output"`
	Options     models.Options     `yaml:"options"`
	Logging     logging.Config     `yaml:"logging"`
	MetricsFile string             `yaml:"metrics_file"`
	Parts       []Part             `yaml:"parts"`
}

// Default returns a conversion config without parts
func Default() *Conversion {
	return &Conversion{
		Output:  models.DefaultOutputFiles(),
		Options: models.DefaultOptions(),
		Logging: logging.DefaultConfig(),
	}
}

// Details converts the parts into the entry list the pipeline works on
func (c *Conversion) Details() models.GeometryDetails {
	details := make(models.GeometryDetails, 0, len(c.Parts))
	for _, part := range c.Parts {
		details = append(details, &models.InputEntry{
			CADFilename:       part.CADFilename,
			MaterialTag:       part.MaterialTag,
			Scale:             part.Scale,
			TetMesh:           part.TetMesh,
			TrackReflectivity: part.SurfaceReflectivity,
		})
	}
	return details
}

// Loader handles loading and validating YAML configuration files
type Loader struct{}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a YAML configuration file
func (l *Loader) Load(configPath string) (*Conversion, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so omitted keys keep their default value
	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := l.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Part files are relative to the config file
	absConfigDir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path of config directory: %w", err)
	}
	for i := range config.Parts {
		part := &config.Parts[i]
		if !filepath.IsAbs(part.CADFilename) {
			part.CADFilename = filepath.Join(absConfigDir, part.CADFilename)
		}
	}

	return config, nil
}

// Validate checks if the configuration is valid. Input files are not
// checked here, see preconditions.ValidateInputs.
func (l *Loader) Validate(config *Conversion) error {
	if len(config.Parts) == 0 {
		return fmt.Errorf("at least one part must be defined")
	}

	for i, part := range config.Parts {
		if err := ValidatePart(part); err != nil {
			return fmt.Errorf("part %d: %w", i+1, err)
		}
	}

	if err := export.ValidateOutputNames(config.Output); err != nil {
		return err
	}

	if config.Options.MergeTolerance <= 0 {
		return fmt.Errorf("merge_tolerance must be positive, got %g", config.Options.MergeTolerance)
	}
	if config.Options.FacetingTolerance <= 0 {
		return fmt.Errorf("faceting_tolerance must be positive, got %g", config.Options.FacetingTolerance)
	}

	return nil
}

// ValidatePart checks the fields of a single part
func ValidatePart(part Part) error {
	if part.CADFilename == "" {
		return fmt.Errorf("cad_filename is required")
	}
	entry := &models.InputEntry{CADFilename: part.CADFilename, MaterialTag: part.MaterialTag}
	if err := tagger.CheckTag(entry); err != nil {
		return err
	}
	if part.Scale != nil && *part.Scale <= 0 {
		return fmt.Errorf("%s: scale must be positive, got %g", part.CADFilename, *part.Scale)
	}
	return nil
}

// ParsePartSpec parses the command line shorthand "file:tag[:reflective]".
// The file may itself contain colons, the tag may not.
func ParsePartSpec(spec string) (Part, error) {
	part, ok := splitPartSpec(spec)
	if trimmed, found := strings.CutSuffix(spec, ":"+ReflectiveFlag); found {
		// "wedge.stp:reflective" names a material, not the flag
		if flagged, valid := splitPartSpec(trimmed); valid {
			part, ok = flagged, true
			part.SurfaceReflectivity = true
		}
	}
	if !ok {
		return Part{}, fmt.Errorf("invalid part %q (expected file:material_tag[:%s])", spec, ReflectiveFlag)
	}

	if err := ValidatePart(part); err != nil {
		return Part{}, err
	}
	return part, nil
}

func splitPartSpec(spec string) (Part, bool) {
	idx := strings.LastIndex(spec, ":")
	if idx <= 0 || idx == len(spec)-1 {
		return Part{}, false
	}
	return Part{CADFilename: spec[:idx], MaterialTag: spec[idx+1:]}, true
}
