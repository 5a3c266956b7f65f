package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fusion-energy/cad-to-h5m/internal/buildplan"
	"github.com/fusion-energy/cad-to-h5m/internal/config"
	"github.com/fusion-energy/cad-to-h5m/internal/inspect"
	"github.com/fusion-energy/cad-to-h5m/internal/logging"
	"github.com/fusion-energy/cad-to-h5m/internal/metrics"
	"github.com/fusion-energy/cad-to-h5m/internal/ui"
	"github.com/fusion-energy/cad-to-h5m/version"
	"go.uber.org/zap"
)

type CLI struct {
	Convert    *ConvertCmd    `cmd:"" help:"Convert CAD parts into a DAGMC h5m file"`
	Inspect    *InspectCmd    `cmd:"" help:"Show a geometry details file"`
	Version    *VersionCmd    `cmd:"" help:"Show version information"`
	Completion *CompletionCmd `cmd:"" help:"Generate shell completion script"`
}

type ConvertCmd struct {
	Parts []string `arg:"" help:"A config.yaml, or parts as file:material_tag[:reflective]"`

	Output          string `help:"Surface mesh output (default: dagmc.h5m)" short:"o"`
	Exo             string `help:"Volume mesh output (.exo)"`
	Cubit           string `help:"Save the modeling session (.cub or .cub5)"`
	GeometryDetails string `help:"Geometry details record (.json, .yaml)" name:"geometry-details"`

	EnginePath string `help:"Cubit installation directory" name:"engine-path" env:"CUBIT_PATH"`
	Bridge     string `help:"Engine bridge executable" hidden:""`

	MergeTolerance     float64 `help:"Merge tolerance (default: 1e-4)" name:"merge-tolerance"`
	FacetingTolerance  float64 `help:"Faceting tolerance (default: 1e-2)" name:"faceting-tolerance"`
	NoWatertight       bool    `help:"Do not make the surface mesh watertight" name:"no-watertight"`
	NoImprint          bool    `help:"Do not imprint bodies before merging" name:"no-imprint"`
	ReflectiveName     string  `help:"Group name of reflecting surfaces" name:"reflective-name"`
	ImplicitComplement string  `help:"Material of the implicit complement, added to the graveyard" name:"implicit-complement"`

	LogLevel    string `help:"Log level: debug, info, warn, error" name:"log-level"`
	LogFormat   string `help:"Log format: console or json" name:"log-format"`
	LogFile     string `help:"Write logs to a file instead of stderr" name:"log-file"`
	MetricsFile string `help:"Write Prometheus metrics to this file" name:"metrics-file"`
	Verbose     bool   `help:"Print every step" short:"v"`
}

// Help adds additional help text with examples
func (c *ConvertCmd) Help() string {
	return renderConvertHelp()
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// conversion loads or assembles the conversion config and applies flag overrides
func (c *ConvertCmd) conversion() (*config.Conversion, error) {
	loader := config.NewLoader()

	var conv *config.Conversion
	if len(c.Parts) == 1 && isConfigFile(c.Parts[0]) {
		loaded, err := loader.Load(c.Parts[0])
		if err != nil {
			return nil, err
		}
		conv = loaded
	} else {
		conv = config.Default()
		for _, spec := range c.Parts {
			if isConfigFile(spec) {
				return nil, fmt.Errorf("a config file cannot be combined with other parts: %s", spec)
			}
			part, err := config.ParsePartSpec(spec)
			if err != nil {
				return nil, err
			}
			conv.Parts = append(conv.Parts, part)
		}
	}

	c.applyOverrides(conv)

	if err := loader.Validate(conv); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return conv, nil
}

func (c *ConvertCmd) applyOverrides(conv *config.Conversion) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&conv.Output.H5M, c.Output)
	setString(&conv.Output.Exo, c.Exo)
	setString(&conv.Output.Cubit, c.Cubit)
	setString(&conv.Output.GeometryDetails, c.GeometryDetails)
	setString(&conv.Engine.Path, c.EnginePath)
	setString(&conv.Engine.Bridge, c.Bridge)
	setString(&conv.Options.SurfaceReflectivityName, c.ReflectiveName)
	setString(&conv.Options.ImplicitComplementMaterialTag, c.ImplicitComplement)
	setString(&conv.Logging.Level, c.LogLevel)
	setString(&conv.Logging.Format, c.LogFormat)
	setString(&conv.Logging.OutputPath, c.LogFile)
	setString(&conv.MetricsFile, c.MetricsFile)

	if c.MergeTolerance != 0 {
		conv.Options.MergeTolerance = c.MergeTolerance
	}
	if c.FacetingTolerance != 0 {
		conv.Options.FacetingTolerance = c.FacetingTolerance
	}
	if c.NoWatertight {
		conv.Options.MakeWatertight = false
	}
	if c.NoImprint {
		conv.Options.Imprint = false
	}
}

func (c *ConvertCmd) Run() error {
	ui.SetVerbose(c.Verbose)

	conv, err := c.conversion()
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(conv.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	collector := metrics.NewCollector()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	details := conv.Details()
	path, convErr := buildplan.Convert(ctx, details, buildplan.Config{
		Outputs: conv.Output,
		Options: conv.Options,
		Engine:  conv.Engine,
		Logger:  logger,
		Metrics: collector,
	})

	// Metrics are written for failed runs too
	if conv.MetricsFile != "" {
		if err := collector.WriteToTextfile(conv.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics", zap.String("path", conv.MetricsFile), zap.Error(err))
		}
	}
	if convErr != nil {
		return convErr
	}

	lines := []string{fmt.Sprintf("Surface mesh: %s", path)}
	if conv.Output.Exo != "" {
		lines = append(lines, fmt.Sprintf("Volume mesh:  %s", conv.Output.Exo))
	}
	if conv.Output.Cubit != "" {
		lines = append(lines, fmt.Sprintf("Session:      %s", conv.Output.Cubit))
	}
	if conv.Output.GeometryDetails != "" {
		lines = append(lines, fmt.Sprintf("Details:      %s", conv.Output.GeometryDetails))
	}
	ui.PrintBox(strings.Join(lines, "\n"))
	return nil
}

type InspectCmd struct {
	File  string `arg:"" help:"Geometry details file (.json, .yaml)"`
	Raw   bool   `help:"Print the file with syntax highlighting"`
	Style string `help:"Highlighting style" default:"monokai"`
}

func (c *InspectCmd) Run() error {
	inspector := inspect.NewInspector()
	if c.Raw {
		return inspector.PrintSource(os.Stdout, c.File, "terminal256", c.Style)
	}
	return inspector.Inspect(c.File)
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := version.Get()
	fmt.Println(info.String())
	return nil
}

// Parse parses command line arguments and executes the appropriate command
func Parse() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("cad-to-h5m"),
		kong.Description("Convert CAD geometry into DAGMC h5m files for neutronics"),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
