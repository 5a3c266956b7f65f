package inspect

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/fusion-energy/cad-to-h5m/internal/export"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"github.com/fusion-energy/cad-to-h5m/internal/tagger"
	"github.com/fusion-energy/cad-to-h5m/internal/ui"
)

// Summary is an overview of a geometry details record
type Summary struct {
	Parts     int
	Volumes   int
	Materials []string
	// Wedge is the file of the first entry with a reflectivity map
	Wedge      string
	Reflectors []int
}

// Summarize builds the overview of a record
func Summarize(details models.GeometryDetails) Summary {
	s := Summary{Parts: len(details), Volumes: details.TotalVolumes()}

	seen := map[string]bool{}
	for _, entry := range details {
		group := tagger.GroupName(entry.MaterialTag)
		if !seen[group] {
			seen[group] = true
			s.Materials = append(s.Materials, group)
		}
		if s.Wedge == "" && entry.Reflectivity != nil {
			s.Wedge = entry.CADFilename
			s.Reflectors = entry.Reflectivity.Reflectors()
		}
	}
	sort.Strings(s.Materials)
	return s
}

// Inspector provides functionality to inspect geometry details records
type Inspector struct {
	printer *DetailsPrinter
}

// NewInspector creates a new Inspector
func NewInspector() *Inspector {
	return &Inspector{printer: NewDetailsPrinter()}
}

// Inspect reads and displays the contents of a geometry details file
func (i *Inspector) Inspect(filename string) error {
	if _, err := os.Stat(filename); err != nil {
		return fmt.Errorf("file not found: %s", filename)
	}

	details, err := export.ReadGeometryDetails(filename)
	if err != nil {
		return fmt.Errorf("error reading geometry details: %w", err)
	}

	ui.PrintHeader(fmt.Sprintf("Inspecting: %s", filename))
	summary := Summarize(details)
	ui.PrintKeyValue("Parts", fmt.Sprintf("%d", summary.Parts))
	ui.PrintKeyValue("Volumes", fmt.Sprintf("%d", summary.Volumes))
	ui.PrintKeyValue("Material groups", strings.Join(summary.Materials, ", "))

	ui.PrintHeader("Parts:")
	i.printer.PrintTable(details)

	if summary.Wedge != "" {
		ui.PrintHeader("Reflecting surfaces:")
		ui.PrintHighlight(fmt.Sprintf("%s: %d reflecting surface(s)", filepath.Base(summary.Wedge), len(summary.Reflectors)))
		i.printer.PrintReflectivity(details)
	}
	return nil
}

// PrintSource writes the record with syntax highlighting. formatter and
// style are chroma names, e.g. "terminal256" and "monokai".
func (i *Inspector) PrintSource(w io.Writer, filename, formatter, style string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	lexer := "json"
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		lexer = "yaml"
	}
	return quick.Highlight(w, string(data), lexer, formatter, style)
}
