package inspect

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"github.com/fusion-energy/cad-to-h5m/internal/ui"
)

// DetailsPrinter prints the entries of a geometry details record
type DetailsPrinter struct{}

// NewDetailsPrinter creates a new DetailsPrinter
func NewDetailsPrinter() *DetailsPrinter {
	return &DetailsPrinter{}
}

// FormatIDs renders ids as a space separated list, "-" when empty
func FormatIDs(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

// PrintTable prints one row per entry
func (p *DetailsPrinter) PrintTable(details models.GeometryDetails) {
	ui.PrintTableHeader("File", "Material", "Volumes", "Reflectors")
	for _, entry := range details {
		reflectors := ""
		if entry.Reflectivity != nil {
			reflectors = FormatIDs(entry.Reflectivity.Reflectors())
		}
		ui.PrintTableRow(
			filepath.Base(entry.CADFilename),
			entry.MaterialTag,
			FormatIDs(entry.Volumes),
			reflectors,
		)
	}
}

// PrintReflectivity lists every classified surface of the flagged entries
func (p *DetailsPrinter) PrintReflectivity(details models.GeometryDetails) {
	for _, entry := range details {
		if entry.Reflectivity == nil {
			continue
		}
		ids := make([]int, 0, len(entry.Reflectivity))
		for id := range entry.Reflectivity {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		ui.PrintStep(filepath.Base(entry.CADFilename))
		for _, id := range ids {
			state := "not reflecting"
			if entry.Reflectivity[id].Reflector {
				state = "reflecting"
			}
			ui.PrintItem(fmt.Sprintf("surface %d: %s", id, state))
		}
	}
}
