package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	return &buf
}

func TestTableRowsAlign(t *testing.T) {
	buf := capture(t)

	PrintTableHeader("File", "Material", "Volumes", "Reflectors")
	PrintTableRow("blanket.stp", "mat1", "1", "")
	PrintTableRow(strings.Repeat("x", 40)+".stp", "vacuum", "2 3", "7 8")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "File")
	assert.Contains(t, lines[1], "─┼─")
	assert.Contains(t, lines[3], "...")
	assert.NotContains(t, lines[3], strings.Repeat("x", 40))
}

func TestMessagesGoToOutput(t *testing.T) {
	buf := capture(t)

	PrintSuccess("Imported 3 volumes")
	PrintError("engine crashed")
	PrintKeyValue("Output file", "dagmc.h5m")

	assert.Contains(t, buf.String(), "Imported 3 volumes")
	assert.Contains(t, buf.String(), "engine crashed")
	assert.Contains(t, buf.String(), "Output file:")
}

func TestIsVerbose(t *testing.T) {
	t.Setenv("CI", "")
	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	t.Cleanup(func() { SetVerbose(false) })
	assert.True(t, IsVerbose())
}
