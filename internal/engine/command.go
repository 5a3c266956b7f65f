package engine

import (
	"strconv"
	"strings"
)

// Command builds one line of the engine's command language from typed parts
type Command struct {
	parts []string
}

// NewCommand starts a command with the given keywords
func NewCommand(keywords ...string) *Command {
	c := &Command{}
	return c.Keyword(keywords...)
}

// Keyword appends bare keywords
func (c *Command) Keyword(keywords ...string) *Command {
	for _, k := range keywords {
		if k != "" {
			c.parts = append(c.parts, k)
		}
	}
	return c
}

// IDs appends an entity list such as "volume 1 2 3"
func (c *Command) IDs(kind Kind, ids []int) *Command {
	c.parts = append(c.parts, string(kind))
	for _, id := range ids {
		c.parts = append(c.parts, strconv.Itoa(id))
	}
	return c
}

// Quoted appends a double-quoted string argument
func (c *Command) Quoted(s string) *Command {
	c.parts = append(c.parts, `"`+strings.ReplaceAll(s, `"`, `\"`)+`"`)
	return c
}

// Float appends a number in the shortest form that round-trips
func (c *Command) Float(f float64) *Command {
	c.parts = append(c.parts, strconv.FormatFloat(f, 'g', -1, 64))
	return c
}

// Raw appends a caller-supplied directive verbatim, e.g. a mesh sizing "size 2"
func (c *Command) Raw(directive string) *Command {
	return c.Keyword(strings.Fields(directive)...)
}

// Verb returns the first keyword of the command
func (c *Command) Verb() string {
	if len(c.parts) == 0 {
		return ""
	}
	return c.parts[0]
}

// String renders the command
func (c *Command) String() string {
	return strings.Join(c.parts, " ")
}

func importCommand(format Format, path string, opts ImportOptions) *Command {
	c := NewCommand("import", string(format)).Quoted(path)
	if opts.SeparateBodies {
		c.Keyword("separate_bodies")
	}
	if opts.NoSurfaces {
		c.Keyword("no_surfaces")
	}
	if opts.NoCurves {
		c.Keyword("no_curves")
	}
	if opts.NoVertices {
		c.Keyword("no_vertices")
	}
	return c
}

func uniteCommand(ids []int) *Command {
	return NewCommand("unite").IDs(KindVolume, ids).Keyword("with").IDs(KindVolume, ids)
}

func groupAddCommand(group string, kind Kind, ids []int) *Command {
	return NewCommand("group").Quoted(group).Keyword("add").IDs(kind, ids)
}

func visibilityCommand(kind Kind, ids []int) *Command {
	return NewCommand().IDs(kind, ids).Keyword("visibility", "on")
}

func scaleCommand(ids []int, factor float64) *Command {
	return NewCommand().IDs(KindVolume, ids).Keyword("scale").Float(factor)
}

func meshCommands(volume int, sizing string) []*Command {
	cmds := []*Command{
		NewCommand().IDs(KindVolume, []int{volume}).Keyword("scheme", "tet"),
	}
	if strings.TrimSpace(sizing) != "" {
		cmds = append(cmds, NewCommand().IDs(KindVolume, []int{volume}).Raw(sizing))
	}
	return append(cmds, NewCommand("mesh").IDs(KindVolume, []int{volume}))
}

func mergeCommands(tolerance float64) []*Command {
	return []*Command{
		NewCommand("merge", "tolerance").Float(tolerance),
		NewCommand("merge").IDs(KindVolume, nil).Keyword("all", "group_results"),
		NewCommand("graphics", "tol", "angle", "3"),
	}
}

func exportMeshCommands(path string, opts MeshExportOptions) []*Command {
	export := NewCommand("export", "dagmc").Quoted(path).Keyword("faceting_tolerance").Float(opts.FacetingTolerance)
	if opts.MakeWatertight {
		export.Keyword("make_watertight")
	}
	return []*Command{
		NewCommand("set", "attribute", "on"),
		export,
	}
}

func exportVolumeMeshCommands(path string) []*Command {
	return []*Command{
		NewCommand("set", "exodus", "netcdf4", "off"),
		NewCommand("set", "large", "exodus", "file", "on"),
		NewCommand("export", "mesh").Quoted(path).Keyword("overwrite"),
	}
}
