package editor_test

import (
	"path/filepath"
	"testing"

	"github.com/numtide/isorted/editor"
	"github.com/stretchr/testify/require"
)

func TestBufferSelections(t *testing.T) {
	as := require.New(t)

	b := editor.NewBuffer("import b\nimport a\n", editor.WithSelections(editor.Point(3), editor.Region{A: 9, B: 4}))
	as.Equal([]editor.Region{{A: 3, B: 3}, {A: 9, B: 4}}, b.Selections())

	// replacing collapses the selections
	b.Replace("import a\n")
	as.Equal([]editor.Region{editor.Point(0)}, b.Selections())

	// offsets past the end are clamped
	b.SetSelections([]editor.Region{{A: 3, B: 3}, {A: 9, B: 4}})
	as.Equal([]editor.Region{{A: 3, B: 3}, {A: 9, B: 4}}, b.Selections())

	b.SetSelections([]editor.Region{{A: 30, B: -1}})
	as.Equal([]editor.Region{{A: 9, B: 0}}, b.Selections())

	// callers cannot mutate internal state through the returned slice
	sel := b.Selections()
	sel[0] = editor.Point(1)
	as.Equal([]editor.Region{{A: 9, B: 0}}, b.Selections())
}

func TestRegion(t *testing.T) {
	as := require.New(t)

	r := editor.Region{A: 7, B: 2}
	as.Equal(2, r.Begin())
	as.Equal(7, r.End())
	as.False(r.Empty())
	as.True(editor.Point(4).Empty())
	as.Equal("(7, 2)", r.String())
}

func TestWindowVariables(t *testing.T) {
	as := require.New(t)

	file := filepath.Join("/src", "pkg", "module.py")
	project := filepath.Join("/src", "demo.isorted-project.toml")

	w := &editor.StaticWindow{
		File:    file,
		Project: project,
		Dirs:    []string{"/src", "/other"},
		Extra:   map[string]string{"packages": "/pkgs"},
	}

	vars := w.Variables()
	as.Equal(file, vars["file"])
	as.Equal(filepath.Join("/src", "pkg"), vars["file_path"])
	as.Equal("module.py", vars["file_name"])
	as.Equal("module", vars["file_base_name"])
	as.Equal("py", vars["file_extension"])
	as.Equal("/src", vars["folder"])
	as.Equal(project, vars["project"])
	as.Equal("demo.isorted-project.toml", vars["project_name"])
	as.Equal("demo.isorted-project", vars["project_base_name"])
	as.Equal("/pkgs", vars["packages"])
	as.NotEmpty(vars["platform"])

	as.Equal([]string{"/src", "/other"}, w.Folders())

	// nothing about the file when there is none
	vars = editor.WindowVariables("", "", "")
	as.NotContains(vars, "file")
	as.NotContains(vars, "folder")
	as.NotContains(vars, "project")
}
