package editor

import (
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// StaticWindow is a Window with a fixed set of folders.
type StaticWindow struct {
	// File is the path of the active file, if any.
	File string
	// Project is the path of the project file, if any.
	Project string
	// Dirs are the project folders, the first one being the primary folder.
	Dirs []string
	// Extra variables, overriding the derived ones.
	Extra map[string]string
}

func (w *StaticWindow) Folders() []string {
	return slices.Clone(w.Dirs)
}

func (w *StaticWindow) Variables() map[string]string {
	var folder string
	if len(w.Dirs) > 0 {
		folder = w.Dirs[0]
	}

	vars := WindowVariables(w.File, folder, w.Project)
	maps.Copy(vars, w.Extra)

	return vars
}

// WindowVariables derives the host path variables for the given active file, primary folder and project file.
// Variables describing a missing input are omitted.
func WindowVariables(file string, folder string, project string) map[string]string {
	vars := map[string]string{
		"platform": platformName(),
	}

	if home, err := os.UserHomeDir(); err == nil {
		vars["home"] = home
	}

	if file != "" {
		base := filepath.Base(file)
		ext := filepath.Ext(base)

		vars["file"] = file
		vars["file_path"] = filepath.Dir(file)
		vars["file_name"] = base
		vars["file_base_name"] = strings.TrimSuffix(base, ext)
		vars["file_extension"] = strings.TrimPrefix(ext, ".")
	}

	if folder != "" {
		vars["folder"] = folder
	}

	if project != "" {
		base := filepath.Base(project)

		vars["project"] = project
		vars["project_path"] = filepath.Dir(project)
		vars["project_name"] = base
		vars["project_base_name"] = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return vars
}

func platformName() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	default:
		return runtime.GOOS
	}
}
