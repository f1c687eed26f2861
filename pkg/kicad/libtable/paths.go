package libtable

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// TableFileName is the symbol library table file name in both locations.
	TableFileName = "sym-lib-table"

	// ConfigHomeEnv overrides the global KiCad configuration directory.
	ConfigHomeEnv = "KICAD_CONFIG_HOME"
)

// DefaultConfigHome returns the directory holding the global sym-lib-table:
// $KICAD_CONFIG_HOME when set, otherwise the platform default.
func DefaultConfigHome() string {
	if dir := os.Getenv(ConfigHomeEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Roaming", "kicad")
	}
	return filepath.Join(home, ".config", "kicad")
}

// SearchPaths returns the existing sym-lib-table files, global first and
// board-local second.
func SearchPaths(configHome, boardDir string) []string {
	var paths []string
	for _, dir := range []string{configHome, boardDir} {
		if dir == "" {
			continue
		}
		file := filepath.Join(dir, TableFileName)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			paths = append(paths, file)
		}
	}
	return paths
}
