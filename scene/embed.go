package scene

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Dir is the on-disk directory whose files take precedence over the
// embedded scenes.
var Dir = "scenes"

//go:embed *.yaml *.tengo
var ScenesFS embed.FS

// Load returns a scene file, preferring Dir over the embedded copy.
func Load(name string) ([]byte, error) {
	clean := cleanScenePath(name)
	if data, err := os.ReadFile(diskScenePath(clean)); err == nil {
		return data, nil
	}
	return ScenesFS.ReadFile(clean)
}

// ModTime reports the modification time of the on-disk copy of name.
func ModTime(name string) (time.Time, bool) {
	clean := cleanScenePath(name)
	info, err := os.Stat(diskScenePath(clean))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// List returns the names of all known scenes, embedded and on disk.
func List() []string {
	seen := map[string]bool{}
	if entries, err := fs.ReadDir(ScenesFS, "."); err == nil {
		for _, e := range entries {
			if isSpecFile(e.Name()) {
				seen[e.Name()] = true
			}
		}
	}
	if entries, err := os.ReadDir(Dir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && isSpecFile(e.Name()) {
				seen[e.Name()] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func cleanScenePath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if after, ok := strings.CutPrefix(s, Dir+"/"); ok {
		s = after
	}
	if path.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}

func diskScenePath(clean string) string {
	return filepath.Join(Dir, filepath.FromSlash(clean))
}
