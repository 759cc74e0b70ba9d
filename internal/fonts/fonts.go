package fonts

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions we consider as font files.
var Exts = []string{".ttf", ".otf"}

// BaseDirs returns candidate base directories for fonts (relative to process cwd).
func BaseDirs() []string {
	return []string{"assets/fonts", "../../assets/fonts"}
}

// ScanDir returns relative paths of all font files under dir (e.g. "Inter/Inter-Regular.ttf"),
// sorted. Paths use forward slashes. A missing dir yields no paths and no error.
func ScanDir(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, e := range Exts {
			if ext == e {
				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}
				out = append(out, filepath.ToSlash(rel))
				return nil
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// normalizeForMatch lowercases and removes spaces, dashes, and underscores for fuzzy matching.
func normalizeForMatch(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// Find searches BaseDirs for a font whose path matches search. See FindIn.
func Find(search string) (string, error) {
	return FindIn(BaseDirs(), search)
}

// FindIn returns the full path of the first font under dirs whose relative path contains search
// (case, spaces, dashes and underscores ignored). An empty search matches any font. When several
// files match, one with "regular" in its path wins. Returns os.ErrNotExist if nothing matches.
func FindIn(dirs []string, search string) (string, error) {
	norm := normalizeForMatch(search)
	var candidates []string
	for _, base := range dirs {
		list, err := ScanDir(base)
		if err != nil {
			continue
		}
		for _, rel := range list {
			if strings.Contains(normalizeForMatch(rel), norm) {
				candidates = append(candidates, filepath.Join(base, filepath.FromSlash(rel)))
			}
		}
	}
	if len(candidates) == 0 {
		return "", os.ErrNotExist
	}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), "regular") {
			return c, nil
		}
	}
	return candidates[0], nil
}
