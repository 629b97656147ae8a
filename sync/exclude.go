package sync

import (
	"path"
	"strings"
)

// Excluded reports whether rel (a slash-separated path relative to the
// working tree root) is protected by one of the excludes. An exclude
// protects its exact path, any path beneath it when it names a
// directory, and any path matching it as a glob pattern.
func Excluded(rel string, excludes []string) bool {
	rel = path.Clean(rel)
	for _, ex := range excludes {
		ex = path.Clean(ex)
		if ex == "." || ex == "" {
			continue
		}
		if rel == ex || strings.HasPrefix(rel, ex+"/") {
			return true
		}
		if matched, err := path.Match(ex, rel); err == nil && matched {
			return true
		}
	}
	return false
}
