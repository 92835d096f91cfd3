package selector

import "strings"

// Rules is the static set of ignore criteria and the code-extension allow-list.
// Built once and shared read-only across goroutines.
type Rules struct {
	IgnoredDirs       map[string]struct{} // lower-cased, matched case-insensitively
	IgnoredFiles      map[string]struct{} // exact base name
	IgnoredExtensions []string            // suffix match
	CodeExtensions    []string            // suffix match, file must hit one
}

var defaultRules = Rules{
	IgnoredDirs: foldedSet(
		"node_modules", ".git", ".vscode", "__pycache__", "target", "build", ".idea",
	),
	IgnoredFiles: set(
		"package-lock.json", "yarn.lock", "Cargo.lock", ".gitignore", "README.md",
	),
	IgnoredExtensions: []string{
		".log", ".min.js", ".lock", ".html", ".json",
	},
	CodeExtensions: []string{
		".env", ".py", ".js", ".ts", ".rs", ".go", ".sh", ".java", ".yml", ".yaml", ".toml", ".md",
	},
}

// DefaultRules returns the compiled-in rule tables.
func DefaultRules() Rules {
	return defaultRules
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func foldedSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[strings.ToLower(n)] = struct{}{}
	}
	return m
}

// IsIgnoredDir reports whether a directory base name is pruned from the walk.
func (r Rules) IsIgnoredDir(name string) bool {
	_, ok := r.IgnoredDirs[strings.ToLower(name)]
	return ok
}

// IsIgnoredFile reports whether a file base name is excluded by exact name or
// by extension suffix.
func (r Rules) IsIgnoredFile(name string) bool {
	if _, ok := r.IgnoredFiles[name]; ok {
		return true
	}
	for _, ext := range r.IgnoredExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// IsCodeFile reports whether a file name ends with an allowed code extension.
func (r Rules) IsCodeFile(name string) bool {
	for _, ext := range r.CodeExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
