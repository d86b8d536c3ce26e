// Package stack identifies the technology stack of a workspace from its
// file names. The detected tags drive which command allowlist sets the
// policy layer activates.
package stack

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Tech tags a detected technology.
type Tech string

const (
	TechGo     Tech = "go"
	TechRust   Tech = "rust"
	TechNode   Tech = "node"
	TechPython Tech = "python"
	TechJVM    Tech = "jvm"
	TechCPP    Tech = "cpp"
)

// All lists every tech this package can detect, in stable order.
func All() []Tech {
	return []Tech{TechCPP, TechGo, TechJVM, TechNode, TechPython, TechRust}
}

// Detect reports the technologies present in a file listing. Paths are
// matched by base name and extension, case-insensitively. The result is
// sorted and deduplicated.
func Detect(files []string) []Tech {
	found := make(map[Tech]bool)

	for _, path := range files {
		lower := strings.ToLower(filepath.Base(path))

		if lower == "go.mod" || hasExt(lower, "go") {
			found[TechGo] = true
		}
		if lower == "cargo.toml" || hasExt(lower, "rs") {
			found[TechRust] = true
		}
		if lower == "package.json" || lower == "pnpm-lock.yaml" || lower == "yarn.lock" ||
			hasExt(lower, "ts") || hasExt(lower, "tsx") || hasExt(lower, "js") || hasExt(lower, "jsx") {
			found[TechNode] = true
		}
		if lower == "pyproject.toml" || lower == "requirements.txt" || lower == "poetry.lock" ||
			hasExt(lower, "py") {
			found[TechPython] = true
		}
		if lower == "pom.xml" || lower == "build.gradle" || lower == "build.gradle.kts" ||
			lower == "mvnw" || lower == "gradlew" ||
			hasExt(lower, "java") || hasExt(lower, "kt") {
			found[TechJVM] = true
		}
		if lower == "cmakelists.txt" || lower == "makefile" ||
			hasExt(lower, "c") || hasExt(lower, "cc") || hasExt(lower, "cpp") ||
			hasExt(lower, "h") || hasExt(lower, "hpp") {
			found[TechCPP] = true
		}
	}

	if len(found) == 0 {
		return nil
	}

	techs := make([]Tech, 0, len(found))
	for tech := range found {
		techs = append(techs, tech)
	}
	sort.Slice(techs, func(i, j int) bool { return techs[i] < techs[j] })
	return techs
}

// DetectDir walks a workspace and detects its stack. Hidden directories and
// common dependency trees are skipped.
func DetectDir(root string) ([]Tech, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skippedDir(name)) {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Detect(files), nil
}

func skippedDir(name string) bool {
	switch name {
	case "node_modules", "target", "vendor", "dist", "build", "__pycache__":
		return true
	}
	return false
}

func hasExt(lower, ext string) bool {
	return strings.HasSuffix(lower, "."+ext)
}
