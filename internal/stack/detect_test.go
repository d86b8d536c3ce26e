package stack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []Tech
	}{
		{
			name:  "go module",
			files: []string{"go.mod", "main.go", "README.md"},
			want:  []Tech{TechGo},
		},
		{
			name:  "rust by manifest",
			files: []string{"Cargo.toml", "src/lib.rs"},
			want:  []Tech{TechRust},
		},
		{
			name:  "node by lockfile",
			files: []string{"yarn.lock", "index.ts"},
			want:  []Tech{TechNode},
		},
		{
			name:  "mixed repo sorted",
			files: []string{"go.mod", "scripts/deploy.py", "web/app.tsx"},
			want:  []Tech{TechGo, TechNode, TechPython},
		},
		{
			name:  "case insensitive",
			files: []string{"MAKEFILE", "Main.JAVA"},
			want:  []Tech{TechCPP, TechJVM},
		},
		{
			name:  "nothing recognized",
			files: []string{"README.md", "LICENSE"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.files))
		})
	}
}

func TestDetectDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "pkg", "index.js"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "config.py"), nil, 0o644))

	techs, err := DetectDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []Tech{TechGo}, techs, "dependency and hidden dirs are skipped")
}
