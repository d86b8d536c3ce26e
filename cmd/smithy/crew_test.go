package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCrew(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crew.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCrew(t *testing.T) {
	path := writeCrew(t, `
coordinator:
  instruction: "You coordinate a crew."
  routing: keyword
agents:
  - name: reviewer
    remit: "code review and style feedback"
    tools: [read_file, search]
    max_tool_steps: 10
    allowlist: ["golangci-lint run"]
  - name: tester
    remit: "writing and running tests"
`)

	crew, err := LoadCrew(path)
	require.NoError(t, err)

	assert.Equal(t, "You coordinate a crew.", crew.Coordinator.Instruction)
	assert.Equal(t, RoutingKeyword, crew.Coordinator.Routing)
	require.Len(t, crew.Agents, 2)
	assert.Equal(t, "reviewer", crew.Agents[0].Name)
	assert.Equal(t, []string{"read_file", "search"}, crew.Agents[0].Tools)
	assert.Equal(t, 10, crew.Agents[0].MaxToolSteps)
	assert.Equal(t, []string{"golangci-lint run"}, crew.Agents[0].Allowlist)
	assert.Empty(t, crew.Agents[1].Tools)
}

func TestLoadCrewDefaults(t *testing.T) {
	path := writeCrew(t, `
agents:
  - name: docs
    remit: "documentation"
`)

	crew, err := LoadCrew(path)
	require.NoError(t, err)

	assert.Equal(t, defaultCoordinatorInstruction, crew.Coordinator.Instruction)
	assert.Equal(t, RoutingModel, crew.Coordinator.Routing)
}

func TestLoadCrewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no agents", content: `coordinator: {instruction: hi}`, want: "no agents"},
		{name: "missing name", content: "agents:\n  - remit: stuff\n", want: "has no name"},
		{name: "missing remit", content: "agents:\n  - name: a\n", want: "has no remit"},
		{
			name:    "duplicate name",
			content: "agents:\n  - {name: a, remit: x}\n  - {name: a, remit: y}\n",
			want:    "duplicate agent name",
		},
		{
			name:    "unknown routing",
			content: "coordinator: {routing: dice}\nagents:\n  - {name: a, remit: x}\n",
			want:    "unknown routing mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCrew(writeCrew(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadCrewMissingFile(t *testing.T) {
	_, err := LoadCrew(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read crew file")
}
