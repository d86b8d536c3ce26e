package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crucible/internal/tool"
)

func readFileDecl() tool.Declaration {
	return tool.Declaration{
		Name:        "read_file",
		Description: "Read a file",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":   {Type: tool.TypeString},
				"offset": {Type: tool.TypeInteger},
				"mode":   {Type: tool.TypeString, Enum: []string{"text", "raw"}},
			},
			Required: []string{"path"},
		},
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(readFileDecl()))
	assert.ErrorIs(t, r.Register(readFileDecl()), ErrDuplicateTool)
}

func TestDeclarationsKeepRegistrationOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(tool.Declaration{Name: "b_tool"}))
	require.NoError(t, r.Register(tool.Declaration{Name: "a_tool"}))

	decls := r.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, "b_tool", decls[0].Name)
	assert.Equal(t, "a_tool", decls[1].Name)
}

func TestValidate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(readFileDecl()))

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{name: "valid", args: map[string]any{"path": "main.go"}},
		{name: "valid with integer", args: map[string]any{"path": "main.go", "offset": float64(10)}},
		{name: "missing required", args: map[string]any{"offset": float64(1)}, wantErr: "required parameter missing"},
		{name: "unknown parameter", args: map[string]any{"path": "x", "extra": 1}, wantErr: "unknown parameter"},
		{name: "wrong type", args: map[string]any{"path": 42}, wantErr: "expected string"},
		{name: "fractional integer", args: map[string]any{"path": "x", "offset": 1.5}, wantErr: "expected integer"},
		{name: "enum violation", args: map[string]any{"path": "x", "mode": "binary"}, wantErr: "not in enum"},
		{name: "enum ok", args: map[string]any{"path": "x", "mode": "raw"}},
		{name: "null value", args: map[string]any{"path": nil}, wantErr: "got null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate("read_file", tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrSchema)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateUnknownTool(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.Validate("nope", nil), ErrUnknownTool)
}

func TestValidateNoParamsTool(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(tool.Declaration{Name: "noop"}))

	assert.NoError(t, r.Validate("noop", nil))
	assert.ErrorIs(t, r.Validate("noop", map[string]any{"x": 1}), ErrSchema)
}

func TestValidateArrayItems(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(tool.Declaration{
		Name: "stage_files",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"paths": {Type: tool.TypeArray, Items: &tool.Schema{Type: tool.TypeString}},
			},
			Required: []string{"paths"},
		},
	}))

	assert.NoError(t, r.Validate("stage_files", map[string]any{"paths": []any{"a.go", "b.go"}}))

	err := r.Validate("stage_files", map[string]any{"paths": []any{"a.go", 3}})
	require.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "item 1")
}
