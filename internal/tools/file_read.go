package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/X-Luffy/Law-Agent/internal/llm"
)

// FileRead reads a text file from beneath a configured root, rejecting
// any path that escapes it (spec §4.7: "file_read").
type FileRead struct {
	root string
}

func NewFileRead(root string) *FileRead {
	if root == "" {
		root = "."
	}
	return &FileRead{root: root}
}

func (f *FileRead) Name() string        { return "file_read" }
func (f *FileRead) Description() string { return "Reads the contents of a text file by path." }

func (f *FileRead) ToSchema() llm.ToolSchema {
	return llm.ToolSchema{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:        f.Name(),
			Description: f.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"file_path": map[string]any{
						"type":        "string",
						"description": "Path to the file, relative to the runtime's file root",
					},
				},
				"required": []string{"file_path"},
			},
		},
	}
}

func (f *FileRead) Execute(ctx context.Context, input string) (string, error) {
	rel := ExtractPrimaryArgument(input)
	abs := filepath.Join(f.root, filepath.Clean("/"+rel))
	rootAbs, err := filepath.Abs(f.root)
	if err != nil {
		return "", fmt.Errorf("file_read: resolve root: %w", err)
	}
	absResolved, err := filepath.Abs(abs)
	if err != nil {
		return "", fmt.Errorf("file_read: resolve path: %w", err)
	}
	if !strings.HasPrefix(absResolved, rootAbs) {
		return "", fmt.Errorf("file_read: path escapes root: %s", rel)
	}

	data, err := os.ReadFile(absResolved)
	if err != nil {
		return "", fmt.Errorf("file_read: %w", err)
	}
	return string(data), nil
}
