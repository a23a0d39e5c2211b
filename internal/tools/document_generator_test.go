package tools

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestDocumentGenerator_WritesMarkdownWithNamePattern(t *testing.T) {
	dir := t.TempDir()
	g := NewDocumentGenerator(dir)
	g.now = func() time.Time { return time.Date(2026, 7, 30, 9, 15, 0, 0, time.UTC) }

	got, err := g.Execute(context.Background(), `{"title":"劳动合同审查","content":"正文内容","format":"md"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "文件已生成: ") {
		t.Fatalf("expected marker prefix, got %q", got)
	}
	if !strings.Contains(got, "_20260730_091500.md") {
		t.Fatalf("expected name pattern with timestamp, got %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected exactly one file written, got %v (err=%v)", entries, err)
	}
	data, err := os.ReadFile(dir + "/" + entries[0].Name())
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if !strings.Contains(string(data), "正文内容") {
		t.Fatalf("expected content in file, got %q", string(data))
	}
}

func TestDocumentGenerator_WritesDocxAsValidZip(t *testing.T) {
	dir := t.TempDir()
	g := NewDocumentGenerator(dir)
	g.now = func() time.Time { return time.Date(2026, 7, 30, 9, 15, 0, 0, time.UTC) }

	got, err := g.Execute(context.Background(), `{"title":"Divorce Agreement","content":"Line one\nLine two","format":"docx"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(got[strings.Index(got, ":")+2:]), ".docx") {
		t.Fatalf("expected .docx path, got %q", got)
	}
}

func TestDocumentGenerator_RejectsUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	g := NewDocumentGenerator(dir)
	_, err := g.Execute(context.Background(), `{"title":"x","content":"y","format":"pdf"}`)
	if err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestSanitizeFilename_StripsUnsafeCharacters(t *testing.T) {
	got := sanitizeFilename("离婚协议/书: draft?*")
	if strings.ContainsAny(got, "/:?*") {
		t.Fatalf("expected unsafe characters stripped, got %q", got)
	}
}
