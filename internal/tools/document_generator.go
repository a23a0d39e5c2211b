package tools

import (
	"archive/zip"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/X-Luffy/Law-Agent/internal/llm"
)

// DocumentGenerator persists a title+content pair as a file under an
// output directory (spec §4.7: "document_generator (title, content,
// format ∈ {docx, md} → persisted-file path)"; spec §5 naming and
// return-marker contract).
type DocumentGenerator struct {
	outputDir string
	now       func() time.Time
}

type documentGeneratorArgs struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

func NewDocumentGenerator(outputDir string) *DocumentGenerator {
	if outputDir == "" {
		outputDir = "./output"
	}
	return &DocumentGenerator{outputDir: outputDir, now: time.Now}
}

func (d *DocumentGenerator) Name() string { return "document_generator" }
func (d *DocumentGenerator) Description() string {
	return "Generates a document (markdown or docx) from a title and content and persists it to disk."
}

func (d *DocumentGenerator) ToSchema() llm.ToolSchema {
	return llm.ToolSchema{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:        d.Name(),
			Description: d.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":   map[string]any{"type": "string", "description": "Document title"},
					"content": map[string]any{"type": "string", "description": "Document body"},
					"format":  map[string]any{"type": "string", "enum": []string{"docx", "md"}, "description": "Output format"},
				},
				"required": []string{"title", "content", "format"},
			},
		},
	}
}

func (d *DocumentGenerator) Execute(ctx context.Context, input string) (string, error) {
	var args documentGeneratorArgs
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("document_generator: invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.Title) == "" {
		return "", fmt.Errorf("document_generator: title is required")
	}
	format := strings.ToLower(strings.TrimSpace(args.Format))
	if format != "docx" && format != "md" {
		return "", fmt.Errorf("document_generator: unsupported format %q", args.Format)
	}

	if err := os.MkdirAll(d.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("document_generator: create output dir: %w", err)
	}

	sanitized := sanitizeFilename(args.Title)
	filename := fmt.Sprintf("%s_%s.%s", sanitized, d.now().Format("20060102_150405"), format)
	fullPath := filepath.Join(d.outputDir, filename)

	var writeErr error
	switch format {
	case "md":
		writeErr = writeMarkdown(fullPath, args.Title, args.Content)
	case "docx":
		writeErr = writeDocx(fullPath, args.Title, args.Content)
	}
	if writeErr != nil {
		return "", fmt.Errorf("document_generator: %w", writeErr)
	}

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		absPath = fullPath
	}
	return fmt.Sprintf("文件已生成: %s", absPath), nil
}

func sanitizeFilename(title string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(title), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		cleaned = "document"
	}
	if len(cleaned) > 80 {
		cleaned = cleaned[:80]
	}
	return cleaned
}

func writeMarkdown(path, title, content string) error {
	body := fmt.Sprintf("# %s\n\n%s\n", title, content)
	return os.WriteFile(path, []byte(body), 0o644)
}

// writeDocx emits a minimal but valid OOXML WordprocessingML package.
// nguyenthenguyen/docx (used elsewhere in the example pack) only edits
// an existing template via find/replace; generating a fresh document
// from a title+content pair has no template to edit against, so this
// writer builds the OOXML zip parts directly (the same structure that
// library itself unpacks and repacks).
func writeDocx(path, title, content string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	parts := map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"_rels/.rels":         relsXML,
		"word/document.xml":   documentXML(title, content),
	}
	for name, data := range parts {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write([]byte(data)); err != nil {
			return err
		}
	}
	return zw.Close()
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

func documentXML(title, content string) string {
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	body.WriteString(paragraph(title, true))
	for _, line := range strings.Split(content, "\n") {
		body.WriteString(paragraph(line, false))
	}
	body.WriteString(`</w:body></w:document>`)
	return body.String()
}

func paragraph(text string, heading bool) string {
	var run strings.Builder
	run.WriteString(`<w:p>`)
	if heading {
		run.WriteString(`<w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
	} else {
		run.WriteString(`<w:r><w:t xml:space="preserve">`)
	}
	xml.EscapeText(&run, []byte(text))
	run.WriteString(`</w:t></w:r></w:p>`)
	return run.String()
}
