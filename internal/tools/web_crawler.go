package tools

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/X-Luffy/Law-Agent/internal/llm"
)

// WebCrawler fetches a URL and returns cleaned, readable text, grounded
// on the teacher's websearch.ContentExtractor SSRF-validation and
// tag-stripping idiom. Each call fetches exactly one URL; a list of
// URLs is not accepted.
type WebCrawler struct {
	httpClient *http.Client
	maxChars   int
}

var (
	stripTags    = []string{"script", "style", "noscript", "iframe", "nav", "header", "footer", "aside"}
	reAnyTag     = regexp.MustCompile(`(?s)<[^>]*>`)
	reWhitespace = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

func removeTag(html, tag string) string {
	re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `\s*>`)
	return re.ReplaceAllString(html, "")
}

func NewWebCrawler(maxChars int) *WebCrawler {
	if maxChars <= 0 {
		maxChars = 10000
	}
	return &WebCrawler{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxChars:   maxChars,
	}
}

func (w *WebCrawler) Name() string { return "web_crawler" }
func (w *WebCrawler) Description() string {
	return "Fetches one URL and returns its readable text content, stripped of markup."
}

func (w *WebCrawler) ToSchema() llm.ToolSchema {
	return llm.ToolSchema{
		Type: "function",
		Function: llm.FunctionSchema{
			Name:        w.Name(),
			Description: w.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{
						"type":        "string",
						"description": "URL (http/https only) to fetch and extract readable text from",
					},
				},
				"required": []string{"url"},
			},
		},
	}
}

func (w *WebCrawler) Execute(ctx context.Context, input string) (string, error) {
	targetURL := ExtractPrimaryArgument(input)
	if strings.TrimSpace(targetURL) == "" {
		return "", fmt.Errorf("web_crawler: empty url")
	}

	if err := validateURLForFetch(targetURL); err != nil {
		return "", fmt.Errorf("web_crawler: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("web_crawler: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; LawAgentBot/1.0)")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("web_crawler: fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("web_crawler: HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "text/plain") {
		return "", fmt.Errorf("web_crawler: unsupported content type %q", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return "", fmt.Errorf("web_crawler: read body: %w", err)
	}

	content := cleanHTML(string(body))
	if len(content) > w.maxChars {
		content = content[:w.maxChars] + "..."
	}
	return content, nil
}

// validateURLForFetch rejects schemes and hosts that could be used for
// SSRF against internal infrastructure (spec §4.7 implies untrusted
// URLs may come from model output).
func validateURLForFetch(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must have a hostname")
	}
	lowerHost := strings.ToLower(hostname)
	if lowerHost == "localhost" || strings.HasSuffix(lowerHost, ".localhost") {
		return fmt.Errorf("localhost URLs are not allowed")
	}
	ips, err := net.LookupIP(hostname)
	if err != nil {
		return nil
	}
	for _, ip := range ips {
		if isPrivateOrReservedIP(ip) {
			return fmt.Errorf("URL resolves to a private/reserved IP address")
		}
	}
	return nil
}

func isPrivateOrReservedIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsMulticast() {
		return true
	}
	if metadataIP := net.ParseIP("169.254.169.254"); ip.Equal(metadataIP) {
		return true
	}
	return false
}

func cleanHTML(html string) string {
	for _, tag := range stripTags {
		html = removeTag(html, tag)
	}
	text := reAnyTag.ReplaceAllString(html, "\n")
	text = htmlUnescape(text)
	text = reWhitespace.ReplaceAllString(text, " ")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func htmlUnescape(s string) string {
	replacer := strings.NewReplacer(
		"&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">",
		"&quot;", `"`, "&#39;", "'",
	)
	return replacer.Replace(s)
}
