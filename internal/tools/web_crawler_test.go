package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebCrawler_StripsMarkupAndScripts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><script>evil()</script></head><body><nav>menu</nav><p>Hello world</p></body></html>`))
	}))
	defer srv.Close()

	c := NewWebCrawler(0)
	got, err := c.Execute(context.Background(), `{"url":"`+srv.URL+`"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "evil()") || strings.Contains(got, "menu") {
		t.Fatalf("expected script/nav content stripped, got %q", got)
	}
	if !strings.Contains(got, "Hello world") {
		t.Fatalf("expected body text preserved, got %q", got)
	}
}

func TestWebCrawler_RejectsNonHTTPScheme(t *testing.T) {
	c := NewWebCrawler(0)
	_, err := c.Execute(context.Background(), `{"url":"ftp://example.com/file"}`)
	if err == nil {
		t.Fatalf("expected scheme rejection")
	}
}

func TestWebCrawler_RejectsLocalhost(t *testing.T) {
	c := NewWebCrawler(0)
	_, err := c.Execute(context.Background(), `{"url":"http://localhost:8080/admin"}`)
	if err == nil {
		t.Fatalf("expected localhost rejection")
	}
}

func TestWebCrawler_EmptyURLErrors(t *testing.T) {
	c := NewWebCrawler(0)
	_, err := c.Execute(context.Background(), `{"url":""}`)
	if err == nil {
		t.Fatalf("expected error for empty url")
	}
}
