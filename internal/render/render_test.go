package render

import (
	"strings"
	"sync"
	"testing"
)

func TestRendererRender(t *testing.T) {
	r := NewRenderer("github", FlavorClassic)

	tests := []struct {
		name     string
		markdown string
		contains []string
		excludes []string
	}{
		{
			name:     "heading and paragraph",
			markdown: "# Test Header\n\nSome content with `code`",
			contains: []string{"<h1", "Test Header", "<p>", "<code>code</code>"},
		},
		{
			name:     "code block is highlighted",
			markdown: "```go\nfunc main() {}\n```",
			contains: []string{`class="highlight"`, "chroma"},
		},
		{
			name:     "front matter is not rendered",
			markdown: "%%%\ntitle = \"Hidden\"\n%%%\nVisible body",
			contains: []string{"Visible body"},
			excludes: []string{"Hidden", "%%%"},
		},
		{
			name:     "links open in a new tab",
			markdown: "[site](https://example.com)",
			contains: []string{`target="_blank"`},
		},
		{
			name:     "unicode content",
			markdown: "# 测试 🚀\n\nContent with emoji 😀 and unicode ñáéíóú",
			contains: []string{"测试", "ñáéíóú"},
		},
		{
			name:     "empty content",
			markdown: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := r.RenderString(tt.markdown)
			for _, want := range tt.contains {
				if !strings.Contains(html, want) {
					t.Errorf("Expected output to contain %q, got %q", want, html)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(html, unwanted) {
					t.Errorf("Expected output not to contain %q, got %q", unwanted, html)
				}
			}
		})
	}
}

func TestRendererCache(t *testing.T) {
	r := NewRenderer("github", FlavorClassic)

	first := r.Render([]byte("# Cached"))
	second := r.Render([]byte("# Cached"))
	if string(first) != string(second) {
		t.Error("Expected identical output for identical input")
	}
	if r.CachedEntries() != 1 {
		t.Errorf("Expected 1 cached entry, got %d", r.CachedEntries())
	}

	r.Render([]byte("# Different"))
	if r.CachedEntries() != 2 {
		t.Errorf("Expected 2 cached entries, got %d", r.CachedEntries())
	}
}

func TestRendererConcurrency(t *testing.T) {
	r := NewRenderer("github", FlavorClassic)
	md := []byte("# Concurrent Test\n\nContent with `code`")

	const numGoroutines = 50
	results := make([]string, numGoroutines)

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = string(r.Render(md))
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		if res != results[0] {
			t.Errorf("Result %d differs from first result", i)
		}
	}
	if r.CachedEntries() != 1 {
		t.Errorf("Expected a single cached entry, got %d", r.CachedEntries())
	}
}

func TestRendererFlavors(t *testing.T) {
	if NewRenderer("github", "unknown").flavor != FlavorClassic {
		t.Error("Expected unknown flavor to fall back to classic")
	}

	r := NewRenderer("monokai", FlavorMmark)
	html := r.RenderString("# Mmark Heading\n\n```go\nx := 1\n```")
	if !strings.Contains(html, "Mmark Heading") {
		t.Errorf("Expected heading in mmark output, got %q", html)
	}
	if !strings.Contains(html, `class="highlight"`) {
		t.Errorf("Expected highlighted code block in mmark output, got %q", html)
	}
	if r.SyntaxTheme() != "monokai" {
		t.Errorf("Expected syntax theme 'monokai', got %q", r.SyntaxTheme())
	}
}

func TestHighlightCode(t *testing.T) {
	t.Run("markup in code is escaped", func(t *testing.T) {
		out := HighlightCode("<script>alert(1)</script>", "html", "github")
		if strings.Contains(out, "<script>") {
			t.Errorf("Expected script tag to be escaped, got %q", out)
		}
	})

	t.Run("callouts", func(t *testing.T) {
		out := HighlightCode("x := 1 // <<1>>\n", "go", "github")
		if !strings.Contains(out, `<span class="callout">1</span>`) {
			t.Errorf("Expected callout span, got %q", out)
		}
	})

	t.Run("unknown language falls back", func(t *testing.T) {
		out := HighlightCode("plain words", "no-such-language", "no-such-theme")
		if !strings.Contains(out, "plain words") {
			t.Errorf("Expected code in output, got %q", out)
		}
	})
}

func TestSyntaxCSS(t *testing.T) {
	css := SyntaxCSS("monokai")
	if !strings.Contains(css, ".chroma") {
		t.Errorf("Expected .chroma rules, got %q", css)
	}
	if SyntaxCSS("monokai") != css {
		t.Error("Expected cached CSS to be returned on second call")
	}
	if SyntaxCSS("no-such-theme") == "" {
		t.Error("Expected fallback CSS for unknown theme")
	}
}

func BenchmarkRenderUncached(b *testing.B) {
	md := []byte("# Performance Test\n\nSome **bold** text.\n\n```go\nfunc main() {}\n```\n")
	for i := 0; i < b.N; i++ {
		RenderMarkdownClassic(md, "github")
	}
}
