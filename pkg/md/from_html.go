// Package md converts newsletter post HTML to Markdown and MDX.
package md

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Engine selects the HTML to Markdown implementation.
type Engine string

const (
	// EngineBuiltin uses the tokenizer, emitter and normalizer in this package.
	EngineBuiltin Engine = "builtin"
	// EngineLibrary uses github.com/JohannesKaufmann/html-to-markdown.
	EngineLibrary Engine = "library"
)

// ConvertOptions configures the HTML to markdown conversion.
type ConvertOptions struct {
	// Engine defaults to EngineBuiltin when empty.
	Engine Engine
}

var (
	scriptPattern    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	stylePattern     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	subscribePattern = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*subscribe[^"]*"[^>]*>.*?</div>`)
)

// ParseEngine validates an engine name.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(name)) {
	case "", EngineBuiltin:
		return EngineBuiltin, nil
	case EngineLibrary:
		return EngineLibrary, nil
	}
	return "", fmt.Errorf("invalid engine %q: must be one of builtin, library", name)
}

// FromHTML converts a newsletter HTML fragment to Markdown. It never fails;
// malformed input degrades to best-effort output and empty input yields "".
func FromHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	return NormalizeMarkdown(RenderMarkdown(TokenizeHTML(cleanHTML(html))))
}

// FromHTMLWithOptions converts HTML to markdown with the selected engine.
func FromHTMLWithOptions(html string, opts ConvertOptions) (string, error) {
	engine, err := ParseEngine(string(opts.Engine))
	if err != nil {
		return "", err
	}
	if engine == EngineBuiltin {
		return FromHTML(html), nil
	}

	cleaned := cleanHTML(html)
	if cleaned == "" {
		return "", nil
	}
	markdown, err := htmltomarkdown.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// cleanHTML removes scripts, styles and newsletter subscription widgets.
func cleanHTML(html string) string {
	html = scriptPattern.ReplaceAllString(html, "")
	html = stylePattern.ReplaceAllString(html, "")
	html = subscribePattern.ReplaceAllString(html, "")
	return strings.TrimSpace(html)
}
