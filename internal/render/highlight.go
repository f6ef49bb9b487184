package render

import (
	"html"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chroma_html "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/the-journal/internal/cache"
	"github.com/debemdeboas/the-journal/internal/config"
)

var syntaxCSS = cache.NewCache[string, string]()

func formatter() *chroma_html.Formatter {
	return chroma_html.New(
		chroma_html.WithClasses(true),
		chroma_html.TabWidth(4),
		chroma_html.WithLineNumbers(true),
		chroma_html.WrapLongLines(true),
	)
}

// SyntaxThemes lists the chroma style names, sorted.
func SyntaxThemes() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}

func style(name string) *chroma.Style {
	if s := styles.Get(name); s != nil {
		return s
	}
	return styles.Fallback
}

// HighlightCode returns code as highlighted HTML using CSS classes. On any
// highlighting error the code is returned unchanged.
func HighlightCode(code, language, highlightTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return html.EscapeString(code)
	}

	var buf strings.Builder
	if err := formatter().Format(&buf, style(highlightTheme), iterator); err != nil {
		return html.EscapeString(code)
	}

	return config.RegexCallout.ReplaceAllString(buf.String(), `<span class="callout">$1</span>`)
}

// SyntaxCSS returns the stylesheet for the classes HighlightCode emits.
func SyntaxCSS(theme string) string {
	return syntaxCSS.GetOrSet(theme, func() string {
		var buf strings.Builder
		s := style(theme)

		bg := s.Get(chroma.Background)
		if !bg.Colour.IsSet() {
			// Pick a text colour for themes that only set a background.
			luminance := (0.299*float64(bg.Background.Red()) +
				0.587*float64(bg.Background.Green()) +
				0.114*float64(bg.Background.Blue())) / 255
			if luminance > 0.5 {
				buf.WriteString(".chroma { color: #181818; }\n")
			}
		}

		if err := formatter().WriteCSS(&buf, s); err != nil {
			renderLogger.Error().Err(err).Str("theme", theme).Msg("Error generating syntax CSS")
		}
		return buf.String()
	})
}
