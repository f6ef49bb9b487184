// Package render turns markdown drafts into the HTML bodies stored on posts.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/debemdeboas/the-journal/internal/cache"
	"github.com/debemdeboas/the-journal/internal/util"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"
)

var renderLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

const (
	FlavorClassic = "classic"
	FlavorMmark   = "mmark"
)

// Renderer renders markdown with highlighted code blocks. Output is cached
// per content hash, so identical drafts render once.
type Renderer struct {
	syntaxTheme string
	flavor      string

	rendered *cache.Cache[string, []byte]
}

func NewRenderer(syntaxTheme, flavor string) *Renderer {
	if flavor != FlavorMmark {
		flavor = FlavorClassic
	}
	return &Renderer{
		syntaxTheme: syntaxTheme,
		flavor:      flavor,
		rendered:    cache.NewCache[string, []byte](),
	}
}

func (r *Renderer) SyntaxTheme() string {
	return r.syntaxTheme
}

// Render returns the HTML for md. Front matter, if present, is not rendered.
func (r *Renderer) Render(md []byte) []byte {
	md = util.StripFrontMatter(md)
	key := util.ContentHash(md)

	return r.rendered.GetOrSet(key, func() []byte {
		renderLogger.Debug().Str("contentHash", key).Str("flavor", r.flavor).Msg("Cache miss for rendered markdown")
		if r.flavor == FlavorMmark {
			html, _ := RenderMarkdownMmark(md, r.syntaxTheme)
			return html
		}
		return RenderMarkdownClassic(md, r.syntaxTheme)
	})
}

func (r *Renderer) RenderString(md string) string {
	return strings.TrimSpace(string(r.Render([]byte(md))))
}

// CachedEntries reports how many rendered documents are cached.
func (r *Renderer) CachedEntries() int {
	return r.rendered.Len()
}

func codeBlockHook(highlightTheme string) func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	return func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
		code, ok := node.(*ast.CodeBlock)
		if !ok || !entering {
			return ast.GoToNext, false
		}

		var language string
		if info := code.Info; info != nil {
			language = string(info)
		}
		fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", HighlightCode(string(code.Literal), language, highlightTheme))
		return ast.GoToNext, true
	}
}

func RenderMarkdownClassic(md []byte, highlightTheme string) []byte {
	highlight := codeBlockHook(highlightTheme)

	opts := md_html.RendererOptions{
		Flags:    md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteReturnLinks,
		Comments: [][]byte{[]byte("//"), []byte("#")},
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if status, handled := highlight(w, node, entering); handled {
				return status, true
			}

			if callout, ok := node.(*ast.Callout); ok && entering {
				fmt.Fprintf(w, "<span class=\"callout\">%s</span>", callout.ID)
				return ast.GoToNext, true
			}

			return ast.GoToNext, false
		},
	}

	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.HeadingIDs | parser.BackslashLineBreak | parser.SuperSubscript | parser.DefinitionLists |
			parser.AutoHeadingIDs | parser.Footnotes | parser.OrderedListStart | parser.Attributes |
			parser.NonBlockingSpace,
	).Parse(md)

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

// RenderMarkdownMmark renders with the mmark dialect and returns the title
// block when the document carries one.
func RenderMarkdownMmark(md []byte, highlightTheme string) ([]byte, *mast.TitleData) {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions(mparser.Extensions | parser.NoIntraEmphasis)

	var info *mast.TitleData
	p.Opts = parser.Options{
		ParserHook: func(data []byte) (ast.Node, []byte, int) {
			node, data, consumed := mparser.Hook(data)
			if t, ok := node.(*mast.Title); ok {
				info = t.TitleData
			}
			return node, data, consumed
		},
		Flags: parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)
	mparser.AddIndex(doc)

	language := "en"
	if info != nil && info.Language != "" {
		language = info.Language
	}
	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New(language),
	}

	highlight := codeBlockHook(highlightTheme)
	opts := md_html.RendererOptions{
		Comments: [][]byte{[]byte("//"), []byte("#")},
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if status, handled := highlight(w, node, entering); handled {
				return status, true
			}
			return mhtmlOpts.RenderHook(w, node, entering)
		},
		Flags: md_html.CommonFlags | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks,
	}

	return markdown.Render(doc, md_html.NewRenderer(opts)), info
}
