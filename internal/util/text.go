package util

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const WordsPerMinute = 200

// StripTags returns the text content of an HTML fragment. Text from adjacent
// block elements is separated by a space; script and style bodies are dropped.
func StripTags(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF ends the input; any other error still keeps the text read so far.
			return strings.TrimSpace(b.String())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if isRawTextTag(name) {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
			}
			if blockTags[string(name)] {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Tags that separate words. Inline tags such as <em> do not.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "img": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true, "script": true, "style": true,
}

func isRawTextTag(name []byte) bool {
	n := string(name)
	return n == "script" || n == "style"
}

// WordCount counts whitespace-delimited tokens after stripping markup.
func WordCount(content string) int {
	return len(strings.Fields(StripTags(content)))
}

// ReadTime is ceil(words / WordsPerMinute) in minutes.
func ReadTime(content string) int {
	words := WordCount(content)
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// Excerpt returns at most max runes of the plain text of content, cut at a
// word boundary when possible and suffixed with an ellipsis when shortened.
func Excerpt(content string, max int) string {
	text := strings.Join(strings.Fields(StripTags(content)), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
