package config

import "regexp"

var (
	// Callout markers such as `// <<1>>` in highlighted (HTML-escaped) code blocks.
	RegexCallout = regexp.MustCompile(`//\s*&lt;&lt;(\d+)&gt;&gt;`)
)
