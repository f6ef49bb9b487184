// Package util provides utility functions for content hashing, text extraction and front matter parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"

	"github.com/mmarkdown/mmark/v2/mast"
)

// FrontMatter is the TOML block between %%% delimiters at the top of an imported markdown post.
type FrontMatter struct {
	*mast.TitleData

	Category  string   `toml:"category"`
	Tags      []string `toml:"tags"`
	Excerpt   string   `toml:"excerpt"`
	Spotlight bool     `toml:"spotlight"`

	// Number of bytes of the source taken up by the front matter block.
	Consumed int `toml:"-"`
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

func GetFrontMatter(md []byte) (*FrontMatter, error) {
	md = markdown.NormalizeNewlines(md)
	lead := len(md)
	md = bytes.TrimLeft(md, "\n \t\r")
	lead -= len(md)

	delimiter := []byte("%%%")

	if len(md) < 2*len(delimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	if !bytes.HasPrefix(md, delimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	second := bytes.Index(md[len(delimiter):], delimiter)
	if second == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	body := md[len(delimiter) : len(delimiter)+second]
	end := 2*len(delimiter) + second

	info := &FrontMatter{
		TitleData: &mast.TitleData{},
	}

	if _, err := toml.Decode(string(body), info); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	if info.Language == "" {
		info.Language = "en"
	}
	info.Consumed = lead + end

	return info, nil
}

// StripFrontMatter returns md without its front matter block, or md unchanged when it has none.
func StripFrontMatter(md []byte) []byte {
	info, err := GetFrontMatter(md)
	if err != nil {
		return md
	}
	md = markdown.NormalizeNewlines(md)
	return bytes.TrimLeft(md[info.Consumed:], "\n")
}
