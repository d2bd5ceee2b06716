// Package pages serves the marketing home page and the legal pages.
package pages

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentYAML []byte

// Section is one headed block of a legal page.
type Section struct {
	Heading    string   `yaml:"heading"`
	Paragraphs []string `yaml:"paragraphs"`
}

// LegalPage is a static page addressed by its slug.
type LegalPage struct {
	Title    string    `yaml:"title"`
	Updated  string    `yaml:"updated"`
	Sections []Section `yaml:"sections"`
}

// FAQItem is one question on the home page.
type FAQItem struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Content is the whole static copy of the site.
type Content struct {
	FAQ   []FAQItem            `yaml:"faq"`
	Pages map[string]LegalPage `yaml:"pages"`
}

// LoadContent parses the embedded copy.
func LoadContent() (Content, error) {
	return ParseContent(contentYAML)
}

// ParseContent parses raw and checks every page has a title.
func ParseContent(raw []byte) (Content, error) {
	var c Content
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Content{}, fmt.Errorf("parse page content: %w", err)
	}
	for slug, p := range c.Pages {
		if strings.TrimSpace(p.Title) == "" {
			return Content{}, fmt.Errorf("page %q has no title", slug)
		}
	}
	return c, nil
}
