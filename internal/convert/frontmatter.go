package convert

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the metadata block prepended to converted markdown.
type Frontmatter struct {
	Title    string   `yaml:"title"`
	Source   string   `yaml:"source"`
	Type     string   `yaml:"type"`
	Date     string   `yaml:"date"`
	Diarized bool     `yaml:"diarized,omitempty"`
	Speakers []string `yaml:"speakers,omitempty"`
}

// ApplyFrontmatter prepends a YAML frontmatter block to markdown content.
// An empty Date is filled with the current date.
func ApplyFrontmatter(content string, fm Frontmatter) string {
	if fm.Date == "" {
		fm.Date = time.Now().Format("2006-01-02")
	}

	data, err := yaml.Marshal(fm)
	if err != nil {
		// Frontmatter is cosmetic; never fail a conversion over it.
		return content
	}

	return fmt.Sprintf("---\n%s---\n\n%s", data, strings.TrimLeft(content, "\n"))
}
