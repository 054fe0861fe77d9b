// Package topics provides the help topics shipped with mmv.
package topics

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
)

//go:embed docs/*.md
var docs embed.FS

// Topic is a markdown help page.
type Topic struct {
	Name    string
	Content string
}

// Renderer formats topic content for display.
type Renderer interface {
	Render(content string) string
}

// PlainRenderer returns content unchanged.
type PlainRenderer struct{}

// Render returns the content unchanged
func (PlainRenderer) Render(content string) string {
	return content
}

// GlamourRenderer renders markdown for a terminal.
type GlamourRenderer struct {
	Width int // 0 keeps glamour's default
}

// Render converts markdown to styled terminal output, falling back to the
// raw markdown when glamour fails.
func (r GlamourRenderer) Render(content string) string {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// Names returns the available topic names, sorted.
func Names() []string {
	entries, err := docs.ReadDir("docs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}

// Get returns the named topic.
func Get(name string) (*Topic, error) {
	name = strings.TrimSuffix(strings.ToLower(name), ".md")
	data, err := docs.ReadFile(path.Join("docs", name+".md"))
	if err != nil {
		return nil, fmt.Errorf("unknown topic %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return &Topic{Name: name, Content: string(data)}, nil
}

// Render returns the named topic, styled when tty is true.
func Render(name string, tty bool) (string, error) {
	topic, err := Get(name)
	if err != nil {
		return "", err
	}
	var r Renderer = PlainRenderer{}
	if tty {
		r = GlamourRenderer{Width: 80}
	}
	return r.Render(topic.Content), nil
}
