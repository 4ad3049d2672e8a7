// Package citation renders research summaries to HTML, turning
// [label](source:<id>) links into citation chips.
package citation

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"researchnest/internal/models"
)

// Prefix marks a link destination as a citation
const Prefix = "source:"

// MaxLabelRunes is the longest chip label before truncation
const MaxLabelRunes = 30

// Render converts markdown to HTML, resolving citation links against links
func Render(markdown string, links []models.Link) (string, error) {
	sources := make(map[string]models.Link, len(links))
	for _, l := range links {
		sources[l.ID] = l
	}

	md := goldmark.New(
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&linkRenderer{sources: sources}, 100)),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return buf.String(), nil
}

// Extract returns the distinct citation ids in markdown, in order of first use
func Extract(markdown string) []string {
	src := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var ids []string
	seen := map[string]bool{}
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			if id, ok := strings.CutPrefix(string(link.Destination), Prefix); ok && id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		return ast.WalkContinue, nil
	})
	return ids
}

type linkRenderer struct {
	sources map[string]models.Link
}

func (r *linkRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindLink, r.renderLink)
}

func (r *linkRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	dest := string(n.Destination)

	if id, ok := strings.CutPrefix(dest, Prefix); ok {
		if l, found := r.sources[id]; found {
			if entering {
				writeChip(w, l, nodeText(n, source))
			}
			return ast.WalkSkipChildren, nil
		}
	}

	if entering {
		w.WriteString(`<a href="`)
		if !html.IsDangerousURL(n.Destination) {
			w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
		}
		w.WriteString(`" target="_blank" rel="noopener noreferrer">`)
	} else {
		w.WriteString("</a>")
	}
	return ast.WalkContinue, nil
}

func writeChip(w util.BufWriter, l models.Link, label string) {
	kind, icon := "web", "globe"
	switch l.Kind {
	case models.LinkKindVideo:
		kind, icon = "video", "youtube"
	case models.LinkKindImage:
		kind, icon = "image", "image"
	}

	href := []byte(l.URL)
	if html.IsDangerousURL(href) {
		href = nil
	}
	escapedHref := util.EscapeHTML(util.URLEscape(href, true))

	fmt.Fprintf(w, `<a class="citation-chip citation-%s" href="%s" target="_blank" rel="noopener noreferrer" title="Go to source: %s">`,
		kind, escapedHref, escapedHref)
	fmt.Fprintf(w, `<span class="citation-icon">%s</span>`, icon)
	w.Write(util.EscapeHTML([]byte(truncate(label, MaxLabelRunes))))
	w.WriteString("</a>")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

// nodeText flattens the inline text beneath n
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(nodeText(c, source))
		}
	}
	return b.String()
}
