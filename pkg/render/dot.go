package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/monorail/pkg/errors"
	"github.com/matzehuels/monorail/pkg/graph"
	"github.com/matzehuels/monorail/pkg/manifest"
)

// Format names an output format of the graph command.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (valid: dot, svg, png)", s)
}

// Options configures diagram generation.
type Options struct {
	// Detailed adds the version to each label and marks private packages.
	Detailed bool

	// Kinds limits the drawn edges. Empty means every kind.
	Kinds graph.DependencyKinds

	// Batches, when set, places each batch on its own rank so the diagram
	// reads top to bottom in execution order.
	Batches [][]*graph.Node

	// Highlight outlines the named packages in red, typically cycle
	// members.
	Highlight []string
}

var edgeStyles = map[manifest.DependencyKind]string{
	manifest.DevDependencies:      `style=dashed, color="#888888"`,
	manifest.PeerDependencies:     `style=dotted`,
	manifest.OptionalDependencies: `style=dashed`,
}

// ToDOT converts nodes and the local edges among them to Graphviz DOT.
// Edges point from a package to its dependency; edges to packages outside
// nodes are dropped.
func ToDOT(nodes []*graph.Node, opts Options) string {
	in := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		in[n.Name()] = true
	}
	hot := make(map[string]bool, len(opts.Highlight))
	for _, h := range opts.Highlight {
		hot[h] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name(), strings.Join(nodeAttrs(n, opts.Detailed, hot[n.Name()]), ", "))
	}

	if len(opts.Batches) > 0 {
		buf.WriteString("\n")
		for i, batch := range opts.Batches {
			var members []string
			for _, n := range batch {
				if in[n.Name()] {
					members = append(members, strconv.Quote(n.Name()))
				}
			}
			if len(members) > 0 {
				fmt.Fprintf(&buf, "  { rank=same; /* batch %d */ %s; }\n", i, strings.Join(members, "; "))
			}
		}
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, dep := range n.LocalDependencyNames() {
			e, _ := n.LocalDependency(dep)
			if !in[dep] || (len(opts.Kinds) > 0 && !opts.Kinds.Contains(e.Kind)) {
				continue
			}
			if style, ok := edgeStyles[e.Kind]; ok {
				fmt.Fprintf(&buf, "  %q -> %q [%s];\n", n.Name(), dep, style)
			} else {
				fmt.Fprintf(&buf, "  %q -> %q;\n", n.Name(), dep)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *graph.Node, detailed, highlight bool) []string {
	label := n.Name()
	if detailed {
		if v := n.Version(); v != "" {
			label += "\n" + v
		}
		if n.Private() {
			label += "\n(private)"
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Private() {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if highlight {
		attrs = append(attrs, "color=red", "penwidth=2")
	}
	return attrs
}

// Render lays out DOT source with Graphviz and encodes it as format. The
// DOT format is returned unchanged.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "cannot render format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based root element with one
// that scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
