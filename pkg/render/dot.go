package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/sceneplan/sceneplan/pkg/plan"
)

// ConflictDOT builds a Graphviz DOT graph from a plan's failures.
// Each failed request links to the placed objects that blocked it, so
// dense constraint clusters are visible at a glance. Failed nodes are
// drawn dashed.
func ConflictDOT(p *plan.Plan) string {
	var buf bytes.Buffer
	buf.WriteString("digraph conflicts {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	blockers := make(map[string]bool)
	var edges bytes.Buffer
	for _, e := range p.Failed() {
		if e.Reason == nil || len(e.Reason.ConflictIDs) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,dashed\", fillcolor=\"#fde2e2\", label=%q];\n",
			e.ID, fmt.Sprintf("%s\n%s", e.ID, e.Reason.Code))
		for _, id := range e.Reason.ConflictIDs {
			blockers[id] = true
			fmt.Fprintf(&edges, "  %q -> %q;\n", e.ID, id)
		}
	}
	for _, e := range p.Placed() {
		if !blockers[e.ID] {
			continue
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n",
			e.ID, fmt.Sprintf("%s\n%s @ (%.2g, %.2g)", e.ID, e.Kind, e.X, e.Y))
	}

	buf.WriteString("\n")
	buf.Write(edges.Bytes())
	buf.WriteString("}\n")
	return buf.String()
}

// RenderConflictSVG renders a DOT conflict graph to SVG using Graphviz.
func RenderConflictSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites Graphviz's svg tag so the artifact scales
// cleanly when embedded.
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
