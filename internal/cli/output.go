package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"erdiagram/internal/diagram"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid format %q: want text, json or yaml", f)
	}
}

// render writes v as JSON or YAML, or calls text for the text format.
func (a *app) render(v any, text func(w io.Writer) error) error {
	switch a.format {
	case formatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(a.out)
	}
}

// diagramView is what `diagram show` prints.
type diagramView struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	IsPublic    bool           `json:"isPublic" yaml:"isPublic"`
	Version     int            `json:"version" yaml:"version"`
	Nodes       []diagram.Node `json:"nodes" yaml:"nodes"`
	Edges       []diagram.Edge `json:"edges" yaml:"edges"`
}

func writeDiagram(w io.Writer, v diagramView) error {
	fmt.Fprintf(w, "%s (%s) v%d", v.Name, v.ID, v.Version)
	if v.IsPublic {
		fmt.Fprint(w, " public")
	}
	fmt.Fprintln(w)
	if v.Description != "" {
		fmt.Fprintln(w, v.Description)
	}

	names := make(map[string]string, len(v.Nodes))
	for _, n := range v.Nodes {
		names[n.ID] = n.Data.Name
	}

	fmt.Fprintf(w, "\nEntities (%d)\n", len(v.Nodes))
	for _, n := range v.Nodes {
		if err := writeNode(w, n); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nRelationships (%d)\n", len(v.Edges))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range v.Edges {
		fmt.Fprintf(tw, "  %s\t%s\t%s -> %s\t%s\t%s\n",
			e.ID, e.Data.Name, names[e.Source], names[e.Target], e.Data.Type, cardinalities(e))
	}
	return tw.Flush()
}

func writeNode(w io.Writer, n diagram.Node) error {
	fmt.Fprintf(w, "  %s %s [%s] at (%g, %g)\n", n.ID, n.Data.Name, n.Data.Kind, n.Position.X, n.Position.Y)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, attr := range n.Data.Attributes {
		writeAttributeRow(tw, attr)
	}
	return tw.Flush()
}

func writeAttributeRow(w io.Writer, attr diagram.Attribute) {
	fmt.Fprintf(w, "    %s\t%s\t%s\t%s\n", attr.ID, attr.Name, attr.DataType, strings.Join(attributeMarkers(attr), ","))
}

func attributeMarkers(attr diagram.Attribute) []string {
	var flags []string
	if attr.IsPrimaryKey {
		flags = append(flags, "PK")
	}
	if attr.IsForeignKey {
		flags = append(flags, "FK")
	}
	if attr.IsUnique {
		flags = append(flags, "UK")
	}
	if !attr.IsNullable {
		flags = append(flags, "NOT NULL")
	}
	if attr.IsAutoIncrement {
		flags = append(flags, "AUTO")
	}
	if attr.IsUnsigned {
		flags = append(flags, "UNSIGNED")
	}
	return flags
}

func cardinalities(e diagram.Edge) string {
	if len(e.Data.Entities) < 2 {
		return ""
	}
	return fmt.Sprintf("%s:%s", e.Data.Entities[0].Cardinality, e.Data.Entities[1].Cardinality)
}

func writeEdge(w io.Writer, e diagram.Edge) error {
	_, err := fmt.Fprintf(w, "%s %s %s -> %s %s %s\n", e.ID, e.Data.Name, e.Source, e.Target, e.Data.Type, cardinalities(e))
	return err
}

func writeLine(s string) func(w io.Writer) error {
	return func(w io.Writer) error {
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		_, err := io.WriteString(w, s)
		return err
	}
}
