package services

import (
	"fmt"
	"strings"
	"unicode"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

// RenderMermaid writes the graph as a Mermaid erDiagram: relationships
// first with crow's foot markers, then one block per entity.
func RenderMermaid(d *models.Diagram) string {
	var sb strings.Builder

	sb.WriteString("erDiagram\n")

	byID := make(map[string]*models.Entity, len(d.Entities))
	for i := range d.Entities {
		byID[d.Entities[i].ID.String()] = &d.Entities[i]
	}

	if len(d.Relationships) > 0 {
		seen := make(map[string]bool)
		for _, rel := range d.Relationships {
			if len(rel.Entities) < 2 {
				continue
			}
			src, dst := byID[rel.Entities[0].EntityID], byID[rel.Entities[1].EntityID]
			if src == nil || dst == nil {
				continue
			}

			line := ".."
			if src.Kind == diagram.KindWeak || dst.Kind == diagram.KindWeak {
				line = "--"
			}
			notation := leftMarker(rel.Entities[0].Cardinality) + line + rightMarker(rel.Entities[1].Cardinality)

			key := fmt.Sprintf("%s:%s:%s:%s", src.ID, notation, dst.ID, rel.Name)
			if seen[key] {
				continue
			}
			seen[key] = true

			sb.WriteString(fmt.Sprintf("    %s %s %s : %q\n",
				mermaidName(src.Name),
				notation,
				mermaidName(dst.Name),
				strings.ReplaceAll(rel.Name, `"`, "'")))
		}
		sb.WriteString("\n")
	}

	for _, e := range d.Entities {
		if len(e.Attributes) == 0 {
			sb.WriteString(fmt.Sprintf("    %s\n\n", mermaidName(e.Name)))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s {\n", mermaidName(e.Name)))

		for _, a := range e.Attributes {
			var keys []string
			if a.IsPrimaryKey {
				keys = append(keys, "PK")
			}
			if a.IsForeignKey {
				keys = append(keys, "FK")
			}
			if a.IsUnique && !a.IsPrimaryKey {
				keys = append(keys, "UK")
			}

			sb.WriteString(fmt.Sprintf("        %s %s", mermaidType(a.DataType), sanitize(a.Name, "_")))
			if len(keys) > 0 {
				sb.WriteString(" " + strings.Join(keys, ", "))
			}
			if a.Comment != nil && *a.Comment != "" {
				sb.WriteString(fmt.Sprintf(" %q", strings.ReplaceAll(*a.Comment, `"`, "'")))
			}
			sb.WriteString("\n")
		}

		sb.WriteString("    }\n\n")
	}

	return sb.String()
}

func leftMarker(c diagram.Cardinality) string {
	switch c {
	case diagram.CardinalityZeroOrOne:
		return "|o"
	case diagram.CardinalityOne:
		return "||"
	case diagram.CardinalityOneOrMany:
		return "}|"
	default:
		return "}o"
	}
}

func rightMarker(c diagram.Cardinality) string {
	switch c {
	case diagram.CardinalityZeroOrOne:
		return "o|"
	case diagram.CardinalityOne:
		return "||"
	case diagram.CardinalityOneOrMany:
		return "|{"
	default:
		return "o{"
	}
}

// mermaidName upper-cases an identifier and replaces characters Mermaid
// does not accept in entity and attribute names.
func mermaidName(name string) string {
	return strings.ToUpper(sanitize(name, "_"))
}

func mermaidType(t diagram.DataType) string {
	s := strings.ToLower(sanitize(t.String(), "_"))
	if s == "" {
		return "string"
	}
	if unicode.IsDigit(rune(s[0])) {
		s = "t_" + s
	}
	return s
}

func sanitize(s, repl string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '_', r == '-':
			sb.WriteRune(r)
		case r == '(' || r == ')':
			sb.WriteRune(r)
		default:
			sb.WriteString(repl)
		}
	}
	return sb.String()
}
