package analyzer

import (
	"strings"

	"github.com/testsmith-io/testsmith/core/models"
)

// InspectModule extracts the public API: top-level functions and classes not
// prefixed with an underscore, plus each class's public methods and __init__
// parameters.
func InspectModule(source string) ([]models.PublicMember, error) {
	lines := splitLogicalLines(source)

	var classes []models.PublicMember
	var functions []models.PublicMember

	for i := 0; i < len(lines); i++ {
		text := lines[i].text
		trimmed := strings.TrimSpace(stripComment(text))
		if indentOf(text) != 0 {
			continue
		}

		switch {
		case isDef(trimmed):
			name, params, consumed := parseDef(lines, i)
			i += consumed
			if name == "" || strings.HasPrefix(name, "_") {
				continue
			}
			functions = append(functions, models.PublicMember{
				Name:   name,
				Kind:   "function",
				Params: params,
			})

		case strings.HasPrefix(trimmed, "class "):
			name := className(trimmed)
			member, consumed := parseClassBody(lines, i+1, name)
			i += consumed
			if name == "" || strings.HasPrefix(name, "_") {
				continue
			}
			classes = append(classes, member)
		}
	}

	return append(classes, functions...), nil
}

func indentOf(line string) int {
	count := 0
	for _, r := range line {
		switch r {
		case ' ':
			count++
		case '\t':
			count += 4
		default:
			return count
		}
	}
	return -1 // blank line
}

func isDef(trimmed string) bool {
	return strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "async def ")
}

func className(trimmed string) string {
	rest := strings.TrimPrefix(trimmed, "class ")
	for idx, r := range rest {
		if r == '(' || r == ':' || r == ' ' {
			return rest[:idx]
		}
	}
	return rest
}

// parseDef reads a def statement starting at lines[i], following the
// parameter list across physical lines when needed. Returns the function
// name, its parameter names, and how many extra lines were consumed.
func parseDef(lines []logicalLine, i int) (string, []string, int) {
	stmt := strings.TrimSpace(stripComment(lines[i].text))
	consumed := 0

	for !balancedParens(stmt) && i+consumed+1 < len(lines) {
		consumed++
		stmt += " " + strings.TrimSpace(stripComment(lines[i+consumed].text))
	}

	rest := strings.TrimPrefix(stmt, "async ")
	rest = strings.TrimPrefix(rest, "def ")

	open := strings.Index(rest, "(")
	if open < 0 {
		return "", nil, consumed
	}
	name := strings.TrimSpace(rest[:open])

	depth := 0
	closeIdx := -1
	for idx := open; idx < len(rest); idx++ {
		switch rest[idx] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				closeIdx = idx
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 {
		return name, nil, consumed
	}

	return name, parseParams(rest[open+1 : closeIdx]), consumed
}

func balancedParens(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth <= 0
}

// parseParams splits a parameter list at top-level commas and keeps bare
// names: annotations and defaults are stripped, self/cls and star args are
// dropped.
func parseParams(paramList string) []string {
	var params []string
	depth := 0
	start := 0

	flush := func(raw string) {
		p := strings.TrimSpace(raw)
		if p == "" || strings.HasPrefix(p, "*") || p == "/" {
			return
		}
		if idx := strings.IndexAny(p, ":="); idx >= 0 {
			p = strings.TrimSpace(p[:idx])
		}
		if p == "self" || p == "cls" || p == "" {
			return
		}
		params = append(params, p)
	}

	for idx, r := range paramList {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				flush(paramList[start:idx])
				start = idx + 1
			}
		}
	}
	flush(paramList[start:])

	return params
}

// parseClassBody collects a class's public methods and __init__ parameters.
// The body ends at the next non-blank line with no indentation.
func parseClassBody(lines []logicalLine, start int, name string) (models.PublicMember, int) {
	member := models.PublicMember{Name: name, Kind: "class"}
	consumed := 0
	methodIndent := -1

	for i := start; i < len(lines); i++ {
		text := lines[i].text
		indent := indentOf(text)
		if indent == 0 {
			break
		}
		consumed++
		if indent < 0 {
			continue // blank
		}

		trimmed := strings.TrimSpace(stripComment(text))
		if !isDef(trimmed) {
			continue
		}
		// Only first-level methods count; defs nested inside method bodies
		// sit at a deeper indent.
		if methodIndent == -1 {
			methodIndent = indent
		}
		if indent != methodIndent {
			continue
		}

		methodName, params, extra := parseDef(lines, i)
		i += extra
		consumed += extra

		switch {
		case methodName == "__init__":
			member.Params = params
		case strings.HasPrefix(methodName, "_"):
			// private method
		case methodName != "":
			member.Methods = append(member.Methods, methodName)
		}
	}

	return member, consumed
}
