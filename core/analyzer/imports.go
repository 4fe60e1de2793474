package analyzer

import (
	"strings"

	"github.com/testsmith-io/testsmith/core/models"
)

// ExtractImports scans Python source for import statements. Imports nested
// inside conditionals or try blocks count the same as top-level ones: the
// dependency exists whether or not the branch runs.
func ExtractImports(source string) ([]models.Reference, error) {
	var refs []models.Reference

	lines := splitLogicalLines(source)
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(stripComment(line.text))

		switch {
		case strings.HasPrefix(trimmed, "import "):
			refs = append(refs, parsePlainImport(trimmed, line.number)...)
			i++

		case strings.HasPrefix(trimmed, "from "):
			stmt := trimmed
			// A parenthesized name list may span physical lines.
			if strings.Contains(stmt, "(") && !strings.Contains(stmt, ")") {
				j := i + 1
				for j < len(lines) {
					stmt += " " + strings.TrimSpace(stripComment(lines[j].text))
					if strings.Contains(lines[j].text, ")") {
						break
					}
					j++
				}
				if j == len(lines) {
					return nil, &ParseError{Line: line.number, Message: "unterminated import list"}
				}
				i = j + 1
			} else {
				i++
			}
			if ref, ok := parseFromImport(stmt, line.number); ok {
				refs = append(refs, ref)
			}

		default:
			i++
		}
	}

	return refs, nil
}

type logicalLine struct {
	text   string
	number int
}

// splitLogicalLines joins backslash continuations and drops the contents of
// triple-quoted blocks so imports mentioned in docstrings are not counted.
func splitLogicalLines(source string) []logicalLine {
	physical := strings.Split(source, "\n")
	var out []logicalLine

	inTriple := false
	var tripleDelim string

	i := 0
	for i < len(physical) {
		text := physical[i]
		number := i + 1

		if inTriple {
			if idx := strings.Index(text, tripleDelim); idx >= 0 {
				inTriple = false
				text = text[idx+3:]
			} else {
				i++
				continue
			}
		}

		if delim, rest, open := openTriple(text); open {
			inTriple = true
			tripleDelim = delim
			text = rest
		}

		for strings.HasSuffix(strings.TrimRight(text, " \t"), "\\") && i+1 < len(physical) {
			text = strings.TrimSuffix(strings.TrimRight(text, " \t"), "\\") + " " + strings.TrimSpace(physical[i+1])
			i++
		}

		out = append(out, logicalLine{text: text, number: number})
		i++
	}

	return out
}

// openTriple reports whether text opens a triple-quoted string that does not
// close on the same line, returning the delimiter and the text before it.
func openTriple(text string) (delim, before string, open bool) {
	for _, d := range []string{`"""`, `'''`} {
		idx := strings.Index(text, d)
		if idx < 0 {
			continue
		}
		rest := text[idx+3:]
		if strings.Contains(rest, d) {
			continue // opens and closes on one line
		}
		return d, text[:idx], true
	}
	return "", text, false
}

// stripComment removes a trailing # comment, respecting string quotes.
func stripComment(line string) string {
	var quote rune
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote && (i == 0 || line[i-1] != '\\') {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '#':
			return line[:i]
		}
	}
	return line
}

// parsePlainImport handles "import a.b as c, d".
func parsePlainImport(stmt string, lineNo int) []models.Reference {
	rest := strings.TrimPrefix(stmt, "import ")
	var refs []models.Reference

	for _, item := range strings.Split(rest, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		module := item
		alias := ""
		if idx := strings.Index(item, " as "); idx >= 0 {
			module = strings.TrimSpace(item[:idx])
			alias = strings.TrimSpace(item[idx+4:])
		}
		refs = append(refs, models.Reference{
			Module: module,
			Alias:  alias,
			Line:   lineNo,
		})
	}

	return refs
}

// parseFromImport handles "from x.y import a, b as c" including relative
// forms like "from . import x" and "from ..pkg import y".
func parseFromImport(stmt string, lineNo int) (models.Reference, bool) {
	rest := strings.TrimPrefix(stmt, "from ")
	idx := strings.Index(rest, " import ")
	if idx < 0 {
		return models.Reference{}, false
	}

	module := strings.TrimSpace(rest[:idx])
	if module == "" {
		return models.Reference{}, false
	}

	nameList := rest[idx+len(" import "):]
	nameList = strings.NewReplacer("(", "", ")", "").Replace(nameList)

	var names []string
	for _, n := range strings.Split(nameList, ",") {
		n = strings.TrimSpace(n)
		if n == "" || n == "*" {
			if n == "*" {
				names = append(names, "*")
			}
			continue
		}
		if asIdx := strings.Index(n, " as "); asIdx >= 0 {
			n = strings.TrimSpace(n[:asIdx])
		}
		names = append(names, n)
	}

	return models.Reference{
		Module: module,
		Names:  names,
		IsFrom: true,
		Line:   lineNo,
	}, true
}
