package merge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/templates"
)

// registryRegion addresses the path list inside a conftest: the line opening
// the list literal and the line holding its closing bracket. Inserts happen
// only at the list end; nothing before it is ever rewritten.
type registryRegion struct {
	open  int
	close int
}

var quotedString = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)

func findRegistryRegion(lines []string, varName string) (registryRegion, bool) {
	opener := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(varName) + `\s*=\s*\[`)

	for i, line := range lines {
		if !opener.MatchString(stripLineComment(line)) {
			continue
		}
		depth := 0
		for j := i; j < len(lines); j++ {
			code := stripLineComment(lines[j])
			depth += strings.Count(code, "[") - strings.Count(code, "]")
			if depth <= 0 {
				return registryRegion{open: i, close: j}, true
			}
		}
		return registryRegion{}, false // unterminated list
	}
	return registryRegion{}, false
}

// ParseRegistryEntries returns the string entries of the varName list in
// order, or nil when the file has no recognizable list.
func ParseRegistryEntries(content, varName string) []string {
	lines := strings.Split(content, "\n")
	region, ok := findRegistryRegion(lines, varName)
	if !ok {
		return nil
	}

	var entries []string
	for i := region.open; i <= region.close; i++ {
		code := stripLineComment(lines[i])
		if i == region.open {
			if idx := strings.Index(code, "["); idx >= 0 {
				code = code[idx+1:]
			}
		}
		for _, m := range quotedString.FindAllStringSubmatch(code, -1) {
			if m[1] != "" {
				entries = append(entries, m[1])
			} else if m[2] != "" {
				entries = append(entries, m[2])
			}
		}
	}
	return entries
}

// AppendRegistryEntries inserts the missing path entries at the end of the
// registry list, each tagged with the source file that required it. Entries
// already present are never duplicated. When the file has no recognizable
// list the whole registration block is synthesized and appended, leaving the
// rest of the file untouched.
func AppendRegistryEntries(content, varName string, entries []string, source string) (string, error) {
	existing := map[string]bool{}
	for _, e := range ParseRegistryEntries(content, varName) {
		existing[e] = true
	}

	var missing []string
	for _, e := range entries {
		if !existing[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	region, ok := findRegistryRegion(lines, varName)
	if !ok {
		logger.Warn("No %s list found in existing conftest, appending a fresh block", varName)
		block, err := templates.RenderConftest(varName, missing, source)
		if err != nil {
			return "", err
		}
		joined := strings.TrimRight(content, "\n")
		if joined != "" {
			joined += "\n\n"
		}
		return joined + block, nil
	}

	inserted := make([]string, 0, len(missing))
	for _, e := range missing {
		inserted = append(inserted, fmt.Sprintf(`%s"%s",  # testsmith: %s`, entryIndent(lines, region), e, source))
	}

	if region.open == region.close {
		// Single-line list: keep existing entries in place on the opening
		// line and move only the bracket down so new entries get their own
		// tagged lines.
		line := lines[region.open]
		bracket := strings.LastIndex(stripLineComment(line), "]")
		head := strings.TrimRight(line[:bracket], " \t")
		if !strings.HasSuffix(head, "[") && !strings.HasSuffix(head, ",") {
			head += ","
		}
		rebuilt := append([]string{head}, inserted...)
		rebuilt = append(rebuilt, "]"+line[bracket+1:])
		lines = append(lines[:region.open], append(rebuilt, lines[region.open+1:]...)...)
	} else {
		lines = append(lines[:region.close], append(inserted, lines[region.close:]...)...)
	}

	return strings.Join(lines, "\n"), nil
}

// entryIndent picks the indentation for appended entries: match the last
// existing entry when there is one, otherwise indent past the closing
// bracket.
func entryIndent(lines []string, region registryRegion) string {
	for i := region.close - 1; i > region.open; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		return lines[i][:len(lines[i])-len(strings.TrimLeft(lines[i], " \t"))]
	}
	closeLine := lines[region.close]
	return closeLine[:len(closeLine)-len(strings.TrimLeft(closeLine, " \t"))] + "    "
}

func stripLineComment(line string) string {
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
