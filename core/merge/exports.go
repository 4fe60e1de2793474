package merge

import (
	"fmt"
	"strings"

	"github.com/testsmith-io/testsmith/core/templates"
)

// AppendFixtureExports inserts a re-export line for every fixture module not
// already imported in content. Existing lines never move; missing imports go
// to the end of the file. Content already covering every module comes back
// unchanged.
func AppendFixtureExports(content string, imports []templates.FixtureImport) string {
	lines := strings.Split(content, "\n")

	var added []string
	for _, imp := range imports {
		if hasExport(lines, imp.Module) {
			continue
		}
		added = append(added, fmt.Sprintf("from %s import %s  # noqa: F401", imp.Module, imp.Fixture))
	}
	if len(added) == 0 {
		return content
	}

	joined := strings.TrimRight(content, "\n")
	if joined != "" {
		joined += "\n"
	}
	return joined + strings.Join(added, "\n") + "\n"
}

func hasExport(lines []string, module string) bool {
	for _, line := range lines {
		if mod, ok := exportModule(line); ok && mod == module {
			return true
		}
	}
	return false
}

// exportModule extracts the module of a "from X import ..." line.
func exportModule(line string) (string, bool) {
	fields := strings.Fields(stripLineComment(line))
	if len(fields) >= 3 && fields[0] == "from" && fields[2] == "import" {
		return fields[1], true
	}
	return "", false
}
