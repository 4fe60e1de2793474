package merge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/templates"
)

// fixtureRegion addresses the two insertion points inside a generated
// fixture: the end of the mock-attribute block (the line opening the
// sys.modules exposure map) and the end of the exposure map itself.
type fixtureRegion struct {
	patchOpen  int // line with mocker.patch.dict("sys.modules", {
	patchClose int // line with the matching })
}

var patchDictOpen = regexp.MustCompile(`mocker\.patch\.dict\(\s*["']sys\.modules["']\s*,\s*\{`)

func findFixtureRegion(lines []string) (fixtureRegion, bool) {
	for i, line := range lines {
		if !patchDictOpen.MatchString(line) {
			continue
		}
		depth := 0
		for j := i; j < len(lines); j++ {
			code := stripLineComment(lines[j])
			depth += strings.Count(code, "{") - strings.Count(code, "}")
			if j > i && depth <= 0 {
				return fixtureRegion{patchOpen: i, patchClose: j}, true
			}
			if j == i && depth <= 0 {
				// opens and closes on one line; treat the same line as close
				return fixtureRegion{patchOpen: i, patchClose: i}, true
			}
		}
		return fixtureRegion{}, false
	}
	return fixtureRegion{}, false
}

// ParseFixtureSubmodules returns the sub-module suffixes already exposed for
// dep in a fixture file, read from the sys.modules map keys. The bare dep
// entry itself is not a suffix.
func ParseFixtureSubmodules(content, dep string) map[string]bool {
	subs := map[string]bool{}
	lines := strings.Split(content, "\n")

	region, ok := findFixtureRegion(lines)
	if !ok {
		return subs
	}

	prefix := dep + "."
	for i := region.patchOpen; i <= region.patchClose; i++ {
		for _, m := range quotedString.FindAllStringSubmatch(lines[i], -1) {
			key := m[1]
			if key == "" {
				key = m[2]
			}
			if strings.HasPrefix(key, prefix) {
				subs[strings.TrimPrefix(key, prefix)] = true
			}
		}
	}
	return subs
}

// AppendFixtureSubmodules inserts one mock assignment and one exposure-map
// entry per missing sub-module suffix. Insertion is always at the end of the
// existing regions: previously emitted lines never move, so re-running on
// unchanged input reproduces the file byte for byte. A fixture that lacks
// the expected region entirely gets a freshly synthesized fixture block
// appended, with all other content untouched.
func AppendFixtureSubmodules(content, dep string, missing []string) (string, error) {
	if len(missing) == 0 {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	region, ok := findFixtureRegion(lines)
	if !ok {
		logger.Warn("Fixture for %s has no recognizable mock region, appending a fresh block", dep)
		block, err := templates.RenderFixture(dep, missing)
		if err != nil {
			return "", err
		}
		joined := strings.TrimRight(content, "\n")
		if joined != "" {
			joined += "\n\n"
		}
		return joined + block, nil
	}

	existing := ParseFixtureSubmodules(content, dep)

	attrIndent := lineIndent(lines[region.patchOpen])
	entryIndent := attrIndent + "    "
	if region.patchClose > region.patchOpen+1 {
		entryIndent = lineIndent(lines[region.patchClose-1])
	}

	var attrs, entries []string
	for _, sub := range missing {
		if existing[sub] {
			continue
		}
		attrs = append(attrs, fmt.Sprintf("%smock.%s = mocker.Mock()", attrIndent, sub))
		entries = append(entries, fmt.Sprintf(`%s"%s.%s": mock.%s,`, entryIndent, dep, sub, sub))
	}
	if len(attrs) == 0 {
		return content, nil
	}

	if region.patchOpen == region.patchClose {
		// Single-line patch.dict: keep existing entries in place on the
		// opening line and move only the closing brace down so new entries
		// land inside the dict on their own lines.
		line := lines[region.patchOpen]
		brace := strings.LastIndex(stripLineComment(line), "}")
		head := strings.TrimRight(line[:brace], " \t")
		if !strings.HasSuffix(head, "{") && !strings.HasSuffix(head, ",") {
			head += ","
		}
		rebuilt := append([]string{head}, entries...)
		rebuilt = append(rebuilt, attrIndent+line[brace:])
		lines = append(lines[:region.patchOpen], append(rebuilt, lines[region.patchOpen+1:]...)...)
	} else {
		// Exposure entries first: inserting before patchClose does not
		// disturb the patchOpen index used for the attribute insert.
		lines = insertLines(lines, region.patchClose, entries)
	}
	lines = insertLines(lines, region.patchOpen, attrs)

	return strings.Join(lines, "\n"), nil
}

func insertLines(lines []string, at int, inserted []string) []string {
	out := make([]string, 0, len(lines)+len(inserted))
	out = append(out, lines[:at]...)
	out = append(out, inserted...)
	out = append(out, lines[at:]...)
	return out
}

func lineIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
