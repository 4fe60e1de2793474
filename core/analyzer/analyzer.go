package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/testsmith-io/testsmith/core/classifier"
	"github.com/testsmith-io/testsmith/core/logger"
	"github.com/testsmith-io/testsmith/core/models"
)

// ParseError reports unparseable source, pointing at the offending line.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error in %s at line %d: %s", e.Path, e.Line, e.Message)
}

// AnalyzeFile produces the structural summary for one source file: its
// imports classified against the project context, and its public API.
func AnalyzeFile(sourcePath string, project *models.ProjectContext) (*models.AnalysisResult, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("source file not readable %s: %w", sourcePath, err)
	}
	source := string(data)

	refs, err := ExtractImports(source)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = sourcePath
		}
		return nil, err
	}

	publicAPI, err := InspectModule(source)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = sourcePath
		}
		return nil, err
	}

	classified := classifier.ClassifyAll(refs, project.PackageMap)
	logger.Debug("Analyzed %s: %d public members, %d external imports",
		sourcePath, len(publicAPI), len(classified.External))

	return &models.AnalysisResult{
		SourcePath: sourcePath,
		ModuleName: strings.TrimSuffix(filepath.Base(sourcePath), ".py"),
		Imports:    classified,
		PublicAPI:  publicAPI,
		Project:    project,
	}, nil
}

// ModulePath derives the dotted import path of a source file relative to the
// project root. A leading src segment is stripped: with a src layout the
// packages inside src are the top-level importable names.
func ModulePath(sourcePath, projectRoot string) string {
	rel, err := filepath.Rel(projectRoot, sourcePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(sourcePath)
	}

	rel = strings.TrimSuffix(rel, ".py")
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 && parts[0] == "src" {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
