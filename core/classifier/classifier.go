package classifier

import (
	"github.com/testsmith-io/testsmith/core/models"
)

// Classify assigns a single reference to stdlib, internal, or external.
//
// The decision is a pure function of the reference and the package map:
// repeated calls with the same inputs always agree, regardless of the order
// references are processed in. Anything unresolvable lands in External: a
// spurious mock is harmless, a missing one breaks the generated test run.
func Classify(ref models.Reference, packageMap map[string]string) models.Classification {
	if ref.IsRelative() {
		return models.Internal
	}

	root := ref.RootPackage()

	if IsStdlib(root) {
		return models.Stdlib
	}

	if _, ok := packageMap[root]; ok {
		return models.Internal
	}

	return models.External
}

// ClassifyAll buckets references by classification, preserving input order
// within each bucket.
func ClassifyAll(refs []models.Reference, packageMap map[string]string) models.ClassifiedImports {
	var classified models.ClassifiedImports

	for _, ref := range refs {
		switch Classify(ref, packageMap) {
		case models.Stdlib:
			classified.Stdlib = append(classified.Stdlib, ref)
		case models.Internal:
			classified.Internal = append(classified.Internal, ref)
		default:
			classified.External = append(classified.External, ref)
		}
	}

	return classified
}
