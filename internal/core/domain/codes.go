package domain

import "strings"

// EvidenceRoot is the top-level folder under which all unit and criteria
// folders live.
const EvidenceRoot = "Evidence"

// Unit and criteria codes (e.g. "NETP3-01", "1.1") are mapped to remote
// folder segments by replacing "." with "_". The mapping is a bijection on
// codes matching ^[A-Za-z0-9]+(\.[A-Za-z0-9]+)*$ since neither character
// class admits the other separator.

// EncodeCode converts an in-memory code to its folder-segment form.
func EncodeCode(code string) string {
	return strings.ReplaceAll(code, ".", "_")
}

// DecodeCode converts a folder segment back to the in-memory code form.
func DecodeCode(segment string) string {
	return strings.ReplaceAll(segment, "_", ".")
}

// FirstCriteriaPair reduces a criteria code to its first "a.b" pair.
//
// Criteria folders sometimes cover several criteria joined with underscores
// ("1_1_1_2" covers 1.1 and 1.2). The inverse convention keeps only the first
// pair, so "1_1_1_2" and "1.1_1.2" both reduce to "1.1". A code with a single
// component ("3") is returned unchanged.
func FirstCriteriaPair(code string) string {
	parts := strings.FieldsFunc(code, func(r rune) bool {
		return r == '.' || r == '_'
	})
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[0] + "." + parts[1]
	}
}

// UnitFromPath extracts the unit code from a hierarchical path rooted at
// EvidenceRoot, mapping "_" back to ".". Returns "" when the path has fewer
// than two segments or is not rooted at EvidenceRoot.
func UnitFromPath(path string) string {
	segments := splitHierarchy(path)
	if len(segments) < 2 {
		return ""
	}
	return DecodeCode(segments[1])
}

// CriteriaFromPath extracts the criteria code from a hierarchical path. When
// the criteria folder covers several codes joined with underscores, only the
// first pair is returned. Returns "" when the path has fewer than three
// segments or is not rooted at EvidenceRoot.
func CriteriaFromPath(path string) string {
	segments := splitHierarchy(path)
	if len(segments) < 3 {
		return ""
	}
	return FirstCriteriaPair(segments[2])
}

func splitHierarchy(path string) []string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || !strings.EqualFold(segments[0], EvidenceRoot) {
		return nil
	}
	return segments
}
