package department

import "strings"

// Departments are recorded as free strings, sometimes composite:
// "Sales - Marketing" grants access to requests filed under "Sales" or
// "Marketing" alone, and vice versa.

// Segments splits a composite department string into its atomic parts.
// Empty segments are dropped; if nothing survives the split the original
// string is treated as a single segment.
func Segments(dept string) []string {
	parts := strings.Split(dept, "-")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segments = append(segments, p)
		}
	}
	if len(segments) == 0 {
		return []string{dept}
	}
	return segments
}

// CanAccess reports whether an actor's department grants access to a target
// department. True iff any actor segment equals any target segment,
// case-insensitively.
func CanAccess(actorDept, targetDept string) bool {
	for _, a := range Segments(actorDept) {
		for _, t := range Segments(targetDept) {
			if strings.EqualFold(a, t) {
				return true
			}
		}
	}
	return false
}
