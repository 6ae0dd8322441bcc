package service

import "github.com/vqdung71104/student-management-sub000/internal/models"

// Conflicts reports whether two sections collide. Two sections conflict only
// when they share at least one study week, at least one study day, and their
// half-open time intervals [start,end) overlap. Back-to-back sections where
// one ends exactly when the other starts do not conflict. This is the single
// source of truth for interval logic; no other component re-implements it.
func Conflicts(a, b *models.ClassSection) bool {
	if a == nil || b == nil {
		return false
	}
	if !intersects(a.StudyWeeks, b.StudyWeeks) {
		return false
	}
	if !intersects(a.StudyDays, b.StudyDays) {
		return false
	}
	return a.StartMinute < b.EndMinute && b.StartMinute < a.EndMinute
}

// ConflictsWithAny reports whether the candidate collides with any of the
// given sections. Used to enforce the no-conflict rule against a student's
// already-registered sections.
func ConflictsWithAny(candidate *models.ClassSection, existing []models.ClassSection) bool {
	for i := range existing {
		if Conflicts(candidate, &existing[i]) {
			return true
		}
	}
	return false
}

// intersects reports whether two ascending int slices share an element.
func intersects(a, b []int) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}
