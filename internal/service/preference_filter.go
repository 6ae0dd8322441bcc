package service

import (
	"sort"
	"strings"

	"github.com/vqdung71104/student-management-sub000/internal/models"
)

// FilterSections shrinks one subject's candidate list before combinatorial
// expansion. Each step is a best-effort no-op when its preference category is
// unset; a step that would empty the result is skipped instead, with one
// exception: in strict mode the preferred-day pass is allowed to return an
// empty list, and the caller retries with strict false.
func FilterSections(sections []models.ClassSection, prefs *models.PreferenceModel, strict bool) []models.ClassSection {
	if len(sections) == 0 || prefs == nil {
		return sections
	}

	result := make([]models.ClassSection, len(sections))
	copy(result, sections)

	if prefs.Time.Status == models.PreferenceSet && prefs.Time.Period != "" {
		result = keepNonEmpty(result, filterSections(result, func(s *models.ClassSection) bool {
			return prefs.Time.Period.Contains(s.StartMinute)
		}))
	}

	if len(prefs.Time.AvoidedPeriods) > 0 && prefs.Time.Status != models.PreferenceNotImportant {
		result = keepNonEmpty(result, filterSections(result, func(s *models.ClassSection) bool {
			for _, period := range prefs.Time.AvoidedPeriods {
				if period.Contains(s.StartMinute) {
					return false
				}
			}
			return true
		}))
	}

	if strict && prefs.Day.Status == models.PreferenceSet && len(prefs.Day.Preferred) > 0 {
		result = filterSections(result, func(s *models.ClassSection) bool {
			return intersects(s.StudyDays, prefs.Day.Preferred)
		})
		if len(result) == 0 {
			return result
		}
	}

	if len(prefs.Day.Avoided) > 0 && prefs.Day.Status != models.PreferenceNotImportant {
		result = keepNonEmpty(result, filterSections(result, func(s *models.ClassSection) bool {
			return !intersects(s.StudyDays, prefs.Day.Avoided)
		}))
	}

	if prefs.Time.Status != models.PreferenceNotImportant {
		if prefs.Time.PreferEarly {
			sort.SliceStable(result, func(i, j int) bool {
				return result[i].StartMinute < result[j].StartMinute
			})
		} else if prefs.Time.PreferLate {
			sort.SliceStable(result, func(i, j int) bool {
				return result[i].EndMinute > result[j].EndMinute
			})
		}
	}

	if len(prefs.Specific.Teachers) > 0 && prefs.Specific.Status == models.PreferenceSet {
		result = partitionByTeacher(result, prefs.Specific.Teachers)
	}

	if len(prefs.Specific.SectionIDs) > 0 && prefs.Specific.Status == models.PreferenceSet {
		matched := filterSections(result, func(s *models.ClassSection) bool {
			return containsString(prefs.Specific.SectionIDs, s.ID)
		})
		// An explicit section id overrides every other criterion for its subject.
		if len(matched) > 0 {
			return matched
		}
	}

	if prefs.Specific.Status == models.PreferenceSet && prefs.Specific.HasWindow() {
		result = keepNonEmpty(result, filterSections(result, func(s *models.ClassSection) bool {
			return s.StartMinute >= prefs.Specific.WindowStart && s.EndMinute <= prefs.Specific.WindowEnd
		}))
	}

	return result
}

func filterSections(sections []models.ClassSection, keep func(*models.ClassSection) bool) []models.ClassSection {
	filtered := make([]models.ClassSection, 0, len(sections))
	for i := range sections {
		if keep(&sections[i]) {
			filtered = append(filtered, sections[i])
		}
	}
	return filtered
}

func keepNonEmpty(previous, filtered []models.ClassSection) []models.ClassSection {
	if len(filtered) == 0 {
		return previous
	}
	return filtered
}

// partitionByTeacher moves sections taught by a named teacher to the front,
// keeping relative order. Nothing is dropped: a teacher wish is soft.
func partitionByTeacher(sections []models.ClassSection, teachers []string) []models.ClassSection {
	matched := make([]models.ClassSection, 0, len(sections))
	others := make([]models.ClassSection, 0, len(sections))
	for i := range sections {
		if teacherMatches(sections[i].TeacherName, teachers) {
			matched = append(matched, sections[i])
		} else {
			others = append(others, sections[i])
		}
	}
	return append(matched, others...)
}

func teacherMatches(name string, teachers []string) bool {
	lowered := strings.ToLower(name)
	for _, teacher := range teachers {
		teacher = strings.ToLower(strings.TrimSpace(teacher))
		if teacher != "" && strings.Contains(lowered, teacher) {
			return true
		}
	}
	return false
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
