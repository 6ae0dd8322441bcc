package service

import (
	"github.com/vqdung71104/student-management-sub000/internal/models"
)

const (
	baseScore = 100.0

	// Continuous study means more than 5 scheduled hours in one day.
	continuousDayHours = 5.0

	// Balanced weekly credit band.
	creditBandLow  = 12
	creditBandHigh = 18

	// Start-time window used to scale the early/late bonus linearly.
	earliestScoredStart = 7 * 60
	latestScoredStart   = 18 * 60

	weekdayCount = 7
)

// ScoreCombination rates one candidate combination against the collected
// preferences and derives its presentation metrics. The score starts at 100
// and is adjusted additively; adjustments for a category marked not-important
// are skipped. Given identical inputs the result is identical: the score has
// no absolute meaning and exists only to rank combinations.
func ScoreCombination(sections []models.ClassSection, prefs *models.PreferenceModel) (float64, models.CombinationMetrics) {
	metrics := computeMetrics(sections)
	score := baseScore
	if len(sections) == 0 || prefs == nil {
		return score, metrics
	}

	if prefs.FreeDays.Status == models.PreferenceSet && prefs.FreeDays.Maximize {
		score += 5 * float64(metrics.FreeDays)
	}

	switch prefs.Continuous.Status {
	case models.PreferenceSet:
		if prefs.Continuous.Wanted {
			score += 5 * float64(metrics.ContinuousDays)
		} else {
			score -= 3 * float64(metrics.ContinuousDays)
		}
	case models.PreferenceAvoid:
		score -= 3 * float64(metrics.ContinuousDays)
	}

	if prefs.Time.Status != models.PreferenceNotImportant {
		if prefs.Time.Status == models.PreferenceSet && prefs.Time.Period != "" {
			score += 15 * ratioMatching(sections, func(s *models.ClassSection) bool {
				return prefs.Time.Period.Contains(s.StartMinute)
			})
		}
		for i := range sections {
			for _, period := range prefs.Time.AvoidedPeriods {
				if period.Contains(sections[i].StartMinute) {
					score -= 5
					break
				}
			}
		}
	}

	if prefs.Day.Status != models.PreferenceNotImportant {
		if len(prefs.Day.Preferred) > 0 {
			score += 15 * ratioMatching(sections, func(s *models.ClassSection) bool {
				return intersects(s.StudyDays, prefs.Day.Preferred)
			})
		}
		for i := range sections {
			if intersects(sections[i].StudyDays, prefs.Day.Avoided) {
				score -= 5
			}
		}
	}

	if prefs.Time.Status != models.PreferenceNotImportant && (prefs.Time.PreferEarly || prefs.Time.PreferLate) {
		position := averageStartPosition(sections)
		if prefs.Time.PreferEarly {
			score += 10 * (1 - position)
		} else {
			score += 10 * position
		}
	}

	score += 5 * averageAvailability(sections)

	total := metrics.TotalCredits
	switch {
	case total >= creditBandLow && total <= creditBandHigh:
		score += 5
	case total < creditBandLow:
		score -= float64(creditBandLow - total)
	}

	return score, metrics
}

func computeMetrics(sections []models.ClassSection) models.CombinationMetrics {
	hoursPerDay := make(map[int]float64)
	totalCredits := 0
	earliest, latest := -1, -1

	for i := range sections {
		section := &sections[i]
		totalCredits += section.Credits
		for _, day := range section.StudyDays {
			hoursPerDay[day] += section.DurationHours()
		}
		if section.EndMinute > section.StartMinute {
			if earliest < 0 || section.StartMinute < earliest {
				earliest = section.StartMinute
			}
			if section.EndMinute > latest {
				latest = section.EndMinute
			}
		}
	}

	continuous := 0
	for _, hours := range hoursPerDay {
		if hours > continuousDayHours {
			continuous++
		}
	}

	metrics := models.CombinationMetrics{
		TotalCredits:   totalCredits,
		StudyDays:      len(hoursPerDay),
		FreeDays:       weekdayCount - len(hoursPerDay),
		HoursPerDay:    hoursPerDay,
		ContinuousDays: continuous,
	}
	if earliest >= 0 {
		metrics.EarliestStart = models.FormatClock(earliest)
		metrics.LatestEnd = models.FormatClock(latest)
	}
	return metrics
}

func ratioMatching(sections []models.ClassSection, match func(*models.ClassSection) bool) float64 {
	if len(sections) == 0 {
		return 0
	}
	matched := 0
	for i := range sections {
		if match(&sections[i]) {
			matched++
		}
	}
	return float64(matched) / float64(len(sections))
}

// averageStartPosition maps the combination's mean start time onto [0,1]
// within the scored window: 0 is the earliest possible start, 1 the latest.
func averageStartPosition(sections []models.ClassSection) float64 {
	sum, counted := 0, 0
	for i := range sections {
		if sections[i].EndMinute > sections[i].StartMinute {
			sum += sections[i].StartMinute
			counted++
		}
	}
	if counted == 0 {
		return 0.5
	}
	average := float64(sum) / float64(counted)
	position := (average - earliestScoredStart) / float64(latestScoredStart-earliestScoredStart)
	if position < 0 {
		return 0
	}
	if position > 1 {
		return 1
	}
	return position
}

func averageAvailability(sections []models.ClassSection) float64 {
	if len(sections) == 0 {
		return 0
	}
	sum := 0.0
	for i := range sections {
		sum += sections[i].AvailabilityRatio()
	}
	return sum / float64(len(sections))
}
