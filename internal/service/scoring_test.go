package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vqdung71104/student-management-sub000/internal/models"
)

func TestScoreCombinationMetrics(t *testing.T) {
	sections := []models.ClassSection{
		newSection("1001", "MI1111", "Thứ 2, Thứ 4", "1-16", "07:00", "09:00"),
		newSection("1002", "PH1110", "Thứ 2", "1-16", "09:00", "12:00"),
	}

	_, metrics := ScoreCombination(sections, &models.PreferenceModel{})

	require.Equal(t, 6, metrics.TotalCredits)
	require.Equal(t, 2, metrics.StudyDays)
	require.Equal(t, 5, metrics.FreeDays)
	require.Equal(t, "07:00", metrics.EarliestStart)
	require.Equal(t, "12:00", metrics.LatestEnd)
	require.InDelta(t, 5.0, metrics.HoursPerDay[2], 0.001)
	require.InDelta(t, 2.0, metrics.HoursPerDay[4], 0.001)
	require.Equal(t, 0, metrics.ContinuousDays)
}

func TestScoreCombinationContinuousDay(t *testing.T) {
	sections := []models.ClassSection{
		newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "11:00"),
		newSection("1002", "PH1110", "Thứ 2", "1-16", "13:00", "16:00"),
	}

	wanted := &models.PreferenceModel{
		Continuous: models.ContinuousPreference{Status: models.PreferenceSet, Wanted: true},
	}
	avoided := &models.PreferenceModel{
		Continuous: models.ContinuousPreference{Status: models.PreferenceAvoid},
	}

	scoreWanted, metrics := ScoreCombination(sections, wanted)
	scoreAvoided, _ := ScoreCombination(sections, avoided)

	require.Equal(t, 1, metrics.ContinuousDays)
	require.Greater(t, scoreWanted, scoreAvoided)
}

func TestScoreCombinationFreeDaysBonus(t *testing.T) {
	compact := []models.ClassSection{
		newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
		newSection("1002", "PH1110", "Thứ 2", "1-16", "09:00", "11:00"),
	}
	spread := []models.ClassSection{
		newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
		newSection("1003", "PH1110", "Thứ 5", "1-16", "09:00", "11:00"),
	}
	prefs := &models.PreferenceModel{
		FreeDays: models.FreeDaysPreference{Status: models.PreferenceSet, Maximize: true},
	}

	compactScore, _ := ScoreCombination(compact, prefs)
	spreadScore, _ := ScoreCombination(spread, prefs)

	require.Greater(t, compactScore, spreadScore)
}

func TestScoreCombinationMorningPreference(t *testing.T) {
	morning := []models.ClassSection{
		newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
	}
	afternoon := []models.ClassSection{
		newSection("1002", "MI1111", "Thứ 2", "1-16", "13:00", "15:00"),
	}
	prefs := &models.PreferenceModel{
		Time: models.TimePreference{Status: models.PreferenceSet, Period: models.PeriodMorning},
	}

	morningScore, _ := ScoreCombination(morning, prefs)
	afternoonScore, _ := ScoreCombination(afternoon, prefs)

	require.Greater(t, morningScore, afternoonScore)
}

func TestScoreCombinationAvoidedDayPenalty(t *testing.T) {
	saturday := []models.ClassSection{
		newSection("1001", "MI1111", "Thứ 7", "1-16", "07:00", "09:00"),
	}
	monday := []models.ClassSection{
		newSection("1002", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
	}
	prefs := &models.PreferenceModel{
		Day: models.DayPreference{Status: models.PreferenceAvoid, Avoided: []int{7}},
	}

	saturdayScore, _ := ScoreCombination(saturday, prefs)
	mondayScore, _ := ScoreCombination(monday, prefs)

	require.Greater(t, mondayScore, saturdayScore)
}

func TestScoreCombinationEarlyLateBias(t *testing.T) {
	early := []models.ClassSection{
		newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
	}
	late := []models.ClassSection{
		newSection("1002", "MI1111", "Thứ 2", "1-16", "15:00", "17:00"),
	}

	preferEarly := &models.PreferenceModel{
		Time: models.TimePreference{Status: models.PreferenceSet, PreferEarly: true},
	}
	preferLate := &models.PreferenceModel{
		Time: models.TimePreference{Status: models.PreferenceSet, PreferLate: true},
	}

	earlyScoreA, _ := ScoreCombination(early, preferEarly)
	lateScoreA, _ := ScoreCombination(late, preferEarly)
	require.Greater(t, earlyScoreA, lateScoreA)

	earlyScoreB, _ := ScoreCombination(early, preferLate)
	lateScoreB, _ := ScoreCombination(late, preferLate)
	require.Greater(t, lateScoreB, earlyScoreB)
}

func TestScoreCombinationNotImportantSkipsAdjustment(t *testing.T) {
	sections := []models.ClassSection{
		newSection("1001", "MI1111", "Thứ 7", "1-16", "13:00", "15:00"),
	}

	neutral := &models.PreferenceModel{
		Day:  models.DayPreference{Status: models.PreferenceNotImportant, Avoided: []int{7}},
		Time: models.TimePreference{Status: models.PreferenceNotImportant, AvoidedPeriods: []models.TimePeriod{models.PeriodAfternoon}},
	}
	penalised := &models.PreferenceModel{
		Day:  models.DayPreference{Status: models.PreferenceAvoid, Avoided: []int{7}},
		Time: models.TimePreference{Status: models.PreferenceAvoid, AvoidedPeriods: []models.TimePeriod{models.PeriodAfternoon}},
	}

	neutralScore, _ := ScoreCombination(sections, neutral)
	penalisedScore, _ := ScoreCombination(sections, penalised)

	require.Greater(t, neutralScore, penalisedScore)
}

func TestScoreCombinationDeterministic(t *testing.T) {
	sections := []models.ClassSection{
		newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
		newSection("1002", "PH1110", "Thứ 3", "1-16", "13:00", "15:00"),
	}
	prefs := &models.PreferenceModel{
		Day:      models.DayPreference{Status: models.PreferenceSet, Preferred: []int{2, 3}},
		Time:     models.TimePreference{Status: models.PreferenceSet, Period: models.PeriodMorning},
		FreeDays: models.FreeDaysPreference{Status: models.PreferenceSet, Maximize: true},
	}

	first, _ := ScoreCombination(sections, prefs)
	second, _ := ScoreCombination(sections, prefs)
	require.Equal(t, first, second)
}
