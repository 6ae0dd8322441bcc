package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vqdung71104/student-management-sub000/internal/models"
)

func TestGenerateSkipsConflictingTuples(t *testing.T) {
	// Two subjects with two sections each; exactly one of the four cross
	// products conflicts (a1 overlaps b1 on Monday morning).
	a1 := newSection("a1", "MI1111", "Thứ 2", "1-16", "07:00", "09:00")
	a2 := newSection("a2", "MI1111", "Thứ 3", "1-16", "07:00", "09:00")
	b1 := newSection("b1", "PH1110", "Thứ 2", "1-16", "08:00", "10:00")
	b2 := newSection("b2", "PH1110", "Thứ 4", "1-16", "08:00", "10:00")

	generator := NewCombinationGenerator(nil, nil)
	combinations := generator.Generate([]SubjectCandidates{
		{SubjectID: "MI1111", Sections: []models.ClassSection{a1, a2}},
		{SubjectID: "PH1110", Sections: []models.ClassSection{b1, b2}},
	}, &models.PreferenceModel{}, 20)

	require.Len(t, combinations, 3)
	for _, combination := range combinations {
		require.False(t, combination.HasViolations)
		require.Len(t, combination.Sections, 2)
		require.False(t, Conflicts(&combination.Sections[0], &combination.Sections[1]))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	candidates := []SubjectCandidates{
		{SubjectID: "MI1111", Sections: []models.ClassSection{
			newSection("a1", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
			newSection("a2", "MI1111", "Thứ 3", "1-16", "07:00", "09:00"),
		}},
		{SubjectID: "PH1110", Sections: []models.ClassSection{
			newSection("b1", "PH1110", "Thứ 4", "1-16", "08:00", "10:00"),
			newSection("b2", "PH1110", "Thứ 5", "1-16", "08:00", "10:00"),
		}},
	}
	generator := NewCombinationGenerator(nil, nil)
	prefs := &models.PreferenceModel{}

	first := generator.Generate(candidates, prefs, 20)
	second := generator.Generate(candidates, prefs, 20)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].Score, second[i].Score)
		for j := range first[i].Sections {
			require.Equal(t, first[i].Sections[j].ID, second[i].Sections[j].ID)
		}
	}
}

func TestGenerateSortedByScoreDescending(t *testing.T) {
	candidates := []SubjectCandidates{
		{SubjectID: "MI1111", Sections: []models.ClassSection{
			newSection("a1", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
			newSection("a2", "MI1111", "Thứ 2, Thứ 4", "1-16", "13:00", "15:00"),
		}},
	}
	prefs := &models.PreferenceModel{
		FreeDays: models.FreeDaysPreference{Status: models.PreferenceSet, Maximize: true},
	}

	generator := NewCombinationGenerator(nil, nil)
	combinations := generator.Generate(candidates, prefs, 20)

	require.Len(t, combinations, 2)
	for i := 1; i < len(combinations); i++ {
		require.GreaterOrEqual(t, combinations[i-1].Score, combinations[i].Score)
	}
	require.Equal(t, "a1", combinations[0].Sections[0].ID)
}

func TestGenerateViolationFallback(t *testing.T) {
	// Every tuple conflicts, so best-effort results come back flagged.
	a := newSection("a1", "MI1111", "Thứ 2", "1-16", "07:00", "09:00")
	b := newSection("b1", "PH1110", "Thứ 2", "1-16", "08:00", "10:00")

	generator := NewCombinationGenerator(nil, nil)
	combinations := generator.Generate([]SubjectCandidates{
		{SubjectID: "MI1111", Sections: []models.ClassSection{a}},
		{SubjectID: "PH1110", Sections: []models.ClassSection{b}},
	}, &models.PreferenceModel{}, 20)

	require.Len(t, combinations, 1)
	require.True(t, combinations[0].HasViolations)
}

func TestGenerateEmptySubjectYieldsNothing(t *testing.T) {
	generator := NewCombinationGenerator(nil, nil)
	combinations := generator.Generate([]SubjectCandidates{
		{SubjectID: "MI1111", Sections: []models.ClassSection{
			newSection("a1", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
		}},
		{SubjectID: "PH1110", Sections: nil},
	}, &models.PreferenceModel{}, 20)

	require.Empty(t, combinations)
}

func TestGenerateRespectsMaxCombinations(t *testing.T) {
	sections := make([]models.ClassSection, 0, 6)
	days := []string{"Thứ 2", "Thứ 3", "Thứ 4", "Thứ 5", "Thứ 6", "Thứ 7"}
	for i, day := range days {
		sections = append(sections, newSection(string(rune('a'+i)), "MI1111", day, "1-16", "07:00", "09:00"))
	}
	other := make([]models.ClassSection, 0, 6)
	for i, day := range days {
		other = append(other, newSection(string(rune('p'+i)), "PH1110", day, "1-16", "13:00", "15:00"))
	}

	generator := NewCombinationGenerator(nil, nil)
	combinations := generator.Generate([]SubjectCandidates{
		{SubjectID: "MI1111", Sections: sections},
		{SubjectID: "PH1110", Sections: other},
	}, &models.PreferenceModel{}, 5)

	require.Len(t, combinations, 5)
}

func TestGenerateRequiredSectionID(t *testing.T) {
	a1 := newSection("a1", "MI1111", "Thứ 2", "1-16", "07:00", "09:00")
	a2 := newSection("a2", "MI1111", "Thứ 3", "1-16", "07:00", "09:00")
	b1 := newSection("b1", "PH1110", "Thứ 4", "1-16", "08:00", "10:00")

	prefs := &models.PreferenceModel{
		Specific: models.SpecificPreference{Status: models.PreferenceSet, SectionIDs: []string{"a2"}},
	}

	generator := NewCombinationGenerator(nil, nil)
	combinations := generator.Generate([]SubjectCandidates{
		{SubjectID: "MI1111", Sections: []models.ClassSection{a1, a2}},
		{SubjectID: "PH1110", Sections: []models.ClassSection{b1}},
	}, prefs, 20)

	require.Len(t, combinations, 1)
	require.Equal(t, "a2", combinations[0].Sections[0].ID)
}
