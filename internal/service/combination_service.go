package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/vqdung71104/student-management-sub000/internal/models"
)

const (
	defaultMaxCombinations = 20

	// The enumerator gives up after inspecting this many tuples per requested
	// combination, which bounds worst-case latency on pathological inputs.
	inspectionFactor = 10

	// Number of conflicting tuples kept as a best-effort fallback when no
	// conflict-free combination exists.
	violationFallbackLimit = 10
)

// SubjectCandidates pairs a subject with its filtered candidate sections.
// Slices keep the subject-selection priority order, which fixes the
// enumeration order and makes generation deterministic.
type SubjectCandidates struct {
	SubjectID string
	Sections  []models.ClassSection
}

// CombinationGenerator enumerates, conflict-checks and scores multi-subject
// schedule combinations. It is stateless and safe for concurrent use.
type CombinationGenerator struct {
	logger  *zap.Logger
	metrics *MetricsService
}

// NewCombinationGenerator constructs a generator.
func NewCombinationGenerator(metrics *MetricsService, logger *zap.Logger) *CombinationGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CombinationGenerator{logger: logger, metrics: metrics}
}

// Generate builds up to maxCombinations conflict-free combinations, one
// section per subject, scored and sorted descending. When every inspected
// tuple conflicts, up to ten conflicting tuples are returned instead, each
// flagged HasViolations, so the conversational caller always has something
// to show.
func (g *CombinationGenerator) Generate(perSubject []SubjectCandidates, prefs *models.PreferenceModel, maxCombinations int) []models.Combination {
	if len(perSubject) == 0 {
		return nil
	}
	if maxCombinations <= 0 {
		maxCombinations = defaultMaxCombinations
	}

	candidates, requiredIDs := applyRequiredSections(perSubject, prefs)
	for _, subject := range candidates {
		if len(subject.Sections) == 0 {
			return nil
		}
	}

	valid := make([][]models.ClassSection, 0, maxCombinations)
	violating := make([][]models.ClassSection, 0, violationFallbackLimit)
	inspected := 0
	maxInspected := maxCombinations * inspectionFactor

	indexes := make([]int, len(candidates))
	for {
		tuple := make([]models.ClassSection, len(candidates))
		for i, subject := range candidates {
			tuple[i] = subject.Sections[indexes[i]]
		}
		inspected++

		if containsAllRequired(tuple, requiredIDs) {
			if conflictIndex(tuple) < 0 {
				valid = append(valid, tuple)
			} else if len(violating) < violationFallbackLimit {
				violating = append(violating, tuple)
			}
		}

		if len(valid) >= maxCombinations {
			break
		}
		if inspected >= maxInspected {
			g.logger.Warn("combination enumeration bound reached",
				zap.Int("inspected", inspected),
				zap.Int("valid", len(valid)))
			if g.metrics != nil {
				g.metrics.RecordEnumerationBound()
			}
			break
		}
		if !advance(indexes, candidates) {
			break
		}
	}

	if g.metrics != nil {
		g.metrics.RecordCombinationsInspected(inspected)
	}

	hasViolations := false
	tuples := valid
	if len(tuples) == 0 {
		tuples = violating
		hasViolations = true
	}

	combinations := make([]models.Combination, 0, len(tuples))
	for _, tuple := range tuples {
		score, metrics := ScoreCombination(tuple, prefs)
		combinations = append(combinations, models.Combination{
			Sections:      tuple,
			Score:         score,
			HasViolations: hasViolations,
			Metrics:       metrics,
		})
	}

	// Stable sort keeps enumeration order on score ties.
	sort.SliceStable(combinations, func(i, j int) bool {
		return combinations[i].Score > combinations[j].Score
	})
	return combinations
}

// applyRequiredSections hard-filters each subject's candidates down to the
// explicitly requested section ids. A subject whose candidates contain none
// of the requested ids keeps its full list: a named id must never silently
// eliminate a subject. The returned set holds only the requested ids that
// actually exist somewhere in the candidate space.
func applyRequiredSections(perSubject []SubjectCandidates, prefs *models.PreferenceModel) ([]SubjectCandidates, map[string]bool) {
	if prefs == nil || prefs.Specific.Status != models.PreferenceSet || len(prefs.Specific.SectionIDs) == 0 {
		return perSubject, nil
	}

	present := make(map[string]bool)
	result := make([]SubjectCandidates, len(perSubject))
	for i, subject := range perSubject {
		matched := filterSections(subject.Sections, func(s *models.ClassSection) bool {
			return containsString(prefs.Specific.SectionIDs, s.ID)
		})
		for j := range matched {
			present[matched[j].ID] = true
		}
		if len(matched) > 0 {
			result[i] = SubjectCandidates{SubjectID: subject.SubjectID, Sections: matched}
		} else {
			result[i] = subject
		}
	}
	return result, present
}

func containsAllRequired(tuple []models.ClassSection, required map[string]bool) bool {
	if len(required) == 0 {
		return true
	}
	found := 0
	for i := range tuple {
		if required[tuple[i].ID] {
			found++
		}
	}
	return found == len(required)
}

// conflictIndex returns the index of the first section conflicting with an
// earlier one, or -1 when the tuple is pairwise conflict-free.
func conflictIndex(tuple []models.ClassSection) int {
	for i := 1; i < len(tuple); i++ {
		for j := 0; j < i; j++ {
			if Conflicts(&tuple[i], &tuple[j]) {
				return i
			}
		}
	}
	return -1
}

// advance moves the odometer to the next tuple, rightmost digit first.
func advance(indexes []int, candidates []SubjectCandidates) bool {
	for i := len(indexes) - 1; i >= 0; i-- {
		indexes[i]++
		if indexes[i] < len(candidates[i].Sections) {
			return true
		}
		indexes[i] = 0
	}
	return false
}
