package dto

import "github.com/vqdung71104/student-management-sub000/internal/models"

// SuggestScheduleRequest asks for ranked schedule combinations for the
// authenticated student. Subjects come from the subject-selection
// collaborator in priority order.
type SuggestScheduleRequest struct {
	Subjects []models.SubjectSelection `json:"subjects" validate:"required,min=1,max=15,dive"`
	TopK     int                       `json:"top_k" validate:"gte=0,lte=20"`
}

// SkippedSubject explains why a requested subject was left out of the
// combinations. Non-fatal: the remaining subjects are still scheduled.
type SkippedSubject struct {
	SubjectID string `json:"subject_id"`
	Reason    string `json:"reason"`
}

// SuggestScheduleResponse carries the ranked combinations split by whether
// they satisfy the absolute constraints.
type SuggestScheduleResponse struct {
	FullySatisfied []models.Combination `json:"fully_satisfied"`
	WithViolations []models.Combination `json:"with_violations"`
	Skipped        []SkippedSubject     `json:"skipped_subjects,omitempty"`
}
