package models

// CombinationMetrics summarises one schedule combination for presentation.
type CombinationMetrics struct {
	TotalCredits   int             `json:"total_credits"`
	StudyDays      int             `json:"study_days"`
	FreeDays       int             `json:"free_days"`
	HoursPerDay    map[int]float64 `json:"hours_per_day"`
	ContinuousDays int             `json:"continuous_days"`
	EarliestStart  string          `json:"earliest_start"`
	LatestEnd      string          `json:"latest_end"`
}

// Combination is one candidate weekly schedule: one section per requested
// subject. HasViolations marks best-effort results that contain at least one
// pairwise conflict; callers must check it before presenting the schedule as
// registrable.
type Combination struct {
	Sections      []ClassSection     `json:"sections"`
	Score         float64            `json:"score"`
	HasViolations bool               `json:"has_violations"`
	Metrics       CombinationMetrics `json:"metrics"`
}

// SubjectSelection is the contract input from the subject-selection
// collaborator: which subjects to schedule, in priority order.
type SubjectSelection struct {
	SubjectID      string `json:"subject_id" validate:"required"`
	Credits        int    `json:"credits" validate:"gte=0"`
	PriorityReason string `json:"priority_reason,omitempty"`
}
