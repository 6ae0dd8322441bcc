package models

// PreferenceStatus is the tri-state of one preference category. The zero value
// means the student has not answered that category yet.
type PreferenceStatus string

const (
	PreferenceUnanswered   PreferenceStatus = ""
	PreferenceSet          PreferenceStatus = "SET"
	PreferenceAvoid        PreferenceStatus = "AVOID"
	PreferenceNotImportant PreferenceStatus = "NOT_IMPORTANT"
)

// Answered reports whether the category has left the unanswered state.
func (s PreferenceStatus) Answered() bool {
	return s != PreferenceUnanswered
}

// PreferenceCategory identifies one of the five collected categories.
type PreferenceCategory string

const (
	CategoryDay        PreferenceCategory = "day"
	CategoryTime       PreferenceCategory = "time"
	CategoryContinuous PreferenceCategory = "continuous"
	CategoryFreeDays   PreferenceCategory = "freeDays"
	CategorySpecific   PreferenceCategory = "specific"
)

// CategoryOrder is the fixed priority order questions are asked in.
var CategoryOrder = []PreferenceCategory{
	CategoryDay,
	CategoryTime,
	CategoryContinuous,
	CategoryFreeDays,
	CategorySpecific,
}

// TimePeriod names a coarse window of the day.
type TimePeriod string

const (
	PeriodMorning   TimePeriod = "morning"
	PeriodAfternoon TimePeriod = "afternoon"
)

// Minutes returns the half-open minute window of the period.
func (p TimePeriod) Minutes() (int, int) {
	switch p {
	case PeriodMorning:
		return 6 * 60, 12 * 60
	case PeriodAfternoon:
		return 12 * 60, 18 * 60
	default:
		return 0, 0
	}
}

// Contains reports whether the given minute falls inside the period.
func (p TimePeriod) Contains(minute int) bool {
	from, to := p.Minutes()
	if from == to {
		return false
	}
	return minute >= from && minute < to
}

// DayPreference captures preferred and avoided weekdays.
type DayPreference struct {
	Status    PreferenceStatus `json:"status"`
	Preferred []int            `json:"preferred,omitempty"`
	Avoided   []int            `json:"avoided,omitempty"`
}

// TimePreference captures the requested period and early/late bias.
type TimePreference struct {
	Status         PreferenceStatus `json:"status"`
	Period         TimePeriod       `json:"period,omitempty"`
	PreferEarly    bool             `json:"prefer_early,omitempty"`
	PreferLate     bool             `json:"prefer_late,omitempty"`
	AvoidedPeriods []TimePeriod     `json:"avoided_periods,omitempty"`
}

// ContinuousPreference records whether back-to-back study days are wanted.
type ContinuousPreference struct {
	Status PreferenceStatus `json:"status"`
	Wanted bool             `json:"wanted,omitempty"`
}

// FreeDaysPreference records whether class-free days should be maximised.
type FreeDaysPreference struct {
	Status   PreferenceStatus `json:"status"`
	Maximize bool             `json:"maximize,omitempty"`
}

// SpecificPreference names teachers, explicit section ids or a time window.
type SpecificPreference struct {
	Status      PreferenceStatus `json:"status"`
	Teachers    []string         `json:"teachers,omitempty"`
	SectionIDs  []string         `json:"section_ids,omitempty"`
	WindowStart int              `json:"window_start,omitempty"`
	WindowEnd   int              `json:"window_end,omitempty"`
}

// HasWindow reports whether an explicit time window was named.
func (p SpecificPreference) HasWindow() bool {
	return p.WindowEnd > p.WindowStart
}

// PreferenceModel aggregates all collected scheduling preferences. It is
// mutated only by the conversation state machine; the filter, generator and
// scorer treat it as read-only.
type PreferenceModel struct {
	Day        DayPreference        `json:"day"`
	Time       TimePreference       `json:"time"`
	Continuous ContinuousPreference `json:"continuous"`
	FreeDays   FreeDaysPreference   `json:"free_days"`
	Specific   SpecificPreference   `json:"specific"`
}

// StatusOf returns the tri-state of one category.
func (m *PreferenceModel) StatusOf(category PreferenceCategory) PreferenceStatus {
	switch category {
	case CategoryDay:
		return m.Day.Status
	case CategoryTime:
		return m.Time.Status
	case CategoryContinuous:
		return m.Continuous.Status
	case CategoryFreeDays:
		return m.FreeDays.Status
	case CategorySpecific:
		return m.Specific.Status
	default:
		return PreferenceUnanswered
	}
}

// MissingCategories lists unanswered categories in priority order.
func (m *PreferenceModel) MissingCategories() []PreferenceCategory {
	missing := make([]PreferenceCategory, 0, len(CategoryOrder))
	for _, category := range CategoryOrder {
		if !m.StatusOf(category).Answered() {
			missing = append(missing, category)
		}
	}
	return missing
}

// IsComplete is true once every category has been answered.
func (m *PreferenceModel) IsComplete() bool {
	return len(m.MissingCategories()) == 0
}
