package models

import (
	"strconv"
	"strings"
	"time"
)

// DefaultWeeksPerTerm is the number of teaching weeks the sentinel "all" expands to.
const DefaultWeeksPerTerm = 16

// Weekday codes follow the Vietnamese convention: 2 = Monday ... 7 = Saturday, 8 = Sunday.
const (
	WeekdayMonday = 2
	WeekdaySunday = 8
)

// ClassSection is one schedule-able weekly offering of a subject.
// Raw day/week/time strings come straight from the class_sections table and are
// normalised into the derived fields once, right after loading. The derived
// fields are read-only for the rest of the request.
type ClassSection struct {
	ID              string    `db:"id" json:"id"`
	SubjectID       string    `db:"subject_id" json:"subject_id"`
	SubjectName     string    `db:"subject_name" json:"subject_name,omitempty"`
	TeacherName     string    `db:"teacher_name" json:"teacher_name"`
	Room            string    `db:"room" json:"room"`
	Capacity        int       `db:"capacity" json:"capacity"`
	RegisteredCount int       `db:"registered_count" json:"registered_count"`
	Credits         int       `db:"credits" json:"credits"`
	StudyDaysRaw    string    `db:"study_days" json:"study_days"`
	StudyWeeksRaw   string    `db:"study_weeks" json:"study_weeks"`
	StartTimeRaw    string    `db:"start_time" json:"start_time"`
	EndTimeRaw      string    `db:"end_time" json:"end_time"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	StudyDays   []int `db:"-" json:"-"`
	StudyWeeks  []int `db:"-" json:"-"`
	StartMinute int   `db:"-" json:"-"`
	EndMinute   int   `db:"-" json:"-"`
}

// Normalize derives the day/week sets and the minute interval from the raw
// strings. Malformed fields degrade locally: unknown day tokens are skipped,
// an unparsable week spec means every week, an unparsable clock collapses the
// interval to empty so the section can never collide on time.
func (s *ClassSection) Normalize(weeksPerTerm int) {
	s.StudyDays = ParseStudyDays(s.StudyDaysRaw)
	s.StudyWeeks = ParseStudyWeeks(s.StudyWeeksRaw, weeksPerTerm)

	start, okStart := ParseClock(s.StartTimeRaw)
	end, okEnd := ParseClock(s.EndTimeRaw)
	if !okStart || !okEnd || start >= end {
		s.StartMinute = 0
		s.EndMinute = 0
		return
	}
	s.StartMinute = start
	s.EndMinute = end
}

// DurationHours returns the session length in hours.
func (s *ClassSection) DurationHours() float64 {
	if s.EndMinute <= s.StartMinute {
		return 0
	}
	return float64(s.EndMinute-s.StartMinute) / 60
}

// AvailabilityRatio reports spare seats over capacity, clamped to [0,1].
func (s *ClassSection) AvailabilityRatio() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	spare := s.Capacity - s.RegisteredCount
	if spare <= 0 {
		return 0
	}
	return float64(spare) / float64(s.Capacity)
}

// ParseStudyDays parses a comma-joined day string ("Thứ 2,Thứ 4", "2,4" or
// "CN") into sorted unique weekday codes. Unrecognised tokens are dropped.
func ParseStudyDays(raw string) []int {
	seen := make(map[int]bool)
	for _, token := range strings.Split(raw, ",") {
		day := parseDayToken(token)
		if day >= WeekdayMonday && day <= WeekdaySunday {
			seen[day] = true
		}
	}
	return sortedKeys(seen)
}

func parseDayToken(token string) int {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return 0
	}
	if strings.Contains(token, "chủ nhật") || strings.Contains(token, "chu nhat") || token == "cn" {
		return WeekdaySunday
	}
	token = strings.TrimPrefix(token, "thứ")
	token = strings.TrimPrefix(token, "thu")
	token = strings.TrimPrefix(token, "t")
	token = strings.TrimSpace(token)
	value, err := strconv.Atoi(token)
	if err != nil {
		return 0
	}
	return value
}

// ParseStudyWeeks parses a week spec: the sentinel "all", a range "a-b", a
// comma list, or a single number. An empty or unparsable spec means every
// week of the term.
func ParseStudyWeeks(raw string, weeksPerTerm int) []int {
	if weeksPerTerm <= 0 {
		weeksPerTerm = DefaultWeeksPerTerm
	}
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return weekRange(1, weeksPerTerm)
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if strings.Contains(token, "-") {
			parts := strings.SplitN(token, "-", 2)
			from, errFrom := strconv.Atoi(strings.TrimSpace(parts[0]))
			to, errTo := strconv.Atoi(strings.TrimSpace(parts[1]))
			if errFrom != nil || errTo != nil || from < 1 || to < from {
				continue
			}
			for week := from; week <= to; week++ {
				seen[week] = true
			}
			continue
		}
		week, err := strconv.Atoi(token)
		if err != nil || week < 1 {
			continue
		}
		seen[week] = true
	}
	if len(seen) == 0 {
		return weekRange(1, weeksPerTerm)
	}
	return sortedKeys(seen)
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, errHour := strconv.Atoi(parts[0])
	minute, errMinute := strconv.Atoi(parts[1])
	if errHour != nil || errMinute != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// FormatClock renders minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hour := (minutes / 60) % 24
	minute := minutes % 60
	return twoDigits(hour) + ":" + twoDigits(minute)
}

func twoDigits(value int) string {
	if value < 10 {
		return "0" + strconv.Itoa(value)
	}
	return strconv.Itoa(value)
}

func weekRange(from, to int) []int {
	weeks := make([]int, 0, to-from+1)
	for week := from; week <= to; week++ {
		weeks = append(weeks, week)
	}
	return weeks
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
