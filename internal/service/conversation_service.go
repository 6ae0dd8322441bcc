package service

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vqdung71104/student-management-sub000/internal/models"
	appErrors "github.com/vqdung71104/student-management-sub000/pkg/errors"
)

// conversationStore persists per-student conversation state with a TTL.
type conversationStore interface {
	Get(ctx context.Context, studentID string) (*models.ConversationState, error)
	Save(ctx context.Context, state *models.ConversationState) error
	Delete(ctx context.Context, studentID string) error
}

// ConversationService drives the preference-collection state machine. The
// store is the single source of truth; every turn loads, transitions and
// saves the whole state (last-write-wins across processes).
type ConversationService struct {
	store  conversationStore
	logger *zap.Logger
}

// NewConversationService constructs the service.
func NewConversationService(store conversationStore, logger *zap.Logger) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{store: store, logger: logger}
}

var categoryQuestions = map[models.PreferenceCategory]models.ConversationQuestion{
	models.CategoryDay: {
		Key:  models.CategoryDay,
		Text: "Bạn muốn học vào những ngày nào trong tuần? (ví dụ: thứ 2, thứ 4; hoặc \"không thứ 7\" để tránh)",
		Options: []string{
			"Liệt kê các thứ muốn học, cách nhau bởi dấu phẩy",
			"Bắt đầu bằng \"không\" hoặc \"tránh\" để liệt kê các thứ cần tránh",
			"Trả lời \"không quan trọng\" nếu không có yêu cầu",
		},
	},
	models.CategoryTime: {
		Key:  models.CategoryTime,
		Text: "Bạn muốn học vào buổi nào trong ngày?",
		Options: []string{
			"1. Buổi sáng",
			"2. Buổi chiều",
			"3. Ưu tiên giờ học sớm",
			"4. Ưu tiên giờ học muộn",
			"5. Không quan trọng",
		},
	},
	models.CategoryContinuous: {
		Key:  models.CategoryContinuous,
		Text: "Bạn có muốn học liên tục nhiều tiết trong cùng một ngày không?",
		Options: []string{
			"1. Có",
			"2. Không",
			"3. Không quan trọng",
		},
	},
	models.CategoryFreeDays: {
		Key:  models.CategoryFreeDays,
		Text: "Bạn có muốn tối đa số ngày nghỉ trong tuần không?",
		Options: []string{
			"1. Có",
			"2. Không",
			"3. Không quan trọng",
		},
	},
	models.CategorySpecific: {
		Key:  models.CategorySpecific,
		Text: "Bạn có yêu cầu cụ thể nào khác không? (giảng viên, mã lớp, khung giờ; trả lời \"không\" nếu không có)",
	},
}

// PendingQuestion returns the question awaiting an answer, creating a fresh
// collecting session when the student has none.
func (s *ConversationService) PendingQuestion(ctx context.Context, studentID string) (*models.ConversationState, error) {
	state, err := s.store.Get(ctx, studentID)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conversation store operation failed")
		}
		state = models.NewConversationState(studentID)
	}
	if state.Stage == models.StageCompleted {
		return state, nil
	}
	if state.PendingQuestion == nil {
		s.selectNextQuestion(state)
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conversation store operation failed")
	}
	return state, nil
}

// SubmitAnswer parses one answer turn against the pending question, updates
// exactly that preference category and advances to the next question or the
// completed stage. An unparsable answer keeps the same pending question.
func (s *ConversationService) SubmitAnswer(ctx context.Context, studentID, text string) (*models.ConversationState, error) {
	state, err := s.store.Get(ctx, studentID)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conversation store operation failed")
		}
		state = models.NewConversationState(studentID)
	}
	if state.Stage == models.StageCompleted {
		return nil, appErrors.ErrConversationDone
	}
	if state.PendingQuestion == nil {
		s.selectNextQuestion(state)
	}

	if state.PendingQuestion != nil {
		parsed := applyAnswer(&state.Preferences, state.PendingQuestion.Key, text)
		if parsed {
			state.QuestionsAsked++
			state.PendingQuestion = nil
			s.selectNextQuestion(state)
		} else {
			s.logger.Debug("unparsable conversation answer",
				zap.String("student_id", studentID),
				zap.String("category", string(state.PendingQuestion.Key)))
		}
	}

	state.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, state); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conversation store operation failed")
	}
	return state, nil
}

// Status returns the current session without mutating it.
func (s *ConversationService) Status(ctx context.Context, studentID string) (*models.ConversationState, error) {
	state, err := s.store.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conversation store operation failed")
	}
	return state, nil
}

// IsComplete reports whether the student's preference model is complete.
func (s *ConversationService) IsComplete(ctx context.Context, studentID string) (bool, error) {
	state, err := s.Status(ctx, studentID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return state.Stage == models.StageCompleted, nil
}

// Preferences returns the collected model, or an error when the session is
// missing or still collecting.
func (s *ConversationService) Preferences(ctx context.Context, studentID string) (*models.PreferenceModel, error) {
	state, err := s.Status(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if state.Stage != models.StageCompleted {
		return nil, appErrors.New("CONVERSATION_INCOMPLETE", http.StatusConflict, "preference collection is not finished")
	}
	prefs := state.Preferences
	return &prefs, nil
}

// Reset deletes the session so the next turn starts a fresh one.
func (s *ConversationService) Reset(ctx context.Context, studentID string) error {
	if err := s.store.Delete(ctx, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conversation store operation failed")
	}
	return nil
}

func (s *ConversationService) selectNextQuestion(state *models.ConversationState) {
	missing := state.Preferences.MissingCategories()
	state.QuestionsRemaining = len(missing)
	if len(missing) == 0 {
		state.Stage = models.StageCompleted
		state.PendingQuestion = nil
		return
	}
	question := categoryQuestions[missing[0]]
	state.PendingQuestion = &question
}

// applyAnswer dispatches to the per-category parser. It reports false when
// the text could not be understood, leaving the model untouched.
func applyAnswer(prefs *models.PreferenceModel, category models.PreferenceCategory, text string) bool {
	answer := strings.ToLower(strings.TrimSpace(text))
	if answer == "" {
		return false
	}
	switch category {
	case models.CategoryDay:
		return parseDayAnswer(&prefs.Day, answer)
	case models.CategoryTime:
		return parseTimeAnswer(&prefs.Time, answer)
	case models.CategoryContinuous:
		return parseYesNoAnswer(answer, func(wanted bool) {
			prefs.Continuous = models.ContinuousPreference{Status: statusFor(wanted), Wanted: wanted}
		}, func() {
			prefs.Continuous = models.ContinuousPreference{Status: models.PreferenceNotImportant}
		})
	case models.CategoryFreeDays:
		return parseYesNoAnswer(answer, func(wanted bool) {
			prefs.FreeDays = models.FreeDaysPreference{Status: statusFor(wanted), Maximize: wanted}
		}, func() {
			prefs.FreeDays = models.FreeDaysPreference{Status: models.PreferenceNotImportant}
		})
	case models.CategorySpecific:
		return parseSpecificAnswer(&prefs.Specific, answer)
	default:
		return false
	}
}

func statusFor(wanted bool) models.PreferenceStatus {
	if wanted {
		return models.PreferenceSet
	}
	return models.PreferenceAvoid
}

func isNotImportant(answer string) bool {
	return strings.Contains(answer, "không quan trọng") || strings.Contains(answer, "khong quan trong")
}

func parseDayAnswer(pref *models.DayPreference, answer string) bool {
	if isNotImportant(answer) {
		*pref = models.DayPreference{Status: models.PreferenceNotImportant}
		return true
	}
	negated := false
	for _, prefix := range []string{"không", "khong", "tránh", "tranh"} {
		if strings.HasPrefix(answer, prefix) {
			negated = true
			answer = strings.TrimSpace(strings.TrimPrefix(answer, prefix))
			break
		}
	}
	days := models.ParseStudyDays(answer)
	if len(days) == 0 {
		return false
	}
	if negated {
		*pref = models.DayPreference{Status: models.PreferenceAvoid, Avoided: days}
	} else {
		*pref = models.DayPreference{Status: models.PreferenceSet, Preferred: days}
	}
	return true
}

func parseTimeAnswer(pref *models.TimePreference, answer string) bool {
	if isNotImportant(answer) {
		*pref = models.TimePreference{Status: models.PreferenceNotImportant}
		return true
	}
	if strings.HasPrefix(answer, "tránh buổi") || strings.HasPrefix(answer, "tranh buoi") {
		avoided := make([]models.TimePeriod, 0, 2)
		if strings.Contains(answer, "sáng") || strings.Contains(answer, "sang") {
			avoided = append(avoided, models.PeriodMorning)
		}
		if strings.Contains(answer, "chiều") || strings.Contains(answer, "chieu") {
			avoided = append(avoided, models.PeriodAfternoon)
		}
		if len(avoided) == 0 {
			return false
		}
		*pref = models.TimePreference{Status: models.PreferenceAvoid, AvoidedPeriods: avoided}
		return true
	}
	choice := numberedChoice(answer)
	switch {
	case choice == 1 || strings.Contains(answer, "sáng") || strings.Contains(answer, "sang"):
		*pref = models.TimePreference{Status: models.PreferenceSet, Period: models.PeriodMorning}
	case choice == 2 || strings.Contains(answer, "chiều") || strings.Contains(answer, "chieu"):
		*pref = models.TimePreference{Status: models.PreferenceSet, Period: models.PeriodAfternoon}
	case choice == 3 || strings.Contains(answer, "sớm") || strings.Contains(answer, "som"):
		*pref = models.TimePreference{Status: models.PreferenceSet, PreferEarly: true}
	case choice == 4 || strings.Contains(answer, "muộn") || strings.Contains(answer, "muon"):
		*pref = models.TimePreference{Status: models.PreferenceSet, PreferLate: true}
	case choice == 5:
		*pref = models.TimePreference{Status: models.PreferenceNotImportant}
	default:
		return false
	}
	return true
}

// parseYesNoAnswer handles the numbered có/không/không-quan-trọng choices.
func parseYesNoAnswer(answer string, set func(bool), notImportant func()) bool {
	if isNotImportant(answer) || numberedChoice(answer) == 3 {
		notImportant()
		return true
	}
	switch {
	case numberedChoice(answer) == 1 || strings.HasPrefix(answer, "có") || strings.HasPrefix(answer, "co"):
		set(true)
	case numberedChoice(answer) == 2 || strings.HasPrefix(answer, "không") || strings.HasPrefix(answer, "khong"):
		set(false)
	default:
		return false
	}
	return true
}

var (
	teacherPattern = regexp.MustCompile(`(?:thầy|thay|cô|co)\s+([\p{L}\s]+?)(?:,|;|$|\s+và\s)`)
	sectionPattern = regexp.MustCompile(`\b(\d{4,6})\b`)
	windowPattern  = regexp.MustCompile(`(?:từ|tu)\s+(\d{1,2}:\d{2})\s+(?:đến|den)\s+(\d{1,2}:\d{2})`)
)

func parseSpecificAnswer(pref *models.SpecificPreference, answer string) bool {
	if isNotImportant(answer) {
		*pref = models.SpecificPreference{Status: models.PreferenceNotImportant}
		return true
	}
	if answer == "không" || answer == "khong" {
		*pref = models.SpecificPreference{Status: models.PreferenceNotImportant}
		return true
	}

	parsed := models.SpecificPreference{Status: models.PreferenceSet}
	for _, match := range teacherPattern.FindAllStringSubmatch(answer, -1) {
		name := strings.TrimSpace(match[1])
		if name != "" {
			parsed.Teachers = append(parsed.Teachers, name)
		}
	}
	for _, match := range sectionPattern.FindAllStringSubmatch(answer, -1) {
		parsed.SectionIDs = append(parsed.SectionIDs, match[1])
	}
	if match := windowPattern.FindStringSubmatch(answer); match != nil {
		start, okStart := models.ParseClock(match[1])
		end, okEnd := models.ParseClock(match[2])
		if okStart && okEnd && end > start {
			parsed.WindowStart = start
			parsed.WindowEnd = end
		}
	}
	if len(parsed.Teachers) == 0 && len(parsed.SectionIDs) == 0 && !parsed.HasWindow() {
		return false
	}
	*pref = parsed
	return true
}

func numberedChoice(answer string) int {
	fields := strings.FieldsFunc(answer, func(r rune) bool {
		return r == '.' || r == ')' || r == ' '
	})
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
