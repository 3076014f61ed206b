package domain

// Status represents the derived completion status of a questionnaire.
// It is never set directly by a user; Recalculate derives it from progress.
type Status string

const (
	StatusNotStarted Status = "NotStarted"
	StatusDraft      Status = "Draft"
	StatusInProgress Status = "InProgress"
	StatusInReview   Status = "InReview"
	StatusCompleted  Status = "Completed"
)

// Category is the closed classification set for questions.
type Category string

const (
	CategorySecurityPolicy     Category = "Security Policy"
	CategoryDataProtection     Category = "Data Protection"
	CategoryAccessControl      Category = "Access Control"
	CategoryCompliance         Category = "Compliance"
	CategoryBusinessContinuity Category = "Business Continuity"
	CategoryTraining           Category = "Training"
	CategoryDefault            Category = "Default"
)

// IsValid checks if the Category is a member of the closed set.
func (c Category) IsValid() bool {
	switch c {
	case CategorySecurityPolicy, CategoryDataProtection, CategoryAccessControl,
		CategoryCompliance, CategoryBusinessContinuity, CategoryTraining, CategoryDefault:
		return true
	}
	return false
}

// AnswerState is the explicit lifecycle state of one answer's text.
// It is set by the code that produces the text and is never persisted;
// StateOf reclassifies text loaded from an older cache entry.
type AnswerState string

const (
	AnswerStateEmpty     AnswerState = "empty"
	AnswerStatePending   AnswerState = "pending"
	AnswerStateGenerated AnswerState = "generated"
	AnswerStateFailed    AnswerState = "failed"
)

// QuestionAnswer is one question/answer pair within a questionnaire.
//
// The JSON field names match the persisted user_questionnaires format and
// must not change; IsLoading and State are transient and never written.
type QuestionAnswer struct {
	QuestionID     string      `json:"questionId,omitempty"`
	Question       string      `json:"question"`
	Answer         string      `json:"answer"`
	IsMandatory    bool        `json:"isMandatory"`
	NeedsAttention bool        `json:"needsAttention"`
	Category       Category    `json:"category"`
	IsLoading      bool        `json:"-"`
	State          AnswerState `json:"-"`
}

// Questionnaire identifies one compliance questionnaire instance.
// Answer order is meaningful; it is the presentation order.
type Questionnaire struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Status    Status           `json:"status"`
	Progress  int              `json:"progress"`
	DueDate   string           `json:"dueDate,omitempty"`
	Answers   []QuestionAnswer `json:"answers"`
	CreatedAt string           `json:"createdAt,omitempty"`
}

// Clone returns a deep copy so snapshots handed to callers cannot alias
// the record mutated by in-flight generation.
func (q Questionnaire) Clone() Questionnaire {
	out := q
	out.Answers = make([]QuestionAnswer, len(q.Answers))
	copy(out.Answers, q.Answers)
	return out
}
