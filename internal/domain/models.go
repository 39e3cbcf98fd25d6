package domain

import "time"

// QuestionType is the answer form a question expects.
type QuestionType string

const (
	QuestionInput  QuestionType = "input"
	QuestionSelect QuestionType = "select"
)

// Group is a named collection of questions.
type Group struct {
	ID        string    `json:"group_id"`
	Name      string    `json:"group_name"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"create_date"`
	UpdatedAt time.Time `json:"update_date"`
}

// User is a quiz participant.
type User struct {
	ID                string    `json:"user_id"`
	Name              string    `json:"user_name"`
	MailAddress       string    `json:"mail_address"`
	Authority         bool      `json:"authority"`
	CorrectAnswerRate *float64  `json:"correct_answer_rate"`
	IsDeleted         bool      `json:"-"`
	CreatedAt         time.Time `json:"create_date"`
	UpdatedAt         time.Time `json:"update_date"`
}

// UserRef is the minimal user view needed for ranking.
type UserRef struct {
	ID   string
	Name string
}

// Question models a single prompt with its correct answer value.
type Question struct {
	ID        int64        `json:"question_id"`
	GroupID   string       `json:"group_id"`
	UserID    string       `json:"user_id"`
	Type      QuestionType `json:"question_type"`
	Degree    int          `json:"degree"`
	Text      string       `json:"question"`
	ShapePath *string      `json:"shape_path"`
	Correct   string       `json:"correct"`
	Choice1   *string      `json:"choice_1"`
	Choice2   *string      `json:"choice_2"`
	Choice3   *string      `json:"choice_3"`
	Choice4   *string      `json:"choice_4"`
	IsDeleted bool         `json:"-"`
	CreatedAt time.Time    `json:"-"`
	UpdatedAt time.Time    `json:"-"`
}

// Answer is one recorded attempt of a user at a question.
// (UserID, QuestionID, ChallengeCount) identifies an attempt slot.
type Answer struct {
	ID             string
	UserID         string
	GroupID        string
	QuestionID     int64
	Value          string
	IsCorrect      bool
	ChallengeCount int
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AnswerRecord is an answer joined with the group name and question degree.
type AnswerRecord struct {
	UserID         string
	IsCorrect      bool
	ChallengeCount int
	GroupName      string
	Degree         int
}

// AnswerFilter narrows answer listings. Empty fields match everything.
// Soft-deleted rows are always excluded by the store.
type AnswerFilter struct {
	UserID     string
	GroupID    string
	QuestionID int64
}

// RecordDetail is the breakdown for a single challenge count.
type RecordDetail struct {
	ChallengeCount     int    `json:"challenge_count"`
	TotalCount         int    `json:"total_count"`
	CorrectAnswerCount int    `json:"correct_answer_count"`
	CorrectAnswerRate  string `json:"correct_answer_rate"`
	GroupName          string `json:"group_name"`
	Degree             int    `json:"degree"`
}

// RecordReport summarizes a single user's answer history.
type RecordReport struct {
	TotalCount         int            `json:"total_count"`
	CorrectAnswerCount int            `json:"correct_answer_count"`
	CorrectAnswerRate  string         `json:"correct_answer_rate"`
	Detail             []RecordDetail `json:"detail"`
}

// RankingField selects the primary sort key of a ranking.
type RankingField string

const (
	RankByRate         RankingField = "correct_answer_rate"
	RankByCorrectCount RankingField = "correct_answer_count"
	RankByTotalCount   RankingField = "total_count"
)

// Valid reports whether f is a supported ranking sort key.
func (f RankingField) Valid() bool {
	switch f {
	case RankByRate, RankByCorrectCount, RankByTotalCount:
		return true
	}
	return false
}

// RankingEntry is one row of the cross-user ranking.
type RankingEntry struct {
	UserName           string `json:"user_name"`
	TotalCount         int    `json:"total_count"`
	CorrectAnswerCount int    `json:"correct_answer_count"`
	CorrectAnswerRate  string `json:"correct_answer_rate"`
}

// Ranking is a snapshot pushed to live subscribers.
type Ranking struct {
	SortedBy  RankingField   `json:"sorted_by"`
	Entries   []RankingEntry `json:"entries"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SoftDeletable is implemented by every stored entity; stores drop rows for which Deleted is true.
type SoftDeletable interface {
	Deleted() bool
}

func (g Group) Deleted() bool    { return g.IsDeleted }
func (u User) Deleted() bool     { return u.IsDeleted }
func (q Question) Deleted() bool { return q.IsDeleted }
func (a Answer) Deleted() bool   { return a.IsDeleted }
