package memory

import (
	"context"
	"sort"
	"sync"

	"challenge-quiz-service/internal/domain"
)

// Store is an in-memory implementation of the app repositories.
type Store struct {
	mu             sync.RWMutex
	groups         map[string]domain.Group
	users          map[string]domain.User
	questions      map[int64]domain.Question
	answers        []domain.Answer
	nextQuestionID int64
}

func NewStore() *Store {
	return &Store{
		groups:    make(map[string]domain.Group),
		users:     make(map[string]domain.User),
		questions: make(map[int64]domain.Question),
	}
}

// alive drops soft-deleted rows; every read path goes through it.
func alive[T domain.SoftDeletable](rows []T) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if !row.Deleted() {
			out = append(out, row)
		}
	}
	return out
}

func values[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func (s *Store) CreateGroup(_ context.Context, group domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Name == group.Name {
			return domain.ErrDuplicate
		}
	}
	s.groups[group.ID] = group
	return nil
}

func (s *Store) GetGroup(_ context.Context, groupID string) (domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.groups[groupID]
	if !ok || group.Deleted() {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	return group, nil
}

func (s *Store) ListGroups(_ context.Context) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := alive(values(s.groups))
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name == user.Name || u.MailAddress == user.MailAddress {
			return domain.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok || user.Deleted() {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := alive(values(s.users))
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *Store) ListActiveUsers(ctx context.Context) ([]domain.UserRef, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, domain.UserRef{ID: u.ID, Name: u.Name})
	}
	return refs, nil
}

// CreateQuestion assigns the next sequential id.
func (s *Store) CreateQuestion(_ context.Context, question domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextQuestionID++
	question.ID = s.nextQuestionID
	s.questions[question.ID] = question
	return question, nil
}

func (s *Store) GetQuestion(_ context.Context, questionID int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[questionID]
	if !ok || question.Deleted() {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return question, nil
}

func (s *Store) DeleteQuestion(_ context.Context, questionID int64) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[questionID]
	if !ok || question.Deleted() {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	question.IsDeleted = true
	s.questions[questionID] = question
	return question, nil
}

func (s *Store) ListActiveQuestions(_ context.Context, groupID string, degree int) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool := make([]domain.Question, 0)
	for _, q := range alive(values(s.questions)) {
		if q.GroupID == groupID && q.Degree == degree {
			pool = append(pool, q)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

// CreateAnswer rejects a second row for the same (user, question, challenge count).
// The slot check ignores the soft-delete flag, matching a plain unique index.
func (s *Store) CreateAnswer(_ context.Context, answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slotIndexLocked(answer) >= 0 {
		return domain.ErrAnswerConflict
	}
	s.answers = append(s.answers, answer)
	return nil
}

// UpdateAnswer overwrites the stored value and revives a soft-deleted slot.
func (s *Store) UpdateAnswer(_ context.Context, answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.slotIndexLocked(answer)
	if i < 0 {
		return domain.ErrAnswersNotFound
	}
	existing := &s.answers[i]
	existing.GroupID = answer.GroupID
	existing.Value = answer.Value
	existing.IsCorrect = answer.IsCorrect
	existing.IsDeleted = false
	existing.UpdatedAt = answer.UpdatedAt
	return nil
}

func (s *Store) slotIndexLocked(answer domain.Answer) int {
	for i, a := range s.answers {
		if a.UserID == answer.UserID && a.QuestionID == answer.QuestionID && a.ChallengeCount == answer.ChallengeCount {
			return i
		}
	}
	return -1
}

// ListAnswers returns matching answers ordered by challenge count, then insertion.
func (s *Store) ListAnswers(_ context.Context, filter domain.AnswerFilter) ([]domain.AnswerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.AnswerRecord, 0)
	for _, a := range alive(s.answers) {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.GroupID != "" && a.GroupID != filter.GroupID {
			continue
		}
		if filter.QuestionID != 0 && a.QuestionID != filter.QuestionID {
			continue
		}
		records = append(records, domain.AnswerRecord{
			UserID:         a.UserID,
			IsCorrect:      a.IsCorrect,
			ChallengeCount: a.ChallengeCount,
			GroupName:      s.groups[a.GroupID].Name,
			Degree:         s.questions[a.QuestionID].Degree,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ChallengeCount < records[j].ChallengeCount
	})
	return records, nil
}
