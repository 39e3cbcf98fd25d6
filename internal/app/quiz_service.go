package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"challenge-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// AnswerRepository abstracts the answer store (in-memory, Postgres, etc).
// Implementations never return soft-deleted rows.
type AnswerRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetQuestion(ctx context.Context, questionID int64) (domain.Question, error)
	// ListAnswers returns answers ordered by ascending challenge count.
	ListAnswers(ctx context.Context, filter domain.AnswerFilter) ([]domain.AnswerRecord, error)
	ListActiveUsers(ctx context.Context) ([]domain.UserRef, error)
	// CreateAnswer returns domain.ErrAnswerConflict when the attempt slot is taken.
	CreateAnswer(ctx context.Context, answer domain.Answer) error
	// UpdateAnswer overwrites the value and correctness of an existing attempt slot.
	UpdateAnswer(ctx context.Context, answer domain.Answer) error
}

// QuestionRepository lists the active question pool for a group and degree.
type QuestionRepository interface {
	ListActiveQuestions(ctx context.Context, groupID string, degree int) ([]domain.Question, error)
}

// QuestionPool is a QuestionRepository that may cache and must be told about changes.
type QuestionPool interface {
	QuestionRepository
	Invalidate(ctx context.Context, groupID string, degree int) error
}

// CatalogRepository stores groups, users and questions.
type CatalogRepository interface {
	CreateGroup(ctx context.Context, group domain.Group) error
	GetGroup(ctx context.Context, groupID string) (domain.Group, error)
	ListGroups(ctx context.Context) ([]domain.Group, error)
	CreateUser(ctx context.Context, user domain.User) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error)
	DeleteQuestion(ctx context.Context, questionID int64) (domain.Question, error)
}

// Options tune validation bounds and defaults.
type Options struct {
	DefaultLimit int
	MinDegree    int
	MaxDegree    int
	// Seed feeds the sampler; nil seeds from the clock on every call.
	Seed func() int64
	Now  func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = 5
	}
	if o.MinDegree <= 0 {
		o.MinDegree = 1
	}
	if o.MaxDegree < o.MinDegree {
		o.MaxDegree = max(3, o.MinDegree)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// QuizService contains the quiz use cases.
type QuizService struct {
	answers AnswerRepository
	catalog CatalogRepository
	pool    QuestionPool
	sampler *Sampler
	feed    *RankingFeed
	opts    Options
}

func NewQuizService(answers AnswerRepository, catalog CatalogRepository, pool QuestionPool, opts Options) *QuizService {
	opts = opts.withDefaults()
	return &QuizService{
		answers: answers,
		catalog: catalog,
		pool:    pool,
		sampler: NewSampler(opts.Seed),
		feed:    NewRankingFeed(),
		opts:    opts,
	}
}

// SubmitAnswer evaluates and records an answer, returning whether it was correct.
// A second submission for the same (user, question, challenge count) overwrites the
// stored value in place instead of failing, so retries of one attempt are idempotent.
func (s *QuizService) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (bool, error) {
	if err := validateRequest(req); err != nil {
		return false, err
	}

	question, err := s.answers.GetQuestion(ctx, req.QuestionID)
	if err != nil {
		return false, err
	}
	if _, err := s.answers.GetUser(ctx, req.UserID); err != nil {
		return false, err
	}

	groupID := req.GroupID
	if groupID == "" {
		groupID = question.GroupID
	} else if _, err := s.catalog.GetGroup(ctx, groupID); err != nil {
		return false, err
	}

	now := s.opts.Now()
	answer := domain.Answer{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		GroupID:        groupID,
		QuestionID:     question.ID,
		Value:          *req.Answer,
		IsCorrect:      *req.Answer == question.Correct,
		ChallengeCount: *req.ChallengeCount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.answers.CreateAnswer(ctx, answer)
	if errors.Is(err, domain.ErrAnswerConflict) {
		log.Printf("answer slot user=%s question=%d count=%d taken, updating in place",
			answer.UserID, answer.QuestionID, answer.ChallengeCount)
		err = s.answers.UpdateAnswer(ctx, answer)
	}
	if err != nil {
		return false, fmt.Errorf("record answer: %w", err)
	}

	s.publishRankings(ctx)
	return answer.IsCorrect, nil
}

// UserRecord reports a user's correctness overall and per challenge count.
func (s *QuizService) UserRecord(ctx context.Context, req RecordRequest) (domain.RecordReport, error) {
	if err := validateRequest(req); err != nil {
		return domain.RecordReport{}, err
	}
	if _, err := s.answers.GetUser(ctx, req.UserID); err != nil {
		return domain.RecordReport{}, err
	}

	records, err := s.answers.ListAnswers(ctx, domain.AnswerFilter{UserID: req.UserID, GroupID: req.GroupID})
	if err != nil {
		return domain.RecordReport{}, err
	}
	if len(records) == 0 {
		return domain.RecordReport{}, domain.ErrAnswersNotFound
	}
	return BuildRecordReport(records)
}

// Ranking ranks every active user by sortBy (default: correct answer rate) descending.
func (s *QuizService) Ranking(ctx context.Context, sortBy domain.RankingField) ([]domain.RankingEntry, error) {
	if sortBy == "" {
		sortBy = domain.RankByRate
	}
	if !sortBy.Valid() {
		return nil, fmt.Errorf("%w: unsupported sort field %q", domain.ErrInvalidInput, sortBy)
	}

	users, records, err := s.rankingInputs(ctx)
	if err != nil {
		return nil, err
	}
	return BuildRanking(users, records, sortBy), nil
}

func (s *QuizService) rankingInputs(ctx context.Context) ([]domain.UserRef, []domain.AnswerRecord, error) {
	users, err := s.answers.ListActiveUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(users) == 0 {
		return nil, nil, domain.ErrNoUsers
	}
	records, err := s.answers.ListAnswers(ctx, domain.AnswerFilter{})
	if err != nil {
		return nil, nil, err
	}
	return users, records, nil
}

// SubscribeRanking returns a channel of ranking snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) SubscribeRanking(ctx context.Context, sortBy domain.RankingField) (<-chan domain.Ranking, func(), error) {
	if sortBy == "" {
		sortBy = domain.RankByRate
	}
	entries, err := s.Ranking(ctx, sortBy)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.Subscribe(sortBy, domain.Ranking{
		SortedBy:  sortBy,
		Entries:   entries,
		UpdatedAt: s.opts.Now(),
	})
	return ch, cancel, nil
}

func (s *QuizService) publishRankings(ctx context.Context) {
	fields := s.feed.Fields()
	if len(fields) == 0 {
		return
	}
	users, records, err := s.rankingInputs(ctx)
	if err != nil {
		log.Printf("ranking refresh failed: %v", err)
		return
	}
	now := s.opts.Now()
	for _, field := range fields {
		s.feed.Publish(domain.Ranking{
			SortedBy:  field,
			Entries:   BuildRanking(users, records, field),
			UpdatedAt: now,
		})
	}
}

// SampleQuestions draws a fresh random subset of the active pool for a group and degree.
func (s *QuizService) SampleQuestions(ctx context.Context, req SampleQuestionsRequest) ([]domain.Question, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkDegree(*req.Degree); err != nil {
		return nil, err
	}
	limit := s.opts.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	pool, err := s.pool.ListActiveQuestions(ctx, req.GroupID, *req.Degree)
	if err != nil {
		return nil, err
	}
	return s.sampler.Sample(pool, limit)
}

func (s *QuizService) checkDegree(degree int) error {
	if degree < s.opts.MinDegree || degree > s.opts.MaxDegree {
		return fmt.Errorf("%w: degree must be between %d and %d", domain.ErrInvalidInput, s.opts.MinDegree, s.opts.MaxDegree)
	}
	return nil
}
