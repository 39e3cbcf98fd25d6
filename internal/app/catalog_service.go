package app

import (
	"context"
	"fmt"

	"challenge-quiz-service/internal/domain"
	"github.com/google/uuid"
)

func (s *QuizService) RegisterGroup(ctx context.Context, req RegisterGroupRequest) (domain.Group, error) {
	if err := validateRequest(req); err != nil {
		return domain.Group{}, err
	}
	now := s.opts.Now()
	group := domain.Group{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.catalog.CreateGroup(ctx, group); err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

// Groups lists active groups; an empty catalog is reported as not found.
func (s *QuizService) Groups(ctx context.Context) ([]domain.Group, error) {
	groups, err := s.catalog.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, domain.ErrGroupNotFound
	}
	return groups, nil
}

func (s *QuizService) RegisterUser(ctx context.Context, req RegisterUserRequest) (domain.User, error) {
	if err := validateRequest(req); err != nil {
		return domain.User{}, err
	}
	now := s.opts.Now()
	user := domain.User{
		ID:          uuid.NewString(),
		Name:        req.Name,
		MailAddress: req.MailAddress,
		Authority:   req.Authority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.catalog.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Users lists active users; none at all is reported as not found.
func (s *QuizService) Users(ctx context.Context) ([]domain.User, error) {
	users, err := s.catalog.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.ErrNoUsers
	}
	return users, nil
}

func (s *QuizService) User(ctx context.Context, userID string) (domain.User, error) {
	return s.answers.GetUser(ctx, userID)
}

// RegisterQuestion stores a question and drops the cached pool it belongs to.
func (s *QuizService) RegisterQuestion(ctx context.Context, req RegisterQuestionRequest) (domain.Question, error) {
	if err := validateRequest(req); err != nil {
		return domain.Question{}, err
	}
	if err := s.checkDegree(*req.Degree); err != nil {
		return domain.Question{}, err
	}
	if domain.QuestionType(req.Type) == domain.QuestionSelect && countChoices(req) < 2 {
		return domain.Question{}, fmt.Errorf("%w: select questions need at least two choices", domain.ErrInvalidInput)
	}
	if _, err := s.catalog.GetGroup(ctx, req.GroupID); err != nil {
		return domain.Question{}, err
	}
	if _, err := s.answers.GetUser(ctx, req.UserID); err != nil {
		return domain.Question{}, err
	}

	now := s.opts.Now()
	question, err := s.catalog.CreateQuestion(ctx, domain.Question{
		GroupID:   req.GroupID,
		UserID:    req.UserID,
		Type:      domain.QuestionType(req.Type),
		Degree:    *req.Degree,
		Text:      req.Text,
		ShapePath: req.ShapePath,
		Correct:   req.Correct,
		Choice1:   req.Choice1,
		Choice2:   req.Choice2,
		Choice3:   req.Choice3,
		Choice4:   req.Choice4,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.Question{}, err
	}
	if err := s.pool.Invalidate(ctx, question.GroupID, question.Degree); err != nil {
		return domain.Question{}, fmt.Errorf("invalidate question pool: %w", err)
	}
	return question, nil
}

// DeleteQuestion soft-deletes a question and drops the cached pool it belonged to.
func (s *QuizService) DeleteQuestion(ctx context.Context, questionID int64) error {
	question, err := s.catalog.DeleteQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if err := s.pool.Invalidate(ctx, question.GroupID, question.Degree); err != nil {
		return fmt.Errorf("invalidate question pool: %w", err)
	}
	return nil
}

func countChoices(req RegisterQuestionRequest) int {
	n := 0
	for _, c := range []*string{req.Choice1, req.Choice2, req.Choice3, req.Choice4} {
		if c != nil && *c != "" {
			n++
		}
	}
	return n
}
