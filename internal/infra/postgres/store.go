package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"challenge-quiz-service/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
	answerSlotConstraint    = "answers_slot_key"
)

// Store implements the app repositories on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// active is the soft-delete predicate every read applies.
func active(alias string) string {
	return alias + ".is_deleted = FALSE"
}

func (s *Store) CreateGroup(ctx context.Context, group domain.Group) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_groups (group_id, group_name, create_date, update_date) VALUES ($1, $2, $3, $4)`,
		group.ID, group.Name, group.CreatedAt, group.UpdatedAt)
	if isCode(err, codeUniqueViolation) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID string) (domain.Group, error) {
	var g domain.Group
	err := s.pool.QueryRow(ctx,
		`SELECT g.group_id::text, g.group_name, g.create_date, g.update_date
		 FROM quiz_groups g WHERE g.group_id::text = $1 AND `+active("g"), groupID).
		Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT g.group_id::text, g.group_name, g.create_date, g.update_date
		 FROM quiz_groups g WHERE `+active("g")+` ORDER BY g.group_name`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]domain.Group, 0)
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (user_id, user_name, mail_address, authority, create_date, update_date)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.MailAddress, user.Authority, user.CreatedAt, user.UpdatedAt)
	if isCode(err, codeUniqueViolation) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

const userColumns = `u.user_id::text, u.user_name, u.mail_address, u.authority, u.correct_answer_rate, u.create_date, u.update_date`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.MailAddress, &u.Authority, &u.CorrectAnswerRate, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.user_id::text = $1 AND `+active("u"), userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users u WHERE `+active("u")+` ORDER BY u.user_name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) ListActiveUsers(ctx context.Context) ([]domain.UserRef, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.user_id::text, u.user_name FROM users u WHERE `+active("u")+` ORDER BY u.user_name`)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	refs := make([]domain.UserRef, 0)
	for rows.Next() {
		var ref domain.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

const questionColumns = `q.question_id, q.group_id::text, q.user_id::text, q.question_type, q.degree, q.question,
	q.shape_path, q.correct, q.choice_1, q.choice_2, q.choice_3, q.choice_4, q.create_date, q.update_date`

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	var qType string
	err := row.Scan(&q.ID, &q.GroupID, &q.UserID, &qType, &q.Degree, &q.Text,
		&q.ShapePath, &q.Correct, &q.Choice1, &q.Choice2, &q.Choice3, &q.Choice4, &q.CreatedAt, &q.UpdatedAt)
	q.Type = domain.QuestionType(qType)
	return q, err
}

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO questions (group_id, user_id, question_type, degree, question, shape_path, correct,
			choice_1, choice_2, choice_3, choice_4, create_date, update_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING question_id`,
		q.GroupID, q.UserID, string(q.Type), q.Degree, q.Text, q.ShapePath, q.Correct,
		q.Choice1, q.Choice2, q.Choice3, q.Choice4, q.CreatedAt, q.UpdatedAt).Scan(&q.ID)
	if isCode(err, codeForeignKeyViolation) || isCode(err, codeInvalidText) {
		return domain.Question{}, fmt.Errorf("create question: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

func (s *Store) GetQuestion(ctx context.Context, questionID int64) (domain.Question, error) {
	q, err := scanQuestion(s.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions q WHERE q.question_id = $1 AND `+active("q"), questionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, questionID int64) (domain.Question, error) {
	q, err := scanQuestion(s.pool.QueryRow(ctx,
		`UPDATE questions q SET is_deleted = TRUE, update_date = now()
		 WHERE q.question_id = $1 AND `+active("q")+` RETURNING `+questionColumns, questionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("delete question: %w", err)
	}
	q.IsDeleted = true
	return q, nil
}

func (s *Store) ListActiveQuestions(ctx context.Context, groupID string, degree int) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions q
		 WHERE q.group_id::text = $1 AND q.degree = $2 AND `+active("q")+` ORDER BY q.question_id`,
		groupID, degree)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	pool := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		pool = append(pool, q)
	}
	return pool, rows.Err()
}

func (s *Store) CreateAnswer(ctx context.Context, a domain.Answer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO answers (answer_id, user_id, group_id, question_id, answer, is_correct,
			challenge_count, is_deleted, create_date, update_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.UserID, a.GroupID, a.QuestionID, a.Value, a.IsCorrect,
		a.ChallengeCount, a.IsDeleted, a.CreatedAt, a.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == answerSlotConstraint:
			return domain.ErrAnswerConflict
		case pgErr.Code == codeForeignKeyViolation, pgErr.Code == codeInvalidText:
			return fmt.Errorf("create answer: %w", domain.ErrGroupNotFound)
		}
	}
	if err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	return nil
}

// UpdateAnswer overwrites an attempt slot in place and revives it if it was soft-deleted.
func (s *Store) UpdateAnswer(ctx context.Context, a domain.Answer) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE answers SET group_id = $4, answer = $5, is_correct = $6, is_deleted = FALSE, update_date = $7
		 WHERE user_id = $1 AND question_id = $2 AND challenge_count = $3`,
		a.UserID, a.QuestionID, a.ChallengeCount, a.GroupID, a.Value, a.IsCorrect, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnswersNotFound
	}
	return nil
}

// ListAnswers joins each answer with its group name and question degree.
func (s *Store) ListAnswers(ctx context.Context, filter domain.AnswerFilter) ([]domain.AnswerRecord, error) {
	conds := []string{active("a")}
	args := make([]interface{}, 0, 3)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, "a.user_id::text = $"+strconv.Itoa(len(args)))
	}
	if filter.GroupID != "" {
		args = append(args, filter.GroupID)
		conds = append(conds, "a.group_id::text = $"+strconv.Itoa(len(args)))
	}
	if filter.QuestionID != 0 {
		args = append(args, filter.QuestionID)
		conds = append(conds, "a.question_id = $"+strconv.Itoa(len(args)))
	}

	rows, err := s.pool.Query(ctx,
		`SELECT a.user_id::text, a.is_correct, a.challenge_count, g.group_name, q.degree
		 FROM answers a
		 JOIN quiz_groups g ON g.group_id = a.group_id
		 JOIN questions q ON q.question_id = a.question_id
		 WHERE `+strings.Join(conds, " AND ")+`
		 ORDER BY a.challenge_count, a.create_date`, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AnswerRecord, 0)
	for rows.Next() {
		var r domain.AnswerRecord
		if err := rows.Scan(&r.UserID, &r.IsCorrect, &r.ChallengeCount, &r.GroupName, &r.Degree); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func isCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
