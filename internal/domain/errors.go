package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is the root of every "nothing to report" condition.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique name or mail address is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrAnswerConflict is returned by stores when an attempt slot is already filled.
	ErrAnswerConflict = errors.New("answer already recorded for this challenge count")
	// ErrDivisionUndefined is returned when a rate is requested over zero records.
	ErrDivisionUndefined = errors.New("rate over zero records is undefined")
)

var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrGroupNotFound    = fmt.Errorf("group %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	ErrAnswersNotFound  = fmt.Errorf("answers %w", ErrNotFound)
	ErrNoQuestions      = fmt.Errorf("questions %w", ErrNotFound)
	ErrNoUsers          = fmt.Errorf("users %w", ErrNotFound)
)
