package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"challenge-quiz-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

// SubmitAnswerRequest carries one answer submission. GroupID falls back to the question's group.
type SubmitAnswerRequest struct {
	UserID         string  `json:"user_id" validate:"required"`
	QuestionID     int64   `json:"question_id" validate:"required,gt=0"`
	GroupID        string  `json:"group_id"`
	Answer         *string `json:"answer" validate:"required"`
	ChallengeCount *int    `json:"challenge_count" validate:"required,gte=1"`
}

// RecordRequest asks for a user's record, optionally restricted to one group.
type RecordRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	GroupID string `json:"group_id"`
}

// SampleQuestionsRequest selects practice questions. Limit defaults to the configured value.
type SampleQuestionsRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Degree  *int   `json:"degree" validate:"required"`
	Limit   *int   `json:"limit" validate:"omitempty,gte=1"`
}

type RegisterGroupRequest struct {
	Name string `json:"group_name" validate:"required,max=30"`
}

type RegisterUserRequest struct {
	Name        string `json:"user_name" validate:"required,max=30"`
	MailAddress string `json:"mail_address" validate:"required,max=100"`
	Authority   bool   `json:"authority"`
}

type RegisterQuestionRequest struct {
	GroupID   string  `json:"group_id" validate:"required"`
	UserID    string  `json:"user_id" validate:"required"`
	Type      string  `json:"question_type" validate:"required,oneof=input select"`
	Degree    *int    `json:"degree" validate:"required"`
	Text      string  `json:"question" validate:"required,max=255"`
	ShapePath *string `json:"shape_path" validate:"omitempty,url"`
	Correct   string  `json:"correct" validate:"required,max=255"`
	Choice1   *string `json:"choice_1" validate:"omitempty,max=255"`
	Choice2   *string `json:"choice_2" validate:"omitempty,max=255"`
	Choice3   *string `json:"choice_3" validate:"omitempty,max=255"`
	Choice4   *string `json:"choice_4" validate:"omitempty,max=255"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest reports the first failing field wrapped in domain.ErrInvalidInput.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, fe.Field())
		}
		return fmt.Errorf("%w: %s failed %s validation", domain.ErrInvalidInput, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}
