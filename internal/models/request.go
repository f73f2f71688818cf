package models

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json field names in validation details
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("interview_level", func(fl validator.FieldLevel) bool {
		return ValidLevels[fl.Field().String()]
	})
	_ = v.RegisterValidation("interview_type", func(fl validator.FieldLevel) bool {
		return ValidTypes[fl.Field().String()]
	})
	return v
}

// GenerateInterviewRequest is the interview form submission
type GenerateInterviewRequest struct {
	Role         string       `json:"role" validate:"required,min=2"`
	Level        string       `json:"level" validate:"required,interview_level"`
	Type         string       `json:"type" validate:"required,interview_type"`
	Techstack    string       `json:"techstack" validate:"required,min=2"`
	Amount       int          `json:"amount" validate:"min=1,max=20"`
	ScheduleType ScheduleType `json:"scheduleType" validate:"oneof=now later"`
	ScheduledFor *time.Time   `json:"scheduledFor,omitempty" validate:"required_if=ScheduleType later"`
}

// implements the Validator interface
func (r *GenerateInterviewRequest) Validate() error {
	r.Role = strings.TrimSpace(r.Role)
	if r.Amount == 0 {
		r.Amount = DefaultQuestionAmount
	}
	if r.ScheduleType == "" {
		r.ScheduleType = ScheduleNow
	}

	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}

	if len(r.TechstackList()) == 0 {
		return &ErrorResponse{
			Code:    "validation_error",
			Message: "Request validation failed",
			Details: []ValidationErrorDetail{{Field: "techstack", Reason: "must name at least one technology"}},
		}
	}

	// a schedule only applies to later interviews
	if r.ScheduleType == ScheduleNow {
		r.ScheduledFor = nil
	}
	return nil
}

// TechstackList splits the comma separated techstack field
func (r *GenerateInterviewRequest) TechstackList() []string {
	var out []string
	for _, tech := range strings.Split(r.Techstack, ",") {
		if tech = strings.TrimSpace(tech); tech != "" {
			out = append(out, tech)
		}
	}
	return out
}

type CreateFeedbackRequest struct {
	InterviewID string           `json:"interviewId" validate:"required"`
	FeedbackID  string           `json:"feedbackId,omitempty"`
	Transcript  []TranscriptTurn `json:"transcript" validate:"required,min=1,dive"`
}

func (r *CreateFeedbackRequest) Validate() error {
	r.InterviewID = strings.TrimSpace(r.InterviewID)
	r.FeedbackID = strings.TrimSpace(r.FeedbackID)
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts validator errors into an ErrorResponse with one
// detail per failing field
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ErrorResponse{Code: "validation_error", Message: err.Error()}
	}

	resp := &ErrorResponse{
		Code:    "validation_error",
		Message: "Request validation failed",
	}
	for _, fe := range fieldErrs {
		resp.Details = append(resp.Details, ValidationErrorDetail{
			Field:  fe.Field(),
			Reason: reasonFor(fe),
		})
	}
	return resp
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "interview_level":
		return "must be one of: " + strings.Join(ValidLevelsList(), ", ")
	case "interview_type":
		return "must be one of: " + strings.Join(ValidTypesList(), ", ")
	default:
		return "is invalid"
	}
}
