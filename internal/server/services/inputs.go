package services

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	msgAllFieldsRequired  = "All fields are required"
	msgInvalidEmail       = "Invalid email address"
	msgIdentifierRequired = "Username or email is required"
	msgPasswordRequired   = "Password is required"
)

// RegisterInput is the register form. AvatarPath and CoverImagePath point
// at files already saved on local disk.
type RegisterInput struct {
	FullName       string `json:"fullName" form:"fullName"`
	Email          string `json:"email" form:"email"`
	Username       string `json:"username" form:"username"`
	Password       string `json:"password" form:"password"`
	AvatarPath     string `json:"-" form:"-"`
	CoverImagePath string `json:"-" form:"-"`
}

func (in *RegisterInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Username, validation.Required),
		validation.Field(&in.Password, validation.Required, validation.By(notBlank)),
	)
}

type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (in *LoginInput) normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.By(requiredUnless(in.Email))),
		validation.Field(&in.Password, validation.Required),
	)
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

func (in ChangePasswordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.OldPassword, validation.Required, validation.By(notBlank)),
		validation.Field(&in.NewPassword, validation.Required, validation.By(notBlank)),
	)
}

type UpdateAccountInput struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email" form:"email"`
}

func (in *UpdateAccountInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func (in UpdateAccountInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
	)
}

// notBlank rejects whitespace-only strings without trimming the value.
func notBlank(value interface{}) error {
	s, _ := value.(string)
	if s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// requiredUnless makes a field required when other is empty.
func requiredUnless(other string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" && other == "" {
			return errors.New("cannot be blank")
		}
		return nil
	}
}

func anyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// newValidationError copies per-field messages from ozzo errors into the
// AppError so clients can show them.
func newValidationError(msg string, err error) *common.AppError {
	appErr := common.NewValidationError(msg, err)

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		appErr.Fields = make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			appErr.Fields[field] = ferr.Error()
		}
	}
	return appErr
}
