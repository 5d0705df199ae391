package accounts

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ramo2594/probook/services/probook/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	CreateProfessional(ctx context.Context, u *model.User, p *model.Professional) error
}

type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// dummyHash keeps Authenticate's cost constant for unknown usernames.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("probook-dummy-password"), bcrypt.MinCost)

func (s *Service) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, model.ErrNotFound) {
		_ = verifyPassword(string(dummyHash), password)
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// User returns the user behind a session; model.ErrNotFound once it was deleted.
func (s *Service) User(ctx context.Context, id int64) (model.User, error) {
	return s.users.GetByID(ctx, id)
}

type NewProfessional struct {
	Username     string `label:"username" validate:"required,max=150"`
	Email        string `label:"e-mail" validate:"omitempty,email,max=254"`
	Password     string `label:"password" validate:"min=8"`
	Phone        string `label:"phone" validate:"max=20"`
	BusinessName string `label:"business name" validate:"required,max=200"`
	Services     string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Name
	})
	return v
}

// normalized trims every field except the password.
func (n NewProfessional) normalized() NewProfessional {
	n.Username = strings.TrimSpace(n.Username)
	n.Email = strings.TrimSpace(n.Email)
	n.Phone = strings.TrimSpace(n.Phone)
	n.BusinessName = strings.TrimSpace(n.BusinessName)
	n.Services = strings.TrimSpace(n.Services)
	return n
}

// ValidationError names the first field that failed its rule.
type ValidationError struct {
	Field string
	Label string
	Rule  string
	Param string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case "required":
		return e.Label + " is required"
	case "email":
		return e.Label + " must be a valid address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Label, e.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Label, e.Param)
	}
	return e.Label + " is invalid"
}

func (n NewProfessional) validate() error {
	err := validate.Struct(n)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.StructField(), Label: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	}
	return err
}

// CreateProfessional provisions a professional user together with its business profile.
func (s *Service) CreateProfessional(ctx context.Context, n NewProfessional) (model.User, model.Professional, error) {
	n = n.normalized()
	if err := n.validate(); err != nil {
		return model.User{}, model.Professional{}, err
	}
	hash, err := hashPassword(n.Password)
	if err != nil {
		return model.User{}, model.Professional{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Username:       n.Username,
		Email:          n.Email,
		PasswordHash:   hash,
		IsProfessional: true,
		Phone:          n.Phone,
	}
	p := model.Professional{
		BusinessName: n.BusinessName,
		Services:     n.Services,
	}
	if err := s.users.CreateProfessional(ctx, &u, &p); err != nil {
		return model.User{}, model.Professional{}, err
	}
	return u, p, nil
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash string, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
