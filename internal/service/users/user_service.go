package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/Domenick1991/flightinventory/internal/repository"
	"github.com/Domenick1991/flightinventory/internal/service"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
}

type RegisterInput struct {
	Name        string `validate:"required,min=2,max=100"`
	Email       string `validate:"required,email,max=255"`
	Password    string `validate:"required,min=6,max=72"`
	PhoneNumber string `validate:"omitempty,startswith=+,e164"`
}

type UserService struct {
	users    repository.UserRepository
	validate *validator.Validate
	cost     int
	log      *slog.Logger
}

type UserServiceOption func(*UserService)

func WithLogger(log *slog.Logger) UserServiceOption {
	return func(s *UserService) {
		s.log = log
	}
}

// WithHashCost overrides the bcrypt cost, mostly to keep tests fast.
func WithHashCost(cost int) UserServiceOption {
	return func(s *UserService) {
		s.cost = cost
	}
}

func NewUserService(users repository.UserRepository, opts ...UserServiceOption) *UserService {
	s := &UserService{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cost:     bcrypt.DefaultCost,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)

	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "register user", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		PhoneNumber:  input.PhoneNumber,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("user with email %s already exists", user.Email)
		}
		return nil, service.Failed(ctx, s.log, "register user", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, service.Failed(ctx, s.log, "get user", err, slog.Int64("user_id", id))
	}
	return user, nil
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return domain.InvalidArgument("invalid user data")
	}
	fe := errs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.InvalidArgument("%s is required", field)
	case "min":
		return domain.InvalidArgument("%s must be at least %s characters", field, fe.Param())
	case "max":
		return domain.InvalidArgument("%s must be at most %s characters", field, fe.Param())
	case "email":
		return domain.InvalidArgument("email is not valid")
	case "startswith", "e164":
		return domain.InvalidArgument("phone number must be in E.164 format")
	default:
		return domain.InvalidArgument("%s is invalid", field)
	}
}

var _ UserUseCase = (*UserService)(nil)
