package users

import (
	"context"
	"errors"
	"strings"

	"drystore-backend/internal/access"
	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const minPasswordLen = 6

// CounterLookup resolves the counter a counter-role user is assigned to.
type CounterLookup interface {
	Counter(ctx context.Context, id string) (*models.Counter, error)
}

type Service struct {
	store    Store
	counters CounterLookup
	policy   access.Policy
	log      *zap.Logger
	newID    func() string
	cost     int
}

func NewService(store Store, counters CounterLookup, policy access.Policy, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		counters: counters,
		policy:   policy,
		log:      log,
		newID:    uuid.NewString,
		cost:     bcrypt.DefaultCost,
	}
}

type CreateRequest struct {
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Role      models.UserRole `json:"role"`
	FloorID   string          `json:"floorId"`
	CounterID string          `json:"counterId"`
}

func normalizeEmail(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Create is an admin action. Admin and manager accounts drop any
// floor/counter sent with them.
func (s *Service) Create(ctx context.Context, actor *models.User, req CreateRequest) (*models.User, error) {
	if err := s.policy.CheckAdmin(actor); err != nil {
		return nil, err
	}
	return s.create(ctx, req)
}

func (s *Service) create(ctx context.Context, req CreateRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLen)
	}
	if !req.Role.Valid() {
		return nil, apperr.Validation("unknown role %q", req.Role)
	}

	u := &models.User{ID: s.newID(), Email: email, Role: req.Role}
	if req.Role == models.RoleCounter {
		u.FloorID = optional(req.FloorID)
		u.CounterID = optional(req.CounterID)

		var counter *models.Counter
		if u.CounterID != nil {
			c, err := s.counters.Counter(ctx, *u.CounterID)
			switch {
			case err == nil:
				counter = c
			case !errors.Is(err, apperr.ErrNotFound):
				return nil, err
			}
		}
		if err := s.policy.ValidateAssignment(u, counter); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperr.External(err, "hash password")
	}
	u.PasswordHash = string(hash)

	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user created",
		zap.String("user_id", u.ID),
		zap.String("email", u.Email),
		zap.String("role", string(u.Role)))
	return u, nil
}

// BootstrapAdmin creates the first admin. It is refused once any admin
// exists.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (*models.User, error) {
	n, err := s.store.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperr.PermissionDenied("an admin already exists")
	}
	return s.create(ctx, CreateRequest{Email: email, Password: password, Role: models.RoleAdmin})
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := s.policy.CheckAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}
