package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domain "backoffice/catalog/internal/domain/auth"
	"backoffice/catalog/internal/obs"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultMinPasswordLength is the shortest password SignUp accepts by default.
const DefaultMinPasswordLength = 6

// Service is the authentication provider. It persists accounts, issues
// session tokens and pushes every session transition to its listeners.
type Service struct {
	users     domain.UserRepository
	tokens    TokenManager
	cache     SessionCache
	minPwdLen int
	nowFunc   func() time.Time

	// notifyMu serialises commit and fan-out so listeners observe
	// transitions in the order they were applied.
	notifyMu sync.Mutex

	mu        sync.Mutex
	current   *domain.Identity
	resolved  bool
	listeners map[string]domain.SessionListener
}

var _ domain.Provider = (*Service)(nil)

// NewService constructs an auth provider. cache may be nil.
func NewService(users domain.UserRepository, tokens TokenManager, cache SessionCache, minPasswordLength int) *Service {
	if minPasswordLength <= 0 {
		minPasswordLength = DefaultMinPasswordLength
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		cache:     cache,
		minPwdLen: minPasswordLength,
		nowFunc:   time.Now,
		listeners: make(map[string]domain.SessionListener),
	}
}

// OnSessionChange registers fn. Once the initial session is resolved fn is
// called immediately with the current identity; before that, the first call
// arrives when Restore completes. Listeners must not call back into the
// service's sign-in or sign-out methods.
func (s *Service) OnSessionChange(fn domain.SessionListener) func() {
	id := uuid.NewString()

	s.notifyMu.Lock()
	s.mu.Lock()
	s.listeners[id] = fn
	resolved, current := s.resolved, cloneIdentity(s.current)
	s.mu.Unlock()
	if resolved {
		fn(current)
	}
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Restore resolves the initial session from token, or from the session cache
// when token is empty. Any failure resolves to signed out.
func (s *Service) Restore(ctx context.Context, token string) *domain.Identity {
	token = strings.TrimSpace(token)
	if token == "" && s.cache != nil {
		cached, err := s.cache.Load()
		if err != nil {
			obs.Logger.Warn("session_cache_load_failed", "error", err)
		}
		token = strings.TrimSpace(cached)
	}

	var identity *domain.Identity
	if token != "" {
		restored, err := s.VerifyToken(ctx, token)
		if err != nil {
			obs.Logger.Info("session_restore_rejected", "error", err)
			s.clearCache()
		} else {
			identity = restored
			obs.Logger.Info("session_restored", "email", identity.Email)
		}
	}
	s.publish(identity)
	return cloneIdentity(identity)
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid email is required")
	}
	if len(password) < s.minPwdLen {
		return nil, domain.ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.startSession(user)
}

// SignIn validates credentials and makes the account the current session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.startSession(user)
}

// SignOut clears the current session and notifies listeners.
func (s *Service) SignOut(ctx context.Context) error {
	s.clearCache()
	s.publish(nil)
	return nil
}

// VerifyToken validates a session token and returns the associated identity.
func (s *Service) VerifyToken(ctx context.Context, token string) (*domain.Identity, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	return &domain.Identity{UserID: user.ID, Email: user.Email, Token: token}, nil
}

// Current returns the provider's view of the session.
func (s *Service) Current() (*domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIdentity(s.current), s.resolved
}

func (s *Service) startSession(user *domain.User) (*domain.Identity, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	identity := &domain.Identity{UserID: user.ID, Email: user.Email, Token: token}
	if s.cache != nil {
		if err := s.cache.Save(token); err != nil {
			obs.Logger.Warn("session_cache_save_failed", "error", err)
		}
	}
	s.publish(identity)
	return cloneIdentity(identity), nil
}

// publish replaces the session and fans out outside the state lock. The
// delivery lock is held across both, so no later transition overtakes it.
func (s *Service) publish(identity *domain.Identity) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.current = cloneIdentity(identity)
	s.resolved = true
	listeners := make([]domain.SessionListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cloneIdentity(identity))
	}
}

func (s *Service) clearCache() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(); err != nil {
		obs.Logger.Warn("session_cache_clear_failed", "error", err)
	}
}

func cloneIdentity(identity *domain.Identity) *domain.Identity {
	if identity == nil {
		return nil
	}
	copy := *identity
	return &copy
}
