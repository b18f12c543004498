package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"backoffice/internal/domain/entity"
	"backoffice/internal/domain/repository"
	"backoffice/internal/domain/service"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- repository fakes ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	r.users[user.ID] = user

	return nil
}

type fakeCredentialRepo struct {
	mu      sync.Mutex
	creds   map[string]*entity.Credential
	updated []*entity.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{creds: make(map[string]*entity.Credential)}
}

func (r *fakeCredentialRepo) CreateCredential(_ context.Context, cred *entity.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cred.ID == uuid.Nil {
		cred.ID = uuid.New()
	}
	r.creds[cred.Email] = cred

	return nil
}

func (r *fakeCredentialRepo) FindCredentialByEmail(_ context.Context, email string) (*entity.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, ok := r.creds[email]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}

	return cred, nil
}

func (r *fakeCredentialRepo) UpdateCredential(_ context.Context, cred *entity.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creds[cred.Email] = cred
	r.updated = append(r.updated, cred)

	return nil
}

type fakeRepoFactory struct {
	userRepo *fakeUserRepo
	credRepo *fakeCredentialRepo
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository             { return f.userRepo }
func (f *fakeRepoFactory) CredentialRepo() repository.CredentialRepository { return f.credRepo }
func (f *fakeRepoFactory) CategoryRepo() repository.CategoryRepository    { return nil }
func (f *fakeRepoFactory) ProductRepo() repository.ProductRepository      { return nil }

type fakeTxManager struct {
	factory *fakeRepoFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

// --- service fakes ---

const fakeHashPrefix = "hashed:"

// fakeHasher mimics the bcrypt hasher's contract, including the legacy
// plaintext shim, without the cost of real bcrypt in tests.
type fakeHasher struct {
	strengthErr error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	return fakeHashPrefix + password, nil
}

func (h *fakeHasher) Check(password, stored string) bool {
	if h.IsLegacy(stored) {
		return stored == password
	}

	return stored == fakeHashPrefix+password
}

func (h *fakeHasher) IsLegacy(stored string) bool {
	return !strings.HasPrefix(stored, fakeHashPrefix)
}

func (h *fakeHasher) ValidatePasswordStrength(string) error {
	return h.strengthErr
}

type fakeCodeService struct {
	code    string
	ttl     time.Duration
	verdict service.CodeVerdict
}

func (s *fakeCodeService) Generate(now time.Time) (*service.CodeChallenge, error) {
	return &service.CodeChallenge{Code: s.code, ExpiresAt: now.Add(s.ttl)}, nil
}

func (s *fakeCodeService) Validate(_, _ string, _, _ time.Time) service.CodeVerdict {
	return s.verdict
}

type sentCode struct {
	email string
	code  string
}

type fakeCodeSender struct {
	mu   sync.Mutex
	err  error
	sent []sentCode
}

func (s *fakeCodeSender) SendCode(_ context.Context, email, _, code string) error {
	if s.err != nil {
		return s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentCode{email: email, code: code})

	return nil
}

type fakeLimiter struct {
	mu       sync.Mutex
	decision service.AttemptDecision
	recorded []string
	cleared  []string
}

func (l *fakeLimiter) CheckAndRecord(identifier string) service.AttemptDecision {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorded = append(l.recorded, identifier)

	return l.decision
}

func (l *fakeLimiter) Clear(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleared = append(l.cleared, identifier)
}

type fakeAuditTrail struct {
	mu     sync.Mutex
	events []service.AuditEvent
}

func (a *fakeAuditTrail) Record(_ context.Context, event service.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func (a *fakeAuditTrail) byType(eventType string) []service.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []service.AuditEvent
	for _, event := range a.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}

	return out
}

// --- fixture ---

type authFixture struct {
	service  *authService
	userRepo *fakeUserRepo
	credRepo *fakeCredentialRepo
	hasher   *fakeHasher
	codes    *fakeCodeService
	sender   *fakeCodeSender
	limiter  *fakeLimiter
	audit    *fakeAuditTrail
}

func newAuthFixture() *authFixture {
	userRepo := newFakeUserRepo()
	credRepo := newFakeCredentialRepo()
	hasher := &fakeHasher{}
	codes := &fakeCodeService{code: "123456", ttl: 5 * time.Minute, verdict: service.CodeValid}
	sender := &fakeCodeSender{}
	limiter := &fakeLimiter{decision: service.AttemptDecision{Allowed: true}}
	audit := &fakeAuditTrail{}

	svc := &authService{
		txManager:      &fakeTxManager{factory: &fakeRepoFactory{userRepo: userRepo, credRepo: credRepo}},
		credentialRepo: credRepo,
		hasher:         hasher,
		codes:          codes,
		sender:         sender,
		limiter:        limiter,
		audit:          audit,
		logger:         newDiscardLogger(),
	}

	return &authFixture{
		service:  svc,
		userRepo: userRepo,
		credRepo: credRepo,
		hasher:   hasher,
		codes:    codes,
		sender:   sender,
		limiter:  limiter,
		audit:    audit,
	}
}

// seedAccount creates a user plus credential pair and returns the user.
func (f *authFixture) seedAccount(email, storedSecret string, role entity.Role) *entity.User {
	user := &entity.User{
		ID:        uuid.New(),
		Name:      "Seed User",
		Email:     email,
		BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:      role,
	}
	f.userRepo.users[user.ID] = user
	f.credRepo.creds[email] = &entity.Credential{
		ID:           uuid.New(),
		UserID:       user.ID,
		Email:        email,
		PasswordHash: storedSecret,
	}

	return user
}
