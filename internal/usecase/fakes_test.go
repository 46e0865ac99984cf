package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/repository"
	"github.com/kipusaplus/kipus-api/internal/token"
)

// ---- fakes ----

type fakeUserRepo struct {
	register    func(ctx context.Context, in repository.RegisterInput) (*domain.User, error)
	create      func(ctx context.Context, u *domain.User) (*domain.User, error)
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	findByID    func(ctx context.Context, id int64) (*domain.User, error)
	list        func(ctx context.Context) ([]*domain.User, error)
	update      func(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	delete      func(ctx context.Context, id int64) error
}

func (r *fakeUserRepo) Register(ctx context.Context, in repository.RegisterInput) (*domain.User, error) {
	return r.register(ctx, in)
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.create(ctx, u)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	return r.list(ctx)
}

func (r *fakeUserRepo) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	return r.update(ctx, id, patch)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

// memResetRepo keeps reset codes in memory with the same conditional
// semantics as the SQL implementation.
type memResetRepo struct {
	mu        sync.Mutex
	nextID    int64
	codes     map[int64]*domain.ResetCode
	passwords map[int64]string
}

func newMemResetRepo() *memResetRepo {
	return &memResetRepo{codes: make(map[int64]*domain.ResetCode), passwords: make(map[int64]string)}
}

func (r *memResetRepo) Create(_ context.Context, userID int64, code string, expiresAt time.Time) (*domain.ResetCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rc := &domain.ResetCode{ID: r.nextID, UserID: userID, Code: code, State: domain.ResetRequested, ExpiresAt: expiresAt}
	r.codes[rc.ID] = rc
	cp := *rc
	return &cp, nil
}

func (r *memResetRepo) FindRequested(_ context.Context, userID int64, code string) (*domain.ResetCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *domain.ResetCode
	for _, rc := range r.codes {
		if rc.UserID == userID && rc.Code == code && rc.State == domain.ResetRequested {
			if best == nil || rc.ID > best.ID {
				best = rc
			}
		}
	}
	if best == nil {
		return nil, domain.ErrInvalidResetCode
	}
	cp := *best
	return &cp, nil
}

func (r *memResetRepo) Transition(_ context.Context, id int64, from, to domain.ResetState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.codes[id]
	if !ok || rc.State != from {
		return domain.ErrInvalidResetCode
	}
	rc.State = to
	return nil
}

func (r *memResetRepo) Complete(_ context.Context, id, userID int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.codes[id]
	if !ok || rc.UserID != userID || rc.State != domain.ResetVerified {
		return domain.ErrInvalidResetCode
	}
	rc.State = domain.ResetCompleted
	r.passwords[userID] = passwordHash
	for _, other := range r.codes {
		if other.UserID == userID && other.State == domain.ResetRequested {
			other.State = domain.ResetRevoked
		}
	}
	return nil
}

func (r *memResetRepo) Purge(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *memResetRepo) state(id int64) domain.ResetState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[id].State
}

func (r *memResetRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTokens(clk *testClock) *token.Service {
	return token.NewService([]byte(testJWTKey), clk.Now)
}
