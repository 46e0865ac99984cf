package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/repository"
	"golang.org/x/sync/errgroup"
)

// TableRowLimit caps every table browser read.
const TableRowLimit = 100

const recentWindow = 7 * 24 * time.Hour

const (
	dashboardRegions  = 8
	dashboardMeasures = 5
	signupMonths      = 6
)

type AdminUsecase struct {
	users    repository.UserRepository
	comments repository.CommentRepository
	ratings  repository.RatingRepository
	admin    repository.AdminRepository
	logger   *slog.Logger
	now      func() time.Time
}

type AdminDeps struct {
	Users    repository.UserRepository
	Comments repository.CommentRepository
	Ratings  repository.RatingRepository
	Admin    repository.AdminRepository
}

// NewAdminUsecase uses time.Now when now is nil.
func NewAdminUsecase(deps AdminDeps, logger *slog.Logger, now func() time.Time) *AdminUsecase {
	if now == nil {
		now = time.Now
	}
	return &AdminUsecase{
		users:    deps.Users,
		comments: deps.Comments,
		ratings:  deps.Ratings,
		admin:    deps.Admin,
		logger:   logger.With("component", "admin"),
		now:      now,
	}
}

func (u *AdminUsecase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUserInput is an admin edit. Nil fields stay unchanged.
type UpdateUserInput struct {
	Email       *string
	Name        *string
	Role        *string
	NewPassword *string
}

func (u *AdminUsecase) UpdateUser(ctx context.Context, actorID, id int64, in UpdateUserInput) (*domain.User, error) {
	var patch domain.UserPatch

	if in.Email != nil {
		e := NormalizeEmail(*in.Email)
		if err := checkEmail("correo", e); err != nil {
			return nil, err
		}
		patch.Email = &e
	}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return nil, domain.Invalid("nombre_completo", "must not be empty")
		}
		patch.Name = &n
	}
	if in.Role != nil {
		r := domain.Role(*in.Role)
		if !r.Valid() {
			return nil, domain.Invalid("tipo_usuario", "must be usuario or admin")
		}
		patch.Role = &r
	}
	if in.NewPassword != nil && *in.NewPassword != "" {
		if err := validatePassword("nueva_contrasena", *in.NewPassword); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*in.NewPassword)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	if patch.Empty() {
		return nil, domain.ErrNothingToWrite
	}

	user, err := u.users.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	u.logger.InfoContext(ctx, "user updated by admin",
		"actor_id", actorID, "user_id", id, "password_changed", patch.PasswordHash != nil)
	return user, nil
}

func (u *AdminUsecase) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return domain.ErrSelfDelete
	}
	if err := u.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	u.logger.InfoContext(ctx, "user deleted by admin", "actor_id", actorID, "user_id", id)
	return nil
}

// CreateAdmin provisions an administrator account outside the public
// registration path. It has no dwelling.
func (u *AdminUsecase) CreateAdmin(ctx context.Context, email, name, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := checkEmail("email", email); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domain.Invalid("name", "is required")
	}
	if err := validatePassword("password", password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	u.logger.InfoContext(ctx, "admin created", "user_id", user.ID)
	return user, nil
}

func (u *AdminUsecase) Comments(ctx context.Context) ([]*domain.Comment, *domain.CommentStats, error) {
	list, err := u.comments.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list comments: %w", err)
	}
	stats, err := u.comments.Stats(ctx, u.now().Add(-recentWindow))
	if err != nil {
		return nil, nil, fmt.Errorf("comment stats: %w", err)
	}
	return list, stats, nil
}

func (u *AdminUsecase) Ratings(ctx context.Context) ([]*domain.Rating, *domain.RatingStats, error) {
	list, err := u.ratings.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list ratings: %w", err)
	}
	stats, err := u.ratings.Stats(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("rating stats: %w", err)
	}
	return list, stats, nil
}

func (u *AdminUsecase) SystemStats(ctx context.Context) (*domain.SystemStats, error) {
	s, err := u.admin.SystemStats(ctx, u.now().Add(-recentWindow))
	if err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}
	return s, nil
}

func (u *AdminUsecase) UsersByRegion(ctx context.Context) ([]domain.RegionCount, error) {
	counts, err := u.admin.UsersByRegion(ctx)
	if err != nil {
		return nil, fmt.Errorf("users by region: %w", err)
	}
	return counts, nil
}

func (u *AdminUsecase) EvaluationsByType(ctx context.Context) (*domain.EvaluationCounts, error) {
	c, err := u.admin.EvaluationCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("evaluation counts: %w", err)
	}
	return c, nil
}

func (u *AdminUsecase) AverageSavings(ctx context.Context) ([]domain.SavingsAverage, error) {
	s, err := u.admin.AverageSavings(ctx)
	if err != nil {
		return nil, fmt.Errorf("average savings: %w", err)
	}
	return s, nil
}

func (u *AdminUsecase) RatingDistribution(ctx context.Context) ([5]int, error) {
	s, err := u.ratings.Stats(ctx)
	if err != nil {
		return [5]int{}, fmt.Errorf("rating distribution: %w", err)
	}
	return s.Distribution, nil
}

// Dashboard gathers every admin chart. The reads run concurrently and the
// first failure cancels the rest.
func (u *AdminUsecase) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var d domain.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		regions, err := u.admin.UsersByRegion(gctx)
		if err != nil {
			return fmt.Errorf("users by region: %w", err)
		}
		if len(regions) > dashboardRegions {
			regions = regions[:dashboardRegions]
		}
		d.UsersByRegion = regions
		return nil
	})
	g.Go(func() error {
		c, err := u.admin.EvaluationCounts(gctx)
		if err != nil {
			return fmt.Errorf("evaluation counts: %w", err)
		}
		d.Evaluations = *c
		return nil
	})
	g.Go(func() error {
		s, err := u.admin.AverageSavings(gctx)
		if err != nil {
			return fmt.Errorf("average savings: %w", err)
		}
		d.Savings = s
		return nil
	})
	g.Go(func() error {
		s, err := u.ratings.Stats(gctx)
		if err != nil {
			return fmt.Errorf("rating distribution: %w", err)
		}
		d.Ratings = s.Distribution
		return nil
	})
	g.Go(func() error {
		m, err := u.admin.RecommendedMeasures(gctx)
		if err != nil {
			return fmt.Errorf("recommended measures: %w", err)
		}
		if len(m) > dashboardMeasures {
			m = m[:dashboardMeasures]
		}
		d.Measures = m
		return nil
	})
	g.Go(func() error {
		since := u.now().AddDate(0, -signupMonths, 0)
		m, err := u.admin.SignupsByMonth(gctx, since)
		if err != nil {
			return fmt.Errorf("signups by month: %w", err)
		}
		d.Signups = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (u *AdminUsecase) ListTable(ctx context.Context, name string) (*domain.TableRows, error) {
	t, err := domain.LookupTable(name)
	if err != nil {
		return nil, err
	}
	rows, err := u.admin.ListRows(ctx, t, TableRowLimit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.Name, err)
	}
	return rows, nil
}

// CreateTableRow inserts a row into a table that accepts new rows, using only
// its insertable columns.
func (u *AdminUsecase) CreateTableRow(ctx context.Context, actorID int64, name string, body map[string]any) (map[string]any, error) {
	t, err := domain.LookupTable(name)
	if err != nil {
		return nil, err
	}
	values, err := t.CoerceInsert(body)
	if err != nil {
		return nil, err
	}
	row, err := u.admin.InsertRow(ctx, t, values)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", t.Name, err)
	}
	u.logger.InfoContext(ctx, "table row created", "actor_id", actorID, "table", t.Name)
	return row, nil
}

// UpdateTableRow writes only columns on the table's allow-list, coerced to
// their declared kinds.
func (u *AdminUsecase) UpdateTableRow(ctx context.Context, actorID int64, name string, id int64, body map[string]any) (map[string]any, error) {
	t, err := domain.LookupTable(name)
	if err != nil {
		return nil, err
	}
	values, err := t.Coerce(body)
	if err != nil {
		return nil, err
	}
	row, err := u.admin.UpdateRow(ctx, t, id, values)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", t.Name, err)
	}
	u.logger.InfoContext(ctx, "table row updated", "actor_id", actorID, "table", t.Name, "id", id)
	return row, nil
}

func (u *AdminUsecase) DeleteTableRow(ctx context.Context, actorID int64, name string, id int64) error {
	t, err := domain.LookupTable(name)
	if err != nil {
		return err
	}
	if t.Name == "usuario" && id == actorID {
		return domain.ErrSelfDelete
	}
	if err := u.admin.DeleteRow(ctx, t, id); err != nil {
		return fmt.Errorf("delete from %s: %w", t.Name, err)
	}
	u.logger.InfoContext(ctx, "table row deleted", "actor_id", actorID, "table", t.Name, "id", id)
	return nil
}
