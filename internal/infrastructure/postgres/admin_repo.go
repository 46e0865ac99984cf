package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

type AdminRepository struct {
	db DB
}

func NewAdminRepository(db DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) SystemStats(ctx context.Context, since time.Time) (*domain.SystemStats, error) {
	var s domain.SystemStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM usuario),
			(SELECT COUNT(*) FROM usuario WHERE tipo_usuario = 'admin'),
			(SELECT COUNT(*) FROM usuario WHERE fecha_registro >= $1),
			(SELECT COUNT(*) FROM comentario),
			(SELECT COUNT(*) FROM comentario WHERE fecha >= $1),
			(SELECT COUNT(*) FROM valoracion),
			(SELECT AVG(valor)::float8 FROM valoracion),
			(SELECT COUNT(*) FROM valoracion WHERE creado_en >= $1),
			(SELECT COUNT(*) FROM evaluacion_calefaccion),
			(SELECT COUNT(*) FROM evaluacion_agua)`,
		since,
	).Scan(
		&s.Users.Total, &s.Users.Admins, &s.Users.LastWeek,
		&s.Comments.Total, &s.Comments.LastWeek,
		&s.Ratings.Total, &s.Ratings.Average, &s.Ratings.LastWeek,
		&s.Evaluations.Heating, &s.Evaluations.Water,
	)
	if err != nil {
		return nil, fmt.Errorf("system stats: %w", err)
	}
	s.Users.Regular = s.Users.Total - s.Users.Admins
	return &s, nil
}

func (r *AdminRepository) UsersByRegion(ctx context.Context) ([]domain.RegionCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT region, COUNT(DISTINCT id_usuario)
		FROM vivienda
		GROUP BY region
		ORDER BY 2 DESC, 1`)
	if err != nil {
		return nil, fmt.Errorf("users by region: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RegionCount, error) {
		var rc domain.RegionCount
		err := row.Scan(&rc.Region, &rc.Users)
		return rc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan users by region: %w", err)
	}
	return out, nil
}

func (r *AdminRepository) EvaluationCounts(ctx context.Context) (*domain.EvaluationCounts, error) {
	var c domain.EvaluationCounts
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM evaluacion_calefaccion),
			(SELECT COUNT(*) FROM evaluacion_agua)`,
	).Scan(&c.Heating, &c.Water)
	if err != nil {
		return nil, fmt.Errorf("evaluation counts: %w", err)
	}
	return &c, nil
}

// AverageSavings only averages evaluations that report a saving.
func (r *AdminRepository) AverageSavings(ctx context.Context) ([]domain.SavingsAverage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT 'calefaccion', (SELECT AVG(ahorro_anual)::float8 FROM evaluacion_calefaccion WHERE ahorro_anual > 0)
		UNION ALL
		SELECT 'agua', (SELECT AVG(ahorro_dinero)::float8 FROM evaluacion_agua WHERE ahorro_dinero > 0)`)
	if err != nil {
		return nil, fmt.Errorf("average savings: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SavingsAverage, error) {
		var s domain.SavingsAverage
		err := row.Scan(&s.Kind, &s.Average)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan average savings: %w", err)
	}
	return out, nil
}

// RecommendedMeasures counts evaluations that picked each kind of measure.
func (r *AdminRepository) RecommendedMeasures(ctx context.Context) ([]domain.MeasureCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT medida, cantidad FROM (
			SELECT 'aislamiento_muro' AS medida, COUNT(*) AS cantidad FROM evaluacion_calefaccion
			WHERE id_solucion_muro1 IS NOT NULL OR id_solucion_muro2 IS NOT NULL
			UNION ALL
			SELECT 'aislamiento_techo', COUNT(*) FROM evaluacion_calefaccion
			WHERE id_solucion_techo IS NOT NULL
			UNION ALL
			SELECT 'cambio_ventanas', COUNT(*) FROM evaluacion_calefaccion
			WHERE id_solucion_ventana IS NOT NULL
			UNION ALL
			SELECT 'artefactos_eficientes', COUNT(*) FROM evaluacion_agua
			WHERE medida_ducha IS NOT NULL OR medida_lavamanos IS NOT NULL
			   OR medida_wc IS NOT NULL OR medida_lavaplatos IS NOT NULL
		) m
		ORDER BY cantidad DESC, medida`)
	if err != nil {
		return nil, fmt.Errorf("recommended measures: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MeasureCount, error) {
		var m domain.MeasureCount
		err := row.Scan(&m.Measure, &m.Count)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan recommended measures: %w", err)
	}
	return out, nil
}

func (r *AdminRepository) SignupsByMonth(ctx context.Context, since time.Time) ([]domain.MonthCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT TO_CHAR(fecha_registro, 'YYYY-MM') AS mes, COUNT(*)
		FROM usuario
		WHERE fecha_registro >= $1
		GROUP BY mes
		ORDER BY mes`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("signups by month: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MonthCount, error) {
		var m domain.MonthCount
		err := row.Scan(&m.Month, &m.Count)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan signups by month: %w", err)
	}
	return out, nil
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

func (r *AdminRepository) ListRows(ctx context.Context, t *domain.Table, limit int) (*domain.TableRows, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC LIMIT $1`,
		quoteColumns(t.Columns), pgx.Identifier{t.Name}.Sanitize(), pgx.Identifier{t.Key}.Sanitize())

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.Name, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", t.Name, err)
	}
	return &domain.TableRows{Columns: t.Columns, Rows: maps}, nil
}

// InsertRow binds every value as a parameter and returns the stored row.
func (r *AdminRepository) InsertRow(ctx context.Context, t *domain.Table, values []domain.ColumnValue) (map[string]any, error) {
	if len(values) == 0 {
		return nil, domain.ErrNothingToWrite
	}

	cols := make([]string, len(values))
	params := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		if _, ok := t.Insertable[v.Column]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownColumn, v.Column)
		}
		cols[i] = v.Column
		params[i] = fmt.Sprintf("$%d", i+1)
		args[i] = v.Value
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		pgx.Identifier{t.Name}.Sanitize(), quoteColumns(cols),
		strings.Join(params, ", "), quoteColumns(t.Columns))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.Name, err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if cerr := constraintError(err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("insert %s: %w", t.Name, err)
	}
	return row, nil
}

// UpdateRow binds every value as a parameter. Only identifiers from the
// registry are interpolated.
func (r *AdminRepository) UpdateRow(ctx context.Context, t *domain.Table, id int64, values []domain.ColumnValue) (map[string]any, error) {
	if len(values) == 0 {
		return nil, domain.ErrNothingToWrite
	}

	args := []any{id}
	sets := make([]string, len(values))
	for i, v := range values {
		if _, ok := t.Mutable[v.Column]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownColumn, v.Column)
		}
		args = append(args, v.Value)
		sets[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{v.Column}.Sanitize(), len(args))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1 RETURNING %s`,
		pgx.Identifier{t.Name}.Sanitize(), strings.Join(sets, ", "),
		pgx.Identifier{t.Key}.Sanitize(), quoteColumns(t.Columns))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", t.Name, err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		if cerr := constraintError(err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("update %s: %w", t.Name, err)
	}
	return row, nil
}

func (r *AdminRepository) DeleteRow(ctx context.Context, t *domain.Table, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		pgx.Identifier{t.Name}.Sanitize(), pgx.Identifier{t.Key}.Sanitize())

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		if cerr := constraintError(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("delete %s: %w", t.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// constraintError turns integrity violations caused by admin input into
// validation errors. Other errors yield nil.
func constraintError(err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return domain.Invalid("", "value conflicts with an existing row")
	case codeForeignKeyViolation:
		return domain.Invalid("", "row references or is referenced by another row")
	case codeCheckViolation:
		return domain.Invalid("", "value violates a table constraint")
	case codeNotNullViolation:
		return domain.Invalid("", "value must not be null")
	}
	return nil
}
