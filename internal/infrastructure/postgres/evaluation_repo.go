package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
)

var heatingColumns = []string{
	"superficie_1", "superficie_2", "area_ventana_1", "area_ventana_2",
	"id_combustible", "consumo_anual",
	"id_solucion_muro1", "id_solucion_muro2", "id_solucion_techo", "id_solucion_ventana",
	"eficiencia", "inversion", "ahorro_anual", "payback", "reduccion_co2",
}

var waterColumns = []string{
	"precio_agua", "consumo_agua_potable", "servicio_alcantarillado",
	"cantidad_duchas", "cantidad_lavamanos", "cantidad_wc", "cantidad_lavaplatos",
	"medida_ducha", "medida_lavamanos", "medida_wc", "medida_lavaplatos",
	"ahorro_m3_mes", "ahorro_dinero", "inversion", "retorno", "equivalente_tinas",
}

type EvaluationRepository struct {
	db     DB
	logger *slog.Logger
}

func NewEvaluationRepository(db DB, logger *slog.Logger) *EvaluationRepository {
	return &EvaluationRepository{db: db, logger: logger.With("component", "evaluation_repo")}
}

func heatingValues(e *domain.HeatingEvaluation) []any {
	return []any{
		e.Area1, e.Area2, e.WindowArea1, e.WindowArea2,
		e.FuelID, e.AnnualConsumption,
		e.WallSolution1ID, e.WallSolution2ID, e.RoofSolutionID, e.WindowSolutionID,
		e.Efficiency, e.Investment, e.AnnualSavings, e.Payback, e.CO2Reduction,
	}
}

func waterValues(e *domain.WaterEvaluation) []any {
	return []any{
		e.WaterPrice, e.Consumption, e.SewerService,
		e.Showers, e.Sinks, e.Toilets, e.Dishwashers,
		e.ShowerFixture, e.SinkFixture, e.ToiletFixture, e.DishwasherFixture,
		e.SavingsM3PerMonth, e.SavingsMoney, e.Investment, e.PaybackMonths, e.BathtubEquivalent,
	}
}

// saveEvaluation inserts a row unless the user already owns one with exactly
// the same values. Saves of one user are serialized with an advisory lock so
// two identical concurrent submissions cannot both pass the check.
func (r *EvaluationRepository) saveEvaluation(ctx context.Context, table string, cols []string, userID int64, vals []any) (id int64, createdAt time.Time, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID); err != nil {
		return 0, time.Time{}, fmt.Errorf("lock %s: %w", table, err)
	}

	args := append([]any{userID}, vals...)
	conds := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		conds[i] = fmt.Sprintf("%s IS NOT DISTINCT FROM $%d", c, i+2)
		placeholders[i] = fmt.Sprintf("$%d", i+2)
	}

	var exists bool
	if err = tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE id_usuario = $1 AND %s)`,
		table, strings.Join(conds, " AND "),
	), args...).Scan(&exists); err != nil {
		return 0, time.Time{}, fmt.Errorf("check duplicate %s: %w", table, err)
	}
	if exists {
		r.logger.Debug("identical evaluation already saved", "table", table, "user_id", userID)
		err = domain.ErrDuplicateEvaluation
		return 0, time.Time{}, err
	}

	err = tx.QueryRow(ctx, fmt.Sprintf(
		`INSERT INTO %s (id_usuario, %s) VALUES ($1, %s) RETURNING id, fecha_creacion`,
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	), args...).Scan(&id, &createdAt)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			err = domain.ErrUnknownReference
			return 0, time.Time{}, err
		}
		return 0, time.Time{}, fmt.Errorf("insert %s: %w", table, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("commit tx: %w", err)
	}
	return id, createdAt, nil
}

func (r *EvaluationRepository) SaveHeating(ctx context.Context, e *domain.HeatingEvaluation) (*domain.HeatingEvaluation, error) {
	id, createdAt, err := r.saveEvaluation(ctx, "evaluacion_calefaccion", heatingColumns, e.UserID, heatingValues(e))
	if err != nil {
		return nil, err
	}
	saved := *e
	saved.ID = id
	saved.CreatedAt = createdAt
	return &saved, nil
}

const heatingSelect = `
	SELECT e.id, e.id_usuario, e.superficie_1, e.superficie_2, e.area_ventana_1, e.area_ventana_2,
	       e.id_combustible, e.consumo_anual,
	       e.id_solucion_muro1, e.id_solucion_muro2, e.id_solucion_techo, e.id_solucion_ventana,
	       e.eficiencia, e.inversion, e.ahorro_anual, e.payback, e.reduccion_co2, e.fecha_creacion,
	       cb.nombre, m1.nombre, m2.nombre, t.nombre, v.nombre
	FROM evaluacion_calefaccion e
	LEFT JOIN combustible cb ON cb.id = e.id_combustible
	LEFT JOIN muro_solucion m1 ON m1.id = e.id_solucion_muro1
	LEFT JOIN muro_solucion m2 ON m2.id = e.id_solucion_muro2
	LEFT JOIN techo_solucion t ON t.id = e.id_solucion_techo
	LEFT JOIN ventana_solucion v ON v.id = e.id_solucion_ventana`

func (r *EvaluationRepository) ListHeating(ctx context.Context, userID int64) ([]*domain.HeatingEvaluation, error) {
	rows, err := r.db.Query(ctx,
		heatingSelect+` WHERE e.id_usuario = $1 ORDER BY e.fecha_creacion DESC, e.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list heating evaluations: %w", err)
	}
	defer rows.Close()

	var out []*domain.HeatingEvaluation
	for rows.Next() {
		e, err := scanHeating(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate heating evaluations: %w", err)
	}
	return out, nil
}

func (r *EvaluationRepository) GetHeating(ctx context.Context, id, userID int64) (*domain.HeatingEvaluation, error) {
	return scanHeating(r.db.QueryRow(ctx,
		heatingSelect+` WHERE e.id = $1 AND e.id_usuario = $2`,
		id, userID,
	))
}

func (r *EvaluationRepository) DeleteHeating(ctx context.Context, id, userID int64) error {
	return r.deleteOwned(ctx, "evaluacion_calefaccion", id, userID)
}

func (r *EvaluationRepository) HeatingStats(ctx context.Context, userID int64) (*domain.HeatingStats, error) {
	var s domain.HeatingStats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), AVG(eficiencia), AVG(inversion), AVG(ahorro_anual), AVG(payback), AVG(reduccion_co2)
		FROM evaluacion_calefaccion
		WHERE id_usuario = $1`,
		userID,
	).Scan(&s.Total, &s.AvgEfficiency, &s.AvgInvestment, &s.AvgSavings, &s.AvgPayback, &s.AvgCO2)
	if err != nil {
		return nil, fmt.Errorf("heating stats: %w", err)
	}
	return &s, nil
}

func (r *EvaluationRepository) SaveWater(ctx context.Context, e *domain.WaterEvaluation) (*domain.WaterEvaluation, error) {
	id, createdAt, err := r.saveEvaluation(ctx, "evaluacion_agua", waterColumns, e.UserID, waterValues(e))
	if err != nil {
		return nil, err
	}
	saved := *e
	saved.ID = id
	saved.CreatedAt = createdAt
	return &saved, nil
}

const waterSelect = `
	SELECT id, id_usuario, precio_agua, consumo_agua_potable, servicio_alcantarillado,
	       cantidad_duchas, cantidad_lavamanos, cantidad_wc, cantidad_lavaplatos,
	       medida_ducha, medida_lavamanos, medida_wc, medida_lavaplatos,
	       ahorro_m3_mes, ahorro_dinero, inversion, retorno, equivalente_tinas, fecha_creacion
	FROM evaluacion_agua`

func (r *EvaluationRepository) ListWater(ctx context.Context, userID int64) ([]*domain.WaterEvaluation, error) {
	rows, err := r.db.Query(ctx,
		waterSelect+` WHERE id_usuario = $1 ORDER BY fecha_creacion DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list water evaluations: %w", err)
	}
	defer rows.Close()

	var out []*domain.WaterEvaluation
	for rows.Next() {
		e, err := scanWater(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate water evaluations: %w", err)
	}
	return out, nil
}

func (r *EvaluationRepository) GetWater(ctx context.Context, id, userID int64) (*domain.WaterEvaluation, error) {
	return scanWater(r.db.QueryRow(ctx,
		waterSelect+` WHERE id = $1 AND id_usuario = $2`,
		id, userID,
	))
}

func (r *EvaluationRepository) DeleteWater(ctx context.Context, id, userID int64) error {
	return r.deleteOwned(ctx, "evaluacion_agua", id, userID)
}

func (r *EvaluationRepository) deleteOwned(ctx context.Context, table string, id, userID int64) error {
	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND id_usuario = $2`, table),
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEvaluationNotFound
	}
	return nil
}

func scanHeating(row rowScanner) (*domain.HeatingEvaluation, error) {
	var e domain.HeatingEvaluation
	err := row.Scan(
		&e.ID, &e.UserID, &e.Area1, &e.Area2, &e.WindowArea1, &e.WindowArea2,
		&e.FuelID, &e.AnnualConsumption,
		&e.WallSolution1ID, &e.WallSolution2ID, &e.RoofSolutionID, &e.WindowSolutionID,
		&e.Efficiency, &e.Investment, &e.AnnualSavings, &e.Payback, &e.CO2Reduction, &e.CreatedAt,
		&e.FuelName, &e.WallSolution1Name, &e.WallSolution2Name, &e.RoofSolutionName, &e.WindowSolutionName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("scan heating evaluation: %w", err)
	}
	return &e, nil
}

func scanWater(row rowScanner) (*domain.WaterEvaluation, error) {
	var e domain.WaterEvaluation
	err := row.Scan(
		&e.ID, &e.UserID, &e.WaterPrice, &e.Consumption, &e.SewerService,
		&e.Showers, &e.Sinks, &e.Toilets, &e.Dishwashers,
		&e.ShowerFixture, &e.SinkFixture, &e.ToiletFixture, &e.DishwasherFixture,
		&e.SavingsM3PerMonth, &e.SavingsMoney, &e.Investment, &e.PaybackMonths, &e.BathtubEquivalent,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("scan water evaluation: %w", err)
	}
	return &e, nil
}
