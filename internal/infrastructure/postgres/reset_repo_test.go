package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/infrastructure/postgres"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTransition_LosesRace(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`UPDATE codigos_recuperacion`).
		WithArgs(int64(3), domain.ResetRequested, domain.ResetVerified).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := postgres.NewResetCodeRepository(mock, discard)
	err := repo.Transition(context.Background(), 3, domain.ResetRequested, domain.ResetVerified)
	require.ErrorIs(t, err, domain.ErrInvalidResetCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTransition_IllegalNeverHitsDatabase(t *testing.T) {
	mock := newMock(t)

	repo := postgres.NewResetCodeRepository(mock, discard)
	err := repo.Transition(context.Background(), 3, domain.ResetCompleted, domain.ResetVerified)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetFindRequested_NoRowsIsInvalidCode(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM codigos_recuperacion`).
		WithArgs(int64(1), "123456", domain.ResetRequested).
		WillReturnError(pgx.ErrNoRows)

	repo := postgres.NewResetCodeRepository(mock, discard)
	_, err := repo.FindRequested(context.Background(), 1, "123456")
	require.ErrorIs(t, err, domain.ErrInvalidResetCode)
}

func TestResetComplete_UpdatesPasswordAndRevokesOthers(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE codigos_recuperacion`).
		WithArgs(int64(3), int64(1), domain.ResetVerified, domain.ResetCompleted).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE usuario SET contrasena`).
		WithArgs(int64(1), "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE codigos_recuperacion`).
		WithArgs(int64(1), domain.ResetRequested, domain.ResetRevoked).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	repo := postgres.NewResetCodeRepository(mock, discard)
	require.NoError(t, repo.Complete(context.Background(), 3, 1, "newhash"))
	require.NoError(t, mock.ExpectationsWereMet())
}

// A second completion with the same reset token finds the attempt already
// completed and must not touch the password.
func TestResetComplete_SecondUseRollsBack(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE codigos_recuperacion`).
		WithArgs(int64(3), int64(1), domain.ResetVerified, domain.ResetCompleted).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	repo := postgres.NewResetCodeRepository(mock, discard)
	err := repo.Complete(context.Background(), 3, 1, "newhash")
	require.ErrorIs(t, err, domain.ErrInvalidResetCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPurge_ReturnsDeletedCount(t *testing.T) {
	mock := newMock(t)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM codigos_recuperacion`).
		WithArgs(cutoff, domain.ResetRequested).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	repo := postgres.NewResetCodeRepository(mock, discard)
	n, err := repo.Purge(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
