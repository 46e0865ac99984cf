package postgres_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/kipusaplus/kipus-api/internal/domain"
	"github.com/kipusaplus/kipus-api/internal/infrastructure/postgres"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var newDwelling = domain.NewDwelling{
	UserID:    5,
	Region:    "Maule",
	Commune:   "Talca",
	Occupants: 3,
	Area1:     70,
	Area2:     10,
}

var dwellingCols = []string{"id_vivienda", "id_usuario", "region", "comuna", "nombre", "cantidad_personas", "superficie_1", "superficie_2"}

func TestDwellingCreate_InsertsResolvedCommune(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM usuario WHERE id = \$1 FOR UPDATE`).WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT id, nombre FROM region`).WithArgs("Maule").
		WillReturnRows(pgxmock.NewRows([]string{"id", "nombre"}).AddRow(int64(7), "Maule"))
	mock.ExpectQuery(`SELECT id FROM comuna`).WithArgs("Talca", int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectQuery(`INSERT INTO vivienda`).
		WithArgs(int64(5), "Maule", int64(101), 3, 70.0, 10.0).
		WillReturnRows(pgxmock.NewRows([]string{"id_vivienda"}).AddRow(int64(12)))
	mock.ExpectQuery(`WHERE v.id_vivienda = \$1`).WithArgs(int64(12)).
		WillReturnRows(pgxmock.NewRows(dwellingCols).AddRow(int64(12), int64(5), "Maule", int64(101), "Talca", 3, 70.0, 10.0))
	mock.ExpectCommit()

	repo := postgres.NewDwellingRepository(mock, discard)
	d, err := repo.Create(context.Background(), newDwelling)
	require.NoError(t, err)
	assert.Equal(t, int64(12), d.ID)
	assert.Equal(t, "Talca", d.CommuneName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDwellingCreate_SecondDwellingRollsBack(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM usuario`).WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	repo := postgres.NewDwellingRepository(mock, discard)
	_, err := repo.Create(context.Background(), newDwelling)
	require.ErrorIs(t, err, domain.ErrDwellingExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDwellingCreate_UnknownUser(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM usuario`).WithArgs(int64(5)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	repo := postgres.NewDwellingRepository(mock, discard)
	_, err := repo.Create(context.Background(), newDwelling)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDwellingCreate_CommuneOutsideRegion(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM usuario`).WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT id, nombre FROM region`).WithArgs("Maule").
		WillReturnRows(pgxmock.NewRows([]string{"id", "nombre"}).AddRow(int64(7), "Maule"))
	mock.ExpectQuery(`SELECT id FROM comuna`).WithArgs("Talca", int64(7)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	repo := postgres.NewDwellingRepository(mock, discard)
	_, err := repo.Create(context.Background(), newDwelling)
	require.ErrorIs(t, err, domain.ErrUnknownCommune)
	require.NoError(t, mock.ExpectationsWereMet())
}
