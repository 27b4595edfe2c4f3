package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var occupancyColumns = []string{"id", "label", "id", "name", "capacity", "count"}

func TestListBedOccupancy(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows(occupancyColumns).
		AddRow(10, "A", 100, "松林屋", 2, 0).
		AddRow(11, "B", 100, "松林屋", 1, 1)
	mock.ExpectQuery(`FROM beds b`).
		WithArgs(1, nil, nil).
		WillReturnRows(rows)

	beds, err := repo.ListBedOccupancy(context.Background(), 1, domain.BedFilter{})

	require.NoError(t, err)
	require.Len(t, beds, 2)
	assert.Equal(t, &domain.BedOccupancy{BedID: 10, BedLabel: "A", RoomID: 100, RoomName: "松林屋", Capacity: 2, Occupancy: 0}, beds[0])
	assert.Equal(t, int32(1), beds[1].Occupancy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBedOccupancy_Filters(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	roomID := int64(100)
	mock.ExpectQuery(`FROM beds b`).
		WithArgs(1, 100, "{10,11}").
		WillReturnRows(sqlmock.NewRows(occupancyColumns))

	beds, err := repo.ListBedOccupancy(context.Background(), 1, domain.BedFilter{RoomID: &roomID, BedIDs: []int64{10, 11}})

	require.NoError(t, err)
	assert.Empty(t, beds)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBedOccupancy_StoreUnavailable(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM beds b`).WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.ListBedOccupancy(context.Background(), 1, domain.BedFilter{})

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}
