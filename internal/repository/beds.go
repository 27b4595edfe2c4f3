package repository

import (
	"context"
	"database/sql"

	"github.com/campops-dev/camp-manager/backend/internal/domain"
)

// ListBedOccupancy 实时统计床位上 active 分配的数量，不依赖任何缓存列
func (r *Repository) ListBedOccupancy(ctx context.Context, campID int64, filter domain.BedFilter) ([]*domain.BedOccupancy, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT
			b.id,
			b.label,
			r.id,
			r.name,
			b.capacity,
			COUNT(a.id)
		FROM beds b
		JOIN rooms r ON r.id = b.room_id AND r.camp_id = b.camp_id
		LEFT JOIN bed_assignments a ON a.bed_id = b.id AND a.camp_id = b.camp_id AND a.status = 'active'
		WHERE b.camp_id = $1
			AND b.is_active
			AND ($2::bigint IS NULL OR b.room_id = $2::bigint)
			AND ($3::bigint[] IS NULL OR b.id = ANY($3::bigint[]))
		GROUP BY b.id, b.label, r.id, r.name, b.capacity
		ORDER BY r.name, b.label, b.id
	`

	roomID := sql.NullInt64{}
	if filter.RoomID != nil {
		roomID = sql.NullInt64{Int64: *filter.RoomID, Valid: true}
	}
	bedIDs := sql.NullString{}
	if filter.BedIDs != nil {
		bedIDs = sql.NullString{String: int64Array(filter.BedIDs), Valid: true}
	}

	rows, err := r.dbpool.QueryContext(ctx, query, campID, roomID, bedIDs)
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	beds := make([]*domain.BedOccupancy, 0)
	for rows.Next() {
		bed := &domain.BedOccupancy{}
		dst := []any{&bed.BedID, &bed.BedLabel, &bed.RoomID, &bed.RoomName, &bed.Capacity, &bed.Occupancy}
		if err := rows.Scan(dst...); err != nil {
			return nil, storeError(err)
		}
		beds = append(beds, bed)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}

	return beds, nil
}

func (r *Repository) CreateRoom(ctx context.Context, room *domain.Room) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO rooms (camp_id, name)
		VALUES ($1, $2)
		ON CONFLICT (camp_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	if err := r.dbpool.QueryRowContext(ctx, query, room.CampID, room.Name).Scan(&room.ID); err != nil {
		return storeError(err)
	}

	return nil
}

func (r *Repository) CreateBed(ctx context.Context, bed *domain.Bed) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO beds (camp_id, room_id, label, capacity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id, label) DO UPDATE SET capacity = EXCLUDED.capacity
		RETURNING id, is_active, created_at, version
	`

	args := []any{bed.CampID, bed.RoomID, bed.Label, bed.Capacity}
	dst := []any{&bed.ID, &bed.IsActive, &bed.CreatedAt, &bed.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return storeError(err)
	}

	return nil
}
