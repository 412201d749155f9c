package repository

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

func (r *Repository) GetAllStores(includeInactive bool) ([]*domain.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.name,
			s.is_active,
			s.created_at,
			s.version,
			swh.day,
			swh.hours
		FROM stores s
		LEFT JOIN store_working_hours swh ON s.id = swh.store_id
		WHERE s.is_active = TRUE OR $1
		ORDER BY s.id, swh.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	storesMap := make(map[int64]*domain.Store)

	for rows.Next() {
		var row struct {
			ID        int64
			Name      string
			IsActive  bool
			CreatedAt time.Time
			Version   int32

			Day   sql.NullInt32
			Hours sql.NullFloat64
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.IsActive,
			&row.CreatedAt,
			&row.Version,
			&row.Day,
			&row.Hours,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if _, exists := storesMap[row.ID]; !exists {
			storesMap[row.ID] = &domain.Store{
				ID:           row.ID,
				Name:         row.Name,
				WorkingHours: make([]domain.StoreWorkingHour, 0, 7),
				IsActive:     row.IsActive,
				CreatedAt:    row.CreatedAt,
				Version:      row.Version,
			}
		}

		// day 为空表示这个门店还没有配置目标工时
		if !row.Day.Valid {
			continue
		}

		storesMap[row.ID].WorkingHours = append(storesMap[row.ID].WorkingHours, domain.StoreWorkingHour{
			Day:   row.Day.Int32,
			Hours: row.Hours.Float64,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	stores := make([]*domain.Store, 0, len(storesMap))
	for _, store := range storesMap {
		stores = append(stores, store)
	}
	sort.Slice(stores, func(i, j int) bool {
		return stores[i].ID < stores[j].ID
	})

	return stores, nil
}

func (r *Repository) GetStoreByID(id int64) (*domain.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.name,
			s.is_active,
			s.created_at,
			s.version,
			swh.day,
			swh.hours
		FROM stores s
		LEFT JOIN store_working_hours swh ON s.id = swh.store_id
		WHERE s.id = $1
		ORDER BY swh.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var store *domain.Store

	for rows.Next() {
		var row struct {
			Name      string
			IsActive  bool
			CreatedAt time.Time
			Version   int32

			Day   sql.NullInt32
			Hours sql.NullFloat64
		}

		dst := []any{&row.Name, &row.IsActive, &row.CreatedAt, &row.Version, &row.Day, &row.Hours}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if store == nil {
			store = &domain.Store{
				ID:           id,
				Name:         row.Name,
				WorkingHours: make([]domain.StoreWorkingHour, 0, 7),
				IsActive:     row.IsActive,
				CreatedAt:    row.CreatedAt,
				Version:      row.Version,
			}
		}

		if !row.Day.Valid {
			continue
		}

		store.WorkingHours = append(store.WorkingHours, domain.StoreWorkingHour{
			Day:   row.Day.Int32,
			Hours: row.Hours.Float64,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if store == nil {
		return nil, sql.ErrNoRows
	}

	return store, nil
}

func (r *Repository) CreateStore(store *domain.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO stores (name)
		VALUES ($1)
		RETURNING id, is_active, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, store.Name).Scan(&store.ID, &store.IsActive, &store.CreatedAt, &store.Version); err != nil {
		return err
	}

	for _, wh := range store.WorkingHours {
		query = `
			INSERT INTO store_working_hours (store_id, day, hours)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, store.ID, wh.Day, wh.Hours); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateStore 更新门店信息和目标工时
// 目标工时采用先删后插的方式，停业（软删除）也通过这里把 is_active 置为 FALSE，
// 门店从不硬删除，历史排班记录还要引用它
func (r *Repository) UpdateStore(store *domain.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE stores
		SET
			name = $1,
			is_active = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, query, store.Name, store.IsActive, store.ID, store.Version).Scan(&store.Version); err != nil {
		return err
	}

	query = `DELETE FROM store_working_hours WHERE store_id = $1`
	if _, err := tx.ExecContext(ctx, query, store.ID); err != nil {
		return err
	}

	for _, wh := range store.WorkingHours {
		query = `
			INSERT INTO store_working_hours (store_id, day, hours)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, store.ID, wh.Day, wh.Hours); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
