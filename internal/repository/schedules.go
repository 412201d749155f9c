package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

func (r *Repository) GetAllSchedules() ([]*domain.Schedule, error) {
	// 列表视图只需要元数据，不需要带出所有的排班记录
	query := `
		SELECT id, month, year, status, last_actor_id, status_changed_at, created_at, version
		FROM schedules
		ORDER BY year DESC, month DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []*domain.Schedule{}
	for rows.Next() {
		var s domain.Schedule
		dst := []any{&s.ID, &s.Month, &s.Year, &s.Status, &s.LastActorID, &s.StatusChangedAt, &s.CreatedAt, &s.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schedules = append(schedules, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) getScheduleWhere(where string, arg ...any) (*domain.Schedule, error) {
	query := `
		SELECT
			s.id,
			s.month,
			s.year,
			s.status,
			s.last_actor_id,
			s.status_changed_at,
			s.created_at,
			s.version,
			a.id,
			a.user_id,
			a.store_id,
			a.work_date,
			a.hours,
			a.version
		FROM schedules s
		LEFT JOIN assignments a ON s.id = a.schedule_id
		WHERE ` + where + `
		ORDER BY a.work_date, a.store_id, a.user_id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, arg...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedule *domain.Schedule

	for rows.Next() {
		var row struct {
			ID              int64
			Month           int32
			Year            int32
			Status          domain.ScheduleStatus
			LastActorID     *int64
			StatusChangedAt *time.Time
			CreatedAt       time.Time
			Version         int32

			AssignmentID      sql.NullInt64
			UserID            sql.NullInt64
			StoreID           sql.NullInt64
			WorkDate          sql.NullTime
			Hours             sql.NullFloat64
			AssignmentVersion sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.Month,
			&row.Year,
			&row.Status,
			&row.LastActorID,
			&row.StatusChangedAt,
			&row.CreatedAt,
			&row.Version,
			&row.AssignmentID,
			&row.UserID,
			&row.StoreID,
			&row.WorkDate,
			&row.Hours,
			&row.AssignmentVersion,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if schedule == nil {
			schedule = &domain.Schedule{
				ID:              row.ID,
				Month:           row.Month,
				Year:            row.Year,
				Status:          row.Status,
				LastActorID:     row.LastActorID,
				StatusChangedAt: row.StatusChangedAt,
				Assignments:     []domain.Assignment{},
				CreatedAt:       row.CreatedAt,
				Version:         row.Version,
			}
		}

		// assignment id 为空表示这个排班表还没有任何排班记录
		if !row.AssignmentID.Valid {
			continue
		}

		schedule.Assignments = append(schedule.Assignments, domain.Assignment{
			ID:         row.AssignmentID.Int64,
			ScheduleID: row.ID,
			UserID:     row.UserID.Int64,
			StoreID:    row.StoreID.Int64,
			Date:       row.WorkDate.Time,
			Hours:      row.Hours.Float64,
			Version:    row.AssignmentVersion.Int32,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if schedule == nil {
		return nil, sql.ErrNoRows
	}

	return schedule, nil
}

func (r *Repository) GetScheduleByID(id int64) (*domain.Schedule, error) {
	return r.getScheduleWhere("s.id = $1", id)
}

func (r *Repository) GetScheduleByMonthYear(month int32, year int32) (*domain.Schedule, error) {
	return r.getScheduleWhere("s.month = $1 AND s.year = $2", month, year)
}

// UpsertSchedule 按 (month, year) 幂等地创建或更新排班表
// 排班记录采用先删后插的方式整体替换，调用结束后 schedule 中是数据库的最新状态
func (r *Repository) UpsertSchedule(schedule *domain.Schedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先查找是否已有同月份的排班表，FOR UPDATE 避免两个会话同时插入
	query := `
		SELECT id, status, last_actor_id, status_changed_at, created_at, version
		FROM schedules
		WHERE month = $1 AND year = $2
		FOR UPDATE
	`
	dst := []any{&schedule.ID, &schedule.Status, &schedule.LastActorID, &schedule.StatusChangedAt, &schedule.CreatedAt, &schedule.Version}
	err = tx.QueryRowContext(ctx, query, schedule.Month, schedule.Year).Scan(dst...)

	switch {
	case err == nil:
		// 已存在，整体替换排班记录
		query = `DELETE FROM assignments WHERE schedule_id = $1`
		if _, err := tx.ExecContext(ctx, query, schedule.ID); err != nil {
			return err
		}

		query = `
			UPDATE schedules SET version = version + 1
			WHERE id = $1
			RETURNING version
		`
		if err := tx.QueryRowContext(ctx, query, schedule.ID).Scan(&schedule.Version); err != nil {
			return err
		}
	case errors.Is(err, sql.ErrNoRows):
		schedule.Status = domain.ScheduleStatusDraft

		query = `
			INSERT INTO schedules (month, year, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, version
		`
		if err := tx.QueryRowContext(ctx, query, schedule.Month, schedule.Year, schedule.Status).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.Version); err != nil {
			return err
		}
	default:
		return err
	}

	for i := range schedule.Assignments {
		query = `
			INSERT INTO assignments (schedule_id, user_id, store_id, work_date, hours)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, version
		`
		a := &schedule.Assignments[i]
		a.ScheduleID = schedule.ID
		params := []any{schedule.ID, a.UserID, a.StoreID, a.Date, a.Hours}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&a.ID, &a.Version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// DeleteSchedule 删除排班表，排班记录通过外键级联一起删除
func (r *Repository) DeleteSchedule(id int64) error {
	query := `
		DELETE FROM schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateScheduleStatus(schedule *domain.Schedule) error {
	query := `
		UPDATE schedules
		SET
			status = $1,
			last_actor_id = $2,
			status_changed_at = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{schedule.Status, schedule.LastActorID, schedule.StatusChangedAt, schedule.ID, schedule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&schedule.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAssignmentByID(id int64) (*domain.Assignment, error) {
	query := `
		SELECT schedule_id, user_id, store_id, work_date, hours, version
		FROM assignments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	a := &domain.Assignment{
		ID: id,
	}

	dst := []any{&a.ScheduleID, &a.UserID, &a.StoreID, &a.Date, &a.Hours, &a.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return a, nil
}

func (r *Repository) UpdateAssignment(a *domain.Assignment) error {
	query := `
		UPDATE assignments
		SET
			store_id = $1,
			hours = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{a.StoreID, a.Hours, a.ID, a.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&a.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAssignment(id int64) error {
	query := `
		DELETE FROM assignments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	// 删除不存在的记录需要报告给调用方，不能静默成功
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
