package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/wellness-tracker/apiserver/types"
)

// LogFilter narrows a log listing. Type applies when set to a valid log
// type; the date range applies only when both bounds are present.
type LogFilter struct {
	Type  types.LogType
	Start *time.Time
	End   *time.Time
}

// LogRepository handles persistence for wellness logs. Every query and
// mutation carries the owner in its predicate, so a log owned by another
// user behaves exactly like a log that does not exist.
type LogRepository struct {
	db *sql.DB
}

func NewLogRepository(db *sql.DB) *LogRepository {
	return &LogRepository{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *LogRepository) Create(ctx context.Context, log types.WellnessLog) (types.WellnessLog, error) {
	now := time.Now()
	log.ID = uuid.NewString()
	log.CreatedAt = now
	log.UpdatedAt = now

	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		return types.WellnessLog{}, err
	}

	const query = `
		INSERT INTO wellness_logs (id, user_id, date, type, value, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		log.ID,
		log.UserID,
		log.Date,
		log.Type,
		log.Value,
		detailsJSON,
		log.CreatedAt,
		log.UpdatedAt,
	); err != nil {
		return types.WellnessLog{}, err
	}
	return log, nil
}

// List returns the owner's logs matching filter, newest first, capped at
// limit. A fresh call re-queries; nothing is cached.
func (r *LogRepository) List(ctx context.Context, userID string, filter LogFilter, limit int) ([]types.WellnessLog, error) {
	if limit < 1 {
		limit = 100
	}

	builder := psql.
		Select("id", "user_id", "date", "type", "value", "details", "created_at", "updated_at").
		From("wellness_logs").
		Where(sq.Eq{"user_id": userID})

	if filter.Type != "" {
		builder = builder.Where(sq.Eq{"type": filter.Type})
	}
	if filter.Start != nil && filter.End != nil {
		builder = builder.
			Where(sq.GtOrEq{"date": *filter.Start}).
			Where(sq.LtOrEq{"date": *filter.End})
	}

	query, args, err := builder.
		OrderBy("date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]types.WellnessLog, 0, limit)
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// Update replaces type, value, and details of the log matching both id and
// owner in a single statement, leaving date untouched. Zero matched rows
// means not-found-or-not-owned; the caller cannot tell which.
func (r *LogRepository) Update(ctx context.Context, userID string, log types.WellnessLog) (types.WellnessLog, error) {
	if uuid.Validate(log.ID) != nil {
		return types.WellnessLog{}, ErrNotFound
	}

	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		return types.WellnessLog{}, err
	}

	const query = `
		UPDATE wellness_logs
		SET type = $1,
			value = $2,
			details = $3,
			updated_at = $4
		WHERE id = $5 AND user_id = $6
		RETURNING id, user_id, date, type, value, details, created_at, updated_at`
	row := r.db.QueryRowContext(ctx, query, log.Type, log.Value, detailsJSON, time.Now(), log.ID, userID)
	updated, err := scanLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.WellnessLog{}, ErrNotFound
		}
		return types.WellnessLog{}, err
	}
	return updated, nil
}

// Delete permanently removes the log matching both id and owner.
func (r *LogRepository) Delete(ctx context.Context, userID, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}

	const query = `DELETE FROM wellness_logs WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (types.WellnessLog, error) {
	var log types.WellnessLog
	var detailsJSON []byte
	if err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.Date,
		&log.Type,
		&log.Value,
		&detailsJSON,
		&log.CreatedAt,
		&log.UpdatedAt,
	); err != nil {
		return types.WellnessLog{}, err
	}

	details, err := types.DecodeDetails(log.Type, detailsJSON)
	if err != nil {
		return types.WellnessLog{}, err
	}
	log.Details = details
	return log, nil
}
