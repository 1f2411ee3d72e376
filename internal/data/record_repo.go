package data

import (
	"context"
	"errors"

	"modqueue/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	upsertRecordSQL = `
INSERT INTO moderation_records (id, payload, kind, status, result, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (id) DO UPDATE SET
    payload    = EXCLUDED.payload,
    kind       = EXCLUDED.kind,
    status     = EXCLUDED.status,
    result     = EXCLUDED.result,
    updated_at = now()`

	getRecordSQL = `
SELECT id, payload, kind, status, result, created_at, updated_at
FROM moderation_records
WHERE id = $1`

	listRecordsSQL = `
SELECT id, payload, kind, status, result, created_at, updated_at
FROM moderation_records
ORDER BY created_at DESC
OFFSET $1 LIMIT $2`

	countRecordsSQL  = `SELECT COUNT(*) FROM moderation_records`
	deleteRecordSQL  = `DELETE FROM moderation_records WHERE id = $1`
	deleteRecordsSQL = `DELETE FROM moderation_records`
)

type recordRepo struct {
	data *Data
	log  *log.Helper
}

// NewRecordRepo creates the durable result store repo.
func NewRecordRepo(data *Data, logger log.Logger) biz.RecordRepo {
	return &recordRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *recordRepo) Upsert(ctx context.Context, record *biz.ModerationRecord) error {
	result := record.Result
	if len(result) == 0 {
		result = []byte("{}")
	}
	_, err := r.data.Pool.Exec(ctx, upsertRecordSQL,
		record.ID, record.Payload, string(record.Kind), string(record.Status), result)
	return err
}

func (r *recordRepo) Get(ctx context.Context, id string) (*biz.ModerationRecord, error) {
	row := r.data.Pool.QueryRow(ctx, getRecordSQL, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return record, nil
}

func (r *recordRepo) List(ctx context.Context, offset, limit int) ([]*biz.ModerationRecord, error) {
	rows, err := r.data.Pool.Query(ctx, listRecordsSQL, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*biz.ModerationRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *recordRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.data.Pool.QueryRow(ctx, countRecordsSQL).Scan(&count)
	return count, err
}

func (r *recordRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.data.Pool.Exec(ctx, deleteRecordSQL, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *recordRepo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.data.Pool.Exec(ctx, deleteRecordsSQL)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanRecord(row pgx.Row) (*biz.ModerationRecord, error) {
	var (
		record    biz.ModerationRecord
		kind      string
		status    string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&record.ID, &record.Payload, &kind, &status, &record.Result, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	record.Kind = biz.ContentKind(kind)
	record.Status = biz.RecordStatus(status)
	record.CreatedAt = createdAt.Time
	record.UpdatedAt = updatedAt.Time
	return &record, nil
}
