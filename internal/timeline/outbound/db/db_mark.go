package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/valueobject"
	"github.com/shandysiswandi/goinstant/internal/timeline/entity"
)

const (
	queryCreateMark = `INSERT INTO timeline_marks (name, at, at_ms, at_sub_ms, labels, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	queryGetMark = `SELECT name, at_ms, at_sub_ms, labels, created_at
FROM timeline_marks
WHERE name = $1`

	queryListMarks = `SELECT name, at_ms, at_sub_ms, labels, created_at
FROM timeline_marks
ORDER BY at_ms, at_sub_ms, name
LIMIT $1 OFFSET $2`

	queryCountMarks = `SELECT count(*) FROM timeline_marks`

	queryDeleteMark = `DELETE FROM timeline_marks WHERE name = $1`
)

func (s *DB) CreateMark(ctx context.Context, m entity.Mark) (err error) {
	ctx, span := s.startSpan(ctx, "CreateMark")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateMark,
		m.Name,
		m.At.String(),
		m.At.Milliseconds(),
		int32(m.At.SubMillisecondNanoseconds()),
		m.Labels,
		m.CreatedAt,
	)
	err = s.mapError(err)
	return err
}

func (s *DB) GetMark(ctx context.Context, name string) (_ *entity.Mark, err error) {
	ctx, span := s.startSpan(ctx, "GetMark")
	defer func() { s.endSpan(span, err) }()

	m, err := scanMark(s.conn.QueryRow(ctx, queryGetMark, name))
	if err != nil {
		return nil, s.mapError(err)
	}

	return &m, nil
}

func (s *DB) ListMarks(ctx context.Context, limit, offset int32) (_ []entity.Mark, err error) {
	ctx, span := s.startSpan(ctx, "ListMarks")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, queryListMarks, limit, offset)
	if err != nil {
		return nil, s.mapError(err)
	}

	marks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Mark, error) {
		return scanMark(row)
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return marks, nil
}

func (s *DB) CountMarks(ctx context.Context) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountMarks")
	defer func() { s.endSpan(span, err) }()

	var total int64
	if err = s.conn.QueryRow(ctx, queryCountMarks).Scan(&total); err != nil {
		return 0, s.mapError(err)
	}

	return total, nil
}

func (s *DB) DeleteMark(ctx context.Context, name string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "DeleteMark")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryDeleteMark, name)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

// scanMark rebuilds the instant from the integer columns; the text column is
// for humans and cannot represent years outside 0000-9999.
func scanMark(row pgx.Row) (entity.Mark, error) {
	var (
		m       entity.Mark
		atMs    int64
		atSubMs int32
		labels  valueobject.Labels
		created time.Time
	)

	if err := row.Scan(&m.Name, &atMs, &atSubMs, &labels, &created); err != nil {
		return entity.Mark{}, err
	}

	at, err := instant.Unix(atMs, int64(atSubMs))
	if err != nil {
		return entity.Mark{}, fmt.Errorf("mark %q: %w", m.Name, err)
	}

	m.At = at
	m.Labels = labels
	m.CreatedAt = created.UTC()

	return m, nil
}
