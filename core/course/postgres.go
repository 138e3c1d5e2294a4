package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

var pgColumns = map[string]string{
	FieldID:          "course_id",
	FieldName:        "name",
	FieldCategory:    "category",
	FieldAuthor:      "author",
	FieldTags:        "tags",
	FieldDate:        "course_date",
	FieldIsPublished: "is_published",
	FieldPrice:       "price",
}

var pgAllColumns = []string{
	"course_id", "name", "category", "author", "tags",
	"course_date", "is_published", "price", "version",
}

type pgCourse struct {
	ID          int64          `db:"course_id"`
	Name        string         `db:"name"`
	Category    string         `db:"category"`
	Author      string         `db:"author"`
	Tags        pq.StringArray `db:"tags"`
	Date        time.Time      `db:"course_date"`
	IsPublished bool           `db:"is_published"`
	Price       sql.NullInt64  `db:"price"`
	Version     int            `db:"version"`
}

func (r pgCourse) course() Course {
	c := Course{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Author:      r.Author,
		Tags:        []string(r.Tags),
		Date:        r.Date.UTC(),
		IsPublished: r.IsPublished,
		Version:     r.Version,
	}
	if r.Price.Valid {
		p := int(r.Price.Int64)
		c.Price = &p
	}
	return c
}

func nullPrice(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// PostgresStore keeps courses in the courses table. Insertion order is the
// order of ids drawn from the course_ids sequence.
type PostgresStore struct {
	db *sqlx.DB
	sq squirrel.StatementBuilderType
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s *PostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.db.GetContext(ctx, &id, `SELECT nextval('course_ids')`); err != nil {
		return 0, fmt.Errorf("drawing from course_ids: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Insert(ctx context.Context, c Course) error {
	q, args, err := s.sq.Insert("courses").
		Columns(pgAllColumns...).
		Values(c.ID, c.Name, c.Category, c.Author, pq.Array(c.Tags),
			c.Date, c.IsPublished, nullPrice(c.Price), c.Version).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

func (s *PostgresStore) FetchByID(ctx context.Context, id int64) (Course, error) {
	q, args, err := s.sq.Select(pgAllColumns...).
		From("courses").
		Where(squirrel.Eq{"course_id": id}).
		ToSql()
	if err != nil {
		return Course{}, fmt.Errorf("building select: %w", err)
	}

	var row pgCourse
	if err := s.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, fmt.Errorf("selecting course: %w", err)
	}
	return row.course(), nil
}

func (s *PostgresStore) Find(ctx context.Context, f Filter, srt Sort, fields []string) ([]Course, error) {
	cols := pgAllColumns
	if len(fields) > 0 {
		cols = []string{"course_id"}
		for _, name := range fields {
			if col, ok := pgColumns[name]; ok && col != "course_id" {
				cols = append(cols, col)
			}
		}
	}

	sb := s.sq.Select(cols...).From("courses")
	if f.IsPublished != nil {
		sb = sb.Where(squirrel.Eq{"is_published": *f.IsPublished})
	}
	if len(f.Tags) > 0 {
		sb = sb.Where(squirrel.Expr("tags && ?", pq.Array(f.Tags)))
	}
	sb = sb.OrderBy(pgOrderBy(srt), "course_id ASC")

	q, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	var rows []pgCourse
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("selecting courses: %w", err)
	}

	out := make([]Course, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.course())
	}
	return out, nil
}

// pgOrderBy sorts text byte-wise and a missing price below every value, the
// same order the memory store produces.
func pgOrderBy(s Sort) string {
	col, ok := pgColumns[s.Field]
	if !ok || col == "tags" {
		col = "name"
	}

	switch col {
	case "name", "category", "author":
		col += ` COLLATE "C"`
	}

	if s.Desc {
		return col + " DESC NULLS LAST"
	}
	return col + " ASC NULLS FIRST"
}

func (s *PostgresStore) Replace(ctx context.Context, c Course, prevVersion int) error {
	q, args, err := s.sq.Update("courses").
		SetMap(map[string]interface{}{
			"name":         c.Name,
			"category":     c.Category,
			"author":       c.Author,
			"tags":         pq.Array(c.Tags),
			"course_date":  c.Date,
			"is_published": c.IsPublished,
			"price":        nullPrice(c.Price),
			"version":      c.Version,
		}).
		Where(squirrel.Eq{"course_id": c.ID, "version": prevVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("updating course: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM courses WHERE course_id = $1)`, c.ID); err != nil {
		return fmt.Errorf("checking course existence: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	q, args, err := s.sq.Delete("courses").
		Where(squirrel.Eq{"course_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
