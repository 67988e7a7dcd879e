// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/milize/internal/platform/database/schema"
	"github.com/taibuivan/milize/internal/platform/dberr"
	"github.com/taibuivan/milize/internal/platform/postgres"
)

// repository implements [Repository] using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed work item store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// liveCount is a scalar subquery counting the live work items of series $2.
func liveCount() string {
	return fmt.Sprintf(`(SELECT COUNT(*) FROM %s WHERE %s = $2 AND NOT %s)`,
		schema.WorkflowChapter.Table,
		schema.WorkflowChapter.SeriesID,
		schema.WorkflowChapter.IsArchived,
	)
}

// lockSeries serialises cap checks of one series. Under READ COMMITTED two
// uncoordinated counts can both pass; the row lock makes the second wait and
// recount after the first commits.
func lockSeries(ctx context.Context, tx pgx.Tx, seriesID string) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.WorkflowSeries.ID,
		schema.WorkflowSeries.Table,
		schema.WorkflowSeries.ID,
	)
	_, err := tx.Exec(ctx, query, seriesID)
	return err
}

/*
Create inserts the work item under a lock on its series row; the cap is part
of the INSERT predicate.
*/
func (repository *repository) Create(ctx context.Context, chapter *Chapter, limit int) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		SELECT $1::text, $2::text, $3::text, $4::text, FALSE, $5::timestamptz
		WHERE %s < $6`,
		schema.WorkflowChapter.Table,
		schema.WorkflowChapter.ID,
		schema.WorkflowChapter.SeriesID,
		schema.WorkflowChapter.Name,
		schema.WorkflowChapter.DriveLink,
		schema.WorkflowChapter.IsArchived,
		schema.WorkflowChapter.CreatedAt,
		liveCount(),
	)

	created := false
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		if err := lockSeries(ctx, tx, chapter.SeriesID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, query,
			chapter.ID,
			chapter.SeriesID,
			chapter.Name,
			chapter.DriveLink,
			chapter.CreatedAt,
			limit,
		)
		if err != nil {
			return err
		}
		created = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, dberr.Wrap(err, "Chapter", "create chapter")
	}
	return created, nil
}

func scanChapter(row pgx.Row) (*Chapter, error) {
	var chapter Chapter
	err := row.Scan(
		&chapter.ID,
		&chapter.SeriesID,
		&chapter.Name,
		&chapter.DriveLink,
		&chapter.IsArchived,
		&chapter.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (repository *repository) FindByID(ctx context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.WorkflowChapter.Columns(), ", "),
		schema.WorkflowChapter.Table,
		schema.WorkflowChapter.ID,
	)

	chapter, err := scanChapter(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", "find chapter")
	}
	return chapter, nil
}

func (repository *repository) ListLive(ctx context.Context, seriesID string) ([]*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND NOT %s ORDER BY %s, %s`,
		strings.Join(schema.WorkflowChapter.Columns(), ", "),
		schema.WorkflowChapter.Table,
		schema.WorkflowChapter.SeriesID,
		schema.WorkflowChapter.IsArchived,
		schema.WorkflowChapter.CreatedAt,
		schema.WorkflowChapter.ID,
	)

	rows, err := repository.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, dberr.Wrap(err, "Chapter", "list chapters")
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Chapter", "scan chapter")
		}
		chapters = append(chapters, chapter)
	}
	return chapters, dberr.Wrap(rows.Err(), "Chapter", "iterate chapters")
}

// moveAssignments copies the assignments of a work item from one table to the other and clears the source.
func moveAssignments(ctx context.Context, tx pgx.Tx, from, to schema.WorkflowAssignmentTable, chapterID string) error {
	columns := strings.Join(from.Columns(), ", ")

	copyQuery := fmt.Sprintf(`INSERT INTO %s (%s) SELECT %s FROM %s WHERE %s = $1`,
		to.Table, columns, columns, from.Table, from.ChapterID,
	)
	if _, err := tx.Exec(ctx, copyQuery, chapterID); err != nil {
		return err
	}

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, from.Table, from.ChapterID)
	_, err := tx.Exec(ctx, deleteQuery, chapterID)
	return err
}

func (repository *repository) Archive(ctx context.Context, id string) (bool, error) {
	flagQuery := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1 AND NOT %s`,
		schema.WorkflowChapter.Table,
		schema.WorkflowChapter.IsArchived,
		schema.WorkflowChapter.ID,
		schema.WorkflowChapter.IsArchived,
	)

	moved := false
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, flagQuery, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		moved = true
		return moveAssignments(ctx, tx, schema.WorkflowAssignment, schema.WorkflowAssignmentArchive, id)
	})
	if err != nil {
		return false, dberr.Wrap(err, "Chapter", "archive chapter")
	}
	return moved, nil
}

func (repository *repository) Unarchive(ctx context.Context, id string, limit int) (bool, error) {
	flagQuery := fmt.Sprintf(`
		UPDATE %s c SET %s = FALSE
		WHERE c.%s = $1 AND c.%s
		  AND (SELECT COUNT(*) FROM %s l WHERE l.%s = c.%s AND NOT l.%s) < $2`,
		schema.WorkflowChapter.Table,
		schema.WorkflowChapter.IsArchived,
		schema.WorkflowChapter.ID,
		schema.WorkflowChapter.IsArchived,
		schema.WorkflowChapter.Table,
		schema.WorkflowChapter.SeriesID,
		schema.WorkflowChapter.SeriesID,
		schema.WorkflowChapter.IsArchived,
	)

	seriesQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.WorkflowChapter.SeriesID,
		schema.WorkflowChapter.Table,
		schema.WorkflowChapter.ID,
	)

	moved := false
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		var seriesID string
		if err := tx.QueryRow(ctx, seriesQuery, id).Scan(&seriesID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		if err := lockSeries(ctx, tx, seriesID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, flagQuery, id, limit)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		moved = true
		return moveAssignments(ctx, tx, schema.WorkflowAssignmentArchive, schema.WorkflowAssignment, id)
	})
	if err != nil {
		return false, dberr.Wrap(err, "Chapter", "unarchive chapter")
	}
	return moved, nil
}
