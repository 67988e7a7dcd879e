// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/milize/internal/platform/database/schema"
	"github.com/taibuivan/milize/internal/platform/dberr"
)

// repository implements [Repository] using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed publication queue.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanPublication(row pgx.Row) (*Publication, error) {
	var publication Publication
	err := row.Scan(
		&publication.ID,
		&publication.SeriesID,
		&publication.ChapterID,
		&publication.MangaID,
		&publication.GroupIDs,
		&publication.Volume,
		&publication.ChapterNumber,
		&publication.Title,
		&publication.Language,
		&publication.SourcePrefix,
		&publication.MirrorKey,
		&publication.RequestedBy,
		&publication.ReportChannelID,
		&publication.DueAt,
		&publication.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &publication, nil
}

func columns() string {
	return strings.Join(schema.WorkflowPublication.Columns(), ", ")
}

func (repository *repository) Insert(ctx context.Context, publication *Publication) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		schema.WorkflowPublication.Table, columns(),
	)

	_, err := repository.pool.Exec(ctx, query,
		publication.ID,
		publication.SeriesID,
		publication.ChapterID,
		publication.MangaID,
		publication.GroupIDs,
		publication.Volume,
		publication.ChapterNumber,
		publication.Title,
		publication.Language,
		publication.SourcePrefix,
		publication.MirrorKey,
		publication.RequestedBy,
		publication.ReportChannelID,
		publication.DueAt,
		publication.CreatedAt,
	)
	return dberr.Wrap(err, "Publication", "insert publication")
}

func (repository *repository) FindByID(ctx context.Context, id string) (*Publication, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(), schema.WorkflowPublication.Table, schema.WorkflowPublication.ID)

	publication, err := scanPublication(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Publication", "find publication")
	}
	return publication, nil
}

func (repository *repository) List(ctx context.Context) ([]*Publication, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		columns(), schema.WorkflowPublication.Table,
		schema.WorkflowPublication.DueAt, schema.WorkflowPublication.ID,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Publication", "list publications")
	}
	defer rows.Close()

	var publications []*Publication
	for rows.Next() {
		publication, err := scanPublication(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Publication", "scan publication")
		}
		publications = append(publications, publication)
	}
	return publications, dberr.Wrap(rows.Err(), "Publication", "iterate publications")
}

func (repository *repository) Delete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.WorkflowPublication.Table, schema.WorkflowPublication.ID)

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return false, dberr.Wrap(err, "Publication", "delete publication")
	}
	return tag.RowsAffected() == 1, nil
}

// DequeueDue skips rows locked by a concurrent poller instead of waiting on them.
func (repository *repository) DequeueDue(ctx context.Context, now time.Time) (*Publication, error) {
	t := schema.WorkflowPublication
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = (
			SELECT %s FROM %s
			WHERE %s <= $1
			ORDER BY %s, %s
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`,
		t.Table,
		t.ID,
		t.ID, t.Table,
		t.DueAt,
		t.DueAt, t.ID,
		columns(),
	)

	publication, err := scanPublication(repository.pool.QueryRow(ctx, query, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "Publication", "dequeue publication")
	}
	return publication, nil
}
