// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/milize/internal/platform/database/schema"
	"github.com/taibuivan/milize/internal/platform/dberr"
)

// repository implements [Repository] using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed series store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (repository *repository) FindByID(ctx context.Context, id string) (*Series, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.WorkflowSeries.Columns(), ", "),
		schema.WorkflowSeries.Table,
		schema.WorkflowSeries.ID,
	)

	var series Series
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&series.ID,
		&series.GroupID,
		&series.Name,
		&series.DriveLink,
		&series.StyleGuide,
		&series.MangaDexID,
		&series.MirrorKey,
		&series.Thumbnail,
		&series.BlockedTargets,
		&series.IsArchived,
		&series.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Series", "find series")
	}

	return &series, nil
}

// seriesJobSelect joins a series stage with its stage definition.
func seriesJobSelect() string {
	sj, job := schema.WorkflowSeriesJob, schema.WorkflowJob
	return fmt.Sprintf(`
		SELECT sj.%s, sj.%s, sj.%s, j.%s, j.%s, j.%s, j.%s, sj.%s
		FROM %s sj
		JOIN %s j ON j.%s = sj.%s`,
		sj.ID, sj.SeriesID, sj.JobID, job.Name, job.StageType, job.RoleID, job.BoardChannelID, sj.Position,
		sj.Table,
		job.Table, job.ID, sj.JobID,
	)
}

func scanSeriesJob(row pgx.Row) (*SeriesJob, error) {
	var seriesJob SeriesJob
	err := row.Scan(
		&seriesJob.ID,
		&seriesJob.SeriesID,
		&seriesJob.JobID,
		&seriesJob.Name,
		&seriesJob.Type,
		&seriesJob.RoleID,
		&seriesJob.BoardChannelID,
		&seriesJob.Position,
	)
	if err != nil {
		return nil, err
	}
	return &seriesJob, nil
}

func (repository *repository) FindSeriesJob(ctx context.Context, id string) (*SeriesJob, error) {
	query := seriesJobSelect() + fmt.Sprintf(` WHERE sj.%s = $1`, schema.WorkflowSeriesJob.ID)

	seriesJob, err := scanSeriesJob(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Series stage", "find series stage")
	}
	return seriesJob, nil
}

func (repository *repository) ListSeriesJobs(ctx context.Context, seriesID string) ([]*SeriesJob, error) {
	query := seriesJobSelect() + fmt.Sprintf(` WHERE sj.%s = $1 ORDER BY sj.%s, sj.%s`,
		schema.WorkflowSeriesJob.SeriesID,
		schema.WorkflowSeriesJob.Position,
		schema.WorkflowSeriesJob.ID,
	)

	rows, err := repository.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, dberr.Wrap(err, "Series stage", "list series stages")
	}
	defer rows.Close()

	var seriesJobs []*SeriesJob
	for rows.Next() {
		seriesJob, err := scanSeriesJob(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Series stage", "scan series stage")
		}
		seriesJobs = append(seriesJobs, seriesJob)
	}

	return seriesJobs, dberr.Wrap(rows.Err(), "Series stage", "iterate series stages")
}

func (repository *repository) SetArchived(ctx context.Context, id string, archived bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.WorkflowSeries.Table,
		schema.WorkflowSeries.IsArchived,
		schema.WorkflowSeries.ID,
	)

	tag, err := repository.pool.Exec(ctx, query, id, archived)
	if err != nil {
		return dberr.Wrap(err, "Series", "set series archived")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Series", "set series archived")
	}
	return nil
}
