// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package board

import (
	"context"
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

// NewRepository constructs a PostgreSQL backed claim board.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanPosting(row pgx.Row) (*Posting, error) {
	var posting Posting
	err := row.Scan(
		&posting.ID,
		&posting.MessageID,
		&posting.ChannelID,
		&posting.ChapterID,
		&posting.SeriesJobID,
		&posting.SeriesID,
		&posting.JobID,
		&posting.MinTier,
		&posting.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &posting, nil
}

func selectPostings() string {
	return fmt.Sprintf(`SELECT %s FROM %s`,
		strings.Join(schema.WorkflowBoardPost.Columns(), ", "),
		schema.WorkflowBoardPost.Table,
	)
}

// Insert relies on the three unique constraints of the table; any of them firing yields false.
func (repository *repository) Insert(ctx context.Context, posting *Posting) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT DO NOTHING`,
		schema.WorkflowBoardPost.Table,
		strings.Join(schema.WorkflowBoardPost.Columns(), ", "),
	)

	tag, err := repository.pool.Exec(ctx, query,
		posting.ID,
		posting.MessageID,
		posting.ChannelID,
		posting.ChapterID,
		posting.SeriesJobID,
		posting.SeriesID,
		posting.JobID,
		posting.MinTier,
		posting.CreatedAt,
	)
	if err != nil {
		return false, dberr.Wrap(err, "Posting", "insert posting")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *repository) findOne(ctx context.Context, where string, args ...any) (*Posting, error) {
	posting, err := scanPosting(repository.pool.QueryRow(ctx, selectPostings()+" WHERE "+where, args...))
	if err != nil {
		return nil, dberr.Wrap(err, "Posting", "find posting")
	}
	return posting, nil
}

func (repository *repository) FindByMessageID(ctx context.Context, messageID string) (*Posting, error) {
	return repository.findOne(ctx, schema.WorkflowBoardPost.MessageID+" = $1", messageID)
}

func (repository *repository) FindByPair(ctx context.Context, chapterID, seriesJobID string) (*Posting, error) {
	where := fmt.Sprintf("%s = $1 AND %s = $2", schema.WorkflowBoardPost.ChapterID, schema.WorkflowBoardPost.SeriesJobID)
	return repository.findOne(ctx, where, chapterID, seriesJobID)
}

func (repository *repository) FindBySeriesJob(ctx context.Context, seriesID, jobID string) (*Posting, error) {
	where := fmt.Sprintf("%s = $1 AND %s = $2", schema.WorkflowBoardPost.SeriesID, schema.WorkflowBoardPost.JobID)
	return repository.findOne(ctx, where, seriesID, jobID)
}

func (repository *repository) queryPostings(ctx context.Context, query string, args ...any) ([]*Posting, error) {
	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Posting", "list postings")
	}
	defer rows.Close()

	var postings []*Posting
	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Posting", "scan posting")
		}
		postings = append(postings, posting)
	}
	return postings, dberr.Wrap(rows.Err(), "Posting", "iterate postings")
}

func (repository *repository) ListByChapter(ctx context.Context, chapterID string) ([]*Posting, error) {
	query := selectPostings() + fmt.Sprintf(" WHERE %s = $1", schema.WorkflowBoardPost.ChapterID)
	return repository.queryPostings(ctx, query, chapterID)
}

func (repository *repository) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*Posting, error) {
	query := selectPostings() + fmt.Sprintf(" WHERE %s < $1 ORDER BY %s",
		schema.WorkflowBoardPost.CreatedAt,
		schema.WorkflowBoardPost.CreatedAt,
	)
	return repository.queryPostings(ctx, query, cutoff)
}

func (repository *repository) Delete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.WorkflowBoardPost.Table, schema.WorkflowBoardPost.ID)

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return false, dberr.Wrap(err, "Posting", "delete posting")
	}
	return tag.RowsAffected() == 1, nil
}
