// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ledger

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

// NewRepository constructs a PostgreSQL backed assignment ledger.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func scanAssignment(row pgx.Row) (*Assignment, error) {
	var assignment Assignment
	err := row.Scan(
		&assignment.ID,
		&assignment.ChapterID,
		&assignment.SeriesJobID,
		&assignment.AssignedTo,
		&assignment.Status,
		&assignment.Account,
		&assignment.CreatedAt,
		&assignment.AvailableAt,
		&assignment.CompletedAt,
		&assignment.RemindedAt,
	)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (repository *repository) queryAssignments(ctx context.Context, query string, args ...any) ([]*Assignment, error) {
	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Assignment", "list assignments")
	}
	defer rows.Close()

	var assignments []*Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Assignment", "scan assignment")
		}
		assignments = append(assignments, assignment)
	}
	return assignments, dberr.Wrap(rows.Err(), "Assignment", "iterate assignments")
}

func selectAssignments() string {
	return fmt.Sprintf(`SELECT %s FROM %s`,
		strings.Join(schema.WorkflowAssignment.Columns(), ", "),
		schema.WorkflowAssignment.Table,
	)
}

// # Claim

/*
Insert is the conflict-resistant claim. The unique (chapterid, seriesjobid)
constraint decides the winner; losers see zero affected rows.
*/
func (repository *repository) Insert(ctx context.Context, assignment *Assignment) (bool, error) {
	table := schema.WorkflowAssignment
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (%s, %s) DO NOTHING`,
		table.Table, strings.Join(table.Columns(), ", "),
		table.ChapterID, table.SeriesJobID,
	)

	tag, err := repository.pool.Exec(ctx, query,
		assignment.ID,
		assignment.ChapterID,
		assignment.SeriesJobID,
		assignment.AssignedTo,
		assignment.Status,
		assignment.Account,
		assignment.CreatedAt,
		assignment.AvailableAt,
		assignment.CompletedAt,
		assignment.RemindedAt,
	)
	if err != nil {
		return false, dberr.Wrap(err, "Assignment", "insert assignment")
	}
	return tag.RowsAffected() == 1, nil
}

// # Reads

func (repository *repository) Find(ctx context.Context, chapterID, seriesJobID string) (*Assignment, error) {
	query := selectAssignments() + fmt.Sprintf(` WHERE %s = $1 AND %s = $2`,
		schema.WorkflowAssignment.ChapterID,
		schema.WorkflowAssignment.SeriesJobID,
	)

	assignment, err := scanAssignment(repository.pool.QueryRow(ctx, query, chapterID, seriesJobID))
	if err != nil {
		return nil, dberr.Wrap(err, "Assignment", "find assignment")
	}
	return assignment, nil
}

func (repository *repository) ListByChapter(ctx context.Context, chapterID string) ([]*Assignment, error) {
	query := selectAssignments() + fmt.Sprintf(` WHERE %s = $1 ORDER BY %s`,
		schema.WorkflowAssignment.ChapterID,
		schema.WorkflowAssignment.CreatedAt,
	)
	return repository.queryAssignments(ctx, query, chapterID)
}

func (repository *repository) ListOpenByAssignee(ctx context.Context, discordID string) ([]*Assignment, error) {
	query := selectAssignments() + fmt.Sprintf(` WHERE %s = $1 AND %s < $2 ORDER BY %s`,
		schema.WorkflowAssignment.AssignedTo,
		schema.WorkflowAssignment.Status,
		schema.WorkflowAssignment.CreatedAt,
	)
	return repository.queryAssignments(ctx, query, discordID, StatusCompleted)
}

func (repository *repository) HasOpen(ctx context.Context, discordID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s < $2)`,
		schema.WorkflowAssignment.Table,
		schema.WorkflowAssignment.AssignedTo,
		schema.WorkflowAssignment.Status,
	)

	var open bool
	if err := repository.pool.QueryRow(ctx, query, discordID, StatusCompleted).Scan(&open); err != nil {
		return false, dberr.Wrap(err, "Assignment", "check open assignments")
	}
	return open, nil
}

// bothTables renders a UNION ALL of one column over the live and archive tables for assignee $1.
func bothTables(column string) string {
	live, archive := schema.WorkflowAssignment, schema.WorkflowAssignmentArchive
	return fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 UNION ALL SELECT %s FROM %s WHERE %s = $1`,
		column, live.Table, live.AssignedTo,
		column, archive.Table, archive.AssignedTo,
	)
}

func (repository *repository) CountAll(ctx context.Context, discordID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM (%s) AS history`, bothTables(schema.WorkflowAssignment.ID))

	var count int
	if err := repository.pool.QueryRow(ctx, query, discordID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "Assignment", "count assignments")
	}
	return count, nil
}

func (repository *repository) LastCompletedAt(ctx context.Context, discordID string) (*time.Time, error) {
	column := schema.WorkflowAssignment.CompletedAt
	query := fmt.Sprintf(`SELECT MAX(%s) FROM (%s) AS history`, column, bothTables(column))

	var last *time.Time
	if err := repository.pool.QueryRow(ctx, query, discordID).Scan(&last); err != nil {
		return nil, dberr.Wrap(err, "Assignment", "find last completion")
	}
	return last, nil
}

// # Mutations

func (repository *repository) exec(ctx context.Context, action, query string, args ...any) (bool, error) {
	tag, err := repository.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, dberr.Wrap(err, "Assignment", action)
	}
	return tag.RowsAffected() > 0, nil
}

func (repository *repository) Delete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.WorkflowAssignment.Table,
		schema.WorkflowAssignment.ID,
	)
	return repository.exec(ctx, "delete assignment", query, id)
}

func (repository *repository) DeleteOwned(ctx context.Context, id, discordID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.WorkflowAssignment.Table,
		schema.WorkflowAssignment.ID,
		schema.WorkflowAssignment.AssignedTo,
	)
	return repository.exec(ctx, "unclaim assignment", query, id, discordID)
}

func (repository *repository) UpdateStatus(ctx context.Context, id string, status Status, completedAt *time.Time, account bool) (bool, error) {
	table := schema.WorkflowAssignment
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1 AND %s < $2`,
		table.Table,
		table.Status, table.CompletedAt, table.Account,
		table.ID, table.Status,
	)
	return repository.exec(ctx, "update assignment status", query, id, status, completedAt, account)
}

func (repository *repository) UpdateAssignee(ctx context.Context, id, discordID string) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.WorkflowAssignment.Table,
		schema.WorkflowAssignment.AssignedTo,
		schema.WorkflowAssignment.ID,
	)
	return repository.exec(ctx, "reassign assignment", query, id, discordID)
}

func (repository *repository) MarkAvailable(ctx context.Context, id string, at time.Time) (bool, error) {
	table := schema.WorkflowAssignment
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $2
		WHERE %s = $1 AND %s IS NULL AND %s < $3`,
		table.Table, table.AvailableAt, table.RemindedAt,
		table.ID, table.AvailableAt, table.Status,
	)
	return repository.exec(ctx, "mark assignment available", query, id, at, StatusCompleted)
}

func (repository *repository) MarkReminded(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.WorkflowAssignment.Table,
		schema.WorkflowAssignment.RemindedAt,
		schema.WorkflowAssignment.ID,
	)
	_, err := repository.exec(ctx, "mark assignment reminded", query, id, at)
	return err
}
