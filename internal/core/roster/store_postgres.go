// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package roster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/milize/internal/platform/database/schema"
	"github.com/taibuivan/milize/internal/platform/dberr"
	"github.com/taibuivan/milize/internal/platform/postgres"
	"github.com/taibuivan/milize/pkg/slice"
)

// repository implements [Repository] using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed roster.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// # Active Members

func memberTargets(member *Member) []any {
	return []any{
		&member.ID,
		&member.DiscordID,
		&member.CreditName,
		&member.Authority,
		&member.ReminderInterval,
		&member.BoardNotifications,
		&member.StageNotifications,
		&member.CreatedAt,
		&member.RemindedAt,
	}
}

func (repository *repository) queryMembers(ctx context.Context, query string, args ...any) ([]*Member, error) {
	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Member", "list members")
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var member Member
		if err := rows.Scan(memberTargets(&member)...); err != nil {
			return nil, dberr.Wrap(err, "Member", "scan member")
		}
		members = append(members, &member)
	}
	return members, dberr.Wrap(rows.Err(), "Member", "iterate members")
}

func (repository *repository) Add(ctx context.Context, member *Member) (bool, error) {
	columns := schema.WorkflowMember.Columns()
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING`,
		schema.WorkflowMember.Table,
		strings.Join(columns, ", "),
		placeholders(len(columns), 1),
		schema.WorkflowMember.DiscordID,
	)

	tag, err := repository.pool.Exec(ctx, query,
		member.ID,
		member.DiscordID,
		member.CreditName,
		member.Authority,
		member.ReminderInterval,
		member.BoardNotifications,
		member.StageNotifications,
		member.CreatedAt,
		member.RemindedAt,
	)
	if err != nil {
		return false, dberr.Wrap(err, "Member", "add member")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *repository) FindByDiscordID(ctx context.Context, discordID string) (*Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.WorkflowMember.Columns(), ", "),
		schema.WorkflowMember.Table,
		schema.WorkflowMember.DiscordID,
	)

	var member Member
	if err := repository.pool.QueryRow(ctx, query, discordID).Scan(memberTargets(&member)...); err != nil {
		return nil, dberr.Wrap(err, "Member", "find member")
	}
	return &member, nil
}

func (repository *repository) List(ctx context.Context) ([]*Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`,
		strings.Join(schema.WorkflowMember.Columns(), ", "),
		schema.WorkflowMember.Table,
		schema.WorkflowMember.CreatedAt,
	)
	return repository.queryMembers(ctx, query)
}

func (repository *repository) ListWithReminders(ctx context.Context) ([]*Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s > 0 ORDER BY %s`,
		strings.Join(schema.WorkflowMember.Columns(), ", "),
		schema.WorkflowMember.Table,
		schema.WorkflowMember.ReminderInterval,
		schema.WorkflowMember.CreatedAt,
	)
	return repository.queryMembers(ctx, query)
}

func (repository *repository) ListBoardRecipients(ctx context.Context, seriesID string) ([]*Member, error) {
	member, subscription := schema.WorkflowMember, schema.WorkflowSubscription
	columns := slice.Map(member.Columns(), func(column string) string { return "m." + column })

	query := fmt.Sprintf(`
		SELECT %s FROM %s m
		WHERE m.%s
		   OR EXISTS (SELECT 1 FROM %s s WHERE s.%s = m.%s AND s.%s = $1)`,
		strings.Join(columns, ", "), member.Table,
		member.BoardNotifications,
		subscription.Table, subscription.MemberID, member.ID, subscription.SeriesID,
	)
	return repository.queryMembers(ctx, query, seriesID)
}

func (repository *repository) Delete(ctx context.Context, discordID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.WorkflowMember.Table, schema.WorkflowMember.DiscordID)

	tag, err := repository.pool.Exec(ctx, query, discordID)
	if err != nil {
		return false, dberr.Wrap(err, "Member", "delete member")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *repository) SetEscalation(ctx context.Context, discordID string, at *time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.WorkflowMember.Table,
		schema.WorkflowMember.RemindedAt,
		schema.WorkflowMember.DiscordID,
	)

	if _, err := repository.pool.Exec(ctx, query, discordID, at); err != nil {
		return dberr.Wrap(err, "Member", "set escalation")
	}
	return nil
}

func (repository *repository) UpdatePreferences(ctx context.Context, discordID string, prefs Preferences) error {
	member := schema.WorkflowMember
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = COALESCE($2, %s),
			%s = COALESCE($3, %s),
			%s = COALESCE($4, %s),
			%s = COALESCE($5, %s)
		WHERE %s = $1`,
		member.Table,
		member.CreditName, member.CreditName,
		member.ReminderInterval, member.ReminderInterval,
		member.BoardNotifications, member.BoardNotifications,
		member.StageNotifications, member.StageNotifications,
		member.DiscordID,
	)

	tag, err := repository.pool.Exec(ctx, query,
		discordID,
		prefs.CreditName,
		prefs.ReminderInterval,
		prefs.BoardNotifications,
		prefs.StageNotifications,
	)
	if err != nil {
		return dberr.Wrap(err, "Member", "update preferences")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Member", "update preferences")
	}
	return nil
}

// # Retired Members

func (repository *repository) Retire(ctx context.Context, discordID string, roles []string, tier Tier, at time.Time) (bool, error) {
	member, retired := schema.WorkflowMember, schema.WorkflowMemberRetired
	columns := strings.Join(member.Columns(), ", ")

	moveQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		SELECT %s, $2::text[], $3::smallint, $4::timestamptz FROM %s WHERE %s = $1`,
		retired.Table, columns, retired.Roles, retired.Tier, retired.RetiredAt,
		columns, member.Table, member.DiscordID,
	)
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, member.Table, member.DiscordID)

	moved := false
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, moveQuery, discordID, roles, tier, at)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		moved = true
		_, err = tx.Exec(ctx, deleteQuery, discordID)
		return err
	})
	if err != nil {
		return false, dberr.Wrap(err, "Member", "retire member")
	}
	return moved, nil
}

func retiredTargets(retired *RetiredMember) []any {
	return append(memberTargets(&retired.Member), &retired.Roles, &retired.Tier, &retired.RetiredAt)
}

func (repository *repository) FindRetired(ctx context.Context, discordID string) (*RetiredMember, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.WorkflowMemberRetired.Columns(), ", "),
		schema.WorkflowMemberRetired.Table,
		schema.WorkflowMemberRetired.DiscordID,
	)

	var retired RetiredMember
	if err := repository.pool.QueryRow(ctx, query, discordID).Scan(retiredTargets(&retired)...); err != nil {
		return nil, dberr.Wrap(err, "Retired member", "find retired member")
	}
	return &retired, nil
}

func (repository *repository) ListRetired(ctx context.Context) ([]*RetiredMember, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`,
		strings.Join(schema.WorkflowMemberRetired.Columns(), ", "),
		schema.WorkflowMemberRetired.Table,
		schema.WorkflowMemberRetired.RetiredAt,
	)

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "Retired member", "list retired members")
	}
	defer rows.Close()

	var members []*RetiredMember
	for rows.Next() {
		var retired RetiredMember
		if err := rows.Scan(retiredTargets(&retired)...); err != nil {
			return nil, dberr.Wrap(err, "Retired member", "scan retired member")
		}
		members = append(members, &retired)
	}
	return members, dberr.Wrap(rows.Err(), "Retired member", "iterate retired members")
}

func (repository *repository) Restore(ctx context.Context, discordID string, at time.Time) (bool, error) {
	member, retired := schema.WorkflowMember, schema.WorkflowMemberRetired
	columns := member.Columns()

	// Every column is copied as-is except the escalation stamp, which restarts at $2.
	sources := slice.Map(columns, func(column string) string {
		if column == member.RemindedAt {
			return "$2::timestamptz"
		}
		return column
	})

	moveQuery := fmt.Sprintf(`INSERT INTO %s (%s) SELECT %s FROM %s WHERE %s = $1`,
		member.Table, strings.Join(columns, ", "),
		strings.Join(sources, ", "), retired.Table, retired.DiscordID,
	)
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, retired.Table, retired.DiscordID)

	moved := false
	err := postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, moveQuery, discordID, at)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		moved = true
		_, err = tx.Exec(ctx, deleteQuery, discordID)
		return err
	})
	if err != nil {
		return false, dberr.Wrap(err, "Retired member", "restore member")
	}
	return moved, nil
}

func (repository *repository) DeleteRetired(ctx context.Context, discordID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.WorkflowMemberRetired.Table,
		schema.WorkflowMemberRetired.DiscordID,
	)

	tag, err := repository.pool.Exec(ctx, query, discordID)
	if err != nil {
		return false, dberr.Wrap(err, "Retired member", "delete retired member")
	}
	return tag.RowsAffected() == 1, nil
}

// # Subscriptions

func (repository *repository) Subscribe(ctx context.Context, memberID, seriesID string, at time.Time) (bool, error) {
	subscription := schema.WorkflowSubscription
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		subscription.Table, subscription.MemberID, subscription.SeriesID, subscription.SubscribedAt,
	)

	tag, err := repository.pool.Exec(ctx, query, memberID, seriesID, at)
	if err != nil {
		return false, dberr.Wrap(err, "Subscription", "subscribe")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *repository) Unsubscribe(ctx context.Context, memberID, seriesID string) (bool, error) {
	subscription := schema.WorkflowSubscription
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		subscription.Table, subscription.MemberID, subscription.SeriesID,
	)

	tag, err := repository.pool.Exec(ctx, query, memberID, seriesID)
	if err != nil {
		return false, dberr.Wrap(err, "Subscription", "unsubscribe")
	}
	return tag.RowsAffected() == 1, nil
}

// placeholders renders "$start, $start+1, ..." for n parameters.
func placeholders(n, start int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(marks, ", ")
}
