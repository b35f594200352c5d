package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sportsdock/fixture-sync/internal/domain/match"
	qb "github.com/sportsdock/fixture-sync/internal/platform/querybuilder"
)

const matchesTable = "matches"

const matchUpsertSuffix = `ON CONFLICT (provider, external_id) DO UPDATE SET
home_team = EXCLUDED.home_team,
away_team = EXCLUDED.away_team,
home_team_logo = EXCLUDED.home_team_logo,
away_team_logo = EXCLUDED.away_team_logo,
league_key = EXCLUDED.league_key,
league_id = EXCLUDED.league_id,
league_name = EXCLUDED.league_name,
league_logo = EXCLUDED.league_logo,
match_date = EXCLUDED.match_date,
match_time = EXCLUDED.match_time,
round_id = COALESCE(EXCLUDED.round_id, matches.round_id),
round_number = COALESCE(EXCLUDED.round_number, matches.round_number),
status = EXCLUDED.status,
importance_label = COALESCE(EXCLUDED.importance_label, matches.importance_label),
importance_priority = COALESCE(EXCLUDED.importance_priority, matches.importance_priority),
source = EXCLUDED.source,
last_synced_at = EXCLUDED.last_synced_at`

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) FindByExternalID(ctx context.Context, provider, externalID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From(matchesTable).
		Where(
			qb.Eq("provider", provider),
			qb.Eq("external_id", externalID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return r.findByExternalIDLiteral(ctx, provider, externalID)
		}
		if stderrors.Is(err, sql.ErrNoRows) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) findByExternalIDLiteral(ctx context.Context, provider, externalID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From(matchesTable).
		Where(
			qb.EqLiteral("provider", provider),
			qb.EqLiteral("external_id", externalID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match literal fallback query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match literal fallback: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) error {
	if err := m.Validate(); err != nil {
		return err
	}

	query, args, err := qb.InsertModel(matchesTable, matchToInsertModel(m), matchUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}

	return nil
}

func (r *MatchRepository) ListWhere(ctx context.Context, f match.Filter) ([]match.Match, error) {
	query, args, err := qb.Select("*").From(matchesTable).
		Where(matchConditions(f)...).
		OrderBy("match_date", "match_time", "external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *MatchRepository) CountWhere(ctx context.Context, f match.Filter) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From(matchesTable).
		Where(matchConditions(f)...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count matches query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}

	return count, nil
}

func (r *MatchRepository) DeleteWhere(ctx context.Context, f match.Filter) (int, error) {
	conditions := matchConditions(f)
	if len(conditions) == 0 {
		return 0, fmt.Errorf("delete matches requires at least one filter")
	}

	query, args, err := qb.DeleteFrom(matchesTable).
		Where(conditions...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete matches query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete matches: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete matches rows affected: %w", err)
	}

	return int(affected), nil
}

func matchConditions(f match.Filter) []qb.Condition {
	conditions := make([]qb.Condition, 0, 6)
	if f.LeagueKey != "" {
		conditions = append(conditions, qb.Eq("league_key", f.LeagueKey))
	}
	if f.LeagueID != 0 {
		conditions = append(conditions, qb.Eq("league_id", f.LeagueID))
	}
	if f.Provider != "" {
		conditions = append(conditions, qb.Eq("provider", f.Provider))
	}
	if f.DateBefore != "" {
		conditions = append(conditions, qb.Expr("match_date < ?", f.DateBefore))
	}
	if f.DateFrom != "" {
		conditions = append(conditions, qb.Expr("match_date >= ?", f.DateFrom))
	}
	if f.WithRound != nil {
		if *f.WithRound {
			conditions = append(conditions, qb.Expr("round_id IS NOT NULL"))
		} else {
			conditions = append(conditions, qb.IsNull("round_id"))
		}
	}
	return conditions
}
