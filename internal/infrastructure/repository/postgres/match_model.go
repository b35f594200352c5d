package postgres

import (
	"database/sql"
	"time"

	"github.com/sportsdock/fixture-sync/internal/domain/match"
)

type matchTableModel struct {
	ID           int64          `db:"id"`
	ExternalID   string         `db:"external_id"`
	Provider     string         `db:"provider"`
	HomeTeam     string         `db:"home_team"`
	AwayTeam     string         `db:"away_team"`
	HomeTeamLogo sql.NullString `db:"home_team_logo"`
	AwayTeamLogo sql.NullString `db:"away_team_logo"`
	LeagueKey    string         `db:"league_key"`
	LeagueID     int64          `db:"league_id"`
	LeagueName   string         `db:"league_name"`
	LeagueLogo   sql.NullString `db:"league_logo"`
	MatchDate    string         `db:"match_date"`
	MatchTime    sql.NullString `db:"match_time"`
	RoundID      sql.NullString `db:"round_id"`
	RoundNumber  sql.NullInt64  `db:"round_number"`
	Status       string         `db:"status"`
	Importance   sql.NullString `db:"importance_label"`
	Priority     sql.NullString `db:"importance_priority"`
	Source       string         `db:"source"`
	CreatedAt    time.Time      `db:"created_at"`
	LastSyncedAt time.Time      `db:"last_synced_at"`
}

// matchInsertModel drops the serial id so upserts never touch it.
type matchInsertModel struct {
	ExternalID   string         `db:"external_id"`
	Provider     string         `db:"provider"`
	HomeTeam     string         `db:"home_team"`
	AwayTeam     string         `db:"away_team"`
	HomeTeamLogo sql.NullString `db:"home_team_logo"`
	AwayTeamLogo sql.NullString `db:"away_team_logo"`
	LeagueKey    string         `db:"league_key"`
	LeagueID     int64          `db:"league_id"`
	LeagueName   string         `db:"league_name"`
	LeagueLogo   sql.NullString `db:"league_logo"`
	MatchDate    string         `db:"match_date"`
	MatchTime    sql.NullString `db:"match_time"`
	RoundID      sql.NullString `db:"round_id"`
	RoundNumber  sql.NullInt64  `db:"round_number"`
	Status       string         `db:"status"`
	Importance   sql.NullString `db:"importance_label"`
	Priority     sql.NullString `db:"importance_priority"`
	Source       string         `db:"source"`
	CreatedAt    time.Time      `db:"created_at"`
	LastSyncedAt time.Time      `db:"last_synced_at"`
}

func matchToInsertModel(m match.Match) matchInsertModel {
	row := matchInsertModel{
		ExternalID:   m.ExternalID,
		Provider:     m.Provider,
		HomeTeam:     m.HomeTeam,
		AwayTeam:     m.AwayTeam,
		HomeTeamLogo: nullString(m.HomeTeamLogo),
		AwayTeamLogo: nullString(m.AwayTeamLogo),
		LeagueKey:    m.LeagueKey,
		LeagueID:     m.LeagueID,
		LeagueName:   m.LeagueName,
		LeagueLogo:   nullString(m.LeagueLogo),
		MatchDate:    m.Date,
		MatchTime:    nullString(m.Time),
		RoundID:      nullString(m.RoundID),
		RoundNumber:  nullInt(m.RoundNumber),
		Status:       m.Status,
		Source:       m.Source,
		CreatedAt:    m.CreatedAt,
		LastSyncedAt: m.LastSyncedAt,
	}
	if m.Importance != nil {
		row.Importance = nullString(m.Importance.Label)
		row.Priority = nullString(m.Importance.Priority)
	}
	return row
}

func (row matchTableModel) toDomain() match.Match {
	m := match.Match{
		ExternalID:   row.ExternalID,
		Provider:     row.Provider,
		HomeTeam:     row.HomeTeam,
		AwayTeam:     row.AwayTeam,
		HomeTeamLogo: row.HomeTeamLogo.String,
		AwayTeamLogo: row.AwayTeamLogo.String,
		LeagueKey:    row.LeagueKey,
		LeagueID:     row.LeagueID,
		LeagueName:   row.LeagueName,
		LeagueLogo:   row.LeagueLogo.String,
		Date:         row.MatchDate,
		Time:         row.MatchTime.String,
		RoundID:      row.RoundID.String,
		RoundNumber:  int(row.RoundNumber.Int64),
		Status:       row.Status,
		Source:       row.Source,
		CreatedAt:    row.CreatedAt,
		LastSyncedAt: row.LastSyncedAt,
	}
	if row.Importance.Valid {
		m.Importance = &match.Importance{
			Label:    row.Importance.String,
			Priority: row.Priority.String,
		}
	}
	return m
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullInt(value int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(value), Valid: value != 0}
}
