package usecase

import (
	"strings"

	"github.com/sportsdock/fixture-sync/internal/domain/match"
)

const (
	ImportancePriorityHigh   = "HIGH"
	ImportancePriorityMedium = "MEDIUM"
)

// PairingPattern marks a two-team pairing worth flagging. Matching is
// substring-based in both directions so provider name variants still hit.
type PairingPattern struct {
	Teams    [2]string
	Label    string
	Priority string
}

// ImportancePatterns drive advisory match tagging. Order of precedence:
// derbies, then two big clubs meeting, then league-specific rivalries.
type ImportancePatterns struct {
	Derbies  []PairingPattern
	BigClubs []string
	ByLeague map[string][]PairingPattern
}

func DefaultImportancePatterns() ImportancePatterns {
	return ImportancePatterns{
		Derbies: []PairingPattern{
			{Teams: [2]string{"Real Madrid", "Barcelona"}, Label: "El Clasico", Priority: ImportancePriorityHigh},
			{Teams: [2]string{"Real Madrid", "Atletico Madrid"}, Label: "Derby Madrid", Priority: ImportancePriorityMedium},
			{Teams: [2]string{"Milan", "Inter"}, Label: "Derby Milano", Priority: ImportancePriorityHigh},
			{Teams: [2]string{"Juventus", "Inter"}, Label: "Derby d'Italia", Priority: ImportancePriorityHigh},
			{Teams: [2]string{"Roma", "Lazio"}, Label: "Derby Roma", Priority: ImportancePriorityMedium},
			{Teams: [2]string{"Manchester United", "Manchester City"}, Label: "Manchester Derby", Priority: ImportancePriorityHigh},
			{Teams: [2]string{"Liverpool", "Everton"}, Label: "Merseyside Derby", Priority: ImportancePriorityMedium},
			{Teams: [2]string{"Arsenal", "Tottenham"}, Label: "North London Derby", Priority: ImportancePriorityMedium},
			{Teams: [2]string{"Bayern Munich", "Borussia Dortmund"}, Label: "Der Klassiker", Priority: ImportancePriorityHigh},
		},
		BigClubs: []string{
			"Real Madrid", "Barcelona", "Atletico Madrid",
			"Manchester United", "Manchester City", "Liverpool", "Arsenal", "Chelsea",
			"Bayern Munich", "Borussia Dortmund",
			"Juventus", "Milan", "Inter", "Roma", "Napoli",
			"Paris Saint-Germain", "Marseille",
			"Ajax", "PSV",
			"Porto", "Benfica", "Sporting",
		},
		ByLeague: map[string][]PairingPattern{
			"serie-a": {
				{Teams: [2]string{"Juventus", "Milan"}, Label: "Juventus vs Milan", Priority: ImportancePriorityHigh},
				{Teams: [2]string{"Juventus", "Roma"}, Label: "Juventus vs Roma", Priority: ImportancePriorityMedium},
				{Teams: [2]string{"Napoli", "Juventus"}, Label: "Napoli vs Juventus", Priority: ImportancePriorityMedium},
			},
			"premier-league": {
				{Teams: [2]string{"Liverpool", "Manchester United"}, Label: "Liverpool vs Man United", Priority: ImportancePriorityHigh},
				{Teams: [2]string{"Arsenal", "Chelsea"}, Label: "Arsenal vs Chelsea", Priority: ImportancePriorityMedium},
			},
			"la-liga": {
				{Teams: [2]string{"Barcelona", "Atletico Madrid"}, Label: "Barcelona vs Atletico", Priority: ImportancePriorityMedium},
				{Teams: [2]string{"Valencia", "Barcelona"}, Label: "Valencia vs Barcelona", Priority: ImportancePriorityMedium},
			},
		},
	}
}

// Classify tags a pairing, or returns nil when the match is ordinary.
func (p ImportancePatterns) Classify(leagueKey, homeTeam, awayTeam string) *match.Importance {
	for _, derby := range p.Derbies {
		if teamsMatch(derby.Teams, homeTeam, awayTeam) {
			return &match.Importance{Label: derby.Label, Priority: derby.Priority}
		}
	}

	if p.isBigClub(homeTeam) && p.isBigClub(awayTeam) {
		return &match.Importance{Label: "Two big clubs", Priority: ImportancePriorityMedium}
	}

	for _, rivalry := range p.ByLeague[leagueKey] {
		if teamsMatch(rivalry.Teams, homeTeam, awayTeam) {
			return &match.Importance{Label: rivalry.Label, Priority: rivalry.Priority}
		}
	}
	return nil
}

func (p ImportancePatterns) isBigClub(team string) bool {
	for _, club := range p.BigClubs {
		if containsFold(team, club) {
			return true
		}
	}
	return false
}

func teamsMatch(pattern [2]string, homeTeam, awayTeam string) bool {
	for _, want := range pattern {
		if !teamMatches(want, homeTeam) && !teamMatches(want, awayTeam) {
			return false
		}
	}
	return true
}

func teamMatches(pattern, team string) bool {
	return containsFold(team, pattern) || containsFold(pattern, team)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
