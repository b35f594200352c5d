package sportmonks

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type listEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

type leaguePayload struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	CurrentSeason *seasonPayload `json:"currentSeason"`
	CurrentQuirk  *seasonPayload `json:"currentseason"`
}

func (l leaguePayload) currentSeason() *seasonPayload {
	if l.CurrentSeason != nil {
		return l.CurrentSeason
	}
	return l.CurrentQuirk
}

type seasonPayload struct {
	ID        int64          `json:"id"`
	LeagueID  int64          `json:"league_id"`
	Name      string         `json:"name"`
	IsCurrent bool           `json:"is_current"`
	StartsAt  string         `json:"starting_at"`
	EndsAt    string         `json:"ending_at"`
	Stages    []stagePayload `json:"stages"`
}

type stagePayload struct {
	ID       int64          `json:"id"`
	SeasonID int64          `json:"season_id"`
	Name     string         `json:"name"`
	TypeID   int64          `json:"type_id"`
	StartsAt string         `json:"starting_at"`
	EndsAt   string         `json:"ending_at"`
	Rounds   []roundPayload `json:"rounds"`
}

type roundPayload struct {
	ID       int64  `json:"id"`
	StageID  int64  `json:"stage_id"`
	SeasonID int64  `json:"season_id"`
	Name     string `json:"name"`
	StartsAt string `json:"starting_at"`
	EndsAt   string `json:"ending_at"`
}

// fixturePayload covers /fixtures responses with the
// participants;league;round includes.
type fixturePayload struct {
	ID         int64  `json:"id"`
	LeagueID   int64  `json:"league_id"`
	SeasonID   int64  `json:"season_id"`
	RoundID    int64  `json:"round_id"`
	StageID    int64  `json:"stage_id"`
	StateID    int64  `json:"state_id"`
	Name       string `json:"name"`
	StartingAt string `json:"starting_at"`
	Timezone   string `json:"timezone"`
	Minute     int    `json:"minute"`
	HasOdds    bool   `json:"has_odds"`

	League       *fixtureLeaguePayload `json:"league"`
	Round        *roundPayload         `json:"round"`
	Participants []participantPayload  `json:"participants"`
	Venue        *venuePayload         `json:"venue"`
	Scores       []scorePayload        `json:"scores"`
}

type fixtureLeaguePayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
	Country   *struct {
		Name string `json:"name"`
	} `json:"country"`
}

type participantPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortCode string `json:"short_code"`
	ImagePath string `json:"image_path"`
	Meta      struct {
		Location string `json:"location"`
	} `json:"meta"`
}

type venuePayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CityName string `json:"city_name"`
	Capacity int    `json:"capacity"`
}

type scorePayload struct {
	Description string `json:"description"`
	Score       struct {
		Goals       int    `json:"goals"`
		Participant string `json:"participant"`
	} `json:"score"`
}

// parseProviderDateTime handles the "2025-08-30 18:45:00" shape plus the
// RFC3339 and date-only variants the provider mixes in.
func parseProviderDateTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "TBD") {
		return nil
	}
	layouts := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

func toSeason(p seasonPayload, leagueID int64) fixture.Season {
	if p.LeagueID > 0 {
		leagueID = p.LeagueID
	}
	return fixture.Season{
		ID:        p.ID,
		LeagueID:  leagueID,
		Name:      p.Name,
		IsCurrent: p.IsCurrent,
		StartsAt:  parseProviderDateTime(p.StartsAt),
		EndsAt:    parseProviderDateTime(p.EndsAt),
	}
}

func toStage(p stagePayload, seasonID int64) fixture.Stage {
	if p.SeasonID > 0 {
		seasonID = p.SeasonID
	}
	return fixture.Stage{
		ID:       p.ID,
		SeasonID: seasonID,
		Name:     p.Name,
		TypeID:   p.TypeID,
		StartsAt: parseProviderDateTime(p.StartsAt),
		EndsAt:   parseProviderDateTime(p.EndsAt),
	}
}

func toRound(p roundPayload, stageID int64) fixture.Round {
	if p.StageID > 0 {
		stageID = p.StageID
	}
	return fixture.Round{
		ID:       p.ID,
		StageID:  stageID,
		SeasonID: p.SeasonID,
		Number:   parseRoundNumber(p.Name),
		Name:     p.Name,
		StartsAt: parseProviderDateTime(p.StartsAt),
		EndsAt:   parseProviderDateTime(p.EndsAt),
	}
}

// parseRoundNumber reads the matchday number out of round names such as "3"
// or "Round 3". Unparseable names yield zero.
func parseRoundNumber(name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	digits := strings.TrimLeft(strings.ToLower(name), "round ")
	n := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
		if n >= 1000 {
			return 0
		}
	}
	return n
}
