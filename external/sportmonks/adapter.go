package sportmonks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
	"github.com/sportsdock/fixture-sync/internal/usecase"
)

// stateID values documented by the provider. Everything unknown collapses
// to not-started rather than failing the fixture.
var statusByStateID = map[int64]string{
	1:  fixture.StatusNotStarted,
	2:  fixture.StatusLive,
	3:  fixture.StatusFinished,
	4:  fixture.StatusFinished,
	5:  fixture.StatusFinished,
	6:  fixture.StatusCancelled,
	7:  fixture.StatusPostponed,
	8:  fixture.StatusSuspended,
	9:  fixture.StatusNotStarted,
	10: fixture.StatusHalftime,
}

var statusDescriptions = map[string]string{
	fixture.StatusNotStarted: "Not Started",
	fixture.StatusLive:       "Live",
	fixture.StatusHalftime:   "Half Time",
	fixture.StatusFinished:   "Full Time",
	fixture.StatusCancelled:  "Cancelled",
	fixture.StatusPostponed:  "Postponed",
	fixture.StatusSuspended:  "Suspended",
}

// Adapter normalizes raw SportMonks fixture payloads into the standard
// shape. It implements usecase.FixtureMapper.
type Adapter struct {
	logger   *logging.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewAdapter(logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (a *Adapter) Provider() string { return ProviderName }

// MapFixture normalizes one raw fixture payload. Fixtures without a
// confirmed kickoff fall back to the round start date with an empty time.
func (a *Adapter) MapFixture(raw json.RawMessage) (fixture.Standard, error) {
	var payload fixturePayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return fixture.Standard{}, fmt.Errorf("%w: decode fixture: %v", usecase.ErrMapping, err)
	}
	if payload.ID <= 0 {
		return fixture.Standard{}, fmt.Errorf("%w: fixture id missing", usecase.ErrMapping)
	}

	participants, err := mapParticipants(payload)
	if err != nil {
		return fixture.Standard{}, fmt.Errorf("%w: fixture %d: %v", usecase.ErrMapping, payload.ID, err)
	}

	leagueInfo, err := mapLeague(payload)
	if err != nil {
		return fixture.Standard{}, fmt.Errorf("%w: fixture %d: %v", usecase.ErrMapping, payload.ID, err)
	}

	date, clock, startsAt := mapTiming(payload)
	if date == "" {
		return fixture.Standard{}, fmt.Errorf("%w: fixture %d: no kickoff date and no round fallback", usecase.ErrMapping, payload.ID)
	}

	code := statusByStateID[payload.StateID]
	if code == "" {
		code = fixture.StatusNotStarted
	}

	externalID := strconv.FormatInt(payload.ID, 10)
	mapped := fixture.Standard{
		FixtureID:    ProviderName + "_" + externalID,
		ExternalID:   externalID,
		Provider:     ProviderName,
		League:       leagueInfo,
		Date:         date,
		Time:         clock,
		StartsAt:     startsAt,
		Timezone:     payload.Timezone,
		Participants: participants,
		Venue:        mapVenue(payload.Venue),
		Status: fixture.Status{
			Code:        code,
			Description: statusDescriptions[code],
			Minute:      payload.Minute,
		},
		Scores: mapScores(payload.Scores),
		Meta: fixture.Meta{
			SeasonID:  formatID(payload.SeasonID),
			RoundID:   roundIDOf(payload),
			StageID:   formatID(payload.StageID),
			HasOdds:   payload.HasOdds,
			IsLive:    fixture.IsLiveStatus(code),
			FetchedAt: a.now().UTC(),
		},
	}

	if err := mapped.Validate(); err != nil {
		return fixture.Standard{}, fmt.Errorf("%w: fixture %d: %v", usecase.ErrMapping, payload.ID, err)
	}
	if err := a.validate.Struct(mapped); err != nil {
		return fixture.Standard{}, fmt.Errorf("%w: fixture %d: %v", usecase.ErrMapping, payload.ID, err)
	}
	return mapped, nil
}

// MapFixtures normalizes a batch. Bad entries are collected as failures and
// never abort the rest of the batch.
func (a *Adapter) MapFixtures(raws []json.RawMessage) fixture.Batch {
	batch := fixture.Batch{
		Fixtures: make([]fixture.Standard, 0, len(raws)),
	}
	for i, raw := range raws {
		mapped, err := a.MapFixture(raw)
		if err != nil {
			batch.Failures = append(batch.Failures, fixture.MapFailure{
				Index:      i,
				ExternalID: rawExternalID(raw),
				Err:        err,
			})
			a.logger.Warn("fixture mapping failed", "index", i, "error", err)
			continue
		}
		batch.Fixtures = append(batch.Fixtures, mapped)
	}
	return batch
}

func mapParticipants(payload fixturePayload) ([]fixture.Participant, error) {
	if len(payload.Participants) != 2 {
		return nil, fmt.Errorf("expected 2 participants, got %d", len(payload.Participants))
	}
	out := make([]fixture.Participant, 0, 2)
	for _, p := range payload.Participants {
		role := p.Meta.Location
		if role != fixture.RoleHome && role != fixture.RoleAway {
			return nil, fmt.Errorf("invalid participant role %q", role)
		}
		name := p.Name
		if name == "" {
			name = "Unknown Team"
		}
		out = append(out, fixture.Participant{
			ID:        formatID(p.ID),
			Name:      name,
			ShortName: p.ShortCode,
			Role:      role,
			Image:     p.ImagePath,
		})
	}
	return out, nil
}

func mapLeague(payload fixturePayload) (fixture.League, error) {
	if payload.League == nil {
		if payload.LeagueID <= 0 {
			return fixture.League{}, fmt.Errorf("missing league data")
		}
		return fixture.League{ID: payload.LeagueID, Name: "Unknown League"}, nil
	}
	info := fixture.League{
		ID:   payload.League.ID,
		Name: payload.League.Name,
		Logo: payload.League.ImagePath,
	}
	if info.ID <= 0 {
		info.ID = payload.LeagueID
	}
	if info.Name == "" {
		info.Name = "Unknown League"
	}
	if payload.League.Country != nil {
		info.Country = payload.League.Country.Name
	}
	return info, nil
}

func mapTiming(payload fixturePayload) (date, clock string, startsAt *time.Time) {
	if parsed := parseProviderDateTime(payload.StartingAt); parsed != nil {
		return parsed.Format("2006-01-02"), parsed.Format("15:04"), parsed
	}
	// TBD kickoff: anchor the fixture to the round start so day-based
	// consumers still see it on the right matchday.
	if payload.Round != nil {
		if roundStart := parseProviderDateTime(payload.Round.StartsAt); roundStart != nil {
			return roundStart.Format("2006-01-02"), "", nil
		}
	}
	return "", "", nil
}

func mapVenue(payload *venuePayload) *fixture.Venue {
	if payload == nil {
		return nil
	}
	return &fixture.Venue{
		ID:       formatID(payload.ID),
		Name:     payload.Name,
		City:     payload.CityName,
		Capacity: payload.Capacity,
	}
}

func mapScores(entries []scorePayload) fixture.Scores {
	var out fixture.Scores
	var halftime fixture.ScorePair
	haveHT := false
	for _, entry := range entries {
		goals := entry.Score.Goals
		switch entry.Description {
		case "CURRENT", "FT":
			switch entry.Score.Participant {
			case fixture.RoleHome:
				v := goals
				out.Home = &v
			case fixture.RoleAway:
				v := goals
				out.Away = &v
			}
		case "HT", "1ST_HALF":
			switch entry.Score.Participant {
			case fixture.RoleHome:
				v := goals
				halftime.Home = &v
				haveHT = true
			case fixture.RoleAway:
				v := goals
				halftime.Away = &v
				haveHT = true
			}
		}
	}
	if haveHT {
		out.Halftime = &halftime
	}
	return out
}

func roundIDOf(payload fixturePayload) string {
	if payload.RoundID > 0 {
		return strconv.FormatInt(payload.RoundID, 10)
	}
	if payload.Round != nil && payload.Round.ID > 0 {
		return strconv.FormatInt(payload.Round.ID, 10)
	}
	return ""
}

func formatID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// rawExternalID pulls just the fixture id out of an undecodable payload for
// failure reporting.
func rawExternalID(raw json.RawMessage) string {
	var probe struct {
		ID int64 `json:"id"`
	}
	if err := sonic.Unmarshal(raw, &probe); err != nil || probe.ID <= 0 {
		return ""
	}
	return strconv.FormatInt(probe.ID, 10)
}
