// Package staticfix serves a small embedded fixture dataset through the
// provider gateway interface. It exists for offline development and
// deterministic tests; payloads are SportMonks-shaped so the regular
// adapter normalizes them unchanged.
package staticfix

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
	"github.com/sportsdock/fixture-sync/internal/usecase"

	_ "embed"
)

const ProviderName = "static"

//go:embed fixtures.json
var embeddedDataset []byte

type dataset struct {
	Seasons  []seasonRow       `json:"seasons"`
	Stages   []stageRow        `json:"stages"`
	Rounds   []roundRow        `json:"rounds"`
	Fixtures []json.RawMessage `json:"fixtures"`
}

type seasonRow struct {
	ID        int64  `json:"id"`
	LeagueID  int64  `json:"league_id"`
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
	StartsAt  string `json:"starting_at"`
	EndsAt    string `json:"ending_at"`
}

type stageRow struct {
	ID       int64  `json:"id"`
	SeasonID int64  `json:"season_id"`
	Name     string `json:"name"`
	TypeID   int64  `json:"type_id"`
	StartsAt string `json:"starting_at"`
	EndsAt   string `json:"ending_at"`
}

type roundRow struct {
	ID       int64  `json:"id"`
	StageID  int64  `json:"stage_id"`
	SeasonID int64  `json:"season_id"`
	Name     string `json:"name"`
	StartsAt string `json:"starting_at"`
	EndsAt   string `json:"ending_at"`
}

type fixtureRef struct {
	id       int64
	leagueID int64
	roundID  int64
	date     string
	raw      json.RawMessage
}

// Client is the static gateway. It implements usecase.ProviderGateway.
type Client struct {
	seasons  []seasonRow
	stages   []stageRow
	rounds   []roundRow
	fixtures []fixtureRef
}

// New parses the embedded dataset.
func New() (*Client, error) {
	return Parse(embeddedDataset)
}

// Parse builds a static gateway from a dataset document.
func Parse(raw []byte) (*Client, error) {
	var doc dataset
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, crerr.Wrap(err, "parse static dataset")
	}

	refs := make([]fixtureRef, 0, len(doc.Fixtures))
	for i, rawFixture := range doc.Fixtures {
		var probe struct {
			ID         int64  `json:"id"`
			LeagueID   int64  `json:"league_id"`
			RoundID    int64  `json:"round_id"`
			StartingAt string `json:"starting_at"`
			Round      *struct {
				StartsAt string `json:"starting_at"`
			} `json:"round"`
		}
		if err := sonic.Unmarshal(rawFixture, &probe); err != nil {
			return nil, crerr.Wrapf(err, "static fixture %d", i)
		}
		date := datePart(probe.StartingAt)
		if date == "" && probe.Round != nil {
			date = datePart(probe.Round.StartsAt)
		}
		refs = append(refs, fixtureRef{
			id:       probe.ID,
			leagueID: probe.LeagueID,
			roundID:  probe.RoundID,
			date:     date,
			raw:      rawFixture,
		})
	}

	return &Client{
		seasons:  doc.Seasons,
		stages:   doc.Stages,
		rounds:   doc.Rounds,
		fixtures: refs,
	}, nil
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) CurrentSeason(_ context.Context, leagueID int64) (fixture.Season, bool, error) {
	for _, s := range c.seasons {
		if s.LeagueID == leagueID && s.IsCurrent {
			return toSeason(s), true, nil
		}
	}
	return fixture.Season{}, false, nil
}

func (c *Client) SeasonsByLeague(_ context.Context, leagueID int64) ([]fixture.Season, error) {
	out := make([]fixture.Season, 0, 2)
	for _, s := range c.seasons {
		if s.LeagueID == leagueID {
			out = append(out, toSeason(s))
		}
	}
	return out, nil
}

func (c *Client) SeasonStages(_ context.Context, seasonID int64) ([]fixture.Stage, error) {
	out := make([]fixture.Stage, 0, 1)
	for _, s := range c.stages {
		if s.SeasonID == seasonID {
			out = append(out, fixture.Stage{
				ID:       s.ID,
				SeasonID: s.SeasonID,
				Name:     s.Name,
				TypeID:   s.TypeID,
				StartsAt: parseDate(s.StartsAt),
				EndsAt:   parseDate(s.EndsAt),
			})
		}
	}
	return out, nil
}

func (c *Client) StageRounds(_ context.Context, stageID int64) ([]fixture.Round, error) {
	out := make([]fixture.Round, 0, 4)
	for _, r := range c.rounds {
		if r.StageID == stageID {
			out = append(out, fixture.Round{
				ID:       r.ID,
				StageID:  r.StageID,
				SeasonID: r.SeasonID,
				Number:   roundNumber(r.Name),
				Name:     r.Name,
				StartsAt: parseDate(r.StartsAt),
				EndsAt:   parseDate(r.EndsAt),
			})
		}
	}
	return out, nil
}

func (c *Client) FixturesByRounds(_ context.Context, roundIDs []int64) ([]json.RawMessage, error) {
	if len(roundIDs) == 0 {
		return nil, nil
	}
	wanted := make(map[int64]struct{}, len(roundIDs))
	for _, id := range roundIDs {
		wanted[id] = struct{}{}
	}
	out := make([]json.RawMessage, 0, len(c.fixtures))
	for _, ref := range c.fixtures {
		if _, ok := wanted[ref.roundID]; ok {
			out = append(out, ref.raw)
		}
	}
	return out, nil
}

func (c *Client) FixturesByDate(_ context.Context, date string) ([]json.RawMessage, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", usecase.ErrInvalidInput, date)
	}
	out := make([]json.RawMessage, 0, 4)
	for _, ref := range c.fixtures {
		if ref.date == date {
			out = append(out, ref.raw)
		}
	}
	return out, nil
}

func (c *Client) FixturesBetween(_ context.Context, from, to string, leagueID int64) ([]json.RawMessage, error) {
	if _, err := time.Parse("2006-01-02", from); err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", usecase.ErrInvalidInput, from)
	}
	if _, err := time.Parse("2006-01-02", to); err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", usecase.ErrInvalidInput, to)
	}
	if from > to {
		return nil, fmt.Errorf("%w: range start %s is after end %s", usecase.ErrInvalidInput, from, to)
	}

	out := make([]json.RawMessage, 0, 8)
	for _, ref := range c.fixtures {
		if ref.date < from || ref.date > to {
			continue
		}
		if leagueID > 0 && ref.leagueID != leagueID {
			continue
		}
		out = append(out, ref.raw)
	}
	return out, nil
}

func toSeason(s seasonRow) fixture.Season {
	return fixture.Season{
		ID:        s.ID,
		LeagueID:  s.LeagueID,
		Name:      s.Name,
		IsCurrent: s.IsCurrent,
		StartsAt:  parseDate(s.StartsAt),
		EndsAt:    parseDate(s.EndsAt),
	}
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

func datePart(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < 10 {
		return ""
	}
	return raw[:10]
}

func roundNumber(name string) int {
	n := 0
	for _, r := range strings.TrimSpace(name) {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
