package fixture

import (
	"fmt"
	"time"
)

// Status codes carried on a normalized fixture.
const (
	StatusNotStarted = "NS"
	StatusLive       = "LIVE"
	StatusHalftime   = "HT"
	StatusFinished   = "FT"
	StatusCancelled  = "CANC"
	StatusPostponed  = "POSTP"
	StatusSuspended  = "SUSP"
)

const (
	RoleHome = "home"
	RoleAway = "away"
)

// Standard is the provider-agnostic fixture shape every adapter maps into.
// FixtureID is globally unique across providers; ExternalID is the raw
// provider identifier.
type Standard struct {
	FixtureID  string `validate:"required"`
	ExternalID string `validate:"required"`
	Provider   string `validate:"required"`

	League League

	// Date is the local calendar day (YYYY-MM-DD). Time is HH:MM and stays
	// empty while the kickoff slot is still TBD.
	Date     string `validate:"required"`
	Time     string
	StartsAt *time.Time
	Timezone string

	Participants []Participant `validate:"len=2"`
	Venue        *Venue
	Status       Status `validate:"required"`
	Scores       Scores
	Meta         Meta
}

// Participant is one of the two teams in a fixture.
type Participant struct {
	ID        string
	Name      string `validate:"required"`
	ShortName string
	Role      string `validate:"oneof=home away"`
	Image     string
}

// League identifies the competition a fixture belongs to.
type League struct {
	ID      int64
	Name    string
	Logo    string
	Country string
}

type Venue struct {
	ID       string
	Name     string
	City     string
	Capacity int
}

// Status is the normalized match state.
type Status struct {
	Code        string `validate:"required"`
	Description string
	Minute      int
}

// Scores holds nil until the provider reports a value.
type Scores struct {
	Home     *int
	Away     *int
	Halftime *ScorePair
}

type ScorePair struct {
	Home *int
	Away *int
}

// Meta carries provider bookkeeping that downstream consumers may need.
type Meta struct {
	SeasonID  string
	RoundID   string
	StageID   string
	HasOdds   bool
	IsLive    bool
	FetchedAt time.Time
}

// Home returns the home-side participant, false when the fixture is malformed.
func (s Standard) Home() (Participant, bool) {
	return s.participant(RoleHome)
}

// Away returns the away-side participant, false when the fixture is malformed.
func (s Standard) Away() (Participant, bool) {
	return s.participant(RoleAway)
}

func (s Standard) participant(role string) (Participant, bool) {
	for _, p := range s.Participants {
		if p.Role == role {
			return p, true
		}
	}
	return Participant{}, false
}

// TimeTBD reports whether the kickoff slot is still unconfirmed.
func (s Standard) TimeTBD() bool {
	return s.Time == ""
}

func (s Standard) Validate() error {
	if s.FixtureID == "" {
		return fmt.Errorf("fixture id is required")
	}
	if s.ExternalID == "" {
		return fmt.Errorf("fixture external id is required")
	}
	if s.Provider == "" {
		return fmt.Errorf("fixture provider is required")
	}
	if s.Date == "" {
		return fmt.Errorf("fixture date is required")
	}
	if len(s.Participants) != 2 {
		return fmt.Errorf("fixture needs exactly two participants, got %d", len(s.Participants))
	}
	if _, ok := s.Home(); !ok {
		return fmt.Errorf("fixture is missing a home participant")
	}
	if _, ok := s.Away(); !ok {
		return fmt.Errorf("fixture is missing an away participant")
	}
	if s.Status.Code == "" {
		return fmt.Errorf("fixture status code is required")
	}

	return nil
}

func IsLiveStatus(code string) bool {
	switch code {
	case StatusLive, StatusHalftime:
		return true
	default:
		return false
	}
}

func IsFinalStatus(code string) bool {
	switch code {
	case StatusFinished, StatusCancelled:
		return true
	default:
		return false
	}
}
