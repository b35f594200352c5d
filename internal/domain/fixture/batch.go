package fixture

// MapFailure records one payload an adapter could not normalize.
type MapFailure struct {
	Index      int
	ExternalID string
	Err        error
}

// Batch is the outcome of normalizing a provider payload. A batch is never
// aborted by individual bad entries; they land in Failures instead.
type Batch struct {
	Fixtures []Standard
	Failures []MapFailure
}

func (b Batch) Errors() []string {
	if len(b.Failures) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(b.Failures))
	for _, f := range b.Failures {
		msgs = append(msgs, f.Err.Error())
	}
	return msgs
}

// FilterByLeague keeps only fixtures belonging to the given provider league ID.
func (b Batch) FilterByLeague(leagueID int64) Batch {
	if leagueID == 0 {
		return b
	}
	kept := make([]Standard, 0, len(b.Fixtures))
	for _, f := range b.Fixtures {
		if f.League.ID == leagueID {
			kept = append(kept, f)
		}
	}
	return Batch{Fixtures: kept, Failures: b.Failures}
}
