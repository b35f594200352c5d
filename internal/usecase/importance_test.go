package usecase

import "testing"

func TestImportancePatterns_Classify(t *testing.T) {
	t.Parallel()

	patterns := DefaultImportancePatterns()

	cases := []struct {
		name     string
		league   string
		home     string
		away     string
		label    string
		priority string
	}{
		{"clasico", "la-liga", "Real Madrid", "Barcelona", "El Clasico", ImportancePriorityHigh},
		{"clasico reversed", "la-liga", "Barcelona", "Real Madrid", "El Clasico", ImportancePriorityHigh},
		{"milan derby with prefix", "serie-a", "AC Milan", "Inter", "Derby Milano", ImportancePriorityHigh},
		{"two big clubs", "serie-a", "Napoli", "Roma", "Two big clubs", ImportancePriorityMedium},
		{"league rivalry", "la-liga", "Valencia", "Barcelona", "Valencia vs Barcelona", ImportancePriorityMedium},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := patterns.Classify(tc.league, tc.home, tc.away)
			if got == nil {
				t.Fatalf("expected %q, got nil", tc.label)
			}
			if got.Label != tc.label || got.Priority != tc.priority {
				t.Fatalf("expected %s/%s, got=%s/%s", tc.label, tc.priority, got.Label, got.Priority)
			}
		})
	}
}

func TestImportancePatterns_OrdinaryMatchUntagged(t *testing.T) {
	t.Parallel()

	patterns := DefaultImportancePatterns()
	if got := patterns.Classify("serie-a", "Lecce", "Cagliari"); got != nil {
		t.Fatalf("expected no tag, got=%+v", got)
	}
}

func TestImportancePatterns_DerbyBeatsBigClubs(t *testing.T) {
	t.Parallel()

	patterns := DefaultImportancePatterns()
	got := patterns.Classify("serie-a", "Juventus", "Inter")
	if got == nil || got.Label != "Derby d'Italia" {
		t.Fatalf("derby must take precedence, got=%+v", got)
	}
}

func TestImportancePatterns_RivalryScopedToLeague(t *testing.T) {
	t.Parallel()

	patterns := ImportancePatterns{
		ByLeague: map[string][]PairingPattern{
			"serie-a": {
				{Teams: [2]string{"Juventus", "Milan"}, Label: "Juventus vs Milan", Priority: ImportancePriorityHigh},
			},
		},
	}
	if got := patterns.Classify("serie-b", "Juventus", "Milan"); got != nil {
		t.Fatalf("rivalry must not apply outside its league, got=%+v", got)
	}
	if got := patterns.Classify("serie-a", "Juventus", "Milan"); got == nil {
		t.Fatal("rivalry should apply in its own league")
	}
}
