package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertModel(t *testing.T) {
	t.Parallel()

	type row struct {
		ExternalID string `db:"external_id"`
		Provider   string `db:"provider"`
		ignored    string
		Skipped    string `db:"-"`
		NoTag      string
	}

	query, args, err := InsertModel("matches", row{
		ExternalID: "fix-1",
		Provider:   "sportmonks",
		ignored:    "x",
		Skipped:    "y",
		NoTag:      "z",
	}, "ON CONFLICT DO NOTHING")
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO matches (external_id, provider) VALUES ($1, $2) ON CONFLICT DO NOTHING", query)
	require.Equal(t, []any{"fix-1", "sportmonks"}, args)
}

func TestInsertModel_PointerModel(t *testing.T) {
	t.Parallel()

	type row struct {
		Key string `db:"league_key"`
	}

	query, args, err := InsertModel("leagues", &row{Key: "serie-a"}, "")
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO leagues (league_key) VALUES ($1)", query)
	require.Equal(t, []any{"serie-a"}, args)
}

func TestInsertModel_Rejections(t *testing.T) {
	t.Parallel()

	_, _, err := InsertModel("matches", nil, "")
	require.Error(t, err)

	_, _, err = InsertModel("matches", (*struct{})(nil), "")
	require.Error(t, err)

	_, _, err = InsertModel("matches", struct{ Plain string }{Plain: "v"}, "")
	require.Error(t, err)
}
