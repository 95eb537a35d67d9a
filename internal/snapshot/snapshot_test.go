package snapshot_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/contester/api"
	"github.com/programme-lv/contester/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() api.RanklistSnapshot {
	score := 70
	return api.RanklistSnapshot{
		ContestID:   3,
		ContestType: "ioi",
		Problems:    []int64{1, 2},
		TakenAt:     "2024-03-01T12:00:00Z",
		Rows: []api.RankedRow{{
			Rank: 1,
			Standing: api.Standing{
				CompetitorID: 5,
				Score:        70,
				Problems: []api.ProblemCell{
					{ProblemID: 1, Verdict: api.PartiallyCorrect, Score: &score},
				},
			},
		}},
	}
}

func TestCompressedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rl.json.zst")
	require.NoError(t, snapshot.WriteFile(path, sample()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(raw, []byte("{")), "expected zstd frame, got json")

	got, err := snapshot.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rl.json")
	require.NoError(t, snapshot.WriteFile(path, sample()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"contest_type": "ioi"`)

	got, err := snapshot.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := snapshot.Read(bytes.NewReader([]byte("not zstd")))
	require.Error(t, err)
}

func TestWriteFileMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "rl.json")
	err := snapshot.WriteFile(path, sample())
	require.ErrorContains(t, err, "failed to create file")
}
