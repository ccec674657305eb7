package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	require.NoError(t, j.Record(Entry{
		ID:       "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Time:     time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
		Identity: "bob",
		Command:  "balance",
		Text:     "/balance",
		Outcome:  "ok",
		Detail:   "balance report",
	}))
	require.NoError(t, j.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"id", "time", "identity", "command", "text", "outcome", "detail"}, rows[0])
	assert.Equal(t, "bob", rows[1][2])
	assert.Equal(t, "balance", rows[1][3])
	assert.Equal(t, "2024-03-04T05:06:07Z", rows[1][1])
}
