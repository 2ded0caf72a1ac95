package members

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"osiedle/internal/schema"
)

func TestSnapshotFlattensRecord(t *testing.T) {
	rec := schema.NewRecord()
	rec.Set("id_czlonka", float64(4))
	rec.Set("imie", "Anna")
	rec.Set("telefon", nil)

	got := snapshot(rec)
	assert.Equal(t, map[string]any{
		"id_czlonka": float64(4),
		"imie":       "Anna",
		"telefon":    nil,
	}, got)

	assert.Nil(t, snapshot(nil))
}

func TestMemberIDOf(t *testing.T) {
	rec := schema.NewRecord()
	rec.Set("id_czlonka", float64(17))
	assert.Equal(t, int64(17), memberIDOf(rec))

	assert.Equal(t, int64(0), memberIDOf(nil))
	assert.Equal(t, int64(0), memberIDOf(schema.NewRecord()))
}
