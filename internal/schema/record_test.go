package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPreservesKeyOrder(t *testing.T) {
	raw := `{"id_oplaty":5,"zuzycie":12.5,"kwota":null,"status_oplaty":"Wystawiono"}`

	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, []string{"id_oplaty", "zuzycie", "kwota", "status_oplaty"}, r.Keys())

	v, ok := r.Get("zuzycie")
	require.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, ok = r.Get("kwota")
	require.True(t, ok)
	assert.Nil(t, v)

	out, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	// Order must survive the round trip byte-for-byte, not just set-wise.
	assert.Equal(t, raw, string(out))
}

func TestRecordPrimaryKey(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		wantKey string
		wantOK  bool
	}{
		{"single candidate", []string{"id_budynku", "adres"}, "id_budynku", true},
		{"candidate not first", []string{"adres", "id_budynku"}, "id_budynku", true},
		{"first of several wins", []string{"id_umowy", "id_mieszkania", "id_czlonka"}, "id_umowy", true},
		{"case insensitive", []string{"ID_KONTA", "saldo"}, "ID_KONTA", true},
		{"no candidate", []string{"adres", "numer"}, "", false},
		{"prefix must match exactly", []string{"identyfikator", "uid_x"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord()
			for _, k := range tt.keys {
				r.Set(k, "x")
			}
			key, ok := r.PrimaryKey()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestRecordStringValue(t *testing.T) {
	r := NewRecord()
	r.Set("numer", "12A")
	r.Set("metraz", 54.5)
	r.Set("liczba_pokoi", float64(3))
	r.Set("id_budynku", nil)

	assert.Equal(t, "12A", r.StringValue("numer"))
	assert.Equal(t, "54.5", r.StringValue("metraz"))
	assert.Equal(t, "3", r.StringValue("liczba_pokoi"))
	assert.Equal(t, "", r.StringValue("id_budynku"))
	assert.Equal(t, "", r.StringValue("missing"))
}

func TestRecordSetOverwriteKeepsPosition(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1.0)
	r.Set("b", 2.0)
	r.Set("a", 3.0)

	assert.Equal(t, []string{"a", "b"}, r.Keys())
	v, _ := r.Get("a")
	assert.Equal(t, 3.0, v)
}
