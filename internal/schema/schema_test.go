package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormFields(t *testing.T) {
	t.Run("declared profile", func(t *testing.T) {
		assert.Equal(t,
			[]string{"id_mieszkania", "id_uslugi", "zuzycie", "kwota", "status_oplaty"},
			FormFields("oplata", nil))
	})

	t.Run("fallback derives from sample", func(t *testing.T) {
		sample := NewRecord()
		sample.Set("id_czegos", 1.0)
		sample.Set("nazwa", "x")
		sample.Set("wartosc", 2.0)

		assert.Equal(t, []string{"nazwa", "wartosc"}, FormFields("nieznana", sample))
	})

	t.Run("unknown table without sample", func(t *testing.T) {
		assert.Empty(t, FormFields("nieznana", nil))
	})
}

func TestPrimaryKeyColumn(t *testing.T) {
	assert.Equal(t, "id_budynku", PrimaryKeyColumn("budynek"))
	assert.Equal(t, "id_spotkania", PrimaryKeyColumn("spotkanie_mieszkancow"))
	assert.Equal(t, "", PrimaryKeyColumn("nieznana"))
}

func TestIsValidTable(t *testing.T) {
	for _, name := range Tables() {
		assert.True(t, IsValidTable(name), name)
	}
	assert.False(t, IsValidTable("uzytkownik"))
	assert.False(t, IsValidTable(""))
}

func TestFieldClassification(t *testing.T) {
	assert.True(t, IsDropdownField("status_oplaty"))
	assert.True(t, IsDropdownField("id_budynku"))
	assert.False(t, IsDropdownField("adres"))

	assert.True(t, IsNumericField("cena_za_jednostke"))
	assert.False(t, IsNumericField("numer_konta"))

	assert.True(t, IsDateField("data_zawarcia"))
	assert.True(t, IsDateField("data_spotkania"))
	assert.False(t, IsDateField("saldo"))

	assert.True(t, IsForeignKeyField("id_uslugi"))
	assert.False(t, IsForeignKeyField("id_oplaty"))
}

func TestNormalizeDateForInput(t *testing.T) {
	tests := []struct {
		raw  any
		want string
	}{
		{"2024-03-15T00:00:00Z", "2024-03-15"},
		{"2024-03-15 00:00:00", "2024-03-15"},
		{"2024-03-15", "2024-03-15"},
		{nil, ""},
		{12.5, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDateForInput(tt.raw))
	}
}
