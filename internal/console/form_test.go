package console

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osiedle/internal/core/apperror"
)

func fixedPrice(price string) UnitPriceFunc {
	return func(serviceID string) (decimal.Decimal, bool) {
		if serviceID == "" {
			return decimal.Decimal{}, false
		}
		return decimal.RequireFromString(price), true
	}
}

func noPrice(string) (decimal.Decimal, bool) {
	return decimal.Decimal{}, false
}

func TestFormSeedsFromRecordWithDateNormalization(t *testing.T) {
	record := rec(t, `{"id_umowy":3,"id_mieszkania":7,"id_czlonka":2,"data_zawarcia":"2023-05-01T00:00:00Z","data_wygasniecia":null,"typ_umowy":"najem"}`)

	f := NewForm("umowa", record, noPrice)
	assert.False(t, f.IsNew())
	assert.Equal(t, "2023-05-01", f.Value("data_zawarcia"))
	assert.Equal(t, "", f.Value("data_wygasniecia"))
	assert.Equal(t, "najem", f.Value("typ_umowy"))

	field, value, err := f.OriginalKey()
	require.NoError(t, err)
	assert.Equal(t, "id_umowy", field)
	assert.Equal(t, "3", value)
}

func TestFormAddStartsEmpty(t *testing.T) {
	f := NewForm("budynek", nil, noPrice)
	assert.True(t, f.IsNew())
	for _, key := range f.Fields() {
		assert.Equal(t, "", f.Value(key))
	}
}

func TestFeeAmountRecomputedFromEitherContributor(t *testing.T) {
	// Unit price 2.50, quantity 40 -> amount "100.00" no matter which
	// contributing field changed last.
	f := NewForm("oplata", nil, fixedPrice("2.50"))

	f.Set("id_uslugi", "1")
	f.Set("zuzycie", "40")
	assert.Equal(t, "100.00", f.Value("kwota"))

	g := NewForm("oplata", nil, fixedPrice("2.50"))
	g.Set("zuzycie", "40")
	g.Set("id_uslugi", "1")
	assert.Equal(t, "100.00", g.Value("kwota"))
}

func TestFeeAmountClearedWhenNotComputable(t *testing.T) {
	f := NewForm("oplata", nil, fixedPrice("2.50"))
	f.Set("id_uslugi", "1")
	f.Set("zuzycie", "40")
	require.Equal(t, "100.00", f.Value("kwota"))

	f.Set("zuzycie", "abc")
	assert.Equal(t, "", f.Value("kwota"))
}

func TestFeeAmountIsReadOnlyForFeesOnly(t *testing.T) {
	fee := NewForm("oplata", nil, noPrice)
	assert.True(t, fee.IsReadOnly("kwota"))

	other := NewForm("konto_bankowe", nil, noPrice)
	assert.False(t, other.IsReadOnly("saldo"))
}

func TestEmployeeAssignmentIsOptional(t *testing.T) {
	f := NewForm("naprawa", nil, noPrice)
	assert.False(t, f.IsRequired("id_pracownika"))
	assert.True(t, f.IsRequired("opis"))
}

func TestFormPlanRouting(t *testing.T) {
	t.Run("new complete fee goes through procedure", func(t *testing.T) {
		f := NewForm("oplata", nil, fixedPrice("2.50"))
		f.Set("id_mieszkania", "7")
		f.Set("id_uslugi", "1")
		f.Set("zuzycie", "40")
		assert.Equal(t, PlanAddFee, f.Plan())

		apt, svc, qty, err := f.AddFeeParams()
		require.NoError(t, err)
		assert.Equal(t, int64(7), apt)
		assert.Equal(t, int64(1), svc)
		assert.Equal(t, 40.0, qty)
	})

	t.Run("incomplete fee is a plain insert", func(t *testing.T) {
		f := NewForm("oplata", nil, fixedPrice("2.50"))
		f.Set("id_mieszkania", "7")
		assert.Equal(t, PlanInsert, f.Plan())
	})

	t.Run("edit is always an update", func(t *testing.T) {
		f := NewForm("oplata", rec(t, `{"id_oplaty":9,"zuzycie":40}`), fixedPrice("2.50"))
		assert.Equal(t, PlanUpdate, f.Plan())
	})

	t.Run("other entities insert", func(t *testing.T) {
		f := NewForm("budynek", nil, noPrice)
		assert.Equal(t, PlanInsert, f.Plan())
	})
}

func TestFormValidateRequiredFields(t *testing.T) {
	f := NewForm("spotkanie_mieszkancow", nil, noPrice)
	err := f.Validate()
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	f.Set("temat", "Zebranie roczne")
	f.Set("miejsce", "Świetlica")
	f.Set("data_spotkania", "2025-09-15")
	assert.NoError(t, f.Validate())
}

func TestFormRecordConversion(t *testing.T) {
	f := NewForm("mieszkanie", nil, noPrice)
	f.Set("numer", "12A")
	f.Set("metraz", "54.5")
	f.Set("liczba_pokoi", "3")
	f.Set("id_budynku", "2")

	out := f.Record()
	v, _ := out.Get("metraz")
	assert.Equal(t, 54.5, v)
	v, _ = out.Get("id_budynku")
	assert.Equal(t, 2.0, v)
	v, _ = out.Get("numer")
	assert.Equal(t, "12A", v)
}

func TestFormKindResolution(t *testing.T) {
	f := NewForm("naprawa", nil, noPrice)
	assert.Equal(t, KindDropdown, f.Kind("status"))
	assert.Equal(t, KindDropdown, f.Kind("id_mieszkania"))
	assert.Equal(t, KindDate, f.Kind("data_zgloszenia"))
	assert.Equal(t, KindText, f.Kind("opis"))

	g := NewForm("uslugi", nil, noPrice)
	assert.Equal(t, KindNumber, g.Kind("cena_za_jednostke"))
}

func TestEditWithoutPrimaryKeyRefused(t *testing.T) {
	f := NewForm("budynek", rec(t, `{"adres":"Akacjowa 1","rok_budowy":1998}`), noPrice)
	_, _, err := f.OriginalKey()
	require.Error(t, err)
	assert.True(t, apperror.IsAmbiguousKey(err))

	g := NewForm("budynek", nil, noPrice)
	_, _, err = g.OriginalKey()
	require.Error(t, err)
	assert.True(t, apperror.IsAmbiguousKey(err))
}
