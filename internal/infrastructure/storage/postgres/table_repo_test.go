package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"osiedle/internal/core/apperror"
	"osiedle/internal/schema"
)

func wireRecord(t *testing.T, raw string) *schema.Record {
	t.Helper()
	var r schema.Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return &r
}

func TestBuildListQuery(t *testing.T) {
	sql, args, err := buildListQuery("budynek")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT * FROM budynek ORDER BY id_budynku"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuildSearchQuery(t *testing.T) {
	sql, args, err := buildSearchQuery("uslugi", "woda")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT * FROM uslugi WHERE (id_uslugi::text ILIKE $1 OR nazwa_uslugi::text ILIKE $2 OR jednostka_miary::text ILIKE $3 OR cena_za_jednostke::text ILIKE $4) ORDER BY id_uslugi"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 4 {
		t.Fatalf("args = %v, want 4 patterns", args)
	}
	for _, a := range args {
		if a != "%woda%" {
			t.Errorf("arg = %v, want %%woda%%", a)
		}
	}
}

func TestInsertValuesConvertsAndDropsDates(t *testing.T) {
	rec := wireRecord(t, `{"temat":"Zebranie","miejsce":"Świetlica","data_spotkania":"2025-09-15T00:00:00Z"}`)
	values, err := insertValues(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ts, ok := values["data_spotkania"].(time.Time)
	if !ok {
		t.Fatalf("data_spotkania = %T, want time.Time", values["data_spotkania"])
	}
	if got := ts.Format("2006-01-02"); got != "2025-09-15" {
		t.Errorf("date = %s, want 2025-09-15", got)
	}

	// Nil date fields disappear; other nil fields stay as explicit NULLs.
	rec = wireRecord(t, `{"opis":"kran","data_zgloszenia":null,"id_pracownika":null}`)
	values, err = insertValues(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := values["data_zgloszenia"]; ok {
		t.Error("nil date field should be dropped")
	}
	if v, ok := values["id_pracownika"]; !ok || v != nil {
		t.Errorf("id_pracownika = %v (present=%v), want explicit nil", v, ok)
	}
}

func TestInsertValuesRejectsBadDate(t *testing.T) {
	rec := wireRecord(t, `{"data_zawarcia":"15-03-2024"}`)
	if _, err := insertValues(rec); err == nil {
		t.Fatal("expected validation error for malformed date")
	} else if !apperror.IsValidation(err) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestUpdateValuesStripsPrimaryKeysButKeepsForeignKeys(t *testing.T) {
	rec := wireRecord(t, `{"id_oplaty":5,"id_mieszkania":7,"id_uslugi":2,"zuzycie":12.5,"kwota":31.25,"status_oplaty":"Zaplacono"}`)
	values, err := updateValues(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := values["id_oplaty"]; ok {
		t.Error("primary key must not appear in SET clause")
	}
	for _, fk := range []string{"id_mieszkania", "id_uslugi"} {
		if _, ok := values[fk]; !ok {
			t.Errorf("foreign key %s should survive update", fk)
		}
	}
	if values["zuzycie"] != 12.5 {
		t.Errorf("zuzycie = %v, want 12.5", values["zuzycie"])
	}
}

func TestBuildUpdateQuery(t *testing.T) {
	values := map[string]any{"adres": "Nowa 1", "liczba_pieter": 5.0}
	sql, args, err := buildUpdateQuery("budynek", "id_budynku", "3", values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "UPDATE budynek SET adres = $1, liczba_pieter = $2 WHERE id_budynku = $3"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 3 || args[2] != "3" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildDeleteQuery(t *testing.T) {
	sql, args, err := buildDeleteQuery("czlonek", "id_czlonka", "9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "DELETE FROM czlonek WHERE id_czlonka = $1"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "9" {
		t.Errorf("args = %v", args)
	}
}

func TestValidateTable(t *testing.T) {
	if err := validateTable("budynek"); err != nil {
		t.Errorf("budynek should be valid: %v", err)
	}
	err := validateTable("uzytkownicy; DROP TABLE budynek")
	if err == nil {
		t.Fatal("expected rejection of unknown table")
	}
	if !apperror.IsValidation(err) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestValidateIDField(t *testing.T) {
	if err := validateIDField("naprawa", "id_naprawy"); err != nil {
		t.Errorf("declared column should pass: %v", err)
	}
	if err := validateIDField("naprawa", "id_pracownika"); err != nil {
		t.Errorf("form-only column should pass: %v", err)
	}
	if err := validateIDField("naprawa", "1=1; --"); err == nil {
		t.Error("expected rejection of unknown column")
	}
}

func TestSerializeValue(t *testing.T) {
	ts := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	if got := serializeValue(ts); got != "2025-03-15 10:30:00" {
		t.Errorf("timestamp = %v", got)
	}
	if got := serializeValue(int64(7)); got != float64(7) {
		t.Errorf("int64 = %v, want float64", got)
	}
	if got := serializeValue(nil); got != nil {
		t.Errorf("nil = %v", got)
	}
	if got := serializeValue([]byte("abc")); got != "abc" {
		t.Errorf("bytes = %v", got)
	}
}
