package schema

// Column describes how one field of a table renders in the data grid.
// Priority columns stay visible on narrow viewports.
type Column struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Priority bool   `json:"priority,omitempty"`
}

// tableColumns drives rendering order for each entity.
var tableColumns = map[string][]Column{
	"budynek": {
		{Key: "id_budynku", Label: "ID"},
		{Key: "adres", Label: "Adres", Priority: true},
		{Key: "liczba_pieter", Label: "Piętra"},
		{Key: "liczba_mieszkan", Label: "Lokale", Priority: true},
		{Key: "rok_budowy", Label: "Rok"},
	},
	"mieszkanie": {
		{Key: "id_mieszkania", Label: "ID"},
		{Key: "numer", Label: "Nr", Priority: true},
		{Key: "metraz", Label: "Metraż m²", Priority: true},
		{Key: "liczba_pokoi", Label: "Pokoje"},
		{Key: "id_budynku", Label: "Budynek ID"},
	},
	"czlonek": {
		{Key: "id_czlonka", Label: "ID"},
		{Key: "imie", Label: "Imię"},
		{Key: "nazwisko", Label: "Nazwisko", Priority: true},
		{Key: "telefon", Label: "Telefon", Priority: true},
		{Key: "email", Label: "Email"},
		{Key: "id_mieszkania", Label: "Mieszkanie ID"},
	},
	"pracownik": {
		{Key: "id_pracownika", Label: "ID"},
		{Key: "imie", Label: "Imię"},
		{Key: "nazwisko", Label: "Nazwisko", Priority: true},
		{Key: "stanowisko", Label: "Stanowisko", Priority: true},
		{Key: "telefon", Label: "Telefon"},
	},
	"naprawa": {
		{Key: "id_naprawy", Label: "ID"},
		{Key: "opis", Label: "Opis", Priority: true},
		{Key: "status", Label: "Status", Priority: true},
		{Key: "data_zgloszenia", Label: "Zgłoszenie"},
		{Key: "id_mieszkania", Label: "Mieszkanie ID"},
	},
	"uslugi": {
		{Key: "id_uslugi", Label: "ID"},
		{Key: "nazwa_uslugi", Label: "Usługa", Priority: true},
		{Key: "jednostka_miary", Label: "Jedn."},
		{Key: "cena_za_jednostke", Label: "Stawka", Priority: true},
	},
	"oplata": {
		{Key: "id_oplaty", Label: "ID"},
		{Key: "zuzycie", Label: "Zużycie"},
		{Key: "kwota", Label: "Suma (PLN)", Priority: true},
		{Key: "data_naliczenia", Label: "Data"},
		{Key: "status_oplaty", Label: "Status", Priority: true},
	},
	"umowa": {
		{Key: "id_umowy", Label: "ID"},
		{Key: "id_mieszkania", Label: "Mieszkanie"},
		{Key: "id_czlonka", Label: "Członek"},
		{Key: "data_zawarcia", Label: "Od", Priority: true},
		{Key: "data_wygasniecia", Label: "Do", Priority: true},
		{Key: "typ_umowy", Label: "Typ", Priority: true},
	},
	"konto_bankowe": {
		{Key: "id_konta", Label: "ID"},
		{Key: "id_czlonka", Label: "Członek"},
		{Key: "numer_konta", Label: "Nr konta", Priority: true},
		{Key: "saldo", Label: "Saldo (PLN)", Priority: true},
	},
	"spotkanie_mieszkancow": {
		{Key: "id_spotkania", Label: "ID"},
		{Key: "temat", Label: "Temat", Priority: true},
		{Key: "miejsce", Label: "Miejsce", Priority: true},
		{Key: "data_spotkania", Label: "Data"},
	},
}

// formFields lists the editable fields per entity, in form order.
var formFields = map[string][]string{
	"budynek":               {"adres", "liczba_pieter", "liczba_mieszkan", "rok_budowy"},
	"mieszkanie":            {"numer", "metraz", "liczba_pokoi", "id_budynku"},
	"czlonek":               {"imie", "nazwisko", "telefon", "email", "pesel", "id_mieszkania"},
	"pracownik":             {"imie", "nazwisko", "stanowisko", "telefon", "email"},
	"naprawa":               {"opis", "status", "data_zgloszenia", "id_mieszkania", "id_pracownika"},
	"uslugi":                {"nazwa_uslugi", "jednostka_miary", "cena_za_jednostke"},
	"oplata":                {"id_mieszkania", "id_uslugi", "zuzycie", "kwota", "status_oplaty"},
	"umowa":                 {"id_mieszkania", "id_czlonka", "data_zawarcia", "data_wygasniecia", "typ_umowy"},
	"konto_bankowe":         {"id_czlonka", "numer_konta", "saldo"},
	"spotkanie_mieszkancow": {"temat", "miejsce", "data_spotkania"},
}

// dropdownFields are foreign-key-like or enum-like fields rendered as
// enumerated choice controls.
var dropdownFields = map[string]struct{}{
	"id_budynku":      {},
	"id_mieszkania":   {},
	"id_pracownika":   {},
	"id_uslugi":       {},
	"id_czlonka":      {},
	"status":          {},
	"status_oplaty":   {},
	"jednostka_miary": {},
	"typ_umowy":       {},
}

// numericFields are fields edited with numeric controls.
var numericFields = map[string]struct{}{
	"kwota":             {},
	"zuzycie":           {},
	"metraz":            {},
	"liczba_pieter":     {},
	"liczba_mieszkan":   {},
	"rok_budowy":        {},
	"liczba_pokoi":      {},
	"cena_za_jednostke": {},
	"saldo":             {},
}

// foreignKeyFields are the id_ fields that remain editable on update;
// every other id_ field is stripped before an UPDATE is issued.
var foreignKeyFields = map[string]struct{}{
	"id_mieszkania": {},
	"id_uslugi":     {},
	"id_pracownika": {},
	"id_budynku":    {},
}

// Fixed enum option lists.
var (
	PaymentStatuses  = []string{"Wystawiono", "Zaplacono", "Oczekuje", "Zaleglosc"}
	RepairStatuses   = []string{"Zgloszona", "W toku", "Wykonana", "Anulowana"}
	MeasurementUnits = []string{"m3", "kWh", "osoba", "m2", "ryczałt"}
	ContractTypes    = []string{"własnościowa", "lokatorska", "najem"}
)

// validTables is the whitelist shared by the server's generic CRUD layer and
// the console's navigation.
var validTables = []string{
	"budynek", "mieszkanie", "czlonek", "pracownik", "naprawa",
	"uslugi", "oplata", "umowa", "konto_bankowe", "spotkanie_mieszkancow",
}
