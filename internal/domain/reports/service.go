// Package reports serves the administrative join views and the aggregate
// summary report.
package reports

import (
	"context"
	"fmt"

	"osiedle/internal/core/apperror"
	"osiedle/internal/infrastructure/storage/postgres"
	"osiedle/internal/schema"
)

// viewQueries maps each view name to its SQL. The original database exposed
// these as stored views; here they are plain reads so the schema stays in one
// file.
var viewQueries = map[string]string{
	"mieszkania-info": `
		SELECT m.id_mieszkania, m.numer, m.metraz, m.liczba_pokoi, b.adres, b.rok_budowy
		FROM mieszkanie m
		JOIN budynek b ON m.id_budynku = b.id_budynku
		ORDER BY b.adres, m.numer`,

	"oplaty-summary": `
		SELECT
			m.id_mieszkania,
			m.numer,
			b.adres,
			COUNT(o.id_oplaty) AS liczba_oplat,
			COALESCE(SUM(o.kwota), 0) AS suma_oplat,
			COALESCE(SUM(CASE WHEN o.status_oplaty IN ('nieoplacone', 'zaleglosc') THEN o.kwota ELSE 0 END), 0) AS zaleglosci
		FROM mieszkanie m
		JOIN budynek b ON m.id_budynku = b.id_budynku
		LEFT JOIN oplata o ON o.id_mieszkania = m.id_mieszkania
		GROUP BY m.id_mieszkania, m.numer, b.adres
		ORDER BY suma_oplat DESC`,

	"naprawy-status": `
		SELECT
			n.id_naprawy,
			n.opis,
			n.status,
			CASE n.status
				WHEN 'Zgloszona' THEN 'Oczekuje na przydzielenie'
				WHEN 'W toku' THEN 'Naprawa w toku'
				WHEN 'Wykonana' THEN 'Naprawa zakończona'
				WHEN 'Anulowana' THEN 'Naprawa anulowana'
				ELSE 'Status nieznany'
			END AS opis_statusu,
			n.data_zgloszenia,
			n.data_wykonania,
			m.numer,
			b.adres
		FROM naprawa n
		LEFT JOIN mieszkanie m ON n.id_mieszkania = m.id_mieszkania
		LEFT JOIN budynek b ON m.id_budynku = b.id_budynku
		ORDER BY n.data_zgloszenia DESC`,

	"pracownicy-naprawy": `
		SELECT
			p.id_pracownika,
			p.imie,
			p.nazwisko,
			p.stanowisko,
			n.id_naprawy,
			n.opis,
			n.status
		FROM naprawa n
		RIGHT JOIN pracownik p ON n.id_pracownika = p.id_pracownika
		ORDER BY p.nazwisko, p.imie`,

	"oplaty-uslugi-full": `
		SELECT
			o.id_oplaty,
			o.kwota,
			o.status_oplaty,
			u.nazwa_uslugi,
			u.cena_za_jednostke
		FROM oplata o
		FULL OUTER JOIN uslugi u ON o.id_uslugi = u.id_uslugi
		ORDER BY o.id_oplaty NULLS LAST`,

	"budynki-uslugi-cross": `
		SELECT b.id_budynku, b.adres, u.nazwa_uslugi, u.cena_za_jednostke
		FROM budynek b
		CROSS JOIN uslugi u
		ORDER BY b.adres, u.nazwa_uslugi`,

	"pracownicy-koledzy": `
		SELECT
			p1.imie || ' ' || p1.nazwisko AS pracownik,
			p2.imie || ' ' || p2.nazwisko AS kolega,
			p1.stanowisko
		FROM pracownik p1
		JOIN pracownik p2
			ON p1.stanowisko = p2.stanowisko
			AND p1.id_pracownika < p2.id_pracownika
		ORDER BY p1.stanowisko, pracownik`,

	"czlonkowie-pelne-info": `
		SELECT
			c.id_czlonka,
			c.imie,
			c.nazwisko,
			c.email,
			c.telefon,
			m.numer,
			b.adres
		FROM czlonek c
		JOIN mieszkanie m ON c.id_mieszkania = m.id_mieszkania
		JOIN budynek b ON m.id_budynku = b.id_budynku
		ORDER BY c.nazwisko, c.imie`,
}

// ViewNames returns the view whitelist in no particular order.
func ViewNames() []string {
	names := make([]string, 0, len(viewQueries))
	for name := range viewQueries {
		names = append(names, name)
	}
	return names
}

// countableTables are the entities the summary's per-table stats cover.
var countableTables = []string{
	"budynek", "mieszkanie", "czlonek", "pracownik", "naprawa", "oplata", "umowa",
}

// Service executes report reads. Everything is read-only.
type Service struct {
	repo *postgres.TableRepo
	txm  *postgres.TxManager
}

// NewService creates the reports service.
func NewService(repo *postgres.TableRepo, txm *postgres.TxManager) *Service {
	return &Service{repo: repo, txm: txm}
}

// View runs one of the named join views.
func (s *Service) View(ctx context.Context, name string) ([]*schema.Record, error) {
	query, ok := viewQueries[name]
	if !ok {
		return nil, apperror.NewNotFound("widok", name)
	}
	return s.repo.QueryRecords(ctx, query)
}

// ServiceSummary is one row of the per-service revenue rollup.
type ServiceSummary struct {
	ServiceName     string  `json:"nazwa_uslugi"`
	MeasurementUnit string  `json:"jednostka_miary"`
	TotalUsage      float64 `json:"total_zuzycie"`
	TotalAmount     float64 `json:"total_kwota"`
}

// UnpaidDetail is one outstanding fee in the arrears listing.
type UnpaidDetail struct {
	Address         string  `json:"adres"`
	ApartmentNumber string  `json:"numer_mieszkania"`
	ServiceName     string  `json:"nazwa_uslugi"`
	Amount          float64 `json:"kwota"`
	PaymentDate     *string `json:"data_platnosci"`
}

// Summary aggregates the whole dashboard report.
type Summary struct {
	ServicesSummary   []ServiceSummary `json:"services_summary"`
	TotalRevenue      float64          `json:"total_revenue"`
	MembersCount      int64            `json:"members_count"`
	ArrearsCount      int64            `json:"arrears_count"`
	UnpaidDetails     []UnpaidDetail   `json:"unpaid_details"`
	TableStats        map[string]int64 `json:"table_stats"`
	ApartmentsSummary []*schema.Record `json:"apartments_summary"`
	RepairsStatus     []*schema.Record `json:"repairs_status"`
}

// BuildSummary collects every aggregate of the dashboard report in one pass.
func (s *Service) BuildSummary(ctx context.Context) (*Summary, error) {
	out := &Summary{
		ServicesSummary: make([]ServiceSummary, 0),
		UnpaidDetails:   make([]UnpaidDetail, 0),
		TableStats:      make(map[string]int64, len(countableTables)),
	}

	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		q := s.txm.GetQuerier(ctx)

		rows, err := q.Query(ctx, `
			SELECT
				u.nazwa_uslugi,
				COALESCE(u.jednostka_miary, 'szt'),
				COALESCE(SUM(o.zuzycie), 0),
				COALESCE(SUM(o.kwota), 0)
			FROM uslugi u
			LEFT JOIN oplata o ON u.id_uslugi = o.id_uslugi
			GROUP BY u.id_uslugi, u.nazwa_uslugi, u.jednostka_miary
			ORDER BY 4 DESC`)
		if err != nil {
			return apperror.NewDatabase(err)
		}
		for rows.Next() {
			var row ServiceSummary
			if err := rows.Scan(&row.ServiceName, &row.MeasurementUnit, &row.TotalUsage, &row.TotalAmount); err != nil {
				rows.Close()
				return apperror.NewDatabase(err)
			}
			out.ServicesSummary = append(out.ServicesSummary, row)
			out.TotalRevenue += row.TotalAmount
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return apperror.NewDatabase(err)
		}

		if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM czlonek").Scan(&out.MembersCount); err != nil {
			return apperror.NewDatabase(err)
		}
		err = q.QueryRow(ctx,
			"SELECT COUNT(*) FROM oplata WHERE status_oplaty IN ('nieoplacone', 'zaleglosc')",
		).Scan(&out.ArrearsCount)
		if err != nil {
			return apperror.NewDatabase(err)
		}

		rows, err = q.Query(ctx, `
			SELECT
				b.adres,
				m.numer,
				COALESCE(u.nazwa_uslugi, 'Inne'),
				COALESCE(o.kwota, 0),
				to_char(o.data_naliczenia, 'YYYY-MM-DD')
			FROM oplata o
			JOIN mieszkanie m ON o.id_mieszkania = m.id_mieszkania
			JOIN budynek b ON m.id_budynku = b.id_budynku
			LEFT JOIN uslugi u ON o.id_uslugi = u.id_uslugi
			WHERE o.status_oplaty IN ('nieoplacone', 'zaleglosc')
			ORDER BY o.kwota DESC
			LIMIT 50`)
		if err != nil {
			return apperror.NewDatabase(err)
		}
		for rows.Next() {
			var row UnpaidDetail
			if err := rows.Scan(&row.Address, &row.ApartmentNumber, &row.ServiceName, &row.Amount, &row.PaymentDate); err != nil {
				rows.Close()
				return apperror.NewDatabase(err)
			}
			out.UnpaidDetails = append(out.UnpaidDetails, row)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return apperror.NewDatabase(err)
		}

		for _, table := range countableTables {
			count, err := s.CountRecords(ctx, table)
			if err != nil {
				return err
			}
			out.TableStats[table] = count
		}

		out.ApartmentsSummary, err = s.repo.QueryRecords(ctx,
			"SELECT * FROM ("+viewQueries["oplaty-summary"]+") t LIMIT 10")
		if err != nil {
			return err
		}
		out.RepairsStatus, err = s.View(ctx, "naprawy-status")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountRecords counts the rows of one whitelisted table.
func (s *Service) CountRecords(ctx context.Context, table string) (int64, error) {
	if !schema.IsValidTable(table) {
		return 0, apperror.NewValidation("Nieprawidłowa tabela")
	}
	var count int64
	err := s.txm.GetQuerier(ctx).QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabase(err)
	}
	return count, nil
}

// MembersOfBuilding renders the building's members as one comma-joined line.
func (s *Service) MembersOfBuilding(ctx context.Context, buildingID int64) (string, error) {
	var members *string
	err := s.txm.GetQuerier(ctx).QueryRow(ctx, `
		SELECT string_agg(c.imie || ' ' || c.nazwisko, ', ' ORDER BY c.nazwisko, c.imie)
		FROM czlonek c
		JOIN mieszkanie m ON c.id_mieszkania = m.id_mieszkania
		WHERE m.id_budynku = $1`,
		buildingID,
	).Scan(&members)
	if err != nil {
		return "", apperror.NewDatabase(err)
	}
	if members == nil || *members == "" {
		return "Brak członków", nil
	}
	return *members, nil
}

// WorkerRepairs counts the repairs assigned to one employee.
func (s *Service) WorkerRepairs(ctx context.Context, workerID int64) (int64, error) {
	var count int64
	err := s.txm.GetQuerier(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM naprawa WHERE id_pracownika = $1",
		workerID,
	).Scan(&count)
	if err != nil {
		return 0, apperror.NewDatabase(err)
	}
	return count, nil
}
