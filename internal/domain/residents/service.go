// Package residents serves the resident portal reads and the repair
// submission.
package residents

import (
	"context"
	"strings"
	"time"

	"osiedle/internal/core/apperror"
	"osiedle/internal/infrastructure/storage/postgres"
	"osiedle/internal/schema"
	"osiedle/pkg/logger"
)

// Service owns the apartment-scoped portal data. Authorization happens at the
// HTTP layer; every query here is already scoped to one apartment id.
type Service struct {
	repo *postgres.TableRepo
	txm  *postgres.TxManager
}

// NewService creates the residents service.
func NewService(repo *postgres.TableRepo, txm *postgres.TxManager) *Service {
	return &Service{repo: repo, txm: txm}
}

// MyData is the resident dashboard payload.
type MyData struct {
	Fees      []*schema.Record `json:"oplaty"`
	Repairs   []*schema.Record `json:"naprawy"`
	Meetings  []*schema.Record `json:"spotkania"`
	Contracts []*schema.Record `json:"umowy"`
	FeesTotal float64          `json:"suma_oplat"`
}

// MyData collects everything the resident dashboard shows in one call.
func (s *Service) MyData(ctx context.Context, apartmentID int64) (*MyData, error) {
	out := &MyData{}
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		out.Fees, err = s.repo.QueryRecords(ctx, `
			SELECT id_oplaty, id_mieszkania, id_uslugi, kwota, data_naliczenia, status_oplaty, zuzycie
			FROM oplata WHERE id_mieszkania = $1 ORDER BY data_naliczenia DESC`,
			apartmentID)
		if err != nil {
			return err
		}
		out.Repairs, err = s.repo.QueryRecords(ctx, `
			SELECT id_naprawy, id_mieszkania, id_pracownika, opis, data_zgloszenia, status
			FROM naprawa WHERE id_mieszkania = $1 ORDER BY data_zgloszenia DESC`,
			apartmentID)
		if err != nil {
			return err
		}
		out.Meetings, err = s.repo.QueryRecords(ctx, `
			SELECT id_spotkania, temat, miejsce, data_spotkania
			FROM spotkanie_mieszkancow ORDER BY data_spotkania DESC`)
		if err != nil {
			return err
		}
		out.Contracts, err = s.repo.QueryRecords(ctx, `
			SELECT id_umowy, id_mieszkania, id_czlonka, data_zawarcia, data_wygasniecia, typ_umowy
			FROM umowa WHERE id_mieszkania = $1`,
			apartmentID)
		if err != nil {
			return err
		}
		return s.txm.GetQuerier(ctx).QueryRow(ctx,
			"SELECT COALESCE(SUM(kwota), 0) FROM oplata WHERE id_mieszkania = $1",
			apartmentID,
		).Scan(&out.FeesTotal)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Payments lists the apartment's fees joined with service details.
func (s *Service) Payments(ctx context.Context, apartmentID int64) ([]*schema.Record, error) {
	return s.repo.QueryRecords(ctx, `
		SELECT o.id_oplaty, u.nazwa_uslugi, o.kwota, o.zuzycie, u.jednostka_miary, o.data_naliczenia, o.status_oplaty
		FROM oplata o
		LEFT JOIN uslugi u ON o.id_uslugi = u.id_uslugi
		WHERE o.id_mieszkania = $1
		ORDER BY o.data_naliczenia DESC`,
		apartmentID)
}

// Repairs lists the apartment's repairs with the assigned employee's name.
func (s *Service) Repairs(ctx context.Context, apartmentID int64) ([]*schema.Record, error) {
	return s.repo.QueryRecords(ctx, `
		SELECT n.id_naprawy, n.opis, n.data_zgloszenia, n.data_wykonania,
		       n.status, p.imie || ' ' || p.nazwisko AS pracownik
		FROM naprawa n
		LEFT JOIN pracownik p ON n.id_pracownika = p.id_pracownika
		WHERE n.id_mieszkania = $1
		ORDER BY n.data_zgloszenia DESC`,
		apartmentID)
}

// Meetings lists upcoming resident meetings, soonest first.
func (s *Service) Meetings(ctx context.Context) ([]*schema.Record, error) {
	return s.repo.QueryRecords(ctx, `
		SELECT id_spotkania, temat, miejsce, data_spotkania
		FROM spotkanie_mieszkancow
		WHERE data_spotkania >= now()
		ORDER BY data_spotkania ASC`)
}

// Consumption aggregates the apartment's usage per service.
func (s *Service) Consumption(ctx context.Context, apartmentID int64) ([]*schema.Record, error) {
	return s.repo.QueryRecords(ctx, `
		SELECT u.nazwa_uslugi, SUM(o.zuzycie) AS zuzycie, u.jednostka_miary, SUM(o.kwota) AS suma_kwot
		FROM oplata o
		JOIN uslugi u ON o.id_uslugi = u.id_uslugi
		WHERE o.id_mieszkania = $1
		GROUP BY u.nazwa_uslugi, u.jednostka_miary
		ORDER BY suma_kwot DESC`,
		apartmentID)
}

// SubmitResult reports an accepted repair request.
type SubmitResult struct {
	RepairID int64  `json:"id_naprawy"`
	Message  string `json:"message"`
}

// SubmitRepair files a new repair for the apartment in the reported state.
func (s *Service) SubmitRepair(ctx context.Context, apartmentID int64, description string) (*SubmitResult, error) {
	if apartmentID == 0 || strings.TrimSpace(description) == "" {
		return nil, apperror.NewValidation("Wymagane: id_mieszkania, opis")
	}

	result := &SubmitResult{Message: "Zgłoszenie przyjęte"}
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.txm.GetQuerier(ctx).QueryRow(ctx, `
			INSERT INTO naprawa (id_mieszkania, opis, status, data_zgloszenia)
			VALUES ($1, $2, 'Zgloszona', $3)
			RETURNING id_naprawy`,
			apartmentID, strings.TrimSpace(description), time.Now(),
		).Scan(&result.RepairID)
	})
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}

	logger.Info(ctx, "repair submitted", "apartment_id", apartmentID, "repair_id", result.RepairID)
	return result, nil
}
