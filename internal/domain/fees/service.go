// Package fees implements the fee calculation operations: issuing a fee
// from service price and consumption, and bulk price indexation.
package fees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"osiedle/internal/core/apperror"
	"osiedle/internal/infrastructure/storage/postgres"
	"osiedle/pkg/logger"
)

// DefaultIncreasePercent applies when the indexation request names no rate.
const DefaultIncreasePercent = 10.0

// Amount computes a fee: unit price times consumption, rounded to two
// places.
func Amount(unitPrice decimal.Decimal, consumption decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(consumption).Round(2)
}

// IncreaseFactor converts a percentage into a price multiplier.
func IncreaseFactor(percent float64) decimal.Decimal {
	return decimal.NewFromInt(1).Add(decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)))
}

// Service owns fee mutations. Both operations run in a transaction so a
// partially issued fee never becomes visible.
type Service struct {
	txm *postgres.TxManager
}

// NewService creates the fees service.
func NewService(txm *postgres.TxManager) *Service {
	return &Service{txm: txm}
}

// AddResult reports a fee issued through AddFee.
type AddResult struct {
	Amount  decimal.Decimal
	Message string
}

// AddFee issues a fee for an apartment: the amount is computed from the
// service's current unit price, the fee starts in the issued state.
func (s *Service) AddFee(ctx context.Context, apartmentID, serviceID int64, consumption float64) (*AddResult, error) {
	if apartmentID == 0 || serviceID == 0 || consumption == 0 {
		return nil, apperror.NewValidation("Wymagane: id_mieszkania, id_uslugi, zuzycie")
	}

	var result *AddResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := s.txm.GetQuerier(ctx)

		var priceStr string
		err := q.QueryRow(ctx,
			"SELECT cena_za_jednostke::text FROM uslugi WHERE id_uslugi = $1",
			serviceID,
		).Scan(&priceStr)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFound("uslugi", serviceID)
		}
		if err != nil {
			return apperror.NewDatabase(err)
		}

		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("parse unit price %q: %w", priceStr, err))
		}
		amount := Amount(price, decimal.NewFromFloat(consumption))

		_, err = q.Exec(ctx, `
			INSERT INTO oplata (id_mieszkania, id_uslugi, zuzycie, kwota, data_naliczenia, status_oplaty)
			VALUES ($1, $2, $3, $4, $5, 'Wystawiono')`,
			apartmentID, serviceID, consumption, amount, time.Now(),
		)
		if err != nil {
			return apperror.NewDatabase(err)
		}

		result = &AddResult{
			Amount:  amount,
			Message: fmt.Sprintf("Dodano opłatę %s PLN dla mieszkania %d", amount.StringFixed(2), apartmentID),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "fee issued",
		"apartment_id", apartmentID,
		"service_id", serviceID,
		"amount", result.Amount.StringFixed(2),
	)
	return result, nil
}

// IncreaseFees indexes every service's unit price by percent.
func (s *Service) IncreaseFees(ctx context.Context, percent float64) (string, error) {
	if percent == 0 {
		percent = DefaultIncreasePercent
	}
	factor := IncreaseFactor(percent)

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := s.txm.GetQuerier(ctx).Exec(ctx,
			"UPDATE uslugi SET cena_za_jednostke = ROUND(cena_za_jednostke * $1, 2)",
			factor,
		)
		if err != nil {
			return apperror.NewDatabase(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "service prices indexed", "percent", percent)
	return fmt.Sprintf("Ceny usług zwiększone o %g%%", percent), nil
}

// ApartmentTotal returns the fee total of one apartment.
func (s *Service) ApartmentTotal(ctx context.Context, apartmentID int64) (float64, error) {
	var total float64
	err := s.txm.GetQuerier(ctx).QueryRow(ctx,
		"SELECT COALESCE(SUM(kwota), 0) FROM oplata WHERE id_mieszkania = $1",
		apartmentID,
	).Scan(&total)
	if err != nil {
		return 0, apperror.NewDatabase(err)
	}
	return total, nil
}
