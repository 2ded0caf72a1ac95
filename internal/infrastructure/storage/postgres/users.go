package postgres

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"osiedle/internal/core/apperror"
)

// AdminUser is a row of the administrator account table.
type AdminUser struct {
	ID           int64  `db:"id"`
	Login        string `db:"login"`
	PasswordHash string `db:"haslo_hash"`
}

// ResidentIdentity is the three-table join a resident logs in through:
// member, apartment and building.
type ResidentIdentity struct {
	MemberID        int64  `db:"id_czlonka"`
	FirstName       string `db:"imie"`
	LastName        string `db:"nazwisko"`
	Email           string `db:"email"`
	ApartmentID     int64  `db:"id_mieszkania"`
	ApartmentNumber string `db:"numer"`
	Address         string `db:"adres"`
}

// UserRepo resolves login credentials to identities.
type UserRepo struct {
	txm *TxManager
}

// NewUserRepo creates a UserRepo.
func NewUserRepo(txm *TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

// AdminByLogin fetches an administrator account, nil when unknown.
func (r *UserRepo) AdminByLogin(ctx context.Context, login string) (*AdminUser, error) {
	sql, args, err := builder().
		Select("id", "login", "haslo_hash").
		From("uzytkownicy").
		Where("login = ?", login).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	var user AdminUser
	err = pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &user, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return &user, nil
}

// ResidentByEmailAndNumber resolves a resident by email and apartment
// number, nil when no member matches.
func (r *UserRepo) ResidentByEmailAndNumber(ctx context.Context, email, number string) (*ResidentIdentity, error) {
	sql := `
		SELECT c.id_czlonka, c.imie, c.nazwisko, c.email,
		       m.id_mieszkania, m.numer, b.adres
		FROM czlonek c
		JOIN mieszkanie m ON c.id_mieszkania = m.id_mieszkania
		JOIN budynek b ON m.id_budynku = b.id_budynku
		WHERE LOWER(c.email) = LOWER($1) AND m.numer = $2
	`

	var identity ResidentIdentity
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &identity, sql, email, number)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return &identity, nil
}
