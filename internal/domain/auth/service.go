package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"osiedle/internal/core/apperror"
	appctx "osiedle/internal/core/context"
	"osiedle/internal/infrastructure/storage/postgres"
	"osiedle/pkg/logger"
)

// LoginResult is the payload returned to a successful login.
type LoginResult struct {
	User  map[string]any `json:"user"`
	Role  string         `json:"role"`
	Token string         `json:"token"`
}

// Service authenticates administrators and residents.
type Service struct {
	users *postgres.UserRepo
	jwt   *JWTService
}

// NewService creates the auth service.
func NewService(users *postgres.UserRepo, jwt *JWTService) *Service {
	return &Service{users: users, jwt: jwt}
}

// LoginAdmin verifies administrator credentials against the stored bcrypt
// hash.
func (s *Service) LoginAdmin(ctx context.Context, login, password string) (*LoginResult, error) {
	user, err := s.users.AdminByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewUnauthorized("Nieprawidłowe dane logowania")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn(ctx, "failed admin login attempt", "login", login)
		return nil, apperror.NewUnauthorized("Nieprawidłowe dane logowania")
	}

	uc := &appctx.UserContext{
		UserID: user.ID,
		Login:  user.Login,
		Role:   appctx.RoleAdmin,
	}
	token, _, err := s.jwt.GenerateToken(uc)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &LoginResult{
		User:  map[string]any{"id": user.ID, "login": user.Login},
		Role:  appctx.RoleAdmin,
		Token: token,
	}, nil
}

// LoginResident resolves a resident through the member, apartment and
// building join by email and apartment number.
func (s *Service) LoginResident(ctx context.Context, email, number string) (*LoginResult, error) {
	identity, err := s.users.ResidentByEmailAndNumber(ctx, email, number)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, apperror.NewUnauthorized("Nie znaleziono mieszkańca z podanym emailem i numerem mieszkania")
	}

	uc := &appctx.UserContext{
		UserID:      identity.MemberID,
		Login:       identity.Email,
		Role:        appctx.RoleResident,
		ApartmentID: identity.ApartmentID,
	}
	token, _, err := s.jwt.GenerateToken(uc)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &LoginResult{
		User: map[string]any{
			"id":       identity.MemberID,
			"imie":     identity.FirstName,
			"nazwisko": identity.LastName,
			"email":    identity.Email,
			"apt_id":   identity.ApartmentID,
			"apt_num":  identity.ApartmentNumber,
			"adres":    identity.Address,
		},
		Role:  appctx.RoleResident,
		Token: token,
	}, nil
}
