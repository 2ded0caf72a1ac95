package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"osiedle/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema applies the schema script and guarantees at least one
// administrator account exists. The script only uses IF NOT EXISTS creates,
// so it runs unconditionally and also repairs a partially created schema.
func EnsureSchema(ctx context.Context, txm *TxManager, adminLogin, adminPassword string) error {
	q := txm.GetQuerier(ctx)

	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var admins int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM uzytkownicy").Scan(&admins); err != nil {
		return fmt.Errorf("count administrators: %w", err)
	}
	if admins > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := q.Exec(ctx,
		"INSERT INTO uzytkownicy (login, haslo_hash) VALUES ($1, $2)",
		adminLogin, string(hash),
	); err != nil {
		return fmt.Errorf("seed administrator: %w", err)
	}
	logger.Info(ctx, "seeded default administrator", "login", adminLogin)
	return nil
}
