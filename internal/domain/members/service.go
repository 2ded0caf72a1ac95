// Package members wraps member mutations with the change log the original
// database kept through a trigger.
package members

import (
	"context"

	"osiedle/internal/core/apperror"
	"osiedle/internal/infrastructure/storage/postgres"
	"osiedle/internal/schema"
	"osiedle/pkg/logger"
)

const memberTable = "czlonek"

// Service mutates the member table and writes an audit row in the same
// transaction, so the log never disagrees with the data.
type Service struct {
	repo  *postgres.TableRepo
	audit *postgres.MemberAuditService
	txm   *postgres.TxManager
}

// NewService creates the members service.
func NewService(repo *postgres.TableRepo, audit *postgres.MemberAuditService, txm *postgres.TxManager) *Service {
	return &Service{repo: repo, audit: audit, txm: txm}
}

// Create inserts a member and logs the new state.
func (s *Service) Create(ctx context.Context, record *schema.Record) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		id, err := s.repo.InsertReturning(ctx, memberTable, record)
		if err != nil {
			return err
		}
		created, err := s.repo.Get(ctx, memberTable, "id_czlonka", id)
		if err != nil {
			return err
		}
		if err := s.audit.LogChange(ctx, postgres.MemberAuditInsert, id, nil, snapshot(created)); err != nil {
			return err
		}
		logger.Info(ctx, "member created", "member_id", id)
		return nil
	})
}

// Update modifies the member addressed by idField = idValue and logs the
// old and new states.
func (s *Service) Update(ctx context.Context, idField string, idValue any, record *schema.Record) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := s.repo.Get(ctx, memberTable, idField, idValue)
		if err != nil {
			return err
		}
		if old == nil {
			return apperror.NewNotFound(memberTable, idValue)
		}
		if err := s.repo.Update(ctx, memberTable, idField, idValue, record); err != nil {
			return err
		}
		updated, err := s.repo.Get(ctx, memberTable, idField, idValue)
		if err != nil {
			return err
		}
		memberID := memberIDOf(old)
		if err := s.audit.LogChange(ctx, postgres.MemberAuditUpdate, memberID, snapshot(old), snapshot(updated)); err != nil {
			return err
		}
		logger.Info(ctx, "member updated", "member_id", memberID)
		return nil
	})
}

// Delete removes the member addressed by idField = idValue and logs the
// last known state.
func (s *Service) Delete(ctx context.Context, idField string, idValue any) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := s.repo.Get(ctx, memberTable, idField, idValue)
		if err != nil {
			return err
		}
		if old == nil {
			return apperror.NewNotFound(memberTable, idValue)
		}
		if err := s.repo.Delete(ctx, memberTable, idField, idValue); err != nil {
			return err
		}
		memberID := memberIDOf(old)
		if err := s.audit.LogChange(ctx, postgres.MemberAuditDelete, memberID, snapshot(old), nil); err != nil {
			return err
		}
		logger.Info(ctx, "member deleted", "member_id", memberID)
		return nil
	})
}

// AuditLogs returns the latest member change entries, newest first.
func (s *Service) AuditLogs(ctx context.Context, limit int) ([]postgres.MemberAuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.audit.Latest(ctx, limit)
}

// snapshot flattens a record into the map shape the audit log stores.
func snapshot(record *schema.Record) map[string]any {
	if record == nil {
		return nil
	}
	out := make(map[string]any, record.Len())
	for _, key := range record.Keys() {
		v, _ := record.Get(key)
		out[key] = v
	}
	return out
}

func memberIDOf(record *schema.Record) int64 {
	if record == nil {
		return 0
	}
	if n, ok := record.NumberValue("id_czlonka"); ok {
		return int64(n)
	}
	return 0
}
