package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"osiedle/internal/core/apperror"
	appctx "osiedle/internal/core/context"
)

// MemberAuditAction is the audited operation type.
type MemberAuditAction string

const (
	MemberAuditInsert MemberAuditAction = "INSERT"
	MemberAuditUpdate MemberAuditAction = "UPDATE"
	MemberAuditDelete MemberAuditAction = "DELETE"
)

// CompressionAlgo marks how the state columns are stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// MemberAuditEntry is one row of the member change log.
type MemberAuditEntry struct {
	ID         uuid.UUID         `db:"id_logu"`
	MemberID   int64             `db:"id_czlonka"`
	Action     MemberAuditAction `db:"operacja"`
	OldState   json.RawMessage   `db:"stare_dane"`
	NewState   json.RawMessage   `db:"nowe_dane"`
	Compressed []byte            `db:"dane_skompresowane"`
	Algo       CompressionAlgo   `db:"kompresja"`
	ChangedBy  string            `db:"uzytkownik"`
	ChangedAt  time.Time         `db:"data_zmiany"`
}

// MemberAuditService records every member create/update/delete. Large state
// payloads compress with zstd before hitting the log table.
type MemberAuditService struct {
	txm               *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewMemberAuditService creates the service.
func NewMemberAuditService(txm *TxManager) (*MemberAuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &MemberAuditService{
		txm:               txm,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// LogChange records one member mutation. Old and new state are full-row
// snapshots; either may be nil for inserts and deletes respectively.
func (s *MemberAuditService) LogChange(ctx context.Context, action MemberAuditAction, memberID int64, oldState, newState map[string]any) error {
	entry := MemberAuditEntry{
		ID:        uuid.New(),
		MemberID:  memberID,
		Action:    action,
		Algo:      CompressionNone,
		ChangedAt: time.Now().UTC(),
	}
	if user := appctx.GetUser(ctx); user != nil {
		entry.ChangedBy = user.Login
	}

	var err error
	if oldState != nil {
		if entry.OldState, err = json.Marshal(oldState); err != nil {
			return fmt.Errorf("marshal old state: %w", err)
		}
	}
	if newState != nil {
		if entry.NewState, err = json.Marshal(newState); err != nil {
			return fmt.Errorf("marshal new state: %w", err)
		}
	}

	if len(entry.OldState)+len(entry.NewState) > s.compressThreshold {
		combined, err := json.Marshal(map[string]json.RawMessage{
			"old": entry.OldState,
			"new": entry.NewState,
		})
		if err != nil {
			return fmt.Errorf("marshal combined state: %w", err)
		}
		entry.Compressed = s.encoder.EncodeAll(combined, nil)
		entry.OldState = nil
		entry.NewState = nil
		entry.Algo = CompressionZstd
	}

	sql, args, err := builder().
		Insert("log_zmian_czlonka").
		SetMap(StructToMap(entry)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if _, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// Latest returns the most recent entries, newest first, with compressed
// payloads unpacked.
func (s *MemberAuditService) Latest(ctx context.Context, limit int) ([]MemberAuditEntry, error) {
	sql := `
		SELECT id_logu, id_czlonka, operacja, stare_dane, nowe_dane,
		       dane_skompresowane, kompresja, uzytkownik, data_zmiany
		FROM log_zmian_czlonka
		ORDER BY data_zmiany DESC
		LIMIT $1
	`
	rows, err := s.txm.GetQuerier(ctx).Query(ctx, sql, limit)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	defer rows.Close()

	var entries []MemberAuditEntry
	for rows.Next() {
		var e MemberAuditEntry
		if err := rows.Scan(
			&e.ID, &e.MemberID, &e.Action, &e.OldState, &e.NewState,
			&e.Compressed, &e.Algo, &e.ChangedBy, &e.ChangedAt,
		); err != nil {
			return nil, apperror.NewDatabase(err)
		}
		if e.Algo == CompressionZstd && len(e.Compressed) > 0 {
			raw, err := s.decoder.DecodeAll(e.Compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit entry: %w", err)
			}
			var combined struct {
				Old json.RawMessage `json:"old"`
				New json.RawMessage `json:"new"`
			}
			if err := json.Unmarshal(raw, &combined); err != nil {
				return nil, fmt.Errorf("unpack audit entry: %w", err)
			}
			e.OldState = combined.Old
			e.NewState = combined.New
			e.Compressed = nil
			e.Algo = CompressionNone
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
