package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"osiedle/internal/core/apperror"
	"osiedle/internal/schema"
)

// TableRepo executes the generic whitelisted CRUD every entity tab runs on.
// The table and column names that reach SQL text are validated against the
// static metadata profile, never taken from the request verbatim.
type TableRepo struct {
	txm *TxManager
}

// NewTableRepo creates a TableRepo.
func NewTableRepo(txm *TxManager) *TableRepo {
	return &TableRepo{txm: txm}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// validateTable guards dynamic SQL against unknown entity names.
func validateTable(table string) error {
	if !schema.IsValidTable(table) {
		return apperror.NewValidation("Nieprawidłowa tabela")
	}
	return nil
}

// validateIDField guards the WHERE column of update/delete.
func validateIDField(table, field string) error {
	for _, col := range schema.ColumnKeys(table) {
		if col == field {
			return nil
		}
	}
	for _, col := range schema.FormFields(table, nil) {
		if col == field {
			return nil
		}
	}
	return apperror.NewValidation("Nieprawidłowa nazwa kolumny")
}

func buildListQuery(table string) (string, []any, error) {
	return builder().
		Select("*").
		From(table).
		OrderBy(schema.PrimaryKeyColumn(table)).
		ToSql()
}

func buildSearchQuery(table, term string) (string, []any, error) {
	pattern := "%" + term + "%"
	or := squirrel.Or{}
	for _, col := range schema.ColumnKeys(table) {
		or = append(or, squirrel.Expr(col+"::text ILIKE ?", pattern))
	}
	return builder().
		Select("*").
		From(table).
		Where(or).
		OrderBy(schema.PrimaryKeyColumn(table)).
		ToSql()
}

func buildInsertQuery(table string, values map[string]any) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, apperror.NewValidation("Brak danych do zapisania")
	}
	return builder().
		Insert(table).
		SetMap(values).
		ToSql()
}

func buildUpdateQuery(table, idField string, idValue any, values map[string]any) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, apperror.NewValidation("Brak danych do zapisania")
	}
	return builder().
		Update(table).
		SetMap(values).
		Where(squirrel.Eq{idField: idValue}).
		ToSql()
}

func buildDeleteQuery(table, idField string, idValue any) (string, []any, error) {
	return builder().
		Delete(table).
		Where(squirrel.Eq{idField: idValue}).
		ToSql()
}

// insertValues converts a wire record into column values for INSERT. Date
// strings parse into timestamps; nil date fields are dropped entirely so the
// database default (or NULL) applies without a cast error.
func insertValues(record *schema.Record) (map[string]any, error) {
	out := make(map[string]any, record.Len())
	for _, key := range record.Keys() {
		raw, _ := record.Get(key)
		v, err := convertDateValue(key, raw)
		if err != nil {
			return nil, err
		}
		if v == nil && schema.IsDateField(key) {
			continue
		}
		out[key] = v
	}
	return out, nil
}

// updateValues is insertValues plus the primary-key strip: id_ columns never
// change on update, except the editable foreign keys.
func updateValues(record *schema.Record) (map[string]any, error) {
	out := make(map[string]any, record.Len())
	for _, key := range record.Keys() {
		if strings.HasPrefix(strings.ToLower(key), "id_") && !schema.IsForeignKeyField(key) {
			continue
		}
		raw, _ := record.Get(key)
		v, err := convertDateValue(key, raw)
		if err != nil {
			return nil, err
		}
		if v == nil && schema.IsDateField(key) {
			continue
		}
		out[key] = v
	}
	return out, nil
}

func convertDateValue(key string, value any) (any, error) {
	if value == nil || value == "" {
		return nil, nil
	}
	s, isString := value.(string)
	if !schema.IsDateField(key) || !isString || !strings.Contains(s, "-") {
		return value, nil
	}
	t, err := time.Parse("2006-01-02", schema.NormalizeDateForInput(s))
	if err != nil {
		return nil, apperror.NewValidation("Nieprawidłowy format daty").WithDetail("field", key)
	}
	return t, nil
}

// List returns all rows ordered by the primary key.
func (r *TableRepo) List(ctx context.Context, table string) ([]*schema.Record, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	sql, args, err := buildListQuery(table)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build list: %w", err))
	}
	return r.queryRecords(ctx, sql, args)
}

// Search returns rows where any column's text rendering contains term.
func (r *TableRepo) Search(ctx context.Context, table, term string) ([]*schema.Record, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	sql, args, err := buildSearchQuery(table, term)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build search: %w", err))
	}
	return r.queryRecords(ctx, sql, args)
}

// Insert creates a row from the wire record.
func (r *TableRepo) Insert(ctx context.Context, table string, record *schema.Record) error {
	if err := validateTable(table); err != nil {
		return err
	}
	values, err := insertValues(record)
	if err != nil {
		return err
	}
	sql, args, err := buildInsertQuery(table, values)
	if err != nil {
		return err
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// InsertReturning creates a row and returns the generated primary key.
func (r *TableRepo) InsertReturning(ctx context.Context, table string, record *schema.Record) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}
	values, err := insertValues(record)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, apperror.NewValidation("Brak danych do zapisania")
	}
	sql, args, err := builder().
		Insert(table).
		SetMap(values).
		Suffix("RETURNING " + schema.PrimaryKeyColumn(table)).
		ToSql()
	if err != nil {
		return 0, apperror.NewInternal(fmt.Errorf("build insert: %w", err))
	}
	var id int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, apperror.NewDatabase(err)
	}
	return id, nil
}

// Update modifies the row addressed by idField = idValue.
func (r *TableRepo) Update(ctx context.Context, table, idField string, idValue any, record *schema.Record) error {
	if err := validateTable(table); err != nil {
		return err
	}
	if err := validateIDField(table, idField); err != nil {
		return err
	}
	values, err := updateValues(record)
	if err != nil {
		return err
	}
	sql, args, err := buildUpdateQuery(table, idField, idValue, values)
	if err != nil {
		return err
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(table, idValue)
	}
	return nil
}

// Delete removes the row addressed by idField = idValue.
func (r *TableRepo) Delete(ctx context.Context, table, idField string, idValue any) error {
	if err := validateTable(table); err != nil {
		return err
	}
	if err := validateIDField(table, idField); err != nil {
		return err
	}
	sql, args, err := buildDeleteQuery(table, idField, idValue)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build delete: %w", err))
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(table, idValue)
	}
	return nil
}

// Get fetches one row as a record, nil when absent.
func (r *TableRepo) Get(ctx context.Context, table, idField string, idValue any) (*schema.Record, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	if err := validateIDField(table, idField); err != nil {
		return nil, err
	}
	sql, args, err := builder().
		Select("*").
		From(table).
		Where(squirrel.Eq{idField: idValue}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build get: %w", err))
	}
	records, err := r.queryRecords(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// QueryRecords runs an arbitrary read and shapes the rows as ordered
// records. View and report queries share it.
func (r *TableRepo) QueryRecords(ctx context.Context, sql string, args ...any) ([]*schema.Record, error) {
	return r.queryRecords(ctx, sql, args)
}

func (r *TableRepo) queryRecords(ctx context.Context, sql string, args []any) ([]*schema.Record, error) {
	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// scanRecords preserves the column order of the result set; clients resolve
// the primary key from it.
func scanRecords(rows pgx.Rows) ([]*schema.Record, error) {
	fields := rows.FieldDescriptions()
	records := make([]*schema.Record, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, apperror.NewDatabase(err)
		}
		rec := schema.NewRecord()
		for i, fd := range fields {
			rec.Set(string(fd.Name), serializeValue(values[i]))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return records, nil
}

// serializeValue collapses driver types into the wire value set: string,
// float64, bool or nil. Timestamps render as "YYYY-MM-DD HH:MM:SS".
func serializeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case float64, string, bool:
		return t
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
