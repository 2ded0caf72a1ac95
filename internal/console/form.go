package console

import (
	"strconv"

	"github.com/shopspring/decimal"

	"osiedle/internal/core/apperror"
	"osiedle/internal/schema"
)

// FieldKind selects the input control for a form field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindDate
	KindDropdown
)

// SubmitPlan routes a form submission to the right backend operation.
type SubmitPlan int

const (
	// PlanInsert is a plain create.
	PlanInsert SubmitPlan = iota
	// PlanUpdate is a plain update addressed by primary key.
	PlanUpdate
	// PlanAddFee routes a new, fully specified fee through the server-side
	// procedure; the server owns the persisted amount.
	PlanAddFee
)

// UnitPriceFunc resolves a service id (as entered in the form) to its unit
// price.
type UnitPriceFunc func(serviceID string) (decimal.Decimal, bool)

// Form is the editable draft for one create or update. All values are held
// as strings the way input controls deliver them; conversion happens at
// submit time.
type Form struct {
	table     string
	isNew     bool
	original  *schema.Record
	fields    []string
	values    map[string]string
	unitPrice UnitPriceFunc
}

// NewForm creates a draft. A nil record means "add"; otherwise the draft is
// seeded from the record with date fields normalized for calendar inputs.
func NewForm(table string, record *schema.Record, unitPrice UnitPriceFunc) *Form {
	f := &Form{
		table:     table,
		isNew:     record == nil,
		original:  record,
		fields:    schema.FormFields(table, record),
		values:    make(map[string]string),
		unitPrice: unitPrice,
	}
	if record != nil {
		for _, key := range f.fields {
			if schema.IsDateField(key) {
				raw, _ := record.Get(key)
				f.values[key] = schema.NormalizeDateForInput(raw)
				continue
			}
			f.values[key] = record.StringValue(key)
		}
	}
	return f
}

// Fields returns the field keys in form order.
func (f *Form) Fields() []string {
	out := make([]string, len(f.fields))
	copy(out, f.fields)
	return out
}

// IsNew reports whether the form creates a record.
func (f *Form) IsNew() bool {
	return f.isNew
}

// Value returns the current draft value of a field.
func (f *Form) Value(key string) string {
	return f.values[key]
}

// Kind resolves the input control for a field. Dropdown membership wins over
// the date and numeric conventions.
func (f *Form) Kind(key string) FieldKind {
	switch {
	case schema.IsDropdownField(key):
		return KindDropdown
	case schema.IsDateField(key):
		return KindDate
	case schema.IsNumericField(key):
		return KindNumber
	default:
		return KindText
	}
}

// IsReadOnly reports whether the field cannot be edited directly. The fee
// amount is derived from service price and consumption, never typed.
func (f *Form) IsReadOnly(key string) bool {
	return f.table == "oplata" && key == "kwota"
}

// IsRequired reports whether the field must be filled before submit. The
// employee assignment dropdown is the one optional foreign key.
func (f *Form) IsRequired(key string) bool {
	if key == "id_pracownika" {
		return false
	}
	return !f.IsReadOnly(key)
}

// Set writes a field value. Editing the consumption or the service of a fee
// recomputes the amount from unit price times consumption, rounded to two
// places, overwriting whatever was there.
func (f *Form) Set(key, value string) {
	f.values[key] = value
	if f.table == "oplata" && (key == "zuzycie" || key == "id_uslugi") {
		f.recomputeAmount()
	}
}

func (f *Form) recomputeAmount() {
	price, ok := f.unitPrice(f.values["id_uslugi"])
	if !ok {
		f.values["kwota"] = ""
		return
	}
	qty, err := decimal.NewFromString(f.values["zuzycie"])
	if err != nil {
		f.values["kwota"] = ""
		return
	}
	f.values["kwota"] = price.Mul(qty).Round(2).StringFixed(2)
}

// Plan decides how the submission reaches the backend. A new fee with
// apartment, service and consumption all present goes through the add-fee
// procedure; everything else is a plain insert or update.
func (f *Form) Plan() SubmitPlan {
	if !f.isNew {
		return PlanUpdate
	}
	if f.table == "oplata" &&
		f.values["id_mieszkania"] != "" &&
		f.values["id_uslugi"] != "" &&
		f.values["zuzycie"] != "" {
		return PlanAddFee
	}
	return PlanInsert
}

// Validate checks that every required field carries a value.
func (f *Form) Validate() error {
	for _, key := range f.fields {
		if f.IsRequired(key) && f.values[key] == "" {
			return apperror.NewValidation("Pole " + key + " jest wymagane").
				WithDetail("field", key)
		}
	}
	return nil
}

// Record converts the draft into the wire record. Numeric fields parse to
// numbers, empty values become nil so the server can drop or null them.
func (f *Form) Record() *schema.Record {
	rec := schema.NewRecord()
	for _, key := range f.fields {
		v := f.values[key]
		switch {
		case v == "":
			rec.Set(key, nil)
		case schema.IsNumericField(key) || schema.IsForeignKeyField(key):
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				rec.Set(key, n)
			} else {
				rec.Set(key, v)
			}
		default:
			rec.Set(key, v)
		}
	}
	return rec
}

// AddFeeParams extracts the procedure arguments from a fee draft.
func (f *Form) AddFeeParams() (apartmentID, serviceID int64, consumption float64, err error) {
	apartmentID, err = strconv.ParseInt(f.values["id_mieszkania"], 10, 64)
	if err != nil {
		return 0, 0, 0, apperror.NewValidation("Nieprawidłowe mieszkanie")
	}
	serviceID, err = strconv.ParseInt(f.values["id_uslugi"], 10, 64)
	if err != nil {
		return 0, 0, 0, apperror.NewValidation("Nieprawidłowa usługa")
	}
	consumption, err = strconv.ParseFloat(f.values["zuzycie"], 64)
	if err != nil {
		return 0, 0, 0, apperror.NewValidation("Nieprawidłowe zużycie")
	}
	return apartmentID, serviceID, consumption, nil
}

// OriginalKey returns the primary-key field and value addressing the record
// under edit. Absent key means the record cannot be updated or deleted.
func (f *Form) OriginalKey() (field, value string, err error) {
	if f.original == nil {
		return "", "", apperror.NewAmbiguousKey(f.table)
	}
	key, ok := f.original.PrimaryKey()
	if !ok {
		return "", "", apperror.NewAmbiguousKey(f.table)
	}
	return key, f.original.StringValue(key), nil
}
