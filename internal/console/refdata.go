package console

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"osiedle/internal/schema"
)

// RefData holds the five dropdown reference lists. They are loaded together
// once per login and treated as read-only projections; edits go through the
// gateway and trigger a reload.
type RefData struct {
	Buildings  []*schema.Record
	Apartments []*schema.Record
	Employees  []*schema.Record
	Services   []*schema.Record
	Members    []*schema.Record
}

// refLister is the slice of the gateway RefData needs.
type refLister interface {
	List(ctx context.Context, table string) ([]*schema.Record, error)
}

// LoadRefData fetches all five reference lists. Any failure aborts the load;
// dropdowns without reference data are worse than a visible error.
func LoadRefData(ctx context.Context, client refLister) (*RefData, error) {
	rd := &RefData{}
	for _, t := range []struct {
		table string
		dst   *[]*schema.Record
	}{
		{"budynek", &rd.Buildings},
		{"mieszkanie", &rd.Apartments},
		{"pracownik", &rd.Employees},
		{"uslugi", &rd.Services},
		{"czlonek", &rd.Members},
	} {
		rows, err := client.List(ctx, t.table)
		if err != nil {
			return nil, err
		}
		*t.dst = rows
	}
	return rd, nil
}

// UnitPrice resolves a service id (as a form value) to its unit price.
func (rd *RefData) UnitPrice(serviceID string) (decimal.Decimal, bool) {
	for _, svc := range rd.Services {
		if svc.StringValue("id_uslugi") != serviceID {
			continue
		}
		price, err := decimal.NewFromString(svc.StringValue("cena_za_jednostke"))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return price, true
	}
	return decimal.Decimal{}, false
}

// ApartmentLabel renders the display label for an apartment: the building
// address followed by ", m. " and the apartment number.
func (rd *RefData) ApartmentLabel(apartmentID int64) string {
	id := strconv.FormatInt(apartmentID, 10)
	for _, apt := range rd.Apartments {
		if apt.StringValue("id_mieszkania") != id {
			continue
		}
		address := ""
		buildingID := apt.StringValue("id_budynku")
		for _, b := range rd.Buildings {
			if b.StringValue("id_budynku") == buildingID {
				address = b.StringValue("adres")
				break
			}
		}
		if address == "" {
			return "m. " + apt.StringValue("numer")
		}
		return address + ", m. " + apt.StringValue("numer")
	}
	return ""
}

// Options returns the dropdown option values for a field: reference ids for
// foreign keys, fixed enum lists otherwise.
func (rd *RefData) Options(key string) []string {
	switch key {
	case "id_budynku":
		return recordIDs(rd.Buildings, "id_budynku")
	case "id_mieszkania":
		return recordIDs(rd.Apartments, "id_mieszkania")
	case "id_pracownika":
		return recordIDs(rd.Employees, "id_pracownika")
	case "id_uslugi":
		return recordIDs(rd.Services, "id_uslugi")
	case "id_czlonka":
		return recordIDs(rd.Members, "id_czlonka")
	case "status":
		return schema.RepairStatuses
	case "status_oplaty":
		return schema.PaymentStatuses
	case "jednostka_miary":
		return schema.MeasurementUnits
	case "typ_umowy":
		return schema.ContractTypes
	default:
		return nil
	}
}

func recordIDs(records []*schema.Record, key string) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.StringValue(key))
	}
	return out
}
