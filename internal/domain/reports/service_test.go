package reports

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osiedle/internal/schema"
)

func TestViewNamesCoverEveryQuery(t *testing.T) {
	names := ViewNames()
	require.Len(t, names, 8)
	for _, name := range names {
		assert.NotEmpty(t, strings.TrimSpace(viewQueries[name]), name)
	}
}

func TestViewQueriesAreReadOnly(t *testing.T) {
	for name, query := range viewQueries {
		upper := strings.ToUpper(query)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(upper), "SELECT"), name)
		for _, verb := range []string{"INSERT ", "UPDATE ", "DELETE "} {
			assert.NotContains(t, upper, verb, name)
		}
	}
}

func TestRepairStatusViewCoversEveryWritableStatus(t *testing.T) {
	query := viewQueries["naprawy-status"]
	for _, status := range schema.RepairStatuses {
		assert.Contains(t, query, "WHEN '"+status+"'", status)
	}
}

func TestCountableTablesMatchOriginalStats(t *testing.T) {
	assert.Equal(t,
		[]string{"budynek", "mieszkanie", "czlonek", "pracownik", "naprawa", "oplata", "umowa"},
		countableTables)
}
