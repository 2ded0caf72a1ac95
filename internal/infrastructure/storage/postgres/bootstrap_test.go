package postgres

import (
	"strings"
	"testing"
)

// The schema script runs on every startup, so each CREATE must tolerate the
// object already existing. This also repairs a partially created schema.
func TestSchemaScriptReappliesSafely(t *testing.T) {
	for _, keyword := range []string{"CREATE TABLE", "CREATE INDEX"} {
		total := strings.Count(schemaSQL, keyword)
		guarded := strings.Count(schemaSQL, keyword+" IF NOT EXISTS")
		if total == 0 {
			t.Fatalf("schema script contains no %s statements", keyword)
		}
		if total != guarded {
			t.Errorf("%d %s statement(s) without IF NOT EXISTS", total-guarded, keyword)
		}
	}
}
