package repository

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	createTableRe = regexp.MustCompile(`(?i)create table if not exists (\w+)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

func readMigrations(t *testing.T) string {
	t.Helper()

	files, err := filepath.Glob(filepath.Join("..", "..", "supabase", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var sb strings.Builder
	for _, f := range files {
		b, err := os.ReadFile(f)
		require.NoError(t, err)
		sb.Write(b)
		sb.WriteByte('\n')
	}
	return strings.ToLower(whitespaceRe.ReplaceAllString(sb.String(), " "))
}

func TestMigrations_EveryTableHasRowLevelSecurity(t *testing.T) {
	sql := readMigrations(t)

	tables := createTableRe.FindAllStringSubmatch(sql, -1)
	require.NotEmpty(t, tables)
	for _, m := range tables {
		assert.Contains(t, sql, "alter table "+m[1]+" enable row level security", m[1])
	}

	for _, table := range []string{"analytics_events", "user_patterns", "ml_insights", "prediction_models"} {
		assert.Regexp(t, `create policy \w+ on `+table+` for select to authenticated using \(user_id = auth\.uid\(\)\)`, sql, table)
	}
}

func TestMigrations_ApplyAnalysisBatchIsServiceRoleOnly(t *testing.T) {
	sql := readMigrations(t)

	signature := "apply_analysis_batch(uuid, jsonb, jsonb, text[], jsonb, jsonb)"
	assert.Contains(t, sql, "revoke execute on function "+signature+" from public, anon, authenticated;")
	assert.Contains(t, sql, "grant execute on function "+signature+" to service_role;")
	assert.Contains(t, sql, "security definer set search_path = public")
}
