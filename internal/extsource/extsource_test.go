package extsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver() *Resolver {
	return NewResolver(map[string]Source{
		"pg_main": {
			Provider: ProviderPostgres,
			Host:     "db.example.com",
			Database: "app",
			User:     "reader",
			Password: "secret",
		},
		"my_legacy": {
			Provider: ProviderMySQL,
			Host:     "legacy.example.com",
			Port:     3307,
			Database: "crm",
			User:     "ro",
			Password: "pw",
		},
		"events_bucket": {
			Provider:  ProviderS3,
			Path:      "https://storage.example.com/events/*.parquet",
			AccessKey: "AK",
			SecretKey: "SK",
			Format:    "Parquet",
		},
		"session_cache": {
			Provider:  ProviderRedis,
			Host:      "cache.example.com",
			Key:       "session_id",
			Structure: "session_id String, user_id UInt64",
		},
		"dwh": {
			Provider: ProviderRemote,
			Host:     "dwh.example.com",
			Port:     9000,
			Database: "warehouse",
			User:     "svc",
			Password: "pw",
			Secure:   true,
		},
		"all_shards": {
			Provider: ProviderCluster,
			Cluster:  "analytics",
			Database: "app",
		},
		"broken": {
			Provider: Provider("mongodb"),
		},
		"partial": {
			Provider: ProviderPostgres,
			Host:     "db.example.com",
		},
	})
}

func TestRender_ProviderArgumentOrders(t *testing.T) {
	r := testResolver()
	tests := []struct {
		name   string
		source string
		table  string
		want   string
	}{
		{
			"postgres default port", "pg_main", "users",
			"postgresql('db.example.com:5432', 'app', 'users', 'reader', 'secret')",
		},
		{
			"mysql explicit port", "my_legacy", "accounts",
			"mysql('legacy.example.com:3307', 'crm', 'accounts', 'ro', 'pw')",
		},
		{
			"s3 with credentials", "events_bucket", "",
			"s3('https://storage.example.com/events/*.parquet', 'AK', 'SK', 'Parquet')",
		},
		{
			"redis", "session_cache", "",
			"redis('cache.example.com:6379', 'session_id', 'session_id String, user_id UInt64', 0)",
		},
		{
			"remote secure", "dwh", "facts",
			"remoteSecure('dwh.example.com:9000', 'warehouse', 'facts', 'svc', 'pw')",
		},
		{
			"cluster", "all_shards", "orders",
			"cluster('analytics', 'app', 'orders')",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, _, err := r.Render(tt.source, tt.table)
			require.NoError(t, err)
			assert.Equal(t, tt.want, call)
		})
	}
}

func TestRender_UnknownSource(t *testing.T) {
	_, _, err := testResolver().Render("nope", "t")
	require.Error(t, err)

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, ErrCodeUnknownSource, resolveErr.Code)
}

func TestRender_UnsupportedProvider(t *testing.T) {
	_, _, err := testResolver().Render("broken", "t")
	require.Error(t, err)

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, ErrCodeUnsupportedProvider, resolveErr.Code)
}

func TestRender_MissingConfiguration(t *testing.T) {
	_, _, err := testResolver().Render("partial", "t")
	require.Error(t, err)

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, ErrCodeMissingConfiguration, resolveErr.Code)
	assert.Contains(t, resolveErr.Message, "database")
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  pg_main:
    provider: postgres
    host: db.example.com
    database: app
    user: reader
    password: from-file
`), 0o600))

	t.Setenv("CHIME_SOURCES__PG_MAIN__PASSWORD", "from-env")

	r, err := Load(path)
	require.NoError(t, err)

	call, provider, err := r.Render("pg_main", "users")
	require.NoError(t, err)
	assert.Equal(t, "postgresql", provider)
	assert.Contains(t, call, "'from-env'")
	assert.NotContains(t, call, "from-file")
}

func TestEnvKeyToPath(t *testing.T) {
	assert.Equal(t, "sources.pg_main.password", envKeyToPath("CHIME_SOURCES__PG_MAIN__PASSWORD"))
}
