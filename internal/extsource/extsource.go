// Package extsource renders table-function calls for externally-federated
// tables: the FROM-clause constructs that read postgres, mysql, odbc,
// redis, object storage, http, remote cluster nodes or local files as if
// they were tables.
//
// Connection settings load from a YAML file, with environment variables
// overriding individual keys (credentials in particular are expected to
// arrive through the environment in production). Resolution is synchronous
// and side-effect-free; a missing required setting is a configuration
// error surfaced at query compile time.
package extsource

import (
	"fmt"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/chime-db/chime/internal/chtype"
)

// Provider enumerates the supported federated source kinds.
type Provider string

// Supported providers.
const (
	ProviderPostgres Provider = "postgres"
	ProviderMySQL    Provider = "mysql"
	ProviderODBC     Provider = "odbc"
	ProviderRedis    Provider = "redis"
	ProviderS3       Provider = "s3"
	ProviderURL      Provider = "url"
	ProviderRemote   Provider = "remote"
	ProviderFile     Provider = "file"
	ProviderCluster  Provider = "cluster"
)

// Source is one named external source configuration.
type Source struct {
	Provider Provider `koanf:"provider"`

	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// DSN is the ODBC connection string.
	DSN string `koanf:"dsn"`

	// Path is the object key, URL or local file path for s3/url/file.
	Path string `koanf:"path"`

	// Format names the serialization format for s3/url/file sources.
	Format string `koanf:"format"`

	// Structure is the explicit column structure for sources that cannot
	// infer one (redis, and optionally s3/url/file).
	Structure string `koanf:"structure"`

	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`

	// Key is the primary key column for redis sources.
	Key string `koanf:"key"`

	// DBIndex selects the redis logical database.
	DBIndex int `koanf:"db_index"`

	// Cluster names the server-side cluster for cluster sources.
	Cluster string `koanf:"cluster"`

	// Secure selects TLS for remote sources (remoteSecure).
	Secure bool `koanf:"secure"`
}

// ResolveErrorCode categorizes resolution failures.
type ResolveErrorCode string

const (
	// ErrCodeUnknownSource indicates the named source is not configured.
	ErrCodeUnknownSource ResolveErrorCode = "UNKNOWN_SOURCE"

	// ErrCodeUnsupportedProvider indicates an unrecognized provider kind.
	ErrCodeUnsupportedProvider ResolveErrorCode = "UNSUPPORTED_PROVIDER"

	// ErrCodeMissingConfiguration indicates a required setting is absent.
	ErrCodeMissingConfiguration ResolveErrorCode = "MISSING_CONFIGURATION"
)

// ResolveError reports a table-function resolution failure.
type ResolveError struct {
	Code    ResolveErrorCode
	Source  string
	Message string
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s (source=%s)", e.Code, e.Message, e.Source)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Resolver renders table-function calls from named source configurations.
type Resolver struct {
	sources map[string]Source
}

// NewResolver builds a resolver from an explicit source map.
func NewResolver(sources map[string]Source) *Resolver {
	return &Resolver{sources: sources}
}

// envPrefix namespaces the override variables, e.g.
// CHIME_SOURCES__PG_MAIN__PASSWORD overrides sources.pg_main.password.
const envPrefix = "CHIME_"

// Load reads a YAML configuration file and applies environment overrides.
func Load(path string) (*Resolver, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("load source config %s: %w", path, err)
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, fmt.Errorf("load source env overrides: %w", err)
	}

	var cfg struct {
		Sources map[string]Source `koanf:"sources"`
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode source config %s: %w", path, err)
	}
	return NewResolver(cfg.Sources), nil
}

// envKeyToPath maps CHIME_SOURCES__PG_MAIN__PASSWORD to
// sources.pg_main.password. Double underscores separate path segments so
// that source names may themselves contain underscores.
func envKeyToPath(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Source returns the named configuration.
func (r *Resolver) Source(name string) (Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// Render produces the table-function call text for the named source and
// remote table. The returned provider tag is the function name used.
func (r *Resolver) Render(name, table string) (call string, provider string, err error) {
	src, ok := r.sources[name]
	if !ok {
		return "", "", &ResolveError{
			Code:    ErrCodeUnknownSource,
			Source:  name,
			Message: "no such external source configured",
		}
	}
	return renderSource(name, src, table)
}

// renderSource dispatches on the provider kind. Argument order follows the
// dialect's table-function signatures exactly; getting it wrong produces
// server-side errors that are hard to trace back, so each arm is explicit.
func renderSource(name string, src Source, table string) (string, string, error) {
	req := func(field, value string) error {
		if value == "" {
			return &ResolveError{
				Code:    ErrCodeMissingConfiguration,
				Source:  name,
				Message: fmt.Sprintf("provider %q requires %s", src.Provider, field),
			}
		}
		return nil
	}
	q := chtype.QuoteString

	switch src.Provider {
	case ProviderPostgres, ProviderMySQL:
		checks := []struct{ field, value string }{
			{"host", src.Host}, {"database", src.Database},
			{"user", src.User}, {"password", src.Password}, {"table", table},
		}
		for _, c := range checks {
			if err := req(c.field, c.value); err != nil {
				return "", "", err
			}
		}
		port := src.Port
		if port == 0 {
			if src.Provider == ProviderPostgres {
				port = 5432
			} else {
				port = 3306
			}
		}
		fn := "postgresql"
		if src.Provider == ProviderMySQL {
			fn = "mysql"
		}
		addr := fmt.Sprintf("%s:%d", src.Host, port)
		return fmt.Sprintf("%s(%s, %s, %s, %s, %s)",
			fn, q(addr), q(src.Database), q(table), q(src.User), q(src.Password)), fn, nil

	case ProviderODBC:
		if err := req("dsn", src.DSN); err != nil {
			return "", "", err
		}
		if err := req("table", table); err != nil {
			return "", "", err
		}
		if src.Database != "" {
			return fmt.Sprintf("odbc(%s, %s, %s)", q(src.DSN), q(src.Database), q(table)), "odbc", nil
		}
		return fmt.Sprintf("odbc(%s, %s)", q(src.DSN), q(table)), "odbc", nil

	case ProviderRedis:
		if err := req("host", src.Host); err != nil {
			return "", "", err
		}
		if err := req("key", src.Key); err != nil {
			return "", "", err
		}
		if err := req("structure", src.Structure); err != nil {
			return "", "", err
		}
		port := src.Port
		if port == 0 {
			port = 6379
		}
		addr := fmt.Sprintf("%s:%d", src.Host, port)
		call := fmt.Sprintf("redis(%s, %s, %s, %d", q(addr), q(src.Key), q(src.Structure), src.DBIndex)
		if src.Password != "" {
			call += ", " + q(src.Password)
		}
		return call + ")", "redis", nil

	case ProviderS3:
		if err := req("path", src.Path); err != nil {
			return "", "", err
		}
		if err := req("format", src.Format); err != nil {
			return "", "", err
		}
		args := []string{q(src.Path)}
		if src.AccessKey != "" || src.SecretKey != "" {
			if err := req("access_key", src.AccessKey); err != nil {
				return "", "", err
			}
			if err := req("secret_key", src.SecretKey); err != nil {
				return "", "", err
			}
			args = append(args, q(src.AccessKey), q(src.SecretKey))
		}
		args = append(args, q(src.Format))
		if src.Structure != "" {
			args = append(args, q(src.Structure))
		}
		return fmt.Sprintf("s3(%s)", strings.Join(args, ", ")), "s3", nil

	case ProviderURL:
		if err := req("path", src.Path); err != nil {
			return "", "", err
		}
		if err := req("format", src.Format); err != nil {
			return "", "", err
		}
		args := []string{q(src.Path), q(src.Format)}
		if src.Structure != "" {
			args = append(args, q(src.Structure))
		}
		return fmt.Sprintf("url(%s)", strings.Join(args, ", ")), "url", nil

	case ProviderFile:
		if err := req("path", src.Path); err != nil {
			return "", "", err
		}
		if err := req("format", src.Format); err != nil {
			return "", "", err
		}
		args := []string{q(src.Path), q(src.Format)}
		if src.Structure != "" {
			args = append(args, q(src.Structure))
		}
		return fmt.Sprintf("file(%s)", strings.Join(args, ", ")), "file", nil

	case ProviderRemote:
		if err := req("host", src.Host); err != nil {
			return "", "", err
		}
		if err := req("database", src.Database); err != nil {
			return "", "", err
		}
		if err := req("table", table); err != nil {
			return "", "", err
		}
		fn := "remote"
		if src.Secure {
			fn = "remoteSecure"
		}
		addr := src.Host
		if src.Port != 0 {
			addr = fmt.Sprintf("%s:%d", src.Host, src.Port)
		}
		args := []string{q(addr), q(src.Database), q(table)}
		if src.User != "" {
			args = append(args, q(src.User))
			if src.Password != "" {
				args = append(args, q(src.Password))
			}
		}
		return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", ")), fn, nil

	case ProviderCluster:
		if err := req("cluster", src.Cluster); err != nil {
			return "", "", err
		}
		if err := req("database", src.Database); err != nil {
			return "", "", err
		}
		if err := req("table", table); err != nil {
			return "", "", err
		}
		return fmt.Sprintf("cluster(%s, %s, %s)", q(src.Cluster), q(src.Database), q(table)), "cluster", nil
	}

	return "", "", &ResolveError{
		Code:    ErrCodeUnsupportedProvider,
		Source:  name,
		Message: fmt.Sprintf("unsupported provider %q", src.Provider),
	}
}
