// Package migrate models schema migration artifacts as plain data:
// ordered records describing DDL additions and removals (precomputed
// projections, data-skipping indexes) on native tables.
//
// Records are persisted as YAML and rendered to DDL text on demand; the
// package never executes anything.
package migrate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chime-db/chime/internal/chtype"
)

// Kind enumerates the migration operation kinds.
type Kind string

// Operation kinds.
const (
	AddProjection  Kind = "add_projection"
	DropProjection Kind = "drop_projection"
	AddIndex       Kind = "add_index"
	DropIndex      Kind = "drop_index"
)

// Operation is one DDL change record.
type Operation struct {
	Kind Kind `yaml:"kind"`

	// Table is the owning table, optionally database-qualified in the
	// form db.table.
	Table string `yaml:"table"`

	// Name names the projection or index.
	Name string `yaml:"name"`

	// Select is the defining SELECT text of a projection (add only).
	Select string `yaml:"select,omitempty"`

	// Expression is the indexed expression (add_index only).
	Expression string `yaml:"expression,omitempty"`

	// IndexType is the skip-index flavor, e.g. minmax or bloom_filter
	// (add_index only).
	IndexType string `yaml:"index_type,omitempty"`

	// Granularity is the index granularity in blocks; 0 lets the server
	// default apply (add_index only).
	Granularity int `yaml:"granularity,omitempty"`
}

// Migration is one ordered batch of operations.
type Migration struct {
	Version    string      `yaml:"version"`
	Operations []Operation `yaml:"operations"`
}

// Validate checks that every operation carries the fields its kind needs.
func (m *Migration) Validate() error {
	if m.Version == "" {
		return fmt.Errorf("migrate: migration has no version")
	}
	for i, op := range m.Operations {
		if err := op.validate(); err != nil {
			return fmt.Errorf("migrate: operation %d: %w", i, err)
		}
	}
	return nil
}

func (op Operation) validate() error {
	if op.Table == "" {
		return fmt.Errorf("%s requires a table", op.Kind)
	}
	if op.Name == "" {
		return fmt.Errorf("%s requires a name", op.Kind)
	}
	switch op.Kind {
	case AddProjection:
		if op.Select == "" {
			return fmt.Errorf("%s requires a defining select", op.Kind)
		}
	case AddIndex:
		if op.Expression == "" {
			return fmt.Errorf("%s requires an expression", op.Kind)
		}
		if op.IndexType == "" {
			return fmt.Errorf("%s requires an index type", op.Kind)
		}
	case DropProjection, DropIndex:
	default:
		return fmt.Errorf("unrecognized operation kind %q", op.Kind)
	}
	return nil
}

// DDL renders the operation as an ALTER TABLE statement.
func (op Operation) DDL() (string, error) {
	if err := op.validate(); err != nil {
		return "", err
	}
	name := chtype.QuoteIdentifier(op.Name)
	switch op.Kind {
	case AddProjection:
		return fmt.Sprintf("ALTER TABLE %s ADD PROJECTION %s (%s)", op.Table, name, op.Select), nil
	case DropProjection:
		return fmt.Sprintf("ALTER TABLE %s DROP PROJECTION %s", op.Table, name), nil
	case AddIndex:
		ddl := fmt.Sprintf("ALTER TABLE %s ADD INDEX %s %s TYPE %s",
			op.Table, name, op.Expression, op.IndexType)
		if op.Granularity > 0 {
			ddl += fmt.Sprintf(" GRANULARITY %d", op.Granularity)
		}
		return ddl, nil
	case DropIndex:
		return fmt.Sprintf("ALTER TABLE %s DROP INDEX %s", op.Table, name), nil
	}
	return "", fmt.Errorf("unrecognized operation kind %q", op.Kind)
}

// Load reads and validates one migration file.
func Load(path string) (*Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("migrate: read %s: %w", path, err)
	}
	var m Migration
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("migrate: parse %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save validates and writes one migration file.
func Save(path string, m *Migration) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("migrate: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("migrate: write %s: %w", path, err)
	}
	return nil
}
