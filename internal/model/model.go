// Package model holds the entity catalog: the mapping from semantic entity
// names to native tables, dictionaries or externally-federated sources,
// with per-column storage types.
//
// Catalogs are either built programmatically or compiled from a CUE schema
// (see Compile). A catalog is immutable after construction and shared
// across concurrent query compilations.
package model

import (
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/chime-db/chime/internal/chtype"
)

// EntityKind distinguishes how an entity is read.
type EntityKind string

// Entity kinds.
const (
	// KindNative is a stored table in the target database.
	KindNative EntityKind = "NATIVE"

	// KindDictionary is a lookup table read through dictionary accessor
	// functions instead of joins.
	KindDictionary EntityKind = "DICTIONARY"

	// KindExternal is a federated table read through a table function.
	KindExternal EntityKind = "EXTERNAL"
)

// Column maps one entity property to its storage column.
type Column struct {
	Name string
	Type chtype.Type
}

// Entity describes one queryable shape.
type Entity struct {
	// Name is the semantic entity name queries refer to.
	Name string

	// Database and Table locate the native table (KindNative, and the
	// remote table for KindExternal).
	Database string
	Table    string

	// Dictionary is the dictionary name (KindDictionary only).
	Dictionary string

	// Source names the external-source configuration entry
	// (KindExternal only).
	Source string

	Kind    EntityKind
	Columns []Column

	byName map[string]int
}

// Column resolves a column by name.
func (e *Entity) Column(name string) (Column, bool) {
	i, ok := e.byName[name]
	if !ok {
		return Column{}, false
	}
	return e.Columns[i], true
}

// Catalog is the entity registry consulted during compilation.
type Catalog struct {
	entities map[string]*Entity

	// Types resolves Go constants to storage descriptors.
	Types *chtype.Catalog
}

// NewCatalog returns an empty catalog backed by the default type catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entities: make(map[string]*Entity),
		Types:    chtype.NewCatalog(),
	}
}

// Add registers an entity. Names are NFC-normalized so that lookups are
// insensitive to Unicode composition differences in schema sources.
func (c *Catalog) Add(e *Entity) error {
	e.Name = norm.NFC.String(e.Name)
	if e.Table != "" {
		e.Table = norm.NFC.String(e.Table)
	}
	if e.Dictionary != "" {
		e.Dictionary = norm.NFC.String(e.Dictionary)
	}
	if _, dup := c.entities[e.Name]; dup {
		return fmt.Errorf("duplicate entity %q", e.Name)
	}
	if e.Kind == "" {
		e.Kind = KindNative
	}
	e.byName = make(map[string]int, len(e.Columns))
	for i, col := range e.Columns {
		if _, dup := e.byName[col.Name]; dup {
			return fmt.Errorf("entity %q: duplicate column %q", e.Name, col.Name)
		}
		e.byName[col.Name] = i
	}
	c.entities[e.Name] = e
	return nil
}

// Entity resolves an entity by semantic name.
func (c *Catalog) Entity(name string) (*Entity, bool) {
	e, ok := c.entities[norm.NFC.String(name)]
	return e, ok
}

// Entities returns the number of registered entities.
func (c *Catalog) Entities() int {
	return len(c.entities)
}

// Names returns the registered entity names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entities))
	for name := range c.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
