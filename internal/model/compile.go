package model

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/chime-db/chime/internal/chtype"
)

// CompileError reports a schema problem with its CUE position.
type CompileError struct {
	Entity  string
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	where := e.Field
	if e.Entity != "" {
		where = e.Entity + "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), where, e.Message)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// Compile parses a CUE value into an entity catalog.
//
// The value should contain a top-level "model" struct, one field per
// entity:
//
//	model: {
//		orders: {
//			table: "orders"
//			columns: {id: "UInt64", amount: "Decimal(18, 4)"}
//		}
//		currency: {
//			dictionary: "currency_rates"
//			columns: {code: "String", rate: "Float64"}
//		}
//		legacy_users: {
//			external: "pg_main"
//			table:    "users"
//			columns: {id: "UInt64", email: "String"}
//		}
//	}
//
// Exactly one of table/dictionary identifies native and dictionary
// entities; external entities name a source configuration entry plus the
// remote table.
func Compile(v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}
	root := v.LookupPath(cue.ParsePath("model"))
	if !root.Exists() {
		return nil, &CompileError{Field: "model", Message: "model struct is required", Pos: v.Pos()}
	}

	catalog := NewCatalog()
	iter, err := root.Fields()
	if err != nil {
		return nil, err
	}
	for iter.Next() {
		entity, err := compileEntity(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		if err := catalog.Add(entity); err != nil {
			return nil, err
		}
	}
	if catalog.Entities() == 0 {
		return nil, &CompileError{Field: "model", Message: "at least one entity is required", Pos: root.Pos()}
	}
	return catalog, nil
}

// compileEntity parses one entity struct.
func compileEntity(name string, v cue.Value) (*Entity, error) {
	entity := &Entity{Name: name, Kind: KindNative}

	if dbVal := v.LookupPath(cue.ParsePath("database")); dbVal.Exists() {
		db, err := dbVal.String()
		if err != nil {
			return nil, &CompileError{Entity: name, Field: "database", Message: err.Error(), Pos: dbVal.Pos()}
		}
		entity.Database = db
	}

	tableVal := v.LookupPath(cue.ParsePath("table"))
	dictVal := v.LookupPath(cue.ParsePath("dictionary"))
	extVal := v.LookupPath(cue.ParsePath("external"))

	switch {
	case dictVal.Exists():
		if tableVal.Exists() {
			return nil, &CompileError{Entity: name, Field: "dictionary",
				Message: "dictionary entities must not also declare a table", Pos: dictVal.Pos()}
		}
		dict, err := dictVal.String()
		if err != nil {
			return nil, &CompileError{Entity: name, Field: "dictionary", Message: err.Error(), Pos: dictVal.Pos()}
		}
		entity.Kind = KindDictionary
		entity.Dictionary = dict

	case extVal.Exists():
		source, err := extVal.String()
		if err != nil {
			return nil, &CompileError{Entity: name, Field: "external", Message: err.Error(), Pos: extVal.Pos()}
		}
		entity.Kind = KindExternal
		entity.Source = source
		if tableVal.Exists() {
			table, err := tableVal.String()
			if err != nil {
				return nil, &CompileError{Entity: name, Field: "table", Message: err.Error(), Pos: tableVal.Pos()}
			}
			entity.Table = table
		} else {
			entity.Table = name
		}

	case tableVal.Exists():
		table, err := tableVal.String()
		if err != nil {
			return nil, &CompileError{Entity: name, Field: "table", Message: err.Error(), Pos: tableVal.Pos()}
		}
		entity.Table = table

	default:
		entity.Table = name
	}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{Entity: name, Field: "columns", Message: "columns are required", Pos: v.Pos()}
	}
	iter, err := colsVal.Fields()
	if err != nil {
		return nil, err
	}
	for iter.Next() {
		colName := iter.Selector().Unquoted()
		typeText, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Entity: name, Field: "columns." + colName, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		colType, err := chtype.ParseName(typeText)
		if err != nil {
			return nil, &CompileError{Entity: name, Field: "columns." + colName, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		entity.Columns = append(entity.Columns, Column{Name: colName, Type: colType})
	}
	if len(entity.Columns) == 0 {
		return nil, &CompileError{Entity: name, Field: "columns", Message: "at least one column is required", Pos: colsVal.Pos()}
	}
	return entity, nil
}

// LoadDir compiles all CUE files in a directory into one catalog.
func LoadDir(dir string) (*Catalog, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	if instances[0].Err != nil {
		return nil, instances[0].Err
	}
	v := ctx.BuildInstance(instances[0])
	if v.Err() != nil {
		return nil, v.Err()
	}
	return Compile(v)
}

// CompileString compiles a CUE source string, primarily for tests and the
// CLI's vet command.
func CompileString(src string) (*Catalog, error) {
	v := cuecontext.New().CompileString(src)
	return Compile(v)
}
