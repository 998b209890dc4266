package schema

import (
	"fmt"
	"strings"
)

const (
	defaultCharset   = "utf8mb4"
	defaultCollation = "utf8mb4_unicode_ci"
	defaultEngine    = "InnoDB"
)

type tableMode int

const (
	modeCreate tableMode = iota
	modeDrop
	modeAlter
)

// ForeignKey records a single-column reference to another table.
type ForeignKey struct {
	References string `yaml:"references"`
	On         string `yaml:"on"`
}

// Table accumulates one DDL statement: a CREATE by default, switched to
// DROP by Drop or to ALTER by AddFields/RemoveFields. Like Field, a Table
// is single-use and latches the first invariant violation until Build.
type Table struct {
	name        string
	fields      map[string]*Field
	fieldOrder  []string
	charset     string
	collation   string
	engine      string
	primaryName string
	primaryKeys []string
	foreignKeys map[string]ForeignKey
	fkOrder     []string
	mode        tableMode
	addFields   []*Field
	dropFields  []*Field
	err         error
}

// NewTable creates a table definition in create mode. At least one field is
// required; field names must be unique.
func NewTable(name string, fields ...*Field) *Table {
	t := &Table{
		name:        name,
		fields:      map[string]*Field{},
		charset:     defaultCharset,
		collation:   defaultCollation,
		engine:      defaultEngine,
		foreignKeys: map[string]ForeignKey{},
	}
	if name == "" {
		t.err = fmt.Errorf("%w: table name must not be empty", ErrInvalidArgument)
		return t
	}
	if len(fields) == 0 {
		t.err = fmt.Errorf("%w: table %q requires at least one field", ErrLogic, name)
		return t
	}
	for _, f := range fields {
		if f == nil {
			t.err = fmt.Errorf("%w: table %q received a nil field", ErrInvalidArgument, name)
			return t
		}
		if _, ok := t.fields[f.Name()]; ok {
			t.err = fmt.Errorf("%w: table %q has duplicate field %q", ErrInvalidArgument, name, f.Name())
			return t
		}
		t.fields[f.Name()] = f
		t.fieldOrder = append(t.fieldOrder, f.Name())
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Err returns the first invariant violation recorded on the table, if any.
func (t *Table) Err() error { return t.err }

// Charset overrides the default character set.
func (t *Table) Charset(charset string) *Table {
	if t.err == nil && charset != "" {
		t.charset = charset
	}
	return t
}

// Collation overrides the default collation.
func (t *Table) Collation(collation string) *Table {
	if t.err == nil && collation != "" {
		t.collation = collation
	}
	return t
}

// Engine overrides the default storage engine.
func (t *Table) Engine(engine string) *Table {
	if t.err == nil && engine != "" {
		t.engine = engine
	}
	return t
}

// PrimaryKey declares a single-column primary key. The field must exist.
func (t *Table) PrimaryKey(field string) *Table {
	if t.err != nil {
		return t
	}
	if _, ok := t.fields[field]; !ok {
		t.err = fmt.Errorf("%w: primary key field %q does not exist in table %q", ErrInvalidArgument, field, t.name)
		return t
	}
	t.primaryName = ""
	t.primaryKeys = []string{field}
	return t
}

// CompositePrimaryKey declares a multi-column primary key. A composite key
// requires an explicit constraint name, and every field must exist.
func (t *Table) CompositePrimaryKey(name string, fields ...string) *Table {
	if t.err != nil {
		return t
	}
	if name == "" {
		t.err = fmt.Errorf("%w: a composite primary key on table %q requires a constraint name", ErrLogic, t.name)
		return t
	}
	if len(fields) == 0 {
		t.err = fmt.Errorf("%w: composite primary key %q requires at least one field", ErrInvalidArgument, name)
		return t
	}
	for _, field := range fields {
		if _, ok := t.fields[field]; !ok {
			t.err = fmt.Errorf("%w: primary key field %q does not exist in table %q", ErrInvalidArgument, field, t.name)
			return t
		}
	}
	t.primaryName = name
	t.primaryKeys = append([]string{}, fields...)
	return t
}

// ForeignKeyOn records a foreign key from field to refTable(refField). The
// local field must exist; the referenced table is checked by the schema
// cache, not here.
func (t *Table) ForeignKeyOn(field, refTable, refField string) *Table {
	if t.err != nil {
		return t
	}
	if _, ok := t.fields[field]; !ok {
		t.err = fmt.Errorf("%w: foreign key field %q does not exist in table %q", ErrInvalidArgument, field, t.name)
		return t
	}
	if refTable == "" || refField == "" {
		t.err = fmt.Errorf("%w: foreign key on %q requires a referenced table and field", ErrInvalidArgument, field)
		return t
	}
	if _, ok := t.foreignKeys[field]; !ok {
		t.fkOrder = append(t.fkOrder, field)
	}
	t.foreignKeys[field] = ForeignKey{References: refTable, On: refField}
	return t
}

// AddFields switches the table to alter mode and queues columns to ADD.
func (t *Table) AddFields(fields ...*Field) *Table {
	if t.err != nil {
		return t
	}
	if len(fields) == 0 {
		t.err = fmt.Errorf("%w: AddFields on table %q requires at least one field", ErrInvalidArgument, t.name)
		return t
	}
	for _, f := range fields {
		if f == nil {
			t.err = fmt.Errorf("%w: AddFields on table %q received a nil field", ErrInvalidArgument, t.name)
			return t
		}
	}
	t.mode = modeAlter
	t.addFields = append(t.addFields, fields...)
	return t
}

// RemoveFields switches the table to alter mode and queues columns to
// DROP COLUMN.
func (t *Table) RemoveFields(fields ...*Field) *Table {
	if t.err != nil {
		return t
	}
	if len(fields) == 0 {
		t.err = fmt.Errorf("%w: RemoveFields on table %q requires at least one field", ErrInvalidArgument, t.name)
		return t
	}
	for _, f := range fields {
		if f == nil {
			t.err = fmt.Errorf("%w: RemoveFields on table %q received a nil field", ErrInvalidArgument, t.name)
			return t
		}
	}
	t.mode = modeAlter
	t.dropFields = append(t.dropFields, fields...)
	return t
}

// Drop switches the table to drop mode.
func (t *Table) Drop() *Table {
	if t.err != nil {
		return t
	}
	t.mode = modeDrop
	return t
}

// Build renders the DDL statement for the current mode. Build is a pure
// read of accumulated state and may be called repeatedly.
func (t *Table) Build() (string, error) {
	if t.err != nil {
		return "", t.err
	}
	switch t.mode {
	case modeDrop:
		return fmt.Sprintf("DROP TABLE IF EXISTS %s;", t.name), nil
	case modeAlter:
		return t.buildAlter()
	default:
		return t.buildCreate()
	}
}

func (t *Table) buildCreate() (string, error) {
	if err := t.validateAutoIncrement(); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(t.fieldOrder)+1+len(t.fkOrder))
	for _, name := range t.fieldOrder {
		ddl, err := t.fields[name].DDL()
		if err != nil {
			return "", err
		}
		parts = append(parts, ddl)
	}
	if len(t.primaryKeys) > 0 {
		if t.primaryName != "" {
			parts = append(parts, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", t.primaryName, strings.Join(t.primaryKeys, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", t.primaryKeys[0]))
		}
	}
	for _, field := range t.fkOrder {
		fk := t.foreignKeys[field]
		parts = append(parts, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", field, fk.References, fk.On))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) CHARACTER SET %s COLLATE %s ENGINE=%s;",
		t.name, strings.Join(parts, ", "), t.charset, t.collation, t.engine), nil
}

// validateAutoIncrement enforces the MySQL rule that at most one column is
// AUTO_INCREMENT and that it belongs to the primary key.
func (t *Table) validateAutoIncrement() error {
	primary := make(map[string]bool, len(t.primaryKeys))
	for _, name := range t.primaryKeys {
		primary[name] = true
	}
	seen := ""
	for _, name := range t.fieldOrder {
		if !t.fields[name].autoInc {
			continue
		}
		if seen != "" {
			return fmt.Errorf("%w: table %q has AUTO_INCREMENT on both %q and %q", ErrLogic, t.name, seen, name)
		}
		if !primary[name] {
			return fmt.Errorf("%w: AUTO_INCREMENT field %q must be part of the primary key of table %q", ErrLogic, name, t.name)
		}
		seen = name
	}
	return nil
}

func (t *Table) buildAlter() (string, error) {
	if len(t.addFields)+len(t.dropFields) == 0 {
		return "", fmt.Errorf("%w: altering table %q requires at least one field", ErrLogic, t.name)
	}
	clauses := make([]string, 0, len(t.addFields)+len(t.dropFields))
	for _, f := range t.addFields {
		ddl, err := f.DDL()
		if err != nil {
			return "", err
		}
		clauses = append(clauses, "ADD "+ddl)
	}
	for _, f := range t.dropFields {
		clauses = append(clauses, "DROP COLUMN "+f.Name())
	}
	return fmt.Sprintf("ALTER TABLE %s %s;", t.name, strings.Join(clauses, ", ")), nil
}

// TableDescriptor is the structured table description the schema cache
// persists after a successful CREATE.
type TableDescriptor struct {
	Fields    map[string]FieldDescriptor `yaml:"fields"`
	Primary   map[string][]string        `yaml:"primary,omitempty"`
	Foreign   map[string]ForeignKey      `yaml:"foreign,omitempty"`
	Charset   string                     `yaml:"charset"`
	Collation string                     `yaml:"collation"`
	Engine    string                     `yaml:"engine"`
}

// Descriptor exports the full table description keyed by table name.
func (t *Table) Descriptor() (map[string]TableDescriptor, error) {
	if t.err != nil {
		return nil, t.err
	}
	fields := make(map[string]FieldDescriptor, len(t.fields))
	for name, f := range t.fields {
		desc, err := f.Descriptor()
		if err != nil {
			return nil, err
		}
		fields[name] = desc
	}
	desc := TableDescriptor{
		Fields:    fields,
		Charset:   t.charset,
		Collation: t.collation,
		Engine:    t.engine,
	}
	if len(t.primaryKeys) > 0 {
		keyName := t.primaryName
		if keyName == "" {
			keyName = "PRIMARY"
		}
		desc.Primary = map[string][]string{keyName: append([]string{}, t.primaryKeys...)}
	}
	if len(t.foreignKeys) > 0 {
		desc.Foreign = make(map[string]ForeignKey, len(t.foreignKeys))
		for field, fk := range t.foreignKeys {
			desc.Foreign[field] = fk
		}
	}
	return map[string]TableDescriptor{t.name: desc}, nil
}

// Alteration is the ADD/DROP COLUMN descriptor export the schema cache
// merges after a successful ALTER.
type Alteration struct {
	Add  map[string]FieldDescriptor `yaml:"ADD"`
	Drop map[string]FieldDescriptor `yaml:"DROP COLUMN"`
}

// Alteration exports the queued alter buckets in descriptor form.
func (t *Table) Alteration() (Alteration, error) {
	if t.err != nil {
		return Alteration{}, t.err
	}
	alt := Alteration{
		Add:  make(map[string]FieldDescriptor, len(t.addFields)),
		Drop: make(map[string]FieldDescriptor, len(t.dropFields)),
	}
	for _, f := range t.addFields {
		desc, err := f.Descriptor()
		if err != nil {
			return Alteration{}, err
		}
		alt.Add[f.Name()] = desc
	}
	for _, f := range t.dropFields {
		desc, err := f.Descriptor()
		if err != nil {
			return Alteration{}, err
		}
		alt.Drop[f.Name()] = desc
	}
	return alt, nil
}
