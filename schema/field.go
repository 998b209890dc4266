// Package schema builds MySQL DDL statements from fluent column and table
// definitions and exports structured descriptors for schema caching.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/querycraft/querycraft/internal/debug"
)

// FieldType identifies a MySQL column type.
type FieldType string

const (
	TypeInt        FieldType = "INT"
	TypeTinyInt    FieldType = "TINYINT"
	TypeSmallInt   FieldType = "SMALLINT"
	TypeMediumInt  FieldType = "MEDIUMINT"
	TypeBigInt     FieldType = "BIGINT"
	TypeFloat      FieldType = "FLOAT"
	TypeDouble     FieldType = "DOUBLE"
	TypeDecimal    FieldType = "DECIMAL"
	TypeDate       FieldType = "DATE"
	TypeDateTime   FieldType = "DATETIME"
	TypeTimestamp  FieldType = "TIMESTAMP"
	TypeTime       FieldType = "TIME"
	TypeChar       FieldType = "CHAR"
	TypeVarchar    FieldType = "VARCHAR"
	TypeText       FieldType = "TEXT"
	TypeTinyText   FieldType = "TINYTEXT"
	TypeMediumText FieldType = "MEDIUMTEXT"
	TypeLongText   FieldType = "LONGTEXT"
)

// typeLimits holds the default and maximum length/decimals for a sized type.
// Out-of-range requests fall back to the default instead of failing.
type typeLimits struct {
	defLength   int
	maxLength   int
	defDecimals int
	maxDecimals int
}

var intLimits = map[FieldType]typeLimits{
	TypeInt:       {defLength: 11, maxLength: 255},
	TypeTinyInt:   {defLength: 4, maxLength: 255},
	TypeSmallInt:  {defLength: 6, maxLength: 255},
	TypeMediumInt: {defLength: 9, maxLength: 255},
	TypeBigInt:    {defLength: 20, maxLength: 255},
}

var realLimits = map[FieldType]typeLimits{
	TypeFloat:   {defLength: 10, maxLength: 23, defDecimals: 2, maxDecimals: 22},
	TypeDouble:  {defLength: 16, maxLength: 53, defDecimals: 4, maxDecimals: 30},
	TypeDecimal: {defLength: 10, maxLength: 65, defDecimals: 2, maxDecimals: 30},
}

var stringLimits = map[FieldType]typeLimits{
	TypeChar:    {defLength: 1, maxLength: 255},
	TypeVarchar: {defLength: 255, maxLength: 16383},
}

// Field accumulates one column definition. A Field is single-use and not
// safe for concurrent use; the first invariant violation is latched and
// surfaced by DDL or Descriptor.
type Field struct {
	name        string
	ftype       FieldType
	length      int
	hasLength   bool
	decimals    int
	hasDecimals bool
	def         string
	hasDefault  bool
	defaultNull bool
	nullable    bool
	unsigned    bool
	autoInc     bool
	err         error
}

// NewField creates a column definition. Columns are nullable until NotNull
// is called; a type setter must be called before the field is consumed.
func NewField(name string) *Field {
	return &Field{name: name, nullable: true}
}

// Name returns the column name.
func (f *Field) Name() string { return f.name }

// Err returns the first invariant violation recorded on the field, if any.
func (f *Field) Err() error { return f.err }

// Integer sets the column type to INT with an optional display width.
func (f *Field) Integer(length ...int) *Field { return f.setIntType(TypeInt, length) }

// TinyInteger sets the column type to TINYINT with an optional display width.
func (f *Field) TinyInteger(length ...int) *Field { return f.setIntType(TypeTinyInt, length) }

// SmallInteger sets the column type to SMALLINT with an optional display width.
func (f *Field) SmallInteger(length ...int) *Field { return f.setIntType(TypeSmallInt, length) }

// MediumInteger sets the column type to MEDIUMINT with an optional display width.
func (f *Field) MediumInteger(length ...int) *Field { return f.setIntType(TypeMediumInt, length) }

// BigInteger sets the column type to BIGINT with an optional display width.
func (f *Field) BigInteger(length ...int) *Field { return f.setIntType(TypeBigInt, length) }

// Float sets the column type to FLOAT. size is (length, decimals), either
// one optional; out-of-range values fall back to the type defaults.
func (f *Field) Float(size ...int) *Field { return f.setRealType(TypeFloat, size) }

// Double sets the column type to DOUBLE. size is (length, decimals).
func (f *Field) Double(size ...int) *Field { return f.setRealType(TypeDouble, size) }

// Decimal sets the column type to DECIMAL. size is (length, decimals).
func (f *Field) Decimal(size ...int) *Field { return f.setRealType(TypeDecimal, size) }

// Date sets the column type to DATE.
func (f *Field) Date() *Field { return f.setPlainType(TypeDate) }

// DateTime sets the column type to DATETIME.
func (f *Field) DateTime() *Field { return f.setPlainType(TypeDateTime) }

// Timestamp sets the column type to TIMESTAMP.
func (f *Field) Timestamp() *Field { return f.setPlainType(TypeTimestamp) }

// Time sets the column type to TIME.
func (f *Field) Time() *Field { return f.setPlainType(TypeTime) }

// Char sets the column type to CHAR with an optional length.
func (f *Field) Char(length ...int) *Field { return f.setStringType(TypeChar, length) }

// Varchar sets the column type to VARCHAR with an optional length.
func (f *Field) Varchar(length ...int) *Field { return f.setStringType(TypeVarchar, length) }

// Text sets the column type to TEXT.
func (f *Field) Text() *Field { return f.setPlainType(TypeText) }

// TinyText sets the column type to TINYTEXT.
func (f *Field) TinyText() *Field { return f.setPlainType(TypeTinyText) }

// MediumText sets the column type to MEDIUMTEXT.
func (f *Field) MediumText() *Field { return f.setPlainType(TypeMediumText) }

// LongText sets the column type to LONGTEXT.
func (f *Field) LongText() *Field { return f.setPlainType(TypeLongText) }

func (f *Field) setPlainType(t FieldType) *Field {
	f.ftype = t
	f.hasLength = false
	f.hasDecimals = false
	return f
}

func (f *Field) setIntType(t FieldType, args []int) *Field {
	lim := intLimits[t]
	length := lim.defLength
	if len(args) > 0 {
		length = args[0]
	}
	if length < 1 || length > lim.maxLength {
		debug.Warn("field length out of range, using type default",
			"field", f.name, "type", string(t), "length", length, "default", lim.defLength)
		length = lim.defLength
	}
	f.ftype = t
	f.length = length
	f.hasLength = true
	f.hasDecimals = false
	return f
}

// setRealType resolves length and decimals for FLOAT/DOUBLE/DECIMAL.
// Decimals clamp to [0, max] falling back to the type default; length
// falls back to the type default when out of range and is then raised to
// decimals+1 when needed, so length always strictly exceeds decimals.
func (f *Field) setRealType(t FieldType, args []int) *Field {
	lim := realLimits[t]
	decimals := lim.defDecimals
	if len(args) > 1 {
		decimals = args[1]
	}
	if decimals < 0 || decimals > lim.maxDecimals {
		debug.Warn("field decimals out of range, using type default",
			"field", f.name, "type", string(t), "decimals", decimals, "default", lim.defDecimals)
		decimals = lim.defDecimals
	}
	length := lim.defLength
	if len(args) > 0 {
		length = args[0]
	}
	if length < 1 || length > lim.maxLength {
		debug.Warn("field length out of range, using type default",
			"field", f.name, "type", string(t), "length", length, "default", lim.defLength)
		length = lim.defLength
	}
	if length <= decimals {
		length = decimals + 1
	}
	f.ftype = t
	f.length = length
	f.hasLength = true
	f.decimals = decimals
	f.hasDecimals = true
	return f
}

func (f *Field) setStringType(t FieldType, args []int) *Field {
	lim := stringLimits[t]
	length := lim.defLength
	if len(args) > 0 {
		length = args[0]
	}
	if length < 1 || length > lim.maxLength {
		debug.Warn("field length out of range, using type default",
			"field", f.name, "type", string(t), "length", length, "default", lim.defLength)
		length = lim.defLength
	}
	f.ftype = t
	f.length = length
	f.hasLength = true
	f.hasDecimals = false
	return f
}

// Default sets the column default. The value must be a scalar or nil; nil
// records a NULL default and contradicts a previous NotNull call. Defaults
// are schema-time constants, so strings are quoted without escape markers.
func (f *Field) Default(value any) *Field {
	if f.err != nil {
		return f
	}
	switch v := value.(type) {
	case nil:
		if !f.nullable {
			f.err = fmt.Errorf("%w: field %q cannot default to NULL, it is NOT NULL", ErrLogic, f.name)
			return f
		}
		f.def = "NULL"
		f.defaultNull = true
	case string:
		f.def = "'" + v + "'"
	case bool:
		if v {
			f.def = "TRUE"
		} else {
			f.def = "FALSE"
		}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f.def = fmt.Sprintf("%d", v)
	case float32:
		f.def = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		f.def = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		f.err = fmt.Errorf("%w: field %q default must be a scalar or nil, got %T", ErrInvalidArgument, f.name, value)
		return f
	}
	f.hasDefault = true
	return f
}

// NotNull marks the column NOT NULL. Contradicts a previous Default(nil).
func (f *Field) NotNull() *Field {
	if f.err != nil {
		return f
	}
	if f.defaultNull {
		f.err = fmt.Errorf("%w: field %q cannot be NOT NULL, it defaults to NULL", ErrLogic, f.name)
		return f
	}
	f.nullable = false
	return f
}

// Unsigned marks the column UNSIGNED. Only valid on numeric types.
func (f *Field) Unsigned() *Field {
	if f.err != nil {
		return f
	}
	if !f.numeric() {
		f.err = fmt.Errorf("%w: field %q cannot be UNSIGNED, type %s is not numeric", ErrLogic, f.name, f.typeName())
		return f
	}
	f.unsigned = true
	return f
}

// AutoIncrement marks the column AUTO_INCREMENT. Only valid on numeric types.
func (f *Field) AutoIncrement() *Field {
	if f.err != nil {
		return f
	}
	if !f.numeric() {
		f.err = fmt.Errorf("%w: field %q cannot be AUTO_INCREMENT, type %s is not numeric", ErrLogic, f.name, f.typeName())
		return f
	}
	f.autoInc = true
	return f
}

func (f *Field) numeric() bool {
	switch f.ftype {
	case TypeInt, TypeTinyInt, TypeSmallInt, TypeMediumInt, TypeBigInt,
		TypeFloat, TypeDouble, TypeDecimal:
		return true
	}
	return false
}

func (f *Field) typeName() string {
	if f.ftype == "" {
		return "(unset)"
	}
	return string(f.ftype)
}

// typeDDL renders the type with its length/decimals suffix, e.g.
// VARCHAR(255) or DECIMAL(10,2).
func (f *Field) typeDDL() string {
	switch {
	case f.hasDecimals:
		return fmt.Sprintf("%s(%d,%d)", f.ftype, f.length, f.decimals)
	case f.hasLength:
		return fmt.Sprintf("%s(%d)", f.ftype, f.length)
	default:
		return string(f.ftype)
	}
}

// DDL renders the column definition fragment used inside CREATE/ALTER
// statements: name type [DEFAULT x] [NOT NULL] [UNSIGNED] [AUTO_INCREMENT].
func (f *Field) DDL() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.ftype == "" {
		return "", fmt.Errorf("%w: field %q", ErrNoType, f.name)
	}
	var b strings.Builder
	b.WriteString(f.name)
	b.WriteString(" ")
	b.WriteString(f.typeDDL())
	if f.hasDefault {
		b.WriteString(" DEFAULT ")
		b.WriteString(f.def)
	}
	if !f.nullable {
		b.WriteString(" NOT NULL")
	}
	if f.unsigned {
		b.WriteString(" UNSIGNED")
	}
	if f.autoInc {
		b.WriteString(" AUTO_INCREMENT")
	}
	return b.String(), nil
}

// FieldDescriptor is the structured column description consumed by Table
// and by the schema cache.
type FieldDescriptor struct {
	Type          string `yaml:"type"`
	Default       string `yaml:"default,omitempty"`
	NotNull       bool   `yaml:"not_null"`
	Unsigned      bool   `yaml:"unsigned"`
	AutoIncrement bool   `yaml:"auto_increment"`
}

// Descriptor exports the column as a FieldDescriptor. It fails if no type
// setter was called or if an invariant violation was latched earlier.
func (f *Field) Descriptor() (FieldDescriptor, error) {
	if f.err != nil {
		return FieldDescriptor{}, f.err
	}
	if f.ftype == "" {
		return FieldDescriptor{}, fmt.Errorf("%w: field %q", ErrNoType, f.name)
	}
	return FieldDescriptor{
		Type:          f.typeDDL(),
		Default:       f.def,
		NotNull:       !f.nullable,
		Unsigned:      f.unsigned,
		AutoIncrement: f.autoInc,
	}, nil
}
