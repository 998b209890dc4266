// Package cache persists table descriptors to a YAML file, mirroring the
// schema the builders have applied to the database.
package cache

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/querycraft/querycraft/schema"
)

// Cache is a YAML-backed snapshot of the known database schema. It is not
// safe for concurrent use.
type Cache struct {
	fs     afero.Fs
	path   string
	Tables map[string]schema.TableDescriptor `yaml:"tables"`
}

// New creates a cache bound to path on fs.
func New(fs afero.Fs, path string) *Cache {
	return &Cache{
		fs:     fs,
		path:   path,
		Tables: map[string]schema.TableDescriptor{},
	}
}

// Load reads the cache file. A missing file leaves the cache empty.
func (c *Cache) Load() error {
	data, err := afero.ReadFile(c.fs, c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read schema cache %s: %w", c.path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse schema cache %s: %w", c.path, err)
	}
	if c.Tables == nil {
		c.Tables = map[string]schema.TableDescriptor{}
	}
	return nil
}

// Save writes the cache file.
func (c *Cache) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize schema cache: %w", err)
	}
	if err := afero.WriteFile(c.fs, c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema cache %s: %w", c.path, err)
	}
	return nil
}

// PutTables merges table descriptors, as exported by Table.Descriptor
// after a successful CREATE.
func (c *Cache) PutTables(descriptors map[string]schema.TableDescriptor) {
	for name, desc := range descriptors {
		c.Tables[name] = desc
	}
}

// DropTable removes a table from the snapshot after a successful DROP.
func (c *Cache) DropTable(name string) {
	delete(c.Tables, name)
}

// HasTable reports whether the snapshot knows the table.
func (c *Cache) HasTable(name string) bool {
	_, ok := c.Tables[name]
	return ok
}

// TableNames returns the known table names in sorted order.
func (c *Cache) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyAlteration merges an ALTER's ADD/DROP COLUMN buckets into a known
// table, as exported by Table.Alteration after a successful ALTER.
func (c *Cache) ApplyAlteration(table string, alt schema.Alteration) error {
	desc, ok := c.Tables[table]
	if !ok {
		return fmt.Errorf("schema cache has no table %q to alter", table)
	}
	if desc.Fields == nil {
		desc.Fields = map[string]schema.FieldDescriptor{}
	}
	for name, field := range alt.Add {
		desc.Fields[name] = field
	}
	for name := range alt.Drop {
		delete(desc.Fields, name)
	}
	c.Tables[table] = desc
	return nil
}
