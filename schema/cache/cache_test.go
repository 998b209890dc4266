package cache

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querycraft/querycraft/schema"
)

func TestLoadMissingFile(t *testing.T) {
	c := New(afero.NewMemMapFs(), "schema.yml")
	require.NoError(t, c.Load())
	assert.Empty(t, c.Tables)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	table := schema.NewTable("users",
		schema.NewField("id").Integer().NotNull().AutoIncrement(),
		schema.NewField("name").Varchar(100),
	).PrimaryKey("id")
	desc, err := table.Descriptor()
	require.NoError(t, err)

	c := New(fs, "schema.yml")
	c.PutTables(desc)
	require.NoError(t, c.Save())

	reloaded := New(fs, "schema.yml")
	require.NoError(t, reloaded.Load())
	assert.Equal(t, c.Tables, reloaded.Tables)
	assert.True(t, reloaded.HasTable("users"))
	assert.Equal(t, []string{"users"}, reloaded.TableNames())
}

func TestApplyAlteration(t *testing.T) {
	c := New(afero.NewMemMapFs(), "schema.yml")
	table := schema.NewTable("users", schema.NewField("id").Integer(), schema.NewField("bio").Text())
	desc, err := table.Descriptor()
	require.NoError(t, err)
	c.PutTables(desc)

	alt, err := schema.NewTable("users", schema.NewField("id").Integer()).
		AddFields(schema.NewField("email").Varchar(190)).
		RemoveFields(schema.NewField("bio").Text()).
		Alteration()
	require.NoError(t, err)

	require.NoError(t, c.ApplyAlteration("users", alt))
	fields := c.Tables["users"].Fields
	assert.Contains(t, fields, "email")
	assert.NotContains(t, fields, "bio")
}

func TestApplyAlterationUnknownTable(t *testing.T) {
	c := New(afero.NewMemMapFs(), "schema.yml")
	err := c.ApplyAlteration("ghost", schema.Alteration{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestDropTable(t *testing.T) {
	c := New(afero.NewMemMapFs(), "schema.yml")
	desc, err := schema.NewTable("users", schema.NewField("id").Integer()).Descriptor()
	require.NoError(t, err)
	c.PutTables(desc)
	c.DropTable("users")
	assert.False(t, c.HasTable("users"))
}
