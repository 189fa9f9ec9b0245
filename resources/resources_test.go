package resources

import (
	"testing"

	"github.com/glennmatthews/cot/errors"
	"github.com/glennmatthews/cot/ovf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTypeSuffix(t *testing.T) {
	value, typ := SplitTypeSuffix("admin+string")
	assert.Equal(t, "admin", value)
	assert.Equal(t, "string", typ)

	value, typ = SplitTypeSuffix("a+b+boolean")
	assert.Equal(t, "a+b", value)
	assert.Equal(t, "boolean", typ)

	value, typ = SplitTypeSuffix("key=value+not-a-type")
	assert.Equal(t, "key=value+not-a-type", value)
	assert.Equal(t, "", typ)

	value, typ = SplitTypeSuffix("no-plus-here")
	assert.Equal(t, "no-plus-here", value)
	assert.Equal(t, "", typ)
}

func TestValidateAndCanonicalizeBoolean(t *testing.T) {
	boolType := "boolean"
	prop := ovf.Property{Key: "enabled", Type: &boolType}

	v, err := ValidateAndCanonicalize(prop, "yes")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	_, err = ValidateAndCanonicalize(prop, "maybe")
	assert.True(t, errors.Is(err, errors.InvalidInput))
}

func TestValidateAndCanonicalizeMaxLen(t *testing.T) {
	qual := "MaxLen(4)"
	prop := ovf.Property{Key: "short", Qualifiers: &qual}

	_, err := ValidateAndCanonicalize(prop, "abcde")
	assert.Error(t, err)

	v, err := ValidateAndCanonicalize(prop, "abcd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", v)
}

func TestValidateAndCanonicalizeValueMap(t *testing.T) {
	qual := "ValueMap{small,medium,large}"
	prop := ovf.Property{Key: "size", Qualifiers: &qual}

	_, err := ValidateAndCanonicalize(prop, "huge")
	assert.Error(t, err)

	v, err := ValidateAndCanonicalize(prop, "medium")
	require.NoError(t, err)
	assert.Equal(t, "medium", v)
}

func TestEditPropertyCreatesWithDefaultType(t *testing.T) {
	d, err := ovf.Parse(minimalOVF)
	require.NoError(t, err)
	vs, err := d.VirtualSystem()
	require.NoError(t, err)
	ps := vs.ProductSection()

	require.NoError(t, EditProperty(ps, "new-key", "hello", nil))
	prop, ok := ps.PropertyByKey("new-key")
	require.True(t, ok)
	require.NotNil(t, prop.Type)
	assert.Equal(t, "string", *prop.Type)
	assert.Equal(t, "hello", *prop.Value)
}

func TestAddAndRemoveFile(t *testing.T) {
	d, err := ovf.Parse(minimalOVF)
	require.NoError(t, err)

	require.NoError(t, AddFile(d, AddFileRequest{ID: "file1", Href: "disk1.vmdk", Size: 1024}, nil))
	_, ok := d.References().FileByID("file1")
	assert.True(t, ok)

	removed, err := RemoveFile(d, "file1", "")
	require.NoError(t, err)
	assert.Equal(t, "file1", removed.ID)
}

func TestAddFileConflictRequiresConfirmation(t *testing.T) {
	d, err := ovf.Parse(minimalOVF)
	require.NoError(t, err)
	require.NoError(t, AddFile(d, AddFileRequest{ID: "file1", Href: "a.vmdk", Size: 1}, nil))

	err = AddFile(d, AddFileRequest{ID: "file1", Href: "b.vmdk", Size: 2}, nil)
	assert.True(t, errors.Is(err, errors.Conflict))

	err = AddFile(d, AddFileRequest{ID: "file1", Href: "b.vmdk", Size: 2}, func(ovf.File) bool { return true })
	require.NoError(t, err)
	f, _ := d.References().FileByID("file1")
	assert.Equal(t, "b.vmdk", f.Href)
}

var minimalOVF = []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Envelope xmlns="http://schemas.dmtf.org/ovf/envelope/1" xmlns:ovf="http://schemas.dmtf.org/ovf/envelope/1" xmlns:rasd="http://schemas.dmtf.org/wbem/wscim/1/cim-schema/2/CIM_ResourceAllocationSettingData">
  <References/>
  <VirtualSystem ovf:id="vm1">
    <Name>vm1</Name>
  </VirtualSystem>
</Envelope>`)
