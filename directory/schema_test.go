package directory

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planetSchemaLDIF = `dn: cn=schema
objectClass: top
objectClass: subschema
cn: schema
attributeTypes: ( 1.3.6.1.4.1.99999.1.1 NAME 'planet' EQUALITY caseIgnoreMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )
attributeTypes: ( 1.3.6.1.4.1.99999.1.2 NAME ( 'moon' 'satellite' ) SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )
objectClasses: ( 1.3.6.1.4.1.99999.2.1 NAME 'celestialBody' SUP top STRUCTURAL MUST planet MAY moon )
`

var schemaFS = fstest.MapFS{
	"planet.schema.ldif": &fstest.MapFile{Data: []byte(planetSchemaLDIF)},
	"empty.ldif":         &fstest.MapFile{Data: []byte("dn: cn=schema\ncn: schema\n")},
	"garbage.ldif":       &fstest.MapFile{Data: []byte("this is not ldif at all")},
}

func TestStandardSchema(t *testing.T) {
	s := StandardSchema()

	assert.True(t, s.HasAttributeType("cn"))
	assert.True(t, s.HasAttributeType("commonName"))
	assert.True(t, s.HasAttributeType("2.5.4.3"))
	assert.True(t, s.HasObjectClass("inetOrgPerson"))
	assert.True(t, s.HasObjectClass("domain"))
	assert.False(t, s.HasAttributeType("planet"))
}

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema(FSFile(schemaFS, "planet.schema.ldif"))
	require.NoError(t, err)

	assert.True(t, s.HasAttributeType("planet"))
	assert.True(t, s.HasAttributeType("moon"))
	assert.True(t, s.HasAttributeType("satellite"))
	assert.True(t, s.HasObjectClass("celestialBody"))
	assert.Len(t, s.AttributeTypes(), 2)
	assert.Len(t, s.ObjectClasses(), 1)
}

func TestParseSchemaErrors(t *testing.T) {
	_, err := ParseSchema(FSFile(schemaFS, "missing.ldif"))
	schemaErr := &SchemaError{}
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "missing.ldif", schemaErr.Resource)

	_, err = ParseSchema(FSFile(schemaFS, "empty.ldif"))
	assert.ErrorAs(t, err, &schemaErr)

	_, err = ParseSchema(FSFile(schemaFS, "garbage.ldif"))
	assert.ErrorAs(t, err, &schemaErr)
}

func TestMergeSchemasFirstWins(t *testing.T) {
	first, err := parseSchemaLDIF(`dn: cn=schema
attributeTypes: ( 1.2.3 NAME 'color' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )
`)
	require.NoError(t, err)
	second, err := parseSchemaLDIF(`dn: cn=schema
attributeTypes: ( 1.2.3 NAME 'colour' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )
attributeTypes: ( 1.2.4 NAME 'shape' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )
`)
	require.NoError(t, err)

	merged := MergeSchemas(first, second)
	assert.Len(t, merged.AttributeTypes(), 2)
	assert.True(t, merged.HasAttributeType("color"))
	assert.False(t, merged.HasAttributeType("colour"))
	assert.True(t, merged.HasAttributeType("shape"))
}

func TestParseDefinition(t *testing.T) {
	def, err := parseDefinition("( 2.5.4.3 NAME ( 'cn' 'commonName' ) SUP name )")
	require.NoError(t, err)
	assert.Equal(t, "2.5.4.3", def.oid)
	assert.Equal(t, []string{"cn", "commonName"}, def.names)

	_, err = parseDefinition("2.5.4.3 NAME 'cn'")
	assert.Error(t, err)
}
