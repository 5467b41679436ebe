package directory

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/go-ldap/ldif"
	"github.com/nmcclain/ldap"
)

// SchemaDN is the DN of the subschema subentry served by the fixture.
const SchemaDN = "cn=schema"

//go:embed standard.schema.ldif
var standardSchemaLDIF string

// definition is one attribute type or object class in RFC 4512 notation.
// Only the OID and NAME tokens are interpreted; the rest of the description
// is kept verbatim and handed to clients as-is.
type definition struct {
	oid   string
	names []string
	raw   string
}

// Schema holds merged attribute type and object class definitions for a
// fixture server. Schemas are parsed from LDIF subschema entries, the same
// format OpenLDAP and friends export under cn=schema.
type Schema struct {
	attributeTypes []definition
	objectClasses  []definition
}

// ParseSchema reads a schema resource. The resource must contain at least
// one LDIF entry carrying attributeTypes and/or objectClasses values.
func ParseSchema(r Resource) (*Schema, error) {
	data, err := r.read()
	if err != nil {
		return nil, &SchemaError{Resource: r.String(), Err: err}
	}
	s, err := parseSchemaLDIF(string(data))
	if err != nil {
		return nil, &SchemaError{Resource: r.String(), Err: err}
	}
	return s, nil
}

// StandardSchema returns the built-in standard schema: the core RFC 4519
// and RFC 2798 attribute types and object classes.
func StandardSchema() *Schema {
	s, err := parseSchemaLDIF(standardSchemaLDIF)
	if err != nil {
		panic(err) // embedded file, cannot fail at runtime
	}
	return s
}

// MergeSchemas combines schemas into one. When two schemas define the same
// OID, the definition from the earliest schema wins.
func MergeSchemas(schemas ...*Schema) *Schema {
	out := &Schema{}
	seenAttr := map[string]bool{}
	seenClass := map[string]bool{}
	for _, s := range schemas {
		for _, def := range s.attributeTypes {
			if !seenAttr[def.oid] {
				seenAttr[def.oid] = true
				out.attributeTypes = append(out.attributeTypes, def)
			}
		}
		for _, def := range s.objectClasses {
			if !seenClass[def.oid] {
				seenClass[def.oid] = true
				out.objectClasses = append(out.objectClasses, def)
			}
		}
	}
	return out
}

// AttributeTypes returns the raw attribute type definitions.
func (s *Schema) AttributeTypes() []string {
	return rawDefinitions(s.attributeTypes)
}

// ObjectClasses returns the raw object class definitions.
func (s *Schema) ObjectClasses() []string {
	return rawDefinitions(s.objectClasses)
}

// HasAttributeType reports whether the schema defines an attribute type with
// the given name or OID. The match is case-insensitive.
func (s *Schema) HasAttributeType(name string) bool {
	return hasDefinition(s.attributeTypes, name)
}

// HasObjectClass reports whether the schema defines an object class with the
// given name or OID. The match is case-insensitive.
func (s *Schema) HasObjectClass(name string) bool {
	return hasDefinition(s.objectClasses, name)
}

// entry renders the schema as the subschema subentry.
func (s *Schema) entry() *ldap.Entry {
	return &ldap.Entry{
		DN: SchemaDN,
		Attributes: []*ldap.EntryAttribute{
			{Name: "objectClass", Values: []string{"top", "subschema"}},
			{Name: "cn", Values: []string{"schema"}},
			{Name: "attributeTypes", Values: s.AttributeTypes()},
			{Name: "objectClasses", Values: s.ObjectClasses()},
		},
	}
}

func rawDefinitions(defs []definition) []string {
	out := make([]string, len(defs))
	for i, def := range defs {
		out[i] = def.raw
	}
	return out
}

func hasDefinition(defs []definition, name string) bool {
	for _, def := range defs {
		if strings.EqualFold(def.oid, name) {
			return true
		}
		for _, n := range def.names {
			if strings.EqualFold(n, name) {
				return true
			}
		}
	}
	return false
}

func parseSchemaLDIF(data string) (*Schema, error) {
	l, err := ldif.Parse(data)
	if err != nil {
		return nil, err
	}

	s := &Schema{}
	for _, record := range l.Entries {
		if record.Entry == nil {
			continue
		}
		for _, attr := range record.Entry.Attributes {
			var defs *[]definition
			switch {
			case strings.EqualFold(attr.Name, "attributeTypes"):
				defs = &s.attributeTypes
			case strings.EqualFold(attr.Name, "objectClasses"):
				defs = &s.objectClasses
			default:
				continue
			}
			for _, value := range attr.Values {
				def, err := parseDefinition(value)
				if err != nil {
					return nil, err
				}
				*defs = append(*defs, def)
			}
		}
	}
	if len(s.attributeTypes) == 0 && len(s.objectClasses) == 0 {
		return nil, errors.New("no attributeTypes or objectClasses definitions found")
	}
	return s, nil
}

func parseDefinition(raw string) (definition, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "(") || !strings.HasSuffix(trimmed, ")") {
		return definition{}, fmt.Errorf("definition %q is not parenthesized", raw)
	}
	fields := strings.Fields(trimmed[1 : len(trimmed)-1])
	if len(fields) == 0 {
		return definition{}, fmt.Errorf("definition %q is empty", raw)
	}

	def := definition{oid: fields[0], raw: trimmed}
	for i := 0; i < len(fields); i++ {
		if fields[i] != "NAME" {
			continue
		}
		for j := i + 1; j < len(fields); j++ {
			token := fields[j]
			if token == "(" {
				continue
			}
			if token == ")" || !strings.HasPrefix(token, "'") {
				break
			}
			def.names = append(def.names, strings.Trim(token, "'"))
		}
		break
	}
	return def, nil
}
