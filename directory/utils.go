package directory

import (
	"strings"

	"github.com/nmcclain/ldap"
)

// NormalizeDN lowercases a DN and strips whitespace around its RDN
// separators, so that "CN=Jane, DC=Example" and "cn=jane,dc=example"
// compare equal.
func NormalizeDN(dn string) string {
	parts := strings.Split(dn, ",")
	for i, part := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(part))
	}
	return strings.Join(parts, ",")
}

// dnWithin reports whether dn equals base or lives somewhere below it.
// Both arguments must already be normalized.
func dnWithin(dn, base string) bool {
	return dn == base || strings.HasSuffix(dn, ","+base)
}

func CloneLdapEntry(input *ldap.Entry) (out ldap.Entry) {
	out.DN = input.DN
	out.Attributes = make([]*ldap.EntryAttribute, len(input.Attributes))
	for i, value := range input.Attributes {
		cloned := CloneLdapAttribute(value)
		out.Attributes[i] = &cloned
	}
	return
}

func CloneLdapAttribute(input *ldap.EntryAttribute) (out ldap.EntryAttribute) {
	out.Name = input.Name
	out.Values = make([]string, len(input.Values))
	copy(out.Values, input.Values)
	return
}
