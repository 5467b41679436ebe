package directory

import (
	"net"

	"github.com/nmcclain/ldap"
	"github.com/rs/zerolog/log"
)

// searcher answers search requests from the store. Filter evaluation,
// scope checks, attribute selection and size limits are left to the
// server (EnforceLDAP); the handler only picks the candidate entries.
type searcher struct {
	baseDNs []string
	schema  *Schema
	store   *store
}

func (s *searcher) Search(boundDN string, req ldap.SearchRequest, conn net.Conn) (ldap.ServerSearchResult, error) {
	log.Debug().Str("boundDN", boundDN).Object("request", LogSearchObject(&req)).Msg("Incoming search request")

	if len(req.Attributes) == 1 && req.Attributes[0] == "supportedSASLMechanisms" {
		return s.saslRequest(boundDN, req, conn)
	}

	base := NormalizeDN(req.BaseDN)
	switch {
	case base == "":
		return singleEntryResult(s.rootDSE()), nil
	case base == SchemaDN:
		return singleEntryResult(s.schema.entry()), nil
	}

	return ldap.ServerSearchResult{
		Entries:    s.store.under(req.BaseDN),
		ResultCode: ldap.LDAPResultSuccess,
	}, nil
}

// rootDSE describes the server itself: its naming contexts and where the
// subschema subentry lives.
func (s *searcher) rootDSE() *ldap.Entry {
	return &ldap.Entry{
		DN: "",
		Attributes: []*ldap.EntryAttribute{
			{Name: "objectClass", Values: []string{"top"}},
			{Name: "namingContexts", Values: s.baseDNs},
			{Name: "subschemaSubentry", Values: []string{SchemaDN}},
			{Name: "supportedLDAPVersion", Values: []string{"3"}},
		},
	}
}

func (s *searcher) saslRequest(dn string, req ldap.SearchRequest, conn net.Conn) (ldap.ServerSearchResult, error) {
	return singleEntryResult(&ldap.Entry{
		DN: "",
		Attributes: []*ldap.EntryAttribute{
			{Name: "supportedSASLMechanisms", Values: []string{}},
		},
	}), nil
}

func singleEntryResult(entry *ldap.Entry) ldap.ServerSearchResult {
	return ldap.ServerSearchResult{
		Entries:    []*ldap.Entry{entry},
		ResultCode: ldap.LDAPResultSuccess,
	}
}
