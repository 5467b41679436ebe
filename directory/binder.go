package directory

import (
	"net"
	"strings"

	"github.com/nmcclain/ldap"
	"github.com/rs/zerolog/log"
)

// binder answers bind requests. Anonymous binds always succeed; otherwise
// the DN must either match one of the additional bind credentials or an
// entry in the store carrying a matching userPassword value.
type binder struct {
	credentials map[string]string // normalized DN -> password
	store       *store
}

func (b *binder) Bind(bindDN, bindSimplePw string, conn net.Conn) (ldap.LDAPResultCode, error) {
	log.Debug().Str("bindDN", bindDN).Msg("Incoming bind request")

	if bindDN == "" && bindSimplePw == "" {
		return ldap.LDAPResultSuccess, nil
	}
	if bindSimplePw == "" {
		return ldap.LDAPResultInvalidCredentials, nil
	}

	if password, ok := b.credentials[NormalizeDN(bindDN)]; ok && password == bindSimplePw {
		return ldap.LDAPResultSuccess, nil
	}

	if entry, ok := b.store.get(bindDN); ok {
		for _, attr := range entry.Attributes {
			if !strings.EqualFold(attr.Name, "userPassword") {
				continue
			}
			for _, value := range attr.Values {
				if value == bindSimplePw {
					return ldap.LDAPResultSuccess, nil
				}
			}
		}
	}

	return ldap.LDAPResultInvalidCredentials, nil
}
