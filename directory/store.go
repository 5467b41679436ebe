package directory

import (
	"fmt"
	"sync"

	"github.com/nmcclain/ldap"
)

// store is the in-memory entry set behind a fixture server. Entries keep
// their insertion order so search results are deterministic.
type store struct {
	lock    sync.RWMutex
	order   []string
	entries map[string]*ldap.Entry
}

func newStore() *store {
	return &store{entries: map[string]*ldap.Entry{}}
}

func (s *store) add(entry *ldap.Entry) error {
	key := NormalizeDN(entry.DN)

	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.entries[key]; ok {
		return fmt.Errorf("entry %s already exists", entry.DN)
	}
	s.order = append(s.order, key)
	s.entries[key] = entry
	return nil
}

func (s *store) get(dn string) (*ldap.Entry, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	entry, ok := s.entries[NormalizeDN(dn)]
	return entry, ok
}

// under returns clones of the entries at or below base, in insertion order.
func (s *store) under(base string) []*ldap.Entry {
	key := NormalizeDN(base)

	s.lock.RLock()
	defer s.lock.RUnlock()
	var out []*ldap.Entry
	for _, dn := range s.order {
		if dnWithin(dn, key) {
			cloned := CloneLdapEntry(s.entries[dn])
			out = append(out, &cloned)
		}
	}
	return out
}

func (s *store) len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.entries)
}
