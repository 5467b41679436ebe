package directory

import (
	"fmt"
	"net"
	"sync"

	ldapv3 "github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldif"
	"github.com/nmcclain/ldap"
	"github.com/rs/zerolog/log"
)

// Administrative credentials installed on every fixture server so tests can
// always bind without seeding a user entry. Never expose a fixture server
// outside a test environment.
const (
	BindDN       = "cn=Directory Manager"
	BindPassword = "password"
)

// Factory builds a single in-memory directory server from its exported
// fields. Populate the fields, then call Server; the first call validates
// the configuration, starts the server and imports the configured LDIF
// resources, and every later call returns the same instance. Factories are
// single-owner and not safe for concurrent use.
type Factory struct {
	// BaseDNs are the naming contexts served by the directory.
	// At least one is required.
	BaseDNs []string

	// SchemaFiles are LDIF subschema resources merged into the server
	// schema, after the standard schema unless LoadDefaultSchemas is off.
	SchemaFiles []Resource

	// LDIFFiles are seed entries imported once the server is listening.
	LDIFFiles []Resource

	// Credentials are additional bind DN/password pairs installed next
	// to the default BindDN/BindPassword pair.
	Credentials map[string]string

	// LoadDefaultSchemas includes the built-in standard schema.
	// NewFactory turns it on.
	LoadDefaultSchemas bool

	// Addr is the listen address. The default 127.0.0.1:0 picks an
	// ephemeral port; read the chosen one from Server.Addr.
	Addr string

	server *Server
}

// NewFactory returns a factory with the defaults applied.
func NewFactory(baseDNs ...string) *Factory {
	return &Factory{
		BaseDNs:            baseDNs,
		LoadDefaultSchemas: true,
		Addr:               "127.0.0.1:0",
	}
}

// SetBaseDN configures a single base DN.
func (f *Factory) SetBaseDN(baseDN string) {
	f.BaseDNs = []string{baseDN}
}

// SetSchemaFile configures a single schema resource.
func (f *Factory) SetSchemaFile(r Resource) {
	f.SchemaFiles = []Resource{r}
}

// SetLDIFFile configures a single seed-data resource.
func (f *Factory) SetLDIFFile(r Resource) {
	f.LDIFFiles = []Resource{r}
}

// Validate checks the mandatory configuration.
func (f *Factory) Validate() error {
	if len(f.BaseDNs) == 0 {
		return &ConfigError{Property: "baseDNs", Reason: "at least one base DN must be provided"}
	}
	return nil
}

// Server produces the directory server, starting it on first use.
// When any step fails, nothing is left listening and the factory stays
// unproduced, so a corrected configuration can try again.
func (f *Factory) Server() (*Server, error) {
	if f.server != nil {
		return f.server, nil
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	schema, err := f.buildSchema()
	if err != nil {
		return nil, err
	}

	credentials := map[string]string{NormalizeDN(BindDN): BindPassword}
	for dn, password := range f.Credentials {
		credentials[NormalizeDN(dn)] = password
	}

	server, err := start(f.BaseDNs, schema, credentials, f.Addr)
	if err != nil {
		return nil, err
	}
	for _, r := range f.LDIFFiles {
		if err := server.ImportLDIF(r); err != nil {
			server.Shutdown()
			return nil, err
		}
	}

	f.server = server
	return server, nil
}

// Destroy shuts the produced server down. Calling it again, or without a
// produced server, does nothing.
func (f *Factory) Destroy() {
	if f.server != nil {
		f.server.Shutdown()
	}
}

func (f *Factory) buildSchema() (*Schema, error) {
	schemas := make([]*Schema, 0, len(f.SchemaFiles)+1)
	if f.LoadDefaultSchemas {
		schemas = append(schemas, StandardSchema())
	}
	for _, r := range f.SchemaFiles {
		s, err := ParseSchema(r)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return MergeSchemas(schemas...), nil
}

// Stats is a point-in-time snapshot of the underlying server counters.
type Stats struct {
	Conns    int
	Binds    int
	Unbinds  int
	Searches int
}

// Server is a running in-memory directory. It is created by a Factory,
// which also owns its teardown; other callers just use the handle.
type Server struct {
	baseDNs []string
	schema  *Schema
	store   *store
	ldap    *ldap.Server
	addr    string

	quit     chan bool
	exited   chan struct{}
	shutdown sync.Once
}

func start(baseDNs []string, schema *Schema, credentials map[string]string, addr string) (*Server, error) {
	store := newStore()

	s := ldap.NewServer()
	s.EnforceLDAP = true
	s.SetStats(true)
	s.BindFunc("", &binder{credentials: credentials, store: store})
	s.SearchFunc("", &searcher{baseDNs: baseDNs, schema: schema, store: store})

	quit := make(chan bool)
	s.QuitChannel(quit)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("directory: listen on %s: %w", addr, err)
	}

	server := &Server{
		baseDNs: baseDNs,
		schema:  schema,
		store:   store,
		ldap:    s,
		addr:    ln.Addr().String(),
		quit:    quit,
		exited:  make(chan struct{}),
	}
	go func() {
		if err := s.Serve(ln); err != nil {
			log.Error().Err(err).Msg("Directory server error")
		}
		close(server.exited)
	}()

	log.Info().Str("addr", server.addr).Strs("baseDNs", baseDNs).Msg("Directory server listening")
	return server, nil
}

// Addr returns the host:port the server listens on.
func (s *Server) Addr() string {
	return s.addr
}

// URL returns the ldap:// URL of the server.
func (s *Server) URL() string {
	return "ldap://" + s.addr
}

// BaseDNs returns the naming contexts served by the directory.
func (s *Server) BaseDNs() []string {
	return s.baseDNs
}

// Schema returns the effective merged schema.
func (s *Server) Schema() *Schema {
	return s.schema
}

// Entries returns the number of entries currently held.
func (s *Server) Entries() int {
	return s.store.len()
}

// Stats reports the connection, bind, unbind and search counters.
func (s *Server) Stats() Stats {
	stats := s.ldap.GetStats()
	return Stats{
		Conns:    stats.Conns,
		Binds:    stats.Binds,
		Unbinds:  stats.Unbinds,
		Searches: stats.Searches,
	}
}

// Add inserts one entry. The entry must live under one of the base DNs and
// its DN must not be taken yet.
func (s *Server) Add(entry *ldap.Entry) error {
	dn := NormalizeDN(entry.DN)
	within := false
	for _, base := range s.baseDNs {
		if dnWithin(dn, NormalizeDN(base)) {
			within = true
			break
		}
	}
	if !within {
		return fmt.Errorf("entry %s is not within any base DN", entry.DN)
	}
	return s.store.add(entry)
}

// ImportLDIF loads entries from an LDIF resource into the directory,
// keeping whatever is already there. A resource that cannot be read,
// parsed, or whose entries collide with existing DNs is an ImportError.
func (s *Server) ImportLDIF(r Resource) error {
	data, err := r.read()
	if err != nil {
		return &ImportError{Resource: r.String(), Err: err}
	}
	l, err := ldif.Parse(string(data))
	if err != nil {
		return &ImportError{Resource: r.String(), Err: err}
	}
	for _, record := range l.Entries {
		if record.Entry == nil {
			return &ImportError{Resource: r.String(), Err: fmt.Errorf("change records are not supported")}
		}
		if err := s.Add(fromV3Entry(record.Entry)); err != nil {
			return &ImportError{Resource: r.String(), Err: err}
		}
	}
	log.Info().Int("entries", len(l.Entries)).Str("resource", r.String()).Msg("Imported LDIF entries")
	return nil
}

// Shutdown closes the listener, so new connections are refused
// immediately. Established connections are not torn down; they drain as
// their clients disconnect. Safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdown.Do(func() {
		log.Info().Str("addr", s.addr).Msg("Stopping directory server")
		close(s.quit)
		<-s.exited
	})
}

// fromV3Entry converts a go-ldap entry (what the LDIF parser produces)
// into the entry type the server SDK serves.
func fromV3Entry(entry *ldapv3.Entry) *ldap.Entry {
	attrs := make([]*ldap.EntryAttribute, len(entry.Attributes))
	for i, attr := range entry.Attributes {
		values := make([]string, len(attr.Values))
		copy(values, attr.Values)
		attrs[i] = &ldap.EntryAttribute{Name: attr.Name, Values: values}
	}
	return &ldap.Entry{DN: entry.DN, Attributes: attrs}
}
