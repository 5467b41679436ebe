package ldapclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
)

// Default LDAP ports, applied when no explicit port is configured.
const (
	DefaultPort    = 389
	DefaultSSLPort = 636
)

// Factory builds a single client connection from its exported fields.
// Populate the fields (or call SetURL), then call Connection; the first
// call validates the configuration, dials and optionally binds, and every
// later call returns the same connection. Factories are single-owner and
// not safe for concurrent use.
type Factory struct {
	// Host of the server. Required unless set through SetURL.
	Host string

	// Port of the server, 1-65535. Zero resolves to DefaultPort, or
	// DefaultSSLPort when SSL is on.
	Port int

	// SSL connects over TLS.
	SSL bool

	// BindDN and Password authenticate the connection. The bind only
	// happens when both are non-blank; otherwise the connection stays
	// anonymous.
	BindDN   string
	Password string

	// TrustAll accepts any server certificate without verification.
	// Effective only together with SSL. Strictly for talking to
	// throwaway test servers; never enable it against anything
	// production-facing.
	TrustAll bool

	// TLSConfig overrides the platform trust settings, for example to
	// pin a test CA. Setting it selects encrypted transport even when
	// SSL is off; port resolution still follows the SSL flag.
	TLSConfig *tls.Config

	conn *ldap.Conn
}

// NewFactory returns a factory for the given host and port. Port zero
// keeps the default-port resolution.
func NewFactory(host string, port int) *Factory {
	return &Factory{Host: host, Port: port}
}

// SetURL derives host, port and the SSL flag from an ldap:// or ldaps://
// URL. A missing port keeps the default-port resolution.
func (f *Factory) SetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ConfigError{Property: "url", Reason: err.Error()}
	}
	switch u.Scheme {
	case "ldap":
		f.SSL = false
	case "ldaps":
		f.SSL = true
	default:
		return &ConfigError{Property: "url", Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}

	f.Host = u.Hostname()
	f.Port = 0
	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return &ConfigError{Property: "url", Reason: fmt.Sprintf("invalid port %q", port)}
		}
		f.Port = n
	}
	return nil
}

// Validate checks the mandatory configuration and resolves an unset port
// to the default for the chosen transport.
func (f *Factory) Validate() error {
	if strings.TrimSpace(f.Host) == "" {
		return &ConfigError{Property: "host", Reason: "host or URL must be provided"}
	}
	if f.Port == 0 {
		if f.SSL {
			f.Port = DefaultSSLPort
		} else {
			f.Port = DefaultPort
		}
	}
	if f.Port < 1 || f.Port > 65535 {
		return &ConfigError{Property: "port", Reason: "must be between 1 and 65535"}
	}
	return nil
}

// Connection produces the client connection, dialing on first use. When
// the dial or the bind fails, nothing is left open and the factory stays
// unproduced.
func (f *Factory) Connection() (*ldap.Conn, error) {
	if f.conn != nil {
		return f.conn, nil
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(f.Host, strconv.Itoa(f.Port))
	scheme := "ldap"
	var opts []ldap.DialOpt
	if f.encrypted() {
		scheme = "ldaps"
		opts = append(opts, ldap.DialWithTLSConfig(f.tlsConfig()))
	}

	log.Debug().Str("addr", addr).Bool("tls", f.encrypted()).Msg("Dialing LDAP server")
	conn, err := ldap.DialURL(scheme+"://"+addr, opts...)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}

	if strings.TrimSpace(f.BindDN) != "" && strings.TrimSpace(f.Password) != "" {
		if err := conn.Bind(f.BindDN, f.Password); err != nil {
			_ = conn.Close()
			return nil, &AuthError{BindDN: f.BindDN, Err: err}
		}
		log.Debug().Str("bindDN", f.BindDN).Msg("Bound LDAP connection")
	}

	f.conn = conn
	return conn, nil
}

// Destroy closes the produced connection. Calling it again, or without a
// produced connection, does nothing.
func (f *Factory) Destroy() {
	if f.conn != nil {
		_ = f.conn.Close()
	}
}

// encrypted reports whether the connection dials over TLS. Either the
// SSL flag or a custom trust configuration selects encrypted transport.
func (f *Factory) encrypted() bool {
	return f.SSL || f.TLSConfig != nil
}

// tlsConfig picks the trust strategy: trust-all (only when SSL asked for
// it) wins, then the custom configuration, then platform defaults.
func (f *Factory) tlsConfig() *tls.Config {
	switch {
	case f.SSL && f.TrustAll:
		return &tls.Config{InsecureSkipVerify: true}
	case f.TLSConfig != nil:
		return f.TLSConfig
	default:
		return &tls.Config{ServerName: f.Host}
	}
}
