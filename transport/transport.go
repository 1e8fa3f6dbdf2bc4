// Package transport provides the unified TCP/TLS byte stream the HTTP
// client dials, along with the process-wide root-certificate store the Secure
// variant shares across every connection. The TLS client configuration is
// not shared: each secure dial builds its own around that store.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/idna"
)

// Stream is a unified read/write/close surface over either a plain TCP
// connection or a TLS-on-TCP connection, so the HTTP client can treat both
// uniformly.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
}

// DialError wraps a failure to establish the underlying connection, whether
// at the TCP or the TLS handshake stage.
type DialError struct {
	Host string
	Port uint16
	Err  error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("dial %s:%d: %v", e.Host, e.Port, e.Err)
}
func (e *DialError) Unwrap() error { return e.Err }

var (
	rootsOnce  sync.Once
	rootPool   *x509.CertPool
	rootPoolOK bool
)

// rootCertPool lazily builds the process-wide trust store. Go has no
// bundled, OS-independent root set comparable to the original's vendored
// Mozilla bundle; the system pool is the idiomatic stdlib substitute.
func rootCertPool() (*x509.CertPool, bool) {
	rootsOnce.Do(func() {
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			rootPool, rootPoolOK = x509.NewCertPool(), true
			return
		}
		rootPool, rootPoolOK = pool, true
	})
	return rootPool, rootPoolOK
}

func normalizeHost(host string) string {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

// DialInsecure opens a plain TCP connection to host:port.
func DialInsecure(host string, port uint16) (Stream, error) {
	host = normalizeHost(host)
	conn, err := net.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return nil, &DialError{Host: host, Port: port, Err: err}
	}
	return conn, nil
}

// DialSecure opens a TCP connection to host:port and performs a TLS
// handshake over it using the process-wide root store, via utls in place of
// bare crypto/tls to match the client fingerprint the corpus standardizes
// on. No client certificate is presented.
func DialSecure(host string, port uint16) (Stream, error) {
	asciiHost := normalizeHost(host)
	conn, err := net.Dial("tcp", net.JoinHostPort(asciiHost, strconv.Itoa(int(port))))
	if err != nil {
		return nil, &DialError{Host: host, Port: port, Err: err}
	}

	pool, _ := rootCertPool()
	config := &utls.Config{
		ServerName: asciiHost,
		RootCAs:    pool,
	}
	tlsConn := utls.UClient(conn, config, utls.HelloGolang)
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, &DialError{Host: host, Port: port, Err: err}
	}
	return tlsConn, nil
}

// tlsConfig is exposed for tests that want to assert the singleton shape
// without performing a real handshake.
func tlsConfig(serverName string) *tls.Config {
	pool, _ := rootCertPool()
	return &tls.Config{ServerName: serverName, RootCAs: pool}
}
