package value

import (
	"crypto/x509"
	"net/netip"
	"slices"
	"strconv"
	"strings"
	"time"

	"reconweave/internal/platform/validator"
)

// Protocol of an open port.
type Protocol string

const (
	TCP Protocol = "tcp"
	UDP Protocol = "udp"
)

// OpenPort is a reachable port on an address. Every field except the host
// hint is identity: the same port seen with a different service or TLS
// flag is a different value.
type OpenPort struct {
	addr     netip.Addr
	number   int
	protocol Protocol
	service  string
	ssl      bool
	host     string
}

// PortInfo holds the optional identity fields of an OpenPort.
type PortInfo struct {
	Protocol Protocol // defaults to TCP
	Service  string
	SSL      bool
	Host     string // hint, not identity
}

func NewOpenPort(address string, number int, info PortInfo) (OpenPort, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(address))
	if err != nil {
		return OpenPort{}, invalid("open port address %q", address)
	}
	if !validator.IsPort(number) {
		return OpenPort{}, invalid("port number %d", number)
	}
	proto := Protocol(strings.ToLower(string(info.Protocol)))
	switch proto {
	case "":
		proto = TCP
	case TCP, UDP:
	default:
		return OpenPort{}, invalid("port protocol %q", info.Protocol)
	}
	return OpenPort{
		addr:     addr.Unmap(),
		number:   number,
		protocol: proto,
		service:  strings.ToLower(strings.TrimSpace(info.Service)),
		ssl:      info.SSL,
		host:     validator.NormalizeHostname(info.Host),
	}, nil
}

func (p OpenPort) Addr() netip.Addr   { return p.addr }
func (p OpenPort) Number() int        { return p.number }
func (p OpenPort) Protocol() Protocol { return p.protocol }
func (p OpenPort) Service() string    { return p.service }
func (p OpenPort) SSL() bool          { return p.ssl }
func (p OpenPort) Host() string       { return p.host }

// IP returns the address as an IP value, carrying the host hint.
func (p OpenPort) IP() IP {
	return IP{addr: p.addr, host: p.host}
}

func (OpenPort) Kind() Kind { return KindOpenPort }

func (p OpenPort) Key() string {
	return key(KindOpenPort, p.addr.String(), strconv.Itoa(p.number), string(p.protocol), p.service, strconv.FormatBool(p.ssl))
}

func (p OpenPort) String() string {
	return netip.AddrPortFrom(p.addr, uint16(p.number)).String()
}

func (p OpenPort) Fields() map[string]any {
	f := map[string]any{
		"type":     string(KindOpenPort),
		"address":  p.addr.String(),
		"number":   p.number,
		"protocol": string(p.protocol),
		"ssl":      p.ssl,
	}
	if p.service != "" {
		f["service"] = p.service
	}
	if p.host != "" {
		f["host"] = p.host
	}
	return f
}

func (p OpenPort) FuzzyMatches(other Value) bool { return Equal(p, other) }

func (OpenPort) sealed() {}

// Cert is a TLS certificate identified by its serial number.
type Cert struct {
	serial    string
	subject   string
	issuer    string
	notBefore time.Time
	notAfter  time.Time
	names     []string
}

// CertInfo holds the descriptive (non-identity) fields of a Cert.
type CertInfo struct {
	Subject   string
	Issuer    string
	NotBefore time.Time
	NotAfter  time.Time
	Names     []string
}

func NewCert(serial string, info CertInfo) (Cert, error) {
	s := validator.NormalizeCertSerial(serial)
	if !validator.IsCertSerial(s) {
		return Cert{}, invalid("certificate serial %q", serial)
	}
	names := make([]string, 0, len(info.Names))
	for _, n := range info.Names {
		names = append(names, validator.NormalizeHostname(n))
	}
	slices.Sort(names)
	return Cert{
		serial:    s,
		subject:   info.Subject,
		issuer:    info.Issuer,
		notBefore: info.NotBefore.UTC(),
		notAfter:  info.NotAfter.UTC(),
		names:     slices.Compact(names),
	}, nil
}

// CertFromX509 builds a Cert from a parsed certificate.
func CertFromX509(c *x509.Certificate) Cert {
	cert, _ := NewCert(c.SerialNumber.Text(16), CertInfo{
		Subject:   c.Subject.String(),
		Issuer:    c.Issuer.String(),
		NotBefore: c.NotBefore,
		NotAfter:  c.NotAfter,
		Names:     c.DNSNames,
	})
	return cert
}

func (c Cert) Serial() string       { return c.serial }
func (c Cert) Subject() string      { return c.subject }
func (c Cert) Issuer() string       { return c.issuer }
func (c Cert) NotBefore() time.Time { return c.notBefore }
func (c Cert) NotAfter() time.Time  { return c.notAfter }
func (c Cert) Names() []string      { return slices.Clone(c.names) }

func (Cert) Kind() Kind       { return KindCert }
func (c Cert) Key() string    { return key(KindCert, c.serial) }
func (c Cert) String() string { return c.serial }

func (c Cert) Fields() map[string]any {
	f := map[string]any{"type": string(KindCert), "serial": c.serial}
	if c.subject != "" {
		f["subject"] = c.subject
	}
	if c.issuer != "" {
		f["issuer"] = c.issuer
	}
	if !c.notBefore.IsZero() {
		f["not_before"] = c.notBefore.Format(time.RFC3339)
	}
	if !c.notAfter.IsZero() {
		f["not_after"] = c.notAfter.Format(time.RFC3339)
	}
	if len(c.names) > 0 {
		f["names"] = slices.Clone(c.names)
	}
	return f
}

func (c Cert) FuzzyMatches(other Value) bool { return Equal(c, other) }

func (Cert) sealed() {}

// EmailAddress is a mailbox such as "admin@example.com".
type EmailAddress struct{ address string }

func NewEmailAddress(address string) (EmailAddress, error) {
	a := validator.NormalizeEmail(address)
	if !validator.IsEmail(a) {
		return EmailAddress{}, invalid("email address %q", address)
	}
	return EmailAddress{address: a}, nil
}

func (e EmailAddress) Address() string { return e.address }

// Domain returns the part after "@".
func (e EmailAddress) Domain() string {
	_, d, _ := strings.Cut(e.address, "@")
	return d
}

func (EmailAddress) Kind() Kind       { return KindEmailAddress }
func (e EmailAddress) Key() string    { return key(KindEmailAddress, e.address) }
func (e EmailAddress) String() string { return e.address }

func (e EmailAddress) Fields() map[string]any {
	return map[string]any{"type": string(KindEmailAddress), "address": e.address}
}

func (e EmailAddress) FuzzyMatches(other Value) bool { return Equal(e, other) }

func (EmailAddress) sealed() {}
