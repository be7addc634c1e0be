// internal/platform/validator/validator.go
package validator

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Labels permiten guiones bajos: aparecen en registros SRV/DKIM y en hosts internos.
	labelRegex  = regexp.MustCompile(`^[a-z0-9_]([a-z0-9_\-]{0,61}[a-z0-9_])?$`)
	emailRegex  = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	serialRegex = regexp.MustCompile(`^[0-9a-f: ]+$`)
)

// Host validators

// IsHostname verifica si un string es un nombre de host válido (ya normalizado).
// Las direcciones IP no son nombres de host.
func IsHostname(name string) bool {
	if len(name) == 0 || len(name) > 253 {
		return false
	}
	if _, err := netip.ParseAddr(name); err == nil {
		return false
	}
	for _, label := range strings.Split(name, ".") {
		if !labelRegex.MatchString(label) {
			return false
		}
	}
	return true
}

// NormalizeHostname normaliza un nombre de host a su forma canónica.
// A diferencia de la normalización de artifacts, no elimina "www.":
// www.example.com y example.com son valores distintos.
func NormalizeHostname(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".")
}

// IsSubdomainOf reports whether name sits strictly below parent.
func IsSubdomainOf(name, parent string) bool {
	return len(name) > len(parent)+1 && strings.HasSuffix(name, "."+parent)
}

// IsWildcardTemplate checks a "*" template such as "*.example.com" or
// "dev-*.example.com": exactly one "*" and a valid hostname once the "*"
// is replaced by a label.
func IsWildcardTemplate(template string) bool {
	if strings.Count(template, "*") != 1 {
		return false
	}
	return IsHostname(strings.Replace(template, "*", "x", 1))
}

// Email validators

// IsEmail valida formato de email (RFC 5322 simplificado, en minúsculas).
func IsEmail(email string) bool {
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// NormalizeEmail normaliza un email a su forma canónica.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Network validators

// IsPort valida que un puerto esté en el rango [1-65535].
func IsPort(port int) bool {
	return port >= 1 && port <= 65535
}

// ParsePort parses a decimal port and checks its range.
func ParsePort(s string) (int, bool) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !IsPort(port) {
		return 0, false
	}
	return port, true
}

// DefaultPort returns the well-known port of a URL scheme, or 0.
func DefaultPort(scheme string) int {
	switch strings.ToLower(scheme) {
	case "http", "ws":
		return 80
	case "https", "wss":
		return 443
	default:
		return 0
	}
}

// Certificate validators

// IsCertSerial valida un serial hexadecimal (con ':' o espacios opcionales).
func IsCertSerial(serial string) bool {
	return len(serial) > 0 && serialRegex.MatchString(serial)
}

// NormalizeCertSerial lower-cases the serial and strips separators.
func NormalizeCertSerial(serial string) string {
	serial = strings.ToLower(strings.TrimSpace(serial))
	return strings.NewReplacer(":", "", " ", "").Replace(serial)
}

// Generic validators

// IsEmpty verifica si un string está vacío o solo contiene espacios.
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}
