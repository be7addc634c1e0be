package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/httpclient"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/validator"
)

const defaultCrtshEndpoint = "https://crt.sh"

// crt.sh devuelve fechas sin zona, en UTC
const crtshTimeLayout = "2006-01-02T15:04:05"

// CRT busca certificados emitidos para un dominio en los logs de
// Certificate Transparency de crt.sh y emite los nombres encontrados.
type CRT struct {
	client    *httpclient.Client
	endpoint  string
	emitCerts bool
	logger    logx.Logger
}

func NewCRT(client *httpclient.Client, endpoint string, emitCerts bool, logger logx.Logger) *CRT {
	if endpoint == "" {
		endpoint = defaultCrtshEndpoint
	}
	return &CRT{
		client:    client,
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		emitCerts: emitCerts,
		logger:    logger,
	}
}

// certRecord representa un registro de certificado de crt.sh.
type certRecord struct {
	IssuerName   string `json:"issuer_name"`
	CommonName   string `json:"common_name"`
	NameValue    string `json:"name_value"`
	NotAfter     string `json:"not_after"`
	NotBefore    string `json:"not_before"`
	SerialNumber string `json:"serial_number"`
}

func (c *CRT) Process(ctx context.Context, v value.Value, emit ports.Emit) error {
	d, ok := v.(value.Domain)
	if !ok {
		return fmt.Errorf("%s: unsupported value %s", CrtshID, v.Kind())
	}

	q := url.Values{}
	q.Set("q", "%."+d.Name())
	q.Set("output", "json")
	body, err := c.client.FetchJSON(ctx, c.endpoint+"/?"+q.Encode())
	if err != nil {
		return fmt.Errorf("crtsh %s: %w", d.Name(), err)
	}

	var records []certRecord
	if err := json.Unmarshal(body, &records); err != nil {
		// crt.sh a veces responde HTML cuando está saturado
		return fmt.Errorf("crtsh %s: parse response: %w", d.Name(), err)
	}
	c.logger.Debug("parsed crtsh records", "domain", d.Name(), "count", len(records))

	seen := make(map[string]bool)
	for _, rec := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var names []string
		for _, raw := range strings.Split(rec.NameValue, "\n") {
			name := validator.NormalizeHostname(raw)
			if name == "" || !c.inDomain(name, d.Name()) {
				continue
			}
			names = append(names, name)
			if seen[name] {
				continue
			}
			seen[name] = true
			if nv, ok := nameValue(name); ok {
				emit(nv)
			}
		}

		if c.emitCerts && len(names) > 0 {
			if cert, ok := certValue(rec, names); ok && !seen["#"+cert.Key()] {
				seen["#"+cert.Key()] = true
				emit(cert)
			}
		}
	}
	return nil
}

func (c *CRT) inDomain(name, domain string) bool {
	name = strings.TrimPrefix(name, "*.")
	return name == domain || validator.IsSubdomainOf(name, domain)
}

// nameValue maps a certificate name to a Host, or a Wildcard for "*." names.
func nameValue(name string) (value.Value, bool) {
	if strings.Contains(name, "*") {
		w, err := value.NewWildcard(name)
		return w, err == nil
	}
	h, err := value.NewHost(name)
	return h, err == nil
}

func certValue(rec certRecord, names []string) (value.Cert, bool) {
	notBefore, _ := time.Parse(crtshTimeLayout, rec.NotBefore)
	notAfter, _ := time.Parse(crtshTimeLayout, rec.NotAfter)
	cert, err := value.NewCert(rec.SerialNumber, value.CertInfo{
		Subject:   rec.CommonName,
		Issuer:    rec.IssuerName,
		NotBefore: notBefore,
		NotAfter:  notAfter,
		Names:     names,
	})
	return cert, err == nil
}
