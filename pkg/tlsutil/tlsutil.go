// Package tlsutil loads and, for local development, mints the TLS material
// used by the gRPC listener.
package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/credentials"
)

// ServerCredentials loads a gRPC server key pair.
func ServerCredentials(certFile, keyFile string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}
	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// ClientCredentials trusts the CA in caFile, or the system pool when caFile is
// empty. serverName overrides the name verified against the certificate.
func ClientCredentials(caFile, serverName string) (credentials.TransportCredentials, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12, ServerName: serverName}

	if caFile != "" {
		caPEM, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("tlsutil: read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("tlsutil: no certificate found in %s", caFile)
		}
		cfg.RootCAs = pool
	}

	return credentials.NewTLS(cfg), nil
}

// DevCertificates are the files written by WriteDevCertificates.
type DevCertificates struct {
	CAFile   string
	CertFile string
	KeyFile  string
}

// WriteDevCertificates mints a throwaway CA and a server certificate valid for
// hosts, and writes them as PEM into dir.
func WriteDevCertificates(dir string, hosts ...string) (DevCertificates, error) {
	if len(hosts) == 0 {
		return DevCertificates{}, errors.New("tlsutil: at least one host is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: mkdir %s: %w", dir, err)
	}

	now := time.Now()
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"fraud-watch dev CA"}},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(5 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caCert, caKey, err := issue(caTemplate, nil, nil)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: CA: %w", err)
	}

	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{Organization: []string{"fraud-watch dev"}, CommonName: hosts[0]},
		NotBefore:    now.Add(-time.Minute),
		NotAfter:     now.Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			leafTemplate.IPAddresses = append(leafTemplate.IPAddresses, ip)
		} else {
			leafTemplate.DNSNames = append(leafTemplate.DNSNames, h)
		}
	}
	leafCert, leafKey, err := issue(leafTemplate, caCert, caKey)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: server certificate: %w", err)
	}

	out := DevCertificates{
		CAFile:   filepath.Join(dir, "ca.pem"),
		CertFile: filepath.Join(dir, "server.pem"),
		KeyFile:  filepath.Join(dir, "server-key.pem"),
	}
	keyDER, err := x509.MarshalECPrivateKey(leafKey)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: marshal server key: %w", err)
	}
	for _, f := range []struct {
		path, blockType string
		der             []byte
	}{
		{out.CAFile, "CERTIFICATE", caCert.Raw},
		{out.CertFile, "CERTIFICATE", leafCert.Raw},
		{out.KeyFile, "EC PRIVATE KEY", keyDER},
	} {
		if err := writePEM(f.path, f.blockType, f.der); err != nil {
			return DevCertificates{}, err
		}
	}
	return out, nil
}

// issue signs template with parentKey, or self-signs when parent is nil.
func issue(template, parent *x509.Certificate, parentKey *ecdsa.PrivateKey) (*x509.Certificate, *ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate key: %w", err)
	}
	if parent == nil {
		parent, parentKey = template, key
	}
	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, parentKey)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("parse certificate: %w", err)
	}
	return cert, key, nil
}

func writePEM(path, blockType string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("tlsutil: write %s: %w", path, err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: data}); err != nil {
		return fmt.Errorf("tlsutil: encode %s: %w", path, err)
	}
	return nil
}
