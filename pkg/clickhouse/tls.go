package clickhouse

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
)

// GetTLSConfig builds the client side of an mTLS connection from PEM files.
//
// Example usage:
//
//	cfg, err := GetTLSConfig(TLSSettings{
//		CAFile:   "/certs/ca.crt",
//		CertFile: "/certs/tls.crt",
//		KeyFile:  "/certs/tls.key",
//	})
//	if err != nil {
//		return err
//	}
func GetTLSConfig(settings TLSSettings) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(settings.CertFile, settings.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load certfile/keyfile")
	}

	caCert, err := os.ReadFile(settings.CAFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load cafile")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, errors.Errorf("no certificates found in %s", settings.CAFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
