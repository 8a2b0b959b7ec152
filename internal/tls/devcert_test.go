package tls

import (
	stdtls "crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDevCert_GeneratesLoadablePair(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")

	generated, err := EnsureDevCert(certPath, keyPath, []string{"localhost", "127.0.0.1"})
	require.NoError(t, err)
	assert.True(t, generated)

	pair, err := stdtls.LoadX509KeyPair(certPath, keyPath)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, leaf.DNSNames)
	require.Len(t, leaf.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", leaf.IPAddresses[0].String())
}

func TestEnsureDevCert_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, []byte("cert"), 0o644))
	require.NoError(t, os.WriteFile(keyPath, []byte("key"), 0o600))

	generated, err := EnsureDevCert(certPath, keyPath, nil)
	require.NoError(t, err)
	assert.False(t, generated)

	data, err := os.ReadFile(certPath)
	require.NoError(t, err)
	assert.Equal(t, "cert", string(data))
}

func TestEnsureDevCert_RequiresPaths(t *testing.T) {
	_, err := EnsureDevCert("", "key.pem", nil)
	assert.Error(t, err)
}
