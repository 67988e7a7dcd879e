// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/milize/internal/platform/sec"
)

func writeKeyPair(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")

	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0o600))
	require.NoError(t, os.WriteFile(publicPath, publicPEM, 0o600))
	return privatePath, publicPath
}

/*
TestTokenService_RoundTrip verifies minted tokens carry the collaborator id
and authority back through verification.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t)
	service, err := sec.NewTokenService(privatePath, publicPath, "milize")
	require.NoError(t, err)

	token, err := service.Mint("1234", "kana", sec.AuthorityProjectManager, time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "1234", claims.UserID)
	assert.Equal(t, sec.AuthorityProjectManager, claims.Authority)
}

func TestTokenService_RejectsForeignIssuer(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t)
	minter, err := sec.NewTokenService(privatePath, publicPath, "someone-else")
	require.NoError(t, err)
	verifier, err := sec.NewTokenService(privatePath, publicPath, "milize")
	require.NoError(t, err)

	token, err := minter.Mint("1234", "kana", sec.AuthorityMember, time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t)
	service, err := sec.NewTokenService(privatePath, publicPath, "milize")
	require.NoError(t, err)

	token, err := service.Mint("1234", "kana", sec.AuthorityMember, -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

func TestAuthority(t *testing.T) {
	assert.True(t, sec.AuthorityOwner.AtLeast(sec.AuthorityProjectManager))
	assert.False(t, sec.AuthorityMember.AtLeast(sec.AuthorityProjectManager))
	assert.False(t, sec.Authority(7).Valid())

	parsed, err := sec.ParseAuthority("project_manager")
	require.NoError(t, err)
	assert.Equal(t, sec.AuthorityProjectManager, parsed)

	_, err = sec.ParseAuthority("admin")
	assert.Error(t, err)
}
