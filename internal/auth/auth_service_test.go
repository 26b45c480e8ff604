package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"
)

func testKeys(t *testing.T) (privatePEM, publicPEM []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privatePEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})
	return privatePEM, publicPEM
}

func TestIssueAndValidate(t *testing.T) {
	priv, pub := testKeys(t)
	svc, err := NewAuthService(priv, pub, 15*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	token, err := svc.IssueAccessToken("user-42")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "user-42" || claims.Subject != "user-42" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidateRejectsExpiredAndForeignTokens(t *testing.T) {
	priv, pub := testKeys(t)
	svc, err := NewAuthService(priv, pub, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	token, err := svc.IssueAccessToken("u1")
	if err != nil {
		t.Fatal(err)
	}

	later := time.Now().Add(2 * time.Minute)
	svc.now = func() time.Time { return later }
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token err = %v", err)
	}

	otherPriv, otherPub := testKeys(t)
	other, err := NewAuthService(otherPriv, otherPub, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	foreign, err := other.IssueAccessToken("u1")
	if err != nil {
		t.Fatal(err)
	}
	svc.now = time.Now
	if _, err := svc.ValidateToken(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token err = %v", err)
	}
}

func TestVerifyOnlyServiceCannotIssue(t *testing.T) {
	_, pub := testKeys(t)
	svc, err := NewAuthService(nil, pub, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.IssueAccessToken("u1"); err == nil {
		t.Fatal("expected error without private key")
	}
}
