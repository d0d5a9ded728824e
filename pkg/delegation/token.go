package delegation

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningAlgorithms are the JWS algorithms accepted on delegation tokens.
var SigningAlgorithms = []string{"PS256", "PS384", "PS512", "RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// TokenClaims is the payload of an iSHARE delegation token.
type TokenClaims struct {
	DelegationEvidence DelegationEvidence `json:"delegationEvidence"`
	jwt.RegisteredClaims
}

// SignEvidence wraps ev in a delegation token signed with key.
func SignEvidence(ev *Evidence, key crypto.Signer, alg string, lifetime time.Duration) (string, error) {
	method := jwt.GetSigningMethod(alg)
	if method == nil || !approved(alg) {
		return "", fmt.Errorf("unsupported signing algorithm: %s", alg)
	}
	now := time.Now()
	claims := TokenClaims{
		DelegationEvidence: ev.DelegationEvidence,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ev.DelegationEvidence.PolicyIssuer,
			Subject:   ev.Subject(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(method, claims).SignedString(key)
}

// DecodeDelegationToken extracts the evidence from a delegation token. The
// signature is verified when key is non-nil.
func DecodeDelegationToken(raw string, key crypto.PublicKey) (*Evidence, error) {
	claims := &TokenClaims{}
	if key == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return nil, fmt.Errorf("failed to parse delegation token: %w", err)
		}
	} else {
		token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods(SigningAlgorithms))
		if err != nil {
			return nil, fmt.Errorf("failed to parse delegation token: %w", err)
		}
		if !token.Valid {
			return nil, fmt.Errorf("delegation token is invalid")
		}
	}

	ev := &Evidence{DelegationEvidence: claims.DelegationEvidence}
	if result := Validate(ev); !result.IsValid() {
		return nil, fmt.Errorf("delegation token carries invalid evidence: %w", result.Err())
	}
	return ev, nil
}

// LoadPublicKey reads a PEM encoded RSA or EC public key.
func LoadPublicKey(path string) (crypto.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	return ParsePublicKeyPEM(data)
}

// ParsePublicKeyPEM decodes PKIX, PKCS#1 or certificate PEM blocks.
func ParsePublicKeyPEM(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "CERTIFICATE":
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		return cert.PublicKey, nil
	default:
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		return key, nil
	}
}

func approved(alg string) bool {
	for _, a := range SigningAlgorithms {
		if a == alg {
			return true
		}
	}
	return false
}
