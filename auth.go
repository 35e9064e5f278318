package goksql

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthType indicates how requests to the engine are authorized.
type AuthType int

const (
	// AuthTypeNone sends no credentials.
	AuthTypeNone AuthType = iota
	// AuthTypeBasic sends the user and password as HTTP basic auth.
	AuthTypeBasic
	// AuthTypeBearer sends the configured token as a bearer token.
	AuthTypeBearer
	// AuthTypeJWT signs a short-lived JWT with the configured RSA key and sends it as a bearer token.
	AuthTypeJWT
)

func (authType AuthType) String() string {
	switch authType {
	case AuthTypeNone:
		return "NONE"
	case AuthTypeBasic:
		return "BASIC"
	case AuthTypeBearer:
		return "BEARER"
	case AuthTypeJWT:
		return "JWT"
	default:
		return "UNKNOWN"
	}
}

func determineAuthenticatorType(cfg *Config, value string) error {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "NONE":
		cfg.Authenticator = AuthTypeNone
	case "BASIC":
		cfg.Authenticator = AuthTypeBasic
	case "BEARER", "TOKEN":
		cfg.Authenticator = AuthTypeBearer
	case "JWT", "KEYPAIR":
		cfg.Authenticator = AuthTypeJWT
	default:
		return &KsqlError{
			Number:      ErrCodeInvalidAuthenticator,
			Kind:        KindConfiguration,
			Message:     errMsgInvalidAuthenticator,
			MessageArgs: []interface{}{value},
		}
	}
	return nil
}

func validateAuthenticator(cfg *Config) error {
	missing := ""
	switch cfg.Authenticator {
	case AuthTypeBasic:
		if cfg.User == "" {
			missing = "user"
		}
	case AuthTypeBearer:
		if cfg.Token == "" {
			missing = "token"
		}
	case AuthTypeJWT:
		if cfg.PrivateKey == nil {
			missing = "private key"
		} else if cfg.JWTIssuer == "" {
			missing = "user or JWT issuer"
		}
	}
	if missing != "" {
		return &KsqlError{
			Number:      ErrCodeInvalidAuthenticator,
			Kind:        KindConfiguration,
			Message:     errMsgMissingAuthCredential,
			MessageArgs: []interface{}{cfg.Authenticator, missing},
		}
	}
	return nil
}

// authorizeRequest sets the Authorization header matching cfg.Authenticator.
func authorizeRequest(req *http.Request, cfg *Config) error {
	switch cfg.Authenticator {
	case AuthTypeBasic:
		req.SetBasicAuth(cfg.User, cfg.Password)
	case AuthTypeBearer:
		req.Header.Set(headerAuthorizationKey, "Bearer "+cfg.Token)
	case AuthTypeJWT:
		token, err := prepareJWTToken(cfg)
		if err != nil {
			return err
		}
		req.Header.Set(headerAuthorizationKey, "Bearer "+token)
	}
	return nil
}

// prepareJWTToken signs a token whose issuer carries the public key fingerprint, so the
// engine side can pick the matching key when several are registered for one user.
func prepareJWTToken(cfg *Config) (string, error) {
	if cfg.PrivateKey == nil {
		return "", &KsqlError{
			Number:      ErrCodeInvalidAuthenticator,
			Kind:        KindConfiguration,
			Message:     errMsgMissingAuthCredential,
			MessageArgs: []interface{}{cfg.Authenticator, "private key"},
		}
	}
	pubBytes, err := x509.MarshalPKIXPublicKey(cfg.PrivateKey.Public())
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(pubBytes)

	issuedAt := time.Now().UTC()
	claims := jwt.MapClaims{
		"iss": fmt.Sprintf("%v.SHA256:%v", cfg.JWTIssuer, base64.StdEncoding.EncodeToString(hash[:])),
		"sub": cfg.JWTIssuer,
		"iat": issuedAt.Unix(),
		"nbf": issuedAt.Add(-time.Minute).Unix(),
		"exp": issuedAt.Add(cfg.JWTExpireTimeout).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tokenString, err := token.SignedString(cfg.PrivateKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}
