package goksql

import (
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

func parsePKCS8PrivateKey(block []byte) (*rsa.PrivateKey, error) {
	privKey, err := x509.ParsePKCS8PrivateKey(block)
	if err != nil {
		return nil, (&KsqlError{
			Number:  ErrCodePrivateKeyParseError,
			Kind:    KindConfiguration,
			Message: errMsgPrivateKeyParseFailed,
		}).withCause(err)
	}
	rsaKey, ok := privKey.(*rsa.PrivateKey)
	if !ok {
		return nil, &KsqlError{
			Number:  ErrCodePrivateKeyParseError,
			Kind:    KindConfiguration,
			Message: "only RSA private keys are supported",
		}
	}
	return rsaKey, nil
}

func marshalPKCS8PrivateKey(key *rsa.PrivateKey) ([]byte, error) {
	keyInBytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, (&KsqlError{
			Number:  ErrCodePrivateKeyParseError,
			Kind:    KindConfiguration,
			Message: "failed to marshal private key",
		}).withCause(err)
	}
	return keyInBytes, nil
}

// parsePEMPrivateKey reads a PEM encoded RSA key in any format ssh understands,
// decrypting it with passphrase when the block is encrypted.
func parsePEMPrivateKey(pemBytes []byte, passphrase string) (*rsa.PrivateKey, error) {
	var (
		key interface{}
		err error
	)
	if passphrase != "" {
		key, err = ssh.ParseRawPrivateKeyWithPassphrase(pemBytes, []byte(passphrase))
	} else {
		key, err = ssh.ParseRawPrivateKey(pemBytes)
	}
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			err = fmt.Errorf("private key is encrypted, a passphrase is required: %w", err)
		}
		return nil, (&KsqlError{
			Number:  ErrCodePrivateKeyParseError,
			Kind:    KindConfiguration,
			Message: errMsgPrivateKeyParseFailed,
		}).withCause(err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, &KsqlError{
			Number:  ErrCodePrivateKeyParseError,
			Kind:    KindConfiguration,
			Message: "only RSA private keys are supported",
		}
	}
	return rsaKey, nil
}
