package goksql

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

const keyringServiceName = "goksql"

type credentialType string

const (
	passwordCredential credentialType = "PASSWORD"
	tokenCredential    credentialType = "TOKEN"
)

type secureCredentialSpec struct {
	host, user string
	credType   credentialType
}

func (s *secureCredentialSpec) buildKey() string {
	return strings.ToUpper(fmt.Sprintf("%v:%v:%v:%v", keyringServiceName, s.host, s.user, s.credType))
}

func newCredentialSpec(cfg *Config, credType credentialType) *secureCredentialSpec {
	host := cfg.Host
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return &secureCredentialSpec{host: host, user: cfg.User, credType: credType}
}

type credentialStore interface {
	getCredential(spec *secureCredentialSpec) (string, error)
	setCredential(spec *secureCredentialSpec, value string) error
	deleteCredential(spec *secureCredentialSpec) error
}

// keyringCredentialStore keeps credentials in the OS keyring (keychain, wincred, secret service, ...).
// The keyring is opened lazily on first use.
type keyringCredentialStore struct {
	mu   sync.Mutex
	ring keyring.Keyring
	open func() (keyring.Keyring, error)
}

func newKeyringCredentialStore() *keyringCredentialStore {
	return &keyringCredentialStore{
		open: func() (keyring.Keyring, error) {
			return keyring.Open(keyring.Config{
				ServiceName:              keyringServiceName,
				KeychainTrustApplication: true,
				WinCredPrefix:            keyringServiceName,
			})
		},
	}
}

var defaultCredentialStore credentialStore = newKeyringCredentialStore()

func (ks *keyringCredentialStore) openRing() (keyring.Keyring, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if ks.ring != nil {
		return ks.ring, nil
	}
	ring, err := ks.open()
	if err != nil {
		return nil, err
	}
	ks.ring = ring
	return ring, nil
}

func (ks *keyringCredentialStore) getCredential(spec *secureCredentialSpec) (string, error) {
	ring, err := ks.openRing()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(spec.buildKey())
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

func (ks *keyringCredentialStore) setCredential(spec *secureCredentialSpec, value string) error {
	if value == "" {
		logger.Debug("no credential provided")
		return nil
	}
	ring, err := ks.openRing()
	if err != nil {
		return err
	}
	return ring.Set(keyring.Item{
		Key:   spec.buildKey(),
		Data:  []byte(value),
		Label: fmt.Sprintf("goksql %v for %v", strings.ToLower(string(spec.credType)), spec.user),
	})
}

func (ks *keyringCredentialStore) deleteCredential(spec *secureCredentialSpec) error {
	ring, err := ks.openRing()
	if err != nil {
		return err
	}
	if err = ring.Remove(spec.buildKey()); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// fillCredentialsFromKeyring fills a missing password or token. Lookup failures are logged and
// leave the config untouched; validation reports the missing credential afterwards.
func fillCredentialsFromKeyring(cfg *Config, store credentialStore) {
	var (
		spec   *secureCredentialSpec
		target *string
	)
	switch {
	case cfg.Authenticator == AuthTypeBasic && cfg.Password == "":
		spec, target = newCredentialSpec(cfg, passwordCredential), &cfg.Password
	case cfg.Authenticator == AuthTypeBearer && cfg.Token == "":
		spec, target = newCredentialSpec(cfg, tokenCredential), &cfg.Token
	default:
		return
	}
	value, err := store.getCredential(spec)
	if err != nil {
		logger.Debugf("failed to read %v from keyring: %v", spec.credType, err)
		return
	}
	*target = value
}

// StoreCredential saves the password (basic auth) or token (bearer auth) of cfg in the OS keyring,
// so that later configs with UseKeyring set can omit it.
func StoreCredential(cfg *Config) error {
	switch cfg.Authenticator {
	case AuthTypeBasic:
		return defaultCredentialStore.setCredential(newCredentialSpec(cfg, passwordCredential), cfg.Password)
	case AuthTypeBearer:
		return defaultCredentialStore.setCredential(newCredentialSpec(cfg, tokenCredential), cfg.Token)
	default:
		return fmt.Errorf("authenticator %v has no credential to store", cfg.Authenticator)
	}
}

// DeleteCredential removes the credential StoreCredential saved for cfg.
func DeleteCredential(cfg *Config) error {
	switch cfg.Authenticator {
	case AuthTypeBasic:
		return defaultCredentialStore.deleteCredential(newCredentialSpec(cfg, passwordCredential))
	case AuthTypeBearer:
		return defaultCredentialStore.deleteCredential(newCredentialSpec(cfg, tokenCredential))
	default:
		return nil
	}
}
