package goksql

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultProtocol         = "http"
	defaultPort             = 8088
	defaultJWTTimeout       = 60 * time.Second
	defaultConnectTimeout   = 30 * time.Second
	streamsPropertiesPrefix = "ksql."
	autoOffsetResetProperty = "ksql.streams.auto.offset.reset"
)

// Config is the connection configuration of an Executor.
type Config struct {
	// BaseURL is the engine endpoint, e.g. http://localhost:8088. When empty it is built from Protocol, Host and Port.
	BaseURL  string
	Protocol string // http or https (optional)
	Host     string // hostname (optional)
	Port     int    // port (optional)

	User     string // Username
	Password string // Password (requires User)

	Authenticator        AuthType        // None, Basic, Bearer or JWT. Defaults to Basic when User is set.
	Token                string          // static bearer token
	PrivateKey           *rsa.PrivateKey // key signing JWT bearer tokens
	PrivateKeyPassphrase string          // passphrase of an encrypted PEM private key read from connections.toml
	JWTIssuer            string          // iss claim, defaults to User
	JWTExpireTimeout     time.Duration   // lifetime of generated JWT tokens

	ConnectTimeout time.Duration // Dial timeout
	RequestTimeout time.Duration // Whole-request timeout for describe and show requests. Row streams are bounded by the context only.
	InsecureMode   bool          // skip TLS certificate verification
	DisableGzip    bool          // do not ask the engine for gzip-compressed responses

	// StreamsProperties are sent with every statement. The auto offset reset property defaults to earliest
	// and is forced to earliest on pull queries.
	StreamsProperties map[string]string

	Transporter http.RoundTripper // custom transport, used as is
	Compiler    Compiler          // resolves SELECT lists, defaults to the built-in compiler

	Tracing    string // log level applied to the global logger when set
	UseKeyring bool   // read a missing password or token from the OS keyring
}

// ParseDSN parses a DSN of the form
//
//	[ksql://][user[:password]@]host[:port][/path][?param1=value1&paramN=valueN]
//
// into a Config. Parameters prefixed with "ksql." become streams properties.
func ParseDSN(dsn string) (*Config, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, (&KsqlError{
			Number:  ErrCodeFailedToParseDSN,
			Kind:    KindConfiguration,
			Message: errMsgFailedToParseDSN,
		}).withCause(fmt.Errorf("empty DSN"))
	}
	if !strings.Contains(dsn, "://") {
		dsn = "ksql://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, (&KsqlError{
			Number:  ErrCodeFailedToParseDSN,
			Kind:    KindConfiguration,
			Message: errMsgFailedToParseDSN,
		}).withCause(err)
	}

	cfg := &Config{}
	if u.Scheme == "http" || u.Scheme == "https" {
		cfg.Protocol = u.Scheme
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}
	cfg.Host = u.Hostname()
	if p := u.Port(); p != "" {
		if cfg.Port, err = strconv.Atoi(p); err != nil {
			return nil, (&KsqlError{
				Number:  ErrCodeFailedToParseDSN,
				Kind:    KindConfiguration,
				Message: errMsgFailedToParseDSN,
			}).withCause(err)
		}
	}
	if err = parseDSNParams(cfg, u.Query()); err != nil {
		return nil, err
	}
	if err = fillMissingConfigParameters(cfg); err != nil {
		return nil, err
	}
	if path := strings.TrimRight(u.Path, "/"); path != "" {
		cfg.BaseURL += path
	}
	return cfg, nil
}

func parseDSNParams(cfg *Config, params url.Values) error {
	logger.Debugf("DSN parameters: %v", params)
	for name, values := range params {
		if len(values) == 0 {
			continue
		}
		value := values[len(values)-1]
		var err error
		switch strings.ToLower(name) {
		case "protocol":
			cfg.Protocol = value
		case "authenticator":
			err = determineAuthenticatorType(cfg, value)
		case "token":
			cfg.Token = value
		case "privatekey":
			cfg.PrivateKey, err = decodePrivateKeyParam(value)
		case "jwtissuer":
			cfg.JWTIssuer = value
		case "jwttimeout":
			cfg.JWTExpireTimeout, err = parseDuration(value)
		case "connecttimeout":
			cfg.ConnectTimeout, err = parseDuration(value)
		case "requesttimeout":
			cfg.RequestTimeout, err = parseDuration(value)
		case "insecuremode":
			cfg.InsecureMode, err = strconv.ParseBool(value)
		case "disablegzip":
			cfg.DisableGzip, err = strconv.ParseBool(value)
		case "tracing":
			cfg.Tracing = value
		case "usekeyring":
			cfg.UseKeyring, err = strconv.ParseBool(value)
		default:
			if strings.HasPrefix(name, streamsPropertiesPrefix) {
				if cfg.StreamsProperties == nil {
					cfg.StreamsProperties = make(map[string]string)
				}
				cfg.StreamsProperties[name] = value
				continue
			}
			logger.Debugf("ignoring unknown DSN parameter %v", name)
		}
		if err != nil {
			var ke *KsqlError
			if errors.As(err, &ke) {
				return ke
			}
			return (&KsqlError{
				Number:      ErrCodeFailedToParseDSN,
				Kind:        KindConfiguration,
				Message:     "failed to parse DSN parameter %v",
				MessageArgs: []interface{}{name},
			}).withCause(err)
		}
	}
	return nil
}

func decodePrivateKeyParam(value string) (*rsa.PrivateKey, error) {
	block, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil, (&KsqlError{
			Number:  ErrCodePrivateKeyParseError,
			Kind:    KindConfiguration,
			Message: "Base64 decode failed",
		}).withCause(err)
	}
	return parsePKCS8PrivateKey(block)
}

// fillMissingConfigParameters applies defaults and validates the result.
func fillMissingConfigParameters(cfg *Config) error {
	if cfg.BaseURL == "" && cfg.Host != "" {
		if cfg.Protocol == "" {
			cfg.Protocol = defaultProtocol
		}
		if cfg.Port == 0 {
			cfg.Port = defaultPort
		}
		cfg.BaseURL = fmt.Sprintf("%v://%v:%v", cfg.Protocol, cfg.Host, cfg.Port)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return ErrEmptyBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return (&KsqlError{
			Number:      ErrCodeFailedToParseDSN,
			Kind:        KindConfiguration,
			Message:     "invalid base URL %v",
			MessageArgs: []interface{}{cfg.BaseURL},
		}).withCause(err)
	}

	if cfg.StreamsProperties == nil {
		cfg.StreamsProperties = make(map[string]string)
	}
	if _, ok := cfg.StreamsProperties[autoOffsetResetProperty]; !ok {
		cfg.StreamsProperties[autoOffsetResetProperty] = "earliest"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.JWTExpireTimeout == 0 {
		cfg.JWTExpireTimeout = defaultJWTTimeout
	}
	if cfg.Authenticator == AuthTypeNone && cfg.User != "" {
		cfg.Authenticator = AuthTypeBasic
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = cfg.User
	}
	if cfg.UseKeyring {
		fillCredentialsFromKeyring(cfg, defaultCredentialStore)
	}
	return validateAuthenticator(cfg)
}

// DSN constructs a DSN from a Config. Passwords and tokens are included, so treat the result as a secret.
func DSN(cfg *Config) (string, error) {
	if err := fillMissingConfigParameters(cfg); err != nil {
		return "", err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return "", err
	}
	u := &url.URL{
		Scheme: "ksql",
		Host:   base.Host,
		Path:   base.Path,
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	params := url.Values{}
	params.Set("protocol", base.Scheme)
	if cfg.Authenticator != AuthTypeNone {
		params.Set("authenticator", strings.ToLower(cfg.Authenticator.String()))
	}
	if cfg.Token != "" {
		params.Set("token", cfg.Token)
	}
	if cfg.PrivateKey != nil {
		keyBytes, err := marshalPKCS8PrivateKey(cfg.PrivateKey)
		if err != nil {
			return "", err
		}
		params.Set("privateKey", base64.URLEncoding.EncodeToString(keyBytes))
	}
	if cfg.JWTIssuer != "" && cfg.JWTIssuer != cfg.User {
		params.Set("jwtIssuer", cfg.JWTIssuer)
	}
	if cfg.JWTExpireTimeout != defaultJWTTimeout {
		params.Set("jwtTimeout", strconv.FormatInt(int64(cfg.JWTExpireTimeout/time.Second), 10))
	}
	if cfg.ConnectTimeout != defaultConnectTimeout {
		params.Set("connectTimeout", strconv.FormatInt(int64(cfg.ConnectTimeout/time.Second), 10))
	}
	if cfg.RequestTimeout != 0 {
		params.Set("requestTimeout", strconv.FormatInt(int64(cfg.RequestTimeout/time.Second), 10))
	}
	if cfg.InsecureMode {
		params.Set("insecureMode", "true")
	}
	if cfg.DisableGzip {
		params.Set("disableGzip", "true")
	}
	if cfg.Tracing != "" {
		params.Set("tracing", cfg.Tracing)
	}
	if cfg.UseKeyring {
		params.Set("useKeyring", "true")
	}
	for k, v := range cfg.StreamsProperties {
		if k == autoOffsetResetProperty && v == "earliest" {
			continue
		}
		params.Set(k, v)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}
