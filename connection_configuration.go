package goksql

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	path "path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	toml "github.com/BurntSushi/toml"
)

const (
	goksqlHomeEnv              = "GOKSQL_HOME"
	goksqlDefaultConnectionEnv = "GOKSQL_DEFAULT_CONNECTION_NAME"
	connectionsFileName        = "connections.toml"
	defaultConnectionName      = "default"
)

// LoadConnectionConfig returns connection configs loaded from the toml file.
// By default, GOKSQL_HOME (toml file path) is ~/.goksql/
// and GOKSQL_DEFAULT_CONNECTION_NAME (connection name) is default.
func LoadConnectionConfig() (*Config, error) {
	return LoadNamedConnectionConfig(os.Getenv(goksqlDefaultConnectionEnv))
}

// LoadNamedConnectionConfig loads the named connection from connections.toml. An empty name selects
// the default connection.
func LoadNamedConnectionConfig(name string) (*Config, error) {
	cfg := &Config{}
	connectionName := getConnectionName(name)
	configDir, err := getTomlFilePath(os.Getenv(goksqlHomeEnv))
	if err != nil {
		return nil, err
	}
	tomlFilePath := path.Join(configDir, connectionsFileName)
	if err = validateFilePermission(tomlFilePath); err != nil {
		return nil, err
	}
	tomlInfo := make(map[string]interface{})
	if _, err = toml.DecodeFile(tomlFilePath, &tomlInfo); err != nil {
		return nil, err
	}
	connection, exist := tomlInfo[connectionName]
	if !exist {
		return nil, &KsqlError{
			Number:      ErrCodeFailedToFindDSNInToml,
			Kind:        KindConfiguration,
			Message:     errMsgFailedToFindDSNInToml,
			MessageArgs: []interface{}{connectionName},
		}
	}
	connectionConfig, ok := connection.(map[string]interface{})
	if !ok {
		return nil, &KsqlError{
			Number:      ErrCodeTomlFileParsingFailed,
			Kind:        KindConfiguration,
			Message:     errMsgFailedToParseTomlFile,
			MessageArgs: []interface{}{connectionName, connection},
		}
	}
	if err = parseToml(cfg, connectionConfig); err != nil {
		return nil, err
	}
	if err = fillMissingConfigParameters(cfg); err != nil {
		return nil, err
	}
	logger.Debugf("loaded connection %v from %v", connectionName, tomlFilePath)
	return cfg, nil
}

// ListConnectionNames returns the sorted connection names found in connections.toml.
func ListConnectionNames() ([]string, error) {
	configDir, err := getTomlFilePath(os.Getenv(goksqlHomeEnv))
	if err != nil {
		return nil, err
	}
	tomlFilePath := path.Join(configDir, connectionsFileName)
	if err = validateFilePermission(tomlFilePath); err != nil {
		return nil, err
	}
	tomlInfo := make(map[string]interface{})
	if _, err = toml.DecodeFile(tomlFilePath, &tomlInfo); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tomlInfo))
	for name, v := range tomlInfo {
		if _, ok := v.(map[string]interface{}); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func parseToml(cfg *Config, connection map[string]interface{}) error {
	var v, keyFile, keyFilePassphrase, tokenPath string
	var parsingErr error
	err := &KsqlError{
		Number:  ErrCodeTomlFileParsingFailed,
		Kind:    KindConfiguration,
		Message: errMsgFailedToParseTomlFile,
	}
	for key, value := range connection {
		switch strings.ToLower(key) {
		case "baseurl", "url":
			cfg.BaseURL, parsingErr = parseString(value)
		case "user", "username":
			cfg.User, parsingErr = parseString(value)
		case "password":
			cfg.Password, parsingErr = parseString(value)
		case "host":
			cfg.Host, parsingErr = parseString(value)
		case "port":
			cfg.Port, parsingErr = parseInt(value)
		case "protocol":
			cfg.Protocol, parsingErr = parseString(value)
		case "authenticator":
			if v, parsingErr = parseString(value); parsingErr == nil {
				parsingErr = determineAuthenticatorType(cfg, v)
			}
		case "token":
			cfg.Token, parsingErr = parseString(value)
		case "token_file_path":
			tokenPath, parsingErr = parseString(value)
		case "privatekey":
			if v, parsingErr = parseString(value); parsingErr == nil {
				var block []byte
				if block, parsingErr = base64.URLEncoding.DecodeString(v); parsingErr == nil {
					cfg.PrivateKey, parsingErr = parsePKCS8PrivateKey(block)
				}
			}
		case "private_key_file":
			keyFile, parsingErr = parseString(value)
		case "private_key_file_pwd":
			keyFilePassphrase, parsingErr = parseString(value)
			cfg.PrivateKeyPassphrase = keyFilePassphrase
		case "jwtissuer":
			cfg.JWTIssuer, parsingErr = parseString(value)
		case "jwttimeout":
			cfg.JWTExpireTimeout, parsingErr = parseDuration(value)
		case "connecttimeout":
			cfg.ConnectTimeout, parsingErr = parseDuration(value)
		case "requesttimeout":
			cfg.RequestTimeout, parsingErr = parseDuration(value)
		case "insecuremode":
			cfg.InsecureMode, parsingErr = parseBool(value)
		case "disablegzip":
			cfg.DisableGzip, parsingErr = parseBool(value)
		case "tracing":
			cfg.Tracing, parsingErr = parseString(value)
		case "usekeyring":
			cfg.UseKeyring, parsingErr = parseBool(value)
		case "streams_properties", "streamsproperties", "ksql":
			prefix := ""
			if strings.ToLower(key) == "ksql" {
				prefix = "ksql"
			}
			parsingErr = flattenStreamsProperties(cfg, prefix, value)
		default:
			logger.Debugf("ignoring unknown key %v in %v", key, connectionsFileName)
		}
		if parsingErr != nil {
			var ke *KsqlError
			if errors.As(parsingErr, &ke) {
				return ke
			}
			err.MessageArgs = []interface{}{key, value}
			return err.withCause(parsingErr)
		}
	}
	if keyFile != "" && cfg.PrivateKey == nil {
		key, readErr := readPrivateKeyFile(keyFile, keyFilePassphrase)
		if readErr != nil {
			return readErr
		}
		cfg.PrivateKey = key
	}
	if shouldReadTokenFromFile(cfg, tokenPath) {
		token, readErr := readToken(tokenPath)
		if readErr != nil {
			return readErr
		}
		cfg.Token = token
	}
	return nil
}

// flattenStreamsProperties accepts both quoted keys ("ksql.streams.x" = 1) and the nested
// tables toml produces for unquoted dotted keys.
func flattenStreamsProperties(cfg *Config, prefix string, value interface{}) error {
	if cfg.StreamsProperties == nil {
		cfg.StreamsProperties = make(map[string]string)
	}
	switch vv := value.(type) {
	case map[string]interface{}:
		for k, nested := range vv {
			name := k
			if prefix != "" {
				name = prefix + "." + k
			}
			if err := flattenStreamsProperties(cfg, name, nested); err != nil {
				return err
			}
		}
	case string:
		cfg.StreamsProperties[prefix] = vv
	case int64, float64, bool:
		cfg.StreamsProperties[prefix] = fmt.Sprint(vv)
	default:
		return fmt.Errorf("unsupported streams property value %v", value)
	}
	return nil
}

func parseInt(i interface{}) (int, error) {
	switch v := i.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, errors.New("failed to parse the value to integer")
	}
}

func parseBool(i interface{}) (bool, error) {
	switch v := i.(type) {
	case bool:
		return v, nil
	case string:
		vv, err := strconv.ParseBool(v)
		if err != nil {
			return false, errors.New("failed to parse the value to boolean")
		}
		return vv, nil
	default:
		return false, errors.New("failed to parse the value to boolean")
	}
}

// parseDuration reads whole seconds from an integer or a numeric string, or a Go duration string such as "90s".
func parseDuration(i interface{}) (time.Duration, error) {
	v, ok := i.(string)
	if !ok {
		num, err := parseInt(i)
		if err != nil {
			return time.Duration(0), err
		}
		return time.Duration(int64(num) * int64(time.Second)), nil
	}
	if t, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(t * int64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func parseString(i interface{}) (string, error) {
	v, ok := i.(string)
	if !ok {
		return "", errors.New("failed to convert the value to string")
	}
	return v, nil
}

func resolveConfigRelativePath(p string) (string, error) {
	if path.IsAbs(p) {
		return p, nil
	}
	configDir, err := getTomlFilePath(os.Getenv(goksqlHomeEnv))
	if err != nil {
		return "", err
	}
	return path.Join(configDir, p), nil
}

func readToken(tokenPath string) (string, error) {
	tokenPath, err := resolveConfigRelativePath(tokenPath)
	if err != nil {
		return "", err
	}
	if err = validateFilePermission(tokenPath); err != nil {
		return "", err
	}
	token, err := os.ReadFile(tokenPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(token)), nil
}

func readPrivateKeyFile(keyPath, passphrase string) (*rsa.PrivateKey, error) {
	keyPath, err := resolveConfigRelativePath(keyPath)
	if err != nil {
		return nil, err
	}
	if err = validateFilePermission(keyPath); err != nil {
		return nil, err
	}
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	return parsePEMPrivateKey(pemBytes, passphrase)
}

func getTomlFilePath(filePath string) (string, error) {
	if len(filePath) != 0 {
		if path.IsAbs(filePath) {
			return filePath, nil
		}
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		filePath = path.Join(homeDir, ".goksql")
	}
	absDir, err := path.Abs(filePath)
	if err != nil {
		return "", err
	}
	return absDir, nil
}

func getConnectionName(name string) string {
	if len(name) != 0 {
		return name
	}
	return defaultConnectionName
}

func validateFilePermission(filePath string) error {
	if isWindows {
		return nil
	}
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	if permission := fileInfo.Mode().Perm(); permission != os.FileMode(0600) {
		return fmt.Errorf("your access to the file %v was denied, permissions must be 0600 but are %o", filePath, permission)
	}
	return nil
}

func shouldReadTokenFromFile(cfg *Config, tokenPath string) bool {
	return cfg != nil && cfg.Authenticator == AuthTypeBearer && len(cfg.Token) == 0 && tokenPath != ""
}
