package goksql

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// transportConfig holds the configuration for creating HTTP transports
type transportConfig struct {
	MaxIdleConns    int
	IdleConnTimeout time.Duration
	DialTimeout     time.Duration
	KeepAlive       time.Duration
}

func defaultTransportConfig(cfg *Config) *transportConfig {
	return &transportConfig{
		MaxIdleConns:    10,
		IdleConnTimeout: 30 * time.Minute,
		DialTimeout:     getConfigDuration(cfg.ConnectTimeout, defaultConnectTimeout),
		KeepAlive:       30 * time.Second,
	}
}

type transportFactory struct {
	config *Config
}

func newTransportFactory(config *Config) *transportFactory {
	return &transportFactory{config: config}
}

// createBaseTransport builds a transport that leaves compression to the response reader:
// Accept-Encoding is set explicitly, so net/http does not inflate bodies on its own.
func (tf *transportFactory) createBaseTransport(transportConfig *transportConfig, tlsConfig *tls.Config) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   transportConfig.DialTimeout,
		KeepAlive: transportConfig.KeepAlive,
	}

	return &http.Transport{
		TLSClientConfig:    tlsConfig,
		MaxIdleConns:       transportConfig.MaxIdleConns,
		IdleConnTimeout:    transportConfig.IdleConnTimeout,
		Proxy:              http.ProxyFromEnvironment,
		DialContext:        dialer.DialContext,
		DisableCompression: true,
	}
}

// createTransport is the main entry point for creating transports
func (tf *transportFactory) createTransport() http.RoundTripper {
	if tf.config.Transporter != nil {
		return tf.config.Transporter
	}
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: tf.config.InsecureMode,
	}
	if tf.config.InsecureMode {
		logger.Warn("TLS certificate verification is disabled")
	}
	return tf.createBaseTransport(defaultTransportConfig(tf.config), tlsConfig)
}

// getConfigDuration returns the config duration if non-zero, otherwise returns the default
func getConfigDuration(configValue, defaultValue time.Duration) time.Duration {
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}
