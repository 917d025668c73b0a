package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DefaultAddr         = ":8000"
	DefaultSessionTTL   = 24 * time.Hour
	DefaultProofTimeout = 30 * time.Second
	DefaultServer       = "http://localhost:8000"
)

type ServerConfig struct {
	Addr          string
	SessionSecret string
	SessionTTL    time.Duration
	ProofTimeout  time.Duration
}

func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("missing listen address")
	}
	if c.SessionSecret == "" {
		return errors.New("missing session secret")
	}
	if c.SessionTTL <= 0 {
		return errors.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.ProofTimeout <= 0 {
		return errors.Errorf("proof timeout must be positive, got %s", c.ProofTimeout)
	}
	return nil
}

func LoadServerConfigFromCLI() ServerConfig {
	return ServerConfig{
		Addr:          viper.GetString("addr"),
		SessionSecret: viper.GetString("session-secret"),
		SessionTTL:    viper.GetDuration("session-ttl"),
		ProofTimeout:  viper.GetDuration("proof-timeout"),
	}
}

type ClientConfig struct {
	Server string
	Token  string
}

func (c ClientConfig) Validate() error {
	if c.Server == "" {
		return errors.New("missing server address")
	}
	if c.Token == "" {
		return errors.New("missing session token")
	}
	return nil
}

func LoadClientConfigFromCLI() ClientConfig {
	return ClientConfig{
		Server: viper.GetString("server"),
		Token:  viper.GetString("token"),
	}
}
