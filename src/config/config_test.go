package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"medchain/src/config"
)

func TestServerConfigValidate(t *testing.T) {
	valid := config.ServerConfig{
		Addr:          ":8000",
		SessionSecret: "secret",
		SessionTTL:    time.Hour,
		ProofTimeout:  time.Second,
	}
	assert.NoError(t, valid.Validate())

	noAddr := valid
	noAddr.Addr = ""
	assert.EqualError(t, noAddr.Validate(), "missing listen address")

	noSecret := valid
	noSecret.SessionSecret = ""
	assert.EqualError(t, noSecret.Validate(), "missing session secret")

	badTTL := valid
	badTTL.SessionTTL = 0
	assert.EqualError(t, badTTL.Validate(), "session ttl must be positive, got 0s")

	badTimeout := valid
	badTimeout.ProofTimeout = -time.Second
	assert.EqualError(t, badTimeout.Validate(), "proof timeout must be positive, got -1s")
}

func TestClientConfigValidate(t *testing.T) {
	assert.NoError(t, config.ClientConfig{Server: "http://localhost:8000", Token: "t"}.Validate())
	assert.EqualError(t, config.ClientConfig{Token: "t"}.Validate(), "missing server address")
	assert.EqualError(t, config.ClientConfig{Server: "http://localhost:8000"}.Validate(), "missing session token")
}
