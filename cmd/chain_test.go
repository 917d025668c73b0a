package cmd_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"medchain/cmd"
	ledger "medchain/src"
	"medchain/src/config"
	"medchain/src/web"
)

func startNode(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	api := web.New(config.ServerConfig{
		Addr:          ":0",
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		ProofTimeout:  10 * time.Second,
	}, web.NewUserStoreWithCost(bcrypt.MinCost))
	server := httptest.NewServer(api.Router())
	t.Cleanup(server.Close)

	body, err := json.Marshal(web.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	resp, err := http.Post(server.URL+"/signup", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session web.SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return server, session.Token
}

func TestChainCmd(t *testing.T) {
	server, token := startNode(t)

	record, err := json.Marshal(ledger.Transaction{MedicineName: "Insulin", Quantity: 40, From: "PharmacyC", To: "ClinicD"})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/records", bytes.NewReader(record))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	output, err := executeCommand(cmd.RootCmd, "chain", "--server", server.URL, "--token", token, "--logLevel", "info")
	require.NoError(t, err)
	assert.Contains(t, output, "Block #2")
	assert.Contains(t, output, "Insulin | Qty: 40 | From: PharmacyC -> To: ClinicD")
	assert.Contains(t, output, "Chain valid")
}

func TestChainCmdUnauthorized(t *testing.T) {
	server, _ := startNode(t)

	_, err := executeCommand(cmd.RootCmd, "chain", "--server", server.URL, "--token", "bogus", "--logLevel", "info")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Invalid or expired session")
}

func TestChainCmdMissingToken(t *testing.T) {
	_, err := executeCommand(cmd.RootCmd, "chain", "--server", "http://localhost:1", "--token", "", "--logLevel", "info")
	assert.ErrorContains(t, err, "missing session token")
}
