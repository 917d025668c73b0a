package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	uuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/log"

	ledger "medchain/src"
	"medchain/src/config"
)

type contextKey int

const claimsKey contextKey = iota

var (
	// ErrProofTimeout : the proof search outlived the configured proof timeout
	ErrProofTimeout = errors.New("proof of work search did not finish in time")

	// ErrProofCancelled : the request was cancelled before a proof was found
	ErrProofCancelled = errors.New("proof of work search cancelled")
)

// API : HTTP front end for a single in-memory ledger
type API struct {
	ledger         *ledger.Ledger
	users          *UserStore
	sessions       *Sessions
	metrics        *Metrics
	registry       *prometheus.Registry
	nodeIdentifier string
	proofTimeout   time.Duration

	// one seal workflow at a time, so no two blocks share a parent
	sealMu sync.Mutex
}

// New : Returns an API over a fresh ledger
func New(cfg config.ServerConfig, users *UserStore) *API {
	registry := prometheus.NewRegistry()
	a := &API{
		ledger:         ledger.NewLedger(),
		users:          users,
		sessions:       NewSessions([]byte(cfg.SessionSecret), cfg.SessionTTL),
		metrics:        NewMetrics(registry),
		registry:       registry,
		nodeIdentifier: getUUID(),
		proofTimeout:   cfg.ProofTimeout,
	}
	a.metrics.ChainLength.Set(float64(a.ledger.Len()))
	return a
}

// Ledger : Returns the ledger the API serves
func (a *API) Ledger() *ledger.Ledger {
	return a.ledger
}

// NodeIdentifier : Returns the UUID generated for this process
func (a *API) NodeIdentifier() string {
	return a.nodeIdentifier
}

// Router : Returns the handler exposing every endpoint
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/signup", a.signup).Methods(http.MethodPost)
	r.HandleFunc("/login", a.login).Methods(http.MethodPost)
	r.HandleFunc("/nodes/uuid", a.getNodeUUID).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	auth := r.NewRoute().Subrouter()
	auth.Use(a.authenticate)
	auth.HandleFunc("/logout", a.logout).Methods(http.MethodPost)
	auth.HandleFunc("/home", a.home).Methods(http.MethodGet)
	auth.HandleFunc("/chain", a.chain).Methods(http.MethodGet)
	auth.HandleFunc("/chain/verify", a.verifyChain).Methods(http.MethodGet)
	auth.HandleFunc("/transactions/new", a.transactionsNew).Methods(http.MethodPost)
	auth.HandleFunc("/mine", a.mine).Methods(http.MethodPost)
	auth.HandleFunc("/records", a.records).Methods(http.MethodPost)
	return r
}

// Credentials : signup and login request body
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse : reply to a successful signup or login
type SessionResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// HomeResponse : greeting data for a logged in user
type HomeResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Node     string `json:"node"`
	Length   int    `json:"length"`
}

// VerifyResponse : result of auditing the chain
type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// StagedResponse : reply to staging a transaction
type StagedResponse struct {
	Message string `json:"message"`
	Index   int    `json:"index"`
}

// RecordResponse : reply to adding a medicine record
type RecordResponse struct {
	Message string        `json:"message"`
	Block   *ledger.Block `json:"block"`
}

func (a *API) signup(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	username, err := a.users.Signup(creds.Username, creds.Password)
	switch errors.Cause(err) {
	case nil:
	case ErrBlankCredentials:
		writeError(w, http.StatusBadRequest, "invalid_request", "Please fill both username and password.")
		return
	case ErrUserExists:
		writeError(w, http.StatusConflict, "user_exists", "Username already exists! Choose another.")
		return
	default:
		log.Errorf("Signup failed: %s", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Signup failed")
		return
	}
	a.metrics.Signups.Inc()
	log.Infof("Registered user %s", username)

	a.startSession(w, http.StatusCreated, username, "Signup successful! You are now logged in.")
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	username, err := a.users.Authenticate(creds.Username, creds.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}

	a.startSession(w, http.StatusOK, username, "Logged in successfully!")
}

func (a *API) startSession(w http.ResponseWriter, statusCode int, username, message string) {
	token, err := a.sessions.Issue(username)
	if err != nil {
		log.Errorf("Unable to issue session for %s: %s", username, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to start session")
		return
	}
	writeJSON(w, statusCode, SessionResponse{Message: message, Username: username, Token: token})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	a.sessions.Revoke(claims)
	log.Infof("User %s logged out", claims.Username())
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully!"})
}

func (a *API) home(w http.ResponseWriter, r *http.Request) {
	username := claimsFrom(r.Context()).Username()
	writeJSON(w, http.StatusOK, HomeResponse{
		Message:  fmt.Sprintf("Hello, %s! Manage your medicine records securely with blockchain.", username),
		Username: username,
		Node:     a.nodeIdentifier,
		Length:   a.ledger.Len(),
	})
}

func (a *API) getNodeUUID(w http.ResponseWriter, req *http.Request) {
	w.Write([]byte(a.nodeIdentifier))
}

func (a *API) chain(w http.ResponseWriter, req *http.Request) {
	chain := a.ledger.Chain()
	writeJSON(w, http.StatusOK, &ledger.ChainDTO{
		Chain:  chain,
		Length: len(chain),
	})
}

func (a *API) verifyChain(w http.ResponseWriter, req *http.Request) {
	response := VerifyResponse{Valid: true}
	if err := ledger.ValidChain(a.ledger.Chain()); err != nil {
		response = VerifyResponse{Valid: false, Error: err.Error()}
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) transactionsNew(w http.ResponseWriter, r *http.Request) {
	transaction, ok := decodeTransaction(w, r)
	if !ok {
		return
	}

	index := a.stage(transaction)
	writeJSON(w, http.StatusCreated, StagedResponse{
		Message: fmt.Sprintf("Transaction will be added to block %d", index),
		Index:   index,
	})
}

func (a *API) mine(w http.ResponseWriter, r *http.Request) {
	block, err := a.sealPending(r.Context())
	if err != nil {
		writeSealError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (a *API) records(w http.ResponseWriter, r *http.Request) {
	transaction, ok := decodeTransaction(w, r)
	if !ok {
		return
	}

	// stage and seal under one lock so the new block holds this record
	a.sealMu.Lock()
	a.stage(transaction)
	block, err := a.sealLocked(r.Context())
	a.sealMu.Unlock()
	if err != nil {
		writeSealError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RecordResponse{
		Message: fmt.Sprintf("Transaction added! New Block #%d created.", block.Index),
		Block:   block,
	})
}

func (a *API) stage(transaction ledger.Transaction) int {
	index := a.ledger.StageTransaction(transaction.MedicineName, transaction.Quantity, transaction.From, transaction.To)
	a.metrics.TransactionsStaged.Inc()
	return index
}

// sealPending : Runs the mining workflow under the seal lock
func (a *API) sealPending(ctx context.Context) (*ledger.Block, error) {
	a.sealMu.Lock()
	defer a.sealMu.Unlock()
	return a.sealLocked(ctx)
}

// sealLocked searches a proof over the last block's proof, hashes the last
// block, then seals the pending buffer on top of it. Callers hold sealMu.
func (a *API) sealLocked(ctx context.Context) (*ledger.Block, error) {
	ctx, cancel := context.WithTimeout(ctx, a.proofTimeout)
	defer cancel()

	lastBlock := a.ledger.LastBlock()
	start := time.Now()
	proof, err := ledger.FindProof(ctx, lastBlock.Proof)
	a.metrics.ProofSearch.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Errorf("Proof search over proof %d timed out after %s", lastBlock.Proof, a.proofTimeout)
			return nil, errors.Wrap(ErrProofTimeout, err.Error())
		}
		log.Infof("Proof search over proof %d cancelled: %s", lastBlock.Proof, err)
		return nil, errors.Wrap(ErrProofCancelled, err.Error())
	}

	previousHash := ledger.Hash(lastBlock)
	block := a.ledger.SealBlock(proof, previousHash)
	a.metrics.BlocksSealed.Inc()
	a.metrics.ChainLength.Set(float64(block.Index))
	return block, nil
}

func writeSealError(w http.ResponseWriter, err error) {
	switch errors.Cause(err) {
	case ErrProofTimeout:
		writeError(w, http.StatusServiceUnavailable, "proof_timeout", "Proof of work search timed out, transactions stay pending")
	case ErrProofCancelled:
		writeError(w, http.StatusServiceUnavailable, "proof_cancelled", "Proof of work search was cancelled, transactions stay pending")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// decodeTransaction reads a transaction and applies the form rules: every
// name filled in and at least one unit.
func decodeTransaction(w http.ResponseWriter, r *http.Request) (ledger.Transaction, bool) {
	var transaction ledger.Transaction
	if err := json.NewDecoder(r.Body).Decode(&transaction); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return transaction, false
	}

	if strings.TrimSpace(transaction.MedicineName) == "" ||
		strings.TrimSpace(transaction.From) == "" ||
		strings.TrimSpace(transaction.To) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Please fill all fields before adding.")
		return transaction, false
	}
	if transaction.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid_request", "Quantity must be at least 1.")
		return transaction, false
	}
	return transaction, true
}

func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Authorization header required")
			return
		}

		claims, err := a.sessions.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired session")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func claimsFrom(ctx context.Context) *Claims {
	return ctx.Value(claimsKey).(*Claims)
}

func getUUID() string {
	u, err := uuid.NewV4()
	if err != nil {
		log.Error("Unable to generate node uuid")
		return ""
	}
	return u.String()
}
