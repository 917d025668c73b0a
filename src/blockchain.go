package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/prometheus/common/log"
)

const (
	// GenesisPreviousHash : sentinel parent hash of the first block
	GenesisPreviousHash = "0"
	// GenesisProof : proof stamped on the first block
	GenesisProof = 1
	// ProofPrefix : what a valid proof digest must start with
	ProofPrefix = "0000"

	// how many candidates FindProof tests between context checks
	cancelCheckInterval = 1 << 12
)

// NewLedger : Returns a ledger holding only the genesis block
func NewLedger() *Ledger {
	return newLedger(time.Now)
}

func newLedger(clock func() time.Time) *Ledger {
	l := &Ledger{
		chain:   make([]*Block, 0),
		pending: make([]*Transaction, 0),
		clock:   clock,
	}
	l.SealBlock(GenesisProof, GenesisPreviousHash)
	return l
}

// Ledger : The append-only chain of sealed blocks plus the pending buffer
type Ledger struct {
	mu      sync.RWMutex
	chain   []*Block
	pending []*Transaction
	clock   func() time.Time
}

// SealBlock : Appends a block carrying every pending transaction and empties
// the buffer. The proof is taken as given.
func (l *Ledger) SealBlock(proof int, previousHash string) *Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	block := &Block{
		Index:        len(l.chain) + 1,
		Timestamp:    l.clock().Format(TimestampLayout),
		Transactions: l.pending,
		Proof:        proof,
		PreviousHash: previousHash,
	}

	// Reset pending transactions
	l.pending = make([]*Transaction, 0)
	l.chain = append(l.chain, block)

	log.Infof("Sealed block %d with %d transactions", block.Index, len(block.Transactions))

	return block
}

// StageTransaction : Buffers a transaction and returns the index of the block
// that will hold it. Fields are stored as given.
func (l *Ledger) StageTransaction(medicineName string, quantity int, from string, to string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = append(l.pending, &Transaction{
		MedicineName: medicineName,
		Quantity:     quantity,
		From:         from,
		To:           to,
	})
	log.Debugf("Staged transaction of %d %s from %s to %s", quantity, medicineName, from, to)
	return l.chain[len(l.chain)-1].Index + 1
}

// LastBlock : Returns the most recently sealed block
func (l *Ledger) LastBlock() *Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain[len(l.chain)-1]
}

// Len : Returns the number of sealed blocks
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chain)
}

// Chain : Returns a deep copy of every sealed block, genesis first
func (l *Ledger) Chain() []*Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Block
	if err := copier.CopyWithOption(&out, &l.chain, copier.Option{DeepCopy: true}); err != nil {
		log.Errorf("Unable to copy chain: %s", err)
		return nil
	}
	return out
}

// Pending : Returns a deep copy of the transactions not yet sealed
func (l *Ledger) Pending() []*Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Transaction, 0, len(l.pending))
	if err := copier.CopyWithOption(&out, &l.pending, copier.Option{DeepCopy: true}); err != nil {
		log.Errorf("Unable to copy pending transactions: %s", err)
		return nil
	}
	return out
}

// ProofOfWork : Searches without bound for the smallest valid proof
func ProofOfWork(lastProof int) int {
	proof, _ := FindProof(context.Background(), lastProof)
	return proof
}

// FindProof : Returns the smallest counter p, starting from zero, for which
// ValidProof(lastProof, p) holds. It gives up with ctx.Err() once the context
// is done.
func FindProof(ctx context.Context, lastProof int) (int, error) {
	prefix := strconv.Itoa(lastProof)
	for proof := 0; ; proof++ {
		if proof%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if validGuess(prefix, proof) {
			return proof, nil
		}
	}
}

// ValidProof : Reports whether sha256("{lastProof}{proof}") has four leading
// hex zeros
func ValidProof(lastProof int, proof int) bool {
	return validGuess(strconv.Itoa(lastProof), proof)
}

func validGuess(lastProof string, proof int) bool {
	guessHash := sha256.Sum256([]byte(lastProof + strconv.Itoa(proof)))
	return strings.HasPrefix(hex.EncodeToString(guessHash[:]), ProofPrefix)
}
