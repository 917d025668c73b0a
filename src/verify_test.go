package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "medchain/src"
)

func minedLedger(t *testing.T, blocks int) *ledger.Ledger {
	t.Helper()
	l := ledger.NewLedger()
	for i := 0; i < blocks; i++ {
		l.StageTransaction("Amoxicillin", i+1, "Factory", "Pharmacy")
		last := l.LastBlock()
		l.SealBlock(ledger.ProofOfWork(last.Proof), ledger.Hash(last))
	}
	return l
}

func TestValidChain(t *testing.T) {
	t.Run("Mined", func(t *testing.T) {
		assert.NoError(t, ledger.ValidChain(minedLedger(t, 3).Chain()))
	})

	t.Run("GenesisOnly", func(t *testing.T) {
		assert.NoError(t, ledger.ValidChain(ledger.NewLedger().Chain()))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.EqualError(t, ledger.ValidChain(nil), "empty chain")
	})

	t.Run("TamperedTransaction", func(t *testing.T) {
		chain := minedLedger(t, 2).Chain()
		chain[1].Transactions[0].Quantity = 1000
		err := ledger.ValidChain(chain)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "block 3: invalid previous hash")
	})

	t.Run("InvalidProof", func(t *testing.T) {
		l := ledger.NewLedger()
		l.SealBlock(0, ledger.Hash(l.LastBlock()))
		err := ledger.ValidChain(l.Chain())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "block 2: proof 0")
	})

	t.Run("BrokenLink", func(t *testing.T) {
		l := ledger.NewLedger()
		l.SealBlock(ledger.ProofOfWork(ledger.GenesisProof), "not-the-parent")
		err := ledger.ValidChain(l.Chain())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid previous hash")
	})

	t.Run("BadGenesis", func(t *testing.T) {
		chain := ledger.NewLedger().Chain()
		chain[0].PreviousHash = "1"
		assert.EqualError(t, ledger.ValidChain(chain), "invalid genesis block")
	})
}
