package ledger

import "github.com/pkg/errors"

// ValidChain : Audits a chain for genesis shape, index continuity, previous-hash
// links and proof validity between neighbours. SealBlock never calls it.
func ValidChain(chain []*Block) error {
	if len(chain) == 0 {
		return errors.New("empty chain")
	}

	genesis := chain[0]
	if genesis.Index != 1 || genesis.PreviousHash != GenesisPreviousHash || genesis.Proof != GenesisProof {
		return errors.New("invalid genesis block")
	}

	lastBlock := genesis
	for _, block := range chain[1:] {
		if block.Index != lastBlock.Index+1 {
			return errors.Errorf("block %d: invalid index, expected %d", block.Index, lastBlock.Index+1)
		}

		if expected := Hash(lastBlock); block.PreviousHash != expected {
			return errors.Errorf("block %d: invalid previous hash: expected %s, got %s", block.Index, expected, block.PreviousHash)
		}

		if !ValidProof(lastBlock.Proof, block.Proof) {
			return errors.Errorf("block %d: proof %d does not satisfy proof of work over %d", block.Index, block.Proof, lastBlock.Proof)
		}

		lastBlock = block
	}

	return nil
}
