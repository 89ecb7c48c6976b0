// Package genesis maintains access to the genesis file which holds the
// configuration of a ledger network.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ardanlabs/naivecoin/foundation/validate"
)

// Genesis represents the genesis file.
type Genesis struct {
	Name              string      `json:"name" validate:"required"`
	FeePerTransaction uint64      `json:"fee_per_transaction"` // Minimum implicit fee a regular transaction must leave.
	GenesisBlock      Block       `json:"genesis_block"`
	ProofOfWork       ProofOfWork `json:"proof_of_work"`
	Mining            Mining      `json:"mining"`
}

// Block holds the fields of the trusted root block. The root block has index
// zero, no previous hash and no transactions.
type Block struct {
	Timestamp uint64 `json:"timestamp" validate:"required"`
	Nonce     uint64 `json:"nonce"`
}

// ProofOfWork holds the parameters of the target function.
type ProofOfWork struct {
	BaseDifficulty  uint64  `json:"base_difficulty" validate:"required"` // Easiest target, lower targets are harder.
	EveryXBlocks    uint64  `json:"every_x_blocks" validate:"required"`  // Number of blocks between retargets.
	PowCurve        float64 `json:"pow_curve" validate:"gte=0"`          // Exponent applied to the retarget step.
	TargetBlockTime uint64  `json:"target_block_time"`                   // Seconds per block, zero disables timing adjustment.
}

// Mining holds the parameters used when building a candidate block.
type Mining struct {
	MiningReward  uint64 `json:"mining_reward" validate:"required"`
	TransPerBlock uint16 `json:"trans_per_block" validate:"required"` // Maximum regular transactions per block.
}

// =============================================================================

// Default returns the configuration of the built in network.
func Default() Genesis {
	return Genesis{
		Name:              "naivecoin",
		FeePerTransaction: 1,
		GenesisBlock: Block{
			Timestamp: 1465154705,
		},
		ProofOfWork: ProofOfWork{
			BaseDifficulty: 9007199254740991,
			EveryXBlocks:   5,
			PowCurve:       5,
		},
		Mining: Mining{
			MiningReward:  5000000000,
			TransPerBlock: 100,
		},
	}
}

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := validate.Check(genesis); err != nil {
		return Genesis{}, fmt.Errorf("validating genesis: %w", err)
	}

	return genesis, nil
}
