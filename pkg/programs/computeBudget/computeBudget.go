package computeBudget

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

const (
	setComputeUnitLimit uint8 = 2
	setComputeUnitPrice uint8 = 3
)

func NewSetComputeUnitLimitInstruction(units uint32) (solana.Instruction, error) {
	data, err := programs.EncodeData([]byte{setComputeUnitLimit}, func(enc *bin.Encoder) error {
		return enc.WriteUint32(units, bin.LE)
	})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programs.ComputeBudgetProgramID, solana.AccountMetaSlice{}, data), nil
}

func NewSetComputeUnitPriceInstruction(microLamports uint64) (solana.Instruction, error) {
	data, err := programs.EncodeData([]byte{setComputeUnitPrice}, func(enc *bin.Encoder) error {
		return enc.WriteUint64(microLamports, bin.LE)
	})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programs.ComputeBudgetProgramID, solana.AccountMetaSlice{}, data), nil
}

// PrependComputeIxs puts a unit limit (and, when set, a unit price) ahead of ixs.
func PrependComputeIxs(ixs []solana.Instruction, units uint32, microLamports *uint64) ([]solana.Instruction, error) {
	out := make([]solana.Instruction, 0, len(ixs)+2)
	limit, err := NewSetComputeUnitLimitInstruction(units)
	if err != nil {
		return nil, err
	}
	out = append(out, limit)
	if microLamports != nil {
		price, err := NewSetComputeUnitPriceInstruction(*microLamports)
		if err != nil {
			return nil, err
		}
		out = append(out, price)
	}
	return append(out, ixs...), nil
}
