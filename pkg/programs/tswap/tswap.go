// Package tswap builds the TensorSwap config instruction and decodes the TSwap account.
package tswap

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

const (
	// TakerFeeBps is the protocol taker fee configured on init.
	TakerFeeBps uint16 = 140

	CurrentTSwapVersion uint8 = 1
)

var (
	initUpdateTSwapDiscriminator = programs.AnchorDiscriminator("init_update_tswap")

	TSwapAccountDiscriminator = programs.AnchorAccountDiscriminator("TSwap")
)

type Config struct {
	FeeBps uint16
}

type TSwap struct {
	Version  uint8
	Bump     uint8
	Config   Config
	Owner    solana.PublicKey
	FeeVault solana.PublicKey
	Cosigner solana.PublicKey
}

// FindTSwapPda derives the singleton config account, which also serves as fee vault.
func FindTSwapPda() (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{}, programs.TSwapProgramID)
}

type InitUpdateTSwapAccounts struct {
	Owner    solana.PublicKey
	NewOwner solana.PublicKey
	Cosigner solana.PublicKey
}

func NewInitUpdateTSwapInstruction(accounts InitUpdateTSwapAccounts, config Config) (solana.Instruction, solana.PublicKey, error) {
	tswapPda, _, err := FindTSwapPda()
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := programs.EncodeData(initUpdateTSwapDiscriminator[:], func(enc *bin.Encoder) error {
		return enc.WriteUint16(config.FeeBps, bin.LE)
	})
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(tswapPda).WRITE(),
		solana.Meta(tswapPda), // fee vault
		solana.Meta(accounts.Cosigner).SIGNER(),
		solana.Meta(accounts.Owner).WRITE().SIGNER(),
		solana.Meta(accounts.NewOwner).SIGNER(),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(programs.TSwapProgramID, metas, data), tswapPda, nil
}

// ParseInitUpdateTSwap decodes the config carried by init_update_tswap.
func ParseInitUpdateTSwap(data []byte) (*Config, error) {
	dec := bin.NewBorshDecoder(data)
	if err := programs.ExpectDiscriminator(dec, initUpdateTSwapDiscriminator); err != nil {
		return nil, err
	}
	fee, err := dec.ReadUint16(bin.LE)
	if err != nil {
		return nil, err
	}
	return &Config{FeeBps: fee}, nil
}

func (t TSwap) Encode() ([]byte, error) {
	return programs.EncodeData(TSwapAccountDiscriminator[:], func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(t.Version); err != nil {
			return err
		}
		if err := enc.WriteUint8(t.Bump); err != nil {
			return err
		}
		if err := enc.WriteUint16(t.Config.FeeBps, bin.LE); err != nil {
			return err
		}
		for _, key := range []solana.PublicKey{t.Owner, t.FeeVault, t.Cosigner} {
			if err := enc.WriteBytes(key[:], false); err != nil {
				return err
			}
		}
		return nil
	})
}

func DecodeTSwap(data []byte) (*TSwap, error) {
	dec := bin.NewBorshDecoder(data)
	if err := programs.ExpectDiscriminator(dec, TSwapAccountDiscriminator); err != nil {
		return nil, err
	}
	out := &TSwap{}
	var err error
	if out.Version, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	if out.Bump, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	if out.Config.FeeBps, err = dec.ReadUint16(bin.LE); err != nil {
		return nil, err
	}
	for _, dst := range []*solana.PublicKey{&out.Owner, &out.FeeVault, &out.Cosigner} {
		b, err := dec.ReadNBytes(32)
		if err != nil {
			return nil, err
		}
		*dst = solana.PublicKeyFromBytes(b)
	}
	return out, nil
}
