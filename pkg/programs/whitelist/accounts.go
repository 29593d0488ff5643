package whitelist

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

type Authority struct {
	Bump     uint8
	Cosigner solana.PublicKey
	Owner    solana.PublicKey
}

type Whitelist struct {
	Version  uint8
	Bump     uint8
	Verified bool
	RootHash [32]byte
	UUID     [32]byte
	Name     [32]byte
	Frozen   bool
	Voc      *solana.PublicKey
	Fvc      *solana.PublicKey
}

// Encode renders the account with its anchor discriminator.
func (a Authority) Encode() ([]byte, error) {
	return programs.EncodeData(AuthorityAccountDiscriminator[:], func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(a.Bump); err != nil {
			return err
		}
		if err := enc.WriteBytes(a.Cosigner[:], false); err != nil {
			return err
		}
		return enc.WriteBytes(a.Owner[:], false)
	})
}

func DecodeAuthority(data []byte) (*Authority, error) {
	dec := bin.NewBorshDecoder(data)
	if err := programs.ExpectDiscriminator(dec, AuthorityAccountDiscriminator); err != nil {
		return nil, err
	}
	out := &Authority{}
	var err error
	if out.Bump, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	cosigner, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	out.Cosigner = solana.PublicKeyFromBytes(cosigner)
	owner, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	out.Owner = solana.PublicKeyFromBytes(owner)
	return out, nil
}

func (w Whitelist) Encode() ([]byte, error) {
	return programs.EncodeData(WhitelistAccountDiscriminator[:], func(enc *bin.Encoder) error {
		if err := enc.WriteUint8(w.Version); err != nil {
			return err
		}
		if err := enc.WriteUint8(w.Bump); err != nil {
			return err
		}
		if err := enc.WriteBool(w.Verified); err != nil {
			return err
		}
		for _, b := range [][32]byte{w.RootHash, w.UUID, w.Name} {
			if err := enc.WriteBytes(b[:], false); err != nil {
				return err
			}
		}
		if err := enc.WriteBool(w.Frozen); err != nil {
			return err
		}
		if err := programs.WriteOptionalKey(enc, w.Voc); err != nil {
			return err
		}
		return programs.WriteOptionalKey(enc, w.Fvc)
	})
}

func DecodeWhitelist(data []byte) (*Whitelist, error) {
	dec := bin.NewBorshDecoder(data)
	if err := programs.ExpectDiscriminator(dec, WhitelistAccountDiscriminator); err != nil {
		return nil, err
	}
	out := &Whitelist{}
	var err error
	if out.Version, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	if out.Bump, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	if out.Verified, err = dec.ReadBool(); err != nil {
		return nil, err
	}
	for _, dst := range []*[32]byte{&out.RootHash, &out.UUID, &out.Name} {
		b, err := dec.ReadNBytes(32)
		if err != nil {
			return nil, err
		}
		copy(dst[:], b)
	}
	if out.Frozen, err = dec.ReadBool(); err != nil {
		return nil, err
	}
	if out.Voc, err = readOptionalKey(dec); err != nil {
		return nil, err
	}
	if out.Fvc, err = readOptionalKey(dec); err != nil {
		return nil, err
	}
	return out, nil
}

// NameString trims the zero padding off the stored name.
func (w Whitelist) NameString() string {
	return string(bytes.TrimRight(w.Name[:], "\x00"))
}
