// Package programs holds the program IDs and discriminator helpers shared by the
// instruction factories under pkg/programs/...
package programs

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	BubblegumProgramID          = solana.MustPublicKeyFromBase58("BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY")
	AccountCompressionProgramID = solana.MustPublicKeyFromBase58("cmtDvXumGCrqC1Age74AVPhSRVXJMd8PJS91L8KbNCK")
	NoopProgramID               = solana.MustPublicKeyFromBase58("noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV")
	TokenMetadataProgramID      = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	TokenAuthRulesProgramID     = solana.MustPublicKeyFromBase58("auth9SigNpDKz4sJJ1DfCTuZrZNSAgh9sFD3rboVmgg")
	WhitelistProgramID          = solana.MustPublicKeyFromBase58("TL1ST2iRBzuGTqLn1KXnGdSnEow62BzPnGiqyRXhWtW")
	TSwapProgramID              = solana.MustPublicKeyFromBase58("TSWAPaqyCSx2KABk68Shruf4rp7CxcNi8hAsbdwmHbN")
	ComputeBudgetProgramID      = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
)

// AnchorDiscriminator returns the 8-byte instruction discriminator Anchor derives from
// sha256("global:<name>").
func AnchorDiscriminator(name string) [8]byte {
	return anchorHash("global:" + name)
}

// AnchorAccountDiscriminator returns the 8-byte account discriminator Anchor derives from
// sha256("account:<Name>").
func AnchorAccountDiscriminator(name string) [8]byte {
	return anchorHash("account:" + name)
}

func anchorHash(preimage string) [8]byte {
	sum := sha256.Sum256([]byte(preimage))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// OptionalAccount returns key when set, otherwise the program ID, which is how shank
// programs mark an omitted optional account.
func OptionalAccount(key *solana.PublicKey, programID solana.PublicKey) solana.PublicKey {
	if key == nil {
		return programID
	}
	return *key
}

// EncodeData builds instruction data from a fixed prefix (discriminator or variant
// index) followed by whatever write emits in borsh.
func EncodeData(prefix []byte, write func(enc *bin.Encoder) error) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(prefix)
	if write == nil {
		return buf.Bytes(), nil
	}
	if err := write(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteOptionalKey writes a borsh Option<Pubkey>.
func WriteOptionalKey(enc *bin.Encoder, key *solana.PublicKey) error {
	if err := enc.WriteBool(key != nil); err != nil {
		return err
	}
	if key == nil {
		return nil
	}
	return enc.WriteBytes(key[:], false)
}

// WriteOptionalBytes32 writes a borsh Option<[u8; 32]>.
func WriteOptionalBytes32(enc *bin.Encoder, b *[32]byte) error {
	if err := enc.WriteBool(b != nil); err != nil {
		return err
	}
	if b == nil {
		return nil
	}
	return enc.WriteBytes(b[:], false)
}

// ExpectDiscriminator consumes an 8-byte discriminator and checks it against want.
func ExpectDiscriminator(dec *bin.Decoder, want [8]byte) error {
	got, err := dec.ReadNBytes(8)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want[:]) {
		return fmt.Errorf("discriminator mismatch: got %x, want %x", got, want)
	}
	return nil
}
