// Package whitelist builds instructions for the Tensor whitelist program and decodes its
// accounts.
package whitelist

import (
	"bytes"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

const CurrentWhitelistVersion uint8 = 1

var (
	initUpdateAuthorityDiscriminator = programs.AnchorDiscriminator("init_update_authority")
	initUpdateWhitelistDiscriminator = programs.AnchorDiscriminator("init_update_whitelist")

	AuthorityAccountDiscriminator = programs.AnchorAccountDiscriminator("Authority")
	WhitelistAccountDiscriminator = programs.AnchorAccountDiscriminator("Whitelist")
)

// FindAuthorityPda derives the program-wide authority account.
func FindAuthorityPda() (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{}, programs.WhitelistProgramID)
}

func FindWhitelistPda(uuid [32]byte) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{uuid[:]}, programs.WhitelistProgramID)
}

// GenWhitelistUUID returns a fresh v4 UUID in its 36-character form.
func GenWhitelistUUID() string {
	return uuid.NewString()
}

// UUIDToBuffer packs a UUID into the 32-byte seed the program expects: the hex digits
// without dashes.
func UUIDToBuffer(id string) ([32]byte, error) {
	var out [32]byte
	parsed, err := uuid.Parse(id)
	if err != nil {
		return out, err
	}
	copy(out[:], strings.ReplaceAll(parsed.String(), "-", ""))
	return out, nil
}

// NameToBuffer zero-pads name to 32 bytes.
func NameToBuffer(name string) ([32]byte, error) {
	var out [32]byte
	if len(name) > len(out) {
		return out, fmt.Errorf("whitelist name %q is longer than 32 bytes", name)
	}
	copy(out[:], name)
	return out, nil
}

type InitUpdateAuthorityAccounts struct {
	Cosigner solana.PublicKey
	Owner    solana.PublicKey
}

type InitUpdateAuthorityArgs struct {
	NewCosigner *solana.PublicKey
	NewOwner    *solana.PublicKey
}

func NewInitUpdateAuthorityInstruction(accounts InitUpdateAuthorityAccounts, args InitUpdateAuthorityArgs) (solana.Instruction, solana.PublicKey, error) {
	authority, _, err := FindAuthorityPda()
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := programs.EncodeData(initUpdateAuthorityDiscriminator[:], func(enc *bin.Encoder) error {
		if err := programs.WriteOptionalKey(enc, args.NewCosigner); err != nil {
			return err
		}
		return programs.WriteOptionalKey(enc, args.NewOwner)
	})
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(authority).WRITE(),
		solana.Meta(accounts.Cosigner).SIGNER(),
		solana.Meta(accounts.Owner).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(programs.WhitelistProgramID, metas, data), authority, nil
}

type InitUpdateWhitelistArgs struct {
	UUID     [32]byte
	RootHash *[32]byte
	Name     *[32]byte
	Voc      *solana.PublicKey
	Fvc      *solana.PublicKey
}

func NewInitUpdateWhitelistInstruction(cosigner solana.PublicKey, args InitUpdateWhitelistArgs) (solana.Instruction, solana.PublicKey, error) {
	authority, _, err := FindAuthorityPda()
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	whitelist, _, err := FindWhitelistPda(args.UUID)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := programs.EncodeData(initUpdateWhitelistDiscriminator[:], args.MarshalWithEncoder)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(whitelist).WRITE(),
		solana.Meta(authority),
		solana.Meta(cosigner).WRITE().SIGNER(),
		solana.Meta(solana.SystemProgramID),
	}
	return solana.NewInstruction(programs.WhitelistProgramID, metas, data), whitelist, nil
}

func (a InitUpdateWhitelistArgs) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(a.UUID[:], false); err != nil {
		return err
	}
	if err := programs.WriteOptionalBytes32(enc, a.RootHash); err != nil {
		return err
	}
	if err := programs.WriteOptionalBytes32(enc, a.Name); err != nil {
		return err
	}
	if err := programs.WriteOptionalKey(enc, a.Voc); err != nil {
		return err
	}
	return programs.WriteOptionalKey(enc, a.Fvc)
}

// ParseInitUpdateAuthority decodes init_update_authority instruction data.
func ParseInitUpdateAuthority(data []byte) (*InitUpdateAuthorityArgs, error) {
	dec := bin.NewBorshDecoder(data)
	if err := programs.ExpectDiscriminator(dec, initUpdateAuthorityDiscriminator); err != nil {
		return nil, err
	}
	args := &InitUpdateAuthorityArgs{}
	var err error
	if args.NewCosigner, err = readOptionalKey(dec); err != nil {
		return nil, err
	}
	if args.NewOwner, err = readOptionalKey(dec); err != nil {
		return nil, err
	}
	return args, nil
}

// ParseInitUpdateWhitelist decodes init_update_whitelist instruction data.
func ParseInitUpdateWhitelist(data []byte) (*InitUpdateWhitelistArgs, error) {
	dec := bin.NewBorshDecoder(data)
	if err := programs.ExpectDiscriminator(dec, initUpdateWhitelistDiscriminator); err != nil {
		return nil, err
	}
	args := &InitUpdateWhitelistArgs{}
	id, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	copy(args.UUID[:], id)
	if args.RootHash, err = readOptionalBytes32(dec); err != nil {
		return nil, err
	}
	if args.Name, err = readOptionalBytes32(dec); err != nil {
		return nil, err
	}
	if args.Voc, err = readOptionalKey(dec); err != nil {
		return nil, err
	}
	if args.Fvc, err = readOptionalKey(dec); err != nil {
		return nil, err
	}
	return args, nil
}

// IsInitUpdateAuthority reports whether data starts with the init_update_authority
// discriminator.
func IsInitUpdateAuthority(data []byte) bool {
	return len(data) >= 8 && bytes.Equal(data[:8], initUpdateAuthorityDiscriminator[:])
}

func readOptionalBytes32(dec *bin.Decoder) (*[32]byte, error) {
	some, err := dec.ReadBool()
	if err != nil || !some {
		return nil, err
	}
	b, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	var out [32]byte
	copy(out[:], b)
	return &out, nil
}

func readOptionalKey(dec *bin.Decoder) (*solana.PublicKey, error) {
	b, err := readOptionalBytes32(dec)
	if err != nil || b == nil {
		return nil, err
	}
	key := solana.PublicKey(*b)
	return &key, nil
}
