package tokenMetadata

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/cnft"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

// TokenStandard extends the compressed standards with the programmable variants only
// token-metadata knows about.
type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
	TokenStandardProgrammableNonFungible
	TokenStandardProgrammableNonFungibleEdition
)

type Creator = cnft.Creator
type Collection = cnft.Collection
type Uses = cnft.Uses

// CollectionDetails marks a collection parent NFT. Only V1 exists.
type CollectionDetails struct {
	Size uint64
}

// DataV2 is the metadata payload of CreateMetadataAccountV3.
type DataV2 struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	Collection           *Collection
	Uses                 *Uses
}

// AssetData is the metadata payload of the Create instruction.
type AssetData struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
	PrimarySaleHappened  bool
	IsMutable            bool
	TokenStandard        TokenStandard
	Collection           *Collection
	Uses                 *Uses
	CollectionDetails    *CollectionDetails
	RuleSet              *solana.PublicKey
}

// CreateArgs is the argument enum of Create. CreateArgsV1 is its only variant.
type CreateArgs interface {
	isCreateArgs()
}

type CreateArgsV1 struct {
	AssetData   AssetData
	Decimals    *uint8
	PrintSupply PrintSupply
}

func (CreateArgsV1) isCreateArgs() {}

// PrintSupply bounds how many editions a master edition may print. A nil PrintSupply
// encodes as None.
type PrintSupply interface {
	isPrintSupply()
}

type PrintSupplyZero struct{}

type PrintSupplyLimited struct {
	Max uint64
}

type PrintSupplyUnlimited struct{}

func (PrintSupplyZero) isPrintSupply()      {}
func (PrintSupplyLimited) isPrintSupply()   {}
func (PrintSupplyUnlimited) isPrintSupply() {}

// MintArgs is the argument enum of Mint. MintArgsV1 is its only variant.
type MintArgs interface {
	isMintArgs()
}

// MintArgsV1 mints Amount tokens. Authorization data, when present, is sent with an
// empty payload map.
type MintArgsV1 struct {
	Amount            uint64
	AuthorizationData bool
}

func (MintArgsV1) isMintArgs() {}

// VerificationArgs selects what Verify verifies.
type VerificationArgs uint8

const (
	VerificationArgsCreatorV1 VerificationArgs = iota
	VerificationArgsCollectionV1
)

func writeCreators(enc *bin.Encoder, creators []Creator) error {
	if err := enc.WriteBool(creators != nil); err != nil {
		return err
	}
	if creators == nil {
		return nil
	}
	if err := enc.WriteUint32(uint32(len(creators)), bin.LE); err != nil {
		return err
	}
	for _, c := range creators {
		if err := enc.WriteBytes(c.Address[:], false); err != nil {
			return err
		}
		if err := enc.WriteBool(c.Verified); err != nil {
			return err
		}
		if err := enc.WriteUint8(c.Share); err != nil {
			return err
		}
	}
	return nil
}

func writeCollection(enc *bin.Encoder, c *Collection) error {
	if err := enc.WriteBool(c != nil); err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	if err := enc.WriteBool(c.Verified); err != nil {
		return err
	}
	return enc.WriteBytes(c.Key[:], false)
}

func writeUses(enc *bin.Encoder, u *Uses) error {
	if err := enc.WriteBool(u != nil); err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	if err := enc.WriteUint8(uint8(u.UseMethod)); err != nil {
		return err
	}
	if err := enc.WriteUint64(u.Remaining, bin.LE); err != nil {
		return err
	}
	return enc.WriteUint64(u.Total, bin.LE)
}

func writeCollectionDetails(enc *bin.Encoder, d *CollectionDetails) error {
	if err := enc.WriteBool(d != nil); err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	if err := enc.WriteUint8(0); err != nil {
		return err
	}
	return enc.WriteUint64(d.Size, bin.LE)
}

func (d DataV2) MarshalWithEncoder(enc *bin.Encoder) error {
	for _, s := range []string{d.Name, d.Symbol, d.Uri} {
		if err := enc.WriteString(s); err != nil {
			return err
		}
	}
	if err := enc.WriteUint16(d.SellerFeeBasisPoints, bin.LE); err != nil {
		return err
	}
	if err := writeCreators(enc, d.Creators); err != nil {
		return err
	}
	if err := writeCollection(enc, d.Collection); err != nil {
		return err
	}
	return writeUses(enc, d.Uses)
}

func (a AssetData) MarshalWithEncoder(enc *bin.Encoder) error {
	for _, s := range []string{a.Name, a.Symbol, a.Uri} {
		if err := enc.WriteString(s); err != nil {
			return err
		}
	}
	if err := enc.WriteUint16(a.SellerFeeBasisPoints, bin.LE); err != nil {
		return err
	}
	if err := writeCreators(enc, a.Creators); err != nil {
		return err
	}
	if err := enc.WriteBool(a.PrimarySaleHappened); err != nil {
		return err
	}
	if err := enc.WriteBool(a.IsMutable); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(a.TokenStandard)); err != nil {
		return err
	}
	if err := writeCollection(enc, a.Collection); err != nil {
		return err
	}
	if err := writeUses(enc, a.Uses); err != nil {
		return err
	}
	if err := writeCollectionDetails(enc, a.CollectionDetails); err != nil {
		return err
	}
	return programs.WriteOptionalKey(enc, a.RuleSet)
}

func writeCreateArgs(enc *bin.Encoder, args CreateArgs) error {
	switch a := args.(type) {
	case CreateArgsV1:
		if err := enc.WriteUint8(0); err != nil {
			return err
		}
		if err := a.AssetData.MarshalWithEncoder(enc); err != nil {
			return err
		}
		if err := enc.WriteBool(a.Decimals != nil); err != nil {
			return err
		}
		if a.Decimals != nil {
			if err := enc.WriteUint8(*a.Decimals); err != nil {
				return err
			}
		}
		return writePrintSupply(enc, a.PrintSupply)
	default:
		return fmt.Errorf("unsupported create args %T", args)
	}
}

func writePrintSupply(enc *bin.Encoder, supply PrintSupply) error {
	if err := enc.WriteBool(supply != nil); err != nil {
		return err
	}
	switch s := supply.(type) {
	case nil:
		return nil
	case PrintSupplyZero:
		return enc.WriteUint8(0)
	case PrintSupplyLimited:
		if err := enc.WriteUint8(1); err != nil {
			return err
		}
		return enc.WriteUint64(s.Max, bin.LE)
	case PrintSupplyUnlimited:
		return enc.WriteUint8(2)
	default:
		return fmt.Errorf("unsupported print supply %T", supply)
	}
}

func writeMintArgs(enc *bin.Encoder, args MintArgs) error {
	switch a := args.(type) {
	case MintArgsV1:
		if err := enc.WriteUint8(0); err != nil {
			return err
		}
		if err := enc.WriteUint64(a.Amount, bin.LE); err != nil {
			return err
		}
		if err := enc.WriteBool(a.AuthorizationData); err != nil {
			return err
		}
		if a.AuthorizationData {
			// empty payload map
			return enc.WriteUint32(0, bin.LE)
		}
		return nil
	default:
		return fmt.Errorf("unsupported mint args %T", args)
	}
}
