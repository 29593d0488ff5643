package cnft

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// MaxCreators is the most creators bubblegum accepts on a compressed NFT.
const MaxCreators = 4

type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
)

type TokenProgramVersion uint8

const (
	TokenProgramVersionOriginal TokenProgramVersion = iota
	TokenProgramVersionToken2022
)

type UseMethod uint8

const (
	UseMethodBurn UseMethod = iota
	UseMethodMultiple
	UseMethodSingle
)

type Creator struct {
	Address  solana.PublicKey
	Verified bool
	// Share is a percentage; all shares on an asset sum to 100.
	Share uint8
}

type Collection struct {
	Verified bool
	Key      solana.PublicKey
}

type Uses struct {
	UseMethod UseMethod
	Remaining uint64
	Total     uint64
}

// MetadataArgs is the metadata record bubblegum stores (hashed) in each leaf.
type MetadataArgs struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8
	TokenStandard        *TokenStandard
	Collection           *Collection
	Uses                 *Uses
	TokenProgramVersion  TokenProgramVersion
	Creators             []Creator
}

// Clone returns a deep copy so callers can flip verified flags without aliasing.
func (m MetadataArgs) Clone() MetadataArgs {
	out := m
	if m.EditionNonce != nil {
		v := *m.EditionNonce
		out.EditionNonce = &v
	}
	if m.TokenStandard != nil {
		v := *m.TokenStandard
		out.TokenStandard = &v
	}
	if m.Collection != nil {
		v := *m.Collection
		out.Collection = &v
	}
	if m.Uses != nil {
		v := *m.Uses
		out.Uses = &v
	}
	out.Creators = append([]Creator(nil), m.Creators...)
	return out
}

// VerifyCreator marks every creator entry matching address as verified and reports
// whether one was found.
func (m *MetadataArgs) VerifyCreator(address solana.PublicKey) bool {
	found := false
	for i := range m.Creators {
		if m.Creators[i].Address.Equals(address) {
			m.Creators[i].Verified = true
			found = true
		}
	}
	return found
}

// MarshalWithEncoder writes the borsh layout of the on-chain MetadataArgs struct.
// Field order is fixed by the program; the leaf hash depends on it byte for byte.
func (m MetadataArgs) MarshalWithEncoder(e *bin.Encoder) error {
	if err := e.WriteString(m.Name); err != nil {
		return err
	}
	if err := e.WriteString(m.Symbol); err != nil {
		return err
	}
	if err := e.WriteString(m.Uri); err != nil {
		return err
	}
	if err := e.WriteUint16(m.SellerFeeBasisPoints, bin.LE); err != nil {
		return err
	}
	if err := e.WriteBool(m.PrimarySaleHappened); err != nil {
		return err
	}
	if err := e.WriteBool(m.IsMutable); err != nil {
		return err
	}

	if err := e.WriteBool(m.EditionNonce != nil); err != nil {
		return err
	}
	if m.EditionNonce != nil {
		if err := e.WriteUint8(*m.EditionNonce); err != nil {
			return err
		}
	}

	if err := e.WriteBool(m.TokenStandard != nil); err != nil {
		return err
	}
	if m.TokenStandard != nil {
		if err := e.WriteUint8(uint8(*m.TokenStandard)); err != nil {
			return err
		}
	}

	if err := e.WriteBool(m.Collection != nil); err != nil {
		return err
	}
	if m.Collection != nil {
		if err := e.WriteBool(m.Collection.Verified); err != nil {
			return err
		}
		if err := e.WriteBytes(m.Collection.Key[:], false); err != nil {
			return err
		}
	}

	if err := e.WriteBool(m.Uses != nil); err != nil {
		return err
	}
	if m.Uses != nil {
		if err := e.WriteUint8(uint8(m.Uses.UseMethod)); err != nil {
			return err
		}
		if err := e.WriteUint64(m.Uses.Remaining, bin.LE); err != nil {
			return err
		}
		if err := e.WriteUint64(m.Uses.Total, bin.LE); err != nil {
			return err
		}
	}

	if err := e.WriteUint8(uint8(m.TokenProgramVersion)); err != nil {
		return err
	}

	if err := e.WriteUint32(uint32(len(m.Creators)), bin.LE); err != nil {
		return err
	}
	for _, c := range m.Creators {
		if err := e.WriteBytes(c.Address[:], false); err != nil {
			return err
		}
		if err := e.WriteBool(c.Verified); err != nil {
			return err
		}
		if err := e.WriteUint8(c.Share); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the constraints bubblegum enforces at mint time.
func (m MetadataArgs) Validate() error {
	if len(m.Creators) > MaxCreators {
		return fmt.Errorf("compressed NFTs support at most %d creators, got %d", MaxCreators, len(m.Creators))
	}
	if len(m.Creators) > 0 {
		total := 0
		for _, c := range m.Creators {
			total += int(c.Share)
		}
		if total != 100 {
			return fmt.Errorf("creator shares must sum to 100, got %d", total)
		}
	}
	if m.SellerFeeBasisPoints > 10_000 {
		return fmt.Errorf("seller fee basis points %d exceeds 10000", m.SellerFeeBasisPoints)
	}
	return nil
}

// Leaf is the off-chain record of one compressed NFT.
type Leaf struct {
	Index    uint32
	AssetID  solana.PublicKey
	Owner    solana.PublicKey
	Delegate solana.PublicKey
	Metadata MetadataArgs
	Hash     [32]byte
}

// DepthSizePair is a (maxDepth, maxBufferSize) combination the compression program can
// allocate.
type DepthSizePair struct {
	MaxDepth      uint32
	MaxBufferSize uint32
}

var DefaultDepthSize = DepthSizePair{MaxDepth: 14, MaxBufferSize: 64}

// ValidDepthSizePairs lists every pair spl-account-compression accepts.
var ValidDepthSizePairs = []DepthSizePair{
	{3, 8},
	{5, 8},
	{14, 64}, {14, 256}, {14, 1024}, {14, 2048},
	{15, 64},
	{16, 64},
	{17, 64},
	{18, 64},
	{19, 64},
	{20, 64}, {20, 256}, {20, 1024}, {20, 2048},
	{24, 64}, {24, 256}, {24, 512}, {24, 1024}, {24, 2048},
	{26, 512}, {26, 1024}, {26, 2048},
	{30, 512}, {30, 1024}, {30, 2048},
}

func (p DepthSizePair) Validate() error {
	for _, valid := range ValidDepthSizePairs {
		if valid == p {
			return nil
		}
	}
	return fmt.Errorf("invalid depth/buffer pair (%d, %d)", p.MaxDepth, p.MaxBufferSize)
}

// UnmarshalWithDecoder reads the layout written by MarshalWithEncoder.
func (m *MetadataArgs) UnmarshalWithDecoder(d *bin.Decoder) (err error) {
	if m.Name, err = d.ReadString(); err != nil {
		return err
	}
	if m.Symbol, err = d.ReadString(); err != nil {
		return err
	}
	if m.Uri, err = d.ReadString(); err != nil {
		return err
	}
	if m.SellerFeeBasisPoints, err = d.ReadUint16(bin.LE); err != nil {
		return err
	}
	if m.PrimarySaleHappened, err = d.ReadBool(); err != nil {
		return err
	}
	if m.IsMutable, err = d.ReadBool(); err != nil {
		return err
	}

	some, err := d.ReadBool()
	if err != nil {
		return err
	}
	m.EditionNonce = nil
	if some {
		v, err := d.ReadUint8()
		if err != nil {
			return err
		}
		m.EditionNonce = &v
	}

	if some, err = d.ReadBool(); err != nil {
		return err
	}
	m.TokenStandard = nil
	if some {
		v, err := d.ReadUint8()
		if err != nil {
			return err
		}
		standard := TokenStandard(v)
		m.TokenStandard = &standard
	}

	if some, err = d.ReadBool(); err != nil {
		return err
	}
	m.Collection = nil
	if some {
		c := &Collection{}
		if c.Verified, err = d.ReadBool(); err != nil {
			return err
		}
		key, err := d.ReadNBytes(32)
		if err != nil {
			return err
		}
		c.Key = solana.PublicKeyFromBytes(key)
		m.Collection = c
	}

	if some, err = d.ReadBool(); err != nil {
		return err
	}
	m.Uses = nil
	if some {
		u := &Uses{}
		method, err := d.ReadUint8()
		if err != nil {
			return err
		}
		u.UseMethod = UseMethod(method)
		if u.Remaining, err = d.ReadUint64(bin.LE); err != nil {
			return err
		}
		if u.Total, err = d.ReadUint64(bin.LE); err != nil {
			return err
		}
		m.Uses = u
	}

	version, err := d.ReadUint8()
	if err != nil {
		return err
	}
	m.TokenProgramVersion = TokenProgramVersion(version)

	n, err := d.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	if n > MaxCreators {
		return fmt.Errorf("metadata lists %d creators, at most %d allowed", n, MaxCreators)
	}
	m.Creators = make([]Creator, n)
	for i := range m.Creators {
		key, err := d.ReadNBytes(32)
		if err != nil {
			return err
		}
		m.Creators[i].Address = solana.PublicKeyFromBytes(key)
		if m.Creators[i].Verified, err = d.ReadBool(); err != nil {
			return err
		}
		if m.Creators[i].Share, err = d.ReadUint8(); err != nil {
			return err
		}
	}
	return nil
}
