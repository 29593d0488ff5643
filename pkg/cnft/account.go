package cnft

import (
	"bytes"
	"fmt"
	"math/bits"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	AccountTypeUninitialized       uint8 = 0
	AccountTypeConcurrentMerkleTree uint8 = 1

	HeaderVersionV1 uint8 = 0

	// account type + version + V1 header body
	ConcurrentMerkleTreeHeaderSize = 2 + 4 + 4 + 32 + 8 + 6
)

// ConcurrentMerkleTreeHeader is the fixed prefix of a compression program tree account.
type ConcurrentMerkleTreeHeader struct {
	AccountType   uint8
	Version       uint8
	MaxBufferSize uint32
	MaxDepth      uint32
	Authority     solana.PublicKey
	CreationSlot  uint64
}

type ChangeLog struct {
	Root      [32]byte
	PathNodes [][32]byte
	Index     uint32
}

type Path struct {
	Proof [][32]byte
	Leaf  [32]byte
	Index uint32
}

// ConcurrentMerkleTreeAccount is the decoded state of an on-chain tree account.
type ConcurrentMerkleTreeAccount struct {
	Header         ConcurrentMerkleTreeHeader
	SequenceNumber uint64
	ActiveIndex    uint64
	BufferSize     uint64
	ChangeLogs     []ChangeLog
	RightmostProof Path
	Canopy         [][32]byte
}

// CurrentRoot is the root of the most recent change log entry.
func (a *ConcurrentMerkleTreeAccount) CurrentRoot() [32]byte {
	return a.ChangeLogs[a.ActiveIndex].Root
}

// CanopyDepth derives the canopy depth from the number of cached canopy nodes
// (2^(depth+1) - 2).
func (a *ConcurrentMerkleTreeAccount) CanopyDepth() uint32 {
	return canopyDepthFromNodes(len(a.Canopy))
}

func canopyDepthFromNodes(n int) uint32 {
	if n == 0 {
		return 0
	}
	return uint32(bits.Len(uint(n+2))) - 2
}

func canopyNodeCount(canopyDepth uint32) int {
	if canopyDepth == 0 {
		return 0
	}
	return (1 << (canopyDepth + 1)) - 2
}

// ConcurrentMerkleTreeSize is the size of the tree body (no header, no canopy).
func ConcurrentMerkleTreeSize(maxDepth, maxBufferSize uint32) int {
	changeLog := 32 + 32*int(maxDepth) + 4 + 4
	path := 32*int(maxDepth) + 32 + 4 + 4
	return 8 + 8 + 8 + int(maxBufferSize)*changeLog + path
}

// ConcurrentMerkleTreeAccountSize is the number of bytes to allocate for a tree account.
func ConcurrentMerkleTreeAccountSize(maxDepth, maxBufferSize, canopyDepth uint32) int {
	return ConcurrentMerkleTreeHeaderSize +
		ConcurrentMerkleTreeSize(maxDepth, maxBufferSize) +
		canopyNodeCount(canopyDepth)*32
}

// DecodeConcurrentMerkleTreeAccount parses raw account data.
func DecodeConcurrentMerkleTreeAccount(data []byte) (*ConcurrentMerkleTreeAccount, error) {
	if len(data) < ConcurrentMerkleTreeHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidAccount, len(data))
	}
	dec := bin.NewBorshDecoder(data)
	acc := &ConcurrentMerkleTreeAccount{}

	var err error
	h := &acc.Header
	if h.AccountType, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	if h.AccountType != AccountTypeConcurrentMerkleTree {
		return nil, fmt.Errorf("%w: account type %d", ErrInvalidAccount, h.AccountType)
	}
	if h.Version, err = dec.ReadUint8(); err != nil {
		return nil, err
	}
	if h.Version != HeaderVersionV1 {
		return nil, fmt.Errorf("%w: header version %d", ErrInvalidAccount, h.Version)
	}
	if h.MaxBufferSize, err = dec.ReadUint32(bin.LE); err != nil {
		return nil, err
	}
	if h.MaxDepth, err = dec.ReadUint32(bin.LE); err != nil {
		return nil, err
	}
	if h.MaxDepth == 0 || h.MaxDepth > MaxSupportedDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidAccount, h.MaxDepth)
	}
	authority, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	h.Authority = solana.PublicKeyFromBytes(authority)
	if h.CreationSlot, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if err = dec.SkipBytes(6); err != nil {
		return nil, err
	}

	bodySize := ConcurrentMerkleTreeSize(h.MaxDepth, h.MaxBufferSize)
	canopyBytes := len(data) - ConcurrentMerkleTreeHeaderSize - bodySize
	if canopyBytes < 0 || canopyBytes%32 != 0 {
		return nil, fmt.Errorf("%w: %d bytes does not fit depth %d buffer %d", ErrInvalidAccount, len(data), h.MaxDepth, h.MaxBufferSize)
	}

	if acc.SequenceNumber, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if acc.ActiveIndex, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if acc.BufferSize, err = dec.ReadUint64(bin.LE); err != nil {
		return nil, err
	}
	if acc.ActiveIndex >= uint64(h.MaxBufferSize) {
		return nil, fmt.Errorf("%w: active index %d, buffer %d", ErrInvalidAccount, acc.ActiveIndex, h.MaxBufferSize)
	}

	acc.ChangeLogs = make([]ChangeLog, h.MaxBufferSize)
	for i := range acc.ChangeLogs {
		cl := &acc.ChangeLogs[i]
		if cl.Root, err = readNode(dec); err != nil {
			return nil, err
		}
		if cl.PathNodes, err = readNodes(dec, int(h.MaxDepth)); err != nil {
			return nil, err
		}
		if cl.Index, err = dec.ReadUint32(bin.LE); err != nil {
			return nil, err
		}
		if err = dec.SkipBytes(4); err != nil {
			return nil, err
		}
	}

	if acc.RightmostProof.Proof, err = readNodes(dec, int(h.MaxDepth)); err != nil {
		return nil, err
	}
	if acc.RightmostProof.Leaf, err = readNode(dec); err != nil {
		return nil, err
	}
	if acc.RightmostProof.Index, err = dec.ReadUint32(bin.LE); err != nil {
		return nil, err
	}
	if err = dec.SkipBytes(4); err != nil {
		return nil, err
	}

	if acc.Canopy, err = readNodes(dec, canopyBytes/32); err != nil {
		return nil, err
	}
	return acc, nil
}

// EncodeConcurrentMerkleTreeAccount serialises an account in the on-chain layout.
func EncodeConcurrentMerkleTreeAccount(acc *ConcurrentMerkleTreeAccount) ([]byte, error) {
	h := acc.Header
	if uint32(len(acc.ChangeLogs)) != h.MaxBufferSize {
		return nil, fmt.Errorf("%w: %d change logs for buffer %d", ErrInvalidAccount, len(acc.ChangeLogs), h.MaxBufferSize)
	}

	buf := new(bytes.Buffer)
	buf.Grow(ConcurrentMerkleTreeAccountSize(h.MaxDepth, h.MaxBufferSize, acc.CanopyDepth()))
	enc := bin.NewBorshEncoder(buf)

	writes := []func() error{
		func() error { return enc.WriteUint8(h.AccountType) },
		func() error { return enc.WriteUint8(h.Version) },
		func() error { return enc.WriteUint32(h.MaxBufferSize, bin.LE) },
		func() error { return enc.WriteUint32(h.MaxDepth, bin.LE) },
		func() error { return enc.WriteBytes(h.Authority[:], false) },
		func() error { return enc.WriteUint64(h.CreationSlot, bin.LE) },
		func() error { return enc.WriteBytes(make([]byte, 6), false) },
		func() error { return enc.WriteUint64(acc.SequenceNumber, bin.LE) },
		func() error { return enc.WriteUint64(acc.ActiveIndex, bin.LE) },
		func() error { return enc.WriteUint64(acc.BufferSize, bin.LE) },
	}
	for _, cl := range acc.ChangeLogs {
		cl := cl
		writes = append(writes,
			func() error { return enc.WriteBytes(cl.Root[:], false) },
			func() error { return writeNodes(enc, cl.PathNodes, int(h.MaxDepth)) },
			func() error { return enc.WriteUint32(cl.Index, bin.LE) },
			func() error { return enc.WriteUint32(0, bin.LE) },
		)
	}
	writes = append(writes,
		func() error { return writeNodes(enc, acc.RightmostProof.Proof, int(h.MaxDepth)) },
		func() error { return enc.WriteBytes(acc.RightmostProof.Leaf[:], false) },
		func() error { return enc.WriteUint32(acc.RightmostProof.Index, bin.LE) },
		func() error { return enc.WriteUint32(0, bin.LE) },
		func() error { return writeNodes(enc, acc.Canopy, len(acc.Canopy)) },
	)
	for _, w := range writes {
		if err := w(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// NewConcurrentMerkleTreeAccount builds the account state of a tree whose only recorded
// change is the given root, as the cluster would report right after a mutation.
func NewConcurrentMerkleTreeAccount(pair DepthSizePair, canopyDepth uint32, authority solana.PublicKey, root [32]byte, sequence uint64) *ConcurrentMerkleTreeAccount {
	changeLogs := make([]ChangeLog, pair.MaxBufferSize)
	active := sequence % uint64(pair.MaxBufferSize)
	changeLogs[active].Root = root
	return &ConcurrentMerkleTreeAccount{
		Header: ConcurrentMerkleTreeHeader{
			AccountType:   AccountTypeConcurrentMerkleTree,
			Version:       HeaderVersionV1,
			MaxBufferSize: pair.MaxBufferSize,
			MaxDepth:      pair.MaxDepth,
			Authority:     authority,
		},
		SequenceNumber: sequence,
		ActiveIndex:    active,
		BufferSize:     1,
		ChangeLogs:     changeLogs,
		Canopy:         make([][32]byte, canopyNodeCount(canopyDepth)),
	}
}

func readNode(dec *bin.Decoder) ([32]byte, error) {
	var node [32]byte
	b, err := dec.ReadNBytes(32)
	if err != nil {
		return node, err
	}
	copy(node[:], b)
	return node, nil
}

func readNodes(dec *bin.Decoder, n int) ([][32]byte, error) {
	nodes := make([][32]byte, n)
	for i := range nodes {
		node, err := readNode(dec)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	return nodes, nil
}

// writeNodes writes exactly n nodes, zero-padding when fewer are given.
func writeNodes(enc *bin.Encoder, nodes [][32]byte, n int) error {
	var zero [32]byte
	for i := 0; i < n; i++ {
		node := zero
		if i < len(nodes) {
			node = nodes[i]
		}
		if err := enc.WriteBytes(node[:], false); err != nil {
			return err
		}
	}
	return nil
}
