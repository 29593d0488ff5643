package cnft

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// MaxSupportedDepth bounds the trees the mirror will build.
const MaxSupportedDepth = 30

// LeafState tracks whether the cluster has confirmed the latest mutation of a leaf.
type LeafState uint8

const (
	LeafUnconfirmed LeafState = iota
	LeafConfirmed
)

func (s LeafState) String() string {
	switch s {
	case LeafUnconfirmed:
		return "unconfirmed"
	case LeafConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("LeafState(%d)", uint8(s))
	}
}

// Tree mirrors an on-chain concurrent merkle tree. Leaves are appended in index order and
// afterwards only replaced in place. Only the populated prefix of each level is stored;
// everything to the right is the empty subtree hash for that level.
//
// Every mutation leaves the touched leaf Unconfirmed until ConfirmLeaf is called, and
// proofs are refused while any mutation is unconfirmed: until then the mirror root is
// ahead of the cluster's root.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	maxDepth      uint32
	maxBufferSize uint32

	// levels[0] holds leaf hashes, levels[maxDepth] holds the root
	levels     [][][32]byte
	emptyNodes [][32]byte

	states  []LeafState
	pending map[uint32]struct{}
}

// MerkleProof is the sibling path of one leaf, ordered from the leaf towards the root.
type MerkleProof struct {
	LeafIndex uint32
	Leaf      [32]byte
	Root      [32]byte
	// Siblings has maxDepth - canopyDepth entries; the top canopyDepth siblings are
	// cached on-chain and omitted.
	Siblings [][32]byte
}

// NewTree creates an empty mirror for a tree allocated with the given pair.
func NewTree(pair DepthSizePair) (*Tree, error) {
	if pair.MaxDepth == 0 || pair.MaxDepth > MaxSupportedDepth {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDepth, pair.MaxDepth)
	}

	emptyNodes := make([][32]byte, pair.MaxDepth+1)
	for level := 1; level <= int(pair.MaxDepth); level++ {
		emptyNodes[level] = hashPair(emptyNodes[level-1], emptyNodes[level-1])
	}

	levels := make([][][32]byte, pair.MaxDepth+1)
	levels[pair.MaxDepth] = [][32]byte{emptyNodes[pair.MaxDepth]}

	return &Tree{
		maxDepth:      pair.MaxDepth,
		maxBufferSize: pair.MaxBufferSize,
		levels:        levels,
		emptyNodes:    emptyNodes,
		pending:       make(map[uint32]struct{}),
	}, nil
}

// SparseTreeFromLeaves builds a mirror whose leaves are all considered confirmed.
func SparseTreeFromLeaves(leaves [][32]byte, pair DepthSizePair) (*Tree, error) {
	t, err := NewTree(pair)
	if err != nil {
		return nil, err
	}
	for i, leaf := range leaves {
		if err := t.InsertLeaf(uint32(i), leaf); err != nil {
			return nil, err
		}
	}
	t.ConfirmAll()
	return t, nil
}

func (t *Tree) MaxDepth() uint32 {
	return t.maxDepth
}

func (t *Tree) MaxBufferSize() uint32 {
	return t.maxBufferSize
}

// Capacity is the number of leaves the tree can hold.
func (t *Tree) Capacity() uint64 {
	return uint64(1) << t.maxDepth
}

// Size is the number of populated leaves, which is also the next index to insert.
func (t *Tree) Size() uint32 {
	return uint32(len(t.levels[0]))
}

// GetCurrentRoot returns the mirror root, including unconfirmed mutations.
func (t *Tree) GetCurrentRoot() [32]byte {
	return t.levels[t.maxDepth][0]
}

// Leaf returns the current hash of a populated leaf.
func (t *Tree) Leaf(index uint32) ([32]byte, error) {
	if index >= t.Size() {
		return [32]byte{}, &RangeError{Op: "leaf", Index: index, Size: t.Size()}
	}
	return t.levels[0][index], nil
}

// LeafState returns the confirmation state of a populated leaf.
func (t *Tree) LeafState(index uint32) (LeafState, error) {
	if index >= t.Size() {
		return 0, &RangeError{Op: "leaf state", Index: index, Size: t.Size()}
	}
	return t.states[index], nil
}

// InsertLeaf appends a leaf. index must equal Size().
func (t *Tree) InsertLeaf(index uint32, hash [32]byte) error {
	size := t.Size()
	if index != size {
		return &SequenceError{Expected: size, Got: index}
	}
	if uint64(size) >= t.Capacity() {
		return fmt.Errorf("%w: capacity %d", ErrTreeFull, t.Capacity())
	}

	t.levels[0] = append(t.levels[0], hash)
	t.states = append(t.states, LeafUnconfirmed)
	t.pending[index] = struct{}{}
	t.recomputePath(index)
	return nil
}

// UpdateLeaf replaces the hash of a populated leaf. The leaf keeps its index.
func (t *Tree) UpdateLeaf(index uint32, hash [32]byte) error {
	if index >= t.Size() {
		return &RangeError{Op: "update leaf", Index: index, Size: t.Size()}
	}
	if t.states[index] != LeafConfirmed {
		return &NotConfirmedError{Op: "update leaf", Index: index}
	}

	t.levels[0][index] = hash
	t.states[index] = LeafUnconfirmed
	t.pending[index] = struct{}{}
	t.recomputePath(index)
	return nil
}

// ConfirmLeaf records that the cluster confirmed the latest mutation of a leaf.
func (t *Tree) ConfirmLeaf(index uint32) error {
	if index >= t.Size() {
		return &RangeError{Op: "confirm leaf", Index: index, Size: t.Size()}
	}
	t.states[index] = LeafConfirmed
	delete(t.pending, index)
	return nil
}

// ConfirmAll marks every populated leaf as confirmed.
func (t *Tree) ConfirmAll() {
	for i := range t.states {
		t.states[i] = LeafConfirmed
	}
	t.pending = make(map[uint32]struct{})
}

// Pending reports how many leaves carry unconfirmed mutations.
func (t *Tree) Pending() int {
	return len(t.pending)
}

// GetProof returns the sibling path for index with the top canopyDepth siblings removed.
func (t *Tree) GetProof(index uint32, canopyDepth uint32) (*MerkleProof, error) {
	if index >= t.Size() {
		return nil, &RangeError{Op: "get proof", Index: index, Size: t.Size()}
	}
	if canopyDepth > t.maxDepth {
		return nil, fmt.Errorf("%w: canopy %d, depth %d", ErrCanopyTooDeep, canopyDepth, t.maxDepth)
	}
	if t.states[index] != LeafConfirmed {
		return nil, &NotConfirmedError{Op: "get proof", Index: index}
	}
	if pendingIndex, ok := t.firstPending(); ok {
		return nil, &NotConfirmedError{Op: "get proof", Index: pendingIndex}
	}

	siblings := t.siblings(index)
	return &MerkleProof{
		LeafIndex: index,
		Leaf:      t.levels[0][index],
		Root:      t.GetCurrentRoot(),
		Siblings:  siblings[:t.maxDepth-canopyDepth],
	}, nil
}

// CompleteProof appends the canopy siblings a trimmed proof omits, using the mirror's
// current nodes, which stand in for the on-chain canopy.
func (t *Tree) CompleteProof(proof *MerkleProof) ([][32]byte, error) {
	if proof.LeafIndex >= t.Size() {
		return nil, &RangeError{Op: "complete proof", Index: proof.LeafIndex, Size: t.Size()}
	}
	if uint32(len(proof.Siblings)) > t.maxDepth {
		return nil, fmt.Errorf("proof has %d siblings, tree depth is %d", len(proof.Siblings), t.maxDepth)
	}
	full := t.siblings(proof.LeafIndex)
	out := make([][32]byte, 0, t.maxDepth)
	out = append(out, proof.Siblings...)
	out = append(out, full[len(proof.Siblings):]...)
	return out, nil
}

func (t *Tree) firstPending() (uint32, bool) {
	if len(t.pending) == 0 {
		return 0, false
	}
	first := uint32(0)
	found := false
	for idx := range t.pending {
		if !found || idx < first {
			first = idx
			found = true
		}
	}
	return first, true
}

func (t *Tree) siblings(index uint32) [][32]byte {
	siblings := make([][32]byte, 0, t.maxDepth)
	idx := uint64(index)
	for level := uint32(0); level < t.maxDepth; level++ {
		siblings = append(siblings, t.node(level, idx^1))
		idx >>= 1
	}
	return siblings
}

func (t *Tree) node(level uint32, idx uint64) [32]byte {
	if idx < uint64(len(t.levels[level])) {
		return t.levels[level][idx]
	}
	return t.emptyNodes[level]
}

func (t *Tree) recomputePath(index uint32) {
	idx := uint64(index)
	for level := uint32(0); level < t.maxDepth; level++ {
		parentIdx := idx >> 1
		left := t.node(level, parentIdx<<1)
		right := t.node(level, parentIdx<<1|1)
		parent := hashPair(left, right)

		next := t.levels[level+1]
		if parentIdx < uint64(len(next)) {
			next[parentIdx] = parent
		} else {
			next = append(next, parent)
		}
		t.levels[level+1] = next
		idx = parentIdx
	}
}

// VerifyProof recomputes the root from leaf and a full-length sibling path.
func VerifyProof(root, leaf [32]byte, index uint32, siblings [][32]byte) bool {
	current := leaf
	idx := index
	for _, sibling := range siblings {
		if idx%2 == 0 {
			current = hashPair(current, sibling)
		} else {
			current = hashPair(sibling, current)
		}
		idx /= 2
	}
	return current == root
}

// hashPair computes keccak256(left || right).
func hashPair(left, right [32]byte) [32]byte {
	return [32]byte(crypto.Keccak256Hash(left[:], right[:]))
}
