package merkle

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// BuildMerkleTree hashes each raw leaf and builds the tree bottom-up. Pairs are sorted
// before hashing, and when a level has an odd number of nodes the last one is promoted
// to the next level unchanged.
func BuildMerkleTree(rawLeaves [][]byte) (*MerkleTree, error) {
	if len(rawLeaves) == 0 {
		return nil, fmt.Errorf("cannot build merkle tree from empty leaf list")
	}

	leaves := make([][32]byte, len(rawLeaves))
	for i, raw := range rawLeaves {
		leaves[i] = HashLeaf(raw)
	}

	levels := [][][32]byte{leaves}
	currentLevel := leaves
	for len(currentLevel) > 1 {
		nextLevel := make([][32]byte, 0, (len(currentLevel)+1)/2)
		for i := 0; i < len(currentLevel); i += 2 {
			if i+1 == len(currentLevel) {
				nextLevel = append(nextLevel, currentLevel[i])
				continue
			}
			nextLevel = append(nextLevel, hashPair(currentLevel[i], currentLevel[i+1]))
		}
		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	return &MerkleTree{
		Leaves: leaves,
		Root:   currentLevel[0],
		levels: levels,
	}, nil
}

// GenerateProof creates a merkle proof for the leaf at the given index.
func (mt *MerkleTree) GenerateProof(leafIndex int) (*MerkleProof, error) {
	if leafIndex < 0 || leafIndex >= len(mt.Leaves) {
		return nil, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves)", leafIndex, len(mt.Leaves))
	}

	proof := make([][32]byte, 0, len(mt.levels))
	index := leafIndex
	for level := 0; level < len(mt.levels)-1; level++ {
		currentLevel := mt.levels[level]
		siblingIndex := index + 1
		if index%2 == 1 {
			siblingIndex = index - 1
		}
		if siblingIndex < len(currentLevel) {
			proof = append(proof, currentLevel[siblingIndex])
		}
		index /= 2
	}

	return &MerkleProof{
		LeafIndex: leafIndex,
		Leaf:      mt.Leaves[leafIndex],
		Proof:     proof,
	}, nil
}

// FindLeaf returns the index of a raw leaf, or -1.
func (mt *MerkleTree) FindLeaf(raw []byte) int {
	target := HashLeaf(raw)
	for i, leaf := range mt.Leaves {
		if leaf == target {
			return i
		}
	}
	return -1
}

// GenerateProofFor creates a proof for a raw leaf value.
func (mt *MerkleTree) GenerateProofFor(raw []byte) (*MerkleProof, error) {
	idx := mt.FindLeaf(raw)
	if idx < 0 {
		return nil, fmt.Errorf("leaf not found in tree")
	}
	return mt.GenerateProof(idx)
}

// VerifyProof recomputes the root from the proof. Sorted pairs make the leaf's position
// irrelevant.
func VerifyProof(proof *MerkleProof, root [32]byte) bool {
	if proof == nil {
		return false
	}
	current := proof.Leaf
	for _, sibling := range proof.Proof {
		current = hashPair(current, sibling)
	}
	return current == root
}

// HashLeaf returns keccak256(raw).
func HashLeaf(raw []byte) [32]byte {
	return keccak256(raw)
}

// hashPair computes keccak256(min || max) of two nodes.
func hashPair(a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return keccak256(a[:], b[:])
}

func keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
