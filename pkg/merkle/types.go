package merkle

// MerkleTree is a keccak256 tree with hashed leaves and sorted pairs, the layout the
// whitelist program verifies mint proofs against.
type MerkleTree struct {
	// Leaves contains the hashed leaves in insertion order
	Leaves [][32]byte

	Root [32]byte

	// levels[0] = leaves, levels[len-1] = root
	levels [][][32]byte
}

// MerkleProof proves that a leaf is part of the tree.
type MerkleProof struct {
	LeafIndex int

	// Leaf is the hashed leaf
	Leaf [32]byte

	// Proof contains sibling hashes from leaf to root. Levels where the node was promoted
	// without a sibling contribute nothing, so proofs can be shorter than the tree height.
	Proof [][32]byte
}
