package cnft

import (
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// AccountMetas renders the proof as the read-only remaining accounts that compression
// instructions expect.
func (p *MerkleProof) AccountMetas() solana.AccountMetaSlice {
	metas := make(solana.AccountMetaSlice, 0, len(p.Siblings))
	for _, node := range p.Siblings {
		metas = append(metas, solana.NewAccountMeta(solana.PublicKeyFromBytes(node[:]), false, false))
	}
	return metas
}

// Verify checks an untrimmed proof against its recorded root.
func (p *MerkleProof) Verify() bool {
	return VerifyProof(p.Root, p.Leaf, p.LeafIndex, p.Siblings)
}

// Strings renders the siblings in base58, matching explorer output.
func (p *MerkleProof) Strings() []string {
	out := make([]string, len(p.Siblings))
	for i, node := range p.Siblings {
		out[i] = base58.Encode(node[:])
	}
	return out
}

// EncodeHash renders a 32-byte node in base58.
func EncodeHash(h [32]byte) string {
	return base58.Encode(h[:])
}

// VerifyProofWithCanopy checks a canopy-trimmed proof, taking the omitted upper siblings
// from the mirror.
func (t *Tree) VerifyProofWithCanopy(proof *MerkleProof) (bool, error) {
	full, err := t.CompleteProof(proof)
	if err != nil {
		return false, err
	}
	return VerifyProof(t.GetCurrentRoot(), proof.Leaf, proof.LeafIndex, full), nil
}
