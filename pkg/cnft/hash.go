package cnft

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

// leafSchemaV1 is the version prefix bubblegum hashes into every V1 leaf.
const leafSchemaV1 byte = 1

var assetSeed = []byte("asset")

// ComputeAssetID derives the asset ID of the leaf minted at index in tree.
func ComputeAssetID(tree solana.PublicKey, index uint32) (solana.PublicKey, error) {
	assetID, _, err := solana.FindProgramAddress(
		[][]byte{assetSeed, tree.Bytes(), nonceBytes(index)},
		programs.BubblegumProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive asset id for index %d: %w", index, err)
	}
	return assetID, nil
}

// MustComputeAssetID panics on derivation failure, which only happens when no bump
// yields an off-curve address.
func MustComputeAssetID(tree solana.PublicKey, index uint32) solana.PublicKey {
	assetID, err := ComputeAssetID(tree, index)
	if err != nil {
		panic(err)
	}
	return assetID
}

// HashMetadataArgs returns keccak256(borsh(meta)).
func HashMetadataArgs(meta MetadataArgs) ([32]byte, error) {
	buf := new(bytes.Buffer)
	if err := meta.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return [32]byte{}, fmt.Errorf("failed to encode metadata args: %w", err)
	}
	return [32]byte(crypto.Keccak256Hash(buf.Bytes())), nil
}

// ComputeDataHash returns keccak256(keccak256(borsh(meta)) || u16le(sellerFeeBasisPoints)).
func ComputeDataHash(meta MetadataArgs) ([32]byte, error) {
	argsHash, err := HashMetadataArgs(meta)
	if err != nil {
		return [32]byte{}, err
	}
	fee := make([]byte, 2)
	binary.LittleEndian.PutUint16(fee, meta.SellerFeeBasisPoints)
	return [32]byte(crypto.Keccak256Hash(argsHash[:], fee)), nil
}

// ComputeCreatorHash returns keccak256 over address || verified || share for each creator.
func ComputeCreatorHash(creators []Creator) [32]byte {
	data := make([]byte, 0, len(creators)*34)
	for _, c := range creators {
		data = append(data, c.Address[:]...)
		if c.Verified {
			data = append(data, 1)
		} else {
			data = append(data, 0)
		}
		data = append(data, c.Share)
	}
	return [32]byte(crypto.Keccak256Hash(data))
}

// ComputeLeafHash hashes a V1 leaf schema exactly like bubblegum:
// keccak256(version || id || owner || delegate || u64le(nonce) || dataHash || creatorHash).
func ComputeLeafHash(assetID, owner, delegate solana.PublicKey, index uint32, meta MetadataArgs) ([32]byte, error) {
	dataHash, err := ComputeDataHash(meta)
	if err != nil {
		return [32]byte{}, err
	}
	creatorHash := ComputeCreatorHash(meta.Creators)
	return HashLeafSchema(assetID, owner, delegate, index, dataHash, creatorHash), nil
}

// HashLeafSchema hashes a leaf from precomputed data and creator hashes.
func HashLeafSchema(assetID, owner, delegate solana.PublicKey, index uint32, dataHash, creatorHash [32]byte) [32]byte {
	return [32]byte(crypto.Keccak256Hash(
		[]byte{leafSchemaV1},
		assetID[:],
		owner[:],
		delegate[:],
		nonceBytes(index),
		dataHash[:],
		creatorHash[:],
	))
}

// NewLeaf computes the asset ID and hash for a leaf. A zero delegate defaults to owner.
func NewLeaf(tree solana.PublicKey, index uint32, owner, delegate solana.PublicKey, meta MetadataArgs) (*Leaf, error) {
	if delegate.IsZero() {
		delegate = owner
	}
	assetID, err := ComputeAssetID(tree, index)
	if err != nil {
		return nil, err
	}
	hash, err := ComputeLeafHash(assetID, owner, delegate, index, meta)
	if err != nil {
		return nil, err
	}
	return &Leaf{
		Index:    index,
		AssetID:  assetID,
		Owner:    owner,
		Delegate: delegate,
		Metadata: meta,
		Hash:     hash,
	}, nil
}

// Rehash recomputes the leaf hash after a metadata, owner or delegate change.
// Index and asset ID never change.
func (l *Leaf) Rehash() error {
	hash, err := ComputeLeafHash(l.AssetID, l.Owner, l.Delegate, l.Index, l.Metadata)
	if err != nil {
		return err
	}
	l.Hash = hash
	return nil
}

func nonceBytes(index uint32) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(index))
	return out
}
