package cnft

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, 32))
}

func testMetadata() MetadataArgs {
	standard := TokenStandardNonFungible
	nonce := uint8(0)
	return MetadataArgs{
		Name:                 "Compressed NFT",
		Symbol:               "COMP",
		Uri:                  "https://example.com/cnft.json",
		SellerFeeBasisPoints: 1000,
		PrimarySaleHappened:  true,
		IsMutable:            false,
		EditionNonce:         &nonce,
		TokenStandard:        &standard,
		Collection:           &Collection{Verified: true, Key: testKey(9)},
		TokenProgramVersion:  TokenProgramVersionOriginal,
		Creators: []Creator{
			{Address: testKey(1), Share: 50},
			{Address: testKey(2), Share: 50},
		},
	}
}

func TestMetadataArgsLayout(t *testing.T) {
	standard := TokenStandardNonFungible
	meta := MetadataArgs{
		Name:                 "a",
		SellerFeeBasisPoints: 500,
		PrimarySaleHappened:  true,
		TokenStandard:        &standard,
		Creators:             []Creator{{Address: testKey(7), Verified: true, Share: 100}},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, meta.MarshalWithEncoder(bin.NewBorshEncoder(buf)))

	expected := []byte{
		1, 0, 0, 0, 'a', // name
		0, 0, 0, 0, // symbol
		0, 0, 0, 0, // uri
		0xf4, 0x01, // seller fee 500
		1,    // primary sale happened
		0,    // is mutable
		0,    // edition nonce: none
		1, 0, // token standard: some(NonFungible)
		0,          // collection: none
		0,          // uses: none
		0,          // token program version
		1, 0, 0, 0, // creators len
	}
	expected = append(expected, bytes.Repeat([]byte{7}, 32)...)
	expected = append(expected, 1, 100)

	require.Equal(t, expected, buf.Bytes())
}

func TestComputeAssetID(t *testing.T) {
	tree := testKey(3)

	a, err := ComputeAssetID(tree, 0)
	require.NoError(t, err)
	b, err := ComputeAssetID(tree, 0)
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := ComputeAssetID(tree, 1)
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	d, err := ComputeAssetID(testKey(4), 0)
	require.NoError(t, err)
	require.NotEqual(t, a, d)
}

func TestComputeLeafHashSensitivity(t *testing.T) {
	tree := testKey(3)
	owner := testKey(5)
	assetID := MustComputeAssetID(tree, 2)
	base, err := ComputeLeafHash(assetID, owner, owner, 2, testMetadata())
	require.NoError(t, err)

	again, err := ComputeLeafHash(assetID, owner, owner, 2, testMetadata())
	require.NoError(t, err)
	require.Equal(t, base, again, "leaf hash must be deterministic")

	mutations := []struct {
		name string
		hash func() ([32]byte, error)
	}{
		{"owner", func() ([32]byte, error) { return ComputeLeafHash(assetID, testKey(6), owner, 2, testMetadata()) }},
		{"delegate", func() ([32]byte, error) { return ComputeLeafHash(assetID, owner, testKey(6), 2, testMetadata()) }},
		{"index", func() ([32]byte, error) { return ComputeLeafHash(assetID, owner, owner, 3, testMetadata()) }},
		{"asset id", func() ([32]byte, error) { return ComputeLeafHash(testKey(8), owner, owner, 2, testMetadata()) }},
		{"name", func() ([32]byte, error) {
			m := testMetadata()
			m.Name = "Other"
			return ComputeLeafHash(assetID, owner, owner, 2, m)
		}},
		{"royalty", func() ([32]byte, error) {
			m := testMetadata()
			m.SellerFeeBasisPoints = 300
			return ComputeLeafHash(assetID, owner, owner, 2, m)
		}},
		{"creator verified", func() ([32]byte, error) {
			m := testMetadata()
			m.VerifyCreator(testKey(1))
			return ComputeLeafHash(assetID, owner, owner, 2, m)
		}},
		{"collection verified", func() ([32]byte, error) {
			m := testMetadata()
			m.Collection.Verified = false
			return ComputeLeafHash(assetID, owner, owner, 2, m)
		}},
		{"mutability", func() ([32]byte, error) {
			m := testMetadata()
			m.IsMutable = true
			return ComputeLeafHash(assetID, owner, owner, 2, m)
		}},
		{"uses", func() ([32]byte, error) {
			m := testMetadata()
			m.Uses = &Uses{UseMethod: UseMethodSingle, Remaining: 1, Total: 1}
			return ComputeLeafHash(assetID, owner, owner, 2, m)
		}},
	}

	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			h, err := tc.hash()
			require.NoError(t, err)
			require.NotEqual(t, base, h)
		})
	}
}

func TestNewLeafDefaultsDelegate(t *testing.T) {
	tree := testKey(3)
	owner := testKey(5)

	leaf, err := NewLeaf(tree, 4, owner, solana.PublicKey{}, testMetadata())
	require.NoError(t, err)
	require.Equal(t, owner, leaf.Delegate)
	require.Equal(t, MustComputeAssetID(tree, 4), leaf.AssetID)

	explicit, err := NewLeaf(tree, 4, owner, owner, testMetadata())
	require.NoError(t, err)
	require.Equal(t, explicit.Hash, leaf.Hash)

	before := leaf.Hash
	require.True(t, leaf.Metadata.VerifyCreator(testKey(2)))
	require.NoError(t, leaf.Rehash())
	require.NotEqual(t, before, leaf.Hash)
	require.Equal(t, uint32(4), leaf.Index)
}

func TestCloneDoesNotAlias(t *testing.T) {
	meta := testMetadata()
	clone := meta.Clone()
	clone.VerifyCreator(testKey(1))
	clone.Collection.Verified = false

	require.False(t, meta.Creators[0].Verified)
	require.True(t, meta.Collection.Verified)
}

func TestMetadataValidate(t *testing.T) {
	require.NoError(t, testMetadata().Validate())

	m := testMetadata()
	m.Creators = append(m.Creators, Creator{Share: 0}, Creator{Share: 0}, Creator{Share: 0})
	require.Error(t, m.Validate())

	m = testMetadata()
	m.Creators[0].Share = 10
	require.Error(t, m.Validate())
}

func TestMetadataArgsDecode(t *testing.T) {
	meta := testMetadata()
	meta.Uses = &Uses{UseMethod: UseMethodMultiple, Remaining: 2, Total: 5}

	buf := new(bytes.Buffer)
	require.NoError(t, meta.MarshalWithEncoder(bin.NewBorshEncoder(buf)))

	var decoded MetadataArgs
	require.NoError(t, decoded.UnmarshalWithDecoder(bin.NewBorshDecoder(buf.Bytes())))
	require.Equal(t, meta, decoded)

	_, err := ComputeDataHash(decoded)
	require.NoError(t, err)

	truncated := buf.Bytes()[:buf.Len()-10]
	require.Error(t, new(MetadataArgs).UnmarshalWithDecoder(bin.NewBorshDecoder(truncated)))
}
