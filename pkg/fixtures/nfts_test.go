package fixtures

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/tensor-hq/tensor-tests-go/pkg/cnft"
	"github.com/tensor-hq/tensor-tests-go/pkg/config"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/tokenMetadata"
)

var testPair = cnft.DepthSizePair{MaxDepth: 5, MaxBufferSize: 8}

func Test_CalcCreatorFees(t *testing.T) {
	tests := []struct {
		amount uint64
		bps    uint16
		want   uint64
	}{
		{amount: 0, bps: 300, want: 0},
		{amount: solana.LAMPORTS_PER_SOL, bps: 300, want: 30_000_000},
		{amount: 333, bps: 300, want: 9},
		{amount: 1_000_000, bps: 10_000, want: 1_000_000},
		{amount: 1_000_000, bps: 0, want: 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CalcCreatorFees(tt.amount, tt.bps), "amount %d bps %d", tt.amount, tt.bps)
	}
}

func Test_MakeCNftMeta(t *testing.T) {
	collection := solana.NewWallet().PublicKey()

	t.Run("Defaults", func(t *testing.T) {
		meta, err := MakeCNftMeta(CNftMetaOpts{SellerFeeBasisPoints: 250, CollectionMint: &collection})
		require.NoError(t, err)
		require.Equal(t, cnftName, meta.Name)
		require.Equal(t, cnftSymbol, meta.Symbol)
		require.Equal(t, cnftUri, meta.Uri)
		require.Equal(t, uint16(250), meta.SellerFeeBasisPoints)
		require.True(t, meta.PrimarySaleHappened)
		require.False(t, meta.IsMutable)
		require.Equal(t, uint8(0), *meta.EditionNonce)
		require.Equal(t, cnft.TokenStandardNonFungible, *meta.TokenStandard)
		require.Equal(t, &cnft.Collection{Key: collection, Verified: true}, meta.Collection)
		require.NoError(t, meta.Validate())
	})

	t.Run("Random name and unverified collection", func(t *testing.T) {
		meta, err := MakeCNftMeta(CNftMetaOpts{CollectionMint: &collection, RandomizeName: true, UnverifiedCollection: true})
		require.NoError(t, err)
		require.Len(t, meta.Name, 32)
		require.False(t, meta.Collection.Verified)

		other, err := MakeCNftMeta(CNftMetaOpts{RandomizeName: true})
		require.NoError(t, err)
		require.NotEqual(t, meta.Name, other.Name)
		require.Nil(t, other.Collection)
	})

	t.Run("Too many creators", func(t *testing.T) {
		creators := make([]cnft.Creator, cnft.MaxCreators+1)
		_, err := MakeCNftMeta(CNftMetaOpts{Creators: creators})
		require.Error(t, err)
	})
}

func Test_MakeCreators(t *testing.T) {
	verified := solana.NewWallet().PrivateKey
	tests := []struct {
		name    string
		opts    TestNftsOpts
		shares  []uint8
		wantErr bool
	}{
		{name: "none", opts: TestNftsOpts{NrCreators: 0}, shares: []uint8{}},
		{name: "even split", opts: TestNftsOpts{NrCreators: 4}, shares: []uint8{25, 25, 25, 25}},
		{name: "remainder to first", opts: TestNftsOpts{NrCreators: 3}, shares: []uint8{34, 33, 33}},
		{name: "verified creator wins", opts: TestNftsOpts{NrCreators: 3, VerifiedCreator: verified}, shares: []uint8{100}},
		{name: "too many", opts: TestNftsOpts{NrCreators: 5}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creators, err := makeCreators(tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			shares := make([]uint8, len(creators))
			for i, c := range creators {
				shares[i] = c.Share
				require.False(t, c.Verified)
			}
			require.Equal(t, tt.shares, shares)
		})
	}
}

func Test_InitCollection(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEnv(t)
	owner := fundedWallet(t, e)

	coll, err := e.InitCollection(ctx, owner, 500)
	require.NoError(t, err)
	require.NoError(t, e.ExpectHasNft(ctx, coll.Mint, owner.PublicKey()))

	metadata, _, err := tokenMetadata.FindMetadataPda(coll.Mint)
	require.NoError(t, err)
	require.Equal(t, metadata, coll.Metadata)
	_, err = e.Client.GetAccountInfo(ctx, coll.Metadata, config.CommitmentConfirmed)
	require.NoError(t, err)

	// the master edition holds the mint authority
	mint, err := e.Client.GetAccountInfo(ctx, coll.Mint, config.CommitmentConfirmed)
	require.NoError(t, err)
	require.Equal(t, coll.MasterEdition, solana.PublicKeyFromBytes(mint.Data[4:36]))
}

func Test_MakeTree(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEnv(t)
	owner := fundedWallet(t, e)

	t.Run("Allocates with canopy", func(t *testing.T) {
		tree, err := e.MakeTree(ctx, owner, testPair, 2)
		require.NoError(t, err)
		info, err := e.Client.GetAccountInfo(ctx, tree, config.CommitmentConfirmed)
		require.NoError(t, err)
		acc, err := cnft.DecodeConcurrentMerkleTreeAccount(info.Data)
		require.NoError(t, err)
		require.Equal(t, uint32(2), acc.CanopyDepth())

		empty, err := cnft.NewTree(testPair)
		require.NoError(t, err)
		require.Equal(t, empty.GetCurrentRoot(), acc.CurrentRoot())
	})

	t.Run("Rejects invalid shapes", func(t *testing.T) {
		_, err := e.MakeTree(ctx, owner, cnft.DepthSizePair{MaxDepth: 4, MaxBufferSize: 8}, 0)
		require.Error(t, err)
		_, err = e.MakeTree(ctx, owner, testPair, 6)
		require.ErrorIs(t, err, cnft.ErrCanopyTooDeep)
	})
}

func Test_MintAndVerifyCNft(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEnv(t)
	treeOwner := fundedWallet(t, e)
	receiver := solana.NewWallet().PublicKey()
	creator := solana.NewWallet().PrivateKey

	tree, err := e.MakeTree(ctx, treeOwner, testPair, 1)
	require.NoError(t, err)

	meta, err := MakeCNftMeta(CNftMetaOpts{
		SellerFeeBasisPoints: 100,
		Creators:             []cnft.Creator{{Address: creator.PublicKey(), Share: 100}},
	})
	require.NoError(t, err)

	var hashes [][32]byte
	for i := 0; i < 2; i++ {
		_, err := e.MintCNft(ctx, MintCNftArgs{TreeOwner: treeOwner, Receiver: receiver, Metadata: meta, MerkleTree: tree})
		require.NoError(t, err)
		leaf, err := MakeLeaf(tree, uint32(i), receiver, solana.PublicKey{}, meta)
		require.NoError(t, err)
		require.Equal(t, receiver, leaf.Delegate)
		hashes = append(hashes, leaf.Hash)
	}
	mirror, err := cnft.SparseTreeFromLeaves(hashes, testPair)
	require.NoError(t, err)

	proof, err := mirror.GetProof(1, 1)
	require.NoError(t, err)
	verifyArgs := VerifyCNftArgs{
		Payer:      e.Payer,
		Index:      1,
		Owner:      receiver,
		MerkleTree: tree,
		Metadata:   meta,
		Proof:      proof.Siblings,
	}
	leaf, err := e.VerifyCNft(ctx, verifyArgs)
	require.NoError(t, err)
	require.Equal(t, hashes[1], leaf.Hash)

	t.Run("Wrong index fails the proof", func(t *testing.T) {
		bad := verifyArgs
		bad.Index = 0
		_, err := e.VerifyCNft(ctx, bad)
		require.True(t, IsProgramError(err, ErrConcMerkleTree))
	})

	t.Run("Creator verification updates the mirror", func(t *testing.T) {
		proof, err := mirror.GetProof(0, 1)
		require.NoError(t, err)
		updated, err := e.VerifyCNftCreator(ctx, VerifyCNftCreatorArgs{
			Payer:      e.Payer,
			Index:      0,
			Owner:      receiver,
			MerkleTree: tree,
			Mirror:     mirror,
			Metadata:   meta,
			Proof:      proof.Siblings,
			Creator:    creator,
		})
		require.NoError(t, err)
		require.True(t, updated.Metadata.Creators[0].Verified)
		require.False(t, meta.Creators[0].Verified)

		root, err := e.fetchTreeRoot(ctx, tree)
		require.NoError(t, err)
		require.Equal(t, mirror.GetCurrentRoot(), root)

		// leaf 1 is still provable against the new root
		proof, err = mirror.GetProof(1, 1)
		require.NoError(t, err)
		verifyArgs.Proof = proof.Siblings
		_, err = e.VerifyCNft(ctx, verifyArgs)
		require.NoError(t, err)
	})
}

func Test_MakeTestNfts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(*TestNftsOpts)
	}{
		{
			name: "Verified creator with canopy",
			modify: func(o *TestNftsOpts) {
				o.CNftMints, o.CNftMintsToTraderA = 3, 2
				o.PNftMints, o.PNftMintsToTraderA = 2, 1
				o.CanopyDepth = 1
				o.VerifiedCreator = solana.NewWallet().PrivateKey
			},
		},
		{
			name: "Collectionless",
			modify: func(o *TestNftsOpts) {
				o.CNftMints, o.CNftMintsToTraderA = 2, 0
				o.NrCreators = 3
				o.Collectionless = true
			},
		},
		{
			name: "Unverified collection",
			modify: func(o *TestNftsOpts) {
				o.CNftMints, o.CNftMintsToTraderA = 2, 1
				o.PNftMints = 1
				o.UnverifiedCollection = true
				o.RandomizeName = false
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEnv(t)
			opts := NewTestNftsOpts()
			opts.DepthSizePair = testPair
			opts.TraderSol = 10
			tt.modify(&opts)

			nfts, err := e.MakeTestNfts(ctx, opts)
			require.NoError(t, err)

			require.Len(t, nfts.Leaves, opts.CNftMints)
			require.Len(t, nfts.TraderACNfts, opts.CNftMintsToTraderA)
			require.Len(t, nfts.TraderBCNfts, opts.CNftMints-opts.CNftMintsToTraderA)
			require.Len(t, nfts.TraderAPNfts, opts.PNftMintsToTraderA)
			require.Len(t, nfts.TraderBPNfts, opts.PNftMints-opts.PNftMintsToTraderA)

			root, err := e.fetchTreeRoot(ctx, nfts.MerkleTree)
			require.NoError(t, err)
			require.Equal(t, nfts.Mirror.GetCurrentRoot(), root)
			require.Equal(t, uint32(opts.CNftMints), nfts.Mirror.Size())

			for i, leaf := range nfts.Leaves {
				require.Equal(t, uint32(i), leaf.Index)
				stored, err := nfts.Mirror.Leaf(leaf.Index)
				require.NoError(t, err)
				require.Equal(t, stored, leaf.Hash)
				if opts.Collectionless {
					require.Nil(t, leaf.Metadata.Collection)
				} else {
					require.Equal(t, nfts.CollectionMint, leaf.Metadata.Collection.Key)
					require.Equal(t, !opts.UnverifiedCollection, leaf.Metadata.Collection.Verified)
				}
				if len(opts.VerifiedCreator) > 0 {
					require.True(t, leaf.Metadata.Creators[0].Verified)
				}
			}
			for _, leaf := range nfts.TraderACNfts {
				require.Equal(t, nfts.TraderA.PublicKey(), leaf.Owner)
			}
			for _, leaf := range nfts.TraderBCNfts {
				require.Equal(t, nfts.TraderB.PublicKey(), leaf.Owner)
			}

			for _, nft := range nfts.TraderAPNfts {
				require.NoError(t, e.ExpectHasNft(ctx, nft.Mint, nfts.TraderA.PublicKey()))
				require.Equal(t, nfts.TraderB.PublicKey(), nft.Other.PublicKey())
			}
			for _, nft := range nfts.TraderBPNfts {
				require.NoError(t, e.ExpectHasNft(ctx, nft.Mint, nfts.TraderB.PublicKey()))
			}

			var total uint8
			for _, c := range nfts.Creators {
				total += c.Share
			}
			if len(nfts.Creators) > 0 {
				require.Equal(t, uint8(100), total)
			}
		})
	}

	t.Run("Rejects trader shares above the total", func(t *testing.T) {
		e, _ := newTestEnv(t)
		opts := NewTestNftsOpts()
		opts.CNftMints, opts.CNftMintsToTraderA = 1, 2
		_, err := e.MakeTestNfts(ctx, opts)
		require.Error(t, err)
	})
}
