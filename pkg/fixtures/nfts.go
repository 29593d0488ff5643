package fixtures

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tensor-hq/tensor-tests-go/pkg/cnft"
	"github.com/tensor-hq/tensor-tests-go/pkg/config"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/bubblegum"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/compression"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/computeBudget"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/tokenMetadata"
)

const (
	DefaultCollectionSize uint64 = 50

	collectionName   = "Nick's collection"
	collectionSymbol = "NICK"
	collectionUri    = "nicksfancyuri"

	cnftName   = "Compressed NFT"
	cnftSymbol = "COMP"
	cnftUri    = "https://v6nul6vaqrzhjm7qkcpbtbqcxmhwuzvcw2coxx2wali6sbxu634a.arweave.net/r5tF-qCEcnSz8FCeGYYCuw9qZqK2hOvfVgLR6Qb09vg"

	mintAccountSize    = 82
	verifyComputeUnits = 400_000
)

type CollectionAccounts struct {
	Mint          solana.PublicKey
	Metadata      solana.PublicKey
	MasterEdition solana.PublicKey
}

// InitCollection creates a sized collection parent through the legacy metadata
// instructions: a plain SPL mint with one token, V3 metadata and a zero-supply master
// edition.
func (e *Env) InitCollection(ctx context.Context, owner solana.PrivateKey, sellerFeeBasisPoints uint16) (*CollectionAccounts, error) {
	mint := solana.NewWallet().PrivateKey
	ownerKey := owner.PublicKey()

	rent, err := e.Client.GetMinimumBalanceForRentExemption(ctx, mintAccountSize)
	if err != nil {
		return nil, err
	}
	ata, _, err := solana.FindAssociatedTokenAddress(ownerKey, mint.PublicKey())
	if err != nil {
		return nil, err
	}
	mintIxs := []solana.Instruction{
		system.NewCreateAccountInstruction(rent, mintAccountSize, solana.TokenProgramID, ownerKey, mint.PublicKey()).Build(),
		token.NewInitializeMint2Instruction(0, ownerKey, ownerKey, mint.PublicKey()).Build(),
		associatedtokenaccount.NewCreateInstruction(ownerKey, ownerKey, mint.PublicKey()).Build(),
		token.NewMintToInstruction(1, mint.PublicKey(), ata, ownerKey, nil).Build(),
	}
	if _, err := e.send(ctx, owner, mintIxs, mint); err != nil {
		return nil, errors.Wrap(err, "failed to create collection mint")
	}

	out := &CollectionAccounts{Mint: mint.PublicKey()}
	if out.Metadata, _, err = tokenMetadata.FindMetadataPda(out.Mint); err != nil {
		return nil, err
	}
	if out.MasterEdition, _, err = tokenMetadata.FindMasterEditionPda(out.Mint); err != nil {
		return nil, err
	}

	metadataIx, err := tokenMetadata.NewCreateMetadataAccountV3Instruction(tokenMetadata.CreateMetadataAccountV3Accounts{
		Metadata:        out.Metadata,
		Mint:            out.Mint,
		MintAuthority:   ownerKey,
		Payer:           ownerKey,
		UpdateAuthority: ownerKey,
	}, tokenMetadata.CreateMetadataAccountV3Args{
		Data: tokenMetadata.DataV2{
			Name:                 collectionName,
			Symbol:               collectionSymbol,
			Uri:                  collectionUri,
			SellerFeeBasisPoints: sellerFeeBasisPoints,
		},
	})
	if err != nil {
		return nil, err
	}
	maxSupply := uint64(0)
	editionIx, err := tokenMetadata.NewCreateMasterEditionV3Instruction(tokenMetadata.CreateMasterEditionV3Accounts{
		Edition:         out.MasterEdition,
		Mint:            out.Mint,
		UpdateAuthority: ownerKey,
		MintAuthority:   ownerKey,
		Payer:           ownerKey,
		Metadata:        out.Metadata,
	}, &maxSupply)
	if err != nil {
		return nil, err
	}
	sizeIx, err := tokenMetadata.NewSetCollectionSizeInstruction(tokenMetadata.SetCollectionSizeAccounts{
		CollectionMetadata:  out.Metadata,
		CollectionAuthority: ownerKey,
		CollectionMint:      out.Mint,
	}, DefaultCollectionSize)
	if err != nil {
		return nil, err
	}
	if _, err := e.send(ctx, owner, []solana.Instruction{metadataIx, editionIx, sizeIx}); err != nil {
		return nil, errors.Wrapf(err, "failed to init collection %s", out.Mint)
	}
	return out, nil
}

// MakeTree allocates a tree account sized for pair and canopyDepth and initialises it
// through bubblegum with treeOwner as creator and delegate.
func (e *Env) MakeTree(ctx context.Context, treeOwner solana.PrivateKey, pair cnft.DepthSizePair, canopyDepth uint32) (solana.PublicKey, error) {
	if err := pair.Validate(); err != nil {
		return solana.PublicKey{}, err
	}
	if canopyDepth > pair.MaxDepth {
		return solana.PublicKey{}, fmt.Errorf("%w: canopy %d, depth %d", cnft.ErrCanopyTooDeep, canopyDepth, pair.MaxDepth)
	}
	tree := solana.NewWallet().PrivateKey
	owner := treeOwner.PublicKey()

	space := uint64(cnft.ConcurrentMerkleTreeAccountSize(pair.MaxDepth, pair.MaxBufferSize, canopyDepth))
	rent, err := e.Client.GetMinimumBalanceForRentExemption(ctx, space)
	if err != nil {
		return solana.PublicKey{}, err
	}
	public := false
	createIx, err := bubblegum.NewCreateTreeInstruction(bubblegum.CreateTreeAccounts{
		MerkleTree:  tree.PublicKey(),
		Payer:       owner,
		TreeCreator: owner,
	}, bubblegum.CreateTreeArgs{MaxDepth: pair.MaxDepth, MaxBufferSize: pair.MaxBufferSize, Public: &public})
	if err != nil {
		return solana.PublicKey{}, err
	}
	ixs := []solana.Instruction{
		system.NewCreateAccountInstruction(rent, space, programs.AccountCompressionProgramID, owner, tree.PublicKey()).Build(),
		createIx,
	}
	if _, err := e.send(ctx, treeOwner, ixs, tree); err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "failed to create merkle tree")
	}

	e.Logger.Sugar().Infow("Created merkle tree",
		"merkle_tree", tree.PublicKey().String(),
		"max_depth", pair.MaxDepth,
		"max_buffer_size", pair.MaxBufferSize,
		"canopy_depth", canopyDepth,
	)
	return tree.PublicKey(), nil
}

type CNftMetaOpts struct {
	SellerFeeBasisPoints uint16
	// CollectionMint is nil for collectionless NFTs.
	CollectionMint       *solana.PublicKey
	RandomizeName        bool
	UnverifiedCollection bool
	Creators             []cnft.Creator
}

// MakeCNftMeta builds the metadata of a test cNFT. The collection is marked verified
// unless UnverifiedCollection is set, matching what mint_to_collection_v1 stores.
func MakeCNftMeta(opts CNftMetaOpts) (cnft.MetadataArgs, error) {
	if len(opts.Creators) > cnft.MaxCreators {
		return cnft.MetadataArgs{}, fmt.Errorf("compressed NFTs take 0 to %d creators, got %d", cnft.MaxCreators, len(opts.Creators))
	}
	name := cnftName
	if opts.RandomizeName {
		name = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	editionNonce := uint8(0)
	standard := cnft.TokenStandardNonFungible
	meta := cnft.MetadataArgs{
		Name:                 name,
		Symbol:               cnftSymbol,
		Uri:                  cnftUri,
		SellerFeeBasisPoints: opts.SellerFeeBasisPoints,
		PrimarySaleHappened:  true,
		EditionNonce:         &editionNonce,
		TokenStandard:        &standard,
		TokenProgramVersion:  cnft.TokenProgramVersionOriginal,
		Creators:             append([]cnft.Creator(nil), opts.Creators...),
	}
	if opts.CollectionMint != nil {
		meta.Collection = &cnft.Collection{Key: *opts.CollectionMint, Verified: !opts.UnverifiedCollection}
	}
	return meta, nil
}

type MintCNftArgs struct {
	TreeOwner            solana.PrivateKey
	Receiver             solana.PublicKey
	Metadata             cnft.MetadataArgs
	MerkleTree           solana.PublicKey
	UnverifiedCollection bool
}

// MintCNft appends one leaf to the tree. NFTs with a verified collection go through
// mint_to_collection_v1 with the tree owner as collection authority.
func (e *Env) MintCNft(ctx context.Context, args MintCNftArgs) (solana.Signature, error) {
	owner := args.TreeOwner.PublicKey()
	accounts := bubblegum.MintAccounts{
		MerkleTree:   args.MerkleTree,
		LeafOwner:    args.Receiver,
		LeafDelegate: args.Receiver,
		Payer:        owner,
		TreeDelegate: owner,
	}

	var ix solana.Instruction
	if args.Metadata.Collection != nil && !args.UnverifiedCollection {
		collectionMint := args.Metadata.Collection.Key
		collectionMetadata, _, err := tokenMetadata.FindMetadataPda(collectionMint)
		if err != nil {
			return solana.Signature{}, err
		}
		edition, _, err := tokenMetadata.FindMasterEditionPda(collectionMint)
		if err != nil {
			return solana.Signature{}, err
		}
		if ix, err = bubblegum.NewMintToCollectionV1Instruction(bubblegum.MintToCollectionAccounts{
			MintAccounts:        accounts,
			CollectionAuthority: owner,
			CollectionMint:      collectionMint,
			CollectionMetadata:  collectionMetadata,
			EditionAccount:      edition,
		}, args.Metadata); err != nil {
			return solana.Signature{}, err
		}
	} else {
		var err error
		if ix, err = bubblegum.NewMintV1Instruction(accounts, args.Metadata); err != nil {
			return solana.Signature{}, err
		}
	}

	sig, err := e.send(ctx, args.TreeOwner, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, errors.Wrapf(err, "failed to mint cnft into %s", args.MerkleTree)
	}
	e.Logger.Sugar().Debugw("Minted cnft", "signature", sig.String(), "merkle_tree", args.MerkleTree.String())
	return sig, nil
}

// MakeLeaf computes the leaf a mint produced; a zero delegate defaults to owner.
func MakeLeaf(merkleTree solana.PublicKey, index uint32, owner, delegate solana.PublicKey, meta cnft.MetadataArgs) (*cnft.Leaf, error) {
	return cnft.NewLeaf(merkleTree, index, owner, delegate, meta)
}

func (e *Env) fetchTreeRoot(ctx context.Context, merkleTree solana.PublicKey) ([32]byte, error) {
	info, err := e.Client.GetAccountInfo(ctx, merkleTree, config.CommitmentConfirmed)
	if err != nil {
		return [32]byte{}, errors.Wrapf(err, "failed to fetch merkle tree %s", merkleTree)
	}
	account, err := cnft.DecodeConcurrentMerkleTreeAccount(info.Data)
	if err != nil {
		return [32]byte{}, errors.Wrapf(err, "failed to decode merkle tree %s", merkleTree)
	}
	return account.CurrentRoot(), nil
}

type VerifyCNftArgs struct {
	Payer      solana.PrivateKey
	Index      uint32
	Owner      solana.PublicKey
	Delegate   solana.PublicKey
	MerkleTree solana.PublicKey
	Metadata   cnft.MetadataArgs
	// Proof is canopy-trimmed.
	Proof [][32]byte
}

// VerifyCNft asserts on-chain that the leaf described by args sits under the tree's
// current root.
func (e *Env) VerifyCNft(ctx context.Context, args VerifyCNftArgs) (*cnft.Leaf, error) {
	root, err := e.fetchTreeRoot(ctx, args.MerkleTree)
	if err != nil {
		return nil, err
	}
	leaf, err := MakeLeaf(args.MerkleTree, args.Index, args.Owner, args.Delegate, args.Metadata)
	if err != nil {
		return nil, err
	}
	ix, err := compression.NewVerifyLeafInstruction(args.MerkleTree, compression.VerifyLeafArgs{
		Root:      root,
		Leaf:      leaf.Hash,
		LeafIndex: args.Index,
		Proof:     args.Proof,
	})
	if err != nil {
		return nil, err
	}
	ixs, err := computeBudget.PrependComputeIxs([]solana.Instruction{ix}, verifyComputeUnits, nil)
	if err != nil {
		return nil, err
	}
	if _, err := e.send(ctx, args.Payer, ixs); err != nil {
		return nil, errors.Wrapf(err, "failed to verify leaf %d", args.Index)
	}
	e.Logger.Sugar().Debugw("Verified cnft", "index", args.Index, "asset_id", leaf.AssetID.String(), "root", cnft.EncodeHash(root))
	return leaf, nil
}

type VerifyCNftCreatorArgs struct {
	Payer      solana.PrivateKey
	Index      uint32
	Owner      solana.PublicKey
	Delegate   solana.PublicKey
	MerkleTree solana.PublicKey
	// Mirror is updated once the verification is confirmed.
	Mirror   *cnft.Tree
	Metadata cnft.MetadataArgs
	Proof    [][32]byte
	Creator  solana.PrivateKey
}

// VerifyCNftCreator flips the verified flag of Creator on the leaf and applies the same
// change to the mirror. The returned leaf carries the updated metadata.
func (e *Env) VerifyCNftCreator(ctx context.Context, args VerifyCNftCreatorArgs) (*cnft.Leaf, error) {
	root, err := e.fetchTreeRoot(ctx, args.MerkleTree)
	if err != nil {
		return nil, err
	}
	ix, err := bubblegum.NewVerifyCreatorInstruction(bubblegum.VerifyCreatorAccounts{
		MerkleTree:   args.MerkleTree,
		LeafOwner:    args.Owner,
		LeafDelegate: args.Delegate,
		Payer:        args.Payer.PublicKey(),
		Creator:      args.Creator.PublicKey(),
	}, bubblegum.VerifyCreatorArgs{
		Root:     root,
		Index:    args.Index,
		Metadata: args.Metadata,
		Proof:    args.Proof,
	})
	if err != nil {
		return nil, err
	}
	if _, err := e.send(ctx, args.Payer, []solana.Instruction{ix}, args.Creator); err != nil {
		return nil, errors.Wrapf(err, "failed to verify creator of leaf %d", args.Index)
	}

	meta := args.Metadata.Clone()
	meta.VerifyCreator(args.Creator.PublicKey())
	leaf, err := MakeLeaf(args.MerkleTree, args.Index, args.Owner, args.Delegate, meta)
	if err != nil {
		return nil, err
	}
	if args.Mirror != nil {
		if err := args.Mirror.UpdateLeaf(args.Index, leaf.Hash); err != nil {
			return nil, err
		}
		if err := args.Mirror.ConfirmLeaf(args.Index); err != nil {
			return nil, err
		}
	}
	return leaf, nil
}

type TestNftsOpts struct {
	CNftMints          int
	CNftMintsToTraderA int
	PNftMints          int
	PNftMintsToTraderA int
	// NrCreators random unverified creators share royalties, ignored with VerifiedCreator.
	NrCreators    int
	DepthSizePair cnft.DepthSizePair
	CanopyDepth   uint32
	RandomizeName bool
	// VerifiedCreator becomes the sole creator and is verified on every cNFT.
	VerifiedCreator      solana.PrivateKey
	Collectionless       bool
	UnverifiedCollection bool
	SellerFeeBasisPoints uint16
	RuleSet              *solana.PublicKey
	// TraderSol funds each generated trader; zero uses the wallet default.
	TraderSol uint64
}

func NewTestNftsOpts() TestNftsOpts {
	return TestNftsOpts{
		NrCreators:           cnft.MaxCreators,
		DepthSizePair:        cnft.DefaultDepthSize,
		RandomizeName:        true,
		SellerFeeBasisPoints: 300,
	}
}

type TestNfts struct {
	MerkleTree solana.PublicKey
	// Mirror tracks the tree after every creator verification.
	Mirror         *cnft.Tree
	Leaves         []*cnft.Leaf
	TreeOwner      solana.PrivateKey
	TraderA        solana.PrivateKey
	TraderB        solana.PrivateKey
	CollectionMint solana.PublicKey
	TraderACNfts   []*cnft.Leaf
	TraderBCNfts   []*cnft.Leaf
	TraderAPNfts   []*MintTwoAta
	TraderBPNfts   []*MintTwoAta
	Creators       []cnft.Creator
}

// MakeTestNfts sets up three traders, a tree, a collection, pNFTs and cNFTs. pNFTs are
// minted concurrently with the cNFTs, which are minted one at a time so leaf indices
// follow mint order. Every cNFT is then checked on-chain against the mirror.
func (e *Env) MakeTestNfts(ctx context.Context, opts TestNftsOpts) (*TestNfts, error) {
	if opts.CNftMintsToTraderA > opts.CNftMints || opts.PNftMintsToTraderA > opts.PNftMints {
		return nil, fmt.Errorf("trader A share exceeds total mints")
	}
	if opts.CanopyDepth > opts.DepthSizePair.MaxDepth {
		return nil, fmt.Errorf("%w: canopy %d, depth %d", cnft.ErrCanopyTooDeep, opts.CanopyDepth, opts.DepthSizePair.MaxDepth)
	}

	traders, err := e.Sender.MakeNTraders(ctx, e.Payer, 3, opts.TraderSol)
	if err != nil {
		return nil, errors.Wrap(err, "failed to make traders")
	}
	out := &TestNfts{TreeOwner: traders[0], TraderA: traders[1], TraderB: traders[2]}

	if out.MerkleTree, err = e.MakeTree(ctx, out.TreeOwner, opts.DepthSizePair, opts.CanopyDepth); err != nil {
		return nil, err
	}

	out.Creators, err = makeCreators(opts)
	if err != nil {
		return nil, err
	}

	collection := solana.NewWallet().PrivateKey
	out.CollectionMint = collection.PublicKey()
	collSize := DefaultCollectionSize
	if _, err := e.CreateNft(ctx, CreateNftArgs{
		Owner:         out.TreeOwner,
		Mint:          collection,
		TokenStandard: tokenMetadata.TokenStandardNonFungible,
		RoyaltyBps:    opts.SellerFeeBasisPoints,
		SetCollSize:   &collSize,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to create collection")
	}

	creatorInputs := make([]CreatorInput, len(out.Creators))
	for i, c := range out.Creators {
		creatorInputs[i] = CreatorInput{Address: c.Address, Share: c.Share}
	}
	pnftArgs := func(owner, other solana.PrivateKey) MintTwoAtaArgs {
		return MintTwoAtaArgs{
			CreateAndFundAtaArgs: CreateAndFundAtaArgs{
				Owner:        owner,
				RoyaltyBps:   opts.SellerFeeBasisPoints,
				Creators:     creatorInputs,
				Collection:   collection,
				CollectionUA: out.TreeOwner,
				Programmable: true,
				RuleSet:      opts.RuleSet,
			},
			Other: other,
		}
	}

	out.TraderAPNfts = make([]*MintTwoAta, opts.PNftMintsToTraderA)
	out.TraderBPNfts = make([]*MintTwoAta, opts.PNftMints-opts.PNftMintsToTraderA)
	var leaves []*cnft.Leaf

	g, gctx := errgroup.WithContext(ctx)
	for i := range out.TraderAPNfts {
		i := i
		g.Go(func() error {
			nft, err := e.MakeMintTwoAta(gctx, pnftArgs(out.TraderA, out.TraderB))
			if err != nil {
				return err
			}
			out.TraderAPNfts[i] = nft
			return nil
		})
	}
	for i := range out.TraderBPNfts {
		i := i
		g.Go(func() error {
			nft, err := e.MakeMintTwoAta(gctx, pnftArgs(out.TraderB, out.TraderA))
			if err != nil {
				return err
			}
			out.TraderBPNfts[i] = nft
			return nil
		})
	}
	g.Go(func() error {
		var err error
		leaves, err = e.mintTestCNfts(gctx, out, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hashes := make([][32]byte, len(leaves))
	for i, l := range leaves {
		hashes[i] = l.Hash
	}
	if out.Mirror, err = cnft.SparseTreeFromLeaves(hashes, opts.DepthSizePair); err != nil {
		return nil, err
	}

	// sequential: each creator verification moves the root the next proof is taken against
	for i, leaf := range leaves {
		if len(opts.VerifiedCreator) > 0 {
			proof, err := out.Mirror.GetProof(leaf.Index, opts.CanopyDepth)
			if err != nil {
				return nil, err
			}
			if leaves[i], err = e.VerifyCNftCreator(ctx, VerifyCNftCreatorArgs{
				Payer:      e.Payer,
				Index:      leaf.Index,
				Owner:      leaf.Owner,
				Delegate:   leaf.Delegate,
				MerkleTree: out.MerkleTree,
				Mirror:     out.Mirror,
				Metadata:   leaf.Metadata,
				Proof:      proof.Siblings,
				Creator:    opts.VerifiedCreator,
			}); err != nil {
				return nil, err
			}
		}

		proof, err := out.Mirror.GetProof(leaf.Index, opts.CanopyDepth)
		if err != nil {
			return nil, err
		}
		if _, err := e.VerifyCNft(ctx, VerifyCNftArgs{
			Payer:      e.Payer,
			Index:      leaves[i].Index,
			Owner:      leaves[i].Owner,
			Delegate:   leaves[i].Delegate,
			MerkleTree: out.MerkleTree,
			Metadata:   leaves[i].Metadata,
			Proof:      proof.Siblings,
		}); err != nil {
			return nil, err
		}
	}

	out.Leaves = leaves
	out.TraderACNfts = leaves[:opts.CNftMintsToTraderA]
	out.TraderBCNfts = leaves[opts.CNftMintsToTraderA:]

	e.Logger.Sugar().Infow("Test nfts ready",
		"merkle_tree", out.MerkleTree.String(),
		"cnfts", len(leaves),
		"pnfts", opts.PNftMints,
		"root", cnft.EncodeHash(out.Mirror.GetCurrentRoot()),
	)
	return out, nil
}

func (e *Env) mintTestCNfts(ctx context.Context, out *TestNfts, opts TestNftsOpts) ([]*cnft.Leaf, error) {
	var collectionMint *solana.PublicKey
	if !opts.Collectionless {
		collectionMint = &out.CollectionMint
	}

	leaves := make([]*cnft.Leaf, 0, opts.CNftMints)
	for i := 0; i < opts.CNftMints; i++ {
		meta, err := MakeCNftMeta(CNftMetaOpts{
			SellerFeeBasisPoints: opts.SellerFeeBasisPoints,
			CollectionMint:       collectionMint,
			RandomizeName:        opts.RandomizeName,
			UnverifiedCollection: opts.UnverifiedCollection,
			Creators:             out.Creators,
		})
		if err != nil {
			return nil, err
		}

		receiver := out.TraderA.PublicKey()
		if i >= opts.CNftMintsToTraderA {
			receiver = out.TraderB.PublicKey()
		}
		if _, err := e.MintCNft(ctx, MintCNftArgs{
			TreeOwner:            out.TreeOwner,
			Receiver:             receiver,
			Metadata:             meta,
			MerkleTree:           out.MerkleTree,
			UnverifiedCollection: opts.UnverifiedCollection,
		}); err != nil {
			return nil, err
		}

		leaf, err := MakeLeaf(out.MerkleTree, uint32(i), receiver, solana.PublicKey{}, meta)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

// makeCreators splits 100 shares across the creators; integer division leaves the
// remainder with the first creator.
func makeCreators(opts TestNftsOpts) ([]cnft.Creator, error) {
	if len(opts.VerifiedCreator) > 0 {
		return []cnft.Creator{{Address: opts.VerifiedCreator.PublicKey(), Share: 100}}, nil
	}
	if opts.NrCreators < 0 || opts.NrCreators > cnft.MaxCreators {
		return nil, fmt.Errorf("compressed NFTs take 0 to %d creators, got %d", cnft.MaxCreators, opts.NrCreators)
	}
	creators := make([]cnft.Creator, opts.NrCreators)
	for i := range creators {
		creators[i] = cnft.Creator{Address: solana.NewWallet().PublicKey(), Share: uint8(100 / opts.NrCreators)}
	}
	if len(creators) > 0 {
		creators[0].Share += uint8(100 % opts.NrCreators)
	}
	return creators, nil
}

// CalcCreatorFees is the royalty on amount at sellerFeeBasisPoints, truncated.
func CalcCreatorFees(amount uint64, sellerFeeBasisPoints uint16) uint64 {
	return amount * uint64(sellerFeeBasisPoints) / 10_000
}
