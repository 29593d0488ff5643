package fixtures

import (
	"context"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/pkg/errors"

	"github.com/tensor-hq/tensor-tests-go/pkg/config"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/tokenMetadata"
)

const (
	nftName   = "Whatever"
	nftSymbol = "TSR"
	nftUri    = "https://www.tensor.trade"
)

// CreatorInput is a creator of a new NFT. Creators with an Authority are verified in the
// same transaction that mints the NFT.
type CreatorInput struct {
	Address   solana.PublicKey
	Share     uint8
	Authority solana.PrivateKey
}

// NftAccounts are the accounts backing one NFT held by a single owner.
type NftAccounts struct {
	Mint          solana.PublicKey
	Ata           solana.PublicKey
	Metadata      solana.PublicKey
	MasterEdition solana.PublicKey
}

// CreateAta creates owner's associated token account for mint; owner pays for the
// account, the env payer pays the fee.
func (e *Env) CreateAta(ctx context.Context, mint solana.PublicKey, owner solana.PrivateKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner.PublicKey(), mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	ix, err := associatedtokenaccount.NewCreateInstruction(owner.PublicKey(), owner.PublicKey(), mint).ValidateAndBuild()
	if err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "failed to build create ata instruction")
	}
	if _, err := e.send(ctx, e.Payer, []solana.Instruction{ix}, owner); err != nil {
		return solana.PublicKey{}, errors.Wrapf(err, "failed to create ata for %s", owner.PublicKey())
	}
	return ata, nil
}

type CreateNftArgs struct {
	Owner         solana.PrivateKey
	Mint          solana.PrivateKey
	TokenStandard tokenMetadata.TokenStandard
	RoyaltyBps    uint16
	Creators      []CreatorInput
	// SetCollSize turns the new NFT into a sized collection parent.
	SetCollSize *uint64
	Collection  solana.PrivateKey
	// CollectionUA verifies the collection; defaults to Owner.
	CollectionUA         solana.PrivateKey
	CollectionUnverified bool
	RuleSet              *solana.PublicKey
}

// CreateNft creates a metadata-backed NFT, mints one token into the owner's ATA and, in
// the same transaction, verifies the collection and any creator that has an authority.
func (e *Env) CreateNft(ctx context.Context, args CreateNftArgs) (*NftAccounts, error) {
	mint := args.Mint.PublicKey()
	owner := args.Owner.PublicKey()

	metadata, _, err := tokenMetadata.FindMetadataPda(mint)
	if err != nil {
		return nil, err
	}
	masterEdition, _, err := tokenMetadata.FindMasterEditionPda(mint)
	if err != nil {
		return nil, err
	}

	asset := tokenMetadata.AssetData{
		Name:                 nftName,
		Symbol:               nftSymbol,
		Uri:                  nftUri,
		SellerFeeBasisPoints: args.RoyaltyBps,
		PrimarySaleHappened:  true,
		IsMutable:            true,
		TokenStandard:        args.TokenStandard,
		RuleSet:              args.RuleSet,
	}
	for _, c := range args.Creators {
		asset.Creators = append(asset.Creators, tokenMetadata.Creator{Address: c.Address, Share: c.Share})
	}
	if len(args.Collection) > 0 {
		asset.Collection = &tokenMetadata.Collection{Key: args.Collection.PublicKey()}
	}

	decimals := uint8(0)
	createIx, err := tokenMetadata.NewCreateInstruction(tokenMetadata.CreateAccounts{
		Metadata:        metadata,
		MasterEdition:   &masterEdition,
		Mint:            mint,
		Authority:       owner,
		Payer:           owner,
		UpdateAuthority: owner,
		// the mint account is initialised by the program
		MintSigner: true,
	}, tokenMetadata.CreateArgsV1{
		AssetData:   asset,
		Decimals:    &decimals,
		PrintSupply: tokenMetadata.PrintSupplyZero{},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build create instruction")
	}

	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	tokenRecord, _, err := tokenMetadata.FindTokenRecordPda(mint, ata)
	if err != nil {
		return nil, err
	}
	mintIx, err := tokenMetadata.NewMintInstruction(tokenMetadata.MintAccounts{
		Token:              ata,
		TokenOwner:         &owner,
		Metadata:           metadata,
		MasterEdition:      &masterEdition,
		TokenRecord:        &tokenRecord,
		Mint:               mint,
		Authority:          owner,
		Payer:              owner,
		AuthorizationRules: args.RuleSet,
	}, tokenMetadata.MintArgsV1{Amount: 1, AuthorizationData: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build mint instruction")
	}
	ixs := []solana.Instruction{createIx, mintIx}

	// verified separately; Create refuses a pre-verified collection
	if len(args.Collection) > 0 && !args.CollectionUnverified {
		authority := args.CollectionUA
		if len(authority) == 0 {
			authority = args.Owner
		}
		collectionMint := args.Collection.PublicKey()
		collectionMetadata, _, err := tokenMetadata.FindMetadataPda(collectionMint)
		if err != nil {
			return nil, err
		}
		collectionEdition, _, err := tokenMetadata.FindMasterEditionPda(collectionMint)
		if err != nil {
			return nil, err
		}
		ix, err := tokenMetadata.NewVerifyInstruction(tokenMetadata.VerifyAccounts{
			Authority:               authority.PublicKey(),
			Metadata:                metadata,
			CollectionMint:          &collectionMint,
			CollectionMetadata:      &collectionMetadata,
			CollectionMasterEdition: &collectionEdition,
		}, tokenMetadata.VerificationArgsCollectionV1)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, ix)
	}

	for _, c := range args.Creators {
		if len(c.Authority) == 0 {
			continue
		}
		ix, err := tokenMetadata.NewVerifyInstruction(tokenMetadata.VerifyAccounts{
			Authority: c.Authority.PublicKey(),
			Metadata:  metadata,
		}, tokenMetadata.VerificationArgsCreatorV1)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, ix)
	}

	if args.SetCollSize != nil {
		ix, err := tokenMetadata.NewSetCollectionSizeInstruction(tokenMetadata.SetCollectionSizeAccounts{
			CollectionMetadata:  metadata,
			CollectionAuthority: owner,
			CollectionMint:      mint,
		}, *args.SetCollSize)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, ix)
	}

	signers := []solana.PrivateKey{args.Owner, args.Mint, args.CollectionUA}
	for _, c := range args.Creators {
		signers = append(signers, c.Authority)
	}
	if _, err := e.send(ctx, e.Payer, ixs, signers...); err != nil {
		return nil, errors.Wrapf(err, "failed to create nft %s", mint)
	}

	e.Logger.Sugar().Debugw("Created nft", "mint", mint.String(), "owner", owner.String(), "token_standard", args.TokenStandard)
	return &NftAccounts{Mint: mint, Ata: ata, Metadata: metadata, MasterEdition: masterEdition}, nil
}

type CreateAndFundAtaArgs struct {
	// Owner receives the NFT; a funded wallet is created when nil.
	Owner solana.PrivateKey
	// Mint is generated when nil.
	Mint       solana.PrivateKey
	RoyaltyBps uint16
	Creators   []CreatorInput
	Collection solana.PrivateKey
	// CreateCollection mints Collection as an NFT owned by Owner first.
	CreateCollection     bool
	CollectionUA         solana.PrivateKey
	CollectionUnverified bool
	Programmable         bool
	RuleSet              *solana.PublicKey
}

type FundedAta struct {
	NftAccounts
	Owner          solana.PrivateKey
	CollectionInfo *NftAccounts
}

// CreateAndFundAta mints a fresh NFT into the owner's ATA.
func (e *Env) CreateAndFundAta(ctx context.Context, args CreateAndFundAtaArgs) (*FundedAta, error) {
	owner := args.Owner
	if len(owner) == 0 {
		wallet, err := e.Sender.CreateFundedWallet(ctx, e.Payer, 0)
		if err != nil {
			return nil, err
		}
		owner = wallet
	}
	mint := args.Mint
	if len(mint) == 0 {
		mint = solana.NewWallet().PrivateKey
	}

	out := &FundedAta{Owner: owner}
	if args.CreateCollection && len(args.Collection) > 0 {
		info, err := e.CreateNft(ctx, CreateNftArgs{
			Owner:         owner,
			Mint:          args.Collection,
			TokenStandard: tokenMetadata.TokenStandardNonFungible,
			RoyaltyBps:    args.RoyaltyBps,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create collection")
		}
		out.CollectionInfo = info
	}

	standard := tokenMetadata.TokenStandardNonFungible
	if args.Programmable {
		standard = tokenMetadata.TokenStandardProgrammableNonFungible
	}
	nft, err := e.CreateNft(ctx, CreateNftArgs{
		Owner:                owner,
		Mint:                 mint,
		TokenStandard:        standard,
		RoyaltyBps:           args.RoyaltyBps,
		Creators:             args.Creators,
		Collection:           args.Collection,
		CollectionUA:         args.CollectionUA,
		CollectionUnverified: args.CollectionUnverified,
		RuleSet:              args.RuleSet,
	})
	if err != nil {
		return nil, err
	}
	out.NftAccounts = *nft
	return out, nil
}

type MintTwoAtaArgs struct {
	CreateAndFundAtaArgs
	Other solana.PrivateKey
}

type MintTwoAta struct {
	FundedAta
	Other    solana.PrivateKey
	OtherAta solana.PublicKey
}

// MakeMintTwoAta mints an NFT to the owner and creates an empty ATA for other.
func (e *Env) MakeMintTwoAta(ctx context.Context, args MintTwoAtaArgs) (*MintTwoAta, error) {
	funded, err := e.CreateAndFundAta(ctx, args.CreateAndFundAtaArgs)
	if err != nil {
		return nil, err
	}
	otherAta, err := e.CreateAta(ctx, funded.Mint, args.Other)
	if err != nil {
		return nil, err
	}
	return &MintTwoAta{FundedAta: *funded, Other: args.Other, OtherAta: otherAta}, nil
}

// GetTokenAmount returns the raw amount held by a token account.
func (e *Env) GetTokenAmount(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return e.Client.GetTokenAccountBalance(ctx, account, config.CommitmentConfirmed)
}

// ExpectHasNft fails unless owner's ATA for mint holds exactly one token.
func (e *Env) ExpectHasNft(ctx context.Context, mint, owner solana.PublicKey) error {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return err
	}
	amount, err := e.GetTokenAmount(ctx, ata)
	if err != nil {
		return errors.Wrapf(err, "failed to read ata %s", ata)
	}
	if amount != 1 {
		return errors.Errorf("%s holds %d of %s, want 1", owner, amount, mint)
	}
	return nil
}
