package fixtures

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/tensor-hq/tensor-tests-go/pkg/config"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/tswap"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/whitelist"
)

// InitWLAuthority sets cosigner and owner on the whitelist authority and checks the
// stored account.
func (e *Env) InitWLAuthority(ctx context.Context, cosigner, owner solana.PrivateKey) (solana.PublicKey, error) {
	cosignerKey := cosigner.PublicKey()
	ownerKey := owner.PublicKey()
	ix, authPda, err := whitelist.NewInitUpdateAuthorityInstruction(
		whitelist.InitUpdateAuthorityAccounts{Cosigner: cosignerKey, Owner: ownerKey},
		whitelist.InitUpdateAuthorityArgs{NewCosigner: &cosignerKey, NewOwner: &ownerKey},
	)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if _, err := e.send(ctx, owner, []solana.Instruction{ix}, cosigner); err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "failed to init whitelist authority")
	}

	info, err := e.Client.GetAccountInfo(ctx, authPda, config.CommitmentConfirmed)
	if err != nil {
		return solana.PublicKey{}, err
	}
	auth, err := whitelist.DecodeAuthority(info.Data)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !auth.Cosigner.Equals(cosignerKey) || !auth.Owner.Equals(ownerKey) {
		return solana.PublicKey{}, errors.Errorf("authority %s holds cosigner %s owner %s", authPda, auth.Cosigner, auth.Owner)
	}
	return authPda, nil
}

// InitTSwap initialises the whitelist authority and the tensorswap config with the
// taker fee, then checks every stored field.
func (e *Env) InitTSwap(ctx context.Context, cosigner, owner solana.PrivateKey) (solana.PublicKey, error) {
	if _, err := e.InitWLAuthority(ctx, cosigner, owner); err != nil {
		return solana.PublicKey{}, err
	}

	ix, tswapPda, err := tswap.NewInitUpdateTSwapInstruction(tswap.InitUpdateTSwapAccounts{
		Owner:    owner.PublicKey(),
		NewOwner: owner.PublicKey(),
		Cosigner: cosigner.PublicKey(),
	}, tswap.Config{FeeBps: tswap.TakerFeeBps})
	if err != nil {
		return solana.PublicKey{}, err
	}
	if _, err := e.send(ctx, owner, []solana.Instruction{ix}, cosigner); err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "failed to init tswap")
	}

	info, err := e.Client.GetAccountInfo(ctx, tswapPda, config.CommitmentConfirmed)
	if err != nil {
		return solana.PublicKey{}, err
	}
	acc, err := tswap.DecodeTSwap(info.Data)
	if err != nil {
		return solana.PublicKey{}, err
	}
	switch {
	case acc.Version != tswap.CurrentTSwapVersion:
		return solana.PublicKey{}, errors.Errorf("tswap version %d", acc.Version)
	case !acc.Owner.Equals(owner.PublicKey()):
		return solana.PublicKey{}, errors.Errorf("tswap owner %s", acc.Owner)
	case !acc.Cosigner.Equals(cosigner.PublicKey()):
		return solana.PublicKey{}, errors.Errorf("tswap cosigner %s", acc.Cosigner)
	case !acc.FeeVault.Equals(tswapPda):
		return solana.PublicKey{}, errors.Errorf("tswap fee vault %s", acc.FeeVault)
	case acc.Config.FeeBps != tswap.TakerFeeBps:
		return solana.PublicKey{}, errors.Errorf("tswap fee %d bps", acc.Config.FeeBps)
	}

	e.Logger.Sugar().Infow("Initialized tswap", "tswap", tswapPda.String(), "owner", owner.PublicKey().String())
	return tswapPda, nil
}
