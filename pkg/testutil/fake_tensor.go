package testutil

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/tswap"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/whitelist"
)

const (
	errCodeHasOne        uint32 = 0x7d1
	errCodeSeedsViolated uint32 = 0x7d6
)

// RegisterTensorPrograms installs stand-ins for the whitelist and tensorswap config
// instructions. Both keep their state in the same account layout the real programs use.
func (f *FakeCluster) RegisterTensorPrograms() {
	f.RegisterProgram(programs.WhitelistProgramID, whitelistProgram)
	f.RegisterProgram(programs.TSwapProgramID, tswapProgram)
}

func whitelistProgram(ic *InvocationContext) error {
	if whitelist.IsInitUpdateAuthority(ic.Data) {
		return whitelistInitUpdateAuthority(ic)
	}
	return whitelistInitUpdateWhitelist(ic)
}

func whitelistInitUpdateAuthority(ic *InvocationContext) error {
	args, err := whitelist.ParseInitUpdateAuthority(ic.Data)
	if err != nil {
		return fmt.Errorf("InvalidInstructionData: %w", err)
	}
	authority, _ := ic.Key(0)
	cosigner, _ := ic.Key(1)
	owner, err := ic.Key(2)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(cosigner); err != nil {
		return err
	}
	if err := ic.RequireSigner(owner); err != nil {
		return err
	}
	expected, bump, err := whitelist.FindAuthorityPda()
	if err != nil {
		return err
	}
	if !expected.Equals(authority) {
		return &ProgramError{Code: errCodeSeedsViolated, Msg: "authority seeds violated"}
	}

	state := &whitelist.Authority{Bump: bump, Cosigner: cosigner, Owner: owner}
	existing := ic.Account(authority)
	if existing != nil && len(existing.Data) > 0 {
		if state, err = whitelist.DecodeAuthority(existing.Data); err != nil {
			return err
		}
		if !state.Cosigner.Equals(cosigner) || !state.Owner.Equals(owner) {
			return &ProgramError{Code: errCodeHasOne, Msg: "A has one constraint was violated"}
		}
	}
	if args.NewCosigner != nil {
		state.Cosigner = *args.NewCosigner
	}
	if args.NewOwner != nil {
		state.Owner = *args.NewOwner
	}

	data, err := state.Encode()
	if err != nil {
		return err
	}
	if existing != nil && len(existing.Data) > 0 {
		return ic.UpdateData(authority, data)
	}
	return ic.CreateWithData(owner, authority, data, programs.WhitelistProgramID)
}

func whitelistInitUpdateWhitelist(ic *InvocationContext) error {
	args, err := whitelist.ParseInitUpdateWhitelist(ic.Data)
	if err != nil {
		return fmt.Errorf("InvalidInstructionData: %w", err)
	}
	wlKey, _ := ic.Key(0)
	authority, _ := ic.Key(1)
	cosigner, err := ic.Key(2)
	if err != nil {
		return err
	}
	if err := ic.RequireSigner(cosigner); err != nil {
		return err
	}

	authAcc := ic.Account(authority)
	if authAcc == nil || len(authAcc.Data) == 0 {
		return &ProgramError{Code: errCodeAccountNotInitialized, Msg: "The program expected this account to be already initialized"}
	}
	auth, err := whitelist.DecodeAuthority(authAcc.Data)
	if err != nil {
		return err
	}
	if !auth.Cosigner.Equals(cosigner) {
		return &ProgramError{Code: errCodeHasOne, Msg: "A has one constraint was violated"}
	}
	expected, bump, err := whitelist.FindWhitelistPda(args.UUID)
	if err != nil {
		return err
	}
	if !expected.Equals(wlKey) {
		return &ProgramError{Code: errCodeSeedsViolated, Msg: "whitelist seeds violated"}
	}

	state := &whitelist.Whitelist{Version: whitelist.CurrentWhitelistVersion, Bump: bump, UUID: args.UUID}
	existing := ic.Account(wlKey)
	if existing != nil && len(existing.Data) > 0 {
		if state, err = whitelist.DecodeWhitelist(existing.Data); err != nil {
			return err
		}
	}
	if args.RootHash != nil {
		state.RootHash = *args.RootHash
	}
	if args.Name != nil {
		state.Name = *args.Name
	}
	if args.Voc != nil {
		state.Voc = args.Voc
	}
	if args.Fvc != nil {
		state.Fvc = args.Fvc
	}
	state.Verified = true

	data, err := state.Encode()
	if err != nil {
		return err
	}
	if existing != nil && len(existing.Data) > 0 {
		return ic.UpdateData(wlKey, data)
	}
	return ic.CreateWithData(cosigner, wlKey, data, programs.WhitelistProgramID)
}

func tswapProgram(ic *InvocationContext) error {
	cfg, err := tswap.ParseInitUpdateTSwap(ic.Data)
	if err != nil {
		return fmt.Errorf("InvalidInstructionData: %w", err)
	}
	tswapKey, _ := ic.Key(0)
	feeVault, _ := ic.Key(1)
	cosigner, _ := ic.Key(2)
	owner, _ := ic.Key(3)
	newOwner, err := ic.Key(4)
	if err != nil {
		return err
	}
	for _, key := range []solana.PublicKey{cosigner, owner, newOwner} {
		if err := ic.RequireSigner(key); err != nil {
			return err
		}
	}
	expected, bump, err := tswap.FindTSwapPda()
	if err != nil {
		return err
	}
	if !expected.Equals(tswapKey) || !expected.Equals(feeVault) {
		return &ProgramError{Code: errCodeSeedsViolated, Msg: "tswap seeds violated"}
	}

	existing := ic.Account(tswapKey)
	if existing != nil && len(existing.Data) > 0 {
		current, err := tswap.DecodeTSwap(existing.Data)
		if err != nil {
			return err
		}
		if !current.Owner.Equals(owner) {
			return &ProgramError{Code: errCodeHasOne, Msg: "A has one constraint was violated"}
		}
	}

	state := tswap.TSwap{
		Version:  tswap.CurrentTSwapVersion,
		Bump:     bump,
		Config:   *cfg,
		Owner:    newOwner,
		FeeVault: feeVault,
		Cosigner: cosigner,
	}
	data, err := state.Encode()
	if err != nil {
		return err
	}
	if existing != nil && len(existing.Data) > 0 {
		return ic.UpdateData(tswapKey, data)
	}
	return ic.CreateWithData(owner, tswapKey, data, programs.TSwapProgramID)
}
