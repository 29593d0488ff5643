package fixtures

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs/authRules"
)

const DefaultRuleSetName = "a"

var passOperations = []string{
	"Transfer:WalletToWallet",
	"Transfer:MigrationDelegate",
	"Delegate:LockedTransfer",
	"Delegate:Update",
	"Delegate:Utility",
	"Delegate:Staking",
	"Delegate:Authority",
	"Delegate:Collection",
	"Delegate:Use",
	"Delegate:Sale",
}

type RuleSetArgs struct {
	Owner solana.PrivateKey
	// Name defaults to DefaultRuleSetName.
	Name string
	// Blocked programs may not own any account named in a deny list.
	Blocked        []solana.PublicKey
	EnableDelegate bool
}

func denyList(blocked []solana.PublicKey, fields ...string) authRules.RuleV2 {
	rules := make([]authRules.RuleV2, len(fields))
	for i, f := range fields {
		rules[i] = authRules.ProgramOwnedListV2{Field: f, Programs: blocked}
	}
	return authRules.NotV2{Rule: authRules.AnyV2{Rules: rules}}
}

// DefaultRuleSet is the transfer rule set pNFT fixtures are minted against: owner
// transfers (and, with EnableDelegate, delegated ones) are refused when a blocked program
// owns the source, destination or authority; every other operation passes.
func DefaultRuleSet(owner solana.PublicKey, name string, blocked []solana.PublicKey, enableDelegate bool) authRules.RuleSetRevisionV2 {
	if name == "" {
		name = DefaultRuleSetName
	}
	ops := []authRules.Operation{
		{Name: "Transfer:Owner", Rule: denyList(blocked, "Source", "Destination", "Authority")},
	}
	if enableDelegate {
		ops = append(ops,
			authRules.Operation{Name: "Delegate:Transfer", Rule: denyList(blocked, "Delegate")},
			authRules.Operation{Name: "Transfer:SaleDelegate", Rule: denyList(blocked, "Source", "Destination", "Authority")},
			authRules.Operation{Name: "Transfer:TransferDelegate", Rule: denyList(blocked, "Source", "Destination", "Authority")},
		)
	}
	for _, name := range passOperations {
		ops = append(ops, authRules.Operation{Name: name, Rule: authRules.PassV2{}})
	}
	return authRules.RuleSetRevisionV2{Name: name, Owner: owner, Operations: ops}
}

// CreateDefaultRuleSet stores DefaultRuleSet under the owner and returns its address.
func (e *Env) CreateDefaultRuleSet(ctx context.Context, args RuleSetArgs) (solana.PublicKey, error) {
	revision := DefaultRuleSet(args.Owner.PublicKey(), args.Name, args.Blocked, args.EnableDelegate)
	ix, ruleSet, err := authRules.NewCreateOrUpdateInstruction(revision)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if _, err := e.send(ctx, args.Owner, []solana.Instruction{ix}); err != nil {
		return solana.PublicKey{}, errors.Wrapf(err, "failed to create rule set %q", revision.Name)
	}
	e.Logger.Sugar().Debugw("Created rule set", "rule_set", ruleSet.String(), "operations", len(revision.Operations))
	return ruleSet, nil
}
