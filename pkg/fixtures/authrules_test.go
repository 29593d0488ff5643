package fixtures

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/tensor-hq/tensor-tests-go/pkg/config"
	"github.com/tensor-hq/tensor-tests-go/pkg/programs/authRules"
	"github.com/tensor-hq/tensor-tests-go/pkg/util"
)

func Test_DefaultRuleSet(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	blocked := []solana.PublicKey{solana.NewWallet().PublicKey()}
	opName := func(op authRules.Operation) string { return op.Name }

	t.Run("Owner transfers only", func(t *testing.T) {
		rs := DefaultRuleSet(owner, "", blocked, false)
		require.Equal(t, DefaultRuleSetName, rs.Name)
		require.Equal(t, owner, rs.Owner)
		require.Len(t, rs.Operations, 1+len(passOperations))
		require.Equal(t, "Transfer:Owner", rs.Operations[0].Name)
		require.Equal(t, passOperations, util.Map(rs.Operations[1:], opName))

		want := authRules.NotV2{Rule: authRules.AnyV2{Rules: []authRules.RuleV2{
			authRules.ProgramOwnedListV2{Field: "Source", Programs: blocked},
			authRules.ProgramOwnedListV2{Field: "Destination", Programs: blocked},
			authRules.ProgramOwnedListV2{Field: "Authority", Programs: blocked},
		}}}
		require.Equal(t, want, rs.Operations[0].Rule)
		for _, op := range rs.Operations[1:] {
			require.Equal(t, authRules.PassV2{}, op.Rule)
		}
	})

	t.Run("With delegates", func(t *testing.T) {
		rs := DefaultRuleSet(owner, "custom", nil, true)
		require.Equal(t, "custom", rs.Name)
		require.Equal(t,
			[]string{"Transfer:Owner", "Delegate:Transfer", "Transfer:SaleDelegate", "Transfer:TransferDelegate"},
			util.Map(rs.Operations[:4], opName),
		)
		require.Equal(t,
			authRules.NotV2{Rule: authRules.AnyV2{Rules: []authRules.RuleV2{authRules.ProgramOwnedListV2{Field: "Delegate"}}}},
			rs.Operations[1].Rule,
		)
		require.Len(t, rs.Operations, 4+len(passOperations))
	})
}

func Test_CreateDefaultRuleSet(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEnv(t)
	owner := fundedWallet(t, e)
	blocked := []solana.PublicKey{solana.NewWallet().PublicKey()}

	ruleSet, err := e.CreateDefaultRuleSet(ctx, RuleSetArgs{Owner: owner, Blocked: blocked, EnableDelegate: true})
	require.NoError(t, err)
	expected, _, err := authRules.FindRuleSetPda(owner.PublicKey(), DefaultRuleSetName)
	require.NoError(t, err)
	require.Equal(t, expected, ruleSet)

	info, err := e.Client.GetAccountInfo(ctx, ruleSet, config.CommitmentConfirmed)
	require.NoError(t, err)
	want, err := DefaultRuleSet(owner.PublicKey(), DefaultRuleSetName, blocked, true).Serialize()
	require.NoError(t, err)
	require.Equal(t, want, info.Data)

	t.Run("pNFTs mint against the rule set", func(t *testing.T) {
		funded, err := e.CreateAndFundAta(ctx, CreateAndFundAtaArgs{Owner: owner, Programmable: true, RuleSet: &ruleSet})
		require.NoError(t, err)
		require.NoError(t, e.ExpectHasNft(ctx, funded.Mint, owner.PublicKey()))
	})
}
