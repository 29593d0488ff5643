// Package authRules builds mpl-token-auth-rules rule sets and the CreateOrUpdate
// instruction that stores them.
package authRules

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/programs"
)

const (
	InstructionCreateOrUpdate uint8 = 0

	LibVersionV2 uint32 = 2

	// rule set names, operation names and rule field names are fixed 32-byte strings
	fixedStringSize = 32
)

type RuleType uint32

const (
	RuleTypeAny              RuleType = 4
	RuleTypeNot              RuleType = 6
	RuleTypePass             RuleType = 7
	RuleTypeProgramOwnedList RuleType = 10
)

// RuleV2 is one node of a V2 rule tree.
type RuleV2 interface {
	Type() RuleType
}

type PassV2 struct{}

type NotV2 struct {
	Rule RuleV2
}

type AnyV2 struct {
	Rules []RuleV2
}

// ProgramOwnedListV2 passes when the account named Field is owned by one of Programs.
type ProgramOwnedListV2 struct {
	Field    string
	Programs []solana.PublicKey
}

func (PassV2) Type() RuleType             { return RuleTypePass }
func (NotV2) Type() RuleType              { return RuleTypeNot }
func (AnyV2) Type() RuleType              { return RuleTypeAny }
func (ProgramOwnedListV2) Type() RuleType { return RuleTypeProgramOwnedList }

// Operation pairs an operation name such as "Transfer:Owner" with its rule.
type Operation struct {
	Name string
	Rule RuleV2
}

type RuleSetRevisionV2 struct {
	Name       string
	Owner      solana.PublicKey
	Operations []Operation
}

// FindRuleSetPda derives the rule set account of owner with the given name.
func FindRuleSetPda(owner solana.PublicKey, name string) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte("rule_set"), owner[:], []byte(name)},
		programs.TokenAuthRulesProgramID,
	)
}

// Serialize renders the revision in the V2 wire format: a header, the owner, the fixed
// name, every operation name, then every rule.
func (r RuleSetRevisionV2) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint32(LibVersionV2, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(uint32(len(r.Operations)), bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(r.Owner[:], false); err != nil {
		return nil, err
	}
	if err := writeFixedString(enc, r.Name); err != nil {
		return nil, err
	}
	for _, op := range r.Operations {
		if err := writeFixedString(enc, op.Name); err != nil {
			return nil, err
		}
	}
	for _, op := range r.Operations {
		rule, err := SerializeRule(op.Rule)
		if err != nil {
			return nil, fmt.Errorf("operation %q: %w", op.Name, err)
		}
		if err := enc.WriteBytes(rule, false); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// SerializeRule renders one rule as header (type u32, body length u32) plus body.
func SerializeRule(rule RuleV2) ([]byte, error) {
	body := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(body)

	switch r := rule.(type) {
	case PassV2:
	case NotV2:
		inner, err := SerializeRule(r.Rule)
		if err != nil {
			return nil, err
		}
		if err := enc.WriteBytes(inner, false); err != nil {
			return nil, err
		}
	case AnyV2:
		if err := enc.WriteUint64(uint64(len(r.Rules)), bin.LE); err != nil {
			return nil, err
		}
		for _, child := range r.Rules {
			inner, err := SerializeRule(child)
			if err != nil {
				return nil, err
			}
			if err := enc.WriteBytes(inner, false); err != nil {
				return nil, err
			}
		}
	case ProgramOwnedListV2:
		if err := writeFixedString(enc, r.Field); err != nil {
			return nil, err
		}
		for _, p := range r.Programs {
			if err := enc.WriteBytes(p[:], false); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported rule %T", rule)
	}

	out := new(bytes.Buffer)
	header := bin.NewBorshEncoder(out)
	if err := header.WriteUint32(uint32(rule.Type()), bin.LE); err != nil {
		return nil, err
	}
	if err := header.WriteUint32(uint32(body.Len()), bin.LE); err != nil {
		return nil, err
	}
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func writeFixedString(enc *bin.Encoder, s string) error {
	if len(s) > fixedStringSize {
		return fmt.Errorf("%q is longer than %d bytes", s, fixedStringSize)
	}
	b := make([]byte, fixedStringSize)
	copy(b, s)
	return enc.WriteBytes(b, false)
}

// NewCreateOrUpdateInstruction stores revision at its rule set PDA, paid for by the
// revision owner.
func NewCreateOrUpdateInstruction(revision RuleSetRevisionV2) (solana.Instruction, solana.PublicKey, error) {
	ruleSet, _, err := FindRuleSetPda(revision.Owner, revision.Name)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	serialized, err := revision.Serialize()
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	// CreateOrUpdateArgs::V1 { serialized_rule_set }
	data, err := programs.EncodeData([]byte{InstructionCreateOrUpdate, 0}, func(enc *bin.Encoder) error {
		return enc.WriteBytes(serialized, true)
	})
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(revision.Owner).WRITE().SIGNER(),
		solana.Meta(ruleSet).WRITE(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(programs.TokenAuthRulesProgramID),
	}
	return solana.NewInstruction(programs.TokenAuthRulesProgramID, metas, data), ruleSet, nil
}

// DecodeCreateOrUpdate returns the serialized rule set carried by a CreateOrUpdate
// instruction.
func DecodeCreateOrUpdate(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != InstructionCreateOrUpdate || data[1] != 0 {
		return nil, fmt.Errorf("not a CreateOrUpdate V1 instruction")
	}
	dec := bin.NewBorshDecoder(data[2:])
	return dec.ReadByteSlice()
}
