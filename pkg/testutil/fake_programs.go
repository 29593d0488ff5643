package testutil

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/tensor-hq/tensor-tests-go/pkg/clients/solanaClient"
)

const (
	TokenAccountSize = 165
	MintAccountSize  = 82
)

// InvocationContext is the view a ProgramHandler gets of one instruction.
type InvocationContext struct {
	Program  solana.PublicKey
	Accounts []*solana.AccountMeta
	Data     []byte

	signers map[solana.PublicKey]bool
	state   map[solana.PublicKey]*solanaClient.AccountInfo
	logs    *[]string
	rentFn  func(uint64) uint64
}

func (ic *InvocationContext) Log(format string, args ...interface{}) {
	*ic.logs = append(*ic.logs, "Program log: "+fmt.Sprintf(format, args...))
}

// Key returns the i-th instruction account or an error if it is missing.
func (ic *InvocationContext) Key(i int) (solana.PublicKey, error) {
	if i >= len(ic.Accounts) {
		return solana.PublicKey{}, fmt.Errorf("NotEnoughAccountKeys: want index %d, have %d", i, len(ic.Accounts))
	}
	return ic.Accounts[i].PublicKey, nil
}

func (ic *InvocationContext) IsSigner(key solana.PublicKey) bool {
	return ic.signers[key]
}

// Account returns a copy of the staged account, nil if it does not exist.
func (ic *InvocationContext) Account(key solana.PublicKey) *solanaClient.AccountInfo {
	acc, ok := ic.state[key]
	if !ok {
		return nil
	}
	return cloneAccount(acc)
}

func (ic *InvocationContext) SetAccount(key solana.PublicKey, acc *solanaClient.AccountInfo) {
	ic.state[key] = cloneAccount(acc)
}

func (ic *InvocationContext) RentExempt(dataSize uint64) uint64 {
	return ic.rentFn(dataSize)
}

// Transfer moves lamports between two accounts; from must sign.
func (ic *InvocationContext) Transfer(from, to solana.PublicKey, lamports uint64) error {
	if !ic.IsSigner(from) {
		return fmt.Errorf("MissingRequiredSignature: %s", from)
	}
	src := ic.Account(from)
	if src == nil || src.Lamports < lamports {
		return &ProgramError{Code: 1, Msg: fmt.Sprintf("insufficient lamports in %s", from)}
	}
	src.Lamports -= lamports
	dst := ic.Account(to)
	if dst == nil {
		dst = &solanaClient.AccountInfo{Owner: solana.SystemProgramID}
	}
	dst.Lamports += lamports
	ic.SetAccount(from, src)
	ic.SetAccount(to, dst)
	return nil
}

// CreateWithData allocates a rent-exempt account holding data, funded by payer.
func (ic *InvocationContext) CreateWithData(payer, key solana.PublicKey, data []byte, owner solana.PublicKey) error {
	if err := ic.CreateAccount(payer, key, ic.RentExempt(uint64(len(data))), uint64(len(data)), owner); err != nil {
		return err
	}
	acc := ic.Account(key)
	acc.Data = append([]byte(nil), data...)
	ic.SetAccount(key, acc)
	return nil
}

// UpdateData replaces the data of an existing account, keeping its owner and lamports.
func (ic *InvocationContext) UpdateData(key solana.PublicKey, data []byte) error {
	acc := ic.Account(key)
	if acc == nil {
		return fmt.Errorf("AccountNotFound: %s", key)
	}
	acc.Data = append([]byte(nil), data...)
	ic.SetAccount(key, acc)
	return nil
}

// RequireSigner fails with MissingRequiredSignature unless key signed the transaction.
func (ic *InvocationContext) RequireSigner(key solana.PublicKey) error {
	if !ic.IsSigner(key) {
		return fmt.Errorf("MissingRequiredSignature: %s", key)
	}
	return nil
}

// CreateAccount allocates a new account funded by payer.
func (ic *InvocationContext) CreateAccount(payer, key solana.PublicKey, lamports, space uint64, owner solana.PublicKey) error {
	if existing := ic.Account(key); existing != nil && (len(existing.Data) > 0 || !existing.Owner.Equals(solana.SystemProgramID)) {
		return &ProgramError{Code: 0, Msg: fmt.Sprintf("account %s already in use", key)}
	}
	if err := ic.Transfer(payer, key, lamports); err != nil {
		return err
	}
	acc := ic.Account(key)
	acc.Owner = owner
	acc.Data = make([]byte, space)
	ic.SetAccount(key, acc)
	return nil
}

func registerBuiltinPrograms(f *FakeCluster) {
	f.programs[solana.SystemProgramID] = systemProgram
	f.programs[solana.TokenProgramID] = tokenProgram
	f.programs[solana.SPLAssociatedTokenAccountProgramID] = associatedTokenProgram
	f.programs[solana.ComputeBudget] = func(*InvocationContext) error { return nil }
}

const (
	systemCreateAccount uint32 = 0
	systemTransfer      uint32 = 2
)

func systemProgram(ic *InvocationContext) error {
	dec := bin.NewBinDecoder(ic.Data)
	kind, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	switch kind {
	case systemCreateAccount:
		lamports, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return err
		}
		space, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return err
		}
		ownerBytes, err := dec.ReadNBytes(32)
		if err != nil {
			return err
		}
		payer, err := ic.Key(0)
		if err != nil {
			return err
		}
		newAccount, err := ic.Key(1)
		if err != nil {
			return err
		}
		if !ic.IsSigner(newAccount) {
			return fmt.Errorf("MissingRequiredSignature: %s", newAccount)
		}
		return ic.CreateAccount(payer, newAccount, lamports, space, solana.PublicKeyFromBytes(ownerBytes))
	case systemTransfer:
		lamports, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return err
		}
		from, err := ic.Key(0)
		if err != nil {
			return err
		}
		to, err := ic.Key(1)
		if err != nil {
			return err
		}
		return ic.Transfer(from, to, lamports)
	default:
		return fmt.Errorf("InvalidInstructionData: unsupported system instruction %d", kind)
	}
}

const (
	tokenInitializeMint  byte = 0
	tokenTransfer        byte = 3
	tokenMintTo          byte = 7
	tokenInitializeMint2 byte = 20
)

func tokenProgram(ic *InvocationContext) error {
	if len(ic.Data) == 0 {
		return fmt.Errorf("InvalidInstructionData: empty token instruction")
	}
	switch ic.Data[0] {
	case tokenInitializeMint, tokenInitializeMint2:
		if len(ic.Data) < 35 {
			return fmt.Errorf("InvalidInstructionData: short initialize mint")
		}
		mintKey, err := ic.Key(0)
		if err != nil {
			return err
		}
		mint := ic.Account(mintKey)
		if mint == nil || len(mint.Data) != MintAccountSize || !mint.Owner.Equals(solana.TokenProgramID) {
			return &ProgramError{Code: 0, Msg: fmt.Sprintf("mint %s not allocated", mintKey)}
		}
		binary.LittleEndian.PutUint32(mint.Data[0:4], 1)
		copy(mint.Data[4:36], ic.Data[2:34])
		mint.Data[44] = ic.Data[1]
		mint.Data[45] = 1
		ic.SetAccount(mintKey, mint)
		return nil
	case tokenMintTo:
		amount, err := readAmount(ic.Data)
		if err != nil {
			return err
		}
		mintKey, err := ic.Key(0)
		if err != nil {
			return err
		}
		destKey, err := ic.Key(1)
		if err != nil {
			return err
		}
		authority, err := ic.Key(2)
		if err != nil {
			return err
		}
		mint := ic.Account(mintKey)
		if mint == nil || len(mint.Data) != MintAccountSize || mint.Data[45] != 1 {
			return &ProgramError{Code: 2, Msg: "invalid mint"}
		}
		if !ic.IsSigner(authority) || !solana.PublicKeyFromBytes(mint.Data[4:36]).Equals(authority) {
			return &ProgramError{Code: 4, Msg: "owner does not match"}
		}
		dest := ic.Account(destKey)
		if dest == nil || len(dest.Data) != TokenAccountSize {
			return &ProgramError{Code: 3, Msg: "invalid token account"}
		}
		supply := binary.LittleEndian.Uint64(mint.Data[36:44])
		binary.LittleEndian.PutUint64(mint.Data[36:44], supply+amount)
		balance := binary.LittleEndian.Uint64(dest.Data[64:72])
		binary.LittleEndian.PutUint64(dest.Data[64:72], balance+amount)
		ic.SetAccount(mintKey, mint)
		ic.SetAccount(destKey, dest)
		return nil
	case tokenTransfer:
		amount, err := readAmount(ic.Data)
		if err != nil {
			return err
		}
		srcKey, err := ic.Key(0)
		if err != nil {
			return err
		}
		destKey, err := ic.Key(1)
		if err != nil {
			return err
		}
		owner, err := ic.Key(2)
		if err != nil {
			return err
		}
		src := ic.Account(srcKey)
		dest := ic.Account(destKey)
		if src == nil || dest == nil || len(src.Data) != TokenAccountSize || len(dest.Data) != TokenAccountSize {
			return &ProgramError{Code: 3, Msg: "invalid token account"}
		}
		if !ic.IsSigner(owner) || !solana.PublicKeyFromBytes(src.Data[32:64]).Equals(owner) {
			return &ProgramError{Code: 4, Msg: "owner does not match"}
		}
		balance := binary.LittleEndian.Uint64(src.Data[64:72])
		if balance < amount {
			return &ProgramError{Code: 1, Msg: "insufficient funds"}
		}
		binary.LittleEndian.PutUint64(src.Data[64:72], balance-amount)
		binary.LittleEndian.PutUint64(dest.Data[64:72], binary.LittleEndian.Uint64(dest.Data[64:72])+amount)
		ic.SetAccount(srcKey, src)
		ic.SetAccount(destKey, dest)
		return nil
	default:
		return fmt.Errorf("InvalidInstructionData: unsupported token instruction %d", ic.Data[0])
	}
}

func readAmount(data []byte) (uint64, error) {
	if len(data) < 9 {
		return 0, fmt.Errorf("InvalidInstructionData: short amount")
	}
	return binary.LittleEndian.Uint64(data[1:9]), nil
}

// associatedTokenProgram handles Create and CreateIdempotent.
func associatedTokenProgram(ic *InvocationContext) error {
	payer, err := ic.Key(0)
	if err != nil {
		return err
	}
	ata, err := ic.Key(1)
	if err != nil {
		return err
	}
	owner, err := ic.Key(2)
	if err != nil {
		return err
	}
	mint, err := ic.Key(3)
	if err != nil {
		return err
	}

	expected, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return err
	}
	if !expected.Equals(ata) {
		return &ProgramError{Code: 0, Msg: fmt.Sprintf("associated address mismatch: %s != %s", ata, expected)}
	}

	if existing := ic.Account(ata); existing != nil && len(existing.Data) > 0 {
		if len(ic.Data) > 0 && ic.Data[0] == 1 {
			return nil
		}
		return &ProgramError{Code: 0, Msg: fmt.Sprintf("account %s already in use", ata)}
	}

	if err := ic.Transfer(payer, ata, ic.RentExempt(TokenAccountSize)); err != nil {
		return err
	}
	acc := ic.Account(ata)
	acc.Owner = solana.TokenProgramID
	acc.Data = tokenAccountData(mint, owner, 0)
	ic.SetAccount(ata, acc)
	return nil
}

func tokenAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, TokenAccountSize)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1
	return data
}

func mintAccountData(authority solana.PublicKey, decimals uint8) []byte {
	data := make([]byte, MintAccountSize)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	copy(data[4:36], authority[:])
	data[44] = decimals
	data[45] = 1
	return data
}
