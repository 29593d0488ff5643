package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"

	"github.com/tensor-hq/tensor-tests-go/pkg/clients/solanaClient"
	"github.com/tensor-hq/tensor-tests-go/pkg/config"
)

const (
	// DefaultBlockhashValidity matches the cluster's 150 block expiry window.
	DefaultBlockhashValidity = 150
	LamportsPerSignature     = 5000
)

// ProgramHandler executes one instruction against the staged cluster state. Returning a
// *ProgramError fails the transaction with a custom program error code.
type ProgramHandler func(ic *InvocationContext) error

// ProgramError is a custom program error raised by a fake program.
type ProgramError struct {
	Code uint32
	Msg  string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x (%s)", e.Code, e.Msg)
}

type landedTx struct {
	tx     *solana.Transaction
	slot   uint64
	txErr  interface{}
	logs   []string
	landed bool
}

// FakeCluster is an in-memory IClient. It verifies signatures, tracks blockhash expiry by
// block height, executes instructions through registered program handlers and supports
// injected failures, which is enough to exercise the submission helper and the fixture
// builders without a validator.
//
// A FakeCluster is safe for concurrent use; transactions execute one at a time.
type FakeCluster struct {
	mu     sync.Mutex
	logger *zap.Logger

	accounts    map[solana.PublicKey]*solanaClient.AccountInfo
	programs    map[solana.PublicKey]ProgramHandler
	blockhashes map[solana.Hash]uint64
	txs         map[solana.Signature]*landedTx
	order       []solana.Signature

	height    uint64
	slot      uint64
	hashNonce uint64

	sendErrors []error
	dropSends  int

	sendCount      int
	blockhashCount int

	// HeightStep is how far the block height advances on every GetBlockHeight call.
	HeightStep uint64
	// BlockhashValidity is the number of blocks a blockhash stays usable.
	BlockhashValidity uint64
	// LandedCommitment is the status reported for landed transactions.
	LandedCommitment config.Commitment
	// AllowUnknownPrograms makes instructions for unregistered programs succeed as no-ops.
	AllowUnknownPrograms bool
	// RentPerByte scales GetMinimumBalanceForRentExemption.
	RentPerByte uint64
}

func NewFakeCluster(logger *zap.Logger) *FakeCluster {
	f := &FakeCluster{
		logger:               logger,
		accounts:             make(map[solana.PublicKey]*solanaClient.AccountInfo),
		programs:             make(map[solana.PublicKey]ProgramHandler),
		blockhashes:          make(map[solana.Hash]uint64),
		txs:                  make(map[solana.Signature]*landedTx),
		height:               1,
		slot:                 1,
		HeightStep:           1,
		BlockhashValidity:    DefaultBlockhashValidity,
		LandedCommitment:     config.CommitmentConfirmed,
		AllowUnknownPrograms: true,
		RentPerByte:          6960,
	}
	registerBuiltinPrograms(f)
	return f
}

// RegisterProgram installs or replaces the handler for a program id.
func (f *FakeCluster) RegisterProgram(programID solana.PublicKey, handler ProgramHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.programs[programID] = handler
}

// Fund credits lamports to an account, creating a system-owned account if needed.
func (f *FakeCluster) Fund(key solana.PublicKey, lamports uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc := f.accounts[key]
	if acc == nil {
		acc = &solanaClient.AccountInfo{Owner: solana.SystemProgramID}
	} else {
		acc = cloneAccount(acc)
	}
	acc.Lamports += lamports
	f.accounts[key] = acc
}

func (f *FakeCluster) SetAccount(key solana.PublicKey, info *solanaClient.AccountInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[key] = cloneAccount(info)
}

// InjectSendErrors queues errors returned, in order, by the next SendTransaction calls.
// Errors pass through solanaClient.ClassifyError like real RPC errors do.
func (f *FakeCluster) InjectSendErrors(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErrors = append(f.sendErrors, errs...)
}

// DropNextSends makes the next n submissions return a signature that never lands.
func (f *FakeCluster) DropNextSends(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropSends += n
}

// ExpireBlockhashes invalidates every blockhash handed out so far.
func (f *FakeCluster) ExpireBlockhashes() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockhashes = make(map[solana.Hash]uint64)
}

func (f *FakeCluster) SendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCount
}

func (f *FakeCluster) BlockhashCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blockhashCount
}

// Transactions returns the landed transactions in submission order.
func (f *FakeCluster) Transactions() []*solana.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*solana.Transaction, 0, len(f.order))
	for _, sig := range f.order {
		if t := f.txs[sig]; t.landed {
			out = append(out, t.tx)
		}
	}
	return out
}

func (f *FakeCluster) GetLatestBlockhash(_ context.Context, _ config.Commitment) (*solanaClient.Blockhash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockhashCount++
	f.hashNonce++

	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf, f.hashNonce)
	binary.LittleEndian.PutUint64(buf[8:], f.height)
	hash := solana.Hash(sha256.Sum256(buf))

	lastValid := f.height + f.BlockhashValidity
	f.blockhashes[hash] = lastValid
	return &solanaClient.Blockhash{Hash: hash, LastValidBlockHeight: lastValid}, nil
}

func (f *FakeCluster) SendTransaction(_ context.Context, tx *solana.Transaction, opts solanaClient.SendOpts) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCount++

	if len(f.sendErrors) > 0 {
		err := f.sendErrors[0]
		f.sendErrors = f.sendErrors[1:]
		return solana.Signature{}, solanaClient.ClassifyError(err)
	}

	if len(tx.Signatures) == 0 {
		return solana.Signature{}, fmt.Errorf("transaction is not signed")
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, &jsonrpc.RPCError{Code: -32003, Message: fmt.Sprintf("Transaction signature verification failure: %v", err)}
	}

	lastValid, ok := f.blockhashes[tx.Message.RecentBlockhash]
	if !ok || f.height > lastValid {
		return solana.Signature{}, solanaClient.ClassifyError(simulationError("BlockhashNotFound", nil, "Blockhash not found"))
	}

	sig := tx.Signatures[0]
	if f.dropSends > 0 {
		f.dropSends--
		f.txs[sig] = &landedTx{tx: tx}
		f.order = append(f.order, sig)
		return sig, nil
	}

	staged, txErr, logs := f.execute(tx)
	if txErr != nil && !opts.SkipPreflight {
		return solana.Signature{}, solanaClient.ClassifyError(simulationError(txErr, logs, "Transaction simulation failed"))
	}

	f.slot++
	if txErr == nil {
		f.accounts = staged
	} else {
		// failed transactions still pay the fee
		f.chargeFee(f.accounts, tx)
	}
	f.txs[sig] = &landedTx{tx: tx, slot: f.slot, txErr: txErr, logs: logs, landed: true}
	f.order = append(f.order, sig)
	return sig, nil
}

func (f *FakeCluster) GetSignatureStatus(_ context.Context, sig solana.Signature) (*solanaClient.SignatureStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txs[sig]
	if !ok || !t.landed {
		return nil, nil
	}
	return &solanaClient.SignatureStatus{
		Slot:       t.slot,
		Commitment: f.LandedCommitment,
		Err:        t.txErr,
	}, nil
}

func (f *FakeCluster) GetBlockHeight(_ context.Context, _ config.Commitment) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.height += f.HeightStep
	return f.height, nil
}

func (f *FakeCluster) GetTransactionLogs(_ context.Context, sig solana.Signature) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txs[sig]
	if !ok || !t.landed {
		return nil, fmt.Errorf("transaction %s not found", sig)
	}
	return append([]string(nil), t.logs...), nil
}

func (f *FakeCluster) GetAccountInfo(_ context.Context, account solana.PublicKey, _ config.Commitment) (*solanaClient.AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[account]
	if !ok {
		return nil, fmt.Errorf("%w: %s", solanaClient.ErrAccountNotFound, account)
	}
	return cloneAccount(acc), nil
}

func (f *FakeCluster) GetBalance(_ context.Context, account solana.PublicKey, _ config.Commitment) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if acc, ok := f.accounts[account]; ok {
		return acc.Lamports, nil
	}
	return 0, nil
}

func (f *FakeCluster) GetMinimumBalanceForRentExemption(_ context.Context, dataSize uint64) (uint64, error) {
	// 128 bytes of account metadata are charged on top of the data
	return (dataSize + 128) * f.RentPerByte, nil
}

func (f *FakeCluster) RequestAirdrop(_ context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc := f.accounts[account]
	if acc == nil {
		acc = &solanaClient.AccountInfo{Owner: solana.SystemProgramID}
	} else {
		acc = cloneAccount(acc)
	}
	acc.Lamports += lamports
	f.accounts[account] = acc

	f.hashNonce++
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, f.hashNonce)
	digest := sha256.Sum256(append([]byte("airdrop"), seed...))
	var sig solana.Signature
	copy(sig[:], digest[:])
	copy(sig[32:], digest[:])

	f.slot++
	f.txs[sig] = &landedTx{slot: f.slot, landed: true}
	return sig, nil
}

func (f *FakeCluster) GetTokenAccountBalance(_ context.Context, account solana.PublicKey, _ config.Commitment) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[account]
	if !ok || !acc.Owner.Equals(solana.TokenProgramID) || len(acc.Data) < TokenAccountSize {
		return 0, fmt.Errorf("%w: token account %s", solanaClient.ErrAccountNotFound, account)
	}
	return binary.LittleEndian.Uint64(acc.Data[64:72]), nil
}

func (f *FakeCluster) GetAddressLookupTable(_ context.Context, table solana.PublicKey) (solana.PublicKeySlice, error) {
	return nil, fmt.Errorf("%w: lookup table %s", solanaClient.ErrAccountNotFound, table)
}

// execute runs every instruction against a copy of the account set. Callers hold f.mu.
func (f *FakeCluster) execute(tx *solana.Transaction) (map[solana.PublicKey]*solanaClient.AccountInfo, interface{}, []string) {
	staged := make(map[solana.PublicKey]*solanaClient.AccountInfo, len(f.accounts))
	for k, v := range f.accounts {
		staged[k] = v
	}
	var logs []string

	if err := f.chargeFee(staged, tx); err != nil {
		return nil, "InsufficientFundsForFee", logs
	}

	signers := make(map[solana.PublicKey]bool)
	for i := 0; i < int(tx.Message.Header.NumRequiredSignatures) && i < len(tx.Message.AccountKeys); i++ {
		signers[tx.Message.AccountKeys[i]] = true
	}

	for idx, compiled := range tx.Message.Instructions {
		programID, err := tx.ResolveProgramIDIndex(compiled.ProgramIDIndex)
		if err != nil {
			return nil, instructionError(idx, "InvalidAccountIndex"), logs
		}
		metas, err := compiled.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			return nil, instructionError(idx, "InvalidAccountIndex"), logs
		}

		logs = append(logs, fmt.Sprintf("Program %s invoke [1]", programID))
		handler, ok := f.programs[programID]
		if !ok {
			if f.AllowUnknownPrograms {
				logs = append(logs, fmt.Sprintf("Program %s success", programID))
				continue
			}
			logs = append(logs, fmt.Sprintf("Program %s is not deployed", programID))
			return nil, instructionError(idx, "UnsupportedProgramId"), logs
		}

		ic := &InvocationContext{
			Program:  programID,
			Accounts: metas,
			Data:     compiled.Data,
			signers:  signers,
			state:    staged,
			logs:     &logs,
			rentFn:   func(n uint64) uint64 { return (n + 128) * f.RentPerByte },
		}
		if err := handler(ic); err != nil {
			var progErr *ProgramError
			if errors.As(err, &progErr) {
				logs = append(logs,
					fmt.Sprintf("Program log: %s", progErr.Msg),
					fmt.Sprintf("Program %s failed: custom program error: 0x%x", programID, progErr.Code),
				)
				return nil, instructionError(idx, map[string]interface{}{"Custom": float64(progErr.Code)}), logs
			}
			logs = append(logs, fmt.Sprintf("Program %s failed: %v", programID, err))
			return nil, instructionError(idx, err.Error()), logs
		}
		logs = append(logs, fmt.Sprintf("Program %s success", programID))
	}
	return staged, nil, logs
}

func (f *FakeCluster) chargeFee(state map[solana.PublicKey]*solanaClient.AccountInfo, tx *solana.Transaction) error {
	payer := tx.Message.AccountKeys[0]
	fee := uint64(len(tx.Signatures)) * LamportsPerSignature
	acc, ok := state[payer]
	if !ok || acc.Lamports < fee {
		return fmt.Errorf("payer %s cannot pay fee %d", payer, fee)
	}
	acc = cloneAccount(acc)
	acc.Lamports -= fee
	state[payer] = acc
	return nil
}

func instructionError(idx int, inner interface{}) map[string]interface{} {
	return map[string]interface{}{
		"InstructionError": []interface{}{float64(idx), inner},
	}
}

func simulationError(txErr interface{}, logs []string, msg string) *jsonrpc.RPCError {
	rawLogs := make([]interface{}, len(logs))
	for i, l := range logs {
		rawLogs[i] = l
	}
	return &jsonrpc.RPCError{
		Code:    -32002,
		Message: msg,
		Data: map[string]interface{}{
			"err":  txErr,
			"logs": rawLogs,
		},
	}
}

func cloneAccount(acc *solanaClient.AccountInfo) *solanaClient.AccountInfo {
	out := *acc
	out.Data = append([]byte(nil), acc.Data...)
	return &out
}

// Compile-time check to ensure FakeCluster implements IClient
var _ solanaClient.IClient = (*FakeCluster)(nil)
