package solanaClient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var ErrAccountNotFound = errors.New("account not found")

const (
	blockhashNotFoundErr = "BlockhashNotFound"
	blockhashNotFoundMsg = "Blockhash not found"
)

// StaleBlockhashError means the transaction was built on a blockhash the cluster no longer
// accepts. Rebuilding on a fresh blockhash and resubmitting is safe.
type StaleBlockhashError struct {
	Blockhash solana.Hash
	Reason    string
	Err       error
}

func (e *StaleBlockhashError) Error() string {
	if e.Blockhash.IsZero() {
		return fmt.Sprintf("stale blockhash: %s", e.Reason)
	}
	return fmt.Sprintf("stale blockhash %s: %s", e.Blockhash, e.Reason)
}

func (e *StaleBlockhashError) Unwrap() error {
	return e.Err
}

// OnChainRejection is a transaction the cluster executed, in simulation or for real, and
// rejected. It is never retried.
type OnChainRejection struct {
	Signature solana.Signature
	// TxErr is the raw transaction error as reported over JSON-RPC.
	TxErr interface{}
	Logs  []string
	// InstructionIndex is -1 when the error is not tied to an instruction.
	InstructionIndex int
	Code             *uint32
	Err              error
}

func (e *OnChainRejection) Error() string {
	var sb strings.Builder
	sb.WriteString("transaction rejected")
	if !e.Signature.IsZero() {
		sb.WriteString(" (")
		sb.WriteString(e.Signature.String())
		sb.WriteString(")")
	}
	if e.Code != nil {
		fmt.Fprintf(&sb, ": instruction %d failed with custom program error 0x%x", e.InstructionIndex, *e.Code)
	} else if e.TxErr != nil {
		fmt.Fprintf(&sb, ": %v", e.TxErr)
	} else if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *OnChainRejection) Unwrap() error {
	return e.Err
}

// CustomCode returns the custom program error code, if the failing instruction raised one.
func (e *OnChainRejection) CustomCode() (uint32, bool) {
	if e.Code == nil {
		return 0, false
	}
	return *e.Code, true
}

// NewOnChainRejection builds a rejection from a raw transaction error, decoding the failing
// instruction and custom code when present.
func NewOnChainRejection(sig solana.Signature, txErr interface{}, logs []string) *OnChainRejection {
	idx, code := parseInstructionError(txErr)
	return &OnChainRejection{
		Signature:        sig,
		TxErr:            txErr,
		Logs:             logs,
		InstructionIndex: idx,
		Code:             code,
	}
}

// ClassifyError maps a raw RPC error to *StaleBlockhashError or *OnChainRejection where
// possible and returns anything else unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var stale *StaleBlockhashError
	var rejection *OnChainRejection
	if errors.As(err, &stale) || errors.As(err, &rejection) {
		return err
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		txErr, logs := parseSimulationData(rpcErr.Data)
		if IsBlockhashNotFound(txErr) || strings.Contains(rpcErr.Message, blockhashNotFoundMsg) {
			return &StaleBlockhashError{Reason: rpcErr.Message, Err: err}
		}
		if txErr != nil {
			r := NewOnChainRejection(solana.Signature{}, txErr, logs)
			r.Err = err
			return r
		}
		return err
	}

	if strings.Contains(err.Error(), blockhashNotFoundMsg) {
		return &StaleBlockhashError{Reason: err.Error(), Err: err}
	}
	return err
}

// IsBlockhashNotFound reports whether a raw transaction error is the BlockhashNotFound
// variant.
func IsBlockhashNotFound(txErr interface{}) bool {
	s, ok := txErr.(string)
	return ok && s == blockhashNotFoundErr
}

// parseSimulationData pulls the transaction error and logs out of a preflight failure's
// error data.
func parseSimulationData(data interface{}) (interface{}, []string) {
	m, ok := data.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	var logs []string
	if raw, ok := m["logs"].([]interface{}); ok {
		for _, l := range raw {
			if s, ok := l.(string); ok {
				logs = append(logs, s)
			}
		}
	}
	return m["err"], logs
}

// parseInstructionError decodes {"InstructionError": [idx, {"Custom": code}]}.
func parseInstructionError(txErr interface{}) (int, *uint32) {
	m, ok := txErr.(map[string]interface{})
	if !ok {
		return -1, nil
	}
	pair, ok := m["InstructionError"].([]interface{})
	if !ok || len(pair) != 2 {
		return -1, nil
	}
	idx, ok := toUint64(pair[0])
	if !ok {
		return -1, nil
	}
	inner, ok := pair[1].(map[string]interface{})
	if !ok {
		return int(idx), nil
	}
	code, ok := toUint64(inner["Custom"])
	if !ok {
		return int(idx), nil
	}
	c := uint32(code)
	return int(idx), &c
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case uint64:
		return n, true
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	default:
		return 0, false
	}
}
