package fixtures

import (
	"errors"

	"github.com/tensor-hq/tensor-tests-go/pkg/clients/solanaClient"
)

// Custom program error codes tests assert on.
const (
	ErrSysAlreadyInUse uint32 = 0x0
	ErrSysInsufFund    uint32 = 0x1

	ErrAnchorAccNotInit    uint32 = 0xbc4
	ErrAnchorHasOne        uint32 = 0x7d1
	ErrAnchorSeedsViolated uint32 = 0x7d6

	// ErrConcMerkleTree is raised by account compression when a proof does not match.
	ErrConcMerkleTree uint32 = 0x1771

	ErrWhitelistFailedVoc    uint32 = 0x1776
	ErrWhitelistBadMintProof uint32 = 0x1788

	ErrVipersIntOverflow uint32 = 0x44f
)

// IsProgramError reports whether err is an on-chain rejection carrying the custom code.
func IsProgramError(err error, code uint32) bool {
	var rejection *solanaClient.OnChainRejection
	if !errors.As(err, &rejection) {
		return false
	}
	got, ok := rejection.CustomCode()
	return ok && got == code
}

// IsAccountNotFound reports whether err means the fetched account does not exist.
func IsAccountNotFound(err error) bool {
	return errors.Is(err, solanaClient.ErrAccountNotFound)
}
