package txmgr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// Status tracks a transaction from candidate to final outcome on L1.
//
//	Unsubmitted -> Broadcast -> Confirmed
//	                         -> Failed
//	                         -> Indeterminate
type Status uint8

const (
	StatusUnsubmitted Status = iota
	StatusBroadcast
	StatusConfirmed
	StatusFailed
	StatusIndeterminate
)

func (s Status) String() string {
	switch s {
	case StatusUnsubmitted:
		return "unsubmitted"
	case StatusBroadcast:
		return "broadcast"
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	case StatusIndeterminate:
		return "indeterminate"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Final reports whether no further transition can happen.
func (s Status) Final() bool {
	return s == StatusConfirmed || s == StatusFailed
}

var (
	// ErrInsufficientFunds is returned when the sender cannot cover value plus the maximum gas fee.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBroadcastRejected is returned when the node refuses the signed transaction.
	ErrBroadcastRejected = errors.New("broadcast rejected")
	// ErrIndeterminate is returned when the confirmation wait ran out before a receipt was seen.
	// The transaction may still be included; check it before submitting again.
	ErrIndeterminate = errors.New("transaction outcome indeterminate")
	// ErrReverted is returned for an included transaction with a failed receipt.
	ErrReverted = errors.New("transaction reverted")
	// ErrDropped is returned when the nonce of a pending transaction was consumed by another one.
	ErrDropped = errors.New("transaction dropped")
	ErrClosed  = errors.New("transaction manager is closed")
)

// SendError carries how far a send progressed, and the transaction hash once signed.
type SendError struct {
	Status Status
	TxHash common.Hash
	Nonce  uint64
	Err    error
}

func (e *SendError) Error() string {
	if e.TxHash == (common.Hash{}) {
		return fmt.Sprintf("send failed (%s): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("send failed (%s, tx %s): %v", e.Status, e.TxHash, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// StatusOf returns the status recorded in err, StatusConfirmed for a nil error
// and StatusUnsubmitted for errors raised before anything was sent.
func StatusOf(err error) Status {
	if err == nil {
		return StatusConfirmed
	}
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Status
	}
	return StatusUnsubmitted
}

// insufficientFundsMsgs are the txpool rejections for an underfunded sender.
var insufficientFundsMsgs = []string{
	"insufficient funds",
	"insufficient balance",
}

// classifyBroadcastError decides whether a failed eth_sendRawTransaction was
// refused by the node, or whether the outcome is unknown because the request
// itself failed in transit.
func classifyBroadcastError(err error) (Status, error) {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return StatusIndeterminate, errors.Join(ErrIndeterminate, err)
	}
	msg := strings.ToLower(err.Error())
	for _, m := range insufficientFundsMsgs {
		if strings.Contains(msg, m) {
			return StatusUnsubmitted, fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
		}
	}
	return StatusUnsubmitted, fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
}
