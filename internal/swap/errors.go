package swap

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedTrade    = errors.New("unsupported trade")
	ErrInsufficientOutput  = errors.New("insufficient output amount")
	ErrMissingApproval     = errors.New("router cannot pull input token")
	ErrUnexpectedEstimate  = errors.New("estimate failed but call succeeded")
	ErrUnknownRevert       = errors.New("unknown revert")
	ErrInsufficientNative  = errors.New("insufficient native balance for gas")
	ErrConfirmationTimeout = errors.New("confirmation timed out")
	ErrTransactionReverted = errors.New("transaction reverted")
)

// classifyRevert maps a router revert reason to an error. Output shortfalls
// usually mean slippage moved beyond tolerance or the token takes a fee on
// transfer.
func classifyRevert(reason string) error {
	switch {
	case strings.Contains(reason, "INSUFFICIENT_OUTPUT_AMOUNT"),
		strings.Contains(reason, "EXCESSIVE_INPUT_AMOUNT"):
		return fmt.Errorf("%w: %s", ErrInsufficientOutput, reason)
	case strings.Contains(reason, "TRANSFER_FROM_FAILED"):
		return fmt.Errorf("%w: %s", ErrMissingApproval, reason)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRevert, reason)
	}
}
