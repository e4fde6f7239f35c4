package chain

import "errors"

// Transaction rejections raised by the chain itself. Contract rejections
// (crowdsale.ErrSaleClosed, token.ErrInsufficientBalance, ...) pass through
// unchanged.
var (
	ErrInvalidTx         = errors.New("invalid transaction")
	ErrWrongChain        = errors.New("wrong chain id")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrNonceTooLow       = errors.New("nonce too low")
	ErrNonceTooHigh      = errors.New("nonce too high")
	ErrInsufficientFunds = errors.New("insufficient funds for value")
	ErrNoContract        = errors.New("no contract at address")
	ErrNotPayable        = errors.New("function is not payable")
	ErrUnknownMethod     = errors.New("unknown method")
	ErrBadArguments      = errors.New("bad call arguments")
	ErrAddressInUse      = errors.New("contract address already in use")
	ErrReceiptNotFound   = errors.New("receipt not found")
)

var chainCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidTx, "INVALID_TX"},
	{ErrWrongChain, "WRONG_CHAIN"},
	{ErrInvalidSignature, "INVALID_SIGNATURE"},
	{ErrNonceTooLow, "NONCE_TOO_LOW"},
	{ErrNonceTooHigh, "NONCE_TOO_HIGH"},
	{ErrInsufficientFunds, "INSUFFICIENT_FUNDS"},
	{ErrNoContract, "NO_CONTRACT"},
	{ErrNotPayable, "NOT_PAYABLE"},
	{ErrUnknownMethod, "UNKNOWN_METHOD"},
	{ErrBadArguments, "BAD_ARGUMENTS"},
	{ErrAddressInUse, "ADDRESS_IN_USE"},
	{ErrReceiptNotFound, "RECEIPT_NOT_FOUND"},
}
