package ledger

import (
	"errors"
)

var ErrInvalidArgument = errors.New("invalid argument")
var ErrIndexOutOfRange = errors.New("account index out of range")
var ErrInvalidAmount = errors.New("transfer amount must be positive")
var ErrBalanceOverflow = errors.New("balance overflow")
var ErrConservationViolated = errors.New("total balance not conserved")
