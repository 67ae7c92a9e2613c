package ledger

import (
	"errors"

	"github.com/mcclellann/emiLedger/pkg/store"
)

var (
	// ErrNotFound is shared with the store so a missing row and a missing
	// installment seq are handled alike.
	ErrNotFound            = store.ErrNotFound
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrValidation          = errors.New("validation error")
	ErrForbidden           = errors.New("forbidden")
	ErrAlreadyPaid         = errors.New("installment already paid")
	ErrConflict            = errors.New("concurrent update conflict")
)
