package blockchain

import "github.com/pkg/errors"

// Error kinds returned by AddBlock/Construct, per spec §7. Each arises
// exactly where §4.3 specifies.
var (
	ErrPrevHashMismatch            = errors.New("blockchain: block prev_hash does not match chain tip")
	ErrInvalidTimestamp            = errors.New("blockchain: block timestamp out of order or in the future")
	ErrBlockNotMinedCorrectly      = errors.New("blockchain: block hash does not satisfy the target difficulty")
	ErrInvalidTransactionSignature = errors.New("blockchain: transaction signature is invalid")
	ErrExcessiveTransactionAmount  = errors.New("blockchain: transaction amount exceeds sender balance")
)
