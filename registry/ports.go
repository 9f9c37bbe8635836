package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

// MaxAmountBits bounds every amount to what a uint256 token balance holds.
const MaxAmountBits = 256

// ValidAmount reports whether amount is a non-negative uint256.
func ValidAmount(amount *big.Int) bool {
	return amount != nil && amount.Sign() >= 0 && amount.BitLen() <= MaxAmountBits
}

// TokenPort is the fungible token the registry and ledger move value through.
// The port acts as the spender: TransferFrom draws on the allowance owner
// granted to the port's operator.
type TokenPort interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner common.Address, spender common.Address) (*big.Int, error)
	TransferFrom(ctx context.Context, from common.Address, to common.Address, amount *big.Int) error
}

// EventSink receives every committed event in sequence order. Publish must
// not call back into the registry's mutating surface.
type EventSink interface {
	Publish(event models.Event)
}

type discardSink struct{}

func (discardSink) Publish(models.Event) {}
