package token

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetOutput(io.Discard)
}

var (
	owner   = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	spender = common.HexToAddress("0x0000000000000000000000000000000000000a02")
	to      = common.HexToAddress("0x0000000000000000000000000000000000000a03")
)

func TestMemory_TransferFrom(t *testing.T) {
	testCases := []struct {
		name      string
		balance   int64
		allowance int64
		amount    int64
		err       error
	}{
		{name: "ok", balance: 100, allowance: 50, amount: 50},
		{name: "insufficient allowance", balance: 100, allowance: 10, amount: 50, err: ErrInsufficientAllowance},
		{name: "insufficient balance", balance: 10, allowance: 50, amount: 50, err: ErrInsufficientBalance},
		{name: "negative", balance: 10, allowance: 50, amount: -1, err: ErrInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMemory()
			m.Mint(owner, big.NewInt(tc.balance))
			m.Approve(owner, spender, big.NewInt(tc.allowance))

			err := m.Port(spender).TransferFrom(context.Background(), owner, to, big.NewInt(tc.amount))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Equal(t, big.NewInt(tc.balance), m.BalanceOf(owner))
				assert.Equal(t, big.NewInt(0), m.BalanceOf(to))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(tc.balance-tc.amount), m.BalanceOf(owner))
			assert.Equal(t, big.NewInt(tc.amount), m.BalanceOf(to))
			assert.Equal(t, big.NewInt(tc.allowance-tc.amount), m.Allowance(owner, spender))
		})
	}
}

func TestMemory_TransferFromAboveUint256(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	m := NewMemory()
	m.Mint(owner, huge)
	m.Approve(owner, spender, huge)

	err := m.Port(spender).TransferFrom(context.Background(), owner, to, huge)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, big.NewInt(0), m.BalanceOf(to))
}

func TestPort_Hook(t *testing.T) {
	m := NewMemory()
	m.Mint(owner, big.NewInt(100))
	m.Approve(owner, spender, big.NewInt(100))

	calls := 0
	port := m.Port(spender).WithHook(func(ctx context.Context, from, dst common.Address, amount *big.Int) error {
		calls++
		assert.Equal(t, owner, from)
		return nil
	})
	require.NoError(t, port.TransferFrom(context.Background(), owner, to, big.NewInt(40)))
	assert.Equal(t, 1, calls)

	abort := errors.New("abort")
	failing := port.WithHook(func(context.Context, common.Address, common.Address, *big.Int) error {
		return abort
	})
	err := failing.TransferFrom(context.Background(), owner, to, big.NewInt(10))
	assert.ErrorIs(t, err, abort)
	assert.Equal(t, big.NewInt(60), m.BalanceOf(owner))
}

func TestPort_Reads(t *testing.T) {
	m := NewMemory()
	m.Mint(owner, big.NewInt(7))
	m.Approve(owner, spender, big.NewInt(3))
	port := m.Port(spender)

	balance, err := port.BalanceOf(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), balance)

	allowance, err := port.Allowance(context.Background(), owner, spender)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), allowance)

	assert.Equal(t, spender, port.Spender())
	assert.Equal(t, big.NewInt(7), m.TotalSupply())
}
