package client

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	signers "github.com/Samuel1505/TrustBridge-sub000/common"
)

func init() {
	log.SetOutput(io.Discard)
}

type mockERC20Contract struct {
	mock.Mock
}

func (m *mockERC20Contract) BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error) {
	ret := m.Called(opts, owner)
	balance, _ := ret.Get(0).(*big.Int)
	return balance, ret.Error(1)
}

func (m *mockERC20Contract) Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error) {
	ret := m.Called(opts, owner, spender)
	allowance, _ := ret.Get(0).(*big.Int)
	return allowance, ret.Error(1)
}

func (m *mockERC20Contract) TransferFrom(opts *bind.TransactOpts, from common.Address, to common.Address, amount *big.Int) (*types.Transaction, error) {
	ret := m.Called(opts, from, to, amount)
	tx, _ := ret.Get(0).(*types.Transaction)
	return tx, ret.Error(1)
}

var (
	owner    = common.HexToAddress("0x000000000000000000000000000000000000a001")
	receiver = common.HexToAddress("0x00000000000000000000000000000000000000fe")
)

func testToken(t *testing.T, contract ERC20Contract, waitMined WaitMinedFunc) *ERC20Token {
	t.Helper()
	signer, err := signers.NewPrivateKeySigner("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	return newERC20Token(contract, signers.NewTransactor(signer, big.NewInt(31337)), waitMined)
}

func minedWith(status uint64) WaitMinedFunc {
	return func(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
		return &types.Receipt{Status: status, TxHash: tx.Hash(), BlockNumber: big.NewInt(7)}, nil
	}
}

func TestParseERC20ABI(t *testing.T) {
	parsed, err := ParseERC20ABI()
	require.NoError(t, err)

	selectors := map[string]string{
		"balanceOf":    "70a08231",
		"allowance":    "dd62ed3e",
		"transferFrom": "23b872dd",
	}
	for name, selector := range selectors {
		method, ok := parsed.Methods[name]
		require.True(t, ok, name)
		assert.Equal(t, selector, hex.EncodeToString(method.ID), name)
	}

	data, err := parsed.Pack("transferFrom", owner, receiver, big.NewInt(5))
	require.NoError(t, err)
	assert.Len(t, data, 4+3*32)
}

func TestNewERC20Contract(t *testing.T) {
	contract, err := NewERC20Contract(common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), nil)
	assert.NoError(t, err)
	assert.NotNil(t, contract)
}

func TestERC20TokenReads(t *testing.T) {
	contract := &mockERC20Contract{}
	token := testToken(t, contract, minedWith(types.ReceiptStatusSuccessful))
	ctx := context.Background()

	contract.On("BalanceOf", &bind.CallOpts{Context: ctx}, owner).Return(big.NewInt(42), nil)
	contract.On("Allowance", &bind.CallOpts{Context: ctx}, owner, token.Spender()).Return(nil, errors.New("rpc down"))

	balance, err := token.BalanceOf(ctx, owner)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(42), balance)

	_, err = token.Allowance(ctx, owner, token.Spender())
	assert.EqualError(t, err, "rpc down")

	contract.AssertExpectations(t)
}

func TestERC20TokenTransferFrom(t *testing.T) {
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 60000})
	amount := big.NewInt(10)

	t.Run("Mined", func(t *testing.T) {
		contract := &mockERC20Contract{}
		token := testToken(t, contract, minedWith(types.ReceiptStatusSuccessful))
		ctx := context.Background()

		contract.On("TransferFrom", mock.Anything, owner, receiver, amount).
			Run(func(args mock.Arguments) {
				opts := args.Get(0).(*bind.TransactOpts)
				assert.Equal(t, ctx, opts.Context)
				assert.Equal(t, token.Spender(), opts.From)
			}).
			Return(tx, nil)

		assert.NoError(t, token.TransferFrom(ctx, owner, receiver, amount))
		assert.Nil(t, token.transactor.Context)
		contract.AssertExpectations(t)
	})

	t.Run("Reverted", func(t *testing.T) {
		contract := &mockERC20Contract{}
		token := testToken(t, contract, minedWith(types.ReceiptStatusFailed))
		contract.On("TransferFrom", mock.Anything, owner, receiver, amount).Return(tx, nil)

		err := token.TransferFrom(context.Background(), owner, receiver, amount)
		assert.ErrorIs(t, err, ErrTransferReverted)
	})

	t.Run("Send Error", func(t *testing.T) {
		contract := &mockERC20Contract{}
		waited := false
		token := testToken(t, contract, func(context.Context, *types.Transaction) (*types.Receipt, error) {
			waited = true
			return nil, nil
		})
		sendErr := errors.New("insufficient funds for gas")
		contract.On("TransferFrom", mock.Anything, owner, receiver, amount).Return(nil, sendErr)

		err := token.TransferFrom(context.Background(), owner, receiver, amount)
		assert.ErrorIs(t, err, sendErr)
		assert.False(t, waited)
	})

	t.Run("Wait Error", func(t *testing.T) {
		contract := &mockERC20Contract{}
		token := testToken(t, contract, func(context.Context, *types.Transaction) (*types.Receipt, error) {
			return nil, context.DeadlineExceeded
		})
		contract.On("TransferFrom", mock.Anything, owner, receiver, amount).Return(tx, nil)

		err := token.TransferFrom(context.Background(), owner, receiver, amount)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
