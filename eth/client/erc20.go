package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	log "github.com/sirupsen/logrus"

	signers "github.com/Samuel1505/TrustBridge-sub000/common"
	"github.com/Samuel1505/TrustBridge-sub000/registry"
)

// only the methods the registry and ledger need
const erc20ABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

var ErrTransferReverted = errors.New("token transfer reverted")

func ParseERC20ABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(erc20ABI))
}

type ERC20Contract interface {
	BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error)
	Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error)
	TransferFrom(opts *bind.TransactOpts, from common.Address, to common.Address, amount *big.Int) (*types.Transaction, error)
}

type ERC20ContractImpl struct {
	contract *bind.BoundContract
}

func (c *ERC20ContractImpl) call(opts *bind.CallOpts, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(opts, &out, method, params...); err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%s: unexpected output length %d", method, len(out))
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

func (c *ERC20ContractImpl) BalanceOf(opts *bind.CallOpts, owner common.Address) (*big.Int, error) {
	return c.call(opts, "balanceOf", owner)
}

func (c *ERC20ContractImpl) Allowance(opts *bind.CallOpts, owner common.Address, spender common.Address) (*big.Int, error) {
	return c.call(opts, "allowance", owner, spender)
}

func (c *ERC20ContractImpl) TransferFrom(opts *bind.TransactOpts, from common.Address, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return c.contract.Transact(opts, "transferFrom", from, to, amount)
}

func NewERC20Contract(address common.Address, backend bind.ContractBackend) (*ERC20ContractImpl, error) {
	parsed, err := ParseERC20ABI()
	if err != nil {
		return nil, err
	}
	return &ERC20ContractImpl{
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// WaitMinedFunc blocks until tx is included and returns its receipt.
type WaitMinedFunc func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)

// ERC20Token moves value through an on-chain ERC-20 token. The operator
// signer is the spender, so owners approve the operator address.
type ERC20Token struct {
	contract   ERC20Contract
	transactor *bind.TransactOpts
	waitMined  WaitMinedFunc
}

var _ registry.TokenPort = &ERC20Token{}

func (t *ERC20Token) Spender() common.Address {
	return t.transactor.From
}

func (t *ERC20Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.contract.BalanceOf(&bind.CallOpts{Context: ctx}, owner)
}

func (t *ERC20Token) Allowance(ctx context.Context, owner common.Address, spender common.Address) (*big.Int, error) {
	return t.contract.Allowance(&bind.CallOpts{Context: ctx}, owner, spender)
}

// TransferFrom sends transferFrom and waits for the receipt. A mined but
// failed transaction is reported as ErrTransferReverted.
func (t *ERC20Token) TransferFrom(ctx context.Context, from common.Address, to common.Address, amount *big.Int) error {
	opts := *t.transactor
	opts.Context = ctx

	tx, err := t.contract.TransferFrom(&opts, from, to, amount)
	if err != nil {
		return fmt.Errorf("error sending transferFrom: %w", err)
	}
	log.Debug("[ERC20] Sent transferFrom ", tx.Hash().Hex())

	receipt, err := t.waitMined(ctx, tx)
	if err != nil {
		return fmt.Errorf("error waiting for transferFrom %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Warn("[ERC20] transferFrom reverted ", tx.Hash().Hex())
		return fmt.Errorf("%w: %s", ErrTransferReverted, tx.Hash().Hex())
	}

	log.Info("[ERC20] transferFrom mined ", tx.Hash().Hex(), " in block ", receipt.BlockNumber)
	return nil
}

func newERC20Token(contract ERC20Contract, transactor *bind.TransactOpts, waitMined WaitMinedFunc) *ERC20Token {
	return &ERC20Token{
		contract:   contract,
		transactor: transactor,
		waitMined:  waitMined,
	}
}

// NewERC20Token binds the token at address on the validated network. The
// operator signer pays gas and spends the owners' allowances.
func NewERC20Token(ethClient EthereumClient, address common.Address, signer signers.Signer) (*ERC20Token, error) {
	chainID, err := ethClient.GetChainID()
	if err != nil {
		return nil, fmt.Errorf("error getting chain id: %w", err)
	}

	backend := ethClient.GetClient()
	contract, err := NewERC20Contract(address, backend)
	if err != nil {
		return nil, fmt.Errorf("error binding token contract: %w", err)
	}

	waitMined := func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
		return bind.WaitMined(ctx, backend, tx)
	}

	log.Info("[ERC20] Bound token ", address.Hex(), " with spender ", signer.EthAddress().Hex())
	return newERC20Token(contract, signers.NewTransactor(signer, chainID), waitMined), nil
}
