package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInsufficientBalance   = errors.New("ERC20: transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("ERC20: insufficient allowance")
	ErrInvalidAmount         = errors.New("ERC20: invalid amount")
)

// TransferHook runs before a TransferFrom moves funds, outside the token's
// lock. A non-nil error aborts the transfer.
type TransferHook func(ctx context.Context, from common.Address, to common.Address, amount *big.Int) error

// Memory is an in-process ERC-20 ledger used in staging and in tests.
type Memory struct {
	mu         sync.RWMutex
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	supply     *big.Int
}

func NewMemory() *Memory {
	return &Memory{
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		supply:     new(big.Int),
	}
}

func (m *Memory) Mint(to common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balance(to).Add(m.balance(to), amount)
	m.supply.Add(m.supply, amount)
}

func (m *Memory) Approve(owner common.Address, spender common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	spenders, ok := m.allowances[owner]
	if !ok {
		spenders = make(map[common.Address]*big.Int)
		m.allowances[owner] = spenders
	}
	spenders[spender] = new(big.Int).Set(amount)
}

func (m *Memory) BalanceOf(owner common.Address) *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if balance, ok := m.balances[owner]; ok {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}

func (m *Memory) Allowance(owner common.Address, spender common.Address) *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if allowance, ok := m.allowances[owner][spender]; ok {
		return new(big.Int).Set(allowance)
	}
	return new(big.Int)
}

func (m *Memory) TotalSupply() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.supply)
}

// transferFrom moves amount drawing on the allowance owner gave spender.
func (m *Memory) transferFrom(spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 || amount.BitLen() > 256 {
		return ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	allowance := m.allowances[from][spender]
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	balance := m.balance(from)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	allowance.Sub(allowance, amount)
	balance.Sub(balance, amount)
	m.balance(to).Add(m.balance(to), amount)
	return nil
}

// balance returns the live balance entry. Callers hold mu.
func (m *Memory) balance(owner common.Address) *big.Int {
	balance, ok := m.balances[owner]
	if !ok {
		balance = new(big.Int)
		m.balances[owner] = balance
	}
	return balance
}

// Port is the view of a Memory token held by one spender, the shape the
// registry consumes.
type Port struct {
	token   *Memory
	spender common.Address
	hook    TransferHook
}

func (m *Memory) Port(spender common.Address) *Port {
	return &Port{token: m, spender: spender}
}

// WithHook returns a copy of the port that calls hook before each transfer.
func (p *Port) WithHook(hook TransferHook) *Port {
	return &Port{token: p.token, spender: p.spender, hook: hook}
}

func (p *Port) Spender() common.Address {
	return p.spender
}

func (p *Port) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	return p.token.BalanceOf(owner), nil
}

func (p *Port) Allowance(_ context.Context, owner common.Address, spender common.Address) (*big.Int, error) {
	return p.token.Allowance(owner, spender), nil
}

func (p *Port) TransferFrom(ctx context.Context, from common.Address, to common.Address, amount *big.Int) error {
	if p.hook != nil {
		if err := p.hook(ctx, from, to, amount); err != nil {
			return fmt.Errorf("transfer hook: %w", err)
		}
	}
	if err := p.token.transferFrom(p.spender, from, to, amount); err != nil {
		return err
	}
	log.Debug("[TOKEN] Transferred ", amount, " from ", from.Hex(), " to ", to.Hex())
	return nil
}
