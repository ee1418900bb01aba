package minter

import (
	"fmt"
	"math"

	"github.com/minterhq/minterd/object"
	"github.com/minterhq/minterd/store"
	"github.com/shopspring/decimal"
)

const TypeCoinPayment = "minter:coin_payment"

// CoinPayment is a fixed fee in base units, paid by the minter to
// Destination before a mint proceeds.
type CoinPayment struct {
	Amount      uint64
	Destination string
}

func InitCoinPayment(txn *store.Txn, authority object.AuthorityProof, amount uint64, destination string) error {
	cp := &CoinPayment{Amount: amount, Destination: destination}
	return txn.AttachComponent(authority.Identity(), TypeCoinPayment, cp)
}

// AddOrUpdateCoinPayment mutates the fee policy in place when one is
// already enabled, otherwise attaches a fresh one.
func AddOrUpdateCoinPayment(txn *store.Txn, caller, col string, amount uint64, destination string) error {
	err := object.RequireOwner(txn, col, caller)
	if err != nil {
		return err
	}
	cp := &CoinPayment{Amount: amount, Destination: destination}
	return txn.WriteComponent(col, TypeCoinPayment, cp)
}

func ReadCoinPayment(txn *store.Txn, col string) (*CoinPayment, error) {
	var cp CoinPayment
	err := txn.ReadComponent(col, TypeCoinPayment, &cp)
	if err == store.ErrNotFound {
		return nil, ErrGuardDoesNotExist
	} else if err != nil {
		return nil, err
	}
	return &cp, nil
}

func RemoveCoinPayment(txn *store.Txn, caller, col string) error {
	err := object.RequireOwner(txn, col, caller)
	if err != nil {
		return err
	}
	return coinPaymentGuard{}.Remove(txn, col)
}

type coinPaymentGuard struct{}

func (coinPaymentGuard) Name() string {
	return "coin_payment"
}

func (coinPaymentGuard) IsEnabled(txn *store.Txn, identity string) (bool, error) {
	return txn.HasComponent(identity, TypeCoinPayment)
}

// Charge quotes the fee for the requested units. The configured amount
// only authorizes a single-unit fee, so Execute rejects any larger quote.
func (coinPaymentGuard) Charge(txn *store.Txn, identity string, amount uint64) (uint64, error) {
	var cp CoinPayment
	err := txn.ReadComponent(identity, TypeCoinPayment, &cp)
	if err != nil {
		return 0, err
	}
	if amount > 0 && cp.Amount > math.MaxUint64/amount {
		return 0, ErrInsufficientPayment
	}
	return cp.Amount * amount, nil
}

// Execute rejects under-collection and never over-collects: the configured
// fee must cover the requested amount, and exactly the requested amount
// moves from the caller to the destination.
func (coinPaymentGuard) Execute(txn *store.Txn, identity, caller string, amount uint64) error {
	var cp CoinPayment
	err := txn.ReadComponent(identity, TypeCoinPayment, &cp)
	if err != nil {
		return err
	}
	if cp.Amount < amount {
		return ErrInsufficientPayment
	}
	return txn.TransferFunds(caller, cp.Destination, amount)
}

func (coinPaymentGuard) Remove(txn *store.Txn, identity string) error {
	var cp CoinPayment
	err := txn.DetachComponent(identity, TypeCoinPayment, &cp)
	if err == store.ErrNotFound {
		return ErrGuardDoesNotExist
	}
	return err
}

// ParseCoinAmount converts a decimal coin amount to base units, 1e8 base
// units per coin.
func ParseCoinAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	base := d.Mul(decimal.New(1, 8))
	if base.Sign() < 0 || !base.Equal(base.Truncate(0)) {
		return 0, fmt.Errorf("invalid coin amount %s", s)
	}
	return uint64(base.IntPart()), nil
}

func FormatCoinAmount(amount uint64) string {
	return decimal.New(int64(amount), -8).String()
}
