package contract

import (
	"fmt"

	"go.dedis.ch/ledgerkit/core/identity"
	"golang.org/x/xerrors"
)

// Token is the constraint of the things an amount can count.
type Token[T any] interface {
	Equal(other T) bool
}

// Amount is a non-negative quantity of a token, expressed in the smallest unit
// of the token.
type Amount[T Token[T]] struct {
	Quantity int64
	Token    T
}

// NewAmount returns the amount of token. It returns an error if the quantity
// is negative.
func NewAmount[T Token[T]](quantity int64, token T) (Amount[T], error) {
	if quantity < 0 {
		return Amount[T]{}, xerrors.Errorf("negative amount %d", quantity)
	}

	return Amount[T]{Quantity: quantity, Token: token}, nil
}

// Plus returns the sum of the two amounts. It returns an error if the tokens
// are different or if the sum overflows.
func (a Amount[T]) Plus(other Amount[T]) (Amount[T], error) {
	if !a.Token.Equal(other.Token) {
		return Amount[T]{}, xerrors.Errorf("token mismatch: %v != %v", a.Token, other.Token)
	}

	sum := a.Quantity + other.Quantity
	if sum < a.Quantity {
		return Amount[T]{}, xerrors.New("amount overflow")
	}

	return Amount[T]{Quantity: sum, Token: a.Token}, nil
}

// Minus returns the difference of the two amounts. It returns an error if the
// tokens are different or if the result is negative.
func (a Amount[T]) Minus(other Amount[T]) (Amount[T], error) {
	if !a.Token.Equal(other.Token) {
		return Amount[T]{}, xerrors.Errorf("token mismatch: %v != %v", a.Token, other.Token)
	}

	return NewAmount(a.Quantity-other.Quantity, a.Token)
}

// Equal returns true if the quantity and the token are the same.
func (a Amount[T]) Equal(other Amount[T]) bool {
	return a.Quantity == other.Quantity && a.Token.Equal(other.Token)
}

// String implements fmt.Stringer.
func (a Amount[T]) String() string {
	return fmt.Sprintf("%d %v", a.Quantity, a.Token)
}

// SumOrError returns the sum of the amounts. It returns an error if the list
// is empty or if the tokens differ.
func SumOrError[T Token[T]](amounts []Amount[T]) (Amount[T], error) {
	if len(amounts) == 0 {
		return Amount[T]{}, xerrors.New("no amount to sum")
	}

	return sumFrom(amounts[0], amounts[1:])
}

// SumOrZero returns the sum of the amounts, or zero of the token if the list is
// empty.
func SumOrZero[T Token[T]](token T, amounts []Amount[T]) (Amount[T], error) {
	return sumFrom(Amount[T]{Token: token}, amounts)
}

func sumFrom[T Token[T]](total Amount[T], amounts []Amount[T]) (Amount[T], error) {
	var err error

	for _, amount := range amounts {
		total, err = total.Plus(amount)
		if err != nil {
			return Amount[T]{}, err
		}
	}

	return total, nil
}

// Issued is a product issued by a party, like a currency issued by a bank
// under a deposit reference. Products from different issuers are not
// fungible.
type Issued[P Token[P]] struct {
	Issuer  identity.PartyAndReference
	Product P
}

// Equal implements Token.
func (i Issued[P]) Equal(other Issued[P]) bool {
	return i.Issuer.Equal(other.Issuer) && i.Product.Equal(other.Product)
}

// String implements fmt.Stringer.
func (i Issued[P]) String() string {
	return fmt.Sprintf("%v issued by %v", i.Product, i.Issuer)
}
