package booking

import (
	"fmt"

	"github.com/openaccounting/backend/internal/domain/shared/valueobject"
)

// ComputeBalance returns the part of a payment's gross amount that is
// not yet explained by its outgoing associations:
//
//	balance = gross − Σ associated item amounts − Σ outgoing link amounts
//
// Every amount must be in the payment's currency; a mismatch is a data
// integrity error, never a silent conversion. Duplicate association
// edges appear once per edge and double-count on purpose.
func ComputeBalance(payment *Payment, items []Item, outgoing []PaymentLink) (valueobject.Money, error) {
	balance := payment.GrossMoney()

	for i := range items {
		next, err := balance.Subtract(items[i].AmountMoney())
		if err != nil {
			return valueobject.Money{}, NewCurrencyMismatchError(
				fmt.Sprintf("Item %s is in %s but payment %s is in %s",
					items[i].ID, items[i].Currency, payment.ID, payment.Currency))
		}
		balance = next
	}

	for i := range outgoing {
		next, err := balance.Subtract(outgoing[i].AmountMoney())
		if err != nil {
			return valueobject.Money{}, NewCurrencyMismatchError(
				fmt.Sprintf("Link %s is in %s but payment %s is in %s",
					outgoing[i].ID, outgoing[i].Currency, payment.ID, payment.Currency))
		}
		balance = next
	}

	return balance, nil
}

// IsSettled reports whether a balance closes its payment. Only an exact
// zero closes; a negative balance (over-settlement) keeps the payment
// open like any other nonzero balance.
func IsSettled(balance valueobject.Money) bool {
	return balance.IsZero()
}
