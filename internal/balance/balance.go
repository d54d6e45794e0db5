// Package balance derives wallet balances from transaction history.
//
// A wallet's balance is never stored: it is always the initial balance plus
// the sum of signed effects of its transactions. Recomputing through this
// package is the canonical reconciliation path if store state is ever in
// doubt.
package balance

import "github.com/Nhattien2912/ExpenseManager-sub000/internal/models"

// SignedEffect returns the signed contribution of a transaction of the given
// type and amount to its wallet's balance. Transfers are net neutral at the
// single-wallet level.
func SignedEffect(t models.TxType, amount int64) int64 {
	switch t {
	case models.TypeIncome, models.TypeLoanTake:
		return amount
	case models.TypeExpense, models.TypeLoanGive:
		return -amount
	}
	return 0
}

// WalletBalance computes the current balance of w from its initial balance
// and the given transactions. Transactions referencing other wallets are
// ignored, so the full transaction list may be passed as-is. The result does
// not depend on ordering.
func WalletBalance(w models.Wallet, txns []models.Transaction) int64 {
	b := w.InitialBalance
	for i := range txns {
		if txns[i].WalletID != w.ID {
			continue
		}
		b += SignedEffect(txns[i].Type, txns[i].Amount)
	}
	return b
}
