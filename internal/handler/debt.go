package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/debt"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/money"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// DebtHandler lists open debt positions and settles them.
type DebtHandler struct {
	store   *ledger.Store
	settler *debt.Settler
}

func NewDebtHandler(store *ledger.Store, settler *debt.Settler) *DebtHandler {
	return &DebtHandler{store: store, settler: settler}
}

// ListDebts returns open positions split by direction, with totals.
func (h *DebtHandler) ListDebts(c *gin.Context) {
	txns, err := h.store.OpenDebtTransactions()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var lent, borrowed []transactionResp
	var totalLent, totalBorrowed int64
	for i := range txns {
		resp := toTransactionResp(&txns[i])
		if txns[i].Category == models.CategoryLending {
			lent = append(lent, resp)
			totalLent += txns[i].Amount
		} else {
			borrowed = append(borrowed, resp)
			totalBorrowed += txns[i].Amount
		}
	}

	util.Success(c, util.Response{
		"lent":                lent,
		"borrowed":            borrowed,
		"total_lent":          totalLent,
		"total_lent_text":     money.Format(totalLent),
		"total_borrowed":      totalBorrowed,
		"total_borrowed_text": money.Format(totalBorrowed),
	})
}

// SettleDebt closes one open position: the counter-transaction is recorded
// and the original removed in the same unit of work.
func (h *DebtHandler) SettleDebt(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	origin, err := h.store.Transaction(uint(id))
	if errors.Is(err, ledger.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	result, err := h.settler.Settle(origin, time.Now())
	if errors.Is(err, debt.ErrNotOpenDebt) {
		util.Error(c, http.StatusConflict, util.CodeInvalidState, "transaction is not an open debt")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "settle failed")
		return
	}

	util.Success(c, util.Response{
		"counter_transaction_id": result.CounterID,
		"counter_type":           string(result.CounterType),
		"counter_category":       result.CounterCategory,
	})
}
