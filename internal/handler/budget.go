package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/money"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/notify"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// BudgetHandler serves the monthly budget limit and its current status.
type BudgetHandler struct {
	store        *ledger.Store
	defaultLimit int64
}

func NewBudgetHandler(store *ledger.Store, defaultLimit int64) *BudgetHandler {
	return &BudgetHandler{store: store, defaultLimit: defaultLimit}
}

type setBudgetReq struct {
	Month string `json:"month" binding:"required"` // YYYY-MM
	Limit string `json:"limit" binding:"required"`
}

func (h *BudgetHandler) limitFor(month string) (int64, error) {
	b, err := h.store.BudgetForMonth(month)
	if err == nil {
		return b.LimitAmount, nil
	}
	if errors.Is(err, ledger.ErrNotFound) {
		return h.defaultLimit, nil
	}
	return 0, err
}

func (h *BudgetHandler) GetBudget(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be YYYY-MM")
		return
	}

	limit, err := h.limitFor(month)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{
		"month":      month,
		"limit":      limit,
		"limit_text": money.Format(limit),
	})
}

func (h *BudgetHandler) SetBudget(c *gin.Context) {
	var req setBudgetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be YYYY-MM")
		return
	}
	limit, err := money.Parse(req.Limit)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid limit")
		return
	}

	b := models.Budget{Month: req.Month, LimitAmount: limit}
	if err := h.store.SaveBudget(&b); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"budget": gin.H{
		"month":      b.Month,
		"limit":      b.LimitAmount,
		"limit_text": money.Format(b.LimitAmount),
	}})
}

// GetBudgetStatus reports this month's spending against the limit.
func (h *BudgetHandler) GetBudgetStatus(c *gin.Context) {
	now := time.Now()
	month := now.Format("2006-01")

	limit, err := h.limitFor(month)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	spent, err := h.store.MonthlyExpenseTotal(now)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	status := notify.EvaluateBudget(spent, limit)
	util.Success(c, util.Response{
		"month":        month,
		"spent":        status.Spent,
		"spent_text":   money.Format(status.Spent),
		"limit":        status.Limit,
		"limit_text":   money.Format(status.Limit),
		"percent":      status.Percent,
		"should_warn":  status.ShouldWarn,
		"should_alert": status.ShouldAlert,
	})
}
