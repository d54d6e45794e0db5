package handler

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/money"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// TransactionHandler serves transaction CRUD and aggregation queries.
type TransactionHandler struct {
	store    *ledger.Store
	pageSize int
}

func NewTransactionHandler(store *ledger.Store, pageSize int) *TransactionHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &TransactionHandler{store: store, pageSize: pageSize}
}

type transactionReq struct {
	WalletID   uint   `json:"wallet_id" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=income expense loan_give loan_take transfer"`
	Category   string `json:"category" binding:"required,max=32"`
	Amount     string `json:"amount" binding:"required"`
	Note       string `json:"note" binding:"max=255"`
	OccurredAt string `json:"occurred_at"`
	DueDate    string `json:"due_date"` // loans only, YYYY-MM-DD
}

type transactionResp struct {
	ID          uint       `json:"id"`
	WalletID    uint       `json:"wallet_id"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Amount      int64      `json:"amount"`
	AmountText  string     `json:"amount_text"`
	Note        string     `json:"note"`
	OccurredAt  time.Time  `json:"occurred_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsRecurring bool       `json:"is_recurring"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toTransactionResp(tx *models.Transaction) transactionResp {
	return transactionResp{
		ID:          tx.ID,
		WalletID:    tx.WalletID,
		Type:        string(tx.Type),
		Category:    tx.Category,
		Amount:      tx.Amount,
		AmountText:  money.Format(tx.Amount),
		Note:        tx.Note,
		OccurredAt:  tx.OccurredAt,
		DueDate:     tx.DueDate,
		IsRecurring: tx.IsRecurring,
		CreatedAt:   tx.CreatedAt,
	}
}

func (h *TransactionHandler) buildTransaction(c *gin.Context, req *transactionReq, tx *models.Transaction) bool {
	req.Category = strings.TrimSpace(req.Category)
	if err := util.ValidateCategory(req.Category); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid category")
		return false
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return false
	}
	if err := util.ValidateAmount(amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return false
	}

	occurredAt := time.Now()
	if req.OccurredAt != "" {
		t, ok := util.ParseDateTime(req.OccurredAt)
		if !ok {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid occurred_at")
			return false
		}
		occurredAt = t
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		if err := util.ValidateDate(req.DueDate); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid due_date")
			return false
		}
		t, _ := time.Parse("2006-01-02", req.DueDate)
		dueDate = &t
	}

	tx.WalletID = req.WalletID
	tx.Type = models.TxType(req.Type)
	tx.Category = req.Category
	tx.Amount = amount
	tx.Note = strings.TrimSpace(req.Note)
	tx.OccurredAt = occurredAt
	tx.DueDate = dueDate
	return true
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var tx models.Transaction
	if !h.buildTransaction(c, &req, &tx) {
		return
	}

	if _, err := h.store.Wallet(tx.WalletID); err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "wallet not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	if err := h.store.InsertTransaction(&tx); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"transaction": toTransactionResp(&tx)})
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	tx, err := h.store.Transaction(uint(id))
	if errors.Is(err, ledger.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	if !h.buildTransaction(c, &req, &tx) {
		return
	}
	if err := h.store.SaveTransaction(&tx); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"transaction": toTransactionResp(&tx)})
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	tx, err := h.store.Transaction(uint(id))
	if errors.Is(err, ledger.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	if err := h.store.DeleteTransaction(&tx); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "transaction deleted"})
}

// ListTransactions returns transactions in a date range with optional type,
// wallet and category filters, paginated, plus an income/expense summary over
// the same filter.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.pageSize)))
	if size <= 0 || size > 100 {
		size = h.pageSize
	}

	// default range: the last 30 days including today
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -29)
	end := today.AddDate(0, 0, 1)

	if s := c.Query("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start must be YYYY-MM-DD")
			return
		}
		start = t
	}
	if s := c.Query("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "end must be YYYY-MM-DD")
			return
		}
		end = t.AddDate(0, 0, 1) // end date is inclusive
	}

	txns, err := h.store.TransactionsInRange(start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	txType := models.TxType(c.Query("type"))
	var walletID uint
	if s := c.Query("wallet_id"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid wallet_id")
			return
		}
		walletID = uint(v)
	}
	var categories []string
	if s := c.Query("categories"); s != "" {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				categories = append(categories, p)
			}
		}
	}

	filtered := txns[:0:0]
	for _, tx := range txns {
		if txType.Valid() && tx.Type != txType {
			continue
		}
		if walletID != 0 && tx.WalletID != walletID {
			continue
		}
		if len(categories) > 0 && !containsString(categories, tx.Category) {
			continue
		}
		filtered = append(filtered, tx)
	}

	var totalIncome, totalExpense int64
	for _, tx := range filtered {
		switch tx.Type {
		case models.TypeIncome:
			totalIncome += tx.Amount
		case models.TypeExpense:
			totalExpense += tx.Amount
		}
	}

	offset := (page - 1) * size
	items := make([]transactionResp, 0, size)
	for i := offset; i < len(filtered) && i < offset+size; i++ {
		items = append(items, toTransactionResp(&filtered[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": len(filtered),
		"page":  page,
		"size":  size,
		"summary": gin.H{
			"total_income":       totalIncome,
			"total_income_text":  money.Format(totalIncome),
			"total_expense":      totalExpense,
			"total_expense_text": money.Format(totalExpense),
			"net":                totalIncome - totalExpense,
			"net_text":           money.Format(totalIncome - totalExpense),
		},
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// GetMonthlyStats returns per-day and per-category income/expense totals for
// one calendar month (?month=2025-12, defaults to the current month).
func (h *TransactionHandler) GetMonthlyStats(c *gin.Context) {
	monthStr := c.Query("month")
	if monthStr == "" {
		monthStr = time.Now().Format("2006-01")
	}
	t, err := time.Parse("2006-01", monthStr)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be YYYY-MM")
		return
	}

	startOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, 0)

	txns, err := h.store.TransactionsInRange(startOfMonth, endOfMonth)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	type bucket struct {
		Key     string `json:"key"`
		Income  int64  `json:"income"`
		Expense int64  `json:"expense"`
		Net     int64  `json:"net"`
	}

	dailyMap := map[string]*bucket{}
	catMap := map[string]*bucket{}
	var totalIncome, totalExpense int64

	add := func(m map[string]*bucket, key string, tx *models.Transaction) {
		b, ok := m[key]
		if !ok {
			b = &bucket{Key: key}
			m[key] = b
		}
		switch tx.Type {
		case models.TypeIncome:
			b.Income += tx.Amount
		case models.TypeExpense:
			b.Expense += tx.Amount
		}
		b.Net = b.Income - b.Expense
	}

	for i := range txns {
		tx := &txns[i]
		add(dailyMap, tx.OccurredAt.Format("2006-01-02"), tx)
		add(catMap, tx.Category, tx)
		switch tx.Type {
		case models.TypeIncome:
			totalIncome += tx.Amount
		case models.TypeExpense:
			totalExpense += tx.Amount
		}
	}

	daily := make([]bucket, 0, len(dailyMap))
	for _, b := range dailyMap {
		daily = append(daily, *b)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Key < daily[j].Key })

	byCategory := make([]bucket, 0, len(catMap))
	for _, b := range catMap {
		byCategory = append(byCategory, *b)
	}
	sort.Slice(byCategory, func(i, j int) bool { return byCategory[i].Key < byCategory[j].Key })

	util.Success(c, util.Response{
		"month":         monthStr,
		"daily":         daily,
		"by_category":   byCategory,
		"total_income":  totalIncome,
		"total_expense": totalExpense,
		"net":           totalIncome - totalExpense,
	})
}
