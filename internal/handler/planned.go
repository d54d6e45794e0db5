package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/money"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// PlannedHandler serves planned expense items. Completing an item records a
// real expense transaction; un-completing removes it again.
type PlannedHandler struct {
	store *ledger.Store
}

func NewPlannedHandler(store *ledger.Store) *PlannedHandler {
	return &PlannedHandler{store: store}
}

type plannedReq struct {
	GroupName string `json:"group_name" binding:"required,max=64"`
	Title     string `json:"title" binding:"required,max=64"`
	Amount    string `json:"amount" binding:"required"`
	Category  string `json:"category" binding:"required,max=32"`
	WalletID  uint   `json:"wallet_id" binding:"required"`
	Note      string `json:"note" binding:"max=255"`
	DueDate   string `json:"due_date" binding:"required"` // YYYY-MM-DD
}

type plannedResp struct {
	ID            uint      `json:"id"`
	GroupName     string    `json:"group_name"`
	Title         string    `json:"title"`
	Amount        int64     `json:"amount"`
	AmountText    string    `json:"amount_text"`
	Category      string    `json:"category"`
	WalletID      uint      `json:"wallet_id"`
	Note          string    `json:"note"`
	DueDate       time.Time `json:"due_date"`
	IsCompleted   bool      `json:"is_completed"`
	TransactionID *uint     `json:"transaction_id,omitempty"`
}

func toPlannedResp(item *models.PlannedExpenseItem) plannedResp {
	return plannedResp{
		ID:            item.ID,
		GroupName:     item.GroupName,
		Title:         item.Title,
		Amount:        item.Amount,
		AmountText:    money.Format(item.Amount),
		Category:      item.Category,
		WalletID:      item.WalletID,
		Note:          item.Note,
		DueDate:       item.DueDate,
		IsCompleted:   item.IsCompleted,
		TransactionID: item.TransactionID,
	}
}

func (h *PlannedHandler) CreatePlannedItem(c *gin.Context) {
	var req plannedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}
	if err := util.ValidateAmount(amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}
	if err := util.ValidateDate(req.DueDate); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "due_date must be YYYY-MM-DD")
		return
	}
	dueDate, _ := time.Parse("2006-01-02", req.DueDate)

	if _, err := h.store.Wallet(req.WalletID); err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "wallet not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	item := models.PlannedExpenseItem{
		GroupName: strings.TrimSpace(req.GroupName),
		Title:     strings.TrimSpace(req.Title),
		Amount:    amount,
		Category:  strings.TrimSpace(req.Category),
		WalletID:  req.WalletID,
		Note:      strings.TrimSpace(req.Note),
		DueDate:   dueDate,
	}
	if err := h.store.SavePlannedItem(&item); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"item": toPlannedResp(&item)})
}

// ListPlannedItems returns items grouped by label (?group= filters one).
func (h *PlannedHandler) ListPlannedItems(c *gin.Context) {
	items, err := h.store.ListPlannedItems(strings.TrimSpace(c.Query("group")))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	groups := map[string][]plannedResp{}
	for i := range items {
		groups[items[i].GroupName] = append(groups[items[i].GroupName], toPlannedResp(&items[i]))
	}
	util.Success(c, util.Response{"groups": groups, "total": len(items)})
}

// TogglePlannedItem completes or reverts an item. Completion inserts the
// backing expense transaction dated now; reverting deletes it and clears the
// reference. Both paths are atomic in the store.
func (h *PlannedHandler) TogglePlannedItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	item, err := h.store.PlannedItem(uint(id))
	if errors.Is(err, ledger.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "planned item not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	if item.IsCompleted {
		if err := h.store.UncompletePlannedItem(&item); err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
			return
		}
	} else {
		tx := models.Transaction{
			WalletID:      item.WalletID,
			Type:          models.TypeExpense,
			Category:      item.Category,
			Amount:        item.Amount,
			Note:          item.Title,
			OccurredAt:    time.Now(),
			PlannedItemID: &item.ID,
		}
		if err := h.store.CompletePlannedItem(&item, &tx); err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
			return
		}
	}
	util.Success(c, util.Response{"item": toPlannedResp(&item)})
}

func (h *PlannedHandler) DeletePlannedItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	item, err := h.store.PlannedItem(uint(id))
	if errors.Is(err, ledger.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "planned item not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	if err := h.store.DeletePlannedItem(&item); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "planned item deleted"})
}
