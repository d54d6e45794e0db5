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
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/recurrence"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// ObligationHandler serves recurring obligation CRUD and the upcoming
// reminder preview. Schedule fields are otherwise only mutated by the
// recurrence engine.
type ObligationHandler struct {
	store  *ledger.Store
	engine *recurrence.Engine
}

func NewObligationHandler(store *ledger.Store, engine *recurrence.Engine) *ObligationHandler {
	return &ObligationHandler{store: store, engine: engine}
}

type obligationReq struct {
	WalletID          uint   `json:"wallet_id" binding:"required"`
	Type              string `json:"type" binding:"required,oneof=income expense loan_give loan_take"`
	Category          string `json:"category" binding:"required,max=32"`
	Amount            string `json:"amount" binding:"required"`
	Note              string `json:"note" binding:"max=255"`
	Period            string `json:"period" binding:"required,oneof=daily weekly monthly yearly"`
	StartDate         string `json:"start_date" binding:"required"` // first occurrence, YYYY-MM-DD
	LoanSource        string `json:"loan_source" binding:"omitempty,oneof=personal bank"`
	TotalInstallments int    `json:"total_installments" binding:"min=0"`
}

type obligationResp struct {
	ID                    uint      `json:"id"`
	WalletID              uint      `json:"wallet_id"`
	Type                  string    `json:"type"`
	Category              string    `json:"category"`
	Amount                int64     `json:"amount"`
	AmountText            string    `json:"amount_text"`
	Note                  string    `json:"note"`
	Period                string    `json:"period"`
	NextRunDate           time.Time `json:"next_run_date"`
	IsActive              bool      `json:"is_active"`
	LoanSource            string    `json:"loan_source,omitempty"`
	TotalInstallments     int       `json:"total_installments"`
	CompletedInstallments int       `json:"completed_installments"`
}

func toObligationResp(ob *models.RecurringObligation) obligationResp {
	return obligationResp{
		ID:                    ob.ID,
		WalletID:              ob.WalletID,
		Type:                  string(ob.Type),
		Category:              ob.Category,
		Amount:                ob.Amount,
		AmountText:            money.Format(ob.Amount),
		Note:                  ob.Note,
		Period:                string(ob.Period),
		NextRunDate:           ob.NextRunDate,
		IsActive:              ob.IsActive,
		LoanSource:            string(ob.LoanSource),
		TotalInstallments:     ob.TotalInstallments,
		CompletedInstallments: ob.CompletedInstallments,
	}
}

func (h *ObligationHandler) CreateObligation(c *gin.Context) {
	var req obligationReq
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
	if err := util.ValidateDate(req.StartDate); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start_date must be YYYY-MM-DD")
		return
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)

	if _, err := h.store.Wallet(req.WalletID); err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "wallet not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	ob := models.RecurringObligation{
		WalletID:          req.WalletID,
		Type:              models.TxType(req.Type),
		Category:          strings.TrimSpace(req.Category),
		Amount:            amount,
		Note:              strings.TrimSpace(req.Note),
		Period:            models.RecurrencePeriod(req.Period),
		NextRunDate:       start,
		IsActive:          true,
		LoanSource:        models.LoanSource(req.LoanSource),
		TotalInstallments: req.TotalInstallments,
	}
	if err := h.store.SaveObligation(&ob); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"obligation": toObligationResp(&ob)})
}

// UpdateObligation edits an obligation's definition. The schedule restarts
// from the submitted start date; completed installment progress is kept.
func (h *ObligationHandler) UpdateObligation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req obligationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	ob, err := h.store.Obligation(uint(id))
	if errors.Is(err, ledger.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "obligation not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
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
	if err := util.ValidateDate(req.StartDate); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start_date must be YYYY-MM-DD")
		return
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)

	if _, err := h.store.Wallet(req.WalletID); err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "wallet not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	ob.WalletID = req.WalletID
	ob.Type = models.TxType(req.Type)
	ob.Category = strings.TrimSpace(req.Category)
	ob.Amount = amount
	ob.Note = strings.TrimSpace(req.Note)
	ob.Period = models.RecurrencePeriod(req.Period)
	ob.NextRunDate = start
	ob.LoanSource = models.LoanSource(req.LoanSource)
	ob.TotalInstallments = req.TotalInstallments

	if err := h.store.SaveObligation(&ob); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"obligation": toObligationResp(&ob)})
}

func (h *ObligationHandler) ListObligations(c *gin.Context) {
	obs, err := h.store.ListObligations()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	items := make([]obligationResp, 0, len(obs))
	for i := range obs {
		items = append(items, toObligationResp(&obs[i]))
	}
	util.Success(c, util.Response{"obligations": items})
}

// ToggleObligation flips isActive. Re-activating an obligation whose cap is
// reached is rejected: completion is terminal.
func (h *ObligationHandler) ToggleObligation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	ob, err := h.store.Obligation(uint(id))
	if errors.Is(err, ledger.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "obligation not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	if !ob.IsActive && ob.CapReached() {
		util.Error(c, http.StatusConflict, util.CodeInvalidState, "all installments are completed")
		return
	}

	ob.IsActive = !ob.IsActive
	if err := h.store.SaveObligation(&ob); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"obligation": toObligationResp(&ob)})
}

func (h *ObligationHandler) DeleteObligation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}
	if err := h.store.DeleteObligation(uint(id)); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "obligation deleted"})
}

// UpcomingObligations previews obligations due within ?days (default 3).
func (h *ObligationHandler) UpcomingObligations(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "3"))
	if days <= 0 || days > 90 {
		days = 3
	}

	obs, err := h.engine.UpcomingReminders(time.Now(), time.Duration(days)*24*time.Hour)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	items := make([]obligationResp, 0, len(obs))
	for i := range obs {
		items = append(items, toObligationResp(&obs[i]))
	}
	util.Success(c, util.Response{"obligations": items})
}
