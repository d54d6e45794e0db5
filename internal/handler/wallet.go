package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/balance"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/models"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/money"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// WalletHandler serves wallet CRUD. Balances in responses are always derived
// from transaction history, never read from a stored running balance.
type WalletHandler struct {
	store *ledger.Store
}

func NewWalletHandler(store *ledger.Store) *WalletHandler {
	return &WalletHandler{store: store}
}

type createWalletReq struct {
	Name           string `json:"name" binding:"required,max=64"`
	InitialBalance string `json:"initial_balance"`
	Icon           string `json:"icon" binding:"max=32"`
	Color          string `json:"color" binding:"max=16"`
}

type updateWalletReq struct {
	Name  string `json:"name" binding:"required,max=64"`
	Icon  string `json:"icon" binding:"max=32"`
	Color string `json:"color" binding:"max=16"`
}

type walletResp struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	InitialBalance int64  `json:"initial_balance"`
	Balance        int64  `json:"balance"`
	BalanceText    string `json:"balance_text"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	IsArchived     bool   `json:"is_archived"`
}

func (h *WalletHandler) toWalletResp(w models.Wallet) (walletResp, error) {
	txns, err := h.store.TransactionsByWallet(w.ID)
	if err != nil {
		return walletResp{}, err
	}
	b := balance.WalletBalance(w, txns)
	return walletResp{
		ID:             w.ID,
		Name:           w.Name,
		InitialBalance: w.InitialBalance,
		Balance:        b,
		BalanceText:    money.Format(b),
		Icon:           w.Icon,
		Color:          w.Color,
		IsArchived:     w.IsArchived,
	}, nil
}

func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req createWalletReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var initial int64
	if req.InitialBalance != "" {
		v, err := money.Parse(req.InitialBalance)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid initial balance")
			return
		}
		initial = v
	}

	w := models.Wallet{
		Name:           req.Name,
		InitialBalance: initial,
		Icon:           req.Icon,
		Color:          req.Color,
	}
	if err := h.store.SaveWallet(&w); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	resp, err := h.toWalletResp(w)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"wallet": resp})
}

func (h *WalletHandler) ListWallets(c *gin.Context) {
	includeArchived := c.Query("include_archived") == "true"
	wallets, err := h.store.ListWallets(includeArchived)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]walletResp, 0, len(wallets))
	for _, w := range wallets {
		resp, err := h.toWalletResp(w)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
			return
		}
		items = append(items, resp)
	}
	util.Success(c, util.Response{"wallets": items})
}

func (h *WalletHandler) GetWallet(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	w, err := h.store.Wallet(uint(id))
	if errors.Is(err, ledger.ErrWalletNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "wallet not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	resp, err := h.toWalletResp(w)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"wallet": resp})
}

func (h *WalletHandler) UpdateWallet(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var req updateWalletReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	w, err := h.store.Wallet(uint(id))
	if errors.Is(err, ledger.ErrWalletNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "wallet not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	// initial balance is immutable after creation; only presentation
	// fields may change
	w.Name = req.Name
	w.Icon = req.Icon
	w.Color = req.Color
	if err := h.store.SaveWallet(&w); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	resp, err := h.toWalletResp(w)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"wallet": resp})
}

// ArchiveWallet soft-deletes a wallet. The default wallet stays.
func (h *WalletHandler) ArchiveWallet(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}
	if uint(id) == models.DefaultWalletID {
		util.Error(c, http.StatusConflict, util.CodeInvalidState, "default wallet cannot be archived")
		return
	}

	w, err := h.store.Wallet(uint(id))
	if errors.Is(err, ledger.ErrWalletNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "wallet not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	w.IsArchived = true
	if err := h.store.SaveWallet(&w); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"message": "wallet archived"})
}
