package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rumCAJs/atomicapp/internal/core"
)

type StoreHandler struct {
	stores *core.StoreService
}

func NewStoreHandler(stores *core.StoreService) *StoreHandler {
	return &StoreHandler{stores: stores}
}

type addStoreItemRequest struct {
	StoreID int64  `json:"store_id"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
}

func (h *StoreHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var req addStoreItemRequest
	if !decodeValid(w, r, "store_item_add", &req) {
		return
	}

	item, err := h.stores.AddItem(r.Context(), core.AddItemInput{
		StoreID:       req.StoreID,
		Name:          req.Name,
		Price:         req.Price,
		ActorPublicID: pid,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, item, http.StatusCreated)
}

func (h *StoreHandler) Items(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	storeID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || storeID <= 0 {
		http.Error(w, "invalid store id", http.StatusBadRequest)
		return
	}

	items, err := h.stores.Items(r.Context(), storeID, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, items, http.StatusOK)
}

type buyItemResponse struct {
	Balance int64 `json:"balance"`
}

func (h *StoreHandler) Buy(w http.ResponseWriter, r *http.Request) {
	pid, ok := profileID(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	itemID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || itemID <= 0 {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}

	balance, err := h.stores.BuyItem(r.Context(), itemID, pid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, buyItemResponse{Balance: balance}, http.StatusOK)
}
