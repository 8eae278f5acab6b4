package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/zombor/shopping-tracker/internal/shopping"
)

// listResponse is a list with its derived figures
type listResponse struct {
	shopping.List
	TotalItems     int     `json:"totalItems"`
	PurchasedItems int     `json:"purchasedItems"`
	TotalCost      float64 `json:"totalCost"`
	PurchasedCost  float64 `json:"purchasedCost"`
	RemainingCost  float64 `json:"remainingCost"`
	Progress       float64 `json:"progress"`
}

func newListResponse(l shopping.List) listResponse {
	return listResponse{
		List:           l,
		TotalItems:     l.TotalItems(),
		PurchasedItems: l.PurchasedItems(),
		TotalCost:      l.TotalCost(),
		PurchasedCost:  l.PurchasedCost(),
		RemainingCost:  l.RemainingCost(),
		Progress:       l.Progress(),
	}
}

// itemRequest is the editable part of an item
type itemRequest struct {
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	IsPurchased bool      `json:"isPurchased"`
	Notes       string    `json:"notes"`
	AddedDate   time.Time `json:"addedDate"`
}

func (req itemRequest) item(id string) shopping.Item {
	category, ok := shopping.ParseCategory(req.Category)
	if !ok {
		category = shopping.CategoryOther
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return shopping.Item{
		ID:          id,
		Name:        req.Name,
		Quantity:    quantity,
		Price:       req.Price,
		Category:    category,
		IsPurchased: req.IsPurchased,
		Notes:       req.Notes,
		AddedDate:   req.AddedDate,
	}
}

// handleListLists returns every list, newest first
func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	lists := s.lists.Lists()
	response := make([]listResponse, 0, len(lists))
	for _, l := range lists {
		response = append(response, newListResponse(l))
	}
	writeJSON(w, http.StatusOK, response)
}

// handleCreateList creates a list and makes it current
func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	list, err := s.lists.Create(req.Name)
	if err != nil {
		writeServiceError(w, "create list", err)
		return
	}
	writeJSON(w, http.StatusCreated, newListResponse(*list))
}

func (s *Server) writeList(w http.ResponseWriter, list *shopping.List) {
	if list == nil {
		corsError(w, "List not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(*list))
}

// handleGetList returns a single list
func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	s.writeList(w, s.lists.List(r.PathValue("id")))
}

// handleCurrentList returns the list the user is working on
func (s *Server) handleCurrentList(w http.ResponseWriter, r *http.Request) {
	s.writeList(w, s.lists.Current())
}

// handleActiveList returns the first list that is not archived
func (s *Server) handleActiveList(w http.ResponseWriter, r *http.Request) {
	s.writeList(w, s.lists.ActiveList())
}

// handleDeleteList deletes a list
func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.Delete(r.PathValue("id")); err != nil {
		writeServiceError(w, "delete list", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleArchiveList toggles the archived flag
func (s *Server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.ToggleArchived(r.PathValue("id")); err != nil {
		writeServiceError(w, "archive list", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDuplicateList copies a list with nothing purchased
func (s *Server) handleDuplicateList(w http.ResponseWriter, r *http.Request) {
	list, err := s.lists.Duplicate(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "duplicate list", err)
		return
	}
	if list == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, newListResponse(*list))
}

// handleSetCurrentList selects the current list
func (s *Server) handleSetCurrentList(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.SetCurrent(r.PathValue("id")); err != nil {
		writeServiceError(w, "set current list", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearPurchased removes purchased items from a list
func (s *Server) handleClearPurchased(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.ClearPurchased(r.PathValue("id")); err != nil {
		writeServiceError(w, "clear purchased", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFilterItems returns the items of a list, unpurchased first.
// Query parameters: q (name search) and category.
func (s *Server) handleFilterItems(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.lists.List(id) == nil {
		corsError(w, "List not found", http.StatusNotFound)
		return
	}

	var category *shopping.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, ok := shopping.ParseCategory(raw)
		if !ok {
			jsonError(w, "Unknown category", http.StatusBadRequest)
			return
		}
		category = &c
	}

	writeJSON(w, http.StatusOK, s.lists.FilteredItems(id, r.URL.Query().Get("q"), category))
}

// handleAddItem appends an item to a list
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := s.lists.AddItem(r.PathValue("id"), req.item(""))
	if err != nil {
		writeServiceError(w, "add item", err)
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleUpdateItem replaces an item
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item := req.item(r.PathValue("itemID"))
	if item.AddedDate.IsZero() {
		item.AddedDate = s.existingAddedDate(r.PathValue("id"), item.ID)
	}
	if err := s.lists.UpdateItem(r.PathValue("id"), item); err != nil {
		writeServiceError(w, "update item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteItem removes an item
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.DeleteItem(r.PathValue("id"), r.PathValue("itemID")); err != nil {
		writeServiceError(w, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTogglePurchased flips the purchased flag of an item
func (s *Server) handleTogglePurchased(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.TogglePurchased(r.PathValue("id"), r.PathValue("itemID")); err != nil {
		writeServiceError(w, "toggle purchased", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// existingAddedDate keeps the original date when an update leaves it out
func (s *Server) existingAddedDate(listID, itemID string) time.Time {
	if list := s.lists.List(listID); list != nil {
		for _, item := range list.Items {
			if item.ID == itemID {
				return item.AddedDate
			}
		}
	}
	return s.now()
}
