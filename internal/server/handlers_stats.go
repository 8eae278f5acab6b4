package server

import (
	"net/http"

	"github.com/zombor/shopping-tracker/internal/stats"
)

// handleStats returns statistics across every list.
// Query parameter timeframe: week, month, year or all (default).
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	tf, err := stats.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := s.now()
	purchased := stats.Purchased(stats.FilterTimeframe(s.lists.AllItems(), tf, now))
	response := map[string]any{
		"timeframe":          tf,
		"overview":           stats.SummarizeTimeframe(s.lists.Lists(), tf, now),
		"category_breakdown": stats.CategoryBreakdown(purchased),
		"top_items":          stats.TopPurchasedItems(purchased, stats.DefaultTopItems),
		"monthly_spending":   stats.MonthlySpending(purchased, stats.DefaultMonthsBack, now),
		"spent_this_month":   s.lists.TotalSpentInCurrentMonth(),
	}
	if c, ok := s.lists.MostPurchasedCategory(); ok {
		response["most_purchased_category"] = c
	}
	writeJSON(w, http.StatusOK, response)
}

// handleListStats returns the category breakdown of one list
func (s *Server) handleListStats(w http.ResponseWriter, r *http.Request) {
	list := s.lists.List(r.PathValue("id"))
	if list == nil {
		corsError(w, "List not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category_breakdown": stats.CategoryBreakdown(list.Items),
		"purchased":          list.PurchasedItems(),
		"remaining":          list.TotalItems() - list.PurchasedItems(),
	})
}
