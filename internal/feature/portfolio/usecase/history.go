package usecase

import (
	"sort"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
)

// ProjectHistory turns a transaction log into history entries, most recent first.
// Entries with equal execution times are ordered by sequence, highest first.
// The input slice is not modified.
func ProjectHistory(txs []entity.Transaction) []entity.HistoryEntry {
	entries := make([]entity.HistoryEntry, 0, len(txs))
	for _, t := range txs {
		entries = append(entries, entity.HistoryEntry{
			Seq:        t.Seq,
			Symbol:     t.Symbol,
			Side:       t.Side(),
			Shares:     t.Shares(),
			Price:      t.Price,
			Total:      t.Total(),
			ExecutedAt: t.ExecutedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.ExecutedAt.Equal(b.ExecutedAt) {
			return a.ExecutedAt.After(b.ExecutedAt)
		}
		return a.Seq > b.Seq
	})
	return entries
}
