package dataprocessing

import (
	"sort"

	"finboard/pkg/contracts/domain"
)

// unrankedPriority sorts after every recognized priority list entry.
const unrankedPriority = 999

// FilterByCategory returns the rows whose Category cell equals label
// exactly. Matching is case-sensitive with no trimming. The result is a
// new slice in input order; no matches yields an empty slice, which
// renders as a zero-row table rather than an error.
func FilterByCategory(rows []domain.Row, label string) []domain.Row {
	out := make([]domain.Row, 0)
	for _, row := range rows {
		if row[domain.ColumnCategory] == label {
			out = append(out, row)
		}
	}
	return out
}

// SortByPriority returns a copy of rows ordered by the position of each
// row's keyField value within the priority list. Values absent from the
// list, blanks included, rank as unrankedPriority and sort after every
// recognized value. The sort is stable: rows of equal rank keep their
// input order. The input slice is not mutated.
func SortByPriority(rows []domain.Row, priorities []string, keyField string) []domain.Row {
	ranks := make(map[string]int, len(priorities))
	for i, p := range priorities {
		if _, ok := ranks[p]; !ok {
			ranks[p] = i
		}
	}

	out := make([]domain.Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(ranks, out[i][keyField]) < rankOf(ranks, out[j][keyField])
	})
	return out
}

func rankOf(ranks map[string]int, value string) int {
	if idx, ok := ranks[value]; ok {
		return idx
	}
	return unrankedPriority
}
