// Package pivot cross-tabulates cleaned records into slot x trader counts.
package pivot

import (
	"slices"

	"github.com/okian/traderheat/internal/domain/model"
	"github.com/okian/traderheat/internal/domain/timeslot"
)

// Grid is the count matrix behind one rendered heatmap. Rows follow the
// configured slots, columns the traders present in the view.
type Grid struct {
	Slots   []string `json:"slots"`
	Traders []string `json:"traders"`
	// Counts is indexed [slot][trader].
	Counts [][]int `json:"counts"`
	// Total is the number of records placed in a cell.
	Total int `json:"total"`
	// Unplaced counts records of the view that fell in no cell: an hour
	// outside the bins or an absent trader.
	Unplaced int `json:"unplaced"`
}

// Build counts records per (slot, trader). Every slot of bins is present,
// zero rows included. Traders are ordered ascending.
func Build(records []model.CleanedRecord, bins timeslot.Bins) Grid {
	traderSet := make(map[string]struct{})
	for _, r := range records {
		if r.HasTrader {
			traderSet[r.Trader] = struct{}{}
		}
	}
	traders := make([]string, 0, len(traderSet))
	for t := range traderSet {
		traders = append(traders, t)
	}
	slices.Sort(traders)

	column := make(map[string]int, len(traders))
	for i, t := range traders {
		column[t] = i
	}

	g := Grid{
		Slots:   slices.Clone(bins.Labels()),
		Traders: traders,
		Counts:  make([][]int, bins.Len()),
	}
	for i := range g.Counts {
		g.Counts[i] = make([]int, len(traders))
	}

	for _, r := range records {
		row := bins.Index(r.Hour)
		if row < 0 || !r.HasTrader {
			g.Unplaced++
			continue
		}
		g.Counts[row][column[r.Trader]]++
		g.Total++
	}
	return g
}

// Empty reports whether the grid holds no columns.
func (g Grid) Empty() bool {
	return len(g.Traders) == 0
}

// Max returns the largest cell count, or 0 for a grid without cells.
func (g Grid) Max() int {
	m := 0
	for _, row := range g.Counts {
		for _, c := range row {
			m = max(m, c)
		}
	}
	return m
}

// Min returns the smallest cell count, or 0 for a grid without cells.
func (g Grid) Min() int {
	first := true
	m := 0
	for _, row := range g.Counts {
		for _, c := range row {
			if first || c < m {
				m = c
				first = false
			}
		}
	}
	return m
}

// Sum adds up every cell. It always equals Total.
func (g Grid) Sum() int {
	s := 0
	for _, row := range g.Counts {
		for _, c := range row {
			s += c
		}
	}
	return s
}
