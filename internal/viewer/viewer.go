// Package viewer opens an interactive terminal table browser over an
// IndexCollection, demonstrating the public read API (Header, Row, NumRows)
// end to end over real data per SPEC_FULL.md §2.2. It is grounded on
// ChristianF88/cidrx's src/tui/app.go: tview.Pages for view switching,
// a status bar, and an app.SetInputCapture key dispatcher, adapted from
// cidrx's fixed results/visualization pages to a single scrollable
// tview.Table fed lazily from the collection instead of pre-rendered text.
package viewer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/colidx/colidx/internal/collection"
)

// windowRows bounds how many data rows are materialized into the table at
// once; maybeGrowWindow moves the window as the selection nears either edge
// instead of loading every row up front.
const windowRows = 500

type viewer struct {
	app       *tview.Application
	table     *tview.Table
	statusBar *tview.TextView
	coll      *collection.IndexCollection

	windowStart int
	windowEnd   int
}

// Run opens the browser and blocks until the user quits. coll remains open
// for the caller to Close after Run returns.
func Run(coll *collection.IndexCollection) error {
	v := &viewer{
		app:  tview.NewApplication(),
		coll: coll,
	}
	v.table = tview.NewTable().SetFixed(1, 0).SetSelectable(true, true)
	v.table.SetBorder(true).SetTitle(fmt.Sprintf(" %v ", coll.Filenames()))

	v.statusBar = tview.NewTextView().SetDynamicColors(true)
	v.updateStatusBar()

	v.loadWindow(0, windowRows)
	v.table.SetSelectionChangedFunc(func(row, col int) {
		v.maybeGrowWindow(row)
		v.updateStatusBar()
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.table, 0, 1, true).
		AddItem(v.statusBar, 1, 0, false)

	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			v.app.Stop()
			return nil
		}
		return event
	})

	v.app.SetRoot(layout, true)
	return v.app.Run()
}

// loadWindow (re)populates the table with header row plus data rows
// [start, end), clamped to the collection's row count.
func (v *viewer) loadWindow(start, end int) {
	if end > v.coll.NumRows() {
		end = v.coll.NumRows()
	}
	if start < 0 {
		start = 0
	}

	v.table.Clear()
	for c := 0; c < v.coll.NumColumns(); c++ {
		v.table.SetCell(0, c, tview.NewTableCell(string(v.coll.Header().Cell(c).Bytes())).
			SetSelectable(false).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold))
	}

	for r := start; r < end; r++ {
		row := v.coll.Row(r)
		for c := 0; c < v.coll.NumColumns(); c++ {
			v.table.SetCell(r-start+1, c, tview.NewTableCell(string(row.Cell(c).Bytes())))
		}
	}

	v.windowStart, v.windowEnd = start, end
}

// maybeGrowWindow moves the loaded window by half its size when the selection
// nears either edge, keeping memory bounded while still letting the user scroll through
// an arbitrarily large collection.
func (v *viewer) maybeGrowWindow(tableRow int) {
	globalRow := v.windowStart + tableRow - 1
	if globalRow < 0 {
		return
	}

	const margin = 25
	if globalRow-v.windowStart < margin && v.windowStart > 0 {
		newStart := v.windowStart - windowRows/2
		if newStart < 0 {
			newStart = 0
		}
		v.loadWindow(newStart, newStart+windowRows)
		v.table.Select(globalRow-v.windowStart+1, 0)
		return
	}
	if v.windowEnd-globalRow < margin && v.windowEnd < v.coll.NumRows() {
		newStart := v.windowStart + windowRows/2
		v.loadWindow(newStart, newStart+windowRows)
		v.table.Select(globalRow-v.windowStart+1, 0)
	}
}

func (v *viewer) updateStatusBar() {
	row, col := v.table.GetSelection()
	globalRow := v.windowStart + row - 1
	v.statusBar.SetText(fmt.Sprintf(
		"[green]row %d/%d, col %d/%d[white] | arrows: move, 'q': quit",
		globalRow+1, v.coll.NumRows(), col+1, v.coll.NumColumns()))
}
