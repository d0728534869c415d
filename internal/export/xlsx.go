// Package export renders a finished itinerary as an XLSX workbook: one sheet
// per day plus a budget summary sheet.
package export

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/trip-planner/internal/model"
)

var dayHeader = []string{
	"Start", "End", "Stop", "Slot", "Travel (min)", "Buffer (min)", "Ticket", "Notes",
}

// WriteItinerary writes the workbook to path.
func WriteItinerary(it *model.Itinerary, path string) error {
	f, err := buildWorkbook(it)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func buildWorkbook(it *model.Itinerary) (*xlsx.File, error) {
	f := xlsx.NewFile()

	for _, day := range it.Days {
		name := fmt.Sprintf("Day %d", day.Day)
		sheet, err := f.AddSheet(name)
		if err != nil {
			return nil, eris.Wrapf(err, "export: add sheet %s", name)
		}
		writeDay(sheet, day)
	}

	sheet, err := f.AddSheet("Budget")
	if err != nil {
		return nil, eris.Wrap(err, "export: add budget sheet")
	}
	writeBudget(sheet, it)
	return f, nil
}

func writeDay(sheet *xlsx.Sheet, day model.ItineraryDay) {
	header := sheet.AddRow()
	for _, h := range dayHeader {
		header.AddCell().SetString(h)
	}

	for _, item := range day.Schedule {
		row := sheet.AddRow()
		row.AddCell().SetString(item.Start)
		row.AddCell().SetString(item.End)
		row.AddCell().SetString(item.POI.Name)
		row.AddCell().SetString(string(item.Slot))
		row.AddCell().SetInt(item.TravelMin)
		row.AddCell().SetInt(item.BufferMin)
		row.AddCell().SetFloatWithFormat(item.POI.TicketPrice, "0.00")
		row.AddCell().SetString(strings.Join(item.Notes, "; "))
	}

	for _, meal := range day.Meals {
		row := sheet.AddRow()
		row.AddCell().SetString(meal.Start)
		row.AddCell().SetString(meal.End)
		row.AddCell().SetString(strings.ToUpper(meal.Name[:1]) + meal.Name[1:])
	}

	for _, backup := range day.Backups {
		row := sheet.AddRow()
		row.AddCell().SetString("")
		row.AddCell().SetString("")
		row.AddCell().SetString(backup.POI.Name + " (backup)")
	}

	if day.Summary != "" {
		sheet.AddRow().AddCell().SetString(day.Summary)
	}
}

func writeBudget(sheet *xlsx.Sheet, it *model.Itinerary) {
	add := func(label string, value string) {
		row := sheet.AddRow()
		row.AddCell().SetString(label)
		row.AddCell().SetString(value)
	}

	b := it.Budget
	add("Total", fmt.Sprintf("%.2f", b.Total))
	add("Tickets", fmt.Sprintf("%.2f", b.Breakdown.Tickets))
	add("Local transport", fmt.Sprintf("%.2f", b.Breakdown.LocalTransport))
	add("Food minimum", fmt.Sprintf("%.2f", b.Breakdown.FoodMin))
	add("Minimum feasible", fmt.Sprintf("%.2f", b.MinFeasible))
	add("Confidence", fmt.Sprintf("%.2f", it.Confidence))
	add("Degrade level", string(it.Degrade))
	if b.Warning != "" {
		add("Warning", b.Warning)
	}
	for _, a := range it.Assumptions {
		add("Assumption", a)
	}
	for _, v := range it.Violations {
		add("Open issue", fmt.Sprintf("%s: %s", v.Code, v.Message))
	}
}
