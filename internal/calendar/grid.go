// Copyright (c) 2026 Planora. All rights reserved.

/*
Package calendar turns the backend's weekly schedule into a renderable grid.

The grid is fixed: six day columns (Monday through Saturday) by six two-hour
rows starting at 08:00. Entries land in the cell whose start hour matches
their time slot; entries outside the grid hours are dropped rather than
stretched into a neighboring cell.
*/
package calendar

import (
	"strconv"
	"time"

	"github.com/planora/edt-client/internal/edtapi"
)

// DayNames are the column headers, Monday first.
var DayNames = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}

// Hours are the row start times of the two-hour grid.
var Hours = []string{"08:00", "10:00", "12:00", "14:00", "16:00", "18:00"}

// StartOfWeek returns the Monday of t's week, at midnight in t's location.
func StartOfWeek(t time.Time) time.Time {
	// time.Weekday counts Sunday as 0; shift so Monday is the anchor.
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// PrevWeek returns the Monday one week before weekStart.
func PrevWeek(weekStart time.Time) time.Time { return weekStart.AddDate(0, 0, -7) }

// NextWeek returns the Monday one week after weekStart.
func NextWeek(weekStart time.Time) time.Time { return weekStart.AddDate(0, 0, 7) }

// Cell is one day-by-hour slot of the grid.
type Cell struct {
	Day     int              `json:"day"`  // 0 = Monday
	Hour    string           `json:"hour"` // row start time
	Entries []edtapi.Schedule `json:"entries,omitempty"`
}

// Week is the fully resolved grid for one week.
type Week struct {
	WeekStart string   `json:"week_start"`
	WeekEnd   string   `json:"week_end"`
	DayNames  []string `json:"day_names"`
	Hours     []string `json:"hours"`
	// Cells is indexed [hour row][day column].
	Cells [][]Cell `json:"cells"`
}

// BuildWeek places the backend's pre-grouped week into the fixed grid.
//
// An entry's row is determined by its time slot's start time; the slots are
// looked up by ID because the weekly payload carries only the reference.
func BuildWeek(week *edtapi.WeeklySchedule, slots []edtapi.TimeSlot) Week {
	startByID := make(map[int64]string, len(slots))
	for _, slot := range slots {
		startByID[slot.ID] = hourKey(slot.StartTime)
	}

	grid := Week{
		WeekStart: week.WeekStart,
		WeekEnd:   week.WeekEnd,
		DayNames:  DayNames,
		Hours:     Hours,
		Cells:     make([][]Cell, len(Hours)),
	}

	rowByHour := make(map[string]int, len(Hours))
	for row, hour := range Hours {
		rowByHour[hour] = row
		grid.Cells[row] = make([]Cell, len(DayNames))
		for day := range DayNames {
			grid.Cells[row][day] = Cell{Day: day, Hour: hour}
		}
	}

	for day := range DayNames {
		daySchedule, ok := week.Days[strconv.Itoa(day)]
		if !ok {
			continue
		}
		for _, entry := range daySchedule.Schedules {
			row, ok := rowByHour[startByID[entry.TimeSlot]]
			if !ok {
				continue // outside the displayed hours
			}
			cell := &grid.Cells[row][day]
			cell.Entries = append(cell.Entries, entry)
		}
	}

	return grid
}

// hourKey normalizes backend times ("08:00:00") to grid hours ("08:00").
func hourKey(start string) string {
	if len(start) > 5 {
		return start[:5]
	}
	return start
}
