// Package dashboard serves the overview page: fixed KPI cards, an hourly
// consumption series and a per-machine consumption table. The figures are
// sample data; nothing here reads from storage.
package dashboard

import (
	"fmt"
	"sort"
	"strings"
)

// Card is one headline figure.
type Card struct {
	Title string  `json:"title"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Delta float64 `json:"delta"` // percent change against the previous period
}

// Point is one hour of the consumption series.
type Point struct {
	Hour int     `json:"hour"`
	KWh  float64 `json:"kwh"`
}

// MachineUsage is one row of the consumption table.
type MachineUsage struct {
	Machine string  `json:"machine"`
	Line    string  `json:"line"`
	KWh     float64 `json:"kwh"`
	PeakKW  float64 `json:"peak_kw"`
	Status  string  `json:"status"`
}

// Data is the complete dashboard payload.
type Data struct {
	Cards    []Card         `json:"cards"`
	Series   []Point        `json:"series"`
	Machines []MachineUsage `json:"machines"`
}

// Columns lists the sortable columns of the machine table in display order.
var Columns = []string{"machine", "line", "kwh", "peak_kw", "status"}

var hourly = [24]float64{
	412, 398, 391, 388, 395, 430, 512, 640,
	702, 731, 744, 752, 689, 701, 738, 746,
	729, 688, 603, 541, 498, 466, 441, 420,
}

var machines = []MachineUsage{
	{Machine: "PRESS 1", Line: "LINE-1", KWh: 1840.5, PeakKW: 212, Status: "running"},
	{Machine: "PRESS 2", Line: "LINE-1", KWh: 1622.0, PeakKW: 198, Status: "running"},
	{Machine: "WELDER A", Line: "LINE-2", KWh: 2310.2, PeakKW: 265, Status: "running"},
	{Machine: "WELDER B", Line: "LINE-2", KWh: 0, PeakKW: 0, Status: "offline"},
	{Machine: "OVEN 1", Line: "PAINT-1", KWh: 3120.8, PeakKW: 340, Status: "running"},
	{Machine: "COMPRESSOR", Line: "UTILITY", KWh: 1475.3, PeakKW: 150, Status: "idle"},
	{Machine: "CNC 4", Line: "LINE-3", KWh: 980.1, PeakKW: 120, Status: "running"},
	{Machine: "CHILLER", Line: "UTILITY", KWh: 1402.6, PeakKW: 175, Status: "maintenance"},
}

// Mock returns the sample dashboard.
func Mock() Data {
	series := make([]Point, len(hourly))
	var total, peak float64
	for h, v := range hourly {
		series[h] = Point{Hour: h, KWh: v}
		total += v
		if v > peak {
			peak = v
		}
	}
	online := 0
	for _, m := range machines {
		if m.Status == "running" {
			online++
		}
	}

	rows := make([]MachineUsage, len(machines))
	copy(rows, machines)
	return Data{
		Cards: []Card{
			{Title: "Total consumption", Value: total, Unit: "kWh", Delta: -3.2},
			{Title: "Peak demand", Value: peak, Unit: "kW", Delta: 1.8},
			{Title: "Machines online", Value: float64(online), Unit: fmt.Sprintf("of %d", len(machines))},
			{Title: "Energy cost", Value: total * 0.142, Unit: "EUR", Delta: -2.5},
		},
		Series:   series,
		Machines: rows,
	}
}

// Filter keeps rows whose machine, line or status contains term, ignoring case.
func Filter(rows []MachineUsage, term string) []MachineUsage {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]MachineUsage, 0, len(rows))
	for _, r := range rows {
		if term == "" ||
			strings.Contains(strings.ToLower(r.Machine), term) ||
			strings.Contains(strings.ToLower(r.Line), term) ||
			strings.Contains(strings.ToLower(r.Status), term) {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders rows in place by column. Equal keys keep their relative order.
// An unknown column leaves rows untouched.
func Sort(rows []MachineUsage, column string, desc bool) {
	var less func(a, b MachineUsage) bool
	switch column {
	case "machine":
		less = func(a, b MachineUsage) bool { return a.Machine < b.Machine }
	case "line":
		less = func(a, b MachineUsage) bool { return a.Line < b.Line }
	case "kwh":
		less = func(a, b MachineUsage) bool { return a.KWh < b.KWh }
	case "peak_kw":
		less = func(a, b MachineUsage) bool { return a.PeakKW < b.PeakKW }
	case "status":
		less = func(a, b MachineUsage) bool { return a.Status < b.Status }
	default:
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

// Table applies Filter then Sort to the sample machine list.
func Table(term, column string, desc bool) []MachineUsage {
	rows := Filter(Mock().Machines, term)
	Sort(rows, column, desc)
	return rows
}
