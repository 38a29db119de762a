package formatter

import (
	"strings"

	"pi-builder/internal/siteconfig"
)

type logistics struct{}

type logisticsRecord struct {
	place
	DepotType       string   `json:"depotType"`
	Utilization     *float64 `json:"utilization"`
	Vehicles        *float64 `json:"vehicles"`
	OnTimeRate      *float64 `json:"onTimeRate"`
	DailyDeliveries *float64 `json:"dailyDeliveries"`
	Capacity        *float64 `json:"capacity"`
	InTransit       *float64 `json:"inTransit"`
	Maintenance     *float64 `json:"maintenance"`
	Available       *float64 `json:"available"`
	Routes          []string `json:"routes"`
}

func (logistics) ID() string { return "logistics" }

const logisticsIcon = "🚚"

func decodeLogistics(loc siteconfig.Location) logisticsRecord {
	var rec logisticsRecord
	decodeRecord(loc, &rec)
	return rec
}

func (rec logisticsRecord) offline() bool { return rec.Status == "offline" }

// utilization returns the percentage and its grade: over 90 red, over 70
// amber.
func (rec logisticsRecord) utilization() (string, string) {
	u := val(rec.Utilization)
	color := colorGreen
	switch {
	case u > 90:
		color = colorRed
	case u > 70:
		color = colorAmber
	}
	return Num(u) + "%", color
}

func (logistics) TooltipData(loc siteconfig.Location) Tooltip {
	rec := decodeLogistics(loc)
	util, utilColor := rec.utilization()
	onTime := Placeholder
	if truthy(rec.OnTimeRate) {
		onTime = Num(*rec.OnTimeRate) + "%"
	}
	return Tooltip{
		Name:     rec.Name,
		Subtitle: cityState(rec.City, rec.State),
		Icon:     logisticsIcon,
		Color:    rec.Color,
		Stats: []Stat{
			{Label: "Utilization", Value: util, Color: utilColor},
			{Label: "Vehicles", Value: numOr(rec.Vehicles, Placeholder)},
			{Label: "On-Time", Value: onTime},
		},
	}
}

func (logistics) CardData(loc siteconfig.Location) Card {
	rec := decodeLogistics(loc)
	util, utilColor := rec.utilization()
	statusText := "Active"
	if rec.offline() {
		statusText = "Offline"
	}
	return Card{
		ID:         rec.ID,
		Name:       rec.Name,
		Subtitle:   cityState(rec.City, rec.State),
		Icon:       logisticsIcon,
		Color:      rec.Color,
		Status:     orDefault(rec.Status, "active"),
		StatusText: statusText,
		Category:   rec.DepotType,
		Stats: []Stat{
			{Label: "Vehicles", Value: numOr(rec.Vehicles, Placeholder)},
			{Label: "Utilization", Value: util, Color: utilColor},
			{Label: "Deliveries", Value: groupedOr(rec.DailyDeliveries, Placeholder)},
		},
	}
}

func (logistics) DetailData(loc siteconfig.Location) Detail {
	rec := decodeLogistics(loc)

	onTimeTone := toneWarn
	if val(rec.OnTimeRate) > 95 {
		onTimeTone = toneGood
	}

	sections := []Section{
		section("Fleet Status", grid(
			field{Label: "Total Vehicles", Value: numOr(rec.Vehicles, "0"), Tone: toneAccent},
			field{Label: "In Transit", Value: numOr(rec.InTransit, "0"), Tone: toneGood},
			field{Label: "Maintenance", Value: numOr(rec.Maintenance, "0"), Tone: toneWarn},
			field{Label: "Available", Value: numOr(rec.Available, "0")},
		)),
		section("Performance", rows(
			field{Label: "On-Time Rate", Value: numOr(rec.OnTimeRate, Placeholder) + "%", Tone: onTimeTone},
			field{Label: "Daily Deliveries", Value: groupedOr(rec.DailyDeliveries, Placeholder)},
			field{Label: "Capacity", Value: groupedOr(rec.Capacity, Placeholder) + " packages"},
		)),
	}
	if len(rec.Routes) > 0 {
		sections = append(sections, section("Active Routes", chips(rec.Routes)))
	}

	var actions []Action
	if u := rec.link("tracking"); u != "" {
		actions = append(actions, Action{Label: "Live Tracking", Icon: "📍", URL: u, Primary: true})
	}
	if u := rec.link("directions"); u != "" {
		actions = append(actions, Action{Label: "Directions", Icon: "🗺️", URL: u})
	}

	status := Badge{Text: "ACTIVE", Color: tintGreen, TextColor: colorGreen}
	if rec.offline() {
		status = Badge{Text: "OFFLINE", Color: tintRed, TextColor: colorRed}
	}
	return Detail{
		Record:   loc,
		Icon:     logisticsIcon,
		Subtitle: postalBlock(rec.Address, rec.City, rec.State, rec.Zip),
		Badges: []Badge{
			status,
			{Text: orDefault(strings.ToUpper(rec.DepotType), "DEPOT")},
		},
		Sections: sections,
		Actions:  actions,
	}
}

func (logistics) TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat {
	var vehicles, deliveries float64
	var onTime, utils []float64
	for _, loc := range locations(cfg) {
		rec := decodeLogistics(loc)
		vehicles += val(rec.Vehicles)
		deliveries += val(rec.DailyDeliveries)
		if truthy(rec.OnTimeRate) {
			onTime = append(onTime, *rec.OnTimeRate)
		}
		if truthy(rec.Utilization) {
			utils = append(utils, *rec.Utilization)
		}
	}

	avgOnTime := average(onTime)
	onTimeClass := ClassWarning
	if avgOnTime > 95 {
		onTimeClass = ""
	}
	return []TickerStat{
		{Label: "Total Vehicles", Value: Num(vehicles), Class: ClassPrimary},
		{Label: "Daily Deliveries", Value: Grouped(deliveries)},
		{Label: "Avg. On-Time", Value: Num(Round(avgOnTime)) + "%", Class: onTimeClass},
		{Label: "Avg. Utilization", Value: Num(Round(average(utils))) + "%"},
	}
}
