package formatter

import (
	"strconv"

	"pi-builder/internal/siteconfig"
)

// generic renders any record using only the shared fields.
type generic struct{}

func (generic) ID() string { return Generic }

const genericIcon = "📍"

func genericStatus(status string) (text, color, tint string) {
	if status == "open" {
		return orDefault(status, "Active"), colorGreen, tintGreen
	}
	return orDefault(status, "Active"), colorRed, tintRed
}

func (generic) TooltipData(loc siteconfig.Location) Tooltip {
	var p place
	decodeRecord(loc, &p)
	text, color, _ := genericStatus(p.Status)
	return Tooltip{
		Name:     p.Name,
		Subtitle: cityState(p.City, p.State),
		Icon:     genericIcon,
		Color:    p.Color,
		Stats:    []Stat{{Label: "Status", Value: text, Color: color}},
	}
}

func (generic) CardData(loc siteconfig.Location) Card {
	var p place
	decodeRecord(loc, &p)
	return Card{
		ID:         p.ID,
		Name:       p.Name,
		Subtitle:   cityState(p.City, p.State),
		Icon:       genericIcon,
		Color:      p.Color,
		Status:     orDefault(p.Status, "active"),
		StatusText: orDefault(p.Status, "Active"),
		Category:   p.Category,
		Stats:      []Stat{},
	}
}

func (generic) DetailData(loc siteconfig.Location) Detail {
	var p place
	decodeRecord(loc, &p)
	text, color, tint := genericStatus(p.Status)
	return Detail{
		Record: loc,
		Icon:   genericIcon,
		Badges: []Badge{
			{Text: text, Color: tint, TextColor: color},
			{Text: orDefault(p.Category, "Location")},
		},
	}
}

func (generic) TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat {
	locs := locations(cfg)
	active := 0
	for _, loc := range locs {
		if loc.String("status") != "closed" {
			active++
		}
	}
	return []TickerStat{
		{Label: "Total Locations", Value: strconv.Itoa(len(locs)), Class: ClassPrimary},
		{Label: "Active", Value: strconv.Itoa(active)},
	}
}
