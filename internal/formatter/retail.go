package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pi-builder/internal/siteconfig"
)

type retail struct {
	now func() time.Time
}

type retailRecord struct {
	place
	StoreType  string            `json:"storeType"`
	Hours      map[string]string `json:"hours"`
	Categories []string          `json:"categories"`
	Inventory  *struct {
		InStock  *float64 `json:"inStock"`
		LowStock *float64 `json:"lowStock"`
	} `json:"inventory"`
}

func (retail) ID() string { return "retail" }

const retailIcon = "🏪"

func decodeRetail(loc siteconfig.Location) retailRecord {
	var rec retailRecord
	decodeRecord(loc, &rec)
	return rec
}

// stock classifies the inventory: many low-stock items beat a large stock
// count.
func (rec retailRecord) stock() (status, color string) {
	if rec.Inventory == nil {
		return "unknown", colorGray
	}
	switch {
	case val(rec.Inventory.LowStock) > 10:
		return "Low Stock", colorAmber
	case val(rec.Inventory.InStock) > 100:
		return "Well Stocked", colorGreen
	}
	return "Normal", colorBlue
}

func (r retail) TooltipData(loc siteconfig.Location) Tooltip {
	rec := decodeRetail(loc)
	now := r.now()
	open := IsOpen(rec.Hours, now)
	stock, stockColor := rec.stock()

	label := "Closed"
	if open {
		label = "Open"
	}
	return Tooltip{
		Name:     rec.Name,
		Subtitle: cityState(rec.City, rec.State),
		Icon:     retailIcon,
		Color:    rec.Color,
		Stats: []Stat{
			{Label: label, Value: orDefault(ClosingTime(TodayHours(rec.Hours, now)), "Closed"), Color: openColor(open)},
			{Label: "Stock", Value: stock, Color: stockColor},
		},
	}
}

func (r retail) CardData(loc siteconfig.Location) Card {
	rec := decodeRetail(loc)
	now := r.now()
	stock, stockColor := rec.stock()

	status, statusText := "closed", "Closed"
	if IsOpen(rec.Hours, now) {
		status, statusText = "open", "Open"
	}
	return Card{
		ID:         rec.ID,
		Name:       rec.Name,
		Subtitle:   cityState(rec.City, rec.State),
		Icon:       retailIcon,
		Color:      rec.Color,
		Status:     status,
		StatusText: statusText,
		Category:   rec.Category,
		Stats: []Stat{
			{Label: "Type", Value: orDefault(rec.StoreType, "Standard")},
			{Label: "Stock", Value: stock, Color: stockColor},
			{Label: "Closes", Value: orPlaceholder(ClosingTime(TodayHours(rec.Hours, now)))},
		},
	}
}

func (r retail) DetailData(loc siteconfig.Location) Detail {
	rec := decodeRetail(loc)
	now := r.now()

	sections := []Section{hoursSection(rec.Hours, rec.Phone, now)}
	if inv := rec.Inventory; inv != nil {
		sections = append(sections, section("Inventory", grid(
			field{Label: "In Stock", Value: numOr(inv.InStock, "0"), Tone: toneGood},
			field{Label: "Low Stock", Value: numOr(inv.LowStock, "0"), Tone: toneWarn},
		)))
	}
	if len(rec.Categories) > 0 {
		sections = append(sections, section("Departments", chips(rec.Categories)))
	}

	var actions []Action
	if u := rec.link("directions"); u != "" {
		actions = append(actions, Action{Label: "Directions", Icon: "📍", URL: u})
	}
	if u := rec.link("website"); u != "" {
		actions = append(actions, Action{Label: "Website", Icon: "🌐", URL: u})
	}

	return Detail{
		Record:   loc,
		Icon:     retailIcon,
		Subtitle: postalBlock(rec.Address, rec.City, rec.State, rec.Zip),
		Badges: []Badge{
			openBadge(IsOpen(rec.Hours, now)),
			{Text: orDefault(strings.ToUpper(rec.StoreType), "STORE")},
		},
		Sections: sections,
		Actions:  actions,
	}
}

func (r retail) TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat {
	locs := locations(cfg)
	now := r.now()

	var inStock, lowStock float64
	open := 0
	for _, loc := range locs {
		rec := decodeRetail(loc)
		if rec.Inventory != nil {
			inStock += val(rec.Inventory.InStock)
			lowStock += val(rec.Inventory.LowStock)
		}
		if IsOpen(rec.Hours, now) {
			open++
		}
	}

	lowClass := ""
	if lowStock > 20 {
		lowClass = ClassWarning
	}
	return []TickerStat{
		{Label: "Total Inventory", Value: Grouped(inStock)},
		{Label: "Low Stock Items", Value: Num(lowStock), Class: lowClass},
		{Label: "Open Now", Value: fmt.Sprintf("%d/%d", open, len(locs))},
		{Label: "Stores", Value: strconv.Itoa(len(locs)), Class: ClassPrimary},
	}
}
