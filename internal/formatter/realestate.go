package formatter

import (
	"strconv"
	"strings"

	"pi-builder/internal/siteconfig"
)

type realestate struct{}

type realestateRecord struct {
	place
	PropertyType string   `json:"propertyType"`
	Price        *float64 `json:"price"`
	Sqft         *float64 `json:"sqft"`
	Beds         *float64 `json:"beds"`
	Baths        *float64 `json:"baths"`
	YearBuilt    *float64 `json:"yearBuilt"`
	DaysOnMarket *float64 `json:"daysOnMarket"`
	Features     []string `json:"features"`
	Agent        *struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"agent"`
}

func (realestate) ID() string { return "realestate" }

const realestateIcon = "🏠"

func decodeRealestate(loc siteconfig.Location) realestateRecord {
	var rec realestateRecord
	decodeRecord(loc, &rec)
	return rec
}

func (rec realestateRecord) statusText() string {
	switch rec.Status {
	case "sold":
		return "Sold"
	case "pending":
		return "Pending"
	}
	return "Active"
}

func (rec realestateRecord) listingBadge() Badge {
	switch rec.Status {
	case "sold":
		return Badge{Text: "SOLD", Color: tintRed, TextColor: colorRed}
	case "pending":
		return Badge{Text: "PENDING", Color: tintAmber, TextColor: colorAmber}
	}
	return Badge{Text: "FOR SALE", Color: tintPurple, TextColor: colorPurple}
}

func (realestate) TooltipData(loc siteconfig.Location) Tooltip {
	rec := decodeRealestate(loc)
	return Tooltip{
		Name:     rec.Name,
		Subtitle: cityState(rec.City, rec.State),
		Icon:     realestateIcon,
		Color:    rec.Color,
		Stats: []Stat{
			{Label: "Price", Value: FormatPrice(val(rec.Price)), Color: colorPurple},
			{Label: "Type", Value: orDefault(rec.PropertyType, "Property")},
			{Label: "Sqft", Value: groupedOr(rec.Sqft, Placeholder)},
		},
	}
}

func (realestate) CardData(loc siteconfig.Location) Card {
	rec := decodeRealestate(loc)
	return Card{
		ID:         rec.ID,
		Name:       rec.Name,
		Subtitle:   cityState(rec.City, rec.State),
		Icon:       realestateIcon,
		Color:      rec.Color,
		Status:     orDefault(rec.Status, "active"),
		StatusText: rec.statusText(),
		Category:   rec.PropertyType,
		Stats: []Stat{
			{Label: "Price", Value: FormatPrice(val(rec.Price)), Color: colorPurple},
			{Label: "Sqft", Value: groupedOr(rec.Sqft, Placeholder)},
			{Label: "Beds", Value: numOr(rec.Beds, Placeholder)},
		},
	}
}

func (realestate) DetailData(loc siteconfig.Location) Detail {
	rec := decodeRealestate(loc)

	perSqft := Placeholder
	if truthy(rec.Sqft) && rec.Price != nil {
		perSqft = Grouped(Round(*rec.Price / *rec.Sqft))
	}
	pricing := field{Label: FormatPrice(val(rec.Price)), Value: "$" + perSqft + "/sqft"}
	if truthy(rec.DaysOnMarket) {
		pricing.Note = Num(*rec.DaysOnMarket) + " days on market"
	}

	sections := []Section{
		section("Property Details", grid(
			field{Label: "Bedrooms", Value: numOr(rec.Beds, Placeholder), Tone: toneAccent},
			field{Label: "Bathrooms", Value: numOr(rec.Baths, Placeholder), Tone: toneAccent},
			field{Label: "Square Feet", Value: groupedOr(rec.Sqft, Placeholder), Tone: toneAccent},
			field{Label: "Year Built", Value: numOr(rec.YearBuilt, Placeholder), Tone: toneAccent},
		)),
		section("Pricing", lead(pricing)),
	}
	if len(rec.Features) > 0 {
		sections = append(sections, section("Features", chips(rec.Features)))
	}
	if a := rec.Agent; a != nil {
		sections = append(sections, section("Agent", lead(field{
			Label: "👤 " + a.Name,
			Note:  orDefault(a.Phone, a.Email),
		})))
	}

	var actions []Action
	if u := rec.link("tour"); u != "" {
		actions = append(actions, Action{Label: "Virtual Tour", Icon: "🎥", URL: u, Primary: true})
	}
	if u := rec.link("directions"); u != "" {
		actions = append(actions, Action{Label: "Directions", Icon: "📍", URL: u})
	}

	return Detail{
		Record:   loc,
		Icon:     realestateIcon,
		Subtitle: postalBlock(rec.Address, rec.City, rec.State, rec.Zip),
		Badges: []Badge{
			rec.listingBadge(),
			{Text: orDefault(strings.ToUpper(rec.PropertyType), "PROPERTY")},
		},
		Sections: sections,
		Actions:  actions,
	}
}

func (realestate) TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat {
	locs := locations(cfg)

	var priceSum, daysSum float64
	withDays, active := 0, 0
	for _, loc := range locs {
		rec := decodeRealestate(loc)
		priceSum += val(rec.Price)
		if truthy(rec.DaysOnMarket) {
			daysSum += *rec.DaysOnMarket
			withDays++
		}
		if rec.Status != "sold" {
			active++
		}
	}

	var avgPrice, avgDays float64
	if len(locs) > 0 {
		avgPrice = priceSum / float64(len(locs))
	}
	if withDays > 0 {
		avgDays = daysSum / float64(withDays)
	}
	days := Placeholder
	if r := Round(avgDays); r != 0 {
		days = Num(r)
	}
	return []TickerStat{
		{Label: "Avg. Price", Value: FormatPrice(avgPrice), Class: ClassPrimary},
		{Label: "Avg. Days on Market", Value: days},
		{Label: "Active Listings", Value: strconv.Itoa(active)},
		{Label: "Total Properties", Value: strconv.Itoa(len(locs))},
	}
}
