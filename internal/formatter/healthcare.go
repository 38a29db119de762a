package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"pi-builder/internal/siteconfig"
)

type healthcare struct{}

type healthcareRecord struct {
	place
	FacilityType  string   `json:"facilityType"`
	WaitTime      *float64 `json:"waitTime"`
	Rating        *float64 `json:"rating"`
	Satisfaction  *float64 `json:"satisfaction"`
	Services      []string `json:"services"`
	Insurance     []string `json:"insurance"`
	EmergencyRoom bool     `json:"emergencyRoom"`
}

func (healthcare) ID() string { return "healthcare" }

const healthcareIcon = "🏥"

func decodeHealthcare(loc siteconfig.Location) healthcareRecord {
	var rec healthcareRecord
	decodeRecord(loc, &rec)
	return rec
}

func (rec healthcareRecord) closed() bool { return rec.Status == "closed" }

func (healthcare) TooltipData(loc siteconfig.Location) Tooltip {
	rec := decodeHealthcare(loc)
	color := colorGreen
	if val(rec.WaitTime) > 30 {
		color = colorAmber
	}
	return Tooltip{
		Name:     rec.Name,
		Subtitle: cityState(rec.City, rec.State),
		Icon:     healthcareIcon,
		Color:    rec.Color,
		Stats: []Stat{
			{Label: "Wait Time", Value: FormatWaitTime(val(rec.WaitTime)), Color: color},
			{Label: "Type", Value: orDefault(rec.FacilityType, "Clinic")},
		},
	}
}

// waitColor grades a wait: over 45 minutes is red, over 30 amber.
func waitColor(minutes float64) string {
	switch {
	case minutes > 45:
		return colorRed
	case minutes > 30:
		return colorAmber
	}
	return colorGreen
}

func (healthcare) CardData(loc siteconfig.Location) Card {
	rec := decodeHealthcare(loc)
	statusText := "Open"
	if rec.closed() {
		statusText = "Closed"
	}
	rating := Placeholder
	if truthy(rec.Rating) {
		rating = "⭐ " + Num(*rec.Rating)
	}
	return Card{
		ID:         rec.ID,
		Name:       rec.Name,
		Subtitle:   cityState(rec.City, rec.State),
		Icon:       healthcareIcon,
		Color:      rec.Color,
		Status:     orDefault(rec.Status, "open"),
		StatusText: statusText,
		Category:   rec.FacilityType,
		Stats: []Stat{
			{Label: "Wait", Value: FormatWaitTime(val(rec.WaitTime)), Color: waitColor(val(rec.WaitTime))},
			{Label: "Rating", Value: rating},
			{Label: "Type", Value: orPlaceholder(rec.FacilityType)},
		},
	}
}

func (healthcare) DetailData(loc siteconfig.Location) Detail {
	rec := decodeHealthcare(loc)

	waitTone := toneGood
	if val(rec.WaitTime) > 30 {
		waitTone = toneWarn
	}
	sections := []Section{section("Current Status", grid(
		field{Label: "Wait Time", Value: FormatWaitTime(val(rec.WaitTime)), Tone: waitTone},
		field{Label: "Satisfaction", Value: numOr(rec.Satisfaction, Placeholder) + "%", Tone: toneGood},
	))}
	if len(rec.Services) > 0 {
		sections = append(sections, section("Services", chips(rec.Services)))
	}
	if len(rec.Insurance) > 0 {
		sections = append(sections, section("Insurance Accepted", chips(rec.Insurance)))
	}

	emergency := field{Label: "Emergency", Value: "Not Available"}
	if rec.EmergencyRoom {
		emergency = field{Label: "Emergency", Value: "Available", Tone: toneGood}
	}
	sections = append(sections, section("Contact", rows(telLink("Phone", rec.Phone), emergency)))

	var actions []Action
	if u := rec.link("booking"); u != "" {
		actions = append(actions, Action{Label: "Book Appointment", Icon: "📅", URL: u, Primary: true})
	}
	if u := rec.link("telehealth"); u != "" {
		actions = append(actions, Action{Label: "Telehealth", Icon: "💻", URL: u})
	}
	if u := rec.link("directions"); u != "" {
		actions = append(actions, Action{Label: "Directions", Icon: "📍", URL: u})
	}

	return Detail{
		Record:   loc,
		Icon:     healthcareIcon,
		Subtitle: postalBlock(rec.Address, rec.City, rec.State, rec.Zip),
		Badges: []Badge{
			openBadge(!rec.closed()),
			{Text: orDefault(strings.ToUpper(rec.FacilityType), "FACILITY")},
		},
		Sections: sections,
		Actions:  actions,
	}
}

func (healthcare) TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat {
	locs := locations(cfg)

	var waits, scores []float64
	open := 0
	for _, loc := range locs {
		rec := decodeHealthcare(loc)
		if truthy(rec.WaitTime) {
			waits = append(waits, *rec.WaitTime)
		}
		if truthy(rec.Satisfaction) {
			scores = append(scores, *rec.Satisfaction)
		}
		if !rec.closed() {
			open++
		}
	}

	avgWait := average(waits)
	waitClass := ""
	if avgWait > 30 {
		waitClass = ClassWarning
	}
	return []TickerStat{
		{Label: "Avg. Wait Time", Value: FormatWaitTime(Round(avgWait)), Class: waitClass},
		{Label: "Avg. Satisfaction", Value: Num(Round(average(scores))) + "%", Class: ClassPrimary},
		{Label: "Open Facilities", Value: fmt.Sprintf("%d/%d", open, len(locs))},
		{Label: "Total Facilities", Value: strconv.Itoa(len(locs))},
	}
}
