package formatter

import (
	"strconv"
	"strings"
	"time"

	"pi-builder/internal/siteconfig"
)

type events struct {
	now func() time.Time
}

type nextEvent struct {
	Name             string   `json:"name"`
	Date             string   `json:"date"`
	TicketsAvailable *float64 `json:"ticketsAvailable"`
	Price            *float64 `json:"price"`
}

type eventsRecord struct {
	place
	VenueType string     `json:"venueType"`
	Capacity  *float64   `json:"capacity"`
	Amenities []string   `json:"amenities"`
	NextEvent *nextEvent `json:"nextEvent"`
}

func (events) ID() string { return "events" }

const eventsIcon = "🎭"

func decodeEvents(loc siteconfig.Location) eventsRecord {
	var rec eventsRecord
	decodeRecord(loc, &rec)
	return rec
}

// upcoming reports a next event dated after now. Unparsable dates are not
// upcoming.
func (rec eventsRecord) upcoming(now time.Time) bool {
	if rec.NextEvent == nil {
		return false
	}
	t, ok := ParseDate(rec.NextEvent.Date)
	return ok && t.After(now)
}

func (events) TooltipData(loc siteconfig.Location) Tooltip {
	rec := decodeEvents(loc)
	next := "None"
	if rec.NextEvent != nil && rec.NextEvent.Name != "" {
		next = truncate(rec.NextEvent.Name, 15)
	}
	return Tooltip{
		Name:     rec.Name,
		Subtitle: cityState(rec.City, rec.State),
		Icon:     eventsIcon,
		Color:    rec.Color,
		Stats: []Stat{
			{Label: "Capacity", Value: groupedOr(rec.Capacity, Placeholder)},
			{Label: "Next Event", Value: next},
		},
	}
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (e events) CardData(loc siteconfig.Location) Card {
	rec := decodeEvents(loc)
	status, statusText := "idle", "No Events"
	if rec.upcoming(e.now()) {
		status, statusText = "upcoming", "Upcoming"
	}
	next := Placeholder
	if rec.NextEvent != nil {
		next = FormatDate(rec.NextEvent.Date)
	}
	return Card{
		ID:         rec.ID,
		Name:       rec.Name,
		Subtitle:   cityState(rec.City, rec.State),
		Icon:       eventsIcon,
		Color:      rec.Color,
		Status:     status,
		StatusText: statusText,
		Category:   rec.VenueType,
		Stats: []Stat{
			{Label: "Capacity", Value: groupedOr(rec.Capacity, Placeholder)},
			{Label: "Next", Value: next},
			{Label: "Type", Value: orPlaceholder(rec.VenueType)},
		},
	}
}

func (events) DetailData(loc siteconfig.Location) Detail {
	rec := decodeEvents(loc)

	sections := []Section{section("Venue Info", grid(
		field{Label: "Capacity", Value: groupedOr(rec.Capacity, Placeholder), Tone: toneAccent},
		field{Label: "Type", Value: orPlaceholder(rec.VenueType)},
	))}

	badge := Badge{Text: "NO EVENTS", Color: tintGray, TextColor: colorGray}
	if ev := rec.NextEvent; ev != nil {
		badge = Badge{Text: "UPCOMING EVENT", Color: tintPink, TextColor: colorPink}

		content := lead(field{Label: ev.Name, Note: FormatDate(ev.Date)})
		var extra []field
		if ev.TicketsAvailable != nil {
			tone := toneWarn
			if *ev.TicketsAvailable > 100 {
				tone = toneGood
			}
			extra = append(extra, field{Label: "Tickets Available", Value: Grouped(*ev.TicketsAvailable), Tone: tone})
		}
		if truthy(ev.Price) {
			extra = append(extra, field{Label: "Starting Price", Value: "$" + Num(*ev.Price)})
		}
		if len(extra) > 0 {
			content = join(content, rows(extra...))
		}
		sections = append(sections, section("Next Event", content))
	}
	if len(rec.Amenities) > 0 {
		sections = append(sections, section("Amenities", chips(rec.Amenities)))
	}

	var actions []Action
	if u := rec.link("tickets"); u != "" {
		actions = append(actions, Action{Label: "Buy Tickets", Icon: "🎫", URL: u, Primary: true})
	}
	if u := rec.link("seating"); u != "" {
		actions = append(actions, Action{Label: "Seating Chart", Icon: "🪑", URL: u})
	}
	if u := rec.link("directions"); u != "" {
		actions = append(actions, Action{Label: "Directions", Icon: "📍", URL: u})
	}

	return Detail{
		Record:   loc,
		Icon:     eventsIcon,
		Subtitle: postalBlock(rec.Address, rec.City, rec.State, rec.Zip),
		Badges: []Badge{
			badge,
			{Text: orDefault(strings.ToUpper(rec.VenueType), "VENUE")},
		},
		Sections: sections,
		Actions:  actions,
	}
}

func (e events) TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat {
	locs := locations(cfg)
	now := e.now()

	var capacity, tickets float64
	upcoming := 0
	for _, loc := range locs {
		rec := decodeEvents(loc)
		capacity += val(rec.Capacity)
		if rec.upcoming(now) {
			upcoming++
		}
		if rec.NextEvent != nil {
			tickets += val(rec.NextEvent.TicketsAvailable)
		}
	}
	return []TickerStat{
		{Label: "Total Capacity", Value: Grouped(capacity), Class: ClassPrimary},
		{Label: "Upcoming Events", Value: strconv.Itoa(upcoming)},
		{Label: "Tickets Available", Value: Grouped(tickets)},
		{Label: "Venues", Value: strconv.Itoa(len(locs))},
	}
}
