package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pi-builder/internal/siteconfig"
)

type restaurant struct {
	now func() time.Time
}

type reviewScore struct {
	Rating *float64 `json:"rating"`
	Count  *float64 `json:"count"`
}

type menuItem struct {
	Name    string   `json:"name"`
	Price   *float64 `json:"price"`
	Popular bool     `json:"popular"`
}

type restaurantRecord struct {
	place
	Hours   map[string]string `json:"hours"`
	Menu    []menuItem        `json:"menu"`
	Reviews *struct {
		Yelp   *reviewScore `json:"yelp"`
		Google *reviewScore `json:"google"`
	} `json:"reviews"`
}

func (restaurant) ID() string { return "restaurant" }

const restaurantIcon = "☕"

func (r restaurant) record(loc siteconfig.Location) restaurantRecord {
	var rec restaurantRecord
	decodeRecord(loc, &rec)
	return rec
}

// avgRating averages the non-zero Yelp and Google ratings to one decimal.
func (rec restaurantRecord) avgRating() (string, bool) {
	if rec.Reviews == nil {
		return "", false
	}
	var ratings []float64
	for _, s := range []*reviewScore{rec.Reviews.Yelp, rec.Reviews.Google} {
		if s != nil && truthy(s.Rating) {
			ratings = append(ratings, *s.Rating)
		}
	}
	if len(ratings) == 0 {
		return "", false
	}
	return ToFixed(average(ratings), 1), true
}

func (rec restaurantRecord) totalReviews() float64 {
	if rec.Reviews == nil {
		return 0
	}
	var total float64
	for _, s := range []*reviewScore{rec.Reviews.Yelp, rec.Reviews.Google} {
		if s != nil {
			total += val(s.Count)
		}
	}
	return total
}

func (r restaurant) TooltipData(loc siteconfig.Location) Tooltip {
	rec := r.record(loc)
	now := r.now()
	open := IsOpen(rec.Hours, now)

	label := "Closed"
	if open {
		label = "Open"
	}
	stats := []Stat{{
		Label: label,
		Value: orDefault(ClosingTime(TodayHours(rec.Hours, now)), "Closed"),
		Color: openColor(open),
	}}
	if avg, ok := rec.avgRating(); ok {
		stats = append(stats, Stat{Label: "Rating", Value: "⭐ " + avg, Color: colorGold})
	}

	return Tooltip{
		Name:     rec.Name,
		Subtitle: cityState(rec.City, rec.State),
		Icon:     restaurantIcon,
		Color:    rec.Color,
		Stats:    stats,
	}
}

func (r restaurant) CardData(loc siteconfig.Location) Card {
	rec := r.record(loc)
	now := r.now()
	open := IsOpen(rec.Hours, now)

	rating := Placeholder
	if avg, ok := rec.avgRating(); ok {
		rating = "⭐ " + avg
	}
	reviews := Placeholder
	if total := rec.totalReviews(); total != 0 {
		reviews = Num(total)
	}

	status, statusText := "closed", "Closed"
	if open {
		status, statusText = "open", "Open"
	}
	return Card{
		ID:         rec.ID,
		Name:       rec.Name,
		Subtitle:   cityState(rec.City, rec.State),
		Icon:       restaurantIcon,
		Color:      rec.Color,
		Status:     status,
		StatusText: statusText,
		Category:   rec.Category,
		Stats: []Stat{
			{Label: "Rating", Value: rating, Color: colorGold},
			{Label: "Reviews", Value: reviews},
			{Label: "Closes", Value: orPlaceholder(ClosingTime(TodayHours(rec.Hours, now))), Color: openColor(open)},
		},
	}
}

func (r restaurant) DetailData(loc siteconfig.Location) Detail {
	rec := r.record(loc)
	now := r.now()
	open := IsOpen(rec.Hours, now)

	sections := []Section{hoursSection(rec.Hours, rec.Phone, now)}

	var popular []field
	for _, item := range rec.Menu {
		if !item.Popular {
			continue
		}
		price := "$" + Placeholder
		if item.Price != nil {
			price = "$" + ToFixed(*item.Price, 2)
		}
		popular = append(popular, field{Label: item.Name, Value: price})
		if len(popular) == 5 {
			break
		}
	}
	if len(popular) > 0 {
		sections = append(sections, section("Popular Items", list(popular)))
	}

	if rec.Reviews != nil {
		var cells []field
		if s := rec.Reviews.Yelp; s != nil {
			cells = append(cells, reviewCell("Yelp", s))
		}
		if s := rec.Reviews.Google; s != nil {
			cells = append(cells, reviewCell("Google", s))
		}
		sections = append(sections, section("Reviews", grid(cells...)))
	}

	var actions []Action
	if u := rec.link("directions"); u != "" {
		actions = append(actions, Action{Label: "Directions", Icon: "📍", URL: u})
	}
	if u := rec.link("yelp"); u != "" {
		actions = append(actions, Action{Label: "Yelp", Icon: "⭐", URL: u})
	}
	if u := rec.link("doordash"); u != "" {
		actions = append(actions, Action{Label: "Order", Icon: "🛵", URL: u, Primary: true})
	}

	return Detail{
		Record:   loc,
		Icon:     restaurantIcon,
		Subtitle: postalBlock(rec.Address, rec.City, rec.State, rec.Zip),
		Badges: []Badge{
			openBadge(open),
			{Text: orDefault(strings.ToUpper(rec.Category), "LOCATION")},
		},
		Sections: sections,
		Actions:  actions,
	}
}

// hoursSection renders today's hours, toned by open state, and the phone.
func hoursSection(hours map[string]string, phone string, now time.Time) Section {
	tone := toneBad
	if IsOpen(hours, now) {
		tone = toneGood
	}
	return section("Hours & Contact", rows(
		field{Label: "Today", Value: TodayHours(hours, now), Tone: tone},
		telLink("Phone", phone),
	))
}

func reviewCell(source string, s *reviewScore) field {
	return field{
		Label: source,
		Value: "⭐ " + numOr(s.Rating, Placeholder),
		Note:  fmt.Sprintf("%s reviews", Num(val(s.Count))),
		Tone:  toneAccent,
	}
}

func (r restaurant) TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat {
	locs := locations(cfg)
	now := r.now()

	var total float64
	var ratings []float64
	open := 0
	for _, loc := range locs {
		rec := r.record(loc)
		total += rec.totalReviews()
		if avg, ok := rec.avgRating(); ok {
			f, _ := strconv.ParseFloat(avg, 64)
			ratings = append(ratings, f)
		}
		if IsOpen(rec.Hours, now) {
			open++
		}
	}

	overall := Placeholder
	if len(ratings) > 0 {
		overall = ToFixed(average(ratings), 1)
	}
	openClass := ""
	if open == 0 {
		openClass = ClassWarning
	}
	return []TickerStat{
		{Label: "Total Reviews", Value: Grouped(total)},
		{Label: "Avg Rating", Value: "⭐ " + overall, Class: ClassWarning},
		{Label: "Open Now", Value: fmt.Sprintf("%d/%d", open, len(locs)), Class: openClass},
		{Label: "Locations", Value: strconv.Itoa(len(locs)), Class: ClassPrimary},
	}
}
