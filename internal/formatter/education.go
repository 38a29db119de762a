package formatter

import (
	"strconv"
	"strings"

	"pi-builder/internal/siteconfig"
)

type education struct{}

type educationRecord struct {
	place
	CampusType          string   `json:"campusType"`
	Enrollment          *float64 `json:"enrollment"`
	GraduationRate      *float64 `json:"graduationRate"`
	StudentFacultyRatio *float64 `json:"studentFacultyRatio"`
	AcceptanceRate      *float64 `json:"acceptanceRate"`
	Ranking             *float64 `json:"ranking"`
	Programs            []string `json:"programs"`
	Tuition             *struct {
		InState    *float64 `json:"inState"`
		OutOfState *float64 `json:"outOfState"`
	} `json:"tuition"`
}

func (education) ID() string { return "education" }

const educationIcon = "🎓"

func decodeEducation(loc siteconfig.Location) educationRecord {
	var rec educationRecord
	decodeRecord(loc, &rec)
	return rec
}

func percentOr(p *float64) string {
	if !truthy(p) {
		return Placeholder
	}
	return Num(*p) + "%"
}

func (education) TooltipData(loc siteconfig.Location) Tooltip {
	rec := decodeEducation(loc)
	return Tooltip{
		Name:     rec.Name,
		Subtitle: cityState(rec.City, rec.State),
		Icon:     educationIcon,
		Color:    rec.Color,
		Stats: []Stat{
			{Label: "Enrollment", Value: FormatEnrollment(val(rec.Enrollment))},
			{Label: "Type", Value: orDefault(rec.CampusType, "Campus")},
		},
	}
}

func (education) CardData(loc siteconfig.Location) Card {
	rec := decodeEducation(loc)
	statusText := "Active"
	if rec.Status == "closed" {
		statusText = "Closed"
	}
	programs := Placeholder
	if n := len(rec.Programs); n > 0 {
		programs = strconv.Itoa(n)
	}
	return Card{
		ID:         rec.ID,
		Name:       rec.Name,
		Subtitle:   cityState(rec.City, rec.State),
		Icon:       educationIcon,
		Color:      rec.Color,
		Status:     orDefault(rec.Status, "active"),
		StatusText: statusText,
		Category:   rec.CampusType,
		Stats: []Stat{
			{Label: "Enrollment", Value: FormatEnrollment(val(rec.Enrollment))},
			{Label: "Programs", Value: programs},
			{Label: "Grad Rate", Value: percentOr(rec.GraduationRate)},
		},
	}
}

func (education) DetailData(loc siteconfig.Location) Detail {
	rec := decodeEducation(loc)

	sections := []Section{section("Campus Statistics", grid(
		field{Label: "Enrollment", Value: groupedOr(rec.Enrollment, Placeholder), Tone: toneAccent},
		field{Label: "Graduation Rate", Value: numOr(rec.GraduationRate, Placeholder) + "%", Tone: toneGood},
		field{Label: "Student/Faculty", Value: numOr(rec.StudentFacultyRatio, Placeholder) + ":1"},
		field{Label: "Acceptance Rate", Value: numOr(rec.AcceptanceRate, Placeholder) + "%"},
	))}

	if len(rec.Programs) > 0 {
		top := rec.Programs
		if len(top) > 8 {
			top = top[:8]
		}
		sections = append(sections, section("Top Programs", chips(top)))
	}
	if t := rec.Tuition; t != nil {
		sections = append(sections, section("Tuition & Fees", rows(
			field{Label: "In-State", Value: "$" + groupedOr(t.InState, Placeholder) + "/yr"},
			field{Label: "Out-of-State", Value: "$" + groupedOr(t.OutOfState, Placeholder) + "/yr"},
		)))
	}

	badges := []Badge{{Text: orDefault(strings.ToUpper(rec.CampusType), "CAMPUS"), Color: tintCyan, TextColor: colorCyan}}
	if truthy(rec.Ranking) {
		rank := "#" + Num(*rec.Ranking)
		sections = append(sections, section("Rankings", rows(field{Label: "National", Value: rank, Tone: toneAccent})))
		badges = append(badges, Badge{Text: rank + " RANKED"})
	}

	var actions []Action
	if u := rec.link("apply"); u != "" {
		actions = append(actions, Action{Label: "Apply Now", Icon: "📝", URL: u, Primary: true})
	}
	if u := rec.link("tour"); u != "" {
		actions = append(actions, Action{Label: "Virtual Tour", Icon: "🎥", URL: u})
	}
	if u := rec.link("directions"); u != "" {
		actions = append(actions, Action{Label: "Directions", Icon: "📍", URL: u})
	}

	return Detail{
		Record:   loc,
		Icon:     educationIcon,
		Subtitle: postalBlock(rec.Address, rec.City, rec.State, rec.Zip),
		Badges:   badges,
		Sections: sections,
		Actions:  actions,
	}
}

func (education) TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat {
	locs := locations(cfg)

	var enrollment float64
	var rates []float64
	programs := 0
	for _, loc := range locs {
		rec := decodeEducation(loc)
		enrollment += val(rec.Enrollment)
		if truthy(rec.GraduationRate) {
			rates = append(rates, *rec.GraduationRate)
		}
		programs += len(rec.Programs)
	}
	return []TickerStat{
		{Label: "Total Enrollment", Value: FormatEnrollment(enrollment), Class: ClassPrimary},
		{Label: "Avg. Grad Rate", Value: Num(Round(average(rates))) + "%"},
		{Label: "Total Programs", Value: strconv.Itoa(programs)},
		{Label: "Campuses", Value: strconv.Itoa(len(locs))},
	}
}
