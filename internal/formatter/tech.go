package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pi-builder/internal/siteconfig"
)

// tech renders AI and API providers. Records are providers rather than
// physical sites, but they still carry lat/lon for the globe.
type tech struct{}

type techRecord struct {
	place
	HQ            string   `json:"hq"`
	Founded       string   `json:"founded"`
	Trend         string   `json:"trend"`
	Models        []string `json:"models"`
	Website       string   `json:"website"`
	Docs          string   `json:"docs"`
	APIPlayground string   `json:"apiPlayground"`
	MonthlyTokens *float64 `json:"monthlyTokens"`
	Pricing       *struct {
		Input  *float64 `json:"input"`
		Output *float64 `json:"output"`
	} `json:"pricing"`
	Performance *struct {
		TokensPerSec *float64 `json:"tokensPerSec"`
		Latency      *float64 `json:"latency"`
	} `json:"performance"`
	ContextWindow *struct {
		Reported *float64 `json:"reported"`
		Actual   *float64 `json:"actual"`
	} `json:"contextWindow"`
}

func (tech) ID() string { return "tech" }

func decodeTech(loc siteconfig.Location) techRecord {
	var rec techRecord
	decodeRecord(loc, &rec)
	return rec
}

func (rec techRecord) icon() string { return orDefault(rec.Logo, "💻") }

func (rec techRecord) input() *float64 {
	if rec.Pricing == nil {
		return nil
	}
	return rec.Pricing.Input
}

func (rec techRecord) output() *float64 {
	if rec.Pricing == nil {
		return nil
	}
	return rec.Pricing.Output
}

func (rec techRecord) speed() *float64 {
	if rec.Performance == nil {
		return nil
	}
	return rec.Performance.TokensPerSec
}

func (rec techRecord) latency() *float64 {
	if rec.Performance == nil {
		return nil
	}
	return rec.Performance.Latency
}

func (rec techRecord) trendIcon() string {
	switch rec.Trend {
	case "up":
		return "📈"
	case "down":
		return "📉"
	}
	return "➡️"
}

func (rec techRecord) trendLabel() string {
	switch rec.Trend {
	case "up":
		return "📈 Growing"
	case "down":
		return "📉 Declining"
	}
	return "➡️ Stable"
}

func (tech) TooltipData(loc siteconfig.Location) Tooltip {
	rec := decodeTech(loc)
	return Tooltip{
		Name:     rec.Name,
		Subtitle: rec.HQ,
		Icon:     rec.icon(),
		Color:    rec.Color,
		Stats: []Stat{
			{Label: "Speed", Value: numOr(rec.speed(), Placeholder) + "/s", Color: colorGreen},
			{Label: "Trend", Value: rec.trendIcon()},
			{Label: "Output", Value: "$" + numOr(rec.output(), Placeholder) + "/M", Color: colorAmber},
			{Label: "Status", Value: orDefault(rec.Status, "online"), Color: colorGreen},
		},
	}
}

func (tech) CardData(loc siteconfig.Location) Card {
	rec := decodeTech(loc)
	return Card{
		ID:         rec.ID,
		Name:       rec.Name,
		Subtitle:   orDefault(rec.HQ, rec.Category),
		Icon:       rec.icon(),
		Color:      rec.Color,
		Status:     orDefault(rec.Status, "online"),
		StatusText: orDefault(rec.Status, "Online"),
		Category:   rec.Category,
		Stats: []Stat{
			{Label: "Input", Value: FormatCurrency(rec.input()), Color: colorAmber},
			{Label: "Output", Value: FormatCurrency(rec.output()), Color: colorAmber},
			{Label: "Speed", Value: numOr(rec.speed(), Placeholder) + "/s", Color: colorGreen},
		},
	}
}

func (tech) DetailData(loc siteconfig.Location) Detail {
	rec := decodeTech(loc)

	var sections []Section
	if len(rec.Models) > 0 {
		sections = append(sections, section("Models", chips(rec.Models)))
	}
	sections = append(sections,
		section("Pricing (per 1M tokens)", grid(
			field{Label: "Input", Value: FormatCurrency(rec.input()), Tone: toneWarn},
			field{Label: "Output", Value: FormatCurrency(rec.output()), Tone: toneWarn},
		)),
		section("Performance", grid(
			field{Label: "Speed", Value: numOr(rec.speed(), Placeholder), Note: "tokens/sec", Tone: toneGood},
			field{Label: "Latency", Value: numOr(rec.latency(), Placeholder) + "s", Note: "first token", Tone: toneAccent},
		)),
	)

	if cw := rec.ContextWindow; cw != nil {
		percent := "N/A"
		width := 0
		if reported := val(cw.Reported); reported > 0 {
			ratio := val(cw.Actual) / reported * 100
			percent = ToFixed(ratio, 0)
			width = int(math.Max(0, math.Min(100, math.Round(ratio))))
		}
		sections = append(sections, section("Context Window", join(
			rows(field{Label: "Effective", Value: percent + "%"}),
			grid(
				field{Label: "Reported", Value: FormatNumber(val(cw.Reported)), Note: "reported", Tone: toneAccent},
				field{Label: "Tested", Value: FormatNumber(val(cw.Actual)), Note: "tested", Tone: toneWarn},
			),
			meterBar(meter{Percent: width, Tone: toneAccent}),
		)))
	}

	var actions []Action
	if rec.Website != "" {
		actions = append(actions, Action{Label: "Website", Icon: "🌐", URL: rec.Website})
	}
	if rec.Docs != "" {
		actions = append(actions, Action{Label: "Docs", Icon: "📚", URL: rec.Docs})
	}
	if rec.APIPlayground != "" {
		actions = append(actions, Action{Label: "Playground", Icon: "🔗", URL: rec.APIPlayground, Primary: true})
	}

	tint := ""
	if rec.Color != "" {
		tint = rec.Color + "20"
	}
	return Detail{
		Record:   loc,
		Icon:     rec.icon(),
		Subtitle: fmt.Sprintf("Founded %s • %s", orPlaceholder(rec.Founded), rec.HQ),
		Badges: []Badge{
			{Text: orDefault(strings.ToUpper(rec.Category), "TECH"), Color: tint, TextColor: rec.Color},
			{Text: orDefault(strings.ToUpper(rec.Status), "ONLINE"), Color: tintGreen, TextColor: colorGreen},
			{Text: rec.trendLabel()},
		},
		Sections: sections,
		Actions:  actions,
	}
}

func (tech) TickerStats(cfg *siteconfig.BusinessConfig) []TickerStat {
	s := SummarizeProviders(locations(cfg))
	return []TickerStat{
		{Label: "Total Tokens/Month", Value: FormatNumber(s.TotalTokens)},
		{Label: "Est. Monthly Cost", Value: "$" + ToFixed(s.MonthlyCost, 2), Class: ClassWarning},
		{Label: "Avg Latency", Value: ToFixed(s.AvgLatency, 2) + "s"},
		{Label: "Active Providers", Value: strconv.Itoa(s.Active), Class: ClassPrimary},
	}
}

// ProviderSummary aggregates tech provider records.
type ProviderSummary struct {
	Total       int
	Active      int
	TotalTokens float64
	MonthlyCost float64
	// AvgLatency averages over every provider; missing latencies count as 0.
	AvgLatency float64
	// Fastest is the id with the highest tokensPerSec, Cheapest the id with
	// the lowest output price. Both are "" when no provider reports the value.
	Fastest  string
	Cheapest string
}

func SummarizeProviders(locs []siteconfig.Location) ProviderSummary {
	s := ProviderSummary{Total: len(locs)}
	var latency float64
	bestSpeed, bestPrice := math.Inf(-1), math.Inf(1)
	for _, loc := range locs {
		rec := decodeTech(loc)
		tokens := val(rec.MonthlyTokens)
		s.TotalTokens += tokens
		s.MonthlyCost += tokens / 1e6 * val(rec.output())
		latency += val(rec.latency())
		if rec.Status == "online" {
			s.Active++
		}
		if p := rec.speed(); p != nil && *p > bestSpeed {
			bestSpeed, s.Fastest = *p, rec.ID
		}
		if p := rec.output(); p != nil && *p < bestPrice {
			bestPrice, s.Cheapest = *p, rec.ID
		}
	}
	if len(locs) > 0 {
		s.AvgLatency = latency / float64(len(locs))
	}
	return s
}
