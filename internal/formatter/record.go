package formatter

import (
	"github.com/mitchellh/mapstructure"

	"pi-builder/internal/siteconfig"
)

// place holds the fields every industry record shares. Industry records
// embed it and add their own optional fields; pointers distinguish an absent
// number from zero.
type place struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Phone    string `json:"phone"`
	Logo     string `json:"logo"`

	Links map[string]string `json:"links"`
}

func (p place) link(key string) string {
	return p.Links[key]
}

// decodeRecord fills out from loc. Fields whose values have the wrong shape
// are left at their zero value; the rest still decode.
func decodeRecord(loc siteconfig.Location, out interface{}) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           out,
	})
	if err != nil {
		return
	}
	_ = dec.Decode(map[string]interface{}(loc))
}

// val returns *p or 0.
func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// truthy reports a present, non-zero number.
func truthy(p *float64) bool {
	return p != nil && *p != 0
}

// numOr renders a present, non-zero number or def.
func numOr(p *float64, def string) string {
	if !truthy(p) {
		return def
	}
	return Num(*p)
}

// groupedOr renders a present, non-zero number with separators, or def.
func groupedOr(p *float64, def string) string {
	if !truthy(p) {
		return def
	}
	return Grouped(*p)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
