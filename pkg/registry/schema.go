// pkg/registry/schema.go
package registry

const (
	StatusReady  = "ready"
	StatusCustom = "custom"
)

// Colors is a template's default palette.
type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// TemplateDescriptor is the static metadata of one industry template.
type TemplateDescriptor struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Icon         string   `json:"icon"`
	DetailFields []string `json:"detailFields"`
	Metrics      []string `json:"metrics"`
	Colors       Colors   `json:"colors"`
	Accent       string   `json:"accent,omitempty"`
	Status       string   `json:"status"`
	// BasedOn names the built-in a forked template was copied from.
	BasedOn string `json:"basedOn,omitempty"`
}

// Industry is the formatter key for the descriptor. Forked templates keep
// formatting like the template they were forked from.
func (d *TemplateDescriptor) Industry() string {
	if d.BasedOn != "" {
		return d.BasedOn
	}
	return d.ID
}

// DescriptorFile is the file name fork writes next to template.js.
const DescriptorFile = "template.json"
