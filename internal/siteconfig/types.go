package siteconfig

// BusinessConfig is a validated site config. Field names match config.json.
type BusinessConfig struct {
	Business     Business               `json:"business"`
	Locations    []Location             `json:"locations"`
	Custom       map[string]interface{} `json:"custom"`
	Integrations map[string]interface{} `json:"integrations"`
	Vault        Vault                  `json:"vault"`
	Chat         Chat                   `json:"chat"`
	UI           UI                     `json:"ui"`
	Deployment   Deployment             `json:"deployment"`
}

type Business struct {
	Name           string  `json:"name"`
	Tagline        string  `json:"tagline"`
	Logo           *string `json:"logo"`
	PrimaryColor   string  `json:"primaryColor"`
	SecondaryColor string  `json:"secondaryColor"`
	Industry       string  `json:"industry"`
}

type Vault struct {
	Enabled      bool     `json:"enabled"`
	AllowedTypes []string `json:"allowedTypes"`
	MaxSize      string   `json:"maxSize"`
}

type Chat struct {
	Enabled      bool     `json:"enabled"`
	SystemPrompt string   `json:"systemPrompt"`
	Providers    []string `json:"providers"`
}

type UI struct {
	ShowTicker      bool `json:"showTicker"`
	ShowSidebar     bool `json:"showSidebar"`
	ShowChat        bool `json:"showChat"`
	ShowVault       bool `json:"showVault"`
	GlobeAutoRotate bool `json:"globeAutoRotate"`
}

// Deployment.Mode is "local", "cdn" or empty when the document does not pin one.
type Deployment struct {
	Mode string `json:"mode,omitempty"`
}

// Location returns the record with the given id.
func (c *BusinessConfig) Location(id string) (Location, bool) {
	if c == nil {
		return nil, false
	}
	for _, loc := range c.Locations {
		if loc.ID() == id {
			return loc, true
		}
	}
	return nil, false
}

// Categories returns the distinct non-empty categories in display order.
func (c *BusinessConfig) Categories() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, loc := range c.Locations {
		cat := loc.Category()
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}
