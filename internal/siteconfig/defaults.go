package siteconfig

import (
	"pi-builder/internal/common/config"
)

// DefaultDocument returns a fresh copy of the default config document.
// Callers may mutate the result.
func DefaultDocument() map[string]interface{} {
	return map[string]interface{}{
		"business": map[string]interface{}{
			"name":           "My Business",
			"tagline":        "",
			"logo":           nil,
			"primaryColor":   "#3b82f6",
			"secondaryColor": "#1e40af",
			"industry":       "generic",
		},
		"locations":    []interface{}{},
		"custom":       map[string]interface{}{},
		"integrations": map[string]interface{}{},
		"vault": map[string]interface{}{
			"enabled":      false,
			"allowedTypes": []interface{}{"csv", "xlsx", "pdf"},
			"maxSize":      "50MB",
		},
		"chat": map[string]interface{}{
			"enabled":      false,
			"systemPrompt": "",
			"providers":    []interface{}{"groq", "deepseek"},
		},
		"ui": map[string]interface{}{
			"showTicker":      true,
			"showSidebar":     true,
			"showChat":        false,
			"showVault":       false,
			"globeAutoRotate": true,
		},
	}
}

// DefaultConfig is DefaultDocument decoded.
func DefaultConfig() *BusinessConfig {
	return &BusinessConfig{
		Business: Business{
			Name:           "My Business",
			PrimaryColor:   "#3b82f6",
			SecondaryColor: "#1e40af",
			Industry:       "generic",
		},
		Locations:    []Location{},
		Custom:       map[string]interface{}{},
		Integrations: map[string]interface{}{},
		Vault: Vault{
			AllowedTypes: []string{"csv", "xlsx", "pdf"},
			MaxSize:      "50MB",
		},
		Chat: Chat{
			Providers: []string{"groq", "deepseek"},
		},
		UI: UI{
			ShowTicker:      true,
			ShowSidebar:     true,
			GlobeAutoRotate: true,
		},
	}
}

const (
	ModeLocal = "local"
	ModeCDN   = "cdn"
)

// DependencyConfig maps each deployment mode to script locations per library.
type DependencyConfig struct {
	CDN   map[string]string `json:"cdn"`
	Local map[string]string `json:"local"`
}

// DefaultDependencies returns the built-in three.js and d3 locations.
func DefaultDependencies() DependencyConfig {
	return DependencyConfig{
		CDN: map[string]string{
			"threejs": config.DefaultCDNThreeJS,
			"d3":      config.DefaultCDND3,
		},
		Local: map[string]string{
			"threejs": config.DefaultLocalThreeJS,
			"d3":      config.DefaultLocalD3,
		},
	}
}

// DependenciesFromSettings builds the table from CLI settings.
func DependenciesFromSettings(d config.DeploymentConfig) DependencyConfig {
	out := DefaultDependencies()
	for k, v := range d.CDN {
		out.CDN[k] = v
	}
	for k, v := range d.Local {
		out.Local[k] = v
	}
	return out
}

func (d DependencyConfig) forMode(mode string) map[string]string {
	if mode == ModeCDN {
		return d.CDN
	}
	return d.Local
}

// ValidMode reports whether mode is a known deployment mode.
func ValidMode(mode string) bool {
	return mode == ModeLocal || mode == ModeCDN
}
