// pkg/registry/builtin.go
package registry

// DefaultTemplate is returned for unknown keys.
const DefaultTemplate = "restaurant"

var builtin = []*TemplateDescriptor{
	{
		ID:           "restaurant",
		Name:         "Restaurant / Food Service",
		Description:  "Coffee shops, restaurants, cafes, bakeries",
		Icon:         "🍽️",
		DetailFields: []string{"hours", "menu", "reviews", "phone"},
		Metrics:      []string{"dailySales", "avgTicket", "traffic"},
		Colors:       Colors{Primary: "#d97706", Secondary: "#92400e"},
		Accent:       "#fbbf24",
	},
	{
		ID:           "tech",
		Name:         "Tech / AI Companies",
		Description:  "SaaS, AI providers, tech startups",
		Icon:         "💻",
		DetailFields: []string{"products", "pricing", "performance", "docs"},
		Metrics:      []string{"usage", "latency", "cost"},
		Colors:       Colors{Primary: "#3b82f6", Secondary: "#1e40af"},
		Accent:       "#22c55e",
	},
	{
		ID:           "retail",
		Name:         "Retail / Franchise",
		Description:  "Stores, franchises, showrooms",
		Icon:         "🏪",
		DetailFields: []string{"hours", "categories", "inventory"},
		Metrics:      []string{"sales", "footTraffic", "inventory"},
		Colors:       Colors{Primary: "#10b981", Secondary: "#047857"},
		Accent:       "#34d399",
	},
	{
		ID:           "realestate",
		Name:         "Real Estate",
		Description:  "Properties, listings, developments",
		Icon:         "🏠",
		DetailFields: []string{"price", "sqft", "features", "agent"},
		Metrics:      []string{"priceChange", "daysOnMarket"},
		Colors:       Colors{Primary: "#8b5cf6", Secondary: "#6d28d9"},
		Accent:       "#a78bfa",
	},
	{
		ID:           "healthcare",
		Name:         "Healthcare",
		Description:  "Clinics, hospitals, pharmacies",
		Icon:         "🏥",
		DetailFields: []string{"services", "hours", "insurance", "booking"},
		Metrics:      []string{"waitTime", "satisfaction"},
		Colors:       Colors{Primary: "#ef4444", Secondary: "#b91c1c"},
		Accent:       "#f87171",
	},
	{
		ID:           "logistics",
		Name:         "Logistics / Fleet",
		Description:  "Delivery, trucking, warehouses",
		Icon:         "🚚",
		DetailFields: []string{"vehicles", "routes", "capacity"},
		Metrics:      []string{"deliveries", "onTime", "utilization"},
		Colors:       Colors{Primary: "#f59e0b", Secondary: "#d97706"},
		Accent:       "#fbbf24",
	},
	{
		ID:           "events",
		Name:         "Events / Entertainment",
		Description:  "Venues, festivals, concerts",
		Icon:         "🎭",
		DetailFields: []string{"events", "capacity", "tickets"},
		Metrics:      []string{"ticketSales", "attendance"},
		Colors:       Colors{Primary: "#ec4899", Secondary: "#be185d"},
		Accent:       "#f472b6",
	},
	{
		ID:           "education",
		Name:         "Education",
		Description:  "Schools, universities, tutoring",
		Icon:         "🎓",
		DetailFields: []string{"programs", "faculty", "enrollment"},
		Metrics:      []string{"enrollment", "graduation"},
		Colors:       Colors{Primary: "#06b6d4", Secondary: "#0891b2"},
		Accent:       "#22d3ee",
	},
}

func init() {
	for _, d := range builtin {
		d.Status = StatusReady
	}
}

// Builtin returns copies of the built-in descriptors in declaration order.
func Builtin() []TemplateDescriptor {
	out := make([]TemplateDescriptor, len(builtin))
	for i, d := range builtin {
		out[i] = *d
	}
	return out
}
