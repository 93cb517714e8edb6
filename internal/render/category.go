package render

import "strings"

// Category is the closed set of vehicle kinds the renderer styles.
type Category int

const (
	CategoryPassenger Category = iota
	CategoryTruck
	CategoryBus
	CategoryMotorcycle
	CategoryBicycle
	CategoryEmergency
)

func (c Category) String() string {
	switch c {
	case CategoryTruck:
		return "truck"
	case CategoryBus:
		return "bus"
	case CategoryMotorcycle:
		return "motorcycle"
	case CategoryBicycle:
		return "bicycle"
	case CategoryEmergency:
		return "emergency"
	default:
		return "passenger"
	}
}

// categoryRules maps type-tag substrings to categories, evaluated in
// order. First match wins.
var categoryRules = []struct {
	pattern string
	cat     Category
}{
	{"bus", CategoryBus},
	{"truck", CategoryTruck},
	{"trailer", CategoryTruck},
	{"motorcycle", CategoryMotorcycle},
	{"moped", CategoryMotorcycle},
	{"bicycle", CategoryBicycle},
	{"emergency", CategoryEmergency},
	{"police", CategoryEmergency},
	{"ambulance", CategoryEmergency},
}

// CategoryForType infers a vehicle category from a free-text type tag.
// Unmatched tags default to passenger.
func CategoryForType(tag string) Category {
	tag = strings.ToLower(tag)
	for _, r := range categoryRules {
		if strings.Contains(tag, r.pattern) {
			return r.cat
		}
	}
	return CategoryPassenger
}
