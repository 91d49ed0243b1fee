package station

import "strings"

type Station struct {
	Name string
}

func (s Station) Code() string {
	return s.Name
}

func (s Station) Label() string {
	if len(s.Name) == 0 {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

type Enum struct {
	Kitchen Station
	Bar     Station
}

var Stations = Enum{
	Kitchen: Station{Name: "kitchen"},
	Bar:     Station{Name: "bar"},
}

var All = []Station{
	Stations.Kitchen,
	Stations.Bar,
}

// ByName returns the station for a given name, or nil if not found
func ByName(name string) *Station {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// ForItemType returns the station that produces items of the given type
// (food is plated in the kitchen, drinks are mixed at the bar).
func ForItemType(itemType string) *Station {
	switch itemType {
	case "food":
		s := Stations.Kitchen
		return &s
	case "drink":
		s := Stations.Bar
		return &s
	default:
		return nil
	}
}

// ItemType returns the order item type produced at this station.
func (s Station) ItemType() string {
	switch s.Name {
	case "kitchen":
		return "food"
	case "bar":
		return "drink"
	default:
		return ""
	}
}
