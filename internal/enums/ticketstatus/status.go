package ticketstatus

import "strings"

type Status struct {
	Name string
	rank int
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

// Rank reflects the strict forward order of the ticket lifecycle.
// A ticket only ever moves to a higher rank.
func (s Status) Rank() int {
	return s.rank
}

type Enum struct {
	Pending   Status
	Preparing Status
	Ready     Status
	Served    Status
}

var Statuses = Enum{
	Pending:   Status{Name: "pending", rank: 0},
	Preparing: Status{Name: "preparing", rank: 1},
	Ready:     Status{Name: "ready", rank: 2},
	Served:    Status{Name: "served", rank: 3},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Served,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// Next returns the status that follows the given one, or nil when the
// status is terminal or unknown.
func Next(name string) *Status {
	cur := ByName(name)
	if cur == nil {
		return nil
	}
	for _, s := range All {
		if s.rank == cur.rank+1 {
			return &s
		}
	}
	return nil
}

// Active lists the statuses shown on a station display.
func Active() []string {
	return []string{
		Statuses.Pending.Code(),
		Statuses.Preparing.Code(),
		Statuses.Ready.Code(),
	}
}
