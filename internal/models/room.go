package models

// Room is a static catalog entry: a named container of sleeping slots.
// Identity is the trimmed Name; Description is display metadata only.
type Room struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Slots       []string `yaml:"slots" json:"slots"`
}

func (r Room) HasSlot(slot string) bool {
	for _, s := range r.Slots {
		if s == slot {
			return true
		}
	}
	return false
}
