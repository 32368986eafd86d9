package theme

// Radii are the corner radius steps shared by cards, fields and pills.
type Radii struct {
	SM   int `json:"sm"`
	MD   int `json:"md"`
	LG   int `json:"lg"`
	Pill int `json:"pill"`
}

// DefaultRadii returns the radius scale.
func DefaultRadii() Radii {
	return Radii{SM: 8, MD: 10, LG: 14, Pill: 999}
}

// Spacing returns n steps of the 4pt spacing grid.
func Spacing(n int) int {
	return 4 * n
}
