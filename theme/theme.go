package theme

// Colors is the raw palette for one scheme.
type Colors struct {
	Bg         string `json:"bg"`
	CardBg     string `json:"cardBg"`
	Border     string `json:"border"`
	Text       string `json:"text"`
	Muted      string `json:"muted"`
	Accent     string `json:"accent"`
	AccentSoft string `json:"accentSoft"`
	Danger     string `json:"danger"`
	Success    string `json:"success"`
}

// Theme pairs a scheme with its palette.
type Theme struct {
	Scheme Scheme `json:"scheme"`
	Colors Colors `json:"colors"`
}

var lightTheme = Theme{
	Scheme: SchemeLight,
	Colors: Colors{
		Bg:         "#fdfdfd",
		CardBg:     "#ffffff",
		Border:     "#dddddd",
		Text:       "#222222",
		Muted:      "#6b7280",
		Accent:     "#007BFF",
		AccentSoft: "#B7D3FF",
		Danger:     "#EF4444",
		Success:    "#10B981",
	},
}

var darkTheme = Theme{
	Scheme: SchemeDark,
	Colors: Colors{
		Bg:         "#0f1115",
		CardBg:     "#171a21",
		Border:     "#2a2f3a",
		Text:       "#e5e7eb",
		Muted:      "#9ca3af",
		Accent:     "#4F8EF7",
		AccentSoft: "#334C7A",
		Danger:     "#F87171",
		Success:    "#34D399",
	},
}

// For returns the theme for scheme. Unknown values get the light theme.
func For(scheme Scheme) Theme {
	if scheme == SchemeDark {
		return darkTheme
	}
	return lightTheme
}
