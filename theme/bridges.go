package theme

// MaterialColors is the Material 3 color role table handed to component
// libraries that expect MD3 names.
type MaterialColors struct {
	Dark               bool   `json:"dark"`
	Primary            string `json:"primary"`
	PrimaryContainer   string `json:"primaryContainer"`
	Secondary          string `json:"secondary"`
	SecondaryContainer string `json:"secondaryContainer"`
	Tertiary           string `json:"tertiary"`
	Surface            string `json:"surface"`
	SurfaceVariant     string `json:"surfaceVariant"`
	Background         string `json:"background"`
	Error              string `json:"error"`
	ErrorContainer     string `json:"errorContainer"`
	OnPrimary          string `json:"onPrimary"`
	OnSecondary        string `json:"onSecondary"`
	OnTertiary         string `json:"onTertiary"`
	OnSurface          string `json:"onSurface"`
	OnSurfaceVariant   string `json:"onSurfaceVariant"`
	OnBackground       string `json:"onBackground"`
	OnError            string `json:"onError"`
	Outline            string `json:"outline"`
	OutlineVariant     string `json:"outlineVariant"`
	Shadow             string `json:"shadow"`
	Scrim              string `json:"scrim"`
	InverseSurface     string `json:"inverseSurface"`
	InverseOnSurface   string `json:"inverseOnSurface"`
	InversePrimary     string `json:"inversePrimary"`
}

// MaterialColorsFor maps th and tk onto Material role names.
func MaterialColorsFor(th Theme, tk Tokens) MaterialColors {
	return MaterialColors{
		Dark:               th.Scheme.IsDark(),
		Primary:            tk.Primary,
		PrimaryContainer:   th.Colors.AccentSoft,
		Secondary:          th.Colors.Accent,
		SecondaryContainer: th.Colors.AccentSoft,
		Tertiary:           tk.Primary,
		Surface:            th.Colors.CardBg,
		SurfaceVariant:     tk.Card,
		Background:         th.Colors.Bg,
		Error:              tk.TextError,
		ErrorContainer:     tk.TextError,
		OnPrimary:          tk.OnPrimary,
		OnSecondary:        tk.OnPrimary,
		OnTertiary:         tk.OnPrimary,
		OnSurface:          tk.TextStrong,
		OnSurfaceVariant:   tk.TextMuted,
		OnBackground:       tk.TextStrong,
		OnError:            tk.OnPrimary,
		Outline:            tk.CardBorder,
		OutlineVariant:     tk.Divider,
		Shadow:             th.Colors.Border,
		Scrim:              th.Colors.Border,
		InverseSurface:     tk.TextStrong,
		InverseOnSurface:   tk.Card,
		InversePrimary:     tk.Primary,
	}
}

// NavigationColors is the color set navigation containers need.
type NavigationColors struct {
	Dark         bool   `json:"dark"`
	Background   string `json:"background"`
	Card         string `json:"card"`
	Text         string `json:"text"`
	Border       string `json:"border"`
	Primary      string `json:"primary"`
	Notification string `json:"notification"`
}

// NavigationColorsFor derives navigation colors from th. Dark follows the
// theme's resolved scheme, never the stored preference.
func NavigationColorsFor(th Theme) NavigationColors {
	return NavigationColors{
		Dark:         th.Scheme.IsDark(),
		Background:   th.Colors.Bg,
		Card:         th.Colors.CardBg,
		Text:         th.Colors.Text,
		Border:       th.Colors.Border,
		Primary:      th.Colors.Accent,
		Notification: th.Colors.Accent,
	}
}
