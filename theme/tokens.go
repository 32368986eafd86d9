package theme

// Tokens is the semantic style table derived from a Theme. Components read
// tokens rather than raw palette entries.
type Tokens struct {
	Primary         string `json:"primary"`
	OnPrimary       string `json:"onPrimary"`
	TextStrong      string `json:"textStrong"`
	TextMuted       string `json:"textMuted"`
	TextPlaceholder string `json:"textPlaceholder"`
	TextError       string `json:"textError"`
	TextSuccess     string `json:"textSuccess"`
	TextLink        string `json:"textLink"`
	Card            string `json:"card"`
	CardBorder      string `json:"cardBorder"`
	Divider         string `json:"divider"`
	FieldBg         string `json:"fieldBg"`
	FieldBorder     string `json:"fieldBorder"`
	GhostBg         string `json:"ghostBg"`
	PillBg          string `json:"pillBg"`
	PillBorder      string `json:"pillBorder"`
	PillText        string `json:"pillText"`
	RowBg           string `json:"rowBg"`
	RowBorder       string `json:"rowBorder"`
	ButtonSuccess   string `json:"buttonSuccess"`
}

// TokenEntry is one named token value, used for listings and previews.
type TokenEntry struct {
	Name  string
	Value string
}

// Entries lists the tokens in declaration order.
func (t Tokens) Entries() []TokenEntry {
	return []TokenEntry{
		{"primary", t.Primary},
		{"onPrimary", t.OnPrimary},
		{"textStrong", t.TextStrong},
		{"textMuted", t.TextMuted},
		{"textPlaceholder", t.TextPlaceholder},
		{"textError", t.TextError},
		{"textSuccess", t.TextSuccess},
		{"textLink", t.TextLink},
		{"card", t.Card},
		{"cardBorder", t.CardBorder},
		{"divider", t.Divider},
		{"fieldBg", t.FieldBg},
		{"fieldBorder", t.FieldBorder},
		{"ghostBg", t.GhostBg},
		{"pillBg", t.PillBg},
		{"pillBorder", t.PillBorder},
		{"pillText", t.PillText},
		{"rowBg", t.RowBg},
		{"rowBorder", t.RowBorder},
		{"buttonSuccess", t.ButtonSuccess},
	}
}

// surfaces holds the few tints that are not palette entries.
type surfaces struct {
	placeholder string
	field       string
	ghost       string
	row         string
}

var schemeSurfaces = map[Scheme]surfaces{
	SchemeLight: {placeholder: "#9ca3af", field: "#f9fafb", ghost: "#f3f4f6", row: "#f7f8fa"},
	SchemeDark:  {placeholder: "#6b7280", field: "#11141a", ghost: "#1f2430", row: "#1b1f27"},
}

// BuildTokens derives the semantic table from th.
func BuildTokens(th Theme) Tokens {
	s, ok := schemeSurfaces[th.Scheme]
	if !ok {
		s = schemeSurfaces[SchemeLight]
	}
	c := th.Colors
	pillText := c.Accent
	if th.Scheme.IsDark() {
		pillText = c.Text
	}
	return Tokens{
		Primary:         c.Accent,
		OnPrimary:       "#ffffff",
		TextStrong:      c.Text,
		TextMuted:       c.Muted,
		TextPlaceholder: s.placeholder,
		TextError:       c.Danger,
		TextSuccess:     c.Success,
		TextLink:        c.Accent,
		Card:            c.CardBg,
		CardBorder:      c.Border,
		Divider:         c.Border,
		FieldBg:         s.field,
		FieldBorder:     c.Border,
		GhostBg:         s.ghost,
		PillBg:          c.AccentSoft,
		PillBorder:      c.Accent,
		PillText:        pillText,
		RowBg:           s.row,
		RowBorder:       c.Border,
		ButtonSuccess:   c.Success,
	}
}

type resolved struct {
	theme  Theme
	tokens Tokens
}

// Built once; both schemes are known up front.
var memo = map[Scheme]resolved{
	SchemeLight: {theme: lightTheme, tokens: BuildTokens(lightTheme)},
	SchemeDark:  {theme: darkTheme, tokens: BuildTokens(darkTheme)},
}

// Resolve returns the memoised theme and tokens for scheme.
func Resolve(scheme Scheme) (Theme, Tokens) {
	r, ok := memo[scheme]
	if !ok {
		r = memo[SchemeLight]
	}
	return r.theme, r.tokens
}
