package theme

// Scheme is the concrete light/dark rendering mode.
type Scheme string

const (
	SchemeLight Scheme = "light"
	SchemeDark  Scheme = "dark"
)

// Valid reports whether s is one of the two concrete schemes.
func (s Scheme) Valid() bool {
	return s == SchemeLight || s == SchemeDark
}

// IsDark reports whether s renders dark.
func (s Scheme) IsDark() bool {
	return s == SchemeDark
}

func (s Scheme) String() string {
	return string(s)
}

// ParseScheme converts "light" or "dark" into a Scheme.
func ParseScheme(value string) (Scheme, bool) {
	switch Scheme(value) {
	case SchemeLight, SchemeDark:
		return Scheme(value), true
	default:
		return "", false
	}
}

// SchemeFromDarkMode maps the backend boolean flag onto a Scheme.
func SchemeFromDarkMode(dark bool) Scheme {
	if dark {
		return SchemeDark
	}
	return SchemeLight
}

// Preference is the user's stored intent. PreferenceSystem follows the OS
// appearance and has no concrete Scheme of its own.
type Preference string

const (
	PreferenceLight  Preference = "light"
	PreferenceDark   Preference = "dark"
	PreferenceSystem Preference = "system"
)

// ParsePreference accepts exactly "light", "dark" or "system". Anything else
// (including corrupt stored values) reports false.
func ParsePreference(value string) (Preference, bool) {
	switch Preference(value) {
	case PreferenceLight, PreferenceDark, PreferenceSystem:
		return Preference(value), true
	default:
		return "", false
	}
}

// PreferenceFor returns the explicit preference selecting s.
func PreferenceFor(s Scheme) Preference {
	if s == SchemeDark {
		return PreferenceDark
	}
	return PreferenceLight
}

// Concrete returns the Scheme p pins, or false for PreferenceSystem and
// invalid values.
func (p Preference) Concrete() (Scheme, bool) {
	switch p {
	case PreferenceLight:
		return SchemeLight, true
	case PreferenceDark:
		return SchemeDark, true
	default:
		return "", false
	}
}

// Resolve returns the concrete scheme for p, using system when p follows the
// OS. An invalid system value resolves to light.
func (p Preference) Resolve(system Scheme) Scheme {
	if scheme, ok := p.Concrete(); ok {
		return scheme
	}
	if system.Valid() {
		return system
	}
	return SchemeLight
}

func (p Preference) String() string {
	return string(p)
}
