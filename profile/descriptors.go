package profile

// Language codes supported by the client.
const (
	LanguageEnglish = "en"
	LanguagePolish  = "pl"
	LanguageSpanish = "es"
)

// Choice is one selectable value of a preference field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldDescriptor describes a preference field for settings screens.
type FieldDescriptor struct {
	Path        string   `json:"path"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Choices     []Choice `json:"options,omitempty"`
}

// Label returns the label of value, or value itself when unknown.
func (d FieldDescriptor) Label(value string) string {
	for _, opt := range d.Choices {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// Allows reports whether value is one of the field's options. Fields without
// options accept anything.
func (d FieldDescriptor) Allows(value string) bool {
	if len(d.Choices) == 0 {
		return true
	}
	for _, opt := range d.Choices {
		if opt.Value == value {
			return true
		}
	}
	return false
}

var (
	languageField = FieldDescriptor{
		Path:        "preferredLanguage",
		Type:        "enum",
		Title:       "Language",
		Description: "Preferred language for the app",
		Choices: []Choice{
			{Value: LanguageEnglish, Label: "English"},
			{Value: LanguagePolish, Label: "Polski"},
			{Value: LanguageSpanish, Label: "Español"},
		},
	}
	unitsField = FieldDescriptor{
		Path:        "unitSystem",
		Type:        "enum",
		Title:       "Units",
		Description: "Measurement system",
		Choices: []Choice{
			{Value: string(Metric), Label: "Metric (kg, cm)"},
			{Value: string(Imperial), Label: "Imperial (lbs, in)"},
		},
	}
	darkModeField = FieldDescriptor{
		Path:        "isDarkModeEnabled",
		Type:        "bool",
		Title:       "Dark Mode",
		Description: "Use a darker color palette",
	}
	emailField = FieldDescriptor{
		Path:        "receiveEmailNotifications",
		Type:        "bool",
		Title:       "Email Notifications",
		Description: "Receive updates via email",
	}
)

// Descriptors lists the preference fields in display order.
func Descriptors() []FieldDescriptor {
	out := []FieldDescriptor{languageField, unitsField, darkModeField, emailField}
	for i := range out {
		out[i].Choices = append([]Choice(nil), out[i].Choices...)
	}
	return out
}

// Descriptor returns the field at path.
func Descriptor(path string) (FieldDescriptor, bool) {
	for _, d := range Descriptors() {
		if d.Path == path {
			return d, true
		}
	}
	return FieldDescriptor{}, false
}
