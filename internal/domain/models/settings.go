package models

// Settings holds the company-wide configuration captured by the setup wizard.
// A nil *Settings means the app has never been set up and gates every page
// behind the wizard.
type Settings struct {
	CompanyName      string `json:"companyName"`
	NumberOfMachines int    `json:"numberOfMachines"`
}

// Theme is the dashboard color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle flips between light and dark. Unknown values normalize to light.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
