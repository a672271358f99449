package models

// DeviceClass selects presentation density, nothing else
type DeviceClass string

const (
	DevicePhone   DeviceClass = "phone"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

const (
	PrimaryColor   = "#5C9EAD"
	SecondaryColor = "#ff7b9c"
)

// TypographyVariant is the style of one text variant
type TypographyVariant struct {
	Color      string `json:"color,omitempty"`
	FontSize   string `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
	TextAlign  string `json:"textAlign,omitempty"`
}

// Palette holds the theme colours
type Palette struct {
	Type              string            `json:"type"`
	BackgroundPaper   string            `json:"backgroundPaper"`
	BackgroundDefault string            `json:"backgroundDefault"`
	Primary           string            `json:"primary"`
	Secondary         string            `json:"secondary"`
	Grey              map[string]string `json:"grey"`
}

// Theme is the presentational configuration served to clients
type Theme struct {
	Device     DeviceClass                  `json:"device"`
	FontFamily string                       `json:"fontFamily"`
	TextColor  string                       `json:"textColor"`
	Typography map[string]TypographyVariant `json:"typography"`
	Palette    Palette                      `json:"palette"`
}

// NewTheme builds the theme for a device class. Phones get smaller headings.
func NewTheme(device DeviceClass) Theme {
	phone := device == DevicePhone
	size := func(onPhone, otherwise string) string {
		if phone {
			return onPhone
		}
		return otherwise
	}

	return Theme{
		Device:     device,
		FontFamily: "Roboto Mono",
		TextColor:  "#FFF",
		Typography: map[string]TypographyVariant{
			"h1":       {Color: PrimaryColor, TextAlign: "center", FontSize: size("20px", "40px")},
			"h2":       {Color: SecondaryColor, FontWeight: "bold", FontSize: size("18px", "25px")},
			"h3":       {Color: SecondaryColor, FontWeight: "bold", FontSize: size("15px", "16px")},
			"h4":       {Color: "white", FontSize: "20px"},
			"body1":    {FontSize: "14px"},
			"overline": {Color: "#999", FontSize: size("12px", "13px")},
			"caption":  {FontSize: "16px"},
		},
		Palette: Palette{
			Type:              "dark",
			BackgroundPaper:   "rgba(33, 34, 37, 0.9)",
			BackgroundDefault: "linear-gradient(0deg, rgba(57,9,74,1) 0%, rgba(6,18,98,1) 100%, rgba(57,9,74,1) 100%)",
			Primary:           PrimaryColor,
			Secondary:         SecondaryColor,
			Grey:              map[string]string{"500": "#777"},
		},
	}
}
