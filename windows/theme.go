package windows

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// LedgerTheme is a warm, high contrast theme for use at the counter.
type LedgerTheme struct{}

var _ fyne.Theme = (*LedgerTheme)(nil)

func (m LedgerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if variant == theme.VariantLight {
		switch name {
		case theme.ColorNameBackground:
			return color.NRGBA{R: 0xfb, G: 0xf7, B: 0xf0, A: 0xff} // Cream
		case theme.ColorNameButton, theme.ColorNamePrimary:
			return color.NRGBA{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff} // Tomato red
		case theme.ColorNameHover:
			return color.NRGBA{R: 0xe7, G: 0x6f, B: 0x51, A: 0xff}
		case theme.ColorNameForeground:
			return color.NRGBA{R: 0x2b, G: 0x22, B: 0x1c, A: 0xff}
		case theme.ColorNameInputBackground:
			return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		case theme.ColorNameSelection:
			return color.NRGBA{R: 0xf6, G: 0xd8, B: 0xae, A: 0xff}
		case theme.ColorNameError:
			return color.NRGBA{R: 0x9b, G: 0x1c, B: 0x1c, A: 0xff}
		}
	} else {
		switch name {
		case theme.ColorNameBackground:
			return color.NRGBA{R: 0x1f, G: 0x1a, B: 0x17, A: 0xff}
		case theme.ColorNameButton, theme.ColorNamePrimary:
			return color.NRGBA{R: 0xe7, G: 0x6f, B: 0x51, A: 0xff}
		case theme.ColorNameHover:
			return color.NRGBA{R: 0xf4, G: 0xa2, B: 0x61, A: 0xff}
		case theme.ColorNameForeground:
			return color.NRGBA{R: 0xf1, G: 0xe9, B: 0xdf, A: 0xff}
		case theme.ColorNameInputBackground:
			return color.NRGBA{R: 0x33, G: 0x2b, B: 0x26, A: 0xff}
		case theme.ColorNameSelection:
			return color.NRGBA{R: 0x8a, G: 0x4b, B: 0x2a, A: 0xff}
		}
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (m LedgerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (m LedgerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (m LedgerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 6
	case theme.SizeNameText:
		return 15
	}
	return theme.DefaultTheme().Size(name)
}
