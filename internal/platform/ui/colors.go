// internal/platform/ui/colors.go
package ui

import "github.com/pterm/pterm"

// Paleta de colores de la terminal

var (
	// Ember - elementos principales y headers
	Ember = pterm.NewRGB(255, 107, 53)

	// Crimson - errores
	Crimson = pterm.NewRGB(215, 38, 56)

	// Gold - warnings y descubrimientos destacados
	Gold = pterm.NewRGB(255, 182, 39)

	// Ash - texto secundario, elementos pendientes
	Ash = pterm.NewRGB(120, 120, 120)

	// Cyan - éxito y acentos
	Cyan = pterm.NewRGB(0, 206, 209)
)

// Estilos preconfigurados para diferentes contextos
var (
	StylePrimary   = Ember.ToRGBStyle()
	StyleSuccess   = Cyan.ToRGBStyle()
	StyleWarning   = Gold.ToRGBStyle()
	StyleError     = Crimson.ToRGBStyle()
	StyleSecondary = Ash.ToRGBStyle()
)
