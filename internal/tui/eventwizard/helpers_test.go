package eventwizard

import (
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
)

func init() {
	// Ascii profile keeps printed output free of color codes across terminals.
	lipgloss.Writer.Profile = colorprofile.Ascii
}
