// Package ui provides a descriptor-driven UI for the viewer.
// Panels are described as sections of fields with getters, so the HUD
// layout can change without touching the drawing code.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText        WidgetType = iota // Plain text with format string
	WidgetBar                           // Progress bar [0, 1]
	WidgetColorSwatch                   // Color preview square with a text value
	WidgetSpacer                        // Vertical spacing
)

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	Label       string
	Widget      WidgetType
	Format      string             // Printf format for Getter values
	Visible     func(any) bool     // nil = always visible
	Getter      func(any) float32  // Numeric value (text via Format, or bar fill)
	TextGetter  func(any) string   // Text value; wins over Getter for text
	ColorGetter func(any) rl.Color // Swatch color
	ColorOf     func(any) rl.Color // Optional value text color
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	Title   string
	Fields  []FieldDescriptor
	Visible func(any) bool
}

// PanelDescriptor defines a complete panel layout.
type PanelDescriptor struct {
	Title    string
	Sections []SectionDescriptor
	Width    int32
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	AlertColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	TitleFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 14, G: 16, B: 26, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 95, A: 255},
		SectionHeader:  rl.Color{R: 160, G: 170, B: 255, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.White,
		AlertColor:     rl.Color{R: 255, G: 90, B: 80, A: 255},
		BarBg:          rl.Color{R: 40, G: 40, B: 50, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 220, A: 255},
		BarFillLow:     rl.Color{R: 220, G: 110, B: 100, A: 255},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       14,
		HeaderFontSize: 14,
		TitleFontSize:  20,
	}
}
