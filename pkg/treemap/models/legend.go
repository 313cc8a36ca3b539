package models

// LegendValue is an entry of the labour relations legend.
type LegendValue struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Code  string `json:"code,omitempty"`
}
