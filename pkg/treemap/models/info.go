package models

// TreemapInfo holds a treemap together with its filter information and legend.
type TreemapInfo struct {
	// Treemap is the root node.
	Treemap *Node `json:"treemap"`
	// FilterInfo describes the filters applicable to the data.
	FilterInfo []FilterInfo `json:"filterInfo"`
	// Legend lists the level-1 labour relations.
	Legend []LegendValue `json:"legend"`
}

// LabourTreemapInfo extends TreemapInfo with the time periods matched in
// the filtered data.
type LabourTreemapInfo struct {
	TreemapInfo
	// TimePeriods maps every time period to its matched year or placeholder.
	TimePeriods TimePeriodMatches `json:"timePeriods"`
}
