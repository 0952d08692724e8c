package models

import "encoding/json"

// Status is the lifecycle state of a mission.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusOngoing   Status = "Ongoing"
)

// Valid reports whether s is a known mission status.
func (s Status) Valid() bool {
	return s == StatusCompleted || s == StatusOngoing
}

// MissionRecord is one row of the mission dataset.
type MissionRecord struct {
	Mission     string `json:"Mission" yaml:"mission"`
	Year        int    `json:"Year" yaml:"year"`
	Status      Status `json:"Status" yaml:"status"`
	Description string `json:"Description" yaml:"description"`
}

// Intent is the field projection a query resolves to.
type Intent string

const (
	IntentByMission Intent = "mission"
	IntentByYear    Intent = "year"
	IntentByStatus  Intent = "status"
	IntentAllFields Intent = "all"
)

// Intents lists every intent in classification priority order.
var Intents = []Intent{IntentByMission, IntentByYear, IntentByStatus, IntentAllFields}

// QueryResult is the outcome of the standard analysis path.
type QueryResult struct {
	Intent Intent     `json:"-"`
	Data   any        `json:"data"`
	Chart  *ChartSpec `json:"chart"`
}

// ChartKind names the chart a front end should draw.
type ChartKind string

const (
	ChartScatter  ChartKind = "scatter"
	ChartBar      ChartKind = "bar"
	ChartPie      ChartKind = "pie"
	ChartTimeline ChartKind = "timeline"
)

// ChartSpec is a declarative chart description. Nothing here renders.
type ChartSpec struct {
	Kind          ChartKind     `json:"kind"`
	Title         string        `json:"title"`
	XAxis         *Axis         `json:"x_axis,omitempty"`
	YAxis         *Axis         `json:"y_axis,omitempty"`
	ColorBy       string        `json:"color_by,omitempty"`
	Series        []ChartSeries `json:"series,omitempty"`
	Slices        []PieSlice    `json:"slices,omitempty"`
	HoverTemplate string        `json:"hover_template,omitempty"`
	TextInfo      string        `json:"text_info,omitempty"`
	Layout        ChartLayout   `json:"layout"`
}

// Axis describes one chart axis.
type Axis struct {
	Field string `json:"field"`
	Title string `json:"title"`
}

// ChartSeries is one colour group of a scatter chart.
type ChartSeries struct {
	Name  string   `json:"name"`
	X     []int    `json:"x"`
	Y     []string `json:"y"`
	Hover []string `json:"hover,omitempty"`
}

// PieSlice is one slice of a pie chart.
type PieSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ChartLayout carries the fixed presentation policy shared by every chart.
type ChartLayout struct {
	Legend   Legend `json:"legend"`
	Autosize bool   `json:"autosize"`
	Margin   Margin `json:"margin"`
}

// Legend is the legend placement.
type Legend struct {
	Orientation string  `json:"orientation"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor"`
	YAnchor     string  `json:"yanchor"`
}

// Margin holds chart margins in pixels.
type Margin struct {
	Left   int `json:"l"`
	Right  int `json:"r"`
	Top    int `json:"t"`
	Bottom int `json:"b"`
}

// EntryKind tells which analysis path produced a history entry.
type EntryKind string

const (
	EntryStandard EntryKind = "standard"
	EntryAdvanced EntryKind = "advanced"
)

// HistoryEntry is one persisted query and its result.
type HistoryEntry struct {
	ID        string          `json:"id"`
	Query     string          `json:"query"`
	Kind      EntryKind       `json:"kind"`
	Result    json.RawMessage `json:"result"`
	CreatedAt string          `json:"created_at"`
}
