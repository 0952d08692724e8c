// Package chart turns a classified query and its records into a declarative
// chart description for the front end. It never renders anything.
package chart

import (
	"fmt"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/models"
)

// hoverTemplate is applied to every scatter point; %{...} placeholders are
// resolved by the renderer, the text after <br> by Build.
const hoverTemplate = "<b>%{y}</b><br>Year: %{x}<br>%{text}<extra></extra>"

// DefaultLayout is the presentation policy every chart carries.
func DefaultLayout() models.ChartLayout {
	return models.ChartLayout{
		Legend: models.Legend{
			Orientation: "h",
			X:           1,
			Y:           1.02,
			XAnchor:     "right",
			YAnchor:     "bottom",
		},
		Autosize: true,
		Margin:   models.Margin{Left: 50, Right: 50, Top: 80, Bottom: 50},
	}
}

// Build returns the chart for intent over records, or nil if the intent has
// no chart mapping.
func Build(intent models.Intent, records []models.MissionRecord) *models.ChartSpec {
	switch intent {
	case models.IntentByYear:
		spec := scatter("NASA Missions by Launch Year", records)
		spec.HoverTemplate = hoverTemplate
		return spec
	case models.IntentByStatus:
		return pie(records)
	case models.IntentByMission, models.IntentAllFields:
		spec := scatter("NASA Mission Timeline", records)
		spec.HoverTemplate = hoverTemplate
		return spec
	default:
		return nil
	}
}

func scatter(title string, records []models.MissionRecord) *models.ChartSpec {
	var series []models.ChartSeries
	index := make(map[models.Status]int)

	for _, r := range records {
		i, ok := index[r.Status]
		if !ok {
			i = len(series)
			index[r.Status] = i
			series = append(series, models.ChartSeries{Name: string(r.Status)})
		}
		s := &series[i]
		s.X = append(s.X, r.Year)
		s.Y = append(s.Y, r.Mission)
		s.Hover = append(s.Hover, hoverText(r))
	}

	return &models.ChartSpec{
		Kind:    models.ChartScatter,
		Title:   title,
		XAxis:   &models.Axis{Field: "Year", Title: "Launch Year"},
		YAxis:   &models.Axis{Field: "Mission", Title: "Mission"},
		ColorBy: "Status",
		Series:  series,
		Layout:  DefaultLayout(),
	}
}

func pie(records []models.MissionRecord) *models.ChartSpec {
	var slices []models.PieSlice
	index := make(map[models.Status]int)

	for _, r := range records {
		i, ok := index[r.Status]
		if !ok {
			i = len(slices)
			index[r.Status] = i
			slices = append(slices, models.PieSlice{Label: string(r.Status)})
		}
		slices[i].Value++
	}

	return &models.ChartSpec{
		Kind:     models.ChartPie,
		Title:    "Mission Status Distribution",
		ColorBy:  "Status",
		Slices:   slices,
		TextInfo: "percent+label",
		Layout:   DefaultLayout(),
	}
}

func hoverText(r models.MissionRecord) string {
	return fmt.Sprintf("Status: %s<br>%s", r.Status, r.Description)
}
