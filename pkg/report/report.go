// Package report renders the end-of-session chart using go-echarts.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aforolabs/go-aforo/pkg/session"
)

// Render writes the session report chart as a standalone HTML page.
// It plots two line series over the sample timestamps: the person count and
// the density scaled ×20 so both series are readable on one axis.
func Render(w io.Writer, s *session.Session) error {
	samples := s.Samples()
	if len(samples) == 0 {
		return fmt.Errorf("session has no samples")
	}

	stats := s.Stats()

	timestamps := make([]string, len(samples))
	counts := make([]opts.LineData, len(samples))
	densities := make([]opts.LineData, len(samples))
	for i, sample := range samples {
		timestamps[i] = sample.Timestamp()
		counts[i] = opts.LineData{Value: sample.Count}
		densities[i] = opts.LineData{Value: sample.Density * 20}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Conteo de personas y densidad",
			Width:     "1100px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Personas y densidad por muestra",
			Subtitle: fmt.Sprintf(
				"muestras=%d media personas=%.1f media densidad=%.3f p/m2 max densidad=%.3f p/m2",
				stats.Samples, stats.MeanCount, stats.MeanDensity, stats.MaxDensity,
			),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "hora"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "personas / densidad x20"}),
	)

	line.SetXAxis(timestamps).
		AddSeries("personas", counts).
		AddSeries("densidad x20", densities).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	return line.Render(w)
}
