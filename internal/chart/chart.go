// Package chart draws a Dataset as a line chart, one series per numeric
// field against the record dates.
package chart

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/joeblew999/plat-irrigation/internal/reading"
)

// ErrNotEnoughData is returned when no series has two dated points.
var ErrNotEnoughData = errors.New("not enough data to chart")

// Options controls the rendered chart.
type Options struct {
	Title  string
	Width  int
	Height int
	Fields []string // series to draw; empty means every numeric field
}

const (
	defaultWidth  = 800
	defaultHeight = 400
)

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorOrange,
	chart.ColorRed,
	chart.ColorAlternateGray,
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

// Series extracts one time series per field. Records without a parseable
// date or without the field are skipped for that series; series with fewer
// than two points are dropped.
func Series(ds reading.Dataset, fields []string) []chart.TimeSeries {
	if len(fields) == 0 {
		fields = numericFields(ds)
	}

	var out []chart.TimeSeries
	for i, name := range fields {
		ts := chart.TimeSeries{
			Name:  name,
			Style: lineStyle(palette[i%len(palette)]),
		}
		for _, r := range ds {
			day, err := time.Parse(reading.DateLayout, r.Text(reading.FieldDate))
			if err != nil {
				continue
			}
			v, ok := r.Float(name)
			if !ok {
				continue
			}
			ts.XValues = append(ts.XValues, day)
			ts.YValues = append(ts.YValues, v)
		}
		if len(ts.XValues) >= 2 {
			out = append(out, ts)
		}
	}
	return out
}

func numericFields(ds reading.Dataset) []string {
	var out []string
	for _, name := range ds.Fields() {
		if name == reading.FieldDate {
			continue
		}
		for _, r := range ds {
			if _, ok := r.Float(name); ok {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// Render writes the chart for ds to w as SVG.
func Render(w io.Writer, ds reading.Dataset, opts Options) error {
	series := Series(ds, opts.Fields)
	if len(series) == 0 {
		return ErrNotEnoughData
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Date", ValueFormatter: chart.TimeDateValueFormatter},
		YAxis:      chart.YAxis{Name: "Reading"},
	}
	for _, s := range series {
		ch.Series = append(ch.Series, s)
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
