// Package config loads the dashboard file: map view, label class, table
// page size and the layer catalog seed.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/joeblew999/plat-irrigation/internal/pager"
	"github.com/joeblew999/plat-irrigation/internal/service"
)

// Dashboard is the decoded dashboard file.
type Dashboard struct {
	Map      MapConfig       `mapstructure:"map"`
	PageSize int             `mapstructure:"page_size"`
	Layers   []service.Layer `mapstructure:"layers"`
}

// MapConfig is the map view the browser SDK is configured with.
type MapConfig struct {
	Basemap   string          `json:"basemap" mapstructure:"basemap" doc:"Basemap style" example:"satellite"`
	Center    []float64       `json:"center" mapstructure:"center" doc:"Initial center [lon, lat]"`
	Zoom      int             `json:"zoom" mapstructure:"zoom" doc:"Initial zoom level" example:"7"`
	Widgets   WidgetPositions `json:"widgets" mapstructure:"widgets" doc:"UI widget positions"`
	LayerList LayerListConfig `json:"layerList" mapstructure:"layer_list" doc:"Layer list widget options"`
	Labels    LabelClass      `json:"labels" mapstructure:"labels" doc:"Label class used by the Labels action"`
}

// WidgetPositions places the map widgets.
type WidgetPositions struct {
	Home             string `json:"home" mapstructure:"home" example:"top-trailing"`
	Zoom             string `json:"zoom" mapstructure:"zoom" example:"top-trailing"`
	NavigationToggle string `json:"navigationToggle" mapstructure:"navigation_toggle" example:"top-right"`
	LayerList        string `json:"layerList" mapstructure:"layer_list" example:"top-leading"`
	Legend           string `json:"legend" mapstructure:"legend" example:"bottom-right"`
}

// LayerListConfig holds the layer list widget options.
type LayerListConfig struct {
	ShowCollapseButton bool   `json:"showCollapseButton" mapstructure:"show_collapse_button"`
	ShowHeading        bool   `json:"showHeading" mapstructure:"show_heading"`
	ShowFilter         bool   `json:"showFilter" mapstructure:"show_filter"`
	FilterPlaceholder  string `json:"filterPlaceholder" mapstructure:"filter_placeholder" example:"Filter layers"`
}

// LabelClass is the text symbol and placement for feature labels.
type LabelClass struct {
	FontFamily string  `json:"fontFamily" mapstructure:"font_family" example:"Noto Sans"`
	FontSize   int     `json:"fontSize" mapstructure:"font_size" example:"10"`
	Color      string  `json:"color" mapstructure:"color" example:"black"`
	HaloColor  string  `json:"haloColor" mapstructure:"halo_color" example:"white"`
	HaloSize   float64 `json:"haloSize" mapstructure:"halo_size" example:"1.5"`
	Placement  string  `json:"placement" mapstructure:"placement" example:"above-center"`
	Expression string  `json:"expression" mapstructure:"expression"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("map.basemap", "satellite")
	v.SetDefault("map.center", []float64{66.5, 28.3})
	v.SetDefault("map.zoom", 7)

	v.SetDefault("map.widgets.home", "top-trailing")
	v.SetDefault("map.widgets.zoom", "top-trailing")
	v.SetDefault("map.widgets.navigation_toggle", "top-right")
	v.SetDefault("map.widgets.layer_list", "top-leading")
	v.SetDefault("map.widgets.legend", "bottom-right")

	v.SetDefault("map.layer_list.show_collapse_button", true)
	v.SetDefault("map.layer_list.show_heading", true)
	v.SetDefault("map.layer_list.show_filter", true)
	v.SetDefault("map.layer_list.filter_placeholder", "Filter layers")

	v.SetDefault("map.labels.font_family", "Noto Sans")
	v.SetDefault("map.labels.font_size", 10)
	v.SetDefault("map.labels.color", "black")
	v.SetDefault("map.labels.halo_color", "white")
	v.SetDefault("map.labels.halo_size", 1.5)
	v.SetDefault("map.labels.placement", "above-center")
	v.SetDefault("map.labels.expression", "$feature.Name || $feature.Zone || $feature.Circle")

	v.SetDefault("page_size", pager.DefaultPageSize)
}

// Default returns the built-in dashboard: defaults plus the Balochistan
// layer catalog.
func Default() Dashboard {
	d, _ := decode(newViper())
	return d
}

// Load reads the dashboard file at path. An empty path returns Default.
// Missing keys keep their defaults; a file without layers gets the
// built-in catalog.
func Load(path string) (Dashboard, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Dashboard{}, fmt.Errorf("read dashboard config %s: %w", path, err)
		}
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (Dashboard, error) {
	if raw := v.Get("layers"); raw != nil {
		v.Set("layers", layerDefaults(raw))
	}
	var d Dashboard
	if err := v.Unmarshal(&d); err != nil {
		return Dashboard{}, fmt.Errorf("decode dashboard config: %w", err)
	}
	if err := d.validate(); err != nil {
		return Dashboard{}, err
	}
	if len(d.Layers) == 0 {
		d.Layers = service.DefaultLayers()
	}
	return d, nil
}

// layerDefaults marks layers, children included, as visible unless the
// file sets visible itself.
func layerDefaults(raw any) any {
	items, ok := raw.([]any)
	if !ok {
		return raw
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if lookup(m, "visible") == nil {
			m["visible"] = true
		}
		if children := lookup(m, "children"); children != nil {
			layerDefaults(children)
		}
	}
	return items
}

func lookup(m map[string]any, key string) any {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func (d Dashboard) validate() error {
	if d.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", d.PageSize)
	}
	if len(d.Map.Center) != 2 {
		return errors.New("map.center must be [lon, lat]")
	}
	return nil
}
