package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrLayerNotFound is returned for an unknown layer ID.
	ErrLayerNotFound = errors.New("layer not found")
	// ErrDuplicateLayer is returned when a layer ID is already taken.
	ErrDuplicateLayer = errors.New("layer already exists")
	// ErrInvalidLayer is returned for a layer that fails catalog rules.
	ErrInvalidLayer = errors.New("invalid layer")
)

// LayerService manages the layer catalog. Top-level layers are keyed by ID;
// group children live inside their parent and are addressable by their own ID.
// An empty dataDir keeps the catalog in memory only.
type LayerService struct {
	dataDir string
	layers  map[string]Layer
	bus     *EventBus
	mu      sync.RWMutex
}

// NewLayerService creates a layer service, loading layers.json from dataDir
// when present. bus may be nil.
func NewLayerService(dataDir string, bus *EventBus) *LayerService {
	s := &LayerService{
		dataDir: dataDir,
		layers:  make(map[string]Layer),
		bus:     bus,
	}
	s.loadFromDisk()
	return s
}

// Seed installs layers when the catalog is empty. It reports whether the
// catalog was seeded. Either every layer is installed or none is.
func (s *LayerService) Seed(layers []Layer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.layers) > 0 {
		return false, nil
	}
	for i, l := range layers {
		l = normalize(l)
		if l.Order == 0 {
			l.Order = i + 1
		}
		err := validate(l)
		if err == nil {
			err = s.checkIDsFree(l)
		}
		if err != nil {
			s.layers = make(map[string]Layer)
			return false, err
		}
		s.layers[l.ID] = l
	}
	if err := s.saveToDisk(); err != nil {
		s.layers = make(map[string]Layer)
		return false, err
	}
	s.publish(ActionCreated, "")
	return true, nil
}

// List returns all top-level layers keyed by ID.
func (s *LayerService) List() map[string]Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]Layer, len(s.layers))
	for k, v := range s.layers {
		result[k] = v
	}
	return result
}

// Tree returns the top-level layers in display order.
func (s *LayerService) Tree() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Layer, 0, len(s.layers))
	for _, l := range s.layers {
		out = append(out, l)
	}
	sortLayers(out)
	return out
}

// Get returns a layer by ID, searching group children too.
func (s *LayerService) Get(id string) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.layers[id]; ok {
		return l, true
	}
	for _, l := range s.layers {
		for _, c := range l.Children {
			if c.ID == id {
				return c, true
			}
		}
	}
	return Layer{}, false
}

// Create adds a top-level layer.
func (s *LayerService) Create(layer Layer) (Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layer = normalize(layer)
	if err := validate(layer); err != nil {
		return Layer{}, err
	}
	if err := s.checkIDsFree(layer); err != nil {
		return Layer{}, err
	}
	if layer.Order == 0 {
		layer.Order = s.nextOrder()
	}

	s.layers[layer.ID] = layer
	if err := s.saveToDisk(); err != nil {
		delete(s.layers, layer.ID)
		return Layer{}, err
	}
	s.publish(ActionCreated, layer.ID)
	return layer, nil
}

// Update replaces a top-level layer by ID.
func (s *LayerService) Update(id string, layer Layer) (Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.layers[id]
	if !exists {
		return Layer{}, fmt.Errorf("layer %q: %w", id, ErrLayerNotFound)
	}

	layer.ID = id
	layer = normalize(layer)
	if err := validate(layer); err != nil {
		return Layer{}, err
	}
	delete(s.layers, id)
	if err := s.checkIDsFree(layer); err != nil {
		s.layers[id] = prev
		return Layer{}, err
	}

	s.layers[id] = layer
	if err := s.saveToDisk(); err != nil {
		s.layers[id] = prev
		return Layer{}, err
	}
	s.publish(ActionUpdated, id)
	return layer, nil
}

// Delete removes a top-level layer and its children.
func (s *LayerService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.layers[id]
	if !exists {
		return fmt.Errorf("layer %q: %w", id, ErrLayerNotFound)
	}

	delete(s.layers, id)
	if err := s.saveToDisk(); err != nil {
		s.layers[id] = prev
		return err
	}
	s.publish(ActionDeleted, id)
	return nil
}

func (s *LayerService) publish(action, id string) {
	if s.bus != nil {
		s.bus.Publish(Event{Resource: ResourceLayers, Action: action, ID: id})
	}
}

// checkIDsFree reports a conflict when the layer or any child reuses an ID.
func (s *LayerService) checkIDsFree(layer Layer) error {
	ids := []string{layer.ID}
	for _, c := range layer.Children {
		ids = append(ids, c.ID)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] || s.taken(id) {
			return fmt.Errorf("layer with ID %q: %w", id, ErrDuplicateLayer)
		}
		seen[id] = true
	}
	return nil
}

func (s *LayerService) taken(id string) bool {
	if _, ok := s.layers[id]; ok {
		return true
	}
	for _, l := range s.layers {
		for _, c := range l.Children {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}

func (s *LayerService) nextOrder() int {
	max := 0
	for _, l := range s.layers {
		if l.Order > max {
			max = l.Order
		}
	}
	return max + 1
}

// configFile returns the path to the layers config file.
func (s *LayerService) configFile() string {
	return filepath.Join(s.dataDir, "layers.json")
}

// loadFromDisk loads layer configurations from disk.
func (s *LayerService) loadFromDisk() {
	if s.dataDir == "" {
		return
	}
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return // File doesn't exist yet, start empty
	}

	var layers map[string]Layer
	if err := json.Unmarshal(data, &layers); err != nil {
		return // Invalid JSON, start empty
	}

	s.layers = layers
}

// saveToDisk persists layer configurations to disk.
func (s *LayerService) saveToDisk() error {
	if s.dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(s.layers, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.configFile(), data, 0644)
}

// normalize fills IDs, kind, opacity and popup titles.
func normalize(l Layer) Layer {
	if l.ID == "" {
		l.ID = generateID(l.Title)
	}
	if l.Kind == "" {
		l.Kind = KindFeature
	}
	if l.Opacity == 0 {
		l.Opacity = 1
	}
	if l.Popup != nil && l.Popup.Title == "" {
		p := *l.Popup
		p.Title = l.Title
		l.Popup = &p
	}
	if len(l.Children) > 0 {
		children := make([]Layer, len(l.Children))
		for i, c := range l.Children {
			c = normalize(c)
			if c.Order == 0 {
				c.Order = i + 1
			}
			children[i] = c
		}
		sortLayers(children)
		l.Children = children
	}
	return l
}

func validate(l Layer) error {
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidLayer)
	}
	if l.ID == "" {
		return fmt.Errorf("%w: title %q yields an empty ID", ErrInvalidLayer, l.Title)
	}
	switch l.Kind {
	case KindFeature:
		if len(l.Children) > 0 {
			return fmt.Errorf("%w: feature layer %q cannot have children", ErrInvalidLayer, l.ID)
		}
	case KindGroup:
		for _, c := range l.Children {
			if c.IsGroup() {
				return fmt.Errorf("%w: nested group %q in %q", ErrInvalidLayer, c.ID, l.ID)
			}
			if err := validate(c); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidLayer, l.Kind)
	}
	if l.Opacity < 0 || l.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v outside [0,1]", ErrInvalidLayer, l.Opacity)
	}
	return nil
}

func sortLayers(ls []Layer) {
	sort.SliceStable(ls, func(i, j int) bool {
		if ls[i].Order != ls[j].Order {
			return ls[i].Order < ls[j].Order
		}
		return ls[i].ID < ls[j].ID
	})
}

// generateID creates a URL-safe ID from a title.
func generateID(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	id = strings.ReplaceAll(id, " ", "_")
	// Remove any characters that aren't alphanumeric or underscore
	var result strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
