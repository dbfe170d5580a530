package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/macfluid/renderer"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayCells          OverlayID = "cells"
	OverlayPressure       OverlayID = "pressure"
	OverlayGridLines      OverlayID = "grid_lines"
	OverlayFaceVelocity   OverlayID = "face_velocity"
	OverlayCenterVelocity OverlayID = "center_velocity"
	OverlayParticles      OverlayID = "particles"
	OverlayTracers        OverlayID = "tracers"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "C", "V")
	Category    string      // Grouping ("field", "velocity", "markers")
	Default     bool        // Enabled at startup
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
	order       []OverlayID // Maintains insertion order for display
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	// Field overlays
	r.Register(OverlayDescriptor{
		ID:          OverlayCells,
		Name:        "Cell Types",
		Description: "Fill FLUID and SOLID cells",
		Key:         rl.KeyC,
		KeyLabel:    "C",
		Category:    "field",
		Default:     true,
		Exclusive:   []OverlayID{OverlayPressure},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPressure,
		Name:        "Pressure",
		Description: "Shade cells by solved pressure",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "field",
		Exclusive:   []OverlayID{OverlayCells},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayGridLines,
		Name:        "Grid Lines",
		Description: "Draw cell boundaries",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "field",
		Default:     true,
	})

	// Velocity overlays
	r.Register(OverlayDescriptor{
		ID:          OverlayFaceVelocity,
		Name:        "Face Velocity",
		Description: "Staggered MAC samples on cell faces",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "velocity",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayCenterVelocity,
		Name:        "Center Velocity",
		Description: "Interpolated velocity at cell centers",
		Key:         rl.KeyV,
		KeyLabel:    "V",
		Category:    "velocity",
		Default:     true,
	})

	// Marker overlays
	r.Register(OverlayDescriptor{
		ID:          OverlayParticles,
		Name:        "Particles",
		Description: "Free-surface marker particles",
		Key:         rl.KeyM,
		KeyLabel:    "M",
		Category:    "markers",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayTracers,
		Name:        "Dye Tracers",
		Description: "Passive tracers with trails",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "markers",
		Default:     true,
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	desc, ok := r.byID[id]
	if !ok {
		return false
	}

	newState := !r.enabled[id]
	r.enabled[id] = newState

	// If enabling, disable exclusive overlays
	if newState {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}

	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns an overlay descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	desc, ok := r.byID[id]
	return desc, ok
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// EnabledOverlays returns a list of currently enabled overlay IDs.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, id := range r.order {
		if r.enabled[id] {
			result = append(result, id)
		}
	}
	return result
}

// Layers converts the grid overlay states to renderer layers.
func (r *OverlayRegistry) Layers() renderer.Layers {
	return renderer.Layers{
		Cells:          r.enabled[OverlayCells],
		Pressure:       r.enabled[OverlayPressure],
		GridLines:      r.enabled[OverlayGridLines],
		FaceVelocity:   r.enabled[OverlayFaceVelocity],
		CenterVelocity: r.enabled[OverlayCenterVelocity],
		Particles:      r.enabled[OverlayParticles],
	}
}
