package viewer

import (
	"greenbuilder/internal/models"
)

// Viewer is the read-only presentation state over a persisted design. Its
// only mutable piece is the active configuration index for the variants
// carousel. Out-of-range selections clamp to the valid range (никогда не
// падаем и не заворачиваемся по кругу).
type Viewer struct {
	design models.Design
	active int
}

// New builds a viewer positioned on the first configuration.
func New(design models.Design) *Viewer {
	return &Viewer{design: design}
}

// Design returns the design under view.
func (v *Viewer) Design() models.Design { return v.design }

// ActiveIndex returns the current carousel position. For a design without
// configurations the index stays pinned at 0 and there is nothing to render.
func (v *Viewer) ActiveIndex() int { return v.active }

// SelectConfiguration moves the carousel, clamping index into [0, len-1].
func (v *Viewer) SelectConfiguration(index int) int {
	n := len(v.design.Configurations)
	if n == 0 {
		v.active = 0
		return v.active
	}
	if index < 0 {
		index = 0
	}
	if index > n-1 {
		index = n - 1
	}
	v.active = index
	return v.active
}

// ActiveConfiguration returns the configuration under the carousel cursor,
// or nil when the design has none.
func (v *Viewer) ActiveConfiguration() *models.Configuration {
	if len(v.design.Configurations) == 0 {
		return nil
	}
	cfg := v.design.Configurations[v.active]
	return &cfg
}
