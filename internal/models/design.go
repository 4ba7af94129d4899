package models

import (
	"time"
)

// RoomKind перечисляет фиксированный набор категорий комнат.
type RoomKind string

const (
	RoomLivingRoom RoomKind = "livingRoom"
	RoomBathroom   RoomKind = "bathroom"
	RoomBedroom    RoomKind = "bedroom"
	RoomKitchen    RoomKind = "kitchen"
)

// RoomKinds lists every room category in presentation order.
var RoomKinds = []RoomKind{RoomLivingRoom, RoomBathroom, RoomBedroom, RoomKitchen}

// WindowSide identifies one side of the floor plan.
type WindowSide string

const (
	WindowTop    WindowSide = "top"
	WindowRight  WindowSide = "right"
	WindowBottom WindowSide = "bottom"
	WindowLeft   WindowSide = "left"
)

// WindowSides lists every side in presentation order.
var WindowSides = []WindowSide{WindowTop, WindowRight, WindowBottom, WindowLeft}

// DesignDraft is the mutable in-progress design owned by the intake form.
// Length and width stay as text: the form collects free-typed input and the
// generation service does the numeric interpretation.
type DesignDraft struct {
	DesignName     string              `json:"designName"`
	Length         string              `json:"length"`
	Width          string              `json:"width"`
	Rooms          map[RoomKind]int    `json:"rooms"`
	Windows        map[WindowSide]bool `json:"windows"`
	SpecialRequest string              `json:"specialRequest"`
}

// NewDesignDraft returns a draft at the documented defaults: empty text
// fields, every room count 1, every window flag false.
func NewDesignDraft() DesignDraft {
	rooms := make(map[RoomKind]int, len(RoomKinds))
	for _, kind := range RoomKinds {
		rooms[kind] = 1
	}
	windows := make(map[WindowSide]bool, len(WindowSides))
	for _, side := range WindowSides {
		windows[side] = false
	}
	return DesignDraft{Rooms: rooms, Windows: windows}
}

// IsDefault reports whether the draft equals the default tuple.
func (d DesignDraft) IsDefault() bool {
	if d.DesignName != "" || d.Length != "" || d.Width != "" || d.SpecialRequest != "" {
		return false
	}
	for _, count := range d.Rooms {
		if count != 1 {
			return false
		}
	}
	for _, present := range d.Windows {
		if present {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Каналы передачи черновика между компонентами
// всегда работают с копией, чтобы форма оставалась единственным владельцем.
func (d DesignDraft) Clone() DesignDraft {
	out := d
	out.Rooms = make(map[RoomKind]int, len(d.Rooms))
	for kind, count := range d.Rooms {
		out.Rooms[kind] = count
	}
	out.Windows = make(map[WindowSide]bool, len(d.Windows))
	for side, present := range d.Windows {
		out.Windows[side] = present
	}
	return out
}

// EfficiencyReport carries the energy scores the generation service attaches
// to every configuration. Wire keys match the service response.
type EfficiencyReport struct {
	Grade          string             `json:"energy_efficiency_grade" firestore:"grade"`
	TotalScore     float64            `json:"total_score" firestore:"totalScore"`
	DetailedScores map[string]float64 `json:"detailed_scores" firestore:"detailedScores"`
}

// Configuration is one generated layout variant of a design.
type Configuration struct {
	Name        string           `json:"name" firestore:"name"`
	Description string           `json:"description" firestore:"description"`
	// Image держит встроенный PNG в base64, как его отдает генератор.
	Image  string           `json:"image" firestore:"image"`
	Report EfficiencyReport `json:"energy_efficiency_report" firestore:"report"`
}

// Design is a persisted design: an immutable snapshot returned by the
// generation service. Edits never mutate it in place, they replace the
// stored entry with a new snapshot under the same identity.
type Design struct {
	ID             string              `json:"id" firestore:"-"`
	DesignName     string              `json:"designName" firestore:"designName"`
	Length         string              `json:"length" firestore:"length"`
	Width          string              `json:"width" firestore:"width"`
	Rooms          map[RoomKind]int    `json:"rooms" firestore:"rooms"`
	Windows        map[WindowSide]bool `json:"windows" firestore:"windows"`
	SpecialRequest string              `json:"specialRequest" firestore:"specialRequest"`
	ImageURL       string              `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" firestore:"createdAt"`
	Configurations []Configuration     `json:"configurations" firestore:"configurations"`
}

// DesignSummary is the sidebar projection of a persisted design.
type DesignSummary struct {
	ID         string    `json:"id" firestore:"-"`
	DesignName string    `json:"designName" firestore:"designName"`
	ImageURL   string    `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}

// Summary derives the sidebar projection of the design.
func (d *Design) Summary() DesignSummary {
	return DesignSummary{
		ID:         d.ID,
		DesignName: d.DesignName,
		ImageURL:   d.ImageURL,
		CreatedAt:  d.CreatedAt,
	}
}

// User is the signed-in principal as the session store exposes it.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}
