package trailstory

import "github.com/Mahaveer86619/trailstory-go/pkg/session"

// User is the profile shape shared with the session store, where the logged-in
// user is persisted alongside the token pair.
type User = session.UserProfile

// Journey statuses and visibilities as the API spells them.
const (
	JourneyStatusOngoing   = "Ongoing"
	JourneyStatusCompleted = "Completed"

	VisibilityPrivate = "Private"
	VisibilityPublic  = "Public"
)

type Journey struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	StartDate   string       `json:"start_date"`
	Status      string       `json:"status"`
	Visibility  string       `json:"visibility"`
	Checkpoints []Checkpoint `json:"checkpoints,omitempty"`
}

type Checkpoint struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Time  string `json:"time"`
	// Coords is [lat, lng].
	Coords [2]float64 `json:"coords"`
	Note   string     `json:"note"`
	Image  string     `json:"image,omitempty"`
}

// AuthData is the token pair plus profile returned by login, register and
// refresh.
type AuthData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type CreateJourneyInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public"`
}

type CreateCheckpointInput struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Note string  `json:"note"`
}
