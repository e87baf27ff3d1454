package devapi

import "time"

// View shapes mirror the real backend's JSON responses.

type userView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	ProfilePic  string    `json:"profile_pic_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type authResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	User         userView `json:"user"`
}

type checkpointView struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Time   string    `json:"time"`
	Coords []float64 `json:"coords"`
	Note   string    `json:"note"`
	Image  string    `json:"image,omitempty"`
}

type journeyView struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	StartDate   string           `json:"start_date"`
	Status      string           `json:"status"`
	Visibility  string           `json:"visibility"`
	Checkpoints []checkpointView `json:"checkpoints"`
}

func toUserView(u userRecord) userView {
	return userView{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		ProfilePic:  u.ProfilePic,
		CreatedAt:   u.CreatedAt,
	}
}

func toUserViews(users []userRecord) []userView {
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return views
}

func toCheckpointView(cp checkpointRecord) checkpointView {
	return checkpointView{
		ID:     cp.ID,
		Title:  "Checkpoint",
		Time:   cp.CreatedAt.Format("03:04 PM"),
		Coords: []float64{cp.Lat, cp.Lng},
		Note:   cp.Note,
		Image:  cp.Image,
	}
}

func toJourneyView(j journeyRecord) journeyView {
	status := "Ongoing"
	if j.EndedAt != nil {
		status = "Completed"
	}
	visibility := "Private"
	if j.IsPublic {
		visibility = "Public"
	}

	cps := make([]checkpointView, 0, len(j.Checkpoints))
	for _, cp := range j.Checkpoints {
		cps = append(cps, toCheckpointView(cp))
	}

	return journeyView{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		StartDate:   j.StartedAt.Format("Jan 02, 2006"),
		Status:      status,
		Visibility:  visibility,
		Checkpoints: cps,
	}
}

func toJourneyViews(journeys []journeyRecord) []journeyView {
	views := make([]journeyView, 0, len(journeys))
	for _, j := range journeys {
		views = append(views, toJourneyView(j))
	}
	return views
}
