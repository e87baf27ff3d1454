package devapi

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken      = errors.New("email already registered")
	errBadCredentials  = errors.New("invalid email or password")
	errUserNotFound    = errors.New("user not found")
	errJourneyNotFound = errors.New("journey not found")
	errNotOwner        = errors.New("not your journey")
	errCPNotFound      = errors.New("checkpoint not found")
	errBadRefresh      = errors.New("invalid refresh token")
)

type userRecord struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash []byte
	ProfilePic   string
	CreatedAt    time.Time
}

type checkpointRecord struct {
	ID        string
	Lat       float64
	Lng       float64
	Note      string
	Image     string
	CreatedAt time.Time
}

type journeyRecord struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	IsPublic    bool
	StartedAt   time.Time
	EndedAt     *time.Time
	Checkpoints []checkpointRecord
}

// snapshot copies the record so callers can read it after the store's lock is
// released. The checkpoint slice is cloned, not shared.
func (j *journeyRecord) snapshot() journeyRecord {
	out := *j
	out.Checkpoints = make([]checkpointRecord, len(j.Checkpoints))
	copy(out.Checkpoints, j.Checkpoints)
	return out
}

type refreshSession struct {
	UserID    string
	ExpiresAt time.Time
}

// store holds all dev-server state behind one lock. Accessors return value
// snapshots taken under the lock, never the live records, so handlers can
// build responses without racing concurrent writes. Refresh tokens rotate on
// every redemption: the old token is deleted before the new one is handed out.
type store struct {
	mu         sync.RWMutex
	users      map[string]*userRecord
	byEmail    map[string]string
	journeys   map[string]*journeyRecord
	followers  map[string]map[string]bool
	refresh    map[string]refreshSession
	refreshTTL time.Duration
}

func newStore(refreshTTL time.Duration) *store {
	return &store{
		users:      make(map[string]*userRecord),
		byEmail:    make(map[string]string),
		journeys:   make(map[string]*journeyRecord),
		followers:  make(map[string]map[string]bool),
		refresh:    make(map[string]refreshSession),
		refreshTTL: refreshTTL,
	}
}

func (s *store) createUser(email, password, displayName string) (userRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return userRecord{}, errEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return userRecord{}, err
	}

	u := &userRecord{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return *u, nil
}

func (s *store) authenticate(email, password string) (userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return userRecord{}, errBadCredentials
	}
	u := s.users[id]
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return userRecord{}, errBadCredentials
	}
	return *u, nil
}

func (s *store) getUser(id string) (userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return userRecord{}, errUserNotFound
	}
	return *u, nil
}

func (s *store) updateDisplayName(id, displayName string) (userRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return userRecord{}, errUserNotFound
	}
	u.DisplayName = displayName
	return *u, nil
}

func (s *store) setProfilePic(id, url string) (userRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return userRecord{}, errUserNotFound
	}
	u.ProfilePic = url
	return *u, nil
}

func (s *store) listUsers() []userRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]userRecord, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users
}

func (s *store) follow(followerID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[targetID]; !ok {
		return errUserNotFound
	}
	if s.followers[targetID] == nil {
		s.followers[targetID] = make(map[string]bool)
	}
	s.followers[targetID][followerID] = true
	return nil
}

func (s *store) unfollow(followerID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[targetID]; !ok {
		return errUserNotFound
	}
	delete(s.followers[targetID], followerID)
	return nil
}

func (s *store) listFollowers(targetID string) ([]userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[targetID]; !ok {
		return nil, errUserNotFound
	}
	followers := make([]userRecord, 0, len(s.followers[targetID]))
	for id := range s.followers[targetID] {
		if u, ok := s.users[id]; ok {
			followers = append(followers, *u)
		}
	}
	sort.Slice(followers, func(i, j int) bool { return followers[i].CreatedAt.Before(followers[j].CreatedAt) })
	return followers, nil
}

func (s *store) createJourney(ownerID, title, description string, isPublic bool) journeyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := &journeyRecord{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		IsPublic:    isPublic,
		StartedAt:   time.Now().UTC(),
	}
	s.journeys[j.ID] = j
	return j.snapshot()
}

func (s *store) deleteJourney(ownerID, journeyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.journeys[journeyID]
	if !ok {
		return errJourneyNotFound
	}
	if j.OwnerID != ownerID {
		return errNotOwner
	}
	delete(s.journeys, journeyID)
	return nil
}

func (s *store) listJourneys(ownerID string) []journeyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	journeys := make([]journeyRecord, 0)
	for _, j := range s.journeys {
		if j.OwnerID == ownerID {
			journeys = append(journeys, j.snapshot())
		}
	}
	sortJourneys(journeys)
	return journeys
}

func (s *store) listPublicJourneys(page, limit int) []journeyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	journeys := make([]journeyRecord, 0)
	for _, j := range s.journeys {
		if j.IsPublic {
			journeys = append(journeys, j.snapshot())
		}
	}
	sortJourneys(journeys)

	start := (page - 1) * limit
	if start >= len(journeys) {
		return nil
	}
	end := start + limit
	if end > len(journeys) {
		end = len(journeys)
	}
	return journeys[start:end]
}

func sortJourneys(journeys []journeyRecord) {
	sort.Slice(journeys, func(i, j int) bool {
		return journeys[i].StartedAt.After(journeys[j].StartedAt)
	})
}

func (s *store) addCheckpoint(ownerID, journeyID string, lat, lng float64, note string) (checkpointRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.journeys[journeyID]
	if !ok {
		return checkpointRecord{}, errJourneyNotFound
	}
	if j.OwnerID != ownerID {
		return checkpointRecord{}, errNotOwner
	}

	cp := checkpointRecord{
		ID:        uuid.NewString(),
		Lat:       lat,
		Lng:       lng,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	j.Checkpoints = append(j.Checkpoints, cp)
	return cp, nil
}

func (s *store) deleteCheckpoint(ownerID, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.journeys {
		for i, cp := range j.Checkpoints {
			if cp.ID != checkpointID {
				continue
			}
			if j.OwnerID != ownerID {
				return errNotOwner
			}
			j.Checkpoints = append(j.Checkpoints[:i], j.Checkpoints[i+1:]...)
			return nil
		}
	}
	return errCPNotFound
}

func (s *store) createRefreshToken(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.refresh[token] = refreshSession{
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	return token
}

// redeemRefreshToken rotates the token: the presented one is invalidated and
// a fresh one is issued for the same user.
func (s *store) redeemRefreshToken(token string) (userID, next string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.refresh[token]
	if !ok || time.Now().After(sess.ExpiresAt) {
		delete(s.refresh, token)
		return "", "", errBadRefresh
	}
	delete(s.refresh, token)

	next = uuid.NewString()
	s.refresh[next] = refreshSession{
		UserID:    sess.UserID,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	return sess.UserID, next, nil
}
