package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// memStore is an in-memory stand-in for the database. memTx restores the
// snapshot taken at the start of a transaction when the callback fails.
type memStore struct {
	mu          sync.Mutex
	matches     map[int]models.Match
	deadlines   map[string]models.Deadline
	predictions map[int]models.Prediction
	users       map[int]models.User
	nextPredID  int

	failScoreUpdateFor map[int]bool
	upserts            int
}

func newMemStore() *memStore {
	return &memStore{
		matches:            map[int]models.Match{},
		deadlines:          map[string]models.Deadline{},
		predictions:        map[int]models.Prediction{},
		users:              map[int]models.User{},
		nextPredID:         1,
		failScoreUpdateFor: map[int]bool{},
	}
}

func (s *memStore) addMatch(id int, stage string, status models.MatchStatus, home, away *int) {
	s.matches[id] = models.Match{ID: id, Stage: stage, Status: status, HomeScore: home, AwayScore: away}
}

func (s *memStore) addDeadline(stage string, at time.Time, locked bool) {
	s.deadlines[stage] = models.Deadline{ID: len(s.deadlines) + 1, Stage: stage, DeadlineAt: at, IsLocked: locked}
}

func (s *memStore) addUser(id int, name string, role models.UserRole) {
	s.users[id] = models.User{ID: id, Email: name + "@example.com", DisplayName: strPtr(name), Role: role, IsActive: true}
}

func (s *memStore) addPrediction(userID, matchID, home, away int) int {
	id := s.nextPredID
	s.nextPredID++
	s.predictions[id] = models.Prediction{
		ID: id, UserID: userID, MatchID: matchID,
		PredictedHomeScore: home, PredictedAwayScore: away,
		ScoringOutcome: models.OutcomeNone,
	}
	return id
}

func (s *memStore) findPrediction(userID, matchID int) (models.Prediction, bool) {
	for _, p := range s.predictions {
		if p.UserID == userID && p.MatchID == matchID {
			return p, true
		}
	}
	return models.Prediction{}, false
}

type memSnapshot struct {
	matches     map[int]models.Match
	deadlines   map[string]models.Deadline
	predictions map[int]models.Prediction
	nextPredID  int
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		matches:     make(map[int]models.Match, len(s.matches)),
		deadlines:   make(map[string]models.Deadline, len(s.deadlines)),
		predictions: make(map[int]models.Prediction, len(s.predictions)),
		nextPredID:  s.nextPredID,
	}
	for k, v := range s.matches {
		snap.matches[k] = v
	}
	for k, v := range s.deadlines {
		snap.deadlines[k] = v
	}
	for k, v := range s.predictions {
		snap.predictions[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.matches = snap.matches
	s.deadlines = snap.deadlines
	s.predictions = snap.predictions
	s.nextPredID = snap.nextPredID
}

type memTx struct {
	store     *memStore
	commits   int
	rollbacks int
}

func (t *memTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.store.mu.Lock()
	snap := t.store.snapshot()
	t.store.mu.Unlock()

	if err := fn(nil); err != nil {
		t.store.mu.Lock()
		t.store.restore(snap)
		t.store.mu.Unlock()
		t.rollbacks++
		return err
	}
	t.commits++
	return nil
}

type memMatchRepo struct{ s *memStore }

func (r memMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r memMatchRepo) ListByIDsForShare(ctx context.Context, exec repositories.SQLExecutor, ids []int) (map[int]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[int]*models.Match{}
	for _, id := range ids {
		if m, ok := r.s.matches[id]; ok {
			m := m
			out[id] = &m
		}
	}
	return out, nil
}

func (r memMatchRepo) ListCompleted(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Match
	for _, m := range r.s.matches {
		if m.HasResult() {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memMatchRepo) SetResult(ctx context.Context, exec repositories.SQLExecutor, id, homeScore, awayScore int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.HomeScore, m.AwayScore, m.Status = intPtr(homeScore), intPtr(awayScore), models.MatchStatusCompleted
	r.s.matches[id] = m
	return nil
}

func (r memMatchRepo) GetView(ctx context.Context, id int) (*models.MatchView, error) {
	m, err := r.GetByIDForUpdate(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return &models.MatchView{Match: *m}, nil
}

func (r memMatchRepo) ListViews(ctx context.Context, stage *string) ([]models.MatchView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.MatchView{}
	for _, m := range r.s.matches {
		if stage == nil || m.Stage == *stage {
			out = append(out, models.MatchView{Match: m})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memMatchRepo) CountByStatus(ctx context.Context) (map[models.MatchStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[models.MatchStatus]int{}
	for _, m := range r.s.matches {
		out[m.Status]++
	}
	return out, nil
}

type memDeadlineRepo struct{ s *memStore }

func (r memDeadlineRepo) GetByStage(ctx context.Context, exec repositories.SQLExecutor, stage string) (*models.Deadline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deadlines[stage]
	if !ok {
		return nil, repositories.ErrDeadlineNotFound
	}
	return &d, nil
}

func (r memDeadlineRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]models.Deadline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Deadline{}
	for _, d := range r.s.deadlines {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memDeadlineRepo) Update(ctx context.Context, exec repositories.SQLExecutor, stage string, update models.DeadlineUpdate) (*models.Deadline, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deadlines[stage]
	if !ok {
		return nil, repositories.ErrDeadlineNotFound
	}
	if update.DeadlineAt != nil {
		d.DeadlineAt = *update.DeadlineAt
	}
	if update.IsLocked != nil {
		d.IsLocked = *update.IsLocked
	}
	r.s.deadlines[stage] = d
	return &d, nil
}

type memPredictionRepo struct{ s *memStore }

func (r memPredictionRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, userID, matchID, homeScore, awayScore int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.upserts++
	if _, ok := r.s.matches[matchID]; !ok {
		return 0, repositories.ErrPredictionReferenceInvalid
	}
	if p, ok := r.s.findPrediction(userID, matchID); ok {
		p.PredictedHomeScore, p.PredictedAwayScore = homeScore, awayScore
		r.s.predictions[p.ID] = p
		return p.ID, nil
	}
	return r.s.addPrediction(userID, matchID, homeScore, awayScore), nil
}

func (r memPredictionRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]models.Prediction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Prediction{}
	for _, p := range r.s.predictions {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPredictionRepo) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, scored models.ScoredPrediction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.predictions[scored.PredictionID]
	if !ok {
		return repositories.ErrPredictionNotFound
	}
	if r.s.failScoreUpdateFor[p.MatchID] {
		return errors.New("disk full")
	}
	p.PointsEarned, p.ScoringOutcome = scored.Points, scored.Outcome
	r.s.predictions[p.ID] = p
	return nil
}

func (r memPredictionRepo) ListViewsByUser(ctx context.Context, userID int) ([]models.PredictionView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.PredictionView{}
	for _, p := range r.s.predictions {
		if p.UserID == userID {
			out = append(out, models.PredictionView{Prediction: p, Stage: r.s.matches[p.MatchID].Stage})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out, nil
}

func (r memPredictionRepo) ListViews(ctx context.Context) ([]models.PredictionView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.PredictionView{}
	for _, p := range r.s.predictions {
		out = append(out, models.PredictionView{Prediction: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPredictionRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.predictions), nil
}

type memUserRepo struct{ s *memStore }

func (r memUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r memUserRepo) CountActiveParticipants(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, u := range r.s.users {
		if u.Role == models.RoleParticipant && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r memUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched := []models.User{}
	for _, u := range r.s.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(u.Email, filter.Search) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

type memLeaderboardRepo struct {
	s     *memStore
	calls int
}

func (r *memLeaderboardRepo) ListParticipantTotals(ctx context.Context) ([]models.ParticipantTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.calls++
	byUser := map[int]*models.ParticipantTotals{}
	for _, u := range r.s.users {
		if u.Role != models.RoleParticipant || !u.IsActive {
			continue
		}
		byUser[u.ID] = &models.ParticipantTotals{UserID: u.ID, DisplayName: u.Name()}
	}
	for _, p := range r.s.predictions {
		t, ok := byUser[p.UserID]
		if !ok {
			continue
		}
		t.TotalPoints += p.PointsEarned
		switch p.ScoringOutcome {
		case models.OutcomeExact:
			t.ExactCount++
		case models.OutcomeCorrect:
			t.CorrectCount++
		}
	}
	out := make([]models.ParticipantTotals, 0, len(byUser))
	for _, t := range byUser {
		out = append(out, *t)
	}
	return out, nil
}

type fakeCache struct {
	standing    []models.LeaderboardEntry
	stored      bool
	generation  int64
	sets        int
	rejected    int
	invalidated int
	getErr      error
}

func (c *fakeCache) Get(ctx context.Context) ([]models.LeaderboardEntry, int64, bool, error) {
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	return c.standing, c.generation, c.stored, nil
}

func (c *fakeCache) SetIfCurrent(ctx context.Context, generation int64, standing []models.LeaderboardEntry) (bool, error) {
	if generation != c.generation {
		c.rejected++
		return false, nil
	}
	c.standing, c.stored = standing, true
	c.sets++
	return true, nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.standing, c.stored = nil, false
	c.generation++
	c.invalidated++
	return nil
}

type fakeBroadcaster struct {
	rooms    []string
	messages []interface{}
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.rooms = append(b.rooms, roomID)
	b.messages = append(b.messages, message)
}
