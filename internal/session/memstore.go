package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/google/uuid"
)

// MemStore is an in-memory Store for dev mode and tests. A single
// mutex serializes every mutation, which trivially satisfies the
// compare-and-set contract the Postgres store provides with row locks.
type MemStore struct {
	mu       sync.Mutex
	workouts map[uuid.UUID]*models.Workout
	sessions map[uuid.UUID]*models.Session
	ledger   []models.PersonalRecord
}

// Compile-time check: MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		workouts: make(map[uuid.UUID]*models.Workout),
		sessions: make(map[uuid.UUID]*models.Session),
	}
}

// AddWorkout seeds a catalog template.
func (s *MemStore) AddWorkout(w *models.Workout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	cp.Exercises = append([]models.WorkoutExercise(nil), w.Exercises...)
	for i := range cp.Exercises {
		cp.Exercises[i].Sets = append([]models.WorkoutSet(nil), w.Exercises[i].Sets...)
	}
	s.workouts[w.ID] = &cp
}

func (s *MemStore) GetWorkout(_ context.Context, id uuid.UUID) (*models.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *MemStore) ListWorkouts(_ context.Context) ([]models.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Workout, 0, len(s.workouts))
	for _, w := range s.workouts {
		cp := *w
		cp.Exercises = nil
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) CreateSession(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (s *MemStore) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

func (s *MemStore) ListSessions(_ context.Context, status *models.SessionStatus) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, sess := range s.sessions {
		if status != nil && sess.Status != *status {
			continue
		}
		cp := *sess
		cp.Exercises = nil
		out = append(out, cp)
	}
	// Newest first, id as a stable tiebreak.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *MemStore) RecordSet(_ context.Context, sessionID, setID uuid.UUID, reps int, weight float64, notes string, at time.Time) (*models.SessionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Status != models.StatusInProgress {
		return nil, ErrInvalidState
	}

	for i := range sess.Exercises {
		for j := range sess.Exercises[i].Sets {
			set := &sess.Exercises[i].Sets[j]
			if set.ID != setID {
				continue
			}
			if set.Logged() {
				return nil, ErrSetAlreadyCompleted
			}
			set.ActualReps = &reps
			set.ActualWeight = &weight
			set.CompletedAt = &at
			if notes != "" {
				set.Notes = notes
			}
			cp := *set
			return &cp, nil
		}
	}
	return nil, ErrSetNotFound
}

func (s *MemStore) FinishSession(_ context.Context, id uuid.UUID, status models.SessionStatus, at time.Time, detect DetectFunc) (*models.Session, []models.PersonalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	if sess.Status != models.StatusInProgress {
		return nil, nil, ErrInvalidState
	}

	sess.Status = status
	sess.CompletedAt = &at

	var newRecords []models.PersonalRecord
	if status == models.StatusCompleted {
		sess.TotalVolume = sess.LoggedVolume()
		if detect != nil {
			newRecords = detect(cloneSession(sess), s.bestValues())
			s.ledger = append(s.ledger, newRecords...)
		}
	}
	return cloneSession(sess), newRecords, nil
}

// bestValues returns the greatest achieved value per ledger slot.
func (s *MemStore) bestValues() map[records.Key]float64 {
	bests := make(map[records.Key]float64)
	for _, r := range s.ledger {
		k := records.Key{ExerciseID: r.ExerciseID, Type: r.PRType}
		if v, ok := bests[k]; !ok || r.AchievedValue > v {
			bests[k] = r.AchievedValue
		}
	}
	return bests
}

func (s *MemStore) ListRecords(_ context.Context, sessionID uuid.UUID) ([]models.PersonalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PersonalRecord
	for _, r := range s.ledger {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemStore) CurrentRecords(_ context.Context) ([]models.PersonalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := make(map[records.Key]models.PersonalRecord)
	for _, r := range s.ledger {
		k := records.Key{ExerciseID: r.ExerciseID, Type: r.PRType}
		cur, ok := best[k]
		if !ok || r.AchievedValue > cur.AchievedValue ||
			(r.AchievedValue == cur.AchievedValue && r.AchievedAt.Before(cur.AchievedAt)) {
			best[k] = r
		}
	}
	out := make([]models.PersonalRecord, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExerciseID != out[j].ExerciseID {
			return out[i].ExerciseID.String() < out[j].ExerciseID.String()
		}
		return out[i].PRType < out[j].PRType
	})
	return out, nil
}

func (s *MemStore) RecordSummary(_ context.Context) (*RecordSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &RecordSummary{
		TotalRecords: len(s.ledger),
		ByType:       make(map[models.PRType]int),
	}
	for _, r := range s.ledger {
		summary.ByType[r.PRType]++
	}

	recent := append([]models.PersonalRecord(nil), s.ledger...)
	sort.Slice(recent, func(i, j int) bool { return recent[i].AchievedAt.After(recent[j].AchievedAt) })
	if len(recent) > 10 {
		recent = recent[:10]
	}
	summary.Recent = recent
	return summary, nil
}

func cloneSession(sess *models.Session) *models.Session {
	cp := *sess
	cp.Exercises = append([]models.SessionExercise(nil), sess.Exercises...)
	for i := range cp.Exercises {
		cp.Exercises[i].Sets = append([]models.SessionSet(nil), sess.Exercises[i].Sets...)
	}
	return &cp
}
