package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yourname/exercisetracker/internal"
)

// dataset is the on-disk layout of the data file.
type dataset struct {
	Users     []*internal.User     `json:"users"`
	Exercises []*internal.Exercise `json:"exercises"`
}

// FileStorage keeps the whole dataset in memory and mirrors it to a single
// JSON file. With a zero flush delay every mutation is written through
// before it returns; otherwise writes are batched by a background worker.
type FileStorage struct {
	users        map[string]*internal.User       // id -> User
	userOrder    []string                        // ids in creation order
	userIndex    map[string][]*internal.Exercise // userID -> exercises in creation order
	exercises    []*internal.Exercise            // all exercises in creation order
	mu           sync.RWMutex
	dataFile     string
	flushDelay   time.Duration
	saveChan     chan struct{}
	shutdownChan chan struct{}
	workerDone   chan struct{}
	closeOnce    sync.Once
	logger       internal.Logger
}

func NewFileStorage(dataFile string, flushDelay time.Duration, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		users:        make(map[string]*internal.User),
		userIndex:    make(map[string][]*internal.Exercise),
		dataFile:     dataFile,
		flushDelay:   flushDelay,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		workerDone:   make(chan struct{}),
		logger:       logger,
	}

	if dir := filepath.Dir(dataFile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create data dir: %w", err)
		}
	}
	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load dataset: %v", err)
		return nil, err
	}

	if flushDelay > 0 {
		go s.saveWorker()
	} else {
		close(s.workerDone)
	}

	return s, nil
}

// load fills the in-memory indexes from the data file. A missing, empty or
// undecodable file starts an empty dataset.
func (s *FileStorage) load() error {
	raw, err := os.ReadFile(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var data dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warnf("storage: %s is corrupt, starting with an empty dataset: %v", s.dataFile, err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range data.Users {
		if u == nil {
			continue
		}
		if _, ok := s.users[u.ID]; ok {
			s.logger.Warnf("storage: skipping duplicate user id %s", u.ID)
			continue
		}
		s.users[u.ID] = u
		s.userOrder = append(s.userOrder, u.ID)
	}
	for _, e := range data.Exercises {
		if e == nil {
			continue
		}
		s.exercises = append(s.exercises, e)
		s.userIndex[e.UserID] = append(s.userIndex[e.UserID], e)
	}
	s.logger.Infof("storage: loaded %d users and %d exercises from %s", len(s.userOrder), len(s.exercises), s.dataFile)
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	if err := os.Rename(tempFile, filePath); err != nil {
		os.Remove(tempFile)
		return err
	}
	return nil
}

// snapshotLocked must be called with s.mu held.
func (s *FileStorage) snapshotLocked() dataset {
	data := dataset{
		Users:     make([]*internal.User, 0, len(s.userOrder)),
		Exercises: make([]*internal.Exercise, len(s.exercises)),
	}
	for _, id := range s.userOrder {
		data.Users = append(data.Users, s.users[id])
	}
	copy(data.Exercises, s.exercises)
	return data
}

func (s *FileStorage) flush() error {
	s.mu.RLock()
	data := s.snapshotLocked()
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.dataFile, data)
}

// commitLocked persists a mutation that has already been applied in memory.
// In write-through mode a failed write undoes it via rollback.
func (s *FileStorage) commitLocked(rollback func()) error {
	if s.flushDelay > 0 {
		select {
		case s.saveChan <- struct{}{}:
		default:
		}
		return nil
	}

	if err := atomicWriteFileJSON(s.dataFile, s.snapshotLocked()); err != nil {
		rollback()
		s.logger.Errorf("storage: error saving dataset: %v", err)
		return fmt.Errorf("storage: save dataset: %w", err)
	}
	return nil
}

// saveWorker batches saves so a burst of mutations costs one write.
func (s *FileStorage) saveWorker() {
	defer close(s.workerDone)

	timer := time.NewTimer(s.flushDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.flushDelay)
		case <-timer.C:
			if err := s.flush(); err != nil {
				s.logger.Errorf("storage: error saving dataset: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

// Close stops the background worker and writes the dataset one last time.
func (s *FileStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownChan)
		<-s.workerDone
		err = s.flush()
	})
	return err
}

// --- UserRepository ---
func (s *FileStorage) CreateUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return ErrDuplicateUser
	}
	s.users[user.ID] = user
	s.userOrder = append(s.userOrder, user.ID)

	return s.commitLocked(func() {
		delete(s.users, user.ID)
		s.userOrder = s.userOrder[:len(s.userOrder)-1]
	})
}

func (s *FileStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *FileStorage) ListUsers(ctx context.Context) ([]internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]internal.User, len(s.userOrder))
	for i, id := range s.userOrder {
		users[i] = *s.users[id]
	}
	return users, nil
}

// --- ExerciseRepository ---
func (s *FileStorage) AddExercise(ctx context.Context, exercise *internal.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[exercise.UserID]; !ok {
		return ErrUserNotFound
	}
	s.exercises = append(s.exercises, exercise)
	s.userIndex[exercise.UserID] = append(s.userIndex[exercise.UserID], exercise)

	return s.commitLocked(func() {
		s.exercises = s.exercises[:len(s.exercises)-1]
		owned := s.userIndex[exercise.UserID]
		s.userIndex[exercise.UserID] = owned[:len(owned)-1]
	})
}

func (s *FileStorage) ListExercises(ctx context.Context, userID string) ([]internal.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owned := s.userIndex[userID]
	exercises := make([]internal.Exercise, len(owned))
	for i, e := range owned {
		exercises[i] = *e
	}
	return exercises, nil
}

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
