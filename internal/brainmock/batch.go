package brainmock

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/logger"
)

// batchTask is one queued batch job. A background goroutine walks it through
// queued, processing and completed with generated per-post results.
type batchTask struct {
	TaskID     string
	AnalysisID int64
	Status     string
	Progress   float64
	TotalPosts int
	Results    []brain.TextResult
}

type batchStore struct {
	mu    sync.RWMutex
	tasks map[string]*batchTask

	gen       *generator
	stepDelay time.Duration
}

func newBatchStore(gen *generator, stepDelay time.Duration) *batchStore {
	return &batchStore{
		tasks:     make(map[string]*batchTask),
		gen:       gen,
		stepDelay: stepDelay,
	}
}

type batchPostInput struct {
	ID      int64
	Content string
	Types   []string
}

// Submit registers a task and starts processing it in the background.
func (s *batchStore) Submit(analysisID int64, posts []batchPostInput) *batchTask {
	task := &batchTask{
		TaskID:     uuid.NewString(),
		AnalysisID: analysisID,
		Status:     brain.BatchQueued,
		TotalPosts: len(posts),
	}

	s.mu.Lock()
	s.tasks[task.TaskID] = task
	s.mu.Unlock()

	go s.process(task.TaskID, posts)
	return task
}

func (s *batchStore) Get(taskID string) (*batchTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, false
	}
	snapshot := *task
	snapshot.Results = task.Results
	return &snapshot, true
}

func (s *batchStore) process(taskID string, posts []batchPostInput) {
	s.update(taskID, func(task *batchTask) {
		task.Status = brain.BatchProcessing
	})

	results := make([]brain.TextResult, 0, len(posts))
	for i, post := range posts {
		if s.stepDelay > 0 {
			time.Sleep(s.stepDelay)
		}
		result := s.gen.textResult(formatPostID(post.ID), post.Content, post.Types)
		results = append(results, result)

		progress := float64(i+1) / float64(len(posts)) * 100
		s.update(taskID, func(task *batchTask) {
			task.Progress = progress
		})
	}

	s.update(taskID, func(task *batchTask) {
		task.Status = brain.BatchCompleted
		task.Progress = 100
		task.Results = results
	})
	logger.Debug("batch task completed", "task_id", taskID, "posts", len(posts))
}

func (s *batchStore) update(taskID string, fn func(*batchTask)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[taskID]; ok {
		fn(task)
	}
}
