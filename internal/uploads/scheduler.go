package uploads

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/store"
)

// DefaultTTL is how long an upload stays on disk.
const DefaultTTL = 5 * time.Minute

// Handle is a pending deletion. Cancel keeps the file on disk.
type Handle struct {
	Path     string
	DeleteAt time.Time

	timer     *clock.Timer
	scheduler *Scheduler
}

// Cancel stops the pending deletion. Returns false if it already ran or was cancelled.
func (h *Handle) Cancel() bool {
	s := h.scheduler
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[h.Path] != h {
		return false
	}
	delete(s.pending, h.Path)
	return h.timer.Stop()
}

// Scheduler deletes uploads once their TTL has passed. Deletion failures are
// logged and otherwise ignored.
type Scheduler struct {
	clock  clock.Clock
	ttl    time.Duration
	ledger store.UploadStore
	log    *zerolog.Logger
	remove func(string) error

	mu      sync.Mutex
	pending map[string]*Handle
	stopped bool
}

// NewScheduler builds a scheduler. ledger may be nil, in which case pending
// deletions are not persisted.
func NewScheduler(clk clock.Clock, ttl time.Duration, ledger store.UploadStore, logger *zerolog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Scheduler{
		clock:   clk,
		ttl:     ttl,
		ledger:  ledger,
		log:     logger,
		remove:  os.Remove,
		pending: make(map[string]*Handle),
	}
}

// Schedule records the upload and arranges for its deletion after the TTL.
// StoredAt and DeleteAt are filled in from the scheduler's clock.
func (s *Scheduler) Schedule(ctx context.Context, upload *store.Upload) *Handle {
	now := s.clock.Now()
	upload.StoredAt = now
	upload.DeleteAt = now.Add(s.ttl)

	if s.ledger != nil {
		if err := s.ledger.RecordUpload(ctx, upload); err != nil {
			s.log.Warn().Err(err).Str("path", upload.Path).Msg("failed to record upload")
		}
	}
	return s.scheduleAt(upload.Path, upload.DeleteAt)
}

// Resume re-arms deletions recorded before a restart. Overdue uploads are
// deleted right away.
func (s *Scheduler) Resume(ctx context.Context) (int, error) {
	if s.ledger == nil {
		return 0, nil
	}
	uploads, err := s.ledger.PendingUploads(ctx)
	if err != nil {
		return 0, err
	}
	for _, u := range uploads {
		s.scheduleAt(u.Path, u.DeleteAt)
	}
	return len(uploads), nil
}

// Pending returns the number of deletions still waiting.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending timer. Records stay in the ledger so Resume can
// pick them up on the next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for path, h := range s.pending {
		h.timer.Stop()
		delete(s.pending, path)
	}
}

func (s *Scheduler) scheduleAt(path string, at time.Time) *Handle {
	h := &Handle{Path: path, DeleteAt: at, scheduler: s}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return h
	}
	if prev, ok := s.pending[path]; ok {
		prev.timer.Stop()
	}

	delay := at.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}
	h.timer = s.clock.AfterFunc(delay, func() { s.expire(h) })
	s.pending[path] = h
	return h
}

func (s *Scheduler) expire(h *Handle) {
	s.mu.Lock()
	if s.pending[h.Path] != h {
		s.mu.Unlock()
		return
	}
	delete(s.pending, h.Path)
	s.mu.Unlock()

	err := s.remove(h.Path)
	switch {
	case err == nil:
		s.log.Info().Str("path", h.Path).Msg("upload deleted")
	case errors.Is(err, fs.ErrNotExist):
		s.log.Warn().Str("path", h.Path).Msg("upload already gone")
	default:
		s.log.Error().Err(err).Str("path", h.Path).Msg("failed to delete upload")
		return
	}

	if s.ledger != nil {
		if markErr := s.ledger.MarkDeleted(context.Background(), h.Path, s.clock.Now()); markErr != nil {
			s.log.Warn().Err(markErr).Str("path", h.Path).Msg("failed to mark upload deleted")
		}
	}
}
