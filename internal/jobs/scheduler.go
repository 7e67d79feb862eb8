package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler sweeps intake leftovers: spooled attachments whose request died
// before the deferred cleanup ran.
type Scheduler struct {
	cron     *cron.Cron
	tempDir  string
	prefix   string
	maxAge   time.Duration
	schedule string
	log      zerolog.Logger
}

func NewScheduler(tempDir, prefix string, maxAge time.Duration, schedule string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		tempDir:  tempDir,
		prefix:   prefix,
		maxAge:   maxAge,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.schedule == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweep() {
	removed, err := SweepTempFiles(s.tempDir, s.prefix, time.Now().Add(-s.maxAge))
	if err != nil {
		s.log.Error().Err(err).Str("dir", s.tempDir).Msg("temp sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Str("dir", s.tempDir).Msg("temp sweep finished")
	}
}

// SweepTempFiles removes regular files named prefix* in dir that were last
// modified before cutoff. A missing dir is not an error.
func SweepTempFiles(dir, prefix string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
