// Package dataset implements a local denylist source.
//
// The list is a plain text file, one name per line, '#' starting a
// comment. It can live on disk or be synced from a git repository (many
// public sanctions mirrors are maintained as git repos) on a cron
// schedule. Lookups never touch the network: they match against the
// snapshot loaded in memory, so the dataset source is the cheapest and
// most predictable member of a fan-out.
package dataset

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"sentinel-hq/sentinel/pkg/screening"
	"sentinel-hq/sentinel/pkg/screening/normalize"
	"sentinel-hq/sentinel/pkg/sources"
)

const matchConfidence = 0.9

const clearConfidence = 0.8

// Source answers lookups from a loaded denylist snapshot.
type Source struct {
	cfg      sources.Config
	syncer   *gitSyncer
	snapshot *snapshotStore
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[string]string // normalized -> raw
	health  sources.Health
}

// NewSource creates a denylist source and performs the initial load. When
// a snapshot database is configured and the list file is not yet present
// (first run before the git sync), the snapshot is used instead.
func NewSource(cfg sources.Config) (*Source, error) {
	if cfg.Name == "" {
		return nil, &sources.ConfigError{
			Source:  "dataset",
			Field:   "name",
			Message: "source name is required",
		}
	}
	if cfg.Dataset.Path == "" {
		return nil, &sources.ConfigError{
			Source:  cfg.Name,
			Field:   "dataset.path",
			Message: "list file path is required",
		}
	}

	s := &Source{
		cfg:     cfg,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "sources.dataset", "source", cfg.Name),
		entries: make(map[string]string),
	}

	if cfg.Dataset.GitURL != "" {
		dir := cfg.Dataset.GitDir
		if dir == "" {
			dir = cfg.Dataset.Path + ".git-mirror"
		}
		s.syncer = newGitSyncer(cfg.Dataset.GitURL, cfg.Dataset.GitBranch, dir)
	}

	if cfg.Dataset.SnapshotDB != "" {
		snapshot, err := openSnapshotStore(cfg.Dataset.SnapshotDB)
		if err != nil {
			return nil, &sources.ConfigError{
				Source:  cfg.Name,
				Field:   "dataset.snapshot_db",
				Message: err.Error(),
			}
		}
		s.snapshot = snapshot
	}

	if err := s.Refresh(context.Background()); err != nil {
		s.logger.Warn("initial denylist load failed, starting empty", "error", err)
	}

	if cfg.Dataset.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Dataset.RefreshSchedule); err != nil {
			return nil, &sources.ConfigError{
				Source:  cfg.Name,
				Field:   "dataset.refresh_schedule",
				Message: fmt.Sprintf("invalid cron schedule: %v", err),
			}
		}
		s.cron.AddFunc(cfg.Dataset.RefreshSchedule, func() {
			if err := s.Refresh(context.Background()); err != nil {
				s.logger.Error("scheduled denylist refresh failed", "error", err)
			}
		})
		s.cron.Start()
	}

	s.logger.Info("denylist source initialized",
		"path", cfg.Dataset.Path,
		"git_url", cfg.Dataset.GitURL,
		"entries", s.Len(),
	)

	return s, nil
}

// Name returns the source's configured name.
func (s *Source) Name() string { return s.cfg.Name }

// Type returns "dataset".
func (s *Source) Type() string { return "dataset" }

// Health reports load state: healthy whenever a snapshot is loaded.
func (s *Source) Health() sources.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}

// Len returns the number of loaded entries.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Check matches the name against the loaded denylist.
func (s *Source) Check(ctx context.Context, name, category string) (*screening.SourceCheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, &sources.SourceError{
			Source:  s.cfg.Name,
			Message: "denylist not loaded",
		}
	}

	normalized := normalize.Normalize(name)

	// Exact normalized hit first, then the fuzzy rules
	if raw, ok := s.entries[normalized]; ok {
		return s.blocked(raw), nil
	}
	for _, raw := range s.entries {
		if normalize.Matches(name, raw) {
			return s.blocked(raw), nil
		}
	}

	return &screening.SourceCheckResult{
		IsBlocked:  false,
		Confidence: clearConfidence,
	}, nil
}

func (s *Source) blocked(raw string) *screening.SourceCheckResult {
	return &screening.SourceCheckResult{
		IsBlocked:  true,
		Confidence: matchConfidence,
		Reasons:    []string{fmt.Sprintf("%s: denylist entry %q", s.cfg.Name, raw)},
		SourceData: map[string]any{"entry": raw},
	}
}

// Refresh syncs the git mirror (when configured), reloads the list file,
// and mirrors the result into the snapshot database.
func (s *Source) Refresh(ctx context.Context) error {
	if s.syncer != nil {
		if _, err := s.syncer.Sync(ctx); err != nil {
			s.logger.Warn("denylist git sync failed, keeping current entries", "error", err)
		}
	}

	entries, err := loadListFile(s.cfg.Dataset.Path)
	if err != nil {
		// Fall back to the snapshot database on a missing or unreadable
		// list file
		if s.snapshot != nil {
			snapEntries, snapErr := s.snapshot.Load(ctx)
			if snapErr == nil && len(snapEntries) > 0 {
				s.install(snapEntries)
				s.logger.Info("denylist restored from snapshot", "entries", len(snapEntries))
				return nil
			}
		}
		s.setUnhealthy(err)
		return err
	}

	s.install(entries)

	if s.snapshot != nil {
		if err := s.snapshot.Replace(ctx, entries); err != nil {
			s.logger.Warn("failed to write denylist snapshot", "error", err)
		}
	}

	s.logger.Info("denylist reloaded", "entries", len(entries))
	return nil
}

func (s *Source) install(entries map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.health.IsHealthy = true
	s.health.ConsecutiveFailures = 0
	s.health.LastError = nil
}

func (s *Source) setUnhealthy(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health.ConsecutiveFailures++
	s.health.LastError = err
	if len(s.entries) == 0 {
		s.health.IsHealthy = false
	}
}

// Close stops the refresh schedule and closes the snapshot store.
func (s *Source) Close() error {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	if s.snapshot != nil {
		return s.snapshot.Close()
	}
	return nil
}

// loadListFile reads a denylist file into a normalized -> raw map.
func loadListFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open denylist %q: %w", path, err)
	}
	defer f.Close()

	entries := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		normalized := normalize.Normalize(line)
		if normalized == "" {
			continue
		}
		entries[normalized] = line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read denylist %q: %w", path, err)
	}

	return entries, nil
}
