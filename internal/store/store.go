// Package store provides persistent storage for plan definitions and
// generated workbook artifacts, with local-disk and AWS backends.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ignite/planner-ranker/internal/config"
	"github.com/ignite/planner-ranker/internal/domain"
	"github.com/ignite/planner-ranker/internal/pkg/logger"
)

// Store keeps the canonical copy of every saved plan. Plans are cached in
// memory and persisted per the configured backend, so edits survive restarts
// and later uploads can be merged against them.
type Store struct {
	cfg config.StorageConfig
	// directory for locally archived workbooks
	outDir string
	mu     sync.RWMutex

	plans map[string]domain.Plan

	// AWS backend (optional)
	aws *AWSStore
}

// New creates a Store for the configured backend and loads any previously
// saved plans. Locally archived workbooks land in out.Dir.
func New(ctx context.Context, cfg config.StorageConfig, out config.OutputConfig) (*Store, error) {
	s := &Store{
		cfg:    cfg,
		outDir: out.Dir,
		plans:  make(map[string]domain.Plan),
	}
	if s.outDir == "" {
		s.outDir = filepath.Join(cfg.LocalPath, "workbooks")
	}

	switch cfg.Type {
	case "aws":
		awsStore, err := NewAWSStore(ctx, cfg.DynamoTable, cfg.S3Bucket, cfg.AWSRegion, cfg.GetAWSProfile())
		if err != nil {
			return nil, fmt.Errorf("initializing AWS storage: %w", err)
		}
		s.aws = awsStore

		plans, err := awsStore.ListPlans(ctx)
		if err != nil {
			logger.Warn("could not load plans from DynamoDB", "error", err)
		}
		for _, p := range plans {
			s.plans[p.PlanID] = p
		}

	case "local":
		if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
		if err := s.loadFromDisk(); err != nil {
			logger.Warn("could not load existing plans", "error", err)
		}

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}

	return s, nil
}

// SavePlan stores or replaces a plan.
func (s *Store) SavePlan(ctx context.Context, plan domain.Plan) error {
	if plan.PlanID == "" {
		return fmt.Errorf("plan id is required")
	}

	s.mu.Lock()
	s.plans[plan.PlanID] = plan
	s.mu.Unlock()

	if s.aws != nil {
		return s.aws.SavePlan(ctx, plan)
	}
	return s.saveToFile(plan)
}

// SavePlans stores a batch of plans, stopping at the first failure.
func (s *Store) SavePlans(ctx context.Context, plans []domain.Plan) error {
	for _, p := range plans {
		if err := s.SavePlan(ctx, p); err != nil {
			return fmt.Errorf("saving plan %s: %w", p.PlanID, err)
		}
	}
	return nil
}

// GetPlan returns the saved plan with the given id, or false if none exists.
func (s *Store) GetPlan(ctx context.Context, planID string) (*domain.Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[planID]
	if !ok {
		return nil, false
	}
	cp := p
	return &cp, true
}

// ListPlans returns all saved plans sorted by plan id.
func (s *Store) ListPlans(ctx context.Context) []domain.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlanID < out[j].PlanID })
	return out
}

// Count returns the number of saved plans.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plans)
}

// Lookup adapts the store to the normalizer's plan lookup signature so
// uploads can be merged against saved plans.
func (s *Store) Lookup() func(ctx context.Context, planID string) (*domain.Plan, bool) {
	return s.GetPlan
}

// ArchiveWorkbook persists a generated workbook. Local storage writes into
// the configured output directory; the AWS backend uploads to S3. The
// stored path or key is returned.
func (s *Store) ArchiveWorkbook(ctx context.Context, name string, data []byte) (string, error) {
	if s.aws != nil {
		key := "workbooks/" + name
		if err := s.aws.PutWorkbook(ctx, key, data); err != nil {
			return "", err
		}
		return key, nil
	}

	dir := s.outDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating workbook directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing workbook: %w", err)
	}
	return path, nil
}

func (s *Store) saveToFile(plan domain.Plan) error {
	dir := filepath.Join(s.cfg.LocalPath, "plans")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Sanitize the id for use as a filename
	safeKey := filepath.Base(plan.PlanID)
	path := filepath.Join(dir, safeKey+".json")

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(plan)
}

func (s *Store) loadFromDisk() error {
	plansDir := filepath.Join(s.cfg.LocalPath, "plans")
	entries, err := os.ReadDir(plansDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(plansDir, entry.Name()))
		if err != nil {
			continue
		}
		var plan domain.Plan
		if err := json.Unmarshal(data, &plan); err == nil && plan.PlanID != "" {
			s.plans[plan.PlanID] = plan
		}
	}

	return nil
}
