// Package importer copies topics from one store into another with a pool of workers
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-while/go-topics/internal/models"
)

const DefaultWorkers = 4

// Source is where topics are read from, usually a filestore.FileStore
type Source interface {
	ListTopics(ctx context.Context) ([]*models.Topic, error)
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
}

// Sink receives the imported topics, usually a database.Database
type Sink interface {
	ListTopics(ctx context.Context) ([]*models.Topic, error)
	CreateTopic(ctx context.Context, t *models.Topic) (string, error)
}

// Options control an import run
type Options struct {
	Workers  int
	AuthorID int64 // author assigned to every imported topic, 0 for none
	DryRun   bool  // read everything, write nothing
	Update   bool  // skip titles the sink already has
	Verbose  bool
}

// Stats are the counters of an import run
type Stats struct {
	Processed int64
	Errors    int64
	Skipped   int64
	Existing  int64
	Elapsed   time.Duration
}

// Importer copies topics from src to dst
type Importer struct {
	src  Source
	dst  Sink
	opts Options

	processed atomic.Int64
	errors    atomic.Int64
	skipped   atomic.Int64
	existing  atomic.Int64
	startTime time.Time // set once by New, read by StatsReporter
}

// New returns an importer, Workers below 1 falls back to DefaultWorkers
func New(src Source, dst Sink, opts Options) *Importer {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	return &Importer{src: src, dst: dst, opts: opts, startTime: time.Now()}
}

// Run imports every topic of the source. Errors on single topics are counted
// and logged, only listing failures abort the run.
func (imp *Importer) Run(ctx context.Context) (Stats, error) {
	topics, err := imp.src.ListTopics(ctx)
	if err != nil {
		return imp.Stats(), fmt.Errorf("failed to list source topics: %w", err)
	}

	var known map[string]bool
	if imp.opts.Update {
		known, err = imp.knownTitles(ctx)
		if err != nil {
			return imp.Stats(), err
		}
	}

	jobs := make(chan *models.Topic, imp.opts.Workers)
	var wg sync.WaitGroup
	for i := 0; i < imp.opts.Workers; i++ {
		wg.Add(1)
		go imp.worker(ctx, i, jobs, known, &wg)
	}

feed:
	for _, t := range topics {
		select {
		case jobs <- t:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	stats := imp.Stats()
	log.Printf("[IMPORT]: Done processed=%d errors=%d skipped=%d existing=%d elapsed=%v",
		stats.Processed, stats.Errors, stats.Skipped, stats.Existing, stats.Elapsed.Truncate(time.Millisecond))
	return stats, ctx.Err()
}

// Stats returns a snapshot of the counters
func (imp *Importer) Stats() Stats {
	return Stats{
		Processed: imp.processed.Load(),
		Errors:    imp.errors.Load(),
		Skipped:   imp.skipped.Load(),
		Existing:  imp.existing.Load(),
		Elapsed:   time.Since(imp.startTime),
	}
}

// knownTitles returns the titles the sink already stores
func (imp *Importer) knownTitles(ctx context.Context) (map[string]bool, error) {
	existing, err := imp.dst.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list destination topics: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, t := range existing {
		known[t.Title] = true
	}
	return known, nil
}

func (imp *Importer) worker(ctx context.Context, id int, jobs <-chan *models.Topic, known map[string]bool, wg *sync.WaitGroup) {
	defer wg.Done()

	for listed := range jobs {
		if known[listed.Title] {
			imp.existing.Add(1)
			if imp.opts.Verbose {
				log.Printf("[IMPORT]: Worker %d: topic exists, skipping: %s", id, listed.Title)
			}
			continue
		}

		topic, err := imp.src.GetTopic(ctx, listed.ID)
		if errors.Is(err, models.ErrTopicNotFound) {
			// removed while importing
			imp.skipped.Add(1)
			continue
		}
		if err != nil {
			log.Printf("[IMPORT]: Worker %d: Error reading topic %s: %v", id, listed.ID, err)
			imp.errors.Add(1)
			continue
		}

		topic.AuthorID = imp.opts.AuthorID
		if err := models.ValidateTopic(topic); err != nil {
			if imp.opts.Verbose {
				log.Printf("[IMPORT]: Worker %d: skipping %s: %v", id, listed.ID, err)
			}
			imp.skipped.Add(1)
			continue
		}

		if imp.opts.DryRun {
			imp.processed.Add(1)
			continue
		}
		newID, err := imp.dst.CreateTopic(ctx, topic)
		if err != nil {
			log.Printf("[IMPORT]: Worker %d: Error writing topic %s: %v", id, topic.Title, err)
			imp.errors.Add(1)
			continue
		}
		imp.processed.Add(1)
		if imp.opts.Verbose {
			log.Printf("[IMPORT]: Worker %d: imported %s as %s", id, topic.Title, newID)
		}
	}
}

// StatsReporter logs progress every interval until ctx is done
func (imp *Importer) StatsReporter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := imp.Stats()
			rate := float64(s.Processed) / s.Elapsed.Seconds()
			log.Printf("[IMPORT]: Progress: Processed=%d, Errors=%d, Skipped=%d, Existing=%d, Rate=%.1f/sec, Elapsed=%v",
				s.Processed, s.Errors, s.Skipped, s.Existing, rate, s.Elapsed.Truncate(time.Second))
		}
	}
}
