package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
	"github.com/abelzeko/transit-board/internal/repository"
)

type memoryTable struct {
	header []string
	rows   [][]string
}

// memoryWriter records written tables by path
type memoryWriter struct {
	mu     sync.Mutex
	tables map[string]memoryTable
	writes int
	err    error
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{tables: make(map[string]memoryTable)}
}

func (w *memoryWriter) WriteTable(path string, header []string, rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.writes++
	w.tables[path] = memoryTable{header: header, rows: rows}
	return nil
}

type fakeDepartureSource struct {
	groups []entities.FragmentGroup
	err    error
}

func (s *fakeDepartureSource) FetchDepartureGroups(ctx context.Context, url string) ([]entities.FragmentGroup, error) {
	return s.groups, s.err
}

// fakeNoticeSource serves notice texts by line name; lines in failures return an error
type fakeNoticeSource struct {
	notices  map[string]string
	failures map[string]bool
	mu       sync.Mutex
	calls    int
}

func (s *fakeNoticeSource) FetchLineNotice(ctx context.Context, route entities.Route) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.failures[route.LineName] {
		return "", errors.New("context deadline exceeded")
	}
	return s.notices[route.LineName], nil
}

type fakeRepo struct {
	departures []entities.DepartureRecord
	snapshot   *repository.DisruptionSnapshot
}

func (r *fakeRepo) SaveDepartures(records []entities.DepartureRecord, at time.Time) error {
	r.departures = records
	return nil
}

func (r *fakeRepo) SaveDisruptionCycle(snapshot repository.DisruptionSnapshot) error {
	r.snapshot = &snapshot
	return nil
}

func (r *fakeRepo) GetDepartures() ([]entities.DepartureRecord, error) { return r.departures, nil }

func (r *fakeRepo) GetReport(view string) ([]entities.LineStatus, error) { return nil, nil }

func (r *fakeRepo) GetFailedLines() ([]entities.LineStatus, error) { return nil, nil }

func (r *fakeRepo) GetLastUpdateTime(pipeline string) (time.Time, error) { return time.Time{}, nil }

func (r *fakeRepo) Close() error { return nil }

type publishCall struct {
	message string
	paths   []string
}

type fakePublisher struct {
	calls []publishCall
	err   error
}

func (p *fakePublisher) Publish(ctx context.Context, message string, paths ...string) error {
	p.calls = append(p.calls, publishCall{message: message, paths: paths})
	return p.err
}

type fakeMessageSource struct {
	text string
	ok   bool
	err  error
}

func (s *fakeMessageSource) AwaitMessage(ctx context.Context, timeout time.Duration) (string, bool, error) {
	return s.text, s.ok, s.err
}
