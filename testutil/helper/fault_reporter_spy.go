package helper

import (
	"sync"
	"time"

	"github.com/AntonStoeckl/concurrent-transfers-go/ledger"
)

// SpyFaultRecord represents one recorded fault report.
type SpyFaultRecord struct {
	At      time.Time
	Message string
	Detail  error
}

// FaultReporterSpy is a ledger.FaultReporter implementation that captures fault reports for testing.
type FaultReporterSpy struct {
	records []SpyFaultRecord
	mu      sync.Mutex
}

// NewFaultReporterSpy creates a new FaultReporterSpy.
func NewFaultReporterSpy() *FaultReporterSpy {
	return &FaultReporterSpy{records: make([]SpyFaultRecord, 0)}
}

// ReportFault implements the FaultReporter interface.
func (s *FaultReporterSpy) ReportFault(at time.Time, message string, detail error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyFaultRecord{At: at, Message: message, Detail: detail})
}

// GetRecordCount returns the number of captured fault reports.
func (s *FaultReporterSpy) GetRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// GetRecords returns a copy of all captured fault reports.
func (s *FaultReporterSpy) GetRecords() []SpyFaultRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]SpyFaultRecord, len(s.records))
	copy(records, s.records)

	return records
}

// Compile-time check to ensure FaultReporterSpy implements FaultReporter interface.
var _ ledger.FaultReporter = (*FaultReporterSpy)(nil)
