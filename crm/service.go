// ABOUTME: Service facade that runs CRM operations against a freshly resolved document
// ABOUTME: Every operation resolves, migrates, then reads or writes; nothing is cached
package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadsheet/models"
)

// Service runs CRM operations. It holds no document state between calls.
type Service struct {
	resolver *Resolver
	migrator *Migrator
	now      func() time.Time
	log      *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for stamped dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.log = logger }
}

func NewService(resolver *Resolver, opts ...Option) *Service {
	s := &Service{resolver: resolver, now: time.Now, log: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.migrator = NewMigrator(s.log)
	return s
}

// Result describes a primary mutation plus the best-effort work that
// followed it.
type Result struct {
	Company  string             `json:"company"`
	Row      int                `json:"row"`
	Outcomes map[string]Outcome `json:"-"`
}

func (r *Result) record(name string, o Outcome) {
	if r.Outcomes == nil {
		r.Outcomes = make(map[string]Outcome)
	}
	r.Outcomes[name] = o
}

// Connect resolves the existing document and brings it to the latest schema.
func (s *Service) Connect(ctx context.Context) (*Conn, error) {
	conn, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.migrator.Migrate(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// ConnectOrCreate is Connect, creating the document when it is missing.
func (s *Service) ConnectOrCreate(ctx context.Context) (*Conn, error) {
	conn, created, err := s.resolver.ResolveOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("created CRM document", "id", conn.DocumentID)
	}
	if _, err := s.migrator.Migrate(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate resolves the document and migrates it, or only reports the plan
// when dryRun is set.
func (s *Service) Migrate(ctx context.Context, dryRun bool) (MigrationReport, error) {
	conn, err := s.resolver.Resolve(ctx)
	if err != nil {
		return MigrationReport{}, err
	}
	if dryRun {
		return s.migrator.Plan(ctx, conn)
	}
	return s.migrator.Migrate(ctx, conn)
}

func (s *Service) propagator(conn *Conn) *Propagator {
	return NewPropagator(conn, s.now, s.log)
}

// Now is the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) today() string {
	return models.FormatDate(s.now())
}

func required(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required: %w", name, ErrValidation)
	}
	return nil
}
