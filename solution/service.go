package solution

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/solnotes/content"
	"github.com/eringen/solnotes/logging"
)

const validationCode = "SOLUTION_VALIDATION_FAILED"

// ErrSlugImmutable is returned when an update tries to rename a solution.
var ErrSlugImmutable = errors.New("slug cannot be changed")

// Config holds the explicit service settings.
type Config struct {
	// Dir is the storage path prefix that holds <slug>.md files.
	Dir   string
	Retry RetryPolicy
	Tags  []Tag
	// Concurrency caps the number of parallel reads during List.
	Concurrency int
}

func (c *Config) setDefaults() {
	c.Dir = content.CleanPath(c.Dir)
	if c.Dir == "" {
		c.Dir = "content/solutions"
	}
	if c.Retry.Attempts <= 0 {
		c.Retry = RetryPolicy{Attempts: 3, Delay: time.Second}
	}
	if len(c.Tags) == 0 {
		c.Tags = DefaultTags
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
}

// Rebuilder is notified after each successful mutation.
type Rebuilder interface {
	Enqueue(reason string)
}

// Result describes a successful mutation. Warning is set when the primary
// write succeeded but mirroring did not.
type Result struct {
	Slug    string
	SHA     string
	Warning string
}

// Option configures a Service.
type Option func(*Service)

// WithMirror writes every mutation to a secondary backend after the
// primary one.
func WithMirror(b content.Backend) Option {
	return func(s *Service) {
		s.mirror = b
	}
}

// WithRebuilder sets the rebuild trigger.
func WithRebuilder(r Rebuilder) Option {
	return func(s *Service) {
		if r != nil {
			s.rebuilder = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) {
		s.logger = logging.OrNoOp(l)
	}
}

// WithClock overrides the time source used for solution dates.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Service reads and writes solutions through a content.Backend.
type Service struct {
	cfg       Config
	backend   content.Backend
	mirror    content.Backend
	rebuilder Rebuilder
	logger    logging.Logger
	clock     func() time.Time
}

// NewService builds a Service over backend.
func NewService(cfg Config, backend content.Backend, opts ...Option) *Service {
	cfg.setDefaults()
	s := &Service{
		cfg:       cfg,
		backend:   backend,
		rebuilder: noopRebuilder{},
		logger:    logging.NoOp(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tags returns the tag catalog.
func (s *Service) Tags() []Tag { return s.cfg.Tags }

// Path returns the storage path for slug.
func (s *Service) Path(slug string) string {
	return path.Join(s.cfg.Dir, slug+".md")
}

// List returns every parseable solution, newest first. Files that cannot be
// read or parsed are logged and skipped.
func (s *Service) List(ctx context.Context) ([]Solution, error) {
	var entries []content.Entry
	err := s.retry(ctx, "list", func(int) error {
		var err error
		entries, err = s.backend.List(ctx, s.cfg.Dir)
		return err
	})
	if err != nil {
		if content.IsNotFound(err) {
			return []Solution{}, nil
		}
		return nil, fmt.Errorf("list solutions: %w", err)
	}

	var (
		mu        sync.Mutex
		solutions = make([]Solution, 0, len(entries))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, e := range entries {
		if e.Type != "file" || !strings.HasSuffix(e.Name, ".md") {
			continue
		}
		slug := strings.TrimSuffix(e.Name, ".md")
		if !slugPattern.MatchString(slug) {
			s.logger.Warn("skipping solution", "file", e.Name, "error", "file name is not a valid slug")
			continue
		}
		g.Go(func() error {
			sol, err := s.read(gctx, slug)
			if err != nil {
				s.logger.Warn("skipping solution", "slug", slug, "error", err)
				return nil
			}
			mu.Lock()
			solutions = append(solutions, sol)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	SortByDate(solutions)
	return solutions, nil
}

// SortByDate orders solutions by date descending, ties by slug.
func SortByDate(solutions []Solution) {
	sort.SliceStable(solutions, func(i, j int) bool {
		ti, tj := parseDate(solutions[i].Date), parseDate(solutions[j].Date)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return solutions[i].Slug < solutions[j].Slug
	})
}

// Time parses the stored date. It returns the zero time when the date is
// not a timestamp or a plain day.
func (s Solution) Time() time.Time { return parseDate(s.Date) }

func parseDate(v string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Get returns the solution for slug. The bool is false when it does not
// exist.
func (s *Service) Get(ctx context.Context, slug string) (Solution, bool, error) {
	if !slugPattern.MatchString(slug) {
		return Solution{}, false, nil
	}
	var sol Solution
	err := s.retry(ctx, "get", func(int) error {
		var err error
		sol, err = s.read(ctx, slug)
		return err
	})
	switch {
	case err == nil:
		return sol, true, nil
	case content.IsNotFound(err):
		return Solution{}, false, nil
	default:
		return Solution{}, false, fmt.Errorf("get solution %q: %w", slug, err)
	}
}

func (s *Service) read(ctx context.Context, slug string) (Solution, error) {
	f, err := s.backend.Read(ctx, s.Path(slug))
	if err != nil {
		return Solution{}, err
	}
	sol, err := Parse(slug, f.Content)
	if err != nil {
		return Solution{}, err
	}
	sol.SHA = f.SHA
	return sol, nil
}

// Create stores a new solution. An existing slug is a conflict.
func (s *Service) Create(ctx context.Context, in Input) (Result, error) {
	in = in.Normalize()
	if err := s.validate(in); err != nil {
		return Result{}, err
	}

	data, err := s.encode(in, s.clock())
	if err != nil {
		return Result{}, err
	}
	p := s.Path(in.Slug)
	message := "Add solution: " + in.Title

	var written content.File
	err = s.retry(ctx, "create", func(int) error {
		var err error
		written, err = s.backend.Write(ctx, p, data, message, "")
		if content.IsConflict(err) {
			return permanent(err)
		}
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("create solution %q: %w", in.Slug, err)
	}

	res := Result{Slug: in.Slug, SHA: written.SHA}
	res.Warning = s.mirrorWrite(ctx, p, data, message)
	s.logger.Info("solution created", "slug", in.Slug, "sha", written.SHA)
	s.rebuilder.Enqueue("create " + in.Slug)
	return res, nil
}

// Update replaces an existing solution. The slug cannot change.
func (s *Service) Update(ctx context.Context, slug string, in Input) (Result, error) {
	in = in.Normalize()
	if err := s.validate(in); err != nil {
		return Result{}, err
	}
	if in.Slug != slug {
		return Result{}, wrapValidation(validation.Errors{"slug": ErrSlugImmutable})
	}

	p := s.Path(slug)
	message := "Update solution: " + in.Title

	var (
		data    []byte
		written content.File
	)
	err := s.retry(ctx, "update", func(int) error {
		current, err := s.backend.Read(ctx, p)
		if err != nil {
			return err
		}
		if data, err = s.encode(in, s.updateTime(slug, current.Content)); err != nil {
			return permanent(err)
		}
		written, err = s.backend.Write(ctx, p, data, message, current.SHA)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("update solution %q: %w", slug, err)
	}

	res := Result{Slug: slug, SHA: written.SHA}
	res.Warning = s.mirrorWrite(ctx, p, data, message)
	s.logger.Info("solution updated", "slug", slug, "sha", written.SHA)
	s.rebuilder.Enqueue("update " + slug)
	return res, nil
}

// Delete removes a solution. A missing slug is a not-found error.
func (s *Service) Delete(ctx context.Context, slug string) (Result, error) {
	if !slugPattern.MatchString(slug) {
		return Result{}, wrapValidation(validation.Errors{"slug": validation.NewError("solution.slug_invalid", "invalid slug")})
	}
	p := s.Path(slug)
	message := "Delete solution: " + slug

	err := s.retry(ctx, "delete", func(int) error {
		current, err := s.backend.Read(ctx, p)
		if err != nil {
			return err
		}
		return s.backend.Delete(ctx, p, message, current.SHA)
	})
	if err != nil {
		return Result{}, fmt.Errorf("delete solution %q: %w", slug, err)
	}

	res := Result{Slug: slug}
	res.Warning = s.mirrorDelete(ctx, p, message)
	s.logger.Info("solution deleted", "slug", slug)
	s.rebuilder.Enqueue("delete " + slug)
	return res, nil
}

func (s *Service) mirrorWrite(ctx context.Context, p string, data []byte, message string) string {
	if s.mirror == nil {
		return ""
	}
	err := s.retry(ctx, "mirror write", func(int) error {
		sha := ""
		current, err := s.mirror.Read(ctx, p)
		switch {
		case err == nil:
			sha = current.SHA
		case !content.IsNotFound(err):
			return err
		}
		_, err = s.mirror.Write(ctx, p, data, message, sha)
		return err
	})
	if err != nil {
		s.logger.Error("mirror write failed", "path", p, "error", err)
		return "saved locally, but mirroring failed: " + unwrapPermanent(err).Error()
	}
	return ""
}

func (s *Service) mirrorDelete(ctx context.Context, p, message string) string {
	if s.mirror == nil {
		return ""
	}
	err := s.retry(ctx, "mirror delete", func(int) error {
		current, err := s.mirror.Read(ctx, p)
		if err != nil {
			return err
		}
		return s.mirror.Delete(ctx, p, message, current.SHA)
	})
	if err != nil && !content.IsNotFound(err) {
		s.logger.Error("mirror delete failed", "path", p, "error", err)
		return "deleted locally, but mirroring failed: " + unwrapPermanent(err).Error()
	}
	return ""
}

func (s *Service) validate(in Input) error {
	if err := in.Validate(s.cfg.Tags); err != nil {
		return wrapValidation(err)
	}
	return nil
}

// updateTime returns now, or the stored date plus one millisecond when the
// clock has not moved past it.
func (s *Service) updateTime(slug string, stored []byte) time.Time {
	now := s.clock()
	prev, err := Parse(slug, stored)
	if err != nil {
		return now
	}
	if t := prev.Time(); !t.IsZero() && !now.After(t) {
		return t.Add(time.Millisecond)
	}
	return now
}

func (s *Service) encode(in Input, at time.Time) ([]byte, error) {
	return Marshal(Solution{
		Slug:       in.Slug,
		Title:      in.Title,
		Date:       at.UTC().Format(DateLayout),
		Difficulty: in.Difficulty,
		Excerpt:    in.Excerpt,
		Content:    in.Content,
		Tags:       in.Tags,
	})
}

func wrapValidation(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "solution validation failed").
		WithTextCode(validationCode)
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

// FieldErrors extracts per-field messages from a validation failure.
func FieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for field, e := range verrs {
		if e != nil {
			out[field] = e.Error()
		}
	}
	return out
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func unwrapPermanent(err error) error {
	var p *permanentError
	if errors.As(err, &p) {
		return p.err
	}
	return err
}

type noopRebuilder struct{}

func (noopRebuilder) Enqueue(string) {}
