package notification

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrGeneratorRunning is returned when a store already has a generator.
	ErrGeneratorRunning = errors.New("notification generator already running")
	// ErrStoreClosed is returned when starting a generator on a closed store.
	ErrStoreClosed = errors.New("notification store closed")
)

// Notifier is the optional platform hook told about synthesized
// notifications, e.g. a browser push channel.
type Notifier interface {
	// RequestPermission reports whether Show may be used.
	RequestPermission() bool
	Show(title, body, tag string)
}

// Template is a fixed shape the generator fabricates notifications from.
type Template struct {
	Type     Type
	Title    string
	Message  string
	Priority Priority
	Category Category
}

// DefaultTemplates is the event set used when GeneratorConfig.Templates is empty.
var DefaultTemplates = []Template{
	{
		Type:     TypeUrgent,
		Title:    "Critical lab value",
		Message:  "A potassium result outside the reference range is waiting for review.",
		Priority: PriorityCritical,
		Category: CategoryMedical,
	},
	{
		Type:     TypeInfo,
		Title:    "New appointment booked",
		Message:  "A patient booked a consultation through the online portal.",
		Priority: PriorityLow,
		Category: CategoryAdministrative,
	},
	{
		Type:     TypeSuccess,
		Title:    "Payment received",
		Message:  "An invoice was paid by card.",
		Priority: PriorityLow,
		Category: CategoryAdministrative,
	},
	{
		Type:     TypeWarning,
		Title:    "Record sync delayed",
		Message:  "Patient records are taking longer than usual to synchronize.",
		Priority: PriorityMedium,
		Category: CategorySystem,
	},
	{
		Type:     TypeAlert,
		Title:    "Patient checked in",
		Message:  "A patient has arrived and is waiting in reception.",
		Priority: PriorityHigh,
		Category: CategoryMedical,
	},
}

// GeneratorConfig controls the synthetic event trickle.
type GeneratorConfig struct {
	Interval          time.Duration
	Probability       float64 // chance a tick produces a notification
	ActionProbability float64 // chance a produced notification requires action
	Templates         []Template
	// Rand is the randomness source; a time-seeded one is used when nil.
	Rand *rand.Rand
}

// DefaultGeneratorConfig returns a 30s interval, 0.2 probability and 0.3
// action probability.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Interval:          30 * time.Second,
		Probability:       0.2,
		ActionProbability: 0.3,
	}
}

// Generator periodically fabricates notifications into a Store.
type Generator struct {
	store    *Store
	notifier Notifier
	cfg      GeneratorConfig
	logger   zerolog.Logger

	mu      sync.Mutex // guards rnd and stopped
	rnd     *rand.Rand
	stopped bool
	allowed bool

	cancel context.CancelFunc
	done   chan struct{}
}

func newGenerator(s *Store, cfg GeneratorConfig, notifier Notifier) *Generator {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultGeneratorConfig().Interval
	}
	if len(cfg.Templates) == 0 {
		cfg.Templates = DefaultTemplates
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Generator{
		store:    s,
		notifier: notifier,
		cfg:      cfg,
		logger:   s.logger.With().Str("component", "notification-generator").Logger(),
		rnd:      rnd,
		done:     make(chan struct{}),
	}
	if notifier != nil {
		g.allowed = notifier.RequestPermission()
	}
	return g
}

// StartGenerator attaches the store's single generator and starts its ticker.
// The generator runs until Close.
func (s *Store) StartGenerator(cfg GeneratorConfig, notifier Notifier) (*Generator, error) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if s.gen != nil {
		return nil, ErrGeneratorRunning
	}

	g := newGenerator(s, cfg, notifier)
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	s.gen = g

	go g.run(ctx)

	g.logger.Info().
		Dur("interval", g.cfg.Interval).
		Float64("probability", g.cfg.Probability).
		Bool("notifier", g.allowed).
		Msg("notification generator started")
	return g, nil
}

// Close stops the generator, if any, and waits for it to exit. No generator
// mutation happens after Close returns. Close is safe to call more than once.
func (s *Store) Close() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.gen != nil {
		s.gen.stop()
	}
}

func (g *Generator) run(ctx context.Context) {
	defer close(g.done)

	ticker := time.NewTicker(g.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Tick()
		}
	}
}

func (g *Generator) stop() {
	g.mu.Lock()
	g.stopped = true
	g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
		<-g.done
	}
	g.logger.Info().Msg("notification generator stopped")
}

// Tick runs one generator iteration. It returns the synthesized notification
// and true when the draw succeeded.
func (g *Generator) Tick() (Notification, bool) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return Notification{}, false
	}
	if g.rnd.Float64() >= g.cfg.Probability {
		g.mu.Unlock()
		g.logger.Debug().Msg("tick produced no notification")
		return Notification{}, false
	}
	tpl := g.cfg.Templates[g.rnd.Intn(len(g.cfg.Templates))]
	action := g.rnd.Float64() < g.cfg.ActionProbability
	// Added while holding mu so stop cannot interleave between the check
	// and the mutation.
	n := g.store.AddNotification(NewNotification{
		Type:           tpl.Type,
		Title:          tpl.Title,
		Message:        tpl.Message,
		Priority:       tpl.Priority,
		Category:       tpl.Category,
		ActionRequired: action,
	})
	g.mu.Unlock()

	g.logger.Info().
		Str("id", n.ID).
		Str("type", string(n.Type)).
		Str("priority", string(n.Priority)).
		Bool("action_required", n.ActionRequired).
		Msg("synthesized notification")

	if g.notifier != nil && g.allowed {
		g.notifier.Show(n.Title, n.Message, n.ID)
	}
	return n, true
}
