package notification

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"
)

type fakeNotifier struct {
	mu        sync.Mutex
	permitted bool
	asked     int
	shown     []string
}

func (f *fakeNotifier) RequestPermission() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked++
	return f.permitted
}

func (f *fakeNotifier) Show(title, body, tag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, tag)
}

func (f *fakeNotifier) Shown() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.shown))
	copy(out, f.shown)
	return out
}

// manualConfig never fires on its own within a test run.
func manualConfig(probability float64) GeneratorConfig {
	return GeneratorConfig{
		Interval:          time.Hour,
		Probability:       probability,
		ActionProbability: 0.3,
		Rand:              rand.New(rand.NewSource(42)),
	}
}

func TestGenerator_TickAlwaysFiresAtProbabilityOne(t *testing.T) {
	s := newTestStore(nil)
	defer s.Close()

	g, err := s.StartGenerator(manualConfig(1), nil)
	if err != nil {
		t.Fatalf("StartGenerator: %v", err)
	}

	n, ok := g.Tick()
	if !ok {
		t.Fatal("expected a notification at probability 1")
	}
	if got := s.Snapshot(); len(got) != 1 || got[0].ID != n.ID {
		t.Fatalf("expected the synthesized notification at the front, got %v", ids(got))
	}
	if n.IsRead {
		t.Error("synthesized notification should be unread")
	}

	found := false
	for _, tpl := range DefaultTemplates {
		if tpl.Title == n.Title && tpl.Type == n.Type && tpl.Priority == n.Priority && tpl.Category == n.Category {
			found = true
		}
	}
	if !found {
		t.Errorf("notification %+v does not come from a default template", n)
	}
}

func TestGenerator_TickNeverFiresAtProbabilityZero(t *testing.T) {
	s := newTestStore(nil)
	defer s.Close()

	g, err := s.StartGenerator(manualConfig(0), nil)
	if err != nil {
		t.Fatalf("StartGenerator: %v", err)
	}
	for i := 0; i < 100; i++ {
		if _, ok := g.Tick(); ok {
			t.Fatal("tick produced a notification at probability 0")
		}
	}
	if len(s.Snapshot()) != 0 {
		t.Errorf("expected empty store, got %d", len(s.Snapshot()))
	}
}

func TestGenerator_ProbabilityRoughlyHonoured(t *testing.T) {
	s := newTestStore(nil)
	defer s.Close()

	g, err := s.StartGenerator(manualConfig(0.2), nil)
	if err != nil {
		t.Fatalf("StartGenerator: %v", err)
	}

	const ticks = 5000
	fired, actions := 0, 0
	for i := 0; i < ticks; i++ {
		if n, ok := g.Tick(); ok {
			fired++
			if n.ActionRequired {
				actions++
			}
		}
	}
	if rate := float64(fired) / ticks; rate < 0.15 || rate > 0.25 {
		t.Errorf("fire rate = %.3f, want about 0.2", rate)
	}
	if rate := float64(actions) / float64(fired); rate < 0.2 || rate > 0.4 {
		t.Errorf("action rate = %.3f, want about 0.3", rate)
	}
}

func TestGenerator_SingleInstance(t *testing.T) {
	s := newTestStore(nil)
	defer s.Close()

	if _, err := s.StartGenerator(manualConfig(0), nil); err != nil {
		t.Fatalf("first StartGenerator: %v", err)
	}
	if _, err := s.StartGenerator(manualConfig(0), nil); !errors.Is(err, ErrGeneratorRunning) {
		t.Fatalf("second StartGenerator err = %v, want ErrGeneratorRunning", err)
	}
}

func TestGenerator_NoMutationAfterClose(t *testing.T) {
	s := newTestStore(nil)
	g, err := s.StartGenerator(manualConfig(1), nil)
	if err != nil {
		t.Fatalf("StartGenerator: %v", err)
	}

	s.Close()

	if _, ok := g.Tick(); ok {
		t.Fatal("tick after Close produced a notification")
	}
	if len(s.Snapshot()) != 0 {
		t.Errorf("store mutated after Close: %v", ids(s.Snapshot()))
	}
	if _, err := s.StartGenerator(manualConfig(1), nil); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("StartGenerator after Close err = %v, want ErrStoreClosed", err)
	}

	// A second Close must not block or panic.
	s.Close()
}

func TestGenerator_TickerDrivesGeneration(t *testing.T) {
	s := newTestStore(nil)
	cfg := manualConfig(1)
	cfg.Interval = 5 * time.Millisecond

	if _, err := s.StartGenerator(cfg, nil); err != nil {
		t.Fatalf("StartGenerator: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(s.Snapshot()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Close()

	count := len(s.Snapshot())
	if count < 3 {
		t.Fatalf("expected the ticker to generate at least 3 notifications, got %d", count)
	}
	time.Sleep(30 * time.Millisecond)
	if after := len(s.Snapshot()); after != count {
		t.Errorf("store grew from %d to %d after Close", count, after)
	}
}

func TestGenerator_NotifierShownWhenPermitted(t *testing.T) {
	s := newTestStore(nil)
	defer s.Close()
	notifier := &fakeNotifier{permitted: true}

	g, err := s.StartGenerator(manualConfig(1), notifier)
	if err != nil {
		t.Fatalf("StartGenerator: %v", err)
	}
	n, _ := g.Tick()

	if notifier.asked != 1 {
		t.Errorf("RequestPermission called %d times, want 1", notifier.asked)
	}
	if shown := notifier.Shown(); len(shown) != 1 || shown[0] != n.ID {
		t.Errorf("Show tags = %v, want [%s]", shown, n.ID)
	}
}

func TestGenerator_NotifierSkippedWithoutPermission(t *testing.T) {
	s := newTestStore(nil)
	defer s.Close()
	notifier := &fakeNotifier{permitted: false}

	g, err := s.StartGenerator(manualConfig(1), notifier)
	if err != nil {
		t.Fatalf("StartGenerator: %v", err)
	}
	if _, ok := g.Tick(); !ok {
		t.Fatal("expected a notification")
	}
	if len(notifier.Shown()) != 0 {
		t.Error("Show called without permission")
	}
	if len(s.Snapshot()) != 1 {
		t.Error("missing permission must not affect the store")
	}
}

func TestGenerator_CustomTemplates(t *testing.T) {
	s := newTestStore(nil)
	defer s.Close()
	cfg := manualConfig(1)
	cfg.Templates = []Template{{Type: TypeSuccess, Title: "only", Priority: PriorityLow, Category: CategorySystem}}

	g, err := s.StartGenerator(cfg, nil)
	if err != nil {
		t.Fatalf("StartGenerator: %v", err)
	}
	n, _ := g.Tick()
	if n.Title != "only" {
		t.Errorf("Title = %q, want %q", n.Title, "only")
	}
}

func TestStore_CloseWithoutGenerator(t *testing.T) {
	s := newTestStore(SeedNotifications(baseTime))
	s.Close()
	s.MarkAllAsRead()
	if s.Stats().Unread != 0 {
		t.Error("caller-invoked operations keep working after Close")
	}
}
