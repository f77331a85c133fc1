package session

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/playmatatu/tablesim/internal/config"
	"github.com/playmatatu/tablesim/internal/game"
	"github.com/redis/go-redis/v9"
)

type recordingSink struct {
	mu     sync.Mutex
	frames []*game.Frame
}

func (s *recordingSink) PublishFrame(token string, f *game.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func (s *recordingSink) lastTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return 0
	}
	return s.frames[len(s.frames)-1].Tick
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []TableEvent
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, e TableEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		TickRateHz:       500,
		TableWidth:       1200,
		TableHeight:      700,
		TablePreset:      "practice",
		MaxTables:        2,
		TableIdleMinutes: 1,
	}
}

// startPracticeRunner runs a table whose balls start at rest, cue at (200, 350).
func startPracticeRunner(t *testing.T, pub EventPublisher, sinks ...FrameSink) *Runner {
	t.Helper()
	cfg, err := game.PresetConfig("practice", 1200, 700)
	if err != nil {
		t.Fatalf("PresetConfig: %v", err)
	}
	w, err := game.NewWorld(cfg)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	r := NewRunner("table_test", "practice", w, 500, pub, sinks...)

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-r.Done()
	})
	return r
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunnerTicksAndPublishesFrames(t *testing.T) {
	sink := &recordingSink{}
	r := startPracticeRunner(t, nil, sink)

	waitFor(t, func() bool { return sink.lastTick() >= 3 })

	if r.Latest().Tick < 3 {
		t.Errorf("Latest().Tick = %d, want >= 3", r.Latest().Tick)
	}
	if len(r.Latest().Balls) != game.NumBalls {
		t.Errorf("frame has %d balls, want %d", len(r.Latest().Balls), game.NumBalls)
	}
}

func TestRunnerCueDragPublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	r := startPracticeRunner(t, pub)
	ctx := context.Background()

	started, err := r.BeginCueDrag(ctx, game.NewVec2(0, 0))
	if err != nil || started {
		t.Fatalf("BeginCueDrag away from cue = %v, %v; want false, nil", started, err)
	}

	started, err = r.BeginCueDrag(ctx, game.NewVec2(200, 350))
	if err != nil || !started {
		t.Fatalf("BeginCueDrag on cue = %v, %v; want true, nil", started, err)
	}
	if !r.Latest().Dragging {
		t.Error("latest frame should report an active drag")
	}

	if err := r.DragCueTo(ctx, game.NewVec2(210, 350)); err != nil {
		t.Fatalf("DragCueTo: %v", err)
	}
	if err := r.EndCueDrag(ctx); err != nil {
		t.Fatalf("EndCueDrag: %v", err)
	}
	if err := r.EndCueDrag(ctx); err != nil {
		t.Fatalf("second EndCueDrag: %v", err)
	}
	if r.Latest().Dragging {
		t.Error("latest frame still reports a drag")
	}

	want := []string{EventCueDragStarted, EventCueDragEnded}
	if got := pub.types(); !equalStrings(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestRunnerRackAndResize(t *testing.T) {
	pub := &recordingPublisher{}
	r := startPracticeRunner(t, pub)
	ctx := context.Background()

	if err := r.Resize(ctx, 0, 100); !errors.Is(err, game.ErrInvalidBounds) {
		t.Errorf("Resize(0, 100) error = %v, want ErrInvalidBounds", err)
	}
	if err := r.Resize(ctx, 600, 400); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := r.Rack(ctx); err != nil {
		t.Fatalf("Rack: %v", err)
	}

	f := r.Latest()
	if f.Bounds != (game.Bounds{Width: 600, Height: 400}) {
		t.Errorf("bounds = %+v, want 600x400", f.Bounds)
	}
	if cue := f.Balls[0]; cue.X != 100 || cue.Y != 200 {
		t.Errorf("cue after rack = (%v, %v), want (100, 200)", cue.X, cue.Y)
	}

	want := []string{EventResized, EventRacked}
	if got := pub.types(); !equalStrings(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestRunnerStopped(t *testing.T) {
	cfg, _ := game.PresetConfig("practice", 1200, 700)
	w, _ := game.NewWorld(cfg)
	r := NewRunner("table_stopped", "practice", w, 500, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	cancel()
	<-r.Done()

	if err := r.Rack(context.Background()); !errors.Is(err, ErrRunnerStopped) {
		t.Errorf("Rack after stop = %v, want ErrRunnerStopped", err)
	}
}

func TestRunnerDoHonoursContext(t *testing.T) {
	cfg, _ := game.PresetConfig("practice", 1200, 700)
	w, _ := game.NewWorld(cfg)
	// Never started, so nothing receives the command.
	r := NewRunner("table_idle", "practice", w, 500, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Rack(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Rack on idle runner = %v, want DeadlineExceeded", err)
	}
}

func TestManagerLifecycle(t *testing.T) {
	pub := &recordingPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewManager(ctx, testConfig(), pub)
	defer m.CloseAll()

	r1, err := m.Create("")
	if err != nil {
		t.Fatalf("Create default: %v", err)
	}
	if r1.Preset != "practice" {
		t.Errorf("default preset = %q, want practice", r1.Preset)
	}
	r2, err := m.Create("open")
	if err != nil {
		t.Fatalf("Create open: %v", err)
	}
	if r1.Token == r2.Token {
		t.Fatal("tokens should be unique")
	}

	if _, err := m.Create("standard"); !errors.Is(err, ErrTableLimit) {
		t.Errorf("third Create = %v, want ErrTableLimit", err)
	}

	got, err := m.Get(r2.Token)
	if err != nil || got != r2 {
		t.Errorf("Get(%s) = %v, %v", r2.Token, got, err)
	}
	if list := m.List(); len(list) != 2 {
		t.Errorf("List has %d tables, want 2", len(list))
	}

	if err := m.Close(r1.Token); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(r1.Token); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("second Close = %v, want ErrTableNotFound", err)
	}
	if _, err := m.Get(r1.Token); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Get after Close = %v, want ErrTableNotFound", err)
	}
	select {
	case <-r1.Done():
	default:
		t.Error("closed table's runner is still running")
	}

	if got := pub.types(); !equalStrings(got, []string{EventClosed}) {
		t.Errorf("events = %v, want [%s]", got, EventClosed)
	}
}

func TestManagerRejectsUnknownPreset(t *testing.T) {
	m := NewManager(context.Background(), testConfig(), nil)
	if _, err := m.Create("snooker"); !errors.Is(err, game.ErrUnknownPreset) {
		t.Errorf("Create(snooker) = %v, want ErrUnknownPreset", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count = %d after failed create", m.Count())
	}
}

func TestManagerReapsIdleTables(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewManager(ctx, testConfig(), nil)
	defer m.CloseAll()

	stale, err := m.Create("")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fresh, err := m.Create("")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stale.lastActivity.Store(time.Now().Add(-2 * time.Minute).UnixNano())

	if n := m.reapIdle(time.Now()); n != 1 {
		t.Errorf("reapIdle = %d, want 1", n)
	}
	if _, err := m.Get(stale.Token); !errors.Is(err, ErrTableNotFound) {
		t.Error("stale table survived the reaper")
	}
	if _, err := m.Get(fresh.Token); err != nil {
		t.Errorf("fresh table was reaped: %v", err)
	}
}

func TestRedisSinkWithoutClient(t *testing.T) {
	var nilSink *RedisSink
	nilSink.PublishFrame("t", &game.Frame{})
	nilSink.PublishEvent(context.Background(), TableEvent{Type: EventRacked})

	s := NewRedisSink(nil, 0)
	s.PublishFrame("t", &game.Frame{})
	if _, err := s.CachedFrame(context.Background(), "t"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("CachedFrame without client = %v, want ErrTableNotFound", err)
	}
}

// commandLog answers every Redis command locally and records its name.
type commandLog struct {
	mu    sync.Mutex
	names []string
}

func (l *commandLog) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled in tests")
	}
}

func (l *commandLog) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		l.mu.Lock()
		l.names = append(l.names, cmd.Name())
		l.mu.Unlock()
		return nil
	}
}

func (l *commandLog) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		return nil
	}
}

func (l *commandLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

func TestRedisSinkCachesBeforeClosedTableIsDropped(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	cmds := &commandLog{}
	rdb.AddHook(cmds)

	s := NewRedisSink(rdb, time.Second)
	s.PublishFrame("table_a", &game.Frame{Tick: defaultCacheEvery + 1})
	if got := cmds.snapshot(); len(got) != 0 {
		t.Fatalf("off-cycle frame issued %v", got)
	}

	s.PublishFrame("table_a", &game.Frame{Tick: defaultCacheEvery})
	if got := cmds.snapshot(); !equalStrings(got, []string{"setex"}) {
		t.Fatalf("after PublishFrame commands = %v, want the cache write already issued", got)
	}

	s.PublishEvent(context.Background(), TableEvent{Type: EventClosed, Table: "table_a"})
	if got := cmds.snapshot(); !equalStrings(got, []string{"setex", "publish", "del"}) {
		t.Errorf("commands = %v, want setex, publish, del", got)
	}
}

func TestFrameCodecKeepsPositions(t *testing.T) {
	cfg, _ := game.PresetConfig("standard", 1200, 700)
	w, _ := game.NewWorld(cfg)
	w.Tick()
	want := w.Frame()

	data, err := EncodeFrame(want)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}

	if got.Tick != want.Tick || got.Bounds != want.Bounds || len(got.Balls) != len(want.Balls) {
		t.Fatalf("decoded frame header = %d %+v %d balls", got.Tick, got.Bounds, len(got.Balls))
	}
	for i := range want.Balls {
		if got.Balls[i] != want.Balls[i] {
			t.Errorf("ball %d = %+v, want %+v", i, got.Balls[i], want.Balls[i])
		}
	}
	if frameKey("table_ab") != "table:table_ab:frame" {
		t.Errorf("frameKey = %q", frameKey("table_ab"))
	}
}
