package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/newsdesk/app/database"
	"github.com/lysyi3m/newsdesk/app/feed"
	"github.com/lysyi3m/newsdesk/app/news"
)

type fakePublisher struct {
	mu        sync.Mutex
	received  []news.Submission
	err       error
	published chan struct{}
}

func (p *fakePublisher) Publish(ctx context.Context, submission news.Submission) (news.Story, error) {
	p.mu.Lock()
	p.received = append(p.received, submission)
	err := p.err
	p.mu.Unlock()

	if p.published != nil {
		p.published <- struct{}{}
	}
	if err != nil {
		return news.Story{}, err
	}
	return news.Story{ID: "story-" + submission.Title}, nil
}

func (p *fakePublisher) submissions() []news.Submission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]news.Submission(nil), p.received...)
}

type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []TaskInterface
	err   error
}

func (e *recordingEnqueuer) Start() {}
func (e *recordingEnqueuer) Stop()  {}

func (e *recordingEnqueuer) ImportSource(name string) error {
	return nil
}

func (e *recordingEnqueuer) EnqueueTask(task TaskInterface) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.err != nil {
		return e.err
	}
	e.tasks = append(e.tasks, task)
	return nil
}

// overlappingKV holds every Get until a second Get arrives or a short wait
// expires, so unserialized imports both read the list before either saves.
type overlappingKV struct {
	*database.MemoryKV
	mu   sync.Mutex
	gets int
	both chan struct{}
}

func newOverlappingKV() *overlappingKV {
	return &overlappingKV{MemoryKV: database.NewMemoryKV(), both: make(chan struct{})}
}

func (kv *overlappingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	kv.mu.Lock()
	kv.gets++
	if kv.gets == 2 {
		close(kv.both)
	}
	kv.mu.Unlock()

	select {
	case <-kv.both:
	case <-time.After(100 * time.Millisecond):
	}

	return kv.MemoryKV.Get(ctx, key)
}

const importRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Springfield Gazette</title>
    <item>
      <title>Library extends weekend hours</title>
      <link>https://gazette.example.com/library</link>
      <description>&lt;p&gt;The public library will stay open until 8pm on weekends, giving local residents more time.&lt;/p&gt;</description>
    </item>
    <item>
      <title>SPONSORED: discount mattresses</title>
      <link>https://gazette.example.com/ad</link>
      <description>Huge savings this weekend only at the mattress outlet by the highway exit.</description>
    </item>
    <item>
      <title>Bake sale raises funds for school trip</title>
      <link>https://gazette.example.com/bake-sale</link>
      <description>Parents in the neighborhood raised money for the fifth grade school trip with a bake sale.</description>
    </item>
    <item>
      <title>Short</title>
      <link>https://gazette.example.com/short</link>
      <description>Too short.</description>
    </item>
  </channel>
</rss>`

func writeImportFixture(t *testing.T, settings string) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gazette.xml"), []byte(importRSS), 0644); err != nil {
		t.Fatal(err)
	}

	config := `
path: "gazette.xml"
city: "Springfield"
topic: "Community Event"
publisher_name: "Springfield Gazette"
publisher_phone: "555-010-2030"
settings:
  ` + settings + `
filters:
  - field: "title"
    excludes:
      - "sponsored"
`
	if err := os.WriteFile(filepath.Join(dir, "gazette.yml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	return dir
}

func loadFixtureConfig(t *testing.T, settings string) *feed.Config {
	t.Helper()

	configCache := feed.NewConfigCache(writeImportFixture(t, settings))
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("gazette")
	if err != nil {
		t.Fatal(err)
	}
	return config
}

func TestImportSourceTask_QueuesNewItems(t *testing.T) {
	ctx := context.Background()
	config := loadFixtureConfig(t, "enabled: true")
	kv := database.NewMemoryKV()
	enqueuer := &recordingEnqueuer{}

	task := NewImportSourceTask(config, feed.NewParser(), feed.NewFilterer(), kv, &fakePublisher{}, enqueuer, NewSourceLocks())
	if err := task.Execute(ctx); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(enqueuer.tasks) != 2 {
		t.Fatalf("Expected 2 queued submissions, got %d", len(enqueuer.tasks))
	}

	first := enqueuer.tasks[0].(*SubmitStoryTask)
	if first.Submission.Title != "Library extends weekend hours" {
		t.Errorf("Expected library story first, got '%s'", first.Submission.Title)
	}
	if strings.Contains(first.Submission.Description, "<p>") {
		t.Errorf("Expected plain text description, got '%s'", first.Submission.Description)
	}
	if first.Submission.City != "Springfield" || first.Submission.Topic != news.TopicCommunityEvent {
		t.Errorf("Expected source city and topic, got %+v", first.Submission)
	}
	if first.GetSourceName() != "gazette" {
		t.Errorf("Expected source name 'gazette', got '%s'", first.GetSourceName())
	}

	seen, _ := database.LoadList[string](ctx, kv, database.ImportKey("gazette"))
	if len(seen) != 3 {
		t.Errorf("Expected 2 queued and 1 invalid hash to be remembered, got %d", len(seen))
	}

	// Running again finds nothing new
	again := NewImportSourceTask(config, feed.NewParser(), feed.NewFilterer(), kv, &fakePublisher{}, enqueuer, NewSourceLocks())
	if err := again.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	if len(enqueuer.tasks) != 2 {
		t.Errorf("Expected no duplicates on re-import, got %d tasks", len(enqueuer.tasks))
	}
}

func TestImportSourceTask_ConcurrentRunsOfSameSource(t *testing.T) {
	ctx := context.Background()
	config := loadFixtureConfig(t, "enabled: true")
	kv := newOverlappingKV()
	enqueuer := &recordingEnqueuer{}
	locks := NewSourceLocks()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := NewImportSourceTask(config, feed.NewParser(), feed.NewFilterer(), kv, &fakePublisher{}, enqueuer, locks)
			if err := task.Execute(ctx); err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		}()
	}
	wg.Wait()

	perTitle := make(map[string]int)
	for _, task := range enqueuer.tasks {
		perTitle[task.(*SubmitStoryTask).Submission.Title]++
	}
	if len(enqueuer.tasks) != 2 {
		t.Errorf("Expected 2 queued submissions, got %d: %v", len(enqueuer.tasks), perTitle)
	}
	for title, count := range perTitle {
		if count != 1 {
			t.Errorf("Expected '%s' to be queued once, got %d", title, count)
		}
	}

	seen, _ := database.LoadList[string](ctx, kv.MemoryKV, database.ImportKey("gazette"))
	if len(seen) != 3 {
		t.Errorf("Expected 3 remembered hashes, got %d", len(seen))
	}
}

func TestSourceLocks_IndependentSources(t *testing.T) {
	locks := NewSourceLocks()

	unlockGazette := locks.Lock("gazette")
	defer unlockGazette()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("herald")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Expected a different source not to wait for gazette")
	}
}

func TestImportSourceTask_MaxItems(t *testing.T) {
	ctx := context.Background()
	config := loadFixtureConfig(t, "max_items: 1")
	kv := database.NewMemoryKV()
	enqueuer := &recordingEnqueuer{}

	task := NewImportSourceTask(config, feed.NewParser(), feed.NewFilterer(), kv, &fakePublisher{}, enqueuer, NewSourceLocks())
	if err := task.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	if len(enqueuer.tasks) != 1 {
		t.Fatalf("Expected 1 queued submission, got %d", len(enqueuer.tasks))
	}

	// The next run picks up where the previous one stopped
	next := NewImportSourceTask(config, feed.NewParser(), feed.NewFilterer(), kv, &fakePublisher{}, enqueuer, NewSourceLocks())
	if err := next.Execute(ctx); err != nil {
		t.Fatal(err)
	}
	if len(enqueuer.tasks) != 2 {
		t.Errorf("Expected 2 queued submissions after second run, got %d", len(enqueuer.tasks))
	}
}

func TestImportSourceTask_QueueFailureKeepsItemsForLater(t *testing.T) {
	ctx := context.Background()
	config := loadFixtureConfig(t, "enabled: true")
	kv := database.NewMemoryKV()

	task := NewImportSourceTask(config, feed.NewParser(), feed.NewFilterer(), kv, &fakePublisher{}, &recordingEnqueuer{err: errors.New("task queue is full")}, NewSourceLocks())
	if err := task.Execute(ctx); err != nil {
		t.Fatal(err)
	}

	seen, _ := database.LoadList[string](ctx, kv, database.ImportKey("gazette"))
	if len(seen) != 0 {
		t.Errorf("Expected nothing remembered when nothing was queued, got %d hashes", len(seen))
	}
}

func TestImportSourceTask_MissingFile(t *testing.T) {
	config := loadFixtureConfig(t, "enabled: true")
	config.Path = filepath.Join(t.TempDir(), "missing.xml")

	task := NewImportSourceTask(config, feed.NewParser(), feed.NewFilterer(), database.NewMemoryKV(), &fakePublisher{}, &recordingEnqueuer{}, NewSourceLocks())
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected error for missing source file")
	}
}

func TestSubmitStoryTask(t *testing.T) {
	submission := news.Submission{Title: "Library extends weekend hours"}

	tests := map[string]struct {
		err       error
		wantError bool
	}{
		"published": {},
		"rejected":  {err: &news.RejectionError{Rule: "spam", Reason: "spam"}},
		"pipeline":  {err: news.ErrPipelineFailure, wantError: true},
		"storage":   {err: &database.StorageError{Op: "save", Key: database.StoriesKey, Err: errors.New("disk full")}, wantError: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			publisher := &fakePublisher{err: tt.err}
			task := NewSubmitStoryTask("gazette", submission, publisher)

			err := task.Execute(context.Background())
			if (err != nil) != tt.wantError {
				t.Errorf("Expected error=%v, got: %v", tt.wantError, err)
			}
			if tt.wantError && !errors.Is(err, tt.err) {
				t.Errorf("Expected error to wrap cause, got: %v", err)
			}
			if len(publisher.submissions()) != 1 {
				t.Errorf("Expected one publish attempt, got %d", len(publisher.submissions()))
			}
		})
	}
}
