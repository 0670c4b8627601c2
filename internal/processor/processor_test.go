package processor

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/offlingo/offlingo/internal/cli"
	"github.com/offlingo/offlingo/internal/testutil"
)

func newTestProcessor(t *testing.T) (*Processor, *testutil.MockRuntime, *bytes.Buffer, string) {
	t.Helper()

	dir := testutil.WriteModelDir(t, "")
	rt := testutil.NewMockRuntime()
	testutil.ScriptModelDir(rt, dir, []int64{testutil.FixtureHiModelID})

	flags := cli.NewFlags()
	flags.ModelDir = dir
	flags.HistoryFile = filepath.Join(t.TempDir(), "history.db")

	p := NewProcessor(flags, rt)
	t.Cleanup(func() { p.Close() })

	var out bytes.Buffer
	p.SetOutput(&out)
	return p, rt, &out, dir
}

func TestNewProcessor(t *testing.T) {
	flags := cli.NewFlags()
	p := NewProcessor(flags, testutil.NewMockRuntime())

	if p == nil {
		t.Fatal("NewProcessor returned nil")
	}
	if p.flags != flags {
		t.Error("Processor flags not set correctly")
	}
	if p.translator == nil {
		t.Error("Translator not initialized")
	}
	if p.breaker == nil {
		t.Error("Circuit breaker not initialized")
	}
}

func TestProcessSingleText(t *testing.T) {
	p, _, out, _ := newTestProcessor(t)

	if err := p.ProcessSingleText("hi"); err != nil {
		t.Fatalf("ProcessSingleText() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hi" {
		t.Errorf("output = %q, want %q", got, "hi")
	}
}

func TestProcessSingleTextRecordsHistory(t *testing.T) {
	p, _, _, _ := newTestProcessor(t)

	if err := p.ProcessSingleText("hello"); err != nil {
		t.Fatalf("ProcessSingleText() error = %v", err)
	}

	var shown bytes.Buffer
	p.SetOutput(&shown)
	if err := p.ShowHistory(5); err != nil {
		t.Fatalf("ShowHistory() error = %v", err)
	}
	if !strings.Contains(shown.String(), `"hello"`) {
		t.Errorf("history output %q does not mention the source text", shown.String())
	}
}

func TestProcessSingleTextNoHistory(t *testing.T) {
	p, _, _, _ := newTestProcessor(t)
	p.flags.NoHistory = true

	if err := p.ProcessSingleText("hello"); err != nil {
		t.Fatalf("ProcessSingleText() error = %v", err)
	}

	var shown bytes.Buffer
	p.SetOutput(&shown)
	if err := p.ShowHistory(5); err != nil {
		t.Fatalf("ShowHistory() error = %v", err)
	}
	if shown.Len() != 0 {
		t.Errorf("history output = %q, want empty with --no-history", shown.String())
	}
}

func TestProcessBatch(t *testing.T) {
	p, _, out, _ := newTestProcessor(t)

	batchFile := filepath.Join(t.TempDir(), "texts.txt")
	testutil.CreateTestFile(t, batchFile, []byte("hello\n# note\nhi\n"))
	p.flags.BatchFile = batchFile

	if err := p.ProcessBatch(); err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	lines := strings.Fields(out.String())
	if len(lines) != 2 {
		t.Fatalf("batch produced %d lines, want 2: %q", len(lines), out.String())
	}
}

func TestProcessSingleTextUnsupportedLanguage(t *testing.T) {
	p, rt, _, dir := newTestProcessor(t)
	p.flags.TargetLang = "xx"

	if err := p.ProcessSingleText("hello"); err == nil {
		t.Fatal("ProcessSingleText() error = nil, want unsupported language")
	}
	if calls := rt.EncoderSession(dir).Calls; calls != 0 {
		t.Errorf("unsupported language still ran the encoder %d times", calls)
	}
}

func TestProcessSingleTextMissingModel(t *testing.T) {
	flags := cli.NewFlags()
	flags.ModelDir = filepath.Join(t.TempDir(), "absent")
	flags.HistoryFile = filepath.Join(t.TempDir(), "history.db")

	p := NewProcessor(flags, testutil.NewMockRuntime())
	defer p.Close()

	if err := p.ProcessSingleText("hello"); err == nil {
		t.Fatal("ProcessSingleText() error = nil, want model load failure")
	}
}

func TestListModels(t *testing.T) {
	p, _, out, dir := newTestProcessor(t)
	p.flags.ModelRoot = filepath.Dir(dir)

	if err := p.ListModels(); err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if !strings.Contains(out.String(), filepath.Base(dir)) {
		t.Errorf("ListModels() output %q does not list the fixture model", out.String())
	}
}

func TestConfigFileOverridesModelDir(t *testing.T) {
	dir := testutil.WriteModelDir(t, "")
	rt := testutil.NewMockRuntime()
	testutil.ScriptModelDir(rt, dir, []int64{testutil.FixtureHiModelID})

	// The flag keeps its default; only the config file knows where the
	// model really is.
	viper.Set("model.dir", dir)
	t.Cleanup(viper.Reset)

	flags := cli.NewFlags()
	flags.ModelDir = filepath.Join(t.TempDir(), "nowhere")
	flags.NoHistory = true

	p := NewProcessor(flags, rt)
	defer p.Close()
	var out bytes.Buffer
	p.SetOutput(&out)

	if err := p.ProcessSingleText("hi"); err != nil {
		t.Fatalf("ProcessSingleText() error = %v, want config model.dir to be used", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hi" {
		t.Errorf("output = %q, want %q", got, "hi")
	}
}

func TestConfigFileOverridesCacheSize(t *testing.T) {
	dir := testutil.WriteModelDir(t, "")
	rt := testutil.NewMockRuntime()
	testutil.ScriptModelDir(rt, dir, []int64{testutil.FixtureHiModelID})

	viper.Set("translation.cache_size", 1)
	t.Cleanup(viper.Reset)

	flags := cli.NewFlags()
	flags.ModelDir = dir
	flags.NoHistory = true

	p := NewProcessor(flags, rt)
	defer p.Close()
	p.SetOutput(&bytes.Buffer{})

	// With a single cache slot, "hi" evicts "hello", so the repeated
	// "hello" has to run the encoder again.
	for _, text := range []string{"hello", "hi", "hello"} {
		if err := p.ProcessSingleText(text); err != nil {
			t.Fatalf("ProcessSingleText(%q) error = %v", text, err)
		}
	}
	if calls := rt.EncoderSession(dir).Calls; calls != 3 {
		t.Errorf("encoder ran %d times, want 3 with cache_size 1", calls)
	}
}

func TestConfigFileOverridesMaxSteps(t *testing.T) {
	dir := testutil.WriteModelDir(t, "")
	rt := testutil.NewMockRuntime()
	testutil.ScriptModelDir(rt, dir, []int64{testutil.FixtureHiModelID, testutil.FixtureHiModelID})

	viper.Set("engine.max_steps", 1)
	t.Cleanup(viper.Reset)

	flags := cli.NewFlags()
	flags.ModelDir = dir
	flags.NoHistory = true

	p := NewProcessor(flags, rt)
	defer p.Close()
	var out bytes.Buffer
	p.SetOutput(&out)

	if err := p.ProcessSingleText("hi"); err != nil {
		t.Fatalf("ProcessSingleText() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hi" {
		t.Errorf("output = %q, want decoding capped after one step", got)
	}
}

func TestBreakerIgnoresLanguageErrors(t *testing.T) {
	p, rt, out, dir := newTestProcessor(t)
	p.flags.TargetLang = "xx"

	for i := 0; i < 4; i++ {
		if err := p.ProcessSingleText("hi"); err == nil {
			t.Fatal("ProcessSingleText() error = nil, want unsupported language")
		}
	}

	// Input mistakes must not have opened the breaker.
	p.flags.TargetLang = "fr"
	if err := p.ProcessSingleText("hi"); err != nil {
		t.Fatalf("ProcessSingleText() after language errors = %v, want success", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hi" {
		t.Errorf("output = %q, want %q", got, "hi")
	}
	if calls := rt.EncoderSession(dir).Calls; calls != 1 {
		t.Errorf("encoder ran %d times, want 1", calls)
	}
}

func TestBreakerTripsOnInferenceFailures(t *testing.T) {
	dir := testutil.WriteModelDir(t, "")
	rt := testutil.NewMockRuntime()
	script := testutil.ScriptModelDir(rt, dir, []int64{testutil.FixtureHiModelID})
	script.FailAtStep = 1
	script.StepErr = errors.New("session exhausted")

	flags := cli.NewFlags()
	flags.ModelDir = dir
	flags.NoHistory = true

	p := NewProcessor(flags, rt)
	defer p.Close()
	p.SetOutput(&bytes.Buffer{})

	for i := 0; i < 3; i++ {
		if err := p.ProcessSingleText("hi"); err == nil {
			t.Fatal("ProcessSingleText() error = nil, want decode failure")
		}
	}

	// Three consecutive runtime failures open the breaker; the next call
	// is rejected before reaching the engine.
	if err := p.ProcessSingleText("hi"); err == nil {
		t.Fatal("ProcessSingleText() error = nil, want open circuit")
	}
	if calls := rt.EncoderSession(dir).Calls; calls != 3 {
		t.Errorf("encoder ran %d times, want 3 with an open breaker", calls)
	}
}

func TestListLanguages(t *testing.T) {
	p, _, out, _ := newTestProcessor(t)

	if err := p.ListLanguages(); err != nil {
		t.Fatalf("ListLanguages() error = %v", err)
	}
	listed := strings.Fields(out.String())
	if len(listed) != 202 {
		t.Errorf("ListLanguages() printed %d codes, want 202", len(listed))
	}
	if !strings.Contains(out.String(), "eng_Latn") {
		t.Error("ListLanguages() output missing eng_Latn")
	}
}
