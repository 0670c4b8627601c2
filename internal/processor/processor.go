package processor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sony/gobreaker"
	"github.com/spf13/viper"

	"github.com/offlingo/offlingo/internal/batch"
	"github.com/offlingo/offlingo/internal/cli"
	"github.com/offlingo/offlingo/internal/history"
	"github.com/offlingo/offlingo/internal/infer"
	"github.com/offlingo/offlingo/internal/lang"
	"github.com/offlingo/offlingo/internal/models"
	"github.com/offlingo/offlingo/internal/translation"
)

// Processor handles the main translation run logic
type Processor struct {
	flags      *cli.Flags
	translator *translation.Translator
	breaker    *gobreaker.CircuitBreaker
	out        io.Writer

	// store is nil when history recording is disabled.
	store *history.Store
}

// NewProcessor creates a new processor over an inference runtime
func NewProcessor(flags *cli.Flags, rt infer.Runtime) *Processor {
	// Use config file values if not overridden by flags
	cacheSize := flags.CacheSize
	if viper.IsSet("translation.cache_size") {
		cacheSize = viper.GetInt("translation.cache_size")
	}
	maxSteps := flags.MaxSteps
	if viper.IsSet("engine.max_steps") {
		maxSteps = viper.GetInt("engine.max_steps")
	}

	// Repeated inference failures usually mean broken model files or an
	// exhausted runtime; the breaker stops a batch from grinding through
	// hundreds of doomed calls. Bad input such as an unsupported language
	// code must not open it.
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "translate",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			var infErr *infer.InferenceError
			return !errors.As(err, &infErr)
		},
	})

	return &Processor{
		flags: flags,
		translator: translation.New(rt,
			translation.WithCacheSize(cacheSize),
			translation.WithMaxSteps(maxSteps)),
		breaker: breaker,
		out:     os.Stdout,
	}
}

// Config-file values win over flag defaults but lose to flags the user
// actually set; viper.IsSet reports false for bound flags that were
// never changed, so checking it first gives exactly that ordering.

func (p *Processor) modelDir() string {
	if viper.IsSet("model.dir") {
		return viper.GetString("model.dir")
	}
	return p.flags.ModelDir
}

func (p *Processor) modelRoot() string {
	if viper.IsSet("model.root") {
		return viper.GetString("model.root")
	}
	return p.flags.ModelRoot
}

func (p *Processor) historyFile() string {
	if viper.IsSet("history.file") {
		return viper.GetString("history.file")
	}
	return p.flags.HistoryFile
}

func (p *Processor) historyDisabled() bool {
	return p.flags.NoHistory || viper.GetBool("history.disabled")
}

func (p *Processor) sourceLang() string {
	if viper.IsSet("translation.source") {
		return viper.GetString("translation.source")
	}
	return p.flags.SourceLang
}

func (p *Processor) targetLang() string {
	if viper.IsSet("translation.target") {
		return viper.GetString("translation.target")
	}
	return p.flags.TargetLang
}

// SetOutput redirects translation output (default os.Stdout)
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// Close releases the model and the history store
func (p *Processor) Close() error {
	err := p.translator.Release()
	if p.store != nil {
		if cerr := p.store.Close(); err == nil {
			err = cerr
		}
		p.store = nil
	}
	return err
}

// TranslateText translates one text through the circuit breaker
func (p *Processor) TranslateText(text string) (translation.Result, error) {
	res, err := p.breaker.Execute(func() (interface{}, error) {
		return p.translator.Translate(translation.Request{
			Text:       text,
			SourceLang: p.sourceLang(),
			TargetLang: p.targetLang(),
		})
	})
	if err != nil {
		return translation.Result{}, err
	}
	return res.(translation.Result), nil
}

// ProcessSingleText translates a single text from the command line
func (p *Processor) ProcessSingleText(text string) error {
	if err := p.ensureReady(); err != nil {
		return err
	}

	result, err := p.TranslateText(text)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.out, result.Text)
	p.record(text, result)
	return nil
}

// ProcessBatch translates every text in the batch file, continuing past
// per-text failures
func (p *Processor) ProcessBatch() error {
	texts, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}
	if err := p.ensureReady(); err != nil {
		return err
	}

	processedCount := 0
	errorCount := 0

	for i, text := range texts {
		result, err := p.TranslateText(text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error translating %d/%d %q: %v\n", i+1, len(texts), text, err)
			errorCount++
			continue
		}
		fmt.Fprintln(p.out, result.Text)
		p.record(text, result)
		processedCount++
	}

	fmt.Fprintf(os.Stderr, "\n=== Batch Translation Summary ===\n")
	fmt.Fprintf(os.Stderr, "Total texts: %d\n", len(texts))
	fmt.Fprintf(os.Stderr, "Translated: %d\n", processedCount)
	if errorCount > 0 {
		fmt.Fprintf(os.Stderr, "Errors: %d\n", errorCount)
	}
	fmt.Fprintf(os.Stderr, "=================================\n")

	return nil
}

// ShowHistory prints the most recent stored translations
func (p *Processor) ShowHistory(limit int) error {
	store, err := history.Open(p.historyFile())
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(p.out, "%s  %s -> %s  %q -> %q\n",
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.SourceLang, e.TargetLang, e.SourceText, e.ResultText)
	}
	return nil
}

// ListModels prints the complete model directories under the model root
func (p *Processor) ListModels() error {
	root := p.modelRoot()
	names, err := models.List(root)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintf(p.out, "No complete models found under %s\n", root)
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(p.out, name)
	}
	return nil
}

// ListLanguages prints every supported canonical language code
func (p *Processor) ListLanguages() error {
	for _, code := range lang.Codes {
		fmt.Fprintln(p.out, code)
	}
	return nil
}

// ensureReady loads the model and opens the history store on first use
func (p *Processor) ensureReady() error {
	if err := p.translator.Initialize(p.modelDir()); err != nil {
		return err
	}
	if p.store == nil && !p.historyDisabled() {
		store, err := history.Open(p.historyFile())
		if err != nil {
			// History is a convenience; a broken store must not block
			// translation.
			fmt.Fprintf(os.Stderr, "Warning: translation history disabled: %v\n", err)
			p.flags.NoHistory = true
			return nil
		}
		p.store = store
	}
	return nil
}

// record saves one finished translation, ignoring storage failures
func (p *Processor) record(text string, result translation.Result) {
	if p.store == nil || result.Text == "" {
		return
	}
	_, err := p.store.Save(history.Entry{
		SourceLang: p.sourceLang(),
		TargetLang: p.targetLang(),
		SourceText: text,
		ResultText: result.Text,
		FromCache:  result.FromCache,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record history entry: %v\n", err)
	}
}
