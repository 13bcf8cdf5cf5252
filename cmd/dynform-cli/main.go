package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	dynform "github.com/goliatone/go-dynform"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/httpapi"
	"github.com/goliatone/go-dynform/pkg/i18n"
	"github.com/goliatone/go-dynform/pkg/options"
	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/prompt"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/submission"
)

func main() {
	source := flag.String("schema", "", "form schema path or URL")
	payloadPath := flag.String("payload", "", "resource payload JSON file")
	baseURL := flag.String("base-url", "", "API base URL for allowed values and submission")
	groupsDir := flag.String("groups", "", "directory with JSON/YAML group definitions")
	presetPath := flag.String("preset", "", "JSON/YAML field preset file")
	locale := flag.String("locale", "en", "locale for labels and placeholders")
	format := flag.String("format", "yaml", "output format: yaml or json")
	fill := flag.Bool("fill", false, "fill the form interactively and print the submission payload")
	submit := flag.String("submit", "", "endpoint to POST the filled form to (implies -fill)")
	serve := flag.String("serve", "", "serve the HTTP API on this address instead of printing")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if *debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Development = true
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("failed to build logger: %w", err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithLocale(i18n.StaticLocale(*locale)),
		orchestrator.WithFetcher(options.NewHTTPFetcher(options.WithBaseURL(*baseURL))),
	}
	if *groupsDir != "" {
		opts = append(opts, orchestrator.WithGroupsFS(os.DirFS(*groupsDir)))
	}
	if *presetPath != "" {
		preset, err := loadPreset(*presetPath)
		if err != nil {
			sugar.Fatalf("load preset: %v", err)
		}
		opts = append(opts, orchestrator.WithSchemaTransformer(preset))
	}
	orch := dynform.NewOrchestrator(opts...)

	if *serve != "" {
		srv := &http.Server{Addr: *serve, Handler: httpapi.NewRouter(orch, httpapi.WithLogger(logger))}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		sugar.Infow("serving form API", "addr", *serve)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("serve: %v", err)
		}
		return
	}

	if strings.TrimSpace(*source) == "" {
		sugar.Error("-schema is required")
		flag.Usage()
		os.Exit(2)
	}
	src, err := dynform.ParseSource(*source)
	if err != nil {
		sugar.Fatalf("invalid source %q: %v", *source, err)
	}
	doc, err := schema.Load(ctx, nil, src)
	if err != nil {
		sugar.Fatalf("load schema: %v", err)
	}
	payload, err := loadPayload(*payloadPath)
	if err != nil {
		sugar.Fatalf("load payload: %v", err)
	}

	model := orch.GetModel(payload)
	fields, err := orch.GetConfig(ctx, doc, model)
	if err != nil {
		sugar.Fatalf("build form: %v", err)
	}

	if !*fill && *submit == "" {
		if err := write(os.Stdout, *format, fields); err != nil {
			sugar.Fatalf("write output: %v", err)
		}
		return
	}

	f := form.New(fields, model)
	if err := prompt.New(prompt.WithLogger(logger)).Fill(ctx, fields, f); err != nil {
		sugar.Fatalf("fill form: %v", err)
	}
	if *submit == "" {
		if err := write(os.Stdout, *format, submission.FormatModel(f.RawValue())); err != nil {
			sugar.Fatalf("write output: %v", err)
		}
		return
	}

	svc := dynform.NewSubmissionService(*baseURL)
	body, err := svc.Submit(ctx, f, *submit, "", http.MethodPost)
	if err != nil {
		for key, errs := range f.Errors() {
			for _, detail := range errs {
				sugar.Warnw("validation error", "key", key, "message", detail.Message)
			}
		}
		sugar.Fatalf("submit: %v", err)
	}
	fmt.Println(string(body))
}

func loadPreset(path string) (*orchestrator.PresetTransformer, error) {
	return orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

func loadPayload(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := gojson.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// write emits v as JSON or as YAML converted from its JSON form, so both
// outputs share the wire field names.
func write(w *os.File, format string, v any) error {
	data, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	var generic any
	if err := gojson.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}
