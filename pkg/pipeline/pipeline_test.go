package pipeline

import (
	"bytes"
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/etiket/pkg/cache"
	"github.com/matzehuels/etiket/pkg/errors"
	"github.com/matzehuels/etiket/pkg/label/defect"
	"github.com/matzehuels/etiket/pkg/label/template"
	"github.com/matzehuels/etiket/pkg/observability"
	"github.com/matzehuels/etiket/pkg/rows"
)

func sampleRows() []rows.Row {
	return []rows.Row{
		{"URUN_ADI": "Vida M8", "SERI_NO": "SN001", "LOT_NO": "L7"},
		{"URUN_ADI": "Somun M8", "SERI_NO": "SN002", "LOT_NO": "L7"},
		{"URUN_ADI": "Pul", "SERI_NO": "SN003"},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"html", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateResolver(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"qr", false},
		{"url", false},
		{"none", false},
		{"barcode", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateResolver(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateResolver(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Rows: sampleRows()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Template == nil || opts.Template.GridWidth() != template.Default().GridWidth() {
		t.Error("Template should default to the built-in template")
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatHTML {
		t.Errorf("Formats = %v, want [html]", opts.Formats)
	}
	if opts.Resolver != DefaultResolver {
		t.Errorf("Resolver = %q, want %q", opts.Resolver, DefaultResolver)
	}
	if opts.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", opts.Concurrency, DefaultConcurrency)
	}
	if opts.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", opts.Title, DefaultTitle)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
	if got := len(opts.SelectedRows()); got != 3 {
		t.Errorf("SelectedRows() = %d rows, want 3", got)
	}
}

func TestOptionsColumnsClamp(t *testing.T) {
	opts := Options{Rows: sampleRows(), Columns: math.MaxInt}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Columns != MaxColumns {
		t.Errorf("Columns = %d, want %d", opts.Columns, MaxColumns)
	}
}

func TestOptionsConcurrencyClamp(t *testing.T) {
	opts := Options{Rows: sampleRows(), Concurrency: 1000}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Concurrency != MaxConcurrency {
		t.Errorf("Concurrency = %d, want %d", opts.Concurrency, MaxConcurrency)
	}
}

func TestOptionsSelect(t *testing.T) {
	opts := Options{Rows: sampleRows(), Select: []int{2, 0, 2, 9}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	got := opts.SelectedRows()
	if len(got) != 3 {
		t.Fatalf("SelectedRows() = %d rows, want 3", len(got))
	}
	want := []string{"SN003", "SN001", "SN003"}
	for i, r := range got {
		if r["SERI_NO"] != want[i] {
			t.Errorf("row %d SERI_NO = %q, want %q", i, r["SERI_NO"], want[i])
		}
	}
}

func TestOptionsValidationErrors(t *testing.T) {
	badTemplate := template.Template{Width: -1}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no rows", Options{}, errors.ErrCodeInvalidRows},
		{"empty selection", Options{Rows: sampleRows(), Select: []int{7, 8}}, errors.ErrCodeInvalidSelection},
		{"bad format", Options{Rows: sampleRows(), Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad resolver", Options{Rows: sampleRows(), Resolver: "barcode"}, errors.ErrCodeInvalidInput},
		{"bad template", Options{Rows: sampleRows(), Template: &badTemplate}, errors.ErrCodeInvalidTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Rows: sampleRows(), Select: []int{1}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts.SelectedRows()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	second := opts.SelectedRows()

	if len(first) != 1 || len(second) != 1 || first[0]["SERI_NO"] != second[0]["SERI_NO"] {
		t.Errorf("selection changed between calls: %v vs %v", first, second)
	}
}

func TestArtifactKeyOptsIncludesRenderInputs(t *testing.T) {
	a := Options{Rows: sampleRows(), Resolver: "url", URLBase: "/a/"}
	b := Options{Rows: sampleRows(), Resolver: "url", URLBase: "/b/"}
	_ = a.ValidateAndSetDefaults()
	_ = b.ValidateAndSetDefaults()

	keyer := cache.NewDefaultKeyer()
	if keyer.ArtifactKey("h", a.ArtifactKeyOpts(FormatHTML)) == keyer.ArtifactKey("h", b.ArtifactKeyOpts(FormatHTML)) {
		t.Error("different URL bases should produce different artifact keys")
	}
	if keyer.ArtifactKey("h", a.ArtifactKeyOpts(FormatHTML)) == keyer.ArtifactKey("h", a.ArtifactKeyOpts(FormatSVG)) {
		t.Error("different formats should produce different artifact keys")
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		Rows:     sampleRows(),
		Select:   []int{0, 2},
		Formats:  []string{FormatHTML, FormatSVG, FormatJSON},
		Resolver: "none",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Batch.Len() != 2 {
		t.Errorf("labels = %d, want 2", result.Batch.Len())
	}
	if result.Stats.Labels != 2 {
		t.Errorf("Stats.Labels = %d, want 2", result.Stats.Labels)
	}
	if result.BatchID.String() == "" {
		t.Error("BatchID should be set")
	}
	if result.ContentHash == "" {
		t.Error("ContentHash should be set")
	}
	for _, f := range []string{FormatHTML, FormatSVG, FormatJSON} {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("artifact %s is empty", f)
		}
	}
	if !bytes.Contains(result.Artifacts[FormatHTML], []byte("Pul")) {
		t.Error("HTML should contain the third row's product name")
	}
	if bytes.Contains(result.Artifacts[FormatHTML], []byte("Somun")) {
		t.Error("HTML should not contain an unselected row")
	}
	if result.CacheInfo.RenderHit {
		t.Error("NullCache should never hit")
	}
}

func TestRunnerMissingFieldIsDefectNotError(t *testing.T) {
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		Rows:     []rows.Row{{"URUN_ADI": "Yalniz ad"}},
		Formats:  []string{FormatJSON},
		Resolver: "none",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.Defects == 0 {
		t.Error("missing SERI_NO should be reported as a defect")
	}
	if !bytes.Contains(result.Artifacts[FormatJSON], []byte("SERI_NO")) {
		t.Error("JSON output should name the missing field")
	}
}

func TestRunnerCachesArtifacts(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{
		Rows:     sampleRows(),
		Formats:  []string{FormatSVG},
		Resolver: "qr",
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the cache")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs from rendered artifact")
	}
	if first.BatchID == second.BatchID {
		t.Error("each run should get its own batch ID")
	}

	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerSkipsCacheOnResolutionDefects(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{Rows: sampleRows(), Formats: []string{FormatJSON}, Resolver: "none"}
	batch, err := runner.Assemble(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	batch.Defects = append(batch.Defects, defect.Defect{
		Kind: defect.KindResolution, Label: 0, CellID: "qr", Field: "SERI_NO", Message: "resolver unavailable",
	})

	for i := range 2 {
		_, _, hit, err := runner.RenderWithCacheInfo(context.Background(), batch, opts)
		if err != nil {
			t.Fatal(err)
		}
		if hit {
			t.Errorf("run %d hit the cache; batches with resolution defects must not be cached", i)
		}
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil).Execute(ctx, Options{Rows: sampleRows(), Resolver: "none"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRenderDeduplicatesFormats(t *testing.T) {
	opts := Options{Rows: sampleRows(), Formats: []string{FormatJSON, FormatJSON}, Resolver: "none"}
	batch, err := NewRunner(nil, nil, nil).Assemble(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	artifacts, err := Render(context.Background(), batch, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(artifacts) != 1 {
		t.Errorf("artifacts = %d, want 1", len(artifacts))
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnAssembleStart(context.Context, int) { h.record("assemble-start") }
func (h *recordingHooks) OnAssembleComplete(_ context.Context, labels, _ int, _ time.Duration, _ error) {
	h.record("assemble-done")
}
func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.record("render-start") }
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render-done")
}
func (h *recordingHooks) OnCacheMiss(_ context.Context, keyType string) {
	if keyType == "artifact" {
		h.record("artifact-miss")
	}
}

func TestRunnerEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Rows:     sampleRows(),
		Formats:  []string{FormatJSON},
		Resolver: "none",
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"assemble-start", "assemble-done", "render-start", "artifact-miss", "render-done"}
	if len(hooks.events) != len(want) {
		t.Fatalf("events = %v, want %v", hooks.events, want)
	}
	for i := range want {
		if hooks.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, hooks.events[i], want[i])
		}
	}
}
