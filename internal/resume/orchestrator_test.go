package resume

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/transfer"
)

type updateCall struct {
	id       string
	status   Status
	progress *float64
	key      string
}

// fakeService records call order and lets tests inject failures and latency
// at each phase.
type fakeService struct {
	mu      sync.Mutex
	calls   []string
	updates []updateCall

	target      *UploadTarget
	targetErr   error
	targetGate  chan struct{} // when set, CreateUploadTarget blocks until closed
	targetBegan chan struct{} // when set, closed once CreateUploadTarget is entered

	uploadErr error
	updateErr error

	latest    *Record
	latestErr error
}

func (f *fakeService) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeService) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeService) CreateUploadTarget(_ context.Context, _ string, _ int64, _ string) (*UploadTarget, error) {
	f.record("create")
	if f.targetBegan != nil {
		close(f.targetBegan)
		f.targetBegan = nil
	}
	if f.targetGate != nil {
		<-f.targetGate
	}
	if f.targetErr != nil {
		return nil, f.targetErr
	}
	return f.target, nil
}

func (f *fakeService) Upload(_ context.Context, _ *UploadTarget, _ string, payload io.Reader) error {
	f.record("upload")
	io.Copy(io.Discard, payload)
	return f.uploadErr
}

func (f *fakeService) UpdateStatus(_ context.Context, id string, status Status, progress *float64, key string) (*Record, error) {
	f.record("update")
	f.mu.Lock()
	f.updates = append(f.updates, updateCall{id: id, status: status, progress: progress, key: key})
	f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &Record{ID: id, Status: status}, nil
}

func (f *fakeService) Latest(_ context.Context) (*Record, error) {
	f.record("latest")
	return f.latest, f.latestErr
}

func writeTestFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func validTarget() *UploadTarget {
	return &UploadTarget{
		ResumeID:  "r-42",
		URL:       "https://storage.example/bucket",
		Fields:    map[string]string{"key": "resumes/u/r-42.pdf", "policy": "p"},
		ExpiresIn: 3600,
	}
}

func TestUploadRunsPhasesInOrder(t *testing.T) {
	api := &fakeService{
		target: validTarget(),
		latest: &Record{ID: "r-42", Status: StatusUploaded},
	}
	orc := NewOrchestrator(api, zap.NewNop())

	if err := orc.SelectFile(writeTestFile(t, "resume.pdf")); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := orc.Phase(); got != PhaseFileSelected {
		t.Fatalf("unexpected phase after select: %s", got)
	}

	result, err := orc.Upload(context.Background())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	want := []string{"create", "upload", "update", "latest"}
	got := api.callNames()
	if len(got) != len(want) {
		t.Fatalf("unexpected calls: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: want %s, got %s", i, want[i], got[i])
		}
	}

	if result.ResumeID != "r-42" {
		t.Fatalf("unexpected resume id: %s", result.ResumeID)
	}
	if result.Record == nil || result.Record.Status != StatusUploaded {
		t.Fatalf("expected authoritative record at least uploaded, got %+v", result.Record)
	}
	if got := orc.Phase(); got != PhaseDone {
		t.Fatalf("unexpected final phase: %s", got)
	}

	update := api.updates[0]
	if update.id != "r-42" || update.status != StatusUploaded {
		t.Fatalf("unexpected confirm call: %+v", update)
	}
	if update.progress == nil || *update.progress != 1.0 {
		t.Fatalf("expected progress 1.0, got %v", update.progress)
	}
	if update.key == "" {
		t.Fatal("expected an idempotency key")
	}
}

func TestConfirmNeverPrecedesTransfer(t *testing.T) {
	// Latency on the target request must not let the confirmation slip ahead
	// of the transfer.
	gate := make(chan struct{})
	api := &fakeService{
		target:     validTarget(),
		targetGate: gate,
		latest:     &Record{ID: "r-42", Status: StatusUploaded},
	}
	orc := NewOrchestrator(api, zap.NewNop())

	if err := orc.SelectFile(writeTestFile(t, "resume.pdf")); err != nil {
		t.Fatalf("select: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := orc.Upload(context.Background())
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	close(gate)

	if err := <-done; err != nil {
		t.Fatalf("upload: %v", err)
	}

	calls := api.callNames()
	uploadIdx, updateIdx := -1, -1
	for i, name := range calls {
		switch name {
		case "upload":
			uploadIdx = i
		case "update":
			updateIdx = i
		}
	}
	if uploadIdx == -1 || updateIdx == -1 || updateIdx < uploadIdx {
		t.Fatalf("confirmation did not strictly follow transfer: %v", calls)
	}
}

func TestPresignMissingAbortsBeforeTransfer(t *testing.T) {
	api := &fakeService{targetErr: ErrPresignMissing}
	orc := NewOrchestrator(api, zap.NewNop())

	if err := orc.SelectFile(writeTestFile(t, "resume.pdf")); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, err := orc.Upload(context.Background())
	if !errors.Is(err, ErrPresignMissing) {
		t.Fatalf("expected ErrPresignMissing, got %v", err)
	}

	for _, name := range api.callNames() {
		if name == "upload" || name == "update" {
			t.Fatalf("no transfer may happen without a complete target, calls: %v", api.callNames())
		}
	}
	if got := orc.Phase(); got != PhaseFailed {
		t.Fatalf("unexpected phase: %s", got)
	}
}

func TestStorageRejectionLeavesDisplayedStatusUnchanged(t *testing.T) {
	api := &fakeService{
		target:    validTarget(),
		uploadErr: &transfer.UploadError{Status: http.StatusForbidden, RawBody: "<Error/>"},
		latest:    nil, // nothing on the server yet
	}
	orc := NewOrchestrator(api, zap.NewNop())

	before, err := orc.DisplayStatus(context.Background())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	if before != NoResumeStatus {
		t.Fatalf("unexpected initial status: %q", before)
	}

	if err := orc.SelectFile(writeTestFile(t, "resume.pdf")); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, err = orc.Upload(context.Background())
	var rejected *StorageRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected StorageRejectedError, got %v", err)
	}
	if rejected.Status != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rejected.Status)
	}

	// No false "processing" may appear.
	after, err := orc.DisplayStatus(context.Background())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	if after != before {
		t.Fatalf("displayed status changed across a failed attempt: %q -> %q", before, after)
	}

	for _, name := range api.callNames() {
		if name == "update" {
			t.Fatal("confirmation must not run after a rejected transfer")
		}
	}
}

func TestConfirmRejectionFailsAttempt(t *testing.T) {
	api := &fakeService{
		target:    validTarget(),
		updateErr: &transfer.HTTPError{Status: http.StatusInternalServerError},
	}
	orc := NewOrchestrator(api, zap.NewNop())

	if err := orc.SelectFile(writeTestFile(t, "resume.pdf")); err != nil {
		t.Fatalf("select: %v", err)
	}

	_, err := orc.Upload(context.Background())
	if !errors.Is(err, ErrConfirmRejected) {
		t.Fatalf("expected ErrConfirmRejected, got %v", err)
	}
	if got := orc.Phase(); got != PhaseFailed {
		t.Fatalf("unexpected phase: %s", got)
	}
}

func TestReselectionSupersedesInFlightAttempt(t *testing.T) {
	gate := make(chan struct{})
	began := make(chan struct{})
	api := &fakeService{
		target:      validTarget(),
		targetGate:  gate,
		targetBegan: began,
	}
	orc := NewOrchestrator(api, zap.NewNop())

	first := writeTestFile(t, "first.pdf")
	second := writeTestFile(t, "second.pdf")

	if err := orc.SelectFile(first); err != nil {
		t.Fatalf("select: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := orc.Upload(context.Background())
		done <- err
	}()

	<-began
	// Reselecting while the target request is in flight abandons the attempt.
	if err := orc.SelectFile(second); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	close(gate)

	if err := <-done; !errors.Is(err, ErrAttemptSuperseded) {
		t.Fatalf("expected ErrAttemptSuperseded, got %v", err)
	}

	// The stale attempt must not have transferred anything nor touched the
	// new attempt's state.
	for _, name := range api.callNames() {
		if name == "upload" || name == "update" {
			t.Fatalf("stale attempt leaked into later phases: %v", api.callNames())
		}
	}
	if got := orc.Phase(); got != PhaseFileSelected {
		t.Fatalf("expected new selection to own the state machine, phase: %s", got)
	}
}

func TestIdempotencyKeysDifferAcrossAttempts(t *testing.T) {
	api := &fakeService{
		target: validTarget(),
		latest: &Record{ID: "r-42", Status: StatusUploaded},
	}
	orc := NewOrchestrator(api, zap.NewNop())

	path := writeTestFile(t, "resume.pdf")
	for i := 0; i < 2; i++ {
		if err := orc.SelectFile(path); err != nil {
			t.Fatalf("select: %v", err)
		}
		if _, err := orc.Upload(context.Background()); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}

	if len(api.updates) != 2 {
		t.Fatalf("expected 2 confirmations, got %d", len(api.updates))
	}
	if api.updates[0].key == api.updates[1].key {
		t.Fatal("expected distinct idempotency keys per attempt")
	}
}

func TestSelectFileRejectsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	orc := NewOrchestrator(&fakeService{}, zap.NewNop())
	if err := orc.SelectFile(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if got := orc.Phase(); got != PhaseIdle {
		t.Fatalf("unexpected phase: %s", got)
	}
}

func TestSelectFileRejectsMissingFile(t *testing.T) {
	orc := NewOrchestrator(&fakeService{}, zap.NewNop())
	if err := orc.SelectFile(filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestUploadWithoutSelectionFails(t *testing.T) {
	orc := NewOrchestrator(&fakeService{}, zap.NewNop())
	if _, err := orc.Upload(context.Background()); err == nil {
		t.Fatal("expected error without a selected file")
	}
}

func TestDisplayStatusPrefersServerTruth(t *testing.T) {
	api := &fakeService{
		target: validTarget(),
		latest: &Record{ID: "r-42", Status: StatusParsed},
	}
	orc := NewOrchestrator(api, zap.NewNop())

	if err := orc.SelectFile(writeTestFile(t, "resume.pdf")); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := orc.Upload(context.Background()); err != nil {
		t.Fatalf("upload: %v", err)
	}

	// The optimistic "processing" must yield to the fetched server value.
	display, err := orc.DisplayStatus(context.Background())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	if display != string(StatusParsed) {
		t.Fatalf("expected server status to win, got %q", display)
	}
}

func TestDisplayStatusFallsBackToOptimisticWhileFetchFails(t *testing.T) {
	api := &fakeService{
		target: validTarget(),
		latest: &Record{ID: "r-42", Status: StatusUploaded},
	}
	orc := NewOrchestrator(api, zap.NewNop())

	if err := orc.SelectFile(writeTestFile(t, "resume.pdf")); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := orc.Upload(context.Background()); err != nil {
		t.Fatalf("upload: %v", err)
	}

	api.latestErr = errors.New("listing temporarily down")
	display, err := orc.DisplayStatus(context.Background())
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	if display != string(StatusProcessing) {
		t.Fatalf("expected optimistic processing, got %q", display)
	}
}
