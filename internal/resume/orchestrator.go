package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/transfer"
)

// Phase is the client-local view of one in-flight upload. It is deliberately
// distinct from the server-side Record status: the server value always wins
// once a fresh fetch completes.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFileSelected
	PhaseRequestingTarget
	PhaseTransferring
	PhaseConfirming
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFileSelected:
		return "file selected"
	case PhaseRequestingTarget:
		return "requesting upload target"
	case PhaseTransferring:
		return "transferring"
	case PhaseConfirming:
		return "confirming"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Advisory client-side checks only. The authoritative file validation is
// server-side; these exist to fail obviously-wrong selections early.
const maxFileSize = 10 << 20

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Service is the slice of the resume API the orchestrator drives.
type Service interface {
	CreateUploadTarget(ctx context.Context, filename string, size int64, contentType string) (*UploadTarget, error)
	Upload(ctx context.Context, target *UploadTarget, fileName string, payload io.Reader) error
	UpdateStatus(ctx context.Context, id string, status Status, progress *float64, idempotencyKey string) (*Record, error)
	Latest(ctx context.Context) (*Record, error)
}

type selectedFile struct {
	path        string
	name        string
	contentType string
	size        int64
}

// Result is the outcome of a completed upload attempt: the identifier the
// server assigned and the freshest authoritative record.
type Result struct {
	ResumeID string
	Record   *Record
}

// Orchestrator runs the three-phase hand-off: request target, transfer bytes,
// confirm. Phases within one attempt are strictly sequential; the confirm
// call is never issued before the direct upload has returned success.
type Orchestrator struct {
	api    Service
	logger *zap.Logger

	mu         sync.Mutex
	attempt    uint64
	phase      Phase
	file       *selectedFile
	optimistic Status
}

func NewOrchestrator(api Service, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{api: api, logger: logger, phase: PhaseIdle}
}

// SelectFile validates the local file and makes it the current attempt. Any
// in-flight prior attempt is implicitly abandoned: its responses, whenever
// they arrive, are discarded against the new attempt identity.
func (o *Orchestrator) SelectFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("selected file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("selected file %q is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	contentType, ok := contentTypes[ext]
	if !ok {
		return fmt.Errorf("unsupported file type %q (accepted: .pdf, .doc, .docx)", ext)
	}

	if info.Size() > maxFileSize {
		return fmt.Errorf("file is %d bytes, larger than the %d byte limit", info.Size(), int64(maxFileSize))
	}

	o.mu.Lock()
	o.attempt++
	o.phase = PhaseFileSelected
	o.file = &selectedFile{
		path:        path,
		name:        filepath.Base(path),
		contentType: contentType,
		size:        info.Size(),
	}
	o.mu.Unlock()

	return nil
}

func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Upload runs the selected file through all three phases. Failures are
// terminal for the attempt and leave the selection in place so the user can
// re-initiate; no automatic retry happens here.
func (o *Orchestrator) Upload(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.file == nil {
		o.mu.Unlock()
		return nil, errors.New("no file selected")
	}
	attempt := o.attempt
	file := *o.file
	o.phase = PhaseRequestingTarget
	o.mu.Unlock()

	target, err := o.api.CreateUploadTarget(ctx, file.name, file.size, file.contentType)
	if err != nil {
		return nil, o.fail(attempt, err)
	}
	if !o.advance(attempt, PhaseTransferring) {
		return nil, ErrAttemptSuperseded
	}

	payload, err := os.Open(file.path)
	if err != nil {
		return nil, o.fail(attempt, fmt.Errorf("opening selected file: %w", err))
	}
	err = o.api.Upload(ctx, target, file.name, payload)
	payload.Close()
	if err != nil {
		var upErr *transfer.UploadError
		if errors.As(err, &upErr) {
			err = &StorageRejectedError{Status: upErr.Status, Err: err}
		}
		return nil, o.fail(attempt, err)
	}
	if !o.advance(attempt, PhaseConfirming) {
		return nil, ErrAttemptSuperseded
	}

	progress := 1.0
	confirmed, err := o.api.UpdateStatus(ctx, target.ResumeID, StatusUploaded, &progress, uuid.NewString())
	if err != nil {
		return nil, o.fail(attempt, fmt.Errorf("%w: %v", ErrConfirmRejected, err))
	}

	o.mu.Lock()
	if o.attempt != attempt {
		o.mu.Unlock()
		return nil, ErrAttemptSuperseded
	}
	o.phase = PhaseDone
	o.file = nil
	// Parsing continues asynchronously server-side; show processing until the
	// next authoritative fetch says otherwise.
	o.optimistic = StatusProcessing
	o.mu.Unlock()

	o.logger.Info("upload completed",
		zap.String("resume_id", target.ResumeID),
		zap.String("filename", file.name),
	)

	// Read-your-writes by re-query, not by local patching.
	latest, err := o.api.Latest(ctx)
	if err != nil || latest == nil {
		if err != nil {
			o.logger.Warn("refetch after confirm failed", zap.Error(err))
		}
		return &Result{ResumeID: target.ResumeID, Record: confirmed}, nil
	}

	return &Result{ResumeID: target.ResumeID, Record: latest}, nil
}

// DisplayStatus derives the user-visible status purely from server truth,
// falling back to the optimistic value only while no fresh fetch is
// available.
func (o *Orchestrator) DisplayStatus(ctx context.Context) (string, error) {
	rec, err := o.api.Latest(ctx)
	if err != nil {
		o.mu.Lock()
		optimistic := o.optimistic
		o.mu.Unlock()
		if optimistic != "" {
			return string(optimistic), nil
		}
		return "", err
	}

	o.mu.Lock()
	o.optimistic = ""
	o.mu.Unlock()

	if rec == nil {
		return NoResumeStatus, nil
	}
	return string(rec.Status), nil
}

func (o *Orchestrator) advance(attempt uint64, phase Phase) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.attempt != attempt {
		return false
	}
	o.phase = phase
	return true
}

func (o *Orchestrator) fail(attempt uint64, err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.attempt != attempt {
		// A newer selection owns the state machine; drop the stale outcome.
		o.logger.Debug("discarding result of superseded attempt", zap.Uint64("attempt", attempt))
		return ErrAttemptSuperseded
	}

	o.phase = PhaseFailed
	o.logger.Warn("upload attempt failed", zap.Uint64("attempt", attempt), zap.Error(err))
	return err
}
