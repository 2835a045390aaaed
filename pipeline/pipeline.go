package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/burnout909/ai-cpx-app-sub001/artifacts"
	"github.com/burnout909/ai-cpx-app-sub001/checklist"
	"github.com/burnout909/ai-cpx-app-sub001/extraction"
	"github.com/burnout909/ai-cpx-app-sub001/logger"
	"github.com/burnout909/ai-cpx-app-sub001/scoring"
	"github.com/burnout909/ai-cpx-app-sub001/timing"
	"github.com/burnout909/ai-cpx-app-sub001/transcript"
	"github.com/burnout909/ai-cpx-app-sub001/utils"
)

type Mode string

const (
	ModeUpload Mode = "upload"
	ModeLive   Mode = "live"
)

// Request describes one scoring run. In upload mode AudioKeys drive
// transcription unless TranscriptKey points at a previously derived script
// blob (cache skip). In live mode TranscriptKey is required and
// TimestampsKey optionally names the turn timestamps artifact.
type Request struct {
	SessionID     string        `json:"session_id"`
	Checklist     checklist.Ref `json:"checklist"`
	Mode          Mode          `json:"mode"`
	AudioKeys     []string      `json:"audio_keys"`
	TranscriptKey string        `json:"transcript_key"`
	TimestampsKey string        `json:"timestamps_key"`
}

// Result is the terminal pipeline output. Grades always covers every
// checklist item of every section; Timing is nil whenever classification
// failed or produced nothing, which is not an error condition.
type Result struct {
	State          State                                    `json:"state"`
	Session        *artifacts.SessionRef                    `json:"-"`
	SessionID      string                                   `json:"session_id"`
	Grades         map[checklist.Section][]scoring.GradeItem `json:"grades"`
	Timing         timing.Map                               `json:"timing,omitempty"`
	TranscriptText string                                   `json:"transcript_text"`
	ScriptKey      string                                   `json:"script_key,omitempty"`
}

// ChecklistResolver resolves the versioned evidence checklist for a run.
type ChecklistResolver interface {
	Resolve(ctx context.Context, ref checklist.Ref) (checklist.Checklist, error)
}

// TranscriptAcquirer produces the session transcript for either entry mode.
type TranscriptAcquirer interface {
	AcquireUpload(ctx context.Context, audioKeys []string) (transcript.Acquisition, error)
	AcquireCached(ctx context.Context, scriptKey string) (transcript.Acquisition, error)
	AcquireLive(ctx context.Context, transcriptKey, timestampsKey string) (transcript.Acquisition, error)
}

// TranscriptUploader schedules the fire-and-forget persistence of a derived
// transcript.
type TranscriptUploader interface {
	ScheduleTranscriptUpload(req artifacts.UploadRequest) <-chan artifacts.Outcome
}

type Pipeline struct {
	resolver   ChecklistResolver
	acquirer   TranscriptAcquirer
	extractor  extraction.Extractor
	classifier timing.Classifier
	uploads    TranscriptUploader
	cpxLogger  zerolog.Logger
}

func New(
	resolver ChecklistResolver,
	acquirer TranscriptAcquirer,
	extractor extraction.Extractor,
	classifier timing.Classifier,
	uploads TranscriptUploader,
) *Pipeline {
	return &Pipeline{
		resolver:   resolver,
		acquirer:   acquirer,
		extractor:  extractor,
		classifier: classifier,
		uploads:    uploads,
		cpxLogger:  logger.NewLogger("ScoringPipeline"),
	}
}

// Run executes one scoring pass: checklist resolution and transcript
// acquisition concurrently, then per-section evidence extraction fanned out
// alongside best-effort temporal classification, then pure assembly. A fatal
// failure in resolution, acquisition or any section extraction returns an
// error with no partial grades.
func (p *Pipeline) Run(ctx context.Context, request Request) (result *Result, err error) {
	defer utils.RecoverWithError(&err)

	if err := validate(request); err != nil {
		return nil, err
	}

	session := artifacts.NewSessionRef(request.SessionID)
	runLogger := p.cpxLogger.With().Str("session_id", request.SessionID).Logger()
	runLogger.Info().Str("mode", string(request.Mode)).Msg("Starting scoring pipeline")

	// RESOLVING_INPUTS: checklist and transcript are independent.
	var cl checklist.Checklist
	var acquisition transcript.Acquisition

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var resolveErr error
		cl, resolveErr = p.resolver.Resolve(gctx, request.Checklist)
		return resolveErr
	})
	g.Go(func() error {
		var acquireErr error
		acquisition, acquireErr = p.acquire(gctx, request)
		return acquireErr
	})
	if err := g.Wait(); err != nil {
		runLogger.Err(err).Msg("Failed to resolve scoring inputs")
		return nil, err
	}

	// The derived transcript is persisted in the background; its failure
	// never reaches the scoring result.
	if acquisition.ScriptKey != "" && !acquisition.FromCache {
		p.uploads.ScheduleTranscriptUpload(artifacts.UploadRequest{
			Session: session,
			Key:     acquisition.ScriptKey,
			Text:    acquisition.Text,
		})
	}

	// SCORING: one extraction per section plus wrapped classification, all
	// concurrent. Only the extraction join can fail the run; assembly still
	// waits for classification to resolve or fail.
	sections := checklist.Sections()
	evidence := make([]([]extraction.Record), len(sections))

	timingCh := make(chan timing.Result, 1)
	go func() {
		timingCh <- timing.BestEffort(ctx, p.classifier, timing.Input{
			Transcript: acquisition.Text,
			Segments:   acquisition.Segments,
			Turns:      acquisition.Turns,
		}, runLogger)
	}()

	eg, egctx := errgroup.WithContext(ctx)
	for i, section := range sections {
		i, section := i, section
		eg.Go(func() error {
			records, extractErr := p.extractor.Extract(egctx, acquisition.Text, cl[section])
			if extractErr != nil {
				return fmt.Errorf("extract evidence for section %q: %w", section, extractErr)
			}
			evidence[i] = records
			return nil
		})
	}
	extractionErr := eg.Wait()
	timingResult := <-timingCh
	if extractionErr != nil {
		runLogger.Err(extractionErr).Msg("Evidence extraction failed")
		return nil, extractionErr
	}

	// ASSEMBLING: pure computation, cannot fail.
	evidenceBySection := make(map[checklist.Section][]extraction.Record, len(sections))
	for i, section := range sections {
		evidenceBySection[section] = evidence[i]
	}
	grades := scoring.Assemble(cl, evidenceBySection)

	result = &Result{
		State:          StateDone,
		Session:        session,
		SessionID:      session.ID(),
		Grades:         grades,
		TranscriptText: acquisition.Text,
		ScriptKey:      acquisition.ScriptKey,
	}
	if timingResult.OK() {
		result.Timing = timingResult.Map
	}
	runLogger.Info().
		Int("items", cl.ItemCount()).
		Bool("timing_present", result.Timing != nil).
		Msg("Finished scoring pipeline")
	return result, nil
}

func (p *Pipeline) acquire(ctx context.Context, request Request) (transcript.Acquisition, error) {
	switch request.Mode {
	case ModeLive:
		return p.acquirer.AcquireLive(ctx, request.TranscriptKey, request.TimestampsKey)
	default:
		if request.TranscriptKey != "" {
			return p.acquirer.AcquireCached(ctx, request.TranscriptKey)
		}
		return p.acquirer.AcquireUpload(ctx, request.AudioKeys)
	}
}

// validate rejects structurally incomplete requests before any I/O happens.
func validate(request Request) error {
	if request.Checklist.Empty() {
		return errors.New("scoring request needs a scenario id, checklist id or case name")
	}
	switch request.Mode {
	case ModeLive:
		if request.TranscriptKey == "" {
			return errors.New("live-mode scoring request needs a transcript key")
		}
	case ModeUpload, "":
		if len(request.AudioKeys) == 0 && request.TranscriptKey == "" {
			return errors.New("upload-mode scoring request needs audio keys or a cached transcript key")
		}
	default:
		return fmt.Errorf("unknown scoring mode %q", request.Mode)
	}
	return nil
}
