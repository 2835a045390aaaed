package timing

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/burnout909/ai-cpx-app-sub001/checklist"
	"github.com/burnout909/ai-cpx-app-sub001/transcript"
	"github.com/burnout909/ai-cpx-app-sub001/utils"
)

// DefaultSessionDurationSec is the assumed total encounter length when
// neither turn timestamps nor transcription segments exist.
const DefaultSessionDurationSec = 720

// Range is an elapsed-time span within the session timeline.
type Range struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
}

// Map assigns each clinical phase its time range. Sections the classifier
// could not place are simply absent.
type Map map[checklist.Section]Range

// Input carries whatever timing signal acquisition produced. Turn timestamps
// are preferred, then transcription segments; with neither, classification
// falls back to DefaultSessionDurationSec over the bare transcript.
type Input struct {
	Transcript string
	Segments   []transcript.Segment
	Turns      *transcript.TurnData
}

// TotalDurationSec resolves the session length from the best available
// signal.
func (in Input) TotalDurationSec() float64 {
	if in.Turns != nil && in.Turns.SessionDurationSec > 0 {
		return in.Turns.SessionDurationSec
	}
	if n := len(in.Segments); n > 0 {
		return in.Segments[n-1].End
	}
	return DefaultSessionDurationSec
}

// Classifier is the temporal-classification collaborator.
type Classifier interface {
	Classify(ctx context.Context, in Input) (Map, error)
}

// Result is the tagged outcome of a best-effort classification: either a
// timing map or the reason there is none. It never carries both.
type Result struct {
	Map Map
	Err error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// BestEffort runs the classifier and converts every failure, panics
// included, into an absent timing result. Classification must never abort a
// scoring run or surface an error to the caller.
func BestEffort(ctx context.Context, classifier Classifier, in Input, cpxLogger zerolog.Logger) Result {
	var m Map
	err := func() (err error) {
		defer utils.RecoverWithError(&err)
		m, err = classifier.Classify(ctx, in)
		return err
	}()
	if err != nil {
		cpxLogger.Warn().Err(err).Msg("Temporal classification failed, continuing without timing data")
		return Result{Err: err}
	}
	return Result{Map: m}
}
