package transcript

// Segment is one time-stamped span of transcribed dialogue. After parts are
// merged, ids are reassigned sequentially from 1 and times sit on one
// continuous session timeline.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the speech-to-text collaborator output for one audio part.
type Transcription struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// TurnTimestamp records one dialogue turn's elapsed time in a live session.
type TurnTimestamp struct {
	Text       string  `json:"text"`
	ElapsedSec float64 `json:"elapsedSec"`
}

// TurnData is the optional per-session timestamps artifact stored next to a
// live transcript.
type TurnData struct {
	Turns              []TurnTimestamp `json:"turnTimestamps"`
	SessionDurationSec float64         `json:"sessionDurationSec"`
}

// Acquisition is the transcript-acquisition result consumed by the scoring
// pipeline. Turns is only present for live sessions with a readable
// timestamps artifact. ScriptKey is the derived storage key the concatenated
// text should be persisted under; empty when the text came straight from a
// stored script blob.
type Acquisition struct {
	Text      string
	Segments  []Segment
	Turns     *TurnData
	ScriptKey string
	FromCache bool
}
