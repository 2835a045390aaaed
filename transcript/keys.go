package transcript

import (
	"regexp"
	"strings"
)

// Storage key categories. Keys are hierarchical paths encoding the session
// origin (live/upload) and the artifact category.
const (
	CategoryAudio      = "audio"
	CategoryScript     = "script"
	CategoryTimestamps = "timestamps"
)

var partSuffix = regexp.MustCompile(`-part\d+$`)

var audioExtensions = []string{".mp3", ".wav", ".m4a", ".webm", ".ogg", ".flac"}

// DeriveScriptKey maps an audio part key to the canonical storage key of the
// session's derived transcript text: the part suffix and audio extension are
// stripped and the audio category segment becomes the script category.
//
//	upload/sess-42/audio/recording-part1.mp3 -> upload/sess-42/script/recording.txt
func DeriveScriptKey(audioKey string) string {
	key := audioKey
	for _, ext := range audioExtensions {
		if strings.HasSuffix(strings.ToLower(key), ext) {
			key = key[:len(key)-len(ext)]
			break
		}
	}
	key = partSuffix.ReplaceAllString(key, "")
	key = strings.Replace(key, "/"+CategoryAudio+"/", "/"+CategoryScript+"/", 1)
	if strings.HasPrefix(key, CategoryAudio+"/") {
		key = CategoryScript + "/" + strings.TrimPrefix(key, CategoryAudio+"/")
	}
	return key + ".txt"
}
