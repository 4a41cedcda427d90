// Package synthesis converts confirmation text into playable audio files.
package synthesis

import (
	"context"
	"strings"
)

// Voice describes a TTS voice option.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"` // BCP 47 tag, e.g. "en-PH"
}

// LanguageCode returns the primary language code, the part of the tag before
// the hyphen.
func (v Voice) LanguageCode() string {
	code, _, _ := strings.Cut(v.Language, "-")
	return code
}

// Voices is the fixed voice table. The first entry is the default used when
// a requested voice id is not in the table.
var Voices = []Voice{
	{ID: "en_us_female_1", Name: "US English Female", Language: "en-US"},
	{ID: "en_us_male_1", Name: "US English Male", Language: "en-US"},
	{ID: "fil_female_1", Name: "Filipino Female", Language: "fil-PH"},
	{ID: "fil_male_1", Name: "Filipino Male", Language: "fil-PH"},
	{ID: "en_ph_female_1", Name: "Filipino English Female", Language: "en-PH"},
	{ID: "en_ph_male_1", Name: "Filipino English Male", Language: "en-PH"},
}

// DefaultVoiceID is the voice used when the caller does not pick one.
const DefaultVoiceID = "en_us_female_1"

// ResolveVoice looks up a voice by id, falling back to the first table entry
// for unknown ids.
func ResolveVoice(voiceID string) Voice {
	for _, v := range Voices {
		if v.ID == voiceID {
			return v
		}
	}
	return Voices[0]
}

// Client defines the interface for text-to-speech providers.
type Client interface {
	// Synthesize renders text with the given voice and returns the path of
	// the persisted audio file. The file is owned by the caller afterwards;
	// this pipeline never deletes it.
	Synthesize(ctx context.Context, text, voiceID string) (string, error)
}
