package media

import "strconv"

// QualityProfile is an MP3 encoding preset used when extracting audio segments.
// Profiles trade fidelity for size so segments can fit under the backend's
// per-request byte ceiling.
type QualityProfile struct {
	Name       string
	Channels   int
	SampleRate int    // Hz
	Bitrate    string // ffmpeg -ab value, e.g. "128k"
}

// degradationLadder is ordered from best quality to most aggressive compression.
// Time boundaries never change across the ladder; only encoding parameters do.
var degradationLadder = []QualityProfile{
	{Name: "standard", Channels: 1, SampleRate: 22050, Bitrate: "128k"},
	{Name: "reduced", Channels: 1, SampleRate: 22050, Bitrate: "64k"},
	{Name: "minimal", Channels: 1, SampleRate: 16000, Bitrate: "32k"},
}

// DegradationLadder returns a copy of the quality fallback ladder,
// ordered from best quality to most aggressive compression.
func DegradationLadder() []QualityProfile {
	ladder := make([]QualityProfile, len(degradationLadder))
	copy(ladder, degradationLadder)
	return ladder
}

// MostAggressive returns the smallest-output profile in the ladder.
func MostAggressive() QualityProfile {
	return degradationLadder[len(degradationLadder)-1]
}

// encodingArgs returns the ffmpeg audio encoding arguments for this profile.
func (p QualityProfile) encodingArgs() []string {
	return []string{
		"-acodec", "libmp3lame",
		"-ab", p.Bitrate,
		"-ac", strconv.Itoa(p.Channels),
		"-ar", strconv.Itoa(p.SampleRate),
	}
}
