package realtime

import "github.com/nelsonlabs/morningreport/internal/transcriber"

// Downsample decimates mono s16le PCM from fromRate down to the
// 16 kHz rate the streaming providers expect. Rates that are not an
// integer multiple of 16 kHz, and rates at or below it, pass through
// unchanged. Decimation without a low-pass filter is crude but fine
// for speech at the rates browsers actually send (48 kHz, 44.1 kHz is
// rejected by the multiple check).
func Downsample(pcm []byte, fromRate int) []byte {
	if fromRate <= transcriber.SampleRate || fromRate%transcriber.SampleRate != 0 {
		return pcm
	}
	factor := fromRate / transcriber.SampleRate

	samples := len(pcm) / 2
	out := make([]byte, 0, (samples/factor+1)*2)
	for i := 0; i+1 < len(pcm); i += 2 * factor {
		out = append(out, pcm[i], pcm[i+1])
	}
	return out
}
