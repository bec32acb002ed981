package transcriber

import (
	"bytes"
	"encoding/binary"
)

// SampleRate is the PCM rate every hosted transcription API in the chain
// expects: 16 kHz, 16-bit little-endian signed, mono.
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
)

// convertToWAV wraps raw 16-bit 16 kHz mono PCM in a WAV container.
func convertToWAV(rawAudio []byte) []byte {
	var buf bytes.Buffer

	const byteRate = SampleRate * Channels * BitsPerSample / 8
	const blockAlign = Channels * BitsPerSample / 8

	dataSize := len(rawAudio)
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))            // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))             // PCM format
	binary.Write(&buf, binary.LittleEndian, uint16(Channels))      // number of channels
	binary.Write(&buf, binary.LittleEndian, uint32(SampleRate))    // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))      // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))    // block align
	binary.Write(&buf, binary.LittleEndian, uint16(BitsPerSample)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(rawAudio)

	return buf.Bytes()
}

// looksLikeWAV reports whether data already carries a RIFF/WAVE header, so
// uploaded files are not double-wrapped.
func looksLikeWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}

// asWAV returns data as a WAV payload, wrapping raw PCM if needed.
func asWAV(data []byte) []byte {
	if looksLikeWAV(data) {
		return data
	}
	return convertToWAV(data)
}
