package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNotWAV is returned by ParseWAV for data without a RIFF/WAVE header.
var ErrNotWAV = errors.New("not a RIFF/WAVE file")

// WAV is a decoded PCM WAVE file.
type WAV struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	// Data holds the raw samples of the "data" chunk.
	Data []byte
}

// ParseWAV reads the fmt and data chunks of a PCM WAVE file. Other chunks
// are skipped.
func ParseWAV(b []byte) (*WAV, error) {
	if len(b) < 12 || !bytes.Equal(b[0:4], []byte("RIFF")) || !bytes.Equal(b[8:12], []byte("WAVE")) {
		return nil, ErrNotWAV
	}

	w := &WAV{}
	var haveFmt, haveData bool
	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if end > len(b) {
			// Truncated recordings are common; take what is there.
			end = len(b)
		}

		switch id {
		case "fmt ":
			if end-body < 16 {
				return nil, fmt.Errorf("fmt chunk too short (%d bytes)", end-body)
			}
			format := binary.LittleEndian.Uint16(b[body:])
			if format != 1 {
				return nil, fmt.Errorf("unsupported WAVE format %d (only PCM)", format)
			}
			w.Channels = int(binary.LittleEndian.Uint16(b[body+2:]))
			w.SampleRate = int(binary.LittleEndian.Uint32(b[body+4:]))
			w.BitsPerSample = int(binary.LittleEndian.Uint16(b[body+14:]))
			haveFmt = true
		case "data":
			w.Data = b[body:end]
			haveData = true
		}

		// Chunks are word aligned.
		pos = end + (end-body)%2
	}

	if !haveFmt {
		return nil, errors.New("missing fmt chunk")
	}
	if !haveData {
		return nil, errors.New("missing data chunk")
	}
	if w.BitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported sample size %d bits (only 16)", w.BitsPerSample)
	}
	return w, nil
}

// EncodeWAV builds a 16-bit PCM WAVE file around samples.
func EncodeWAV(samples []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	blockAlign := channels * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, le, uint32(36+len(samples)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, le, uint32(16))
	binary.Write(&buf, le, uint16(1))
	binary.Write(&buf, le, uint16(channels))
	binary.Write(&buf, le, uint32(sampleRate))
	binary.Write(&buf, le, uint32(sampleRate*blockAlign))
	binary.Write(&buf, le, uint16(blockAlign))
	binary.Write(&buf, le, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, le, uint32(len(samples)))
	buf.Write(samples)
	return buf.Bytes()
}
