package export

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/0xlemi/harptabs/internal/tone"
	"github.com/youpy/go-wav"
)

// WriteWAV writes clip as 16-bit mono PCM
func WriteWAV(w io.Writer, clip tone.Clip) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)

	writer := wav.NewWriter(w,
		uint32(len(clip.Samples)),
		numChannels,
		uint32(clip.SampleRate),
		bitsPerSample)

	data := make([]byte, 2*len(clip.Samples))
	for i, s := range clip.Samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}
