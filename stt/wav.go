package stt

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-audio/wav"
)

// targetSampleRate is what the recognizer model expects.
const targetSampleRate = 16000

// preparePCM decodes a WAV payload into mono 16 kHz 16-bit little-endian
// PCM, downmixing stereo and resampling as needed.
func preparePCM(audio []byte) ([]byte, error) {
	dec := wav.NewDecoder(bytes.NewReader(audio))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV parameters")
	}
	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("expected 16-bit PCM audio, got %d-bit", dec.BitDepth)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("invalid WAV parameters")
	}
	if dec.NumChans > 2 {
		return nil, fmt.Errorf("only mono or stereo WAV files are supported, got %d channels", dec.NumChans)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV frames: %w", err)
	}

	samples := buf.Data
	if buf.Format.NumChannels == 2 {
		samples = downmixStereo(samples)
	}
	if buf.Format.SampleRate != targetSampleRate {
		samples = resampleLinear(samples, buf.Format.SampleRate, targetSampleRate)
	}
	return packPCM16(samples), nil
}

// downmixStereo averages interleaved left/right samples into mono.
func downmixStereo(samples []int) []int {
	mono := make([]int, len(samples)/2)
	for i := range mono {
		mono[i] = (samples[2*i] + samples[2*i+1]) / 2
	}
	return mono
}

// resampleLinear converts the sample rate by linear interpolation.
// Good enough for speech going into a recognizer.
func resampleLinear(samples []int, from, to int) []int {
	if from == to || len(samples) == 0 {
		return samples
	}
	outLen := int(int64(len(samples)) * int64(to) / int64(from))
	if outLen == 0 {
		return nil
	}
	out := make([]int, outLen)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = int(float64(samples[idx])*(1-frac) + float64(samples[idx+1])*frac)
	}
	return out
}

func packPCM16(samples []int) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(s)))
	}
	return out
}
