// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/wav"
)

// Example_roundTrip writes a short stereo clip and decodes it again.
func Example_roundTrip() {
	dir, err := os.MkdirTemp("", "wav-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "clip.wav")

	w, err := wav.Create[float32](path, 16000, 2)
	if err != nil {
		log.Fatal(err)
	}
	if err := w.Write([]float32{0.5, -0.5, 0.25, -0.25}); err != nil {
		log.Fatal(err)
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Sample rate: %d Hz\n", src.SampleRate())
	fmt.Printf("Channels: %d\n", src.Channels())
	fmt.Printf("Frames: %d\n", src.(audio.Lengther).Length())

	buf := make([]float32, 8)
	n, _ := src.ReadFrames(buf)
	fmt.Println(buf[:n*src.Channels()])
	// Output:
	// Sample rate: 16000 Hz
	// Channels: 2
	// Frames: 2
	// [0.5 -0.5 0.25 -0.25]
}

// Example_notWAV shows the error returned for other content.
func Example_notWAV() {
	_, err := wav.Decoder{}.Decode(bytes.NewReader([]byte("definitely not a RIFF file")))
	if errors.Is(err, wav.ErrNotWavFile) {
		fmt.Println("Detected: not a WAV file")
	}
	// Output: Detected: not a WAV file
}

// Example_streamingRead reads a file period by period.
func Example_streamingRead() {
	f, err := os.Open("intro.wav")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	buf := make([]float32, 441*src.Channels())
	for {
		n, err := src.ReadFrames(buf)
		_ = buf[:n*src.Channels()] // hand the period on
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
	}
}
