// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
)

// Example decodes an AIFF file and reads it in 10 ms periods.
func Example() {
	f, err := os.Open("jingle.aiff")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := aiff.Decoder{}.Decode(f)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	fmt.Printf("Sample Rate: %d Hz\n", src.SampleRate())
	fmt.Printf("Channels: %d\n", src.Channels())
	if l, ok := src.(audio.Lengther); ok {
		fmt.Printf("Frames: %d\n", l.Length())
	}

	period := src.SampleRate() / 100
	buf := make([]float32, period*src.Channels())
	for {
		n, err := src.ReadFrames(buf)
		_ = buf[:n*src.Channels()]
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
	}
}

// ExampleDecoder_Decode_errorHandling shows the error for non-AIFF input.
func ExampleDecoder_Decode_errorHandling() {
	_, err := aiff.Decoder{}.Decode(bytes.NewReader([]byte("RIFF....WAVE")))
	fmt.Println(err)
	// Output: not an AIFF file
}
