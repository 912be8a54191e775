// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes PCM WAV files.
//
// Decoding goes through github.com/go-audio/wav and accepts 16, 24 and
// 32-bit integer PCM with any channel count. Input that cannot seek is
// buffered in memory first.
//
//	f, _ := os.Open("intro.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Writer records interleaved int16 or float32 samples as 16-bit PCM. The
// clock output driver uses it to capture the mix:
//
//	w, err := wav.Create[float32]("mix.wav", 48000, 2)
//	defer w.Close()
//	w.Write(period)
package wav
