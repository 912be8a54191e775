// SPDX-License-Identifier: EPL-2.0

// Package audmix mixes live audio from several sources into one output.
//
// Every source (an RTP or WebSocket stream, a capture process, a sound
// file) feeds its own bounded queue. The output driver pulls one period at
// a time from the mix bus, which adds up whatever each queue holds:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
//	m, err := audmix.New[float32](cfg, logger)
//	if err != nil {
//	    return err
//	}
//
//	for _, sc := range cfg.Sources {
//	    if _, err := m.AddSource(sc); err != nil {
//	        return err
//	    }
//	}
//
//	driver, err := audmix.NewDriver(m)
//	if err != nil {
//	    return err
//	}
//
//	return m.Run(ctx, driver)
//
// # Threads
//
// Each source runs on its own goroutine, locked to an OS thread, and is the
// only producer of its queue. The output callback is the only consumer of
// every queue and never blocks, allocates or logs. Producers that run ahead
// are slowed down by a PID controlled throttle; see package pacing.
//
// # Formats
//
// Files are decoded by the subpackages of formats:
//   - WAV (PCM 16, 24 and 32 bit) via formats/wav
//   - AIFF (PCM 8 to 32 bit) via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//
// The mix is produced in float32 or int16, chosen by the type parameter of
// Mixer. Sources may use any rate and channel count; queues convert on push.
package audmix
