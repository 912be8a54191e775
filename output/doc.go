// SPDX-License-Identifier: EPL-2.0

// Package output drives the mixer's consumer side.
//
// A driver calls a Drainer once per period of FramesPerBuffer frames and
// delivers the mixed buffer somewhere:
//
//   - Oto plays it on the default audio device through ebitengine/oto. Build
//     with the headless tag to replace it with a stub that always fails.
//   - Clock paces itself with a ticker and optionally records to a WAV file,
//     for machines without a sound card and for tests.
//
// The buffer handed to the Drainer is owned by the driver and reused.
package output
