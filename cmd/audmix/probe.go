// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/source"
)

var probeCmd = &cobra.Command{
	Use:   "probe [file]",
	Short: "Print the format of a sound file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return probe(cmd, args[0])
	},
}

func probe(cmd *cobra.Command, path string) error {
	dec, err := source.DefaultRegistry().ForPath(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer src.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:        %s\n", path)
	fmt.Fprintf(out, "sample rate: %d Hz\n", src.SampleRate())
	fmt.Fprintf(out, "channels:    %d\n", src.Channels())

	if l, ok := src.(audio.Lengther); ok && src.SampleRate() > 0 {
		frames := l.Length()
		d := time.Duration(frames) * time.Second / time.Duration(src.SampleRate())
		fmt.Fprintf(out, "frames:      %d\n", frames)
		fmt.Fprintf(out, "duration:    %s\n", d.Round(time.Millisecond))
	}

	return nil
}
