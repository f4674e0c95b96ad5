// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/nexcell/towerwatch/pkg/bscp"
)

var (
	captureOutput   string
	captureDuration int
	captureMax      int

	replaySend  bool
	replaySpeed float64
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record decoded frames to a capture file",
	Long: `Record every frame decoded from the station link to a CBOR stream file.

Each record carries the receive timestamp, message type, sequence number and
raw payload, so a capture can be replayed or re-sent later with full fidelity.
Recording stops on Ctrl+C, after --duration seconds, or after --max frames.

Example:
  towerwatch capture --station lab-rack-2 -o rack2-overnight.twc --duration 28800`,
	RunE: runCapture,
}

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Replay a capture file",
	Long: `Read a capture file and pretty-print the recorded frames.

With --send, frames are re-encoded and sent over the configured transport
instead, preserving the recorded inter-frame timing. --speed scales the
timing (2.0 replays twice as fast, 0 sends back-to-back).

Example:
  towerwatch replay rack2-overnight.twc
  towerwatch replay rack2-overnight.twc --send --port /dev/ttyUSB0 --speed 10`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(replayCmd)
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "capture.twc", "Output file")
	captureCmd.Flags().IntVar(&captureDuration, "duration", 0, "Stop after this many seconds (0 = until Ctrl+C)")
	captureCmd.Flags().IntVar(&captureMax, "max", 0, "Stop after this many frames (0 = unlimited)")
	replayCmd.Flags().BoolVar(&replaySend, "send", false, "Re-send frames over the configured transport")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Timing scale factor for --send (0 = no delay)")
}

// capturedFrame is one record in the capture stream.
type capturedFrame struct {
	Timestamp time.Time `cbor:"1,keyasint"`
	Type      uint8     `cbor:"2,keyasint"`
	Sequence  uint8     `cbor:"3,keyasint"`
	Payload   []byte    `cbor:"4,keyasint"`
}

func runCapture(cmd *cobra.Command, args []string) error {
	tr, connInfo, err := OpenTransport()
	if err != nil {
		return err
	}
	defer tr.Close()

	out, err := os.Create(captureOutput)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	defer out.Close()

	enc := cbor.NewEncoder(out)

	fmt.Printf("Towerwatch - Capture\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Output: %s\n", captureOutput)
	fmt.Printf("Press Ctrl+C to stop\n\n")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var deadline <-chan time.Time
	if captureDuration > 0 {
		deadline = time.After(time.Duration(captureDuration) * time.Second)
	}

	parser := bscp.NewParser()
	buf := make([]byte, 4096)
	recorded := 0
	start := time.Now()

	for {
		select {
		case <-sigChan:
			fmt.Printf("\nCaptured %d frames in %s\n", recorded, time.Since(start).Round(time.Second))
			return nil
		case <-deadline:
			fmt.Printf("\nCaptured %d frames in %s\n", recorded, time.Since(start).Round(time.Second))
			return nil
		default:
		}

		n, err := tr.Recv(buf, recvTimeout)
		if err != nil {
			fmt.Printf("\nConnection closed, captured %d frames\n", recorded)
			return err
		}

		for _, msg := range parser.Feed(buf[:n]) {
			rec := capturedFrame{
				Timestamp: msg.Timestamp,
				Type:      msg.Type,
				Sequence:  msg.Sequence,
				Payload:   msg.Payload,
			}
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("write capture record: %w", err)
			}
			recorded++
			fmt.Printf("[%s] %s seq=%d (%d bytes) -> %d recorded\n",
				msg.Timestamp.Format("15:04:05.000"),
				bscp.FormatMessageType(msg.Type), msg.Sequence, len(msg.Payload), recorded)

			if captureMax > 0 && recorded >= captureMax {
				fmt.Printf("\nCaptured %d frames in %s\n", recorded, time.Since(start).Round(time.Second))
				return nil
			}
		}
	}
}

// readCapture decodes all records from a capture file.
func readCapture(path string) ([]capturedFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	defer f.Close()

	dec := cbor.NewDecoder(f)
	var frames []capturedFrame
	for {
		var rec capturedFrame
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return nil, fmt.Errorf("decode record %d: %w", len(frames), err)
		}
		frames = append(frames, rec)
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	frames, err := readCapture(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		fmt.Println("(empty capture)")
		return nil
	}

	if replaySend {
		return replayOverTransport(frames)
	}

	span := frames[len(frames)-1].Timestamp.Sub(frames[0].Timestamp)
	fmt.Printf("Capture: %d frames over %s\n\n", len(frames), span.Round(time.Millisecond))

	for _, rec := range frames {
		msg := &bscp.Message{
			Type:      rec.Type,
			Sequence:  rec.Sequence,
			Payload:   rec.Payload,
			Timestamp: rec.Timestamp,
		}
		fmt.Print(bscp.FormatMessage(msg))
	}
	return nil
}

// replayOverTransport re-sends captured frames with recorded timing.
func replayOverTransport(frames []capturedFrame) error {
	tr, connInfo, err := OpenTransport()
	if err != nil {
		return err
	}
	defer tr.Close()

	fmt.Printf("Replaying %d frames over %s\n\n", len(frames), connInfo)

	var prev time.Time
	for i, rec := range frames {
		if i > 0 && replaySpeed > 0 {
			gap := rec.Timestamp.Sub(prev)
			if gap > 0 {
				time.Sleep(time.Duration(float64(gap) / replaySpeed))
			}
		}
		prev = rec.Timestamp

		frame, err := bscp.BuildFrame(bscp.NewMessage(rec.Type, rec.Sequence, rec.Payload))
		if err != nil {
			return fmt.Errorf("rebuild frame %d: %w", i, err)
		}
		if _, err := tr.Send(frame); err != nil {
			return fmt.Errorf("send frame %d: %w", i, err)
		}
		fmt.Printf("[%d/%d] %s seq=%d (%d bytes)\n",
			i+1, len(frames), bscp.FormatMessageType(rec.Type), rec.Sequence, len(rec.Payload))
	}

	fmt.Printf("\nReplay complete: %d frames sent\n", len(frames))
	return nil
}
