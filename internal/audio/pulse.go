// Package audio provides Pulse input discovery and chunked PCM capture for
// the live recognition engine. The session controller never touches this
// package; microphone ownership stays inside the engine implementation.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// ListDevices returns available Pulse input sources.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("earshot"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}
	defaultID := defaultSource.ID()

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(sourceInfos))
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			State:       sourceStateString(source.State),
			Available:   sourceAvailable(source),
			Muted:       source.Mute,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices, nil
}

// SelectInput resolves the configured input term against live devices.
func SelectInput(ctx context.Context, term string) (Device, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Device{}, err
	}
	return pick(devices, term)
}

// pick applies input selection policy to a pre-fetched device list.
func pick(devices []Device, term string) (Device, error) {
	if len(devices) == 0 {
		return Device{}, errors.New("no audio input devices found")
	}

	term = strings.TrimSpace(strings.ToLower(term))
	if term == "" || term == "default" {
		for _, device := range devices {
			if device.Default {
				return checkUsable(device)
			}
		}
		return Device{}, errors.New("default audio source is unavailable")
	}

	for _, device := range devices {
		if strings.Contains(strings.ToLower(device.ID), term) ||
			strings.Contains(strings.ToLower(device.Description), term) {
			return checkUsable(device)
		}
	}
	return Device{}, fmt.Errorf("audio input %q did not match any device", term)
}

func checkUsable(device Device) (Device, error) {
	if !device.Available {
		return Device{}, fmt.Errorf("audio input %q is unavailable", device.ID)
	}
	if device.Muted {
		return Device{}, fmt.Errorf("audio input %q is muted", device.ID)
	}
	return device, nil
}

// Capture streams fixed-size PCM chunks from one Pulse source.
type Capture struct {
	device    Device
	chunkSize int

	client *pulse.Client
	stream *pulse.RecordStream

	chunks chan []byte
	stopCh chan struct{}

	mu      sync.Mutex
	pending []byte
	stopped bool

	inflight sync.WaitGroup
}

// StartCapture opens a mono s16 record stream at the given sample rate,
// emitting 20ms chunks.
func StartCapture(ctx context.Context, device Device, sampleRate int) (*Capture, error) {
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("earshot"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}

	source, err := client.SourceByID(device.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", device.ID, err)
	}

	capture := &Capture{
		device:    device,
		chunkSize: sampleRate / 50 * 2, // 20ms of mono s16
		client:    client,
		chunks:    make(chan []byte, 128),
		stopCh:    make(chan struct{}),
	}

	writer := pulse.NewWriter(writerFunc(capture.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(sampleRate),
		pulse.RecordBufferFragmentSize(uint32(capture.chunkSize)),
		pulse.RecordMediaName("earshot wake listening"),
	)
	if err != nil {
		capture.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	capture.stream = stream
	stream.Start()

	go func() {
		<-ctx.Done()
		_ = capture.Stop()
	}()

	return capture, nil
}

// Device returns capture metadata for logging.
func (c *Capture) Device() Device {
	return c.device
}

// Chunks returns the PCM stream; closed exactly once on Stop.
func (c *Capture) Chunks() <-chan []byte {
	return c.chunks
}

// Stop halts the stream, flushes residual PCM, and closes Chunks.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	close(c.stopCh)
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}

	c.inflight.Wait()

	c.mu.Lock()
	residual := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(residual) > 0 {
		select {
		case c.chunks <- residual:
		default:
		}
	}

	close(c.chunks)
	return nil
}

// Close is a convenience alias for Stop.
func (c *Capture) Close() {
	_ = c.Stop()
}

// onPCM buffers raw Pulse frames and emits chunkSize slices.
func (c *Capture) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return 0, io.EOF
	}
	// Add under the same mutex as c.stopped so Stop's Wait cannot race it.
	c.inflight.Add(1)

	c.pending = append(c.pending, buffer...)
	ready := make([][]byte, 0, len(c.pending)/c.chunkSize)
	for len(c.pending) >= c.chunkSize {
		chunk := make([]byte, c.chunkSize)
		copy(chunk, c.pending[:c.chunkSize])
		c.pending = c.pending[c.chunkSize:]
		ready = append(ready, chunk)
	}
	c.mu.Unlock()
	defer c.inflight.Done()

	for _, chunk := range ready {
		select {
		case <-c.stopCh:
			return 0, io.EOF
		case c.chunks <- chunk:
		}
	}

	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}

func sourceStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	if len(source.Ports) == 0 {
		return true
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
