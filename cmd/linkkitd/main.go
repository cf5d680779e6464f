// Command linkkitd is the link daemon: it deframes bytes received from a
// serial-attached device with the L2 protocol, routes decoded frames
// into a ring FIFO, and drives PTT keying for each radio channel.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/kc9wav/linkkit/internal/devwatch"
	"github.com/kc9wav/linkkit/internal/discovery"
	"github.com/kc9wav/linkkit/internal/dfifo"
	"github.com/kc9wav/linkkit/internal/fsm"
	"github.com/kc9wav/linkkit/internal/hwctl"
	"github.com/kc9wav/linkkit/internal/l2proto"
	"github.com/kc9wav/linkkit/internal/linkcfg"
	"github.com/kc9wav/linkkit/internal/linklog"
	"github.com/kc9wav/linkkit/internal/ringfifo"
	"github.com/kc9wav/linkkit/internal/serialio"
)

// Events the channel's FSM reacts to. evFrameDropped has no registered
// transition anywhere in the table: it is still fed through ProcessEvent so
// drop accounting could hook in later, but today it is simply unhandled.
const (
	evFrameDecoded uint8 = iota + 1
	evFrameDrained
	evFrameDropped
)

// keyingStates builds the two-state keying FSM: Idle keys the line low,
// Keyed keys it high. A decoded frame moves Idle -> Keyed; the decode loop
// immediately follows up with evFrameDrained once the frame is fully
// handed off, moving back to Idle. Both actions push a one-byte keying
// command into handoff, which the channel's keying goroutine reads and
// applies to hwctl.
func keyingStates(handoff *dfifo.DoubleSlot) []fsm.State {
	keyLine := func(active bool) {
		slot := handoff.SendAcquire()
		if slot == nil {
			return
		}
		if active {
			slot[0] = 1
		} else {
			slot[0] = 0
		}
		handoff.SendComplete()
	}

	return []fsm.State{
		{ // state 1: Idle
			DefaultSubstateID: 1,
			ParentID:          0,
			Transitions:       []fsm.Transition{{Event: evFrameDecoded, Next: 2}},
			Action:            func(uint8, any) { keyLine(false) },
		},
		{ // state 2: Keyed
			DefaultSubstateID: 2,
			ParentID:          1,
			Transitions:       []fsm.Transition{{Event: evFrameDrained, Next: 1}},
			Action:            func(uint8, any) { keyLine(true) },
		},
	}
}

func main() {
	configFileName := pflag.StringP("config-file", "c", "linkkit.yaml", "Configuration file name.")
	dnssdOff := pflag.BoolP("no-dns-sd", "n", false, "Disable DNS-SD announcement of the link service.")
	logLevel := pflag.StringP("log-level", "l", "", "Override the configured log level (debug, info, warn, error).")
	pflag.Parse()

	cfg, err := linkcfg.Load(*configFileName)
	if err != nil {
		linklog.Error("failed to load configuration", "file", *configFileName, "err", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	applyLogLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !*dnssdOff {
		name := cfg.DNSSDName
		if name == "" {
			name = "linkkitd"
		}
		announcer, errCh, announceErr := discovery.Announce(name, cfg.KISSPort)
		if announceErr != nil {
			linklog.Error("DNS-SD announce failed", "err", announceErr)
		} else {
			defer announcer.Stop()
			go func() {
				if err, ok := <-errCh; ok {
					linklog.Error("DNS-SD responder exited", "err", err)
				}
			}()
		}
	}

	for i, ch := range cfg.Channels {
		if err := runChannel(ctx, i, ch, cfg); err != nil {
			linklog.Error("channel failed to start", "channel", i, "err", err)
		}
	}

	watchTTYHotplug(ctx)

	<-ctx.Done()
	linklog.Info("shutting down")
}

// watchTTYHotplug logs serial devices appearing and disappearing, so an
// operator can see a radio's USB-serial adapter come and go without
// restarting the daemon.
func watchTTYHotplug(ctx context.Context) {
	events, err := devwatch.Watch(ctx, "tty")
	if err != nil {
		linklog.Warn("udev hotplug watch unavailable", "err", err)
		return
	}
	go func() {
		for ev := range events {
			linklog.Info("tty device event", "action", ev.Action, "devnode", ev.DevNode)
		}
	}()
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		linklog.SetLevel(linklog.LevelDebug)
	case "warn":
		linklog.SetLevel(linklog.LevelWarn)
	case "error":
		linklog.SetLevel(linklog.LevelError)
	default:
		linklog.SetLevel(linklog.LevelInfo)
	}
}

func runChannel(ctx context.Context, index int, ch linkcfg.ChannelConfig, cfg *linkcfg.LinkConfig) error {
	log := linklog.With("channel", index, "device", ch.Device)

	port, err := serialio.Open(ch.Device, ch.Baud)
	if err != nil {
		return fmt.Errorf("open serial port: %w", err)
	}

	var line *hwctl.Line
	if ch.PTTChip != "" {
		line, err = hwctl.Open(ch.PTTChip, ch.PTTOffset, ch.PTTInvert)
		if err != nil {
			log.Warn("ptt gpio unavailable", "err", err)
		}
	}

	desc := l2proto.Descriptor{
		FCSCalc:         l2proto.Sum8FCS,
		HTON:            l2proto.ReverseBytes,
		NTOH:            l2proto.ReverseBytes,
		PreambleByteCnt: 1,
		HeadByteCnt:     2,
		LenBitCnt:       12,
		FCSByteCnt:      1,
	}
	recvBufLen := int(desc.HeadByteCnt) + desc.MaxDataLen() + int(desc.FCSByteCnt)
	dec := l2proto.NewDecoder(desc, make([]byte, recvBufLen))
	ring := ringfifo.New(cfg.RingSize)
	handoff := dfifo.New(cfg.FrameMaxLen * 2)

	keying, err := fsm.New(keyingStates(handoff), 1)
	if err != nil {
		return fmt.Errorf("build keying fsm: %w", err)
	}

	go func() {
		defer port.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			b, err := port.ReadByte()
			if err != nil {
				log.Error("read failed", "err", err)
				return
			}
			event, pkt := dec.Feed(b)
			switch event {
			case l2proto.EventEncodedPkt:
				piece := ring.SendAcquireVari()
				if piece.Len() < len(pkt.Data) {
					ring.SendUndo()
					log.Warn("ring buffer full, dropping frame")
					continue
				}
				for i, data := range pkt.Data {
					offset := i
					if offset < len(piece.Bufs[0]) {
						piece.Bufs[0][offset] = data
					} else {
						piece.Bufs[1][offset-len(piece.Bufs[0])] = data
					}
				}
				ring.SendCommitVari(len(pkt.Data))

				keying.ProcessEvent(evFrameDecoded, pkt)
				keying.ProcessEvent(evFrameDrained, nil)
			case l2proto.EventDropSyncError, l2proto.EventDropFCSError, l2proto.EventDropTooLong:
				log.Debug("frame dropped", "event", event)
				keying.ProcessEvent(evFrameDropped, event)
			}
		}
	}()

	if line != nil {
		keyer := hwctl.NewKeyer(line)
		go func() {
			for {
				select {
				case <-ctx.Done():
					line.Close()
					return
				default:
				}
				slot := handoff.RecvAcquire()
				if slot == nil {
					continue
				}
				if err := keyer.Apply(slot); err != nil {
					log.Error("ptt apply failed", "err", err)
				}
				handoff.RecvComplete()
			}
		}()
	}

	return nil
}
