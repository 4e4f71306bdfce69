// Command pinball-cabinet samples the cabinet's switches, scores accepted
// hits, fires the bumper coils and publishes events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/sweeney/pinball-cabinet/internal/coil"
	"github.com/sweeney/pinball-cabinet/internal/game"
	"github.com/sweeney/pinball-cabinet/internal/gpio"
	"github.com/sweeney/pinball-cabinet/internal/hal"
	"github.com/sweeney/pinball-cabinet/internal/keys"
	"github.com/sweeney/pinball-cabinet/internal/logic"
	"github.com/sweeney/pinball-cabinet/internal/mqtt"
	"github.com/sweeney/pinball-cabinet/internal/status"
	"github.com/sweeney/pinball-cabinet/internal/web"
)

// actionQueue bounds manual actions waiting for the next tick.
const actionQueue = 16

type options struct {
	tick           time.Duration
	backend        string
	chip           string
	activeLow      bool
	pinTarget      int
	pinBumper1     int
	pinBumper2     int
	pinCoil1       int
	pinCoil2       int
	debounceTarget time.Duration
	debounceBumper time.Duration
	cooldownTarget time.Duration
	cooldownBumper time.Duration
	pulse          time.Duration
	pulseMaxHold   time.Duration
	pulseWorkers   int
	broker         string
	heartbeat      time.Duration
	httpAddr       string
	keys           bool
	statsview      string
	printState     bool
}

func main() {
	var o options
	flag.DurationVar(&o.tick, "tick", 16*time.Millisecond, "Main loop interval")
	flag.StringVar(&o.backend, "backend", "gpiocdev", "GPIO backend: gpiocdev, periph or sim")
	flag.StringVar(&o.chip, "chip", "gpiochip0", "GPIO character device (gpiocdev backend)")
	flag.BoolVar(&o.activeLow, "active-low", false, "Switches pull their line low when closed")
	flag.IntVar(&o.pinTarget, "pin-target", gpio.DefaultPinTarget, "BCM pin number for the target switch")
	flag.IntVar(&o.pinBumper1, "pin-bumper1", gpio.DefaultPinBumper1, "BCM pin number for bumper 1")
	flag.IntVar(&o.pinBumper2, "pin-bumper2", gpio.DefaultPinBumper2, "BCM pin number for bumper 2")
	flag.IntVar(&o.pinCoil1, "pin-coil1", gpio.DefaultPinCoil1, "BCM pin number for the bumper 1 coil driver")
	flag.IntVar(&o.pinCoil2, "pin-coil2", gpio.DefaultPinCoil2, "BCM pin number for the bumper 2 coil driver")
	flag.DurationVar(&o.debounceTarget, "debounce-target", 120*time.Millisecond, "Settle window for the target switch")
	flag.DurationVar(&o.debounceBumper, "debounce-bumper", 120*time.Millisecond, "Settle window for the bumper switches")
	flag.DurationVar(&o.cooldownTarget, "cooldown-target", 400*time.Millisecond, "Minimum spacing of accepted target hits")
	flag.DurationVar(&o.cooldownBumper, "cooldown-bumper", 300*time.Millisecond, "Minimum spacing of accepted hits per bumper")
	flag.DurationVar(&o.pulse, "pulse", 100*time.Millisecond, "Coil pulse duration")
	flag.DurationVar(&o.pulseMaxHold, "pulse-max-hold", 300*time.Millisecond, "Longest a coil may be held on by overlapping pulses (0 to disable)")
	flag.IntVar(&o.pulseWorkers, "pulse-workers", 8, "Maximum concurrent coil pulses")
	flag.StringVar(&o.broker, "broker", "", "MQTT broker address (empty to disable)")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.httpAddr, "http", ":8080", "HTTP scoreboard address (empty to disable)")
	flag.BoolVar(&o.keys, "keys", false, "Read manual test keys from the terminal")
	flag.StringVar(&o.statsview, "statsview", "", "Runtime stats viewer address, e.g. localhost:12600 (empty to disable)")
	flag.BoolVar(&o.printState, "print-state", false, "Print current switch levels and exit")

	flag.Parse()

	opener, err := openerFor(o.backend, o.chip)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(o, opener, sigCh); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// openerFor maps the -backend flag to a hal opener. "sim" runs without
// touching GPIO at all.
func openerFor(backend, chip string) (hal.Opener, error) {
	switch backend {
	case "gpiocdev":
		return func() (gpio.Backend, error) { return gpio.NewChip(chip) }, nil
	case "periph":
		return func() (gpio.Backend, error) { return gpio.NewPeriph() }, nil
	case "sim":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// binding pairs a trigger source with the input that reports it.
type binding struct {
	source logic.SourceID
	input  interface{ Active(now time.Time) bool }
}

// run starts the daemon and blocks until a signal arrives. Once the coils are
// bound they are released on every exit path.
func run(o options, opener hal.Opener, sig <-chan os.Signal) error {
	switches := []struct {
		source   logic.SourceID
		pin      int
		debounce time.Duration
	}{
		{logic.SourceTarget, o.pinTarget, o.debounceTarget},
		{logic.SourceBumper1, o.pinBumper1, o.debounceBumper},
		{logic.SourceBumper2, o.pinBumper2, o.debounceBumper},
	}

	if o.printState {
		hw := hal.Open(opener)
		defer hw.Close()
		now := time.Now()
		fmt.Printf("mode: %s\n", hw.Mode())
		for _, sw := range switches {
			// Zero window reports the raw level
			in := hw.BindInput(gpio.PinSpec{Pin: sw.pin, ActiveLow: o.activeLow}, 0)
			fmt.Printf("%s (%s): %s\n", sw.source, in.Spec(), levelString(in.Active(now)))
		}
		return nil
	}

	// Initialize MQTT before binding hardware so a failure leaves nothing held
	var publisher mqtt.Publisher = mqtt.Discard{}
	var mqttStatus mqtt.ConnectionStatus
	var sound game.SoundSink = game.LogSound{}
	if o.broker != "" {
		p, err := mqtt.NewRealPublisher(o.broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher, mqttStatus, sound = p, p, p
	}

	hw := hal.Open(opener)

	var inputs []binding
	for _, sw := range switches {
		in := hw.BindInput(gpio.PinSpec{Pin: sw.pin, ActiveLow: o.activeLow}, sw.debounce)
		inputs = append(inputs, binding{source: sw.source, input: in})
	}

	coils := coil.New(coil.Config{
		Duration: o.pulse,
		MaxHold:  o.pulseMaxHold,
		Workers:  o.pulseWorkers,
	})
	coils.Add(logic.SourceBumper1.Coil(), hw.BindOutput(gpio.PinSpec{Pin: o.pinCoil1}))
	coils.Add(logic.SourceBumper2.Coil(), hw.BindOutput(gpio.PinSpec{Pin: o.pinCoil2}))
	defer shutdown(coils, hw, publisher)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:           o.tick.Milliseconds(),
		Backend:          o.backend,
		DebounceTargetMs: o.debounceTarget.Milliseconds(),
		DebounceBumperMs: o.debounceBumper.Milliseconds(),
		CooldownTargetMs: o.cooldownTarget.Milliseconds(),
		CooldownBumperMs: o.cooldownBumper.Milliseconds(),
		PulseMs:          o.pulse.Milliseconds(),
		HeartbeatMs:      o.heartbeat.Milliseconds(),
		Broker:           o.broker,
		HTTPAddr:         o.httpAddr,
	})
	tracker.SetMode(string(hw.Mode()))

	state := game.NewState()
	tracker.Show(state.Snapshot())

	d := &daemon{
		inputs: inputs,
		gate: logic.NewGate(map[logic.SourceID]time.Duration{
			logic.SourceTarget:  o.cooldownTarget,
			logic.SourceBumper1: o.cooldownBumper,
			logic.SourceBumper2: o.cooldownBumper,
		}),
		dispatcher: game.NewDispatcher(state, sound, coils),
		coils:      coils,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		heartbeat:  logic.NewHeartbeat(o.heartbeat, time.Now()),
		mode:       hw.Mode(),
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Mode:       string(hw.Mode()),
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	actions := make(chan game.Action, actionQueue)

	// Start HTTP scoreboard
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker, actions)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				log.Printf("http shutdown: %v", err)
			}
		}()
		log.Printf("http scoreboard listening on %s", o.httpAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if o.keys {
		tty := startKeys(ctx, openTerminal, actions)
		if tty != nil {
			defer func() {
				if err := tty.Close(); err != nil {
					log.Printf("keys: restore terminal: %v", err)
				}
			}()
		}
	}
	if o.statsview != "" {
		startStatsview(o.statsview)
	}

	log.Printf("started: mode=%s tick=%v pulse=%v broker=%q heartbeat=%v", hw.Mode(), o.tick, o.pulse, o.broker, o.heartbeat)

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	return runLoop(d, time.Now, ticker.C, sig, actions)
}

// shutdown releases everything in order: pulses are drained before the
// hardware is released, and the broker connection goes last so the SHUTDOWN
// event is flushed. Every coil ends de-energized.
func shutdown(coils *coil.Controller, hw *hal.Hardware, publisher mqtt.Publisher) {
	if err := coils.Shutdown(); err != nil {
		log.Printf("coil shutdown: %v", err)
	}
	if err := hw.Close(); err != nil {
		log.Printf("hal close: %v", err)
	}
	if err := publisher.Close(); err != nil {
		log.Printf("mqtt close: %v", err)
	}
}

func openTerminal() (io.ReadCloser, error) {
	return keys.Open(os.Stdin)
}

// startKeys switches the terminal to single key presses and feeds them to
// actions. The caller must Close the returned terminal to restore it; nil
// means keyboard input is unavailable.
func startKeys(ctx context.Context, open func() (io.ReadCloser, error), actions chan<- game.Action) io.Closer {
	tty, err := open()
	if err != nil {
		log.Printf("keys: disabled: %v", err)
		return nil
	}
	log.Printf("%s", keys.Help)
	go func() {
		if err := keys.Run(ctx, tty, actions); err != nil {
			log.Printf("keys: %v", err)
		}
	}()
	return tty
}

func startStatsview(addr string) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()
	log.Printf("stats viewer available at http://%s/debug/statsview", addr)
}

// daemon is the state owned by the main loop goroutine.
type daemon struct {
	inputs     []binding
	gate       *logic.Gate
	dispatcher *game.Dispatcher
	coils      *coil.Controller
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	heartbeat  *logic.Heartbeat
	mode       hal.Mode
	counts     logic.EventCounts
}

// runLoop samples every input once per tick and applies queued manual
// actions at the same tick time. It returns when a signal arrives.
func runLoop(d *daemon, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, actions <-chan game.Action) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Mode:      string(d.mode),
				Retained:  true,
			}
			if d.tracker != nil {
				d.refresh()
				snap := d.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case t := <-tick:
			for _, b := range d.inputs {
				if b.input.Active(t) {
					d.trigger(b.source, t)
				}
			}

		drain:
			for {
				select {
				case a := <-actions:
					d.apply(a, t)
				default:
					break drain
				}
			}

			if hb := d.heartbeat.Check(t, d.counts); hb != nil {
				log.Printf("heartbeat: uptime=%v target=%d bumper=%d jackpot=%d filtered=%d",
					hb.Uptime, hb.Counts.Target, hb.Counts.Bumper, hb.Counts.Jackpot, hb.Counts.Filtered)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
					Mode:      string(d.mode),
				}
				if d.tracker != nil {
					d.refresh()
					hbEvent.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			if d.tracker != nil {
				d.refresh()
			}
		}
	}
}

// trigger runs a settled input (or its manual stand-in) through the gate and,
// if accepted, the dispatcher. Rejections are counted, not logged.
func (d *daemon) trigger(source logic.SourceID, t time.Time) {
	if !d.gate.TryAccept(source, t) {
		d.counts.Filtered++
		return
	}
	d.emit(d.dispatcher.Dispatch(source, t))
}

func (d *daemon) emit(e logic.ScoreEvent) {
	d.counts.Count(e)
	if d.tracker != nil {
		d.tracker.Record(e)
	}
	if err := d.publisher.Publish(e); err != nil {
		log.Printf("publish error: %v", err)
	}
}

func (d *daemon) apply(a game.Action, t time.Time) {
	if source, ok := a.Source(); ok {
		d.trigger(source, t)
		return
	}

	state := d.dispatcher.State()
	switch a {
	case game.ActionLetter:
		if e, ok := d.dispatcher.CollectLetter(t); ok {
			log.Printf("game: all %d letters collected, jackpot", game.LettersToWin)
			d.emit(e)
		}
	case game.ActionDrain:
		if state.DrainBall() {
			log.Printf("game: last ball drained, score %d", state.Score)
		}
	case game.ActionReset:
		state.Reset()
		log.Printf("game: reset (high score %d)", state.HighScore)
	}
}

// refresh copies loop-owned state into the tracker for HTTP readers.
func (d *daemon) refresh() {
	d.tracker.Show(d.dispatcher.State().Snapshot())
	d.tracker.SetCounts(d.counts)
	if d.coils != nil {
		d.tracker.SetCoilStats(d.coils.Stats())
	}
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

func levelString(on bool) string {
	if on {
		return "ACTIVE"
	}
	return "INACTIVE"
}
