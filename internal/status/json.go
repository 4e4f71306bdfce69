package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	Mode          string      `json:"mode"`
	Game          GameJSON    `json:"game"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Counts        CountsJSON  `json:"event_counts"`
	Coils         CoilsJSON   `json:"coils"`
	Recent        []EventJSON `json:"recent"`
	Config        ConfigJSON  `json:"config"`
}

// GameJSON is the JSON representation of the scoreboard.
type GameJSON struct {
	Score     int64 `json:"score"`
	HighScore int64 `json:"high_score"`
	Balls     int   `json:"balls"`
	Collected int   `json:"collected"`
	Jackpot   bool  `json:"jackpot"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Target   int `json:"target"`
	Bumper   int `json:"bumper"`
	Jackpot  int `json:"jackpot"`
	Filtered int `json:"filtered"`
}

// CoilsJSON is the JSON representation of pulse counters.
type CoilsJSON struct {
	Fired   int `json:"fired"`
	Refused int `json:"refused"`
	Faults  int `json:"faults"`
}

// EventJSON is the JSON representation of a score event.
type EventJSON struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Delta     int64  `json:"delta"`
	Sound     string `json:"sound"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs           int64  `json:"tick_ms"`
	Backend          string `json:"backend"`
	DebounceTargetMs int64  `json:"debounce_target_ms"`
	DebounceBumperMs int64  `json:"debounce_bumper_ms"`
	CooldownTargetMs int64  `json:"cooldown_target_ms"`
	CooldownBumperMs int64  `json:"cooldown_bumper_ms"`
	PulseMs          int64  `json:"pulse_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	Broker           string `json:"broker"`
	HTTPAddr         string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	mode := snap.Mode
	if mode == "" {
		mode = "UNKNOWN"
	}

	recent := make([]EventJSON, 0, len(snap.Recent))
	for _, e := range snap.Recent {
		recent = append(recent, EventJSON{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
			Source:    string(e.Source),
			Delta:     e.Delta,
			Sound:     string(e.Sound),
		})
	}

	return StatusInner{
		Mode: mode,
		Game: GameJSON{
			Score:     snap.Game.Score,
			HighScore: snap.Game.HighScore,
			Balls:     snap.Game.Balls,
			Collected: snap.Game.Collected,
			Jackpot:   snap.Game.Jackpot,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Target:   snap.Counts.Target,
			Bumper:   snap.Counts.Bumper,
			Jackpot:  snap.Counts.Jackpot,
			Filtered: snap.Counts.Filtered,
		},
		Coils: CoilsJSON{
			Fired:   snap.Coils.Fired,
			Refused: snap.Coils.Refused,
			Faults:  snap.Coils.Faults,
		},
		Recent: recent,
		Config: ConfigJSON{
			TickMs:           snap.Config.TickMs,
			Backend:          snap.Config.Backend,
			DebounceTargetMs: snap.Config.DebounceTargetMs,
			DebounceBumperMs: snap.Config.DebounceBumperMs,
			CooldownTargetMs: snap.Config.CooldownTargetMs,
			CooldownBumperMs: snap.Config.CooldownBumperMs,
			PulseMs:          snap.Config.PulseMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
