package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/pinball-cabinet/internal/game"
	"github.com/sweeney/pinball-cabinet/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"modeOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"clock": func(t time.Time) string {
		return t.UTC().Format("15:04:05.000")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Pinball Cabinet</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.score { font-size: 1.6em; font-weight: bold; }
.jackpot { color: goldenrod; font-weight: bold; }
.hardware { color: green; }
.simulation { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
form { display: inline; }
</style>
</head>
<body>
<h1>Pinball Cabinet <span class="{{modeOrUnknown .Mode}}">({{modeOrUnknown .Mode}})</span></h1>

<h2>Scoreboard</h2>
<table>
<tr><th>Score</th><td id="score" class="score">{{.Game.Score}}</td></tr>
<tr><th>High Score</th><td id="high-score">{{.Game.HighScore}}</td></tr>
<tr><th>Balls</th><td id="balls">{{.Game.Balls}}</td></tr>
<tr><th>Letters</th><td id="letters">{{.Game.Collected}} / {{.LettersToWin}}</td></tr>
<tr><th>Jackpot</th><td id="jackpot">{{if .Game.Jackpot}}<span class="jackpot">JACKPOT</span>{{else}}no{{end}}</td></tr>
</table>
{{if .Triggers}}
<h2>Manual Test</h2>
<p>{{range .Actions}}<form method="post" action="/trigger"><input type="hidden" name="source" value="{{.}}"><button type="submit">{{.}}</button></form> {{end}}</p>
{{end}}
<h2>Recent Events</h2>
<table>
{{range .Recent}}<tr><th>{{clock .Timestamp}}</th><td>{{.Source}} +{{.Delta}} ({{.Sound}})</td></tr>
{{else}}<tr><td>none</td></tr>
{{end}}</table>

<h2>Event Counts</h2>
<table>
<tr><th>Target</th><td>{{.Counts.Target}}</td></tr>
<tr><th>Bumper</th><td>{{.Counts.Bumper}}</td></tr>
<tr><th>Jackpot</th><td>{{.Counts.Jackpot}}</td></tr>
<tr><th>Filtered</th><td>{{.Counts.Filtered}}</td></tr>
<tr><th>Pulses</th><td>{{.Coils.Fired}} fired, {{.Coils.Refused}} refused, {{.Coils.Faults}} faults</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Debounce</th><td>target {{.Config.DebounceTargetMs}}ms, bumper {{.Config.DebounceBumperMs}}ms</td></tr>
<tr><th>Cooldown</th><td>target {{.Config.CooldownTargetMs}}ms, bumper {{.Config.CooldownBumperMs}}ms</td></tr>
<tr><th>Pulse</th><td>{{.Config.PulseMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, triggers bool) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime       time.Duration
		LettersToWin int
		Triggers     bool
		Actions      []game.Action
	}{
		Snapshot:     snap,
		Uptime:       snap.Uptime(),
		LettersToWin: game.LettersToWin,
		Triggers:     triggers,
		Actions:      game.Actions,
	}
	indexTmpl.Execute(w, data)
}
