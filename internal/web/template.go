package web

import (
	"html/template"
	"io"
	"time"

	"github.com/tlikar/garage-monitor/internal/status"
)

var pageTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="5">
<title>Garage Door Monitor</title>
<style>
body { font-family: sans-serif; margin: 2em; background: #f4f4f4; }
.card { background: #fff; border-radius: 8px; padding: 1.5em; max-width: 30em; box-shadow: 0 1px 3px rgba(0,0,0,.2); }
.state { font-size: 2em; font-weight: bold; }
.state.closed { color: #2e7d32; }
.state.open { color: #c62828; }
.state.partial { color: #ef6c00; }
.state.unknown { color: #616161; }
table { border-collapse: collapse; margin-top: 1em; }
td { padding: .2em .8em .2em 0; color: #444; }
</style>
</head>
<body>
<div class="card">
<div class="state {{.StateClass}}">{{.State}}</div>
<table>
<tr><td>Since</td><td>{{.Since}}</td></tr>
<tr><td>Uptime</td><td>{{.Uptime}}</td></tr>
<tr><td>Transitions</td><td>{{.Counts.Opened}} opened / {{.Counts.Closed}} closed / {{.Counts.Partial}} partial / {{.Counts.Unknown}} unknown</td></tr>
<tr><td>Notifications</td><td>{{.Sent}} sent, {{.Skipped}} skipped</td></tr>
{{if .Broker}}<tr><td>MQTT</td><td>{{.MQTT}}</td></tr>{{end}}
</table>
</div>
</body>
</html>
`))

type pageData struct {
	State      string
	StateClass string
	Since      string
	Uptime     string
	Counts     status.Counts
	Sent       int
	Skipped    int
	Broker     string
	MQTT       string
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	state := string(snap.State)
	class := "unknown"
	switch state {
	case "CLOSED":
		class = "closed"
	case "OPEN":
		class = "open"
	case "PARTIAL":
		class = "partial"
	case "":
		state = "UNKNOWN"
	}

	since := "-"
	if !snap.Since.IsZero() {
		since = snap.Since.Local().Format("2006-01-02 15:04:05")
	}

	mqttState := "disconnected"
	if snap.MQTTConnected {
		mqttState = "connected"
	}

	pageTmpl.Execute(w, pageData{
		State:      state,
		StateClass: class,
		Since:      since,
		Uptime:     snap.Uptime().Truncate(time.Second).String(),
		Counts:     snap.Counts,
		Sent:       snap.Sent,
		Skipped:    snap.Skipped,
		Broker:     snap.Config.Broker,
		MQTT:       mqttState,
	})
}
