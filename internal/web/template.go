package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/motor-sentry/internal/status"
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
	"percent": func(level int) int {
		return level * 100 / 255
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Motor Sentry</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.alerting { color: red; font-weight: bold; }
.suppressed { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Motor Sentry</h1>
{{if .Baselined}}
<table>
<tr><th>Temperature</th><td>{{if .Last.HaveTemperature}}{{printf "%.2f" .Last.Temperature}} &deg;C{{else}}<span class="unknown">no reading</span>{{end}}</td></tr>
<tr><th>Warning</th><td class="{{if eq (print .Last.Warning) "ALERTING"}}alerting{{else}}suppressed{{end}}">{{.Last.Warning}}</td></tr>
<tr><th>Override</th><td>{{if .Last.Override}}ON{{else}}OFF{{end}}</td></tr>
<tr><th>Motor</th><td>{{.Last.Level}}/255 ({{percent .Last.Level}}%)</td></tr>
<tr><th>Raw samples</th><td>control={{.Last.ControlRaw}} temperature={{.Last.TemperatureRaw}}</td></tr>
</table>
{{else}}
<p class="unknown">Waiting for first reading&hellip;</p>
{{end}}
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Iterations</th><td>{{.Iterations}}</td></tr>
<tr><th>Alerts</th><td>{{.Counts.AlertOn}} on / {{.Counts.AlertOff}} off</td></tr>
<tr><th>Overrides</th><td>{{.Counts.OverrideOn}} on / {{.Counts.OverrideOff}} off</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
<tr><th>Loop mode</th><td>{{.Config.Mode}} (poll {{.Config.PollMs}} ms)</td></tr>
</table>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	indexTmpl.Execute(w, snap)
}
