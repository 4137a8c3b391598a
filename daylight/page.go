package daylight

import (
	"html/template"

	"github.com/devskill-org/daylight/zones"
)

type formPage struct {
	Placeholder string
	Today       string
	Default     string
	Zones       []zones.Zone
}

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Sunrise and Sunset</title>
<style>
body { font-family: sans-serif; max-width: 32em; margin: 2em auto; }
fieldset { margin-bottom: 1em; }
input.deg { width: 3em; } input.min { width: 2em; } input.sec { width: 4em; }
#result { white-space: pre; font-size: 1.2em; }
#error { color: #b00; }
</style>
</head>
<body>
<h1>Sunrise and Sunset</h1>
<form id="calc">
<fieldset>
<legend>Date</legend>
<input name="date" placeholder="{{.Placeholder}}" value="{{.Today}}">
</fieldset>
<fieldset>
<legend>Latitude</legend>
<input class="deg" name="lat_degrees" maxlength="3">&deg;
<input class="min" name="lat_minutes" maxlength="2" value="0">&prime;
<input class="sec" name="lat_seconds" maxlength="5" value="0">&Prime;
<select name="lat_hemisphere"><option>N</option><option>S</option></select>
</fieldset>
<fieldset>
<legend>Longitude</legend>
<input class="deg" name="long_degrees" maxlength="3">&deg;
<input class="min" name="long_minutes" maxlength="2" value="0">&prime;
<input class="sec" name="long_seconds" maxlength="5" value="0">&Prime;
<select name="long_hemisphere"><option>E</option><option>W</option></select>
</fieldset>
<fieldset>
<legend>Time Zone</legend>
<select name="time_zone">
<option value="auto">Automatic</option>
{{- range .Zones}}
<option value="{{.ID}}"{{if eq .ID $.Default}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
<label>Daylight Savings
<select name="daylight_savings"><option>Yes</option><option>No</option></select>
</label>
</fieldset>
<button type="submit">Calculate</button>
</form>
<p id="error"></p>
<p id="result"></p>
<script>
document.getElementById("calc").addEventListener("submit", async (e) => {
  e.preventDefault();
  const body = new URLSearchParams(new FormData(e.target));
  const resp = await fetch("/api/calculate", { method: "POST", body });
  const data = await resp.json();
  document.getElementById("error").textContent = resp.ok ? "" : data.message;
  document.getElementById("result").textContent = resp.ok
    ? "Sunrise: " + data.sunrise + "\nSunset: " + data.sunset + "\nDay Length: " + data.day_length
    : "";
});
</script>
</body>
</html>
`))
