package render

import (
	"html/template"
	"io"
)

// refreshSeconds is how often the loading page reloads itself.
const refreshSeconds = 2

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>React Weather App</title>
{{- if .View.Loading}}
<meta http-equiv="refresh" content="{{.Refresh}}">
{{- end}}
</head>
<body>
<header class="header"><h2>React Weather App</h2></header>
<form method="post" action="/submit">
<label for="location">Enter Location :</label>
<input type="text" id="location" name="location" value="{{.View.Input}}">
<button type="submit">Search</button>
</form>
<section class="card">
{{- if .View.Loading}}
<p class="loading">{{.View.LoadingMessage}}</p>
{{- else}}
<p class="temperature">{{.View.Temperature}}</p>
{{- if .View.IconURL}}
<img class="icon" src="{{.View.IconURL}}" alt="{{.View.Description}}">
{{- end}}
<p class="description">{{.View.Description}}</p>
<p class="range">Min: {{.View.TempMin}} Max: {{.View.TempMax}}</p>
<p class="conditions">{{.View.Conditions}}</p>
<p class="location">{{.View.Location}}</p>
<p class="country">{{.View.Country}}</p>
{{- end}}
</section>
<footer class="footer">&copy; React Weather App</footer>
</body>
</html>
`))

type pageData struct {
	View    View
	Refresh int
}

// WritePage writes the HTML page for v. The loading page carries a meta refresh so a
// browser without scripts picks up the result once it arrives.
func WritePage(w io.Writer, v View) error {
	return pageTemplate.Execute(w, pageData{View: v, Refresh: refreshSeconds})
}
