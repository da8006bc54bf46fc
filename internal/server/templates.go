package server

import (
	"html/template"

	"github.com/mrz1836/deeplink/internal/output"
	"github.com/mrz1836/deeplink/internal/response"
)

// page is the data passed to every HTML template.
type page struct {
	Title string
	// Refresh is the meta refresh directive, e.g. "2;url=https://phantom.app".
	Refresh string

	Wallets []walletEntry

	Wallet  string
	Action  string
	Link    template.URL
	Website string

	Outcomes []response.Outcome
	Error    *output.ErrorDetail
}

type walletEntry struct {
	Name        string
	DisplayName string
	Website     string
	Actions     []string
}

const pageTemplates = `
{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if .Refresh}}
<meta http-equiv="refresh" content="{{.Refresh}}">
{{- end}}
<title>{{.Title}}</title>
</head>
<body>
{{end}}

{{define "footer"}}</body>
</html>
{{end}}

{{define "index"}}{{template "header" .}}<h1>Wallets</h1>
<ul>
{{- range $w := .Wallets}}
<li><a href="{{$w.Website}}">{{$w.DisplayName}}</a>:
{{- range $w.Actions}} <a href="/dispatch/{{$w.Name}}/{{.}}">{{.}}</a>{{end}}</li>
{{- end}}
</ul>
{{template "footer" .}}{{end}}

{{define "interstitial"}}{{template "header" .}}<h1>Opening {{.Wallet}}</h1>
<script>window.location.href = {{.Link}};</script>
<p><a id="open" href="{{.Link}}">Open {{.Wallet}} ({{.Action}})</a></p>
<p>Not installed? You will be sent to <a id="fallback" href="{{.Website}}">{{.Website}}</a>.</p>
{{template "footer" .}}{{end}}

{{define "outcome"}}{{template "header" .}}<h1>Wallet response</h1>
{{- if .Outcomes}}
<ul>
{{- range .Outcomes}}
<li class="{{.Kind}}">{{.Message}}</li>
{{- end}}
</ul>
{{- else}}
<p>No wallet response recognized.</p>
{{- end}}
<p><a href="/">Back</a></p>
{{template "footer" .}}{{end}}

{{define "error"}}{{template "header" .}}<h1>Error</h1>
{{- with .Error}}
<p class="message">{{.Message}}</p>
{{- if .Suggestion}}
<p class="suggestion">{{.Suggestion}}</p>
{{- end}}
{{- end}}
<p><a href="/">Back</a></p>
{{template "footer" .}}{{end}}
`

func parseTemplates() *template.Template {
	return template.Must(template.New("pages").Parse(pageTemplates))
}
