// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package webui

import "html/template"

// indexData feeds the dashboard page: form defaults plus the current run
// state for the start button.
type indexData struct {
	Input     string
	Output    string
	ChunkSize int
	Backend   string
	Running   bool
}

// docEntry is one row in the document browser listing. Link is empty for
// documents that produced no output.
type docEntry struct {
	RelPath     string
	Status      string
	Backend     string
	ConvertedAt string
	Link        string
}

type docsData struct {
	Output  string
	Entries []docEntry
}

// docPageData feeds a rendered markdown page. Body is pre-rendered HTML
// and CSS is the trusted highlighting stylesheet.
type docPageData struct {
	Title string
	CSS   template.CSS
	Body  template.HTML
}

// indexTmpl is the dashboard page: the conversion form and the live log
// pane. The page polls /logs and /status while a run is active. Per
// prd005-dashboard R2.1-R2.4, R3.1.
var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>markforge</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
h1 { font-size: 1.4rem; }
form { display: grid; grid-template-columns: 10rem 1fr; gap: 0.6rem 1rem; align-items: center; margin-bottom: 1.5rem; }
label { font-weight: 600; }
input[type=text], select { padding: 0.35rem 0.5rem; border: 1px solid #d0d7de; border-radius: 4px; font: inherit; }
button { grid-column: 2; justify-self: start; padding: 0.45rem 1.4rem; border: none; border-radius: 4px; background: #1f6feb; color: #fff; font: inherit; cursor: pointer; }
button:disabled { background: #8c959f; cursor: default; }
#chunkval { margin-left: 0.5rem; }
pre#logs { background: #0d1117; color: #e6edf3; padding: 1rem; border-radius: 6px; min-height: 16rem; max-height: 28rem; overflow-y: auto; white-space: pre-wrap; }
nav a { margin-right: 1rem; }
</style>
</head>
<body>
<h1>markforge</h1>
<nav><a href="/docs/">documents</a></nav>
<form method="post" action="/convert">
<label for="input">Input directory</label>
<input type="text" id="input" name="input" value="{{.Input}}">
<label for="output">Output directory</label>
<input type="text" id="output" name="output" value="{{.Output}}">
<label for="chunk_size">Pages per chunk</label>
<span><input type="range" id="chunk_size" name="chunk_size" min="10" max="100" value="{{.ChunkSize}}" oninput="chunkval.textContent = this.value"><span id="chunkval">{{.ChunkSize}}</span></span>
<label for="backend">PDF backend</label>
<select id="backend" name="backend">
<option value="marker"{{if eq .Backend "marker"}} selected{{end}}>marker</option>
<option value="remote"{{if eq .Backend "remote"}} selected{{end}}>remote</option>
<option value="gemini"{{if eq .Backend "gemini"}} selected{{end}}>gemini</option>
<option value="text"{{if eq .Backend "text"}} selected{{end}}>text</option>
</select>
<button id="start" type="submit"{{if .Running}} disabled{{end}}>Start conversion</button>
</form>
<pre id="logs"></pre>
<script>
async function poll() {
	try {
		const [logs, status] = await Promise.all([
			fetch("/logs").then(r => r.text()),
			fetch("/status").then(r => r.json()),
		]);
		const pane = document.getElementById("logs");
		const stick = pane.scrollTop + pane.clientHeight >= pane.scrollHeight - 4;
		pane.textContent = logs;
		if (stick) pane.scrollTop = pane.scrollHeight;
		document.getElementById("start").disabled = status.running;
	} catch (e) {}
}
poll();
setInterval(poll, 1000);
</script>
</body>
</html>
`))

// docsTmpl lists the cataloged documents with links into the rendered
// output tree. Per prd005-dashboard R5.1-R5.2.
var docsTmpl = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>markforge - documents</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
h1 { font-size: 1.4rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #d0d7de; }
td.status-failed { color: #cf222e; }
td.status-converted, td.status-partial { color: #1a7f37; }
</style>
</head>
<body>
<h1>Documents</h1>
<p><a href="/">dashboard</a></p>
{{if .Entries}}
<table>
<tr><th>Document</th><th>Status</th><th>Backend</th><th>Converted</th></tr>
{{range .Entries}}
<tr>
<td>{{if .Link}}<a href="{{.Link}}">{{.RelPath}}</a>{{else}}{{.RelPath}}{{end}}</td>
<td class="status-{{.Status}}">{{.Status}}</td>
<td>{{.Backend}}</td>
<td>{{.ConvertedAt}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>No documents converted yet. Output directory: {{.Output}}</p>
{{end}}
</body>
</html>
`))

// docPageTmpl wraps one rendered markdown document. CSS carries the
// highlighting stylesheet. Per prd005-dashboard R5.3.
var docPageTmpl = template.Must(template.New("doc").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; line-height: 1.5; }
img { max-width: 100%; }
pre { background: #f6f8fa; padding: 1rem; border-radius: 6px; overflow-x: auto; }
code { font-family: ui-monospace, "SF Mono", monospace; font-size: 0.9em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d7de; padding: 0.3rem 0.7rem; }
blockquote { border-left: 4px solid #d0d7de; margin-left: 0; padding-left: 1rem; color: #59636e; }
{{.CSS}}
</style>
</head>
<body>
<p><a href="/docs/">all documents</a></p>
<article>
{{.Body}}
</article>
</body>
</html>
`))
