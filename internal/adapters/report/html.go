package report

import "html/template"

type htmlPage struct {
	Title   string
	Summary string
}

var htmlTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: monospace; background: #fafafa; color: #222; margin: 2rem auto; max-width: 60rem; }
pre { background: #fff; border: 1px solid #ddd; border-radius: 4px; padding: 1.5rem; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<pre>{{.Summary}}</pre>
</body>
</html>
`))
