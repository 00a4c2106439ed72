package api

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/cirocosta/todopage/internal/model"
)

var pageTemplate = template.Must(template.New("todos").Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>Todo Workspace</title>
<style>
.done { text-decoration: line-through; }
li { display: flex; gap: 0.5rem; align-items: center; }
</style>
</head>
<body>
<main>
<h1>Todo Workspace ({{.Identity}})</h1>
<form method="post" action="/todos">
<input type="text" name="title" placeholder="Tulis tugas baru...">
<button type="submit">Tambah</button>
</form>
<ul>
{{- range .Todos}}
<li>
<span{{if .IsDone}} class="done"{{end}}>{{.Title}}</span>
<form method="post" action="/todos/{{.ID}}/toggle">
<input type="hidden" name="is_done" value="{{.IsDone}}">
<button type="submit">{{if .IsDone}}Belum{{else}}Selesai{{end}}</button>
</form>
</li>
{{- end}}
</ul>
</main>
</body>
</html>
`))

func renderPage(page model.TodoPage) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}
