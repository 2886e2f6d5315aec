package handler

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"actas/internal/http/middleware"
	"actas/internal/model"
	"actas/internal/service"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Extracción de actas</title>
</head>
<body>
  <h1>Extracción de actas</h1>
  <form action="/records" method="post" enctype="multipart/form-data">
    <input type="file" name="file" accept=".pdf,.zip" required />
    <button type="submit">Procesar</button>
  </form>
  <p>Registros acumulados: {{.Total}} ({{.Failed}} con error)</p>
  <table border="1">
    <thead>
      <tr><th>ID</th><th>Institución</th><th>Responsable</th><th>DNI</th><th>Archivo</th><th>Estado</th></tr>
    </thead>
    <tbody>
      {{- range .Records}}
      <tr><td>{{.ID}}</td><td>{{.Institution}}</td><td>{{.ResponsibleName}}</td><td>{{.DNI}}</td><td>{{.SourceFilename}}</td><td>{{.Status}}{{with .Reason}}: {{.}}{{end}}</td></tr>
      {{- end}}
    </tbody>
  </table>
  <p>
    <a href="/records/export?format=csv">Descargar CSV</a> |
    <a href="/records/export?format=xlsx">Descargar Excel</a>
  </p>
  <button onclick="fetch('/records', {method: 'DELETE'}).then(() => location.reload())">Limpiar tabla</button>
</body>
</html>
`))

// Index serves the operator upload form.
func Index(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recs := svc.Records(middleware.SessionID(c))
		var buf bytes.Buffer
		err := indexTemplate.Execute(&buf, struct {
			Total, Failed int
			Records       model.Collection
		}{len(recs), recs.FailedCount(), recs})
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Type("html").Send(buf.Bytes())
	}
}
