// Package web holds the HTML views rendered by the route layer.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	// kb renders a byte count string as kilobytes, leaving non-numeric input as is.
	"kb": func(size string) string {
		n, err := strconv.ParseInt(size, 10, 64)
		if err != nil || n <= 0 {
			return size
		}
		return strconv.FormatInt((n+1023)/1024, 10) + " KB"
	},
}

// Templates parses the embedded views. Template names are the file names,
// e.g. "dashboard.html".
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// ErrorPage renders the shared error view with status.
func ErrorPage(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.HTML(status, "error.html", gin.H{"Status": status, "StatusText": http.StatusText(status), "Message": message})
}
