// Package web serves the storefront browser page.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

//go:embed static
var content embed.FS

// Register mounts the page on GET / and its assets under /static.
func Register(router *gin.Engine) {
	static, err := fs.Sub(content, "static")
	if err != nil {
		log.WithError(err).Error("Embedded web assets missing")
		return
	}

	router.StaticFS("/static", http.FS(static))
	router.GET("/", func(c *gin.Context) {
		page, err := fs.ReadFile(static, "index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "page unavailable")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
}
