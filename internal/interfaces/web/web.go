// Package web renders the support pages and serves their scripts.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"framelink-support/internal/config"
	"framelink-support/internal/domain/upload"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const (
	PageHome     = "home.html"
	PageAbout    = "about.html"
	PageContact  = "contact.html"
	PageUpload   = "upload.html"
	PageNotFound = "404.html"
	PageError    = "error.html"
)

// PageData is passed to every template.
type PageData struct {
	Title       string
	ServiceName string
	Active      string
	Streaming   bool
	UploadLimit string
	AcceptTypes string
	Status      int
	RequestID   string
}

// Pages renders the HTML pages.
type Pages struct {
	cfg  *config.Config
	tmpl *template.Template
	log  zerolog.Logger
}

func NewPages(cfg *config.Config, log zerolog.Logger) (*Pages, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Pages{
		cfg:  cfg,
		tmpl: tmpl,
		log:  log.With().Str("component", "web").Logger(),
	}, nil
}

// StaticFS exposes the page scripts and stylesheet.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Register mounts the pages and static assets on router.
func (p *Pages) Register(router gin.IRouter) {
	router.StaticFS("/static", StaticFS())
	router.GET("/", p.Home)
	router.GET("/about", p.About)
	router.GET("/contact", p.Contact)
	router.GET("/upload", p.Upload)
}

func (p *Pages) Home(c *gin.Context) {
	p.render(c, http.StatusOK, PageHome, p.data("Home", "home"))
}

func (p *Pages) About(c *gin.Context) {
	p.render(c, http.StatusOK, PageAbout, p.data("About", "about"))
}

func (p *Pages) Contact(c *gin.Context) {
	p.render(c, http.StatusOK, PageContact, p.data("Contact support", "contact"))
}

func (p *Pages) Upload(c *gin.Context) {
	p.render(c, http.StatusOK, PageUpload, p.data("Upload documents", "upload"))
}

// NotFound answers unknown routes. API paths get JSON.
func (p *Pages) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	data := p.data("Page not found", "")
	data.Status = http.StatusNotFound
	p.render(c, http.StatusNotFound, PageNotFound, data)
}

// Error renders the global error page with status.
func (p *Pages) Error(c *gin.Context, status int) {
	data := p.data("Something went wrong", "")
	data.Status = status
	data.RequestID = c.GetString("request_id")
	p.render(c, status, PageError, data)
}

func (p *Pages) data(title, active string) PageData {
	return PageData{
		Title:       title,
		ServiceName: "FrameLink Support",
		Active:      active,
		Streaming:   p.cfg.ContactStreaming,
		UploadLimit: upload.FormatLimit(p.cfg.UploadMaxBytes),
		AcceptTypes: strings.Join(upload.AllowedTypes, ","),
	}
}

func (p *Pages) render(c *gin.Context, status int, name string, data PageData) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := p.tmpl.ExecuteTemplate(c.Writer, name, data); err != nil {
		p.log.Error().Err(err).Str("template", name).Msg("render page")
	}
}
