package web

import (
	"embed"
	"html/template"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minigolfeveryday/mged-site/internal/apiclient"
	"github.com/minigolfeveryday/mged-site/internal/config"
	wembed "github.com/minigolfeveryday/mged-site/internal/embed"
	"github.com/minigolfeveryday/mged-site/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server renders the site pages and proxies /api/* to the API service
type Server struct {
	cfg      *config.Config
	api      *apiclient.Client
	embeds   *embedRenderer
	apiProxy *httputil.ReverseProxy
}

// NewServer wires the page server. The embed reconciler is shared
// across requests; its single-flight guard keeps concurrent page loads
// from racing the provider script.
func NewServer(cfg *config.Config) (*Server, error) {
	apiTarget, err := url.Parse(cfg.Web.APIURL)
	if err != nil {
		return nil, err
	}

	provider := wembed.NewTikTokProvider(nil, cfg.Web.EmbedScriptURL)
	embedCfg := wembed.DefaultConfig(cfg.Web.Hostname)
	// Inline page renders can't afford the full settle wait; unresolved
	// nodes degrade to link cards and get retried on the next load.
	embedCfg.SettleDelay = 300 * time.Millisecond
	reconciler := wembed.NewReconciler(provider, embedCfg)

	return &Server{
		cfg:      cfg,
		api:      apiclient.New(cfg.Web.APIURL, nil, nil),
		embeds:   newEmbedRenderer(reconciler),
		apiProxy: httputil.NewSingleHostReverseProxy(apiTarget),
	}, nil
}

// Router builds the gin engine with pages, the API proxy and statics
func (s *Server) Router() (*gin.Engine, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.handlePage)
	r.GET("/home", s.handlePage)
	r.GET("/watch", s.handlePage)
	r.GET("/about", s.handlePage)
	r.GET("/blog", s.handlePage)
	r.GET("/blog-admin", s.handlePage)
	r.POST("/blog-admin/save", s.handleAdminSave)
	r.POST("/blog-admin/videos", s.handleAdminVideos)

	// Same-origin API for the browser, forwarded to the API service
	r.Any("/api/*path", func(c *gin.Context) {
		s.apiProxy.ServeHTTP(c.Writer, c.Request)
	})

	r.Static("/uploads", s.cfg.Upload.Dir)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mged-web", "time": time.Now().Unix()})
	})

	return r, nil
}

// handlePage dispatches on the last URL segment
func (s *Server) handlePage(c *gin.Context) {
	switch PageFromPath(c.Request.URL.Path) {
	case PageHome:
		s.renderHome(c)
	case PageWatch:
		s.renderWatch(c)
	case PageAbout:
		s.renderAbout(c)
	case PageBlog:
		s.renderBlog(c)
	case PageBlogAdmin:
		s.renderBlogAdmin(c)
	default:
		c.String(http.StatusNotFound, "not found")
	}
}

func logSectionError(page Page, section string, err error) {
	logger.Warn("%s page: %s section failed: %v", page, section, err)
}
