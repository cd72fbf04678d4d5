package dubber

import (
	"context"
	_ "embed"
	"html/template"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/dubbing/dubber/secrets"
	"github.com/lfedgeai/dubbing/dubber/storage"
	"github.com/lfedgeai/dubbing/dubber/synth"
	"github.com/lfedgeai/dubbing/pkg/common"
)

var (
	logLevel = log.InfoLevel
)

//go:embed web/index.html
var indexHTML string

type Dubber struct {
	cfg    *DubberConfig
	engine *gin.Engine
	srv    *http.Server
	mu     sync.Mutex

	pipeline *Pipeline
}

func NewDubber(cfg *DubberConfig, pipeline *Pipeline) *Dubber {
	return &Dubber{
		cfg:      cfg,
		pipeline: pipeline,
	}
}

// NewPipelineFromConfig wires storage, credentials and the speech client
// described by cfg.
func NewPipelineFromConfig(ctx context.Context, cfg *DubberConfig) (*Pipeline, error) {
	var store storage.Store
	if cfg.StorageDir != "" {
		log.Infof("Using local storage in %s", cfg.StorageDir)
		store = storage.NewFileStore(cfg.StorageDir)
	} else {
		s3Store, err := storage.NewS3Store(ctx, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		store = s3Store
	}

	creds := secrets.NewEnvProvider()
	if creds == nil {
		log.Infof("Reading speech credentials from secret %s in %s", cfg.SecretName, cfg.SecretRegion)
		smProvider, err := secrets.NewSecretsManagerProvider(ctx, cfg.SecretName,
			cfg.SecretRegion, cfg.RoleARN)
		if err != nil {
			return nil, err
		}
		creds = smProvider
	}

	client := synth.NewClient(creds, &http.Client{Timeout: 2 * time.Minute})
	return NewPipeline(store, client), nil
}

func (d *Dubber) Initialize() {
	if d.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	d.engine = gin.New()
	d.engine.Use(gin.Recovery())
	d.engine.Use(requestLogger())
	d.engine.Use(cors.New(corsConfig(d.cfg.AllowOrigins)))
	d.engine.MaxMultipartMemory = common.MaxUploadSize
	d.engine.SetHTMLTemplate(template.Must(template.New("index.html").Parse(indexHTML)))
	d.addRoutes()
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		// echo the request origin; "*" is refused with credentials
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infof("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	}
}

func (d *Dubber) addRoutes() {
	d.engine.GET("/", d.handleIndex)
	d.engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	d.engine.POST("/upload-csv/", d.handleUploadCSV)
}

// Handler exposes the router; Initialize must have been called.
func (d *Dubber) Handler() http.Handler {
	return d.engine
}

func (d *Dubber) StartServer() error {
	log.Infof("Starting dubber on %s:%s", d.cfg.Addr, d.cfg.Port)
	if d.cfg.PublicHost != "" {
		log.Infof("Public address: http://%s", d.cfg.PublicHost)
	}
	srv := &http.Server{
		Addr:    d.cfg.Addr + ":" + d.cfg.Port,
		Handler: d.engine,
	}
	d.mu.Lock()
	d.srv = srv
	d.mu.Unlock()
	if err := srv.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			log.Errorf("Error: %v", err)
			return err
		}
		log.Info("Server closed")
	}
	return nil
}

func (d *Dubber) Stop() {
	log.Debugf("Stopping dubber")
	d.mu.Lock()
	srv := d.srv
	d.mu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func SetLogLevel(lvl log.Level) {
	logLevel = lvl
	log.SetLevel(logLevel)
}

func init() {
	log.SetLevel(logLevel)
}
