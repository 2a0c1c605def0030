package subcmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aceeric/artcache/api"
	"github.com/aceeric/artcache/impl"
	"github.com/aceeric/artcache/impl/config"
	"github.com/aceeric/artcache/impl/globals"
	"github.com/aceeric/artcache/impl/metrics"
	"github.com/aceeric/artcache/impl/preload"
	"github.com/aceeric/artcache/impl/watch"

	"github.com/labstack/echo/v4"
	middleware "github.com/oapi-codegen/echo-middleware"
	log "github.com/sirupsen/logrus"
)

const startupBanner = `----------------------------------------------------------------------
artcache: caching artwork server with IPFS gateway fallback
Version: %s, build date: %s
Started: %s (port %d)
Site: %s (ttl %s)
Running as (uid:gid) %d:%d
Process id: %d
Command line: %v
----------------------------------------------------------------------
`

// listener will be initialized with the Echo listener once the Echo server
// is started.
var listener net.Listener

// Serve runs the server, blocking until stopped via the command REST API.
func Serve(buildVer string, buildDtm string) error {
	c, err := newComponents()
	if err != nil {
		return err
	}
	var warmIds []string
	if config.GetPreloadArt() != "" {
		if warmIds, err = preload.LoadIds(config.GetPreloadArt()); err != nil {
			return fmt.Errorf("error reading the artworks to preload: %s", err)
		}
	}
	swagger, err := api.GetSwagger()
	if err != nil {
		return fmt.Errorf("error loading swagger spec: %s", err)
	}

	// clear out the servers array in the swagger spec, that skips validating
	// that server names match. We don't know how this thing will be run.
	swagger.Servers = nil

	shutdownCh := make(chan bool, 1)
	artCache := impl.NewArtCache(c.cache, c.resolver, config.GetFormat(), shutdownCh)

	// Echo router
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Use our validation middleware to check all requests against the OpenAPI schema.
	e.Use(middleware.OapiRequestValidator(swagger))

	api.RegisterHandlers(e, artCache)

	e.Use(globals.GetEchoLoggingFunc())

	metrics.InitMetrics(int(config.GetMetrics()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.GetWatchConfig() && config.GetConfigFile() != "" {
		w, err := watch.New(config.GetConfigFile(), watch.DefaultSettle, reloader(c))
		if err != nil {
			return fmt.Errorf("error watching the config file: %s", err)
		}
		go w.Run(ctx)
	}

	// warming is best effort so the server does not wait for it
	go preload.Warm(ctx, c.cache, c.resolver, warmIds, config.GetFormat(), int(config.GetWarmConfig().Concurrency))

	fmt.Fprintf(os.Stderr, startupBanner, buildVer, buildDtm, time.Unix(0, time.Now().UnixNano()), config.GetPort(),
		config.GetSiteUrl(), config.GetTtl(), os.Getuid(), os.Getgid(), os.Getpid(), strings.Join(os.Args, " "))

	go health()

	// start the API server
	go func() {
		addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(int(config.GetPort())))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server. error:", err)
		}
	}()
	err = waitForEchoListener(e)
	if err != nil {
		return errors.New("timed out waiting for Echo listener")
	}
	listener = e.Listener
	log.Info("server is running")

	<-shutdownCh
	log.Infof("received stop command - stopping")
	cancel()
	e.Server.Shutdown(context.Background())
	log.Infof("stopped")
	return nil
}

// reloader returns the function that runs when the config file changes. Only the log
// level takes effect, and the cache and manifest memo are cleared so upstream changes
// are picked up. The site, image base, data paths, ports and timeouts need a restart.
func reloader(c *components) func() {
	return func() {
		if err := config.Reload(); err != nil {
			log.Errorf("error reloading the configuration, keeping the current configuration: %s", err)
			return
		}
		globals.SetLogLevel(config.GetLogLevel())
		c.cache.Clear()
		c.resolver.Manifests().Reset()
		log.Info("configuration reloaded, cache cleared")
	}
}

// health handles the /health endpoint always on plain HTTP and is not part of the
// server itself, hence a separate goroutine running an http server.
func health() {
	if config.GetHealth() != 0 {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		http.ListenAndServe(fmt.Sprintf(":%d", config.GetHealth()), mux)
	}
}

// waitForEchoListener waits for the Listener in the Echo server to be initialized. This
// is only used in unit testing so that the unit tests can start the server on ":0" and let
// the http package assign a random port number. Supports unit testing.
func waitForEchoListener(e *echo.Echo) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if e.ListenerAddr() != nil {
				return nil
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// GetListener supports unit testing.
func GetListener() net.Listener {
	return listener
}

// InitListener supports unit testing.
func InitListener() {
	listener = nil
}
