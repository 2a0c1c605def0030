package globals

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aceeric/artcache/impl/helpers"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const msg = "echo server %s:%s status=%d latency=%s host=%s ip=%s"

// ConfigureLogging sets the logger level and, if 'logFile' is non-empty, directs
// log output to that file rather than the console. An unopenable log file is reported
// on stderr and logging stays on the console.
func ConfigureLogging(level string, logFile string) {
	log.SetLevel(xlatLogLevel(level))
	log.SetFormatter(&log.TextFormatter{})
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unable to open log file %q, logging to the console: %s\n", logFile, err)
			return
		}
		log.SetOutput(f)
	}
}

// SetLogLevel changes the level without touching the output. Used when the
// configuration file is reloaded.
func SetLogLevel(level string) {
	log.SetLevel(xlatLogLevel(level))
}

// xlatLogLevel translates the passed 'level' string to a logger const
func xlatLogLevel(level string) log.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	case "TRACE":
		return log.TraceLevel
	}
	return log.FatalLevel
}

// GetEchoLoggingFunc gets the server request logging function
func GetEchoLoggingFunc() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			if req.RequestURI == "/health" {
				return nil
			}

			flds := make([]interface{}, 6)
			flds[0] = req.Method
			flds[1] = helpers.ShortenCids(req.RequestURI)
			flds[2] = res.Status
			flds[3] = time.Since(start)
			flds[4] = req.Host
			flds[5] = c.RealIP()

			switch {
			case res.Status >= 500:
				log.Errorf(msg, flds...)
			case res.Status >= 400:
				log.Warnf(msg, flds...)
			default:
				log.Infof(msg, flds...)
			}
			return nil
		}
	}
}
