package globals

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

func TestXlatLogLevel(t *testing.T) {
	tests := []struct {
		strLevel string
		logLevel log.Level
	}{
		{"DEBUG", log.DebugLevel},
		{"info", log.InfoLevel},
		{"WARN", log.WarnLevel},
		{"TRACE", log.TraceLevel},
		{"ERROR", log.ErrorLevel},
		{"ANYTHING-ELSE", log.FatalLevel},
	}
	for _, lvlTest := range tests {
		if xlatLogLevel(lvlTest.strLevel) != lvlTest.logLevel {
			t.FailNow()
		}
	}
}

func TestFileLogging(t *testing.T) {
	td, err := os.MkdirTemp("", "")
	if err != nil {
		t.FailNow()
	}
	defer os.RemoveAll(td)
	defer log.SetOutput(os.Stderr)
	logfile := filepath.Join(td, "logfile")
	ConfigureLogging("DEBUG", logfile)
	log.Debug("TEST")
	expectedText := "level=debug msg=TEST"
	content, err := os.ReadFile(logfile)
	if err != nil {
		t.FailNow()
	}
	if !strings.Contains(string(content), expectedText) {
		t.FailNow()
	}
}

// The request log line shortens CIDs and the health check is not logged
func TestEchoLogging(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	SetLogLevel("info")

	e := echo.New()
	e.Use(GetEchoLoggingFunc())
	e.GET("/*", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	for _, uri := range []string{"/health", "/ipfs/bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"} {
		req := httptest.NewRequest(http.MethodGet, uri, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}
	out := buf.String()
	if strings.Contains(out, "/health") {
		t.Errorf("health check should not be logged: %s", out)
	}
	if !strings.Contains(out, "GET:/ipfs/bafybeigdy ") {
		t.Errorf("expected shortened cid in: %s", out)
	}
}
