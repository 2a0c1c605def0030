package artwork

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/aceeric/artcache/impl/fetchcache"
	"github.com/aceeric/artcache/impl/helpers"

	"github.com/opencontainers/go-digest"
)

// Source identifies the delivery tier that served an image
type Source string

const (
	SourcePrimary Source = "primary"
	SourceGateway Source = "gateway"
)

// Image is a loaded artwork image. It is owned by the caller.
type Image struct {
	ArtworkId   string
	Url         string
	Source      Source
	ContentType string
	Data        []byte
	Digest      digest.Digest
}

// ImageLoader makes one attempt to load the image at the passed URL
type ImageLoader interface {
	LoadImage(ctx context.Context, url string) (*Image, error)
}

// HTTPImageLoader loads images over HTTP. Relative URLs resolve against the site base URL.
type HTTPImageLoader struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPImageLoader returns a loader for the passed site base URL. A nil client means
// http.DefaultClient.
func NewHTTPImageLoader(siteUrl string, client *http.Client) (*HTTPImageLoader, error) {
	base, err := helpers.ParseBase(siteUrl)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPImageLoader{base: base, client: client}, nil
}

// LoadImage implements ImageLoader. The load succeeds only if the server answers with a
// success status and the body is an image - going by the declared content type, or by
// sniffing the body if the server declared nothing more specific than octet-stream.
func (l *HTTPImageLoader) LoadImage(ctx context.Context, ref string) (*Image, error) {
	u, err := helpers.ResolveURL(l.base, ref)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/webp,image/*")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &fetchcache.StatusError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	contentType := mediaType(resp.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("not an image: %s has content type %q", u, contentType)
	}
	return &Image{
		Url:         u,
		ContentType: contentType,
		Data:        data,
		Digest:      helpers.DigestOf(data),
	}, nil
}

// mediaType strips parameters, e.g. "text/html; charset=utf-8" -> "text/html"
func mediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return ""
}
