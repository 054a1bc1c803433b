package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality   int
	MinLength int
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// bufferedWriter holds the whole body so the encoding can be chosen once
// the handler has finished. API payloads are bounded, a generated quiz
// being the largest.
type bufferedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

// Written reports false until the buffer is flushed so gin keeps treating
// the response as open.
func (w *bufferedWriter) Written() bool { return false }

func (w *bufferedWriter) Size() int { return w.buf.Len() }

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

// BrotliWithConfig compresses responses of at least MinLength bytes for
// clients that accept br. Responses that already carry a Content-Encoding
// are forwarded untouched.
func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		original := c.Writer
		bw := &bufferedWriter{ResponseWriter: original}
		c.Writer = bw
		defer func() { c.Writer = original }()

		c.Next()

		h := original.Header()
		h.Add("Vary", "Accept-Encoding")
		body := bw.buf.Bytes()

		if len(body) < cfg.MinLength || h.Get("Content-Encoding") != "" || c.Request.Method == http.MethodHead {
			if len(body) > 0 {
				_, _ = original.Write(body)
			} else {
				original.WriteHeaderNow()
			}
			return
		}

		var out bytes.Buffer
		zw := brotli.NewWriterLevel(&out, cfg.Quality)
		if _, err := zw.Write(body); err != nil {
			_ = c.Error(err)
			_, _ = original.Write(body)
			return
		}
		if err := zw.Close(); err != nil {
			_ = c.Error(err)
			_, _ = original.Write(body)
			return
		}

		h.Set("Content-Encoding", "br")
		h.Set("Content-Length", strconv.Itoa(out.Len()))
		_, _ = original.Write(out.Bytes())
	}
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, q, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if !strings.EqualFold(strings.TrimSpace(name), "br") {
			continue
		}
		return strings.TrimSpace(q) != "q=0"
	}
	return false
}
