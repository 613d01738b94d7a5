package cache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
)

// HeaderCache reports whether a response came from the cache.
const HeaderCache = "X-Cache"

// CacheableMethods are the request methods whose responses may be cached.
var CacheableMethods = []string{http.MethodGet, http.MethodHead}

// CacheableStatus reports whether a response with status may be cached.
// 503 is the answer of an unhealthy probe, not a failure of the handler.
func CacheableStatus(status int) bool {
	return status == http.StatusOK || status == http.StatusServiceUnavailable
}

// response is the cached form of an HTTP response.
type response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// Handler serves repeated requests from c for policy's TTL.
//
// Only CacheableMethods are cached, and only responses passing
// CacheableStatus are stored. A nil keyer uses RequestKeyer.
func Handler(c Cache, keyer Keyer, policy Policy, next http.Handler) http.Handler {
	if c == nil || !policy.Enabled() {
		return next
	}
	if keyer == nil {
		keyer = RequestKeyer{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !slices.Contains(CacheableMethods, r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		key, err := keyer.Key(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if data, ok := c.Get(r.Context(), key); ok {
			var cached response
			if err := json.Unmarshal(data, &cached); err == nil {
				writeResponse(w, cached, "HIT")
				return
			}
			_ = c.Delete(r.Context(), key)
		}

		rec := &recorder{header: make(http.Header), status: http.StatusOK}
		next.ServeHTTP(rec, r)

		resp := response{
			Status:      rec.status,
			ContentType: rec.header.Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if CacheableStatus(resp.Status) {
			if data, err := json.Marshal(resp); err == nil {
				_ = c.Set(r.Context(), key, data, policy.EffectiveTTL(0))
			}
		}

		for k, v := range rec.header {
			w.Header()[k] = v
		}
		writeResponse(w, resp, "MISS")
	})
}

func writeResponse(w http.ResponseWriter, resp response, state string) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set(HeaderCache, state)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// recorder buffers a handler's response so it can be stored before sending.
type recorder struct {
	header      http.Header
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
}

func (r *recorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(p)
}
