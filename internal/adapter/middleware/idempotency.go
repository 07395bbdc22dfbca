package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestAt      = "X-Request-At"

	// an in-flight reservation expires on its own if the process dies
	provisionalLockTTL = 60 * time.Second
	maxClockSkew       = 10 * time.Minute
	storeTimeout       = 2 * time.Second
)

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// Idempotency replays the stored response when a caller repeats a mutating
// request with the same Idempotency-Key and body. It must run after Auth.
// Server errors are not stored, so the client may retry them.
func Idempotency(rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) echo.MiddlewareFunc {
	store := replayStore{rdb: rdb}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			callerID := CallerID(c)
			if callerID == "" {
				return errorJSON(c, http.StatusUnauthorized, "unauthenticated")
			}
			rr, err := readReplayHeaders(req.Header, time.Now().UTC())
			if err != nil {
				return errorJSON(c, http.StatusBadRequest, err.Error())
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)

			key := storageKey(req.Method, c.Path(), callerID, rr.Key)
			log := log.WithFields(logrus.Fields{"key": key, "user_id": callerID})
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			entry := idempEntry{
				InProgress:  true,
				BodySHA256:  hash,
				RequestID:   rr.Key,
				RequestAtMS: rr.At.UnixMilli(),
				CreatedAt:   time.Now().UTC(),
			}
			ok, err := store.reserve(ctx, key, entry)
			if err != nil {
				log.WithError(err).Error("idempotency store unavailable")
				return errorJSON(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !ok {
				cur, err := store.load(ctx, key)
				if err != nil {
					log.WithError(err).Warn("load idempotency entry")
				}
				switch {
				case cur.BodySHA256 != "" && cur.BodySHA256 != hash:
					return errorJSON(c, http.StatusConflict, HeaderIdempotencyKey+" reused with different body")
				case cur.replayable():
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return errorJSON(c, http.StatusConflict, "request is already in progress")
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be gone; use a fresh one
			wctx, wcancel := context.WithTimeout(context.Background(), storeTimeout)
			defer wcancel()
			if rec.code >= http.StatusInternalServerError {
				if err := store.release(wctx, key); err != nil {
					log.WithError(err).Warn("release idempotency key")
				}
				return nil
			}
			entry.InProgress = false
			entry.Code = rec.code
			entry.Body = rec.buf.Bytes()
			entry.CreatedAt = time.Now().UTC()
			if err := store.save(wctx, key, entry, ttl); err != nil {
				log.WithError(err).Warn("save idempotency entry")
			}
			return nil
		}
	}
}
