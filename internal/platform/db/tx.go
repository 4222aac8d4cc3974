package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type contextKey string

const DBTxKey contextKey = "db_tx"

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxFromContext returns the transaction bound to ctx, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// ContextWithTx binds tx to ctx so repositories run their statements on it.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, DBTxKey, tx)
}

// WithTx runs fn inside a transaction. When ctx already carries one, fn joins
// it and the outer owner decides the outcome.
func WithTx(ctx context.Context, b Beginner, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	if b == nil {
		return fmt.Errorf("no database connection in context")
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ContextWithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Transactor binds WithTx to a connection so services can take it as a
// dependency.
type Transactor struct {
	b Beginner
}

func NewTransactor(b Beginner) *Transactor {
	return &Transactor{b: b}
}

func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, t.b, fn)
}

// bufferedWriter holds a handler's response until the request transaction
// has committed, so a failed commit can still become an error response.
type bufferedWriter struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedWriter(base http.Header) *bufferedWriter {
	return &bufferedWriter{header: base.Clone()}
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *bufferedWriter) flushTo(dst http.ResponseWriter) error {
	h := dst.Header()
	for k := range h {
		delete(h, k)
	}
	for k, v := range w.header {
		h[k] = v
	}
	if w.status == 0 {
		return nil
	}
	dst.WriteHeader(w.status)
	_, err := dst.Write(w.body.Bytes())
	return err
}

// discard forgets whatever the handler wrote so the error handler can
// answer instead.
func discard(res *echo.Response, orig http.ResponseWriter) {
	res.Writer = orig
	res.Committed = false
	res.Status = http.StatusOK
	res.Size = 0
}

// TxMiddleware wraps every mutating request in one transaction. The response
// is buffered and only sent once the transaction has committed; a handler
// error, an error status, a panic or a failed commit all roll back.
func TxMiddleware(b Beginner, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			ctx := c.Request().Context()
			tx, err := b.Begin(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			c.SetRequest(c.Request().WithContext(ContextWithTx(ctx, tx)))

			res := c.Response()
			orig := res.Writer
			buf := newBufferedWriter(orig.Header())
			res.Writer = buf

			finished := false
			rollback := func() {
				if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
					logger.Error().Err(rerr).Msg("rollback request transaction")
				}
			}
			defer func() {
				if !finished {
					// panicking: release the connection, let Recovery answer
					rollback()
					discard(res, orig)
				}
			}()

			herr := next(c)
			finished = true
			if herr != nil || res.Status >= http.StatusBadRequest {
				rollback()
				if herr != nil && buf.status == 0 {
					discard(res, orig)
					return herr
				}
				res.Writer = orig
				if ferr := buf.flushTo(orig); ferr != nil {
					logger.Warn().Err(ferr).Msg("write response")
				}
				return herr
			}
			if err := tx.Commit(ctx); err != nil {
				rid, _ := c.Get("request_id").(string)
				logger.Error().Err(err).Str("request_id", rid).Msg("commit request transaction")
				discard(res, orig)
				return echo.NewHTTPError(http.StatusInternalServerError, "commit failed")
			}
			res.Writer = orig
			if ferr := buf.flushTo(orig); ferr != nil {
				logger.Warn().Err(ferr).Msg("write response")
			}
			return nil
		}
	}
}
