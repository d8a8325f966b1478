package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scod/di"
	apperrors "github.com/kbukum/scod/errors"
)

// OperationsConfig tunes the routes installed by MountOperations.
type OperationsConfig struct {
	// MaxBodyBytes caps the request body; zero means no limit.
	MaxBodyBytes int64
}

// MountOperations exposes a resolved operation set:
//
//	GET  /operations        describes every operation of app
//	POST /operations/:name  invokes ops[name] with the JSON body as input
//
// app may be nil, in which case the listing only carries the keys of ops.
func MountOperations(r gin.IRoutes, app *di.Application, ops di.Operations, cfg OperationsConfig) {
	r.GET("/operations", func(c *gin.Context) {
		if app == nil {
			infos := make([]di.OperationInfo, 0, len(ops))
			for _, key := range ops.Keys() {
				infos = append(infos, di.OperationInfo{Key: key})
			}
			RespondOK(c, infos)
			return
		}
		RespondOK(c, app.Describe())
	})

	r.POST("/operations/:name", func(c *gin.Context) {
		input, err := readInput(c, cfg.MaxBodyBytes)
		if err != nil {
			_ = c.Error(err)
			RespondWithError(c, err)
			return
		}
		out, err := ops.Invoke(c.Request.Context(), c.Param("name"), input)
		if err != nil {
			_ = c.Error(err)
			RespondWithError(c, err)
			return
		}
		RespondOK(c, out)
	})
}

// MountOperations installs the operation routes on the server's engine.
func (s *Server) MountOperations(app *di.Application, ops di.Operations) {
	MountOperations(s.engine, app, ops, OperationsConfig{MaxBodyBytes: s.config.MaxBodyBytes})
	s.log.Info("Operations mounted", map[string]interface{}{
		"operations": ops.Keys(),
	})
}

// readInput decodes the request body as a JSON object. An empty body or a
// literal null yields nil input.
func readInput(c *gin.Context, limit int64) (map[string]any, error) {
	body := c.Request.Body
	if limit > 0 {
		body = http.MaxBytesReader(c.Writer, body, limit)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "Request body is too large.", http.StatusRequestEntityTooLarge).
				WithDetail("limit", tooLarge.Limit)
		}
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "Request body could not be read.", http.StatusBadRequest).
			WithCause(err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "Request body must be a JSON object.", http.StatusBadRequest).
			WithCause(err)
	}
	return input, nil
}
