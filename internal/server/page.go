package server

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
	"github.com/mohammad-safakhou/postfeed/internal/dom"
	"github.com/mohammad-safakhou/postfeed/internal/logging"
	"github.com/mohammad-safakhou/postfeed/internal/pipeline"
)

// PageHandler serves the document and dispatches triggers to pipelines.
type PageHandler struct {
	doc         *dom.Document
	pipelines   map[string]pipeline.Pipeline
	waitTimeout time.Duration
	logger      logging.Logger
}

// NewPageHandler binds the handler to doc.
func NewPageHandler(doc *dom.Document, pipelines map[string]pipeline.Pipeline, waitTimeout time.Duration, logger logging.Logger) *PageHandler {
	return &PageHandler{doc: doc, pipelines: pipelines, waitTimeout: waitTimeout, logger: logger}
}

// Register mounts the page and API routes.
func (h *PageHandler) Register(e *echo.Echo) {
	e.GET("/", h.page)
	e.POST("/click/:pipeline", h.click)

	api := e.Group("/api")
	api.POST("/pipelines/:pipeline", h.trigger)
	api.GET("/posts", h.posts)
	api.DELETE("/posts", h.clearPosts)
	api.GET("/timer", h.timer)
}

type reportResponse struct {
	ID        string  `json:"id"`
	Pipeline  string  `json:"pipeline"`
	Settled   bool    `json:"settled"`
	Posts     int     `json:"posts"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Timer     string  `json:"timer,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type postsResponse struct {
	Count int    `json:"count"`
	HTML  string `json:"html"`
}

type timerResponse struct {
	Timer string `json:"timer"`
}

func toReportResponse(r pipeline.Report, settled bool) reportResponse {
	resp := reportResponse{
		ID:        r.ID,
		Pipeline:  r.Pipeline,
		Settled:   settled,
		Posts:     r.Posts,
		ElapsedMS: float64(r.Elapsed) / float64(time.Millisecond),
		Timer:     r.TimerText,
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

func (h *PageHandler) lookup(c echo.Context) (pipeline.Pipeline, error) {
	name := c.Param("pipeline")
	p, ok := h.pipelines[name]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, apperrors.UnknownPipelineError{Name: name}.Error())
	}
	return p, nil
}

// start runs p detached from the request so that a client disconnect does
// not cancel the posts request.
func (h *PageHandler) start(c echo.Context, p pipeline.Pipeline) *pipeline.Invocation {
	inv := p.Run(context.WithoutCancel(c.Request().Context()))
	h.logger.Debug("trigger", logging.String("pipeline", p.Name()), logging.String("invocation", inv.ID))
	return inv
}

func (h *PageHandler) await(c echo.Context, inv *pipeline.Invocation) (pipeline.Report, bool) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.waitTimeout)
	defer cancel()
	rep, err := inv.Wait(ctx)
	return rep, err == nil
}

func (h *PageHandler) page(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.doc.Render(&buf); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// click is the form target of the page buttons. It waits for the invocation
// to settle so the redirected page shows its posts.
func (h *PageHandler) click(c echo.Context) error {
	p, err := h.lookup(c)
	if err != nil {
		return err
	}
	inv := h.start(c, p)
	if _, ok := h.await(c, inv); !ok {
		h.logger.Warn("invocation still pending at redirect", logging.String("invocation", inv.ID))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) trigger(c echo.Context) error {
	p, err := h.lookup(c)
	if err != nil {
		return err
	}
	wait := false
	if raw := c.QueryParam("wait"); raw != "" {
		wait, err = strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wait must be a boolean")
		}
	}
	inv := h.start(c, p)
	if !wait {
		return c.JSON(http.StatusAccepted, reportResponse{ID: inv.ID, Pipeline: inv.Pipeline})
	}
	rep, settled := h.await(c, inv)
	if !settled {
		return c.JSON(http.StatusAccepted, reportResponse{ID: inv.ID, Pipeline: inv.Pipeline})
	}
	return c.JSON(http.StatusOK, toReportResponse(rep, true))
}

func (h *PageHandler) posts(c echo.Context) error {
	inner, err := h.doc.InnerHTML(dom.ContainerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	count, err := h.doc.Count(dom.ContainerID, "article")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, postsResponse{Count: count, HTML: inner})
}

func (h *PageHandler) clearPosts(c echo.Context) error {
	if err := h.doc.Clear(dom.ContainerID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PageHandler) timer(c echo.Context) error {
	text, err := h.doc.Text(dom.TimerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, timerResponse{Timer: text})
}
