package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"microlend/internal/usecase/scheduler"
)

// JobRunner triggers scheduled jobs on demand.
type JobRunner interface {
	Names() []string
	RunNow(ctx context.Context, name string) (scheduler.Result, error)
}

type JobHandler struct {
	jobs JobRunner
	log  logrus.FieldLogger
}

func NewJobHandler(jobs JobRunner, log logrus.FieldLogger) *JobHandler {
	return &JobHandler{jobs: jobs, log: log}
}

func (h *JobHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"jobs": h.jobs.Names()})
}

func (h *JobHandler) Run(c echo.Context) error {
	name := c.Param("name")
	res, err := h.jobs.RunNow(c.Request().Context(), name)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentJobResult(name, res))
}
