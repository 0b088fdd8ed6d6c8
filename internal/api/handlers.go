package api

import (
	"context"
	"errors"
	"time"

	apperrors "jobboard-workers/internal/common/errors"
	applytojob "jobboard-workers/internal/workers/application/apply-to-job"
	getseekerstats "jobboard-workers/internal/workers/application/get-seeker-stats"
	listapplications "jobboard-workers/internal/workers/application/list-applications"
	listnotifications "jobboard-workers/internal/workers/notification/list-notifications"
	marknotificationread "jobboard-workers/internal/workers/notification/mark-notification-read"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) applyToJob(c *fiber.Ctx) error {
	var output *applytojob.Output
	err := s.observe(c, "apply", func(ctx context.Context) (err error) {
		output, err = s.deps.Apply.Execute(ctx, &applytojob.Input{JobID: c.Params("id"), Caller: callerOf(c)})
		return err
	})
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if output.AlreadyApplied {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(output)
}

func (s *Server) listApplications(c *fiber.Ctx) error {
	var output *listapplications.Output
	err := s.observe(c, "list_applications", func(ctx context.Context) (err error) {
		output, err = s.deps.Applications.Execute(ctx, &listapplications.Input{Caller: callerOf(c)})
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(output)
}

func (s *Server) seekerStats(c *fiber.Ctx) error {
	var output *getseekerstats.Output
	err := s.observe(c, "seeker_stats", func(ctx context.Context) (err error) {
		output, err = s.deps.Stats.Execute(ctx, &getseekerstats.Input{Caller: callerOf(c)})
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(output)
}

func (s *Server) listNotifications(c *fiber.Ctx) error {
	var output *listnotifications.Output
	err := s.observe(c, "list_notifications", func(ctx context.Context) (err error) {
		output, err = s.deps.Notifications.Execute(ctx, &listnotifications.Input{Caller: callerOf(c)})
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(output)
}

func (s *Server) markNotificationRead(c *fiber.Ctx) error {
	var output *marknotificationread.Output
	err := s.observe(c, "mark_notification_read", func(ctx context.Context) (err error) {
		output, err = s.deps.MarkRead.Execute(ctx, &marknotificationread.Input{
			NotificationID: c.Params("id"),
			Caller:         callerOf(c),
		})
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(output)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := s.deps.DB.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// observe runs one operation and records its outcome.
func (s *Server) observe(c *fiber.Ctx, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx := c.UserContext()

	err := fn(ctx)

	status := "ok"
	if err != nil {
		status = string(apperrors.CodeOf(err))
	}
	s.deps.Observability.RecordOperation(ctx, operation, status, time.Since(start))
	return err
}

// handleFiberError renders errors as {message, code}.
func (s *Server) handleFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message, "code": "HTTP_ERROR"})
	}

	stdErr, ok := apperrors.AsStandardError(err)
	if !ok {
		stdErr = apperrors.NewInternalError(err)
	}

	status := apperrors.HTTPStatus(stdErr.Code)
	body := fiber.Map{"message": stdErr.Message, "code": string(stdErr.Code)}
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.Path(),
			"code":  string(stdErr.Code),
			"error": err,
		})
		body["message"] = "Internal server error"
	} else if stdErr.Code == apperrors.ErrCodeUnauthorized && stdErr.Details != "" {
		body["details"] = stdErr.Details
	}

	return c.Status(status).JSON(body)
}
