package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func malformedEnvelope(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("malformed_envelope").
		WithDetail(err.Error())

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// triggerFailed answers with 502 so the push subscription redelivers under its own retry policy.
func triggerFailed(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(fiber.StatusBadGateway).
		WithInstance(c.Path()).
		WithType("trigger_failed").
		WithDetail(err.Error())

	return c.Status(fiber.StatusBadGateway).JSON(problem)
}
