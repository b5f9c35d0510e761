package controllers

import (
	"org-registry-backend/config"
	"org-registry-backend/imports/services"
	"org-registry-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TestFlagsController exposes the failure-injection points and cache
// statistics used by the test harness. Arming is one-shot: a fired fault
// disarms itself.
type TestFlagsController struct {
	Faults *services.FaultInjector
	Cache  *utils.QueryCache
}

type armFaultRequest struct {
	Fault string `json:"fault"`
}

func (tc *TestFlagsController) ArmFault(c *fiber.Ctx) error {
	var req armFaultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	fault, ok := services.ParseFault(req.Fault)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown fault",
			"known":   []string{services.FaultUpload.String(), services.FaultMidLogic.String(), services.FaultDatabase.String()},
		})
	}

	tc.Faults.Arm(fault)
	config.Logger.Warn("Failure injection armed", zap.String("fault", fault.String()))
	return c.JSON(fiber.Map{"message": "Fault armed", "fault": fault.String()})
}

func (tc *TestFlagsController) ResetFaults(c *fiber.Ctx) error {
	tc.Faults.Reset()
	config.Logger.Info("Failure injection reset")
	return c.JSON(fiber.Map{"message": "All faults disarmed"})
}

func (tc *TestFlagsController) FaultStatus(c *fiber.Ctx) error {
	if fault, ok := tc.Faults.Armed(); ok {
		return c.JSON(fiber.Map{"armed": true, "fault": fault.String()})
	}
	return c.JSON(fiber.Map{"armed": false})
}

type cacheStatsRequest struct {
	LogStats bool `json:"log_stats"`
}

func (tc *TestFlagsController) SetCacheStatsLogging(c *fiber.Ctx) error {
	var req cacheStatsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	tc.Cache.SetStatsLogging(req.LogStats)
	return c.JSON(fiber.Map{"message": "Cache stats logging updated", "log_stats": req.LogStats})
}

func (tc *TestFlagsController) CacheStats(c *fiber.Ctx) error {
	hits, misses := tc.Cache.Stats()
	return c.JSON(fiber.Map{
		"hits":      hits,
		"misses":    misses,
		"log_stats": tc.Cache.StatsLoggingEnabled(),
	})
}
