package handler

import (
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"github.com/assetkit/assetindexer/types"
)

var intervals = map[string]time.Duration{
	"1h": time.Hour,
	"1d": 24 * time.Hour,
}

func getAssetParam(c *fiber.Ctx) (string, error) {
	value := c.Params("asset")
	if !common.IsHexAddress(value) {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid asset address: "+value)
	}
	return types.AddressID(common.HexToAddress(value)), nil
}

func getIntervalQuery(c *fiber.Ctx) (string, time.Duration, error) {
	value := c.Query("interval", "1h")
	interval, ok := intervals[value]
	if !ok {
		return "", 0, fiber.NewError(fiber.StatusBadRequest, "interval must be one of 1h, 1d")
	}
	return value, interval, nil
}

// getTimeQuery parses a unix seconds query parameter. An absent parameter
// yields the zero time.
func getTimeQuery(c *fiber.Ctx, key string) (time.Time, error) {
	value := c.Query(key)
	if value == "" {
		return time.Time{}, nil
	}
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil || sec < 0 {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, key+" must be a unix timestamp")
	}
	return time.Unix(sec, 0).UTC(), nil
}
