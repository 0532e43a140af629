package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamUint parses a numeric path parameter.
func ParamUint(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, fmt.Errorf("%s not found", name)
	}

	value, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return uint(value), nil
}

func GetProjectID(ctx *gin.Context) (uint, error) {
	return ParamUint(ctx, "project_id")
}

func GetTaskID(ctx *gin.Context) (uint, error) {
	return ParamUint(ctx, "task_id")
}

func GetUserID(ctx *gin.Context) (uint, error) {
	return ParamUint(ctx, "user_id")
}
