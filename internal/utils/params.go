package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

func IDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return uint(id), nil
}

func PageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(ctx.DefaultQuery("per_page", "20"))

	return page, perPage
}
