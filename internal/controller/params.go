package controller

import (
	"raid_checker_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// paramID 解析路径中的数字 ID，失败时直接写入 400
func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
