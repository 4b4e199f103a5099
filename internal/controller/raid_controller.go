package controller

import (
	"raid_checker_backend/internal/service"
	"raid_checker_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RaidController struct {
	RaidService *service.RaidService
}

func NewRaidController(raidService *service.RaidService) *RaidController {
	return &RaidController{RaidService: raidService}
}

// ListRaids godoc
// @Summary 副本列表
// @Description 按展示顺序返回全部副本及关卡
// @Tags 副本
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Raid}
// @Router /api/raids [get]
func (c *RaidController) ListRaids(ctx *gin.Context) {
	raids, err := c.RaidService.ListRaids()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, raids)
}

// GetRaid godoc
// @Summary 副本详情
// @Tags 副本
// @Produce json
// @Param id path int true "副本ID"
// @Success 200 {object} util.Response{data=model.Raid}
// @Failure 404 {object} util.Response
// @Router /api/raids/{id} [get]
func (c *RaidController) GetRaid(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	raid, err := c.RaidService.GetRaid(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, raid)
}

// ListAvailable godoc
// @Summary 可进入的副本
// @Description 返回装等不低于要求的副本
// @Tags 副本
// @Produce json
// @Param itemLevel query number true "装备等级"
// @Success 200 {object} util.Response{data=[]model.Raid}
// @Failure 400 {object} util.Response
// @Router /api/raids/available [get]
func (c *RaidController) ListAvailable(ctx *gin.Context) {
	itemLevel, err := strconv.ParseFloat(ctx.Query("itemLevel"), 64)
	if err != nil || itemLevel < 0 {
		util.BadRequest(ctx, "itemLevel is required")
		return
	}
	raids, err := c.RaidService.ListAvailable(itemLevel)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, raids)
}
