package controller

import (
	"raid_checker_backend/internal/service"
	"raid_checker_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PartyController struct {
	PartyService *service.PartyService
}

func NewPartyController(partyService *service.PartyService) *PartyController {
	return &PartyController{PartyService: partyService}
}

// GetAvailableCharacters godoc
// @Summary 可参与的角色
// @Description 装等达标且本周未在该副本组有进度的角色，按职责拆分
// @Tags 组队
// @Produce json
// @Param raidId path int true "副本ID"
// @Success 200 {object} util.Response{data=service.AvailableCharacters}
// @Failure 404 {object} util.Response
// @Router /api/party/available/{raidId} [get]
func (c *PartyController) GetAvailableCharacters(ctx *gin.Context) {
	raidID, ok := paramID(ctx, "raidId")
	if !ok {
		return
	}
	available, err := c.PartyService.GetAvailableCharacters(ctx.Request.Context(), raidID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, available)
}

// RecommendParties godoc
// @Summary 推荐队伍
// @Description 按装等贪心组满编队伍，同一账号的角色不会同队
// @Tags 组队
// @Produce json
// @Param raidId path int true "副本ID"
// @Success 200 {object} util.Response{data=service.Recommendation}
// @Failure 404 {object} util.Response
// @Router /api/party/recommend/{raidId} [get]
func (c *PartyController) RecommendParties(ctx *gin.Context) {
	raidID, ok := paramID(ctx, "raidId")
	if !ok {
		return
	}
	rec, err := c.PartyService.RecommendParties(ctx.Request.Context(), raidID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, rec)
}

// RecommendAll godoc
// @Summary 全部副本推荐
// @Description 只返回至少能组出一队的副本
// @Tags 组队
// @Produce json
// @Success 200 {object} util.Response{data=[]service.Recommendation}
// @Router /api/party/recommend/all [get]
func (c *PartyController) RecommendAll(ctx *gin.Context) {
	recs, err := c.PartyService.RecommendAll(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, recs)
}

// swagger:model ManualPartyRequest
type ManualPartyRequest struct {
	RaidID       uint   `json:"raidId"`
	CharacterIDs []uint `json:"characterIds" binding:"required"`
}

// CreateManualParty godoc
// @Summary 手动组队
// @Description 校验账号不重复并按职责拆分，不要求满编
// @Tags 组队
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ManualPartyRequest true "角色ID列表"
// @Success 200 {object} util.Response{data=service.Party}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "同一账号的角色"
// @Router /api/party/manual [post]
func (c *PartyController) CreateManualParty(ctx *gin.Context) {
	var req ManualPartyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	party, err := c.PartyService.CreateManualParty(ctx.Request.Context(), req.RaidID, req.CharacterIDs)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, party)
}

// swagger:model CompletePartyRequest
type CompletePartyRequest struct {
	RaidID       uint   `json:"raidId" binding:"required"`
	CharacterIDs []uint `json:"characterIds" binding:"required"`
	ExtraReward  bool   `json:"extraReward"`
}

// CompleteParty godoc
// @Summary 队伍完成副本
// @Description 所有成员的关卡在同一事务内完成，任一失败则全部回滚
// @Tags 组队
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CompletePartyRequest true "队伍"
// @Success 201 {object} util.Response{data=model.PartyCompletion}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/party/complete [post]
func (c *PartyController) CompleteParty(ctx *gin.Context) {
	var req CompletePartyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	party, err := c.PartyService.CompleteParty(ctx.Request.Context(), req.RaidID, req.CharacterIDs, req.ExtraReward)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, party)
}

// CancelPartyCompletion godoc
// @Summary 取消队伍完成
// @Description 撤销该队伍完成的关卡并为每个成员重算金币
// @Tags 组队
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "队伍完成记录ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/party/complete/{id} [delete]
func (c *PartyController) CancelPartyCompletion(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.PartyService.CancelPartyCompletion(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// ListCompletedParties godoc
// @Summary 本周完成的队伍
// @Description 指定 raidId 时返回该副本的列表，否则按副本组和难度分组返回全部
// @Tags 组队
// @Produce json
// @Param raidId query int false "副本ID"
// @Success 200 {object} util.Response{data=[]service.CompletedPartyGroup}
// @Failure 404 {object} util.Response
// @Router /api/party/completed [get]
func (c *PartyController) ListCompletedParties(ctx *gin.Context) {
	raw := ctx.Query("raidId")
	if raw == "" {
		groups, err := c.PartyService.ListAllCompletedParties(ctx.Request.Context())
		if err != nil {
			util.RespondError(ctx, err)
			return
		}
		util.Success(ctx, groups)
		return
	}

	raidID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid raidId")
		return
	}
	parties, err := c.PartyService.ListCompletedParties(ctx.Request.Context(), uint(raidID))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, parties)
}
