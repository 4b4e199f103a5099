package controller

import (
	"raid_checker_backend/internal/service"
	"raid_checker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CompletionController 周清单与关卡完成
type CompletionController struct {
	LedgerService *service.LedgerService
}

func NewCompletionController(ledgerService *service.LedgerService) *CompletionController {
	return &CompletionController{LedgerService: ledgerService}
}

// GetChecklist godoc
// @Summary 本周清单
// @Description 返回角色本周的副本完成记录，不会自动创建
// @Tags 周清单
// @Produce json
// @Param id path int true "角色ID"
// @Success 200 {object} util.Response{data=[]model.WeeklyCompletion}
// @Failure 404 {object} util.Response
// @Router /api/completions/character/{id} [get]
func (c *CompletionController) GetChecklist(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	list, err := c.LedgerService.GetChecklist(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// EnsureChecklist godoc
// @Summary 生成本周清单
// @Description 为角色装等可进入的每个副本补齐本周记录，重复调用不会产生重复行
// @Tags 周清单
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "角色ID"
// @Success 200 {object} util.Response{data=[]model.WeeklyCompletion}
// @Failure 404 {object} util.Response
// @Router /api/completions/character/{id}/checklist [post]
func (c *CompletionController) EnsureChecklist(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	list, err := c.LedgerService.EnsureChecklist(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// swagger:model CompleteGateRequest
type CompleteGateRequest struct {
	ExtraReward bool `json:"extraReward"`
}

// CompleteGate godoc
// @Summary 完成关卡
// @Description 标记关卡完成并按每周三组上限重新计算金币
// @Tags 周清单
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "关卡记录ID"
// @Param body body CompleteGateRequest false "是否购买额外奖励"
// @Success 200 {object} util.Response{data=model.GateCompletion}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "已完成或与其他难度冲突"
// @Router /api/completions/gate/{id}/complete [post]
func (c *CompletionController) CompleteGate(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req CompleteGateRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	gate, err := c.LedgerService.CompleteGate(ctx.Request.Context(), id, req.ExtraReward)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gate)
}

// UncompleteGate godoc
// @Summary 取消关卡完成
// @Description 取消后按完成顺序重算金币，被挤出上限的副本可能重新获得金币
// @Tags 周清单
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "关卡记录ID"
// @Success 200 {object} util.Response{data=model.GateCompletion}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "尚未完成"
// @Router /api/completions/gate/{id}/uncomplete [post]
func (c *CompletionController) UncompleteGate(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	gate, err := c.LedgerService.UncompleteGate(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gate)
}

// GetTotalGold godoc
// @Summary 本周金币
// @Tags 周清单
// @Produce json
// @Param id path int true "角色ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/completions/character/{id}/total-gold [get]
func (c *CompletionController) GetTotalGold(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	total, err := c.LedgerService.GetTotalGold(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"characterId": id, "totalGold": total})
}

// GetResetInfo godoc
// @Summary 周重置信息
// @Description 当前周标识、下次重置时间和剩余时间
// @Tags 周清单
// @Produce json
// @Success 200 {object} util.Response{data=service.ResetInfo}
// @Router /api/completions/reset-info [get]
func (c *CompletionController) GetResetInfo(ctx *gin.Context) {
	util.Success(ctx, c.LedgerService.GetResetInfo())
}
