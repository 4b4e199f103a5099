package controller

import (
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/service"
	"raid_checker_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

type CharacterController struct {
	CharacterService *service.CharacterService
}

func NewCharacterController(characterService *service.CharacterService) *CharacterController {
	return &CharacterController{CharacterService: characterService}
}

// ListByAccount godoc
// @Summary 账号角色列表
// @Description 按金币优先级返回账号下的角色
// @Tags 角色
// @Produce json
// @Security ApiKeyAuth
// @Param accountId path int true "账号ID"
// @Success 200 {object} util.Response{data=[]model.Character}
// @Failure 404 {object} util.Response
// @Router /api/accounts/{accountId}/characters [get]
func (c *CharacterController) ListByAccount(ctx *gin.Context) {
	accountID, ok := paramID(ctx, "accountId")
	if !ok {
		return
	}
	characters, err := c.CharacterService.ListByAccount(accountID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, characters)
}

// GetCharacter godoc
// @Summary 角色详情
// @Tags 角色
// @Produce json
// @Param id path int true "角色ID"
// @Success 200 {object} util.Response{data=model.Character}
// @Failure 404 {object} util.Response
// @Router /api/characters/{id} [get]
func (c *CharacterController) GetCharacter(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	character, err := c.CharacterService.GetCharacter(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, character)
}

// Search godoc
// @Summary 模糊搜索角色
// @Tags 角色
// @Produce json
// @Param q query string true "角色名"
// @Success 200 {object} util.Response{data=[]model.Character}
// @Failure 400 {object} util.Response
// @Router /api/characters/search [get]
func (c *CharacterController) Search(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Query("q"))
	if query == "" {
		util.BadRequest(ctx, "q is required")
		return
	}
	characters, err := c.CharacterService.Search(query)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, characters)
}

// swagger:model ImportCharacterRequest
type ImportCharacterRequest struct {
	CharacterName string `json:"characterName" binding:"required"`
	// AccountID 仅 master 可以为其他账号导入
	AccountID uint `json:"accountId"`
}

// ImportCharacter godoc
// @Summary 从官方API导入角色
// @Tags 角色
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ImportCharacterRequest true "角色名"
// @Success 201 {object} util.Response{data=model.Character}
// @Failure 404 {object} util.Response "角色不存在"
// @Failure 409 {object} util.Response "角色已登记"
// @Failure 502 {object} util.Response "官方API不可用"
// @Router /api/characters/import [post]
func (c *CharacterController) ImportCharacter(ctx *gin.Context) {
	claims := util.GetAccountFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ImportCharacterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	accountID := claims.AccountID
	if req.AccountID != 0 && req.AccountID != claims.AccountID {
		if claims.Role != model.Master {
			util.Forbidden(ctx)
			return
		}
		accountID = req.AccountID
	}

	character, err := c.CharacterService.ImportCharacter(ctx.Request.Context(), accountID, strings.TrimSpace(req.CharacterName))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, character)
}

// SyncCharacter godoc
// @Summary 同步角色信息
// @Description 从官方API刷新服务器、职业、装等和公会
// @Tags 角色
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "角色ID"
// @Success 200 {object} util.Response{data=model.Character}
// @Failure 403 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/characters/{id}/sync [post]
func (c *CharacterController) SyncCharacter(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetAccountFromContext(ctx)
	character, err := c.CharacterService.GetCharacter(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if claims == nil || (claims.Role != model.Master && character.AccountID != claims.AccountID) {
		util.Forbidden(ctx)
		return
	}

	character, err = c.CharacterService.SyncCharacter(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, character)
}

// swagger:model GoldPriorityRequest
type GoldPriorityRequest struct {
	GoldPriority int `json:"goldPriority" binding:"required"`
}

// UpdateGoldPriority godoc
// @Summary 修改金币优先级
// @Description 1-6 计入账号金币，7-10 不计入
// @Tags 角色
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "角色ID"
// @Param body body GoldPriorityRequest true "优先级"
// @Success 200 {object} util.Response{data=model.Character}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/characters/{id}/gold-priority [put]
func (c *CharacterController) UpdateGoldPriority(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req GoldPriorityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	character, err := c.CharacterService.UpdateGoldPriority(id, req.GoldPriority, util.GetAccountFromContext(ctx))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, character)
}

// DeleteCharacter godoc
// @Summary 删除角色
// @Description 同时删除该角色的周记录和队伍席位
// @Tags 角色
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "角色ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/characters/{id} [delete]
func (c *CharacterController) DeleteCharacter(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CharacterService.DeleteCharacter(id, util.GetAccountFromContext(ctx)); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}
