package controller

import (
	"raid_checker_backend/internal/service"
	"raid_checker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService       *service.AdminService
	MaintenanceService *service.MaintenanceService
}

func NewAdminController(adminService *service.AdminService, maintenanceService *service.MaintenanceService) *AdminController {
	return &AdminController{AdminService: adminService, MaintenanceService: maintenanceService}
}

// Stats godoc
// @Summary 系统统计
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.SystemStats}
// @Failure 403 {object} util.Response
// @Router /api/admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.AdminService.Stats()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// ListAccounts godoc
// @Summary 账号列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.AccountStats}
// @Router /api/admin/accounts [get]
func (c *AdminController) ListAccounts(ctx *gin.Context) {
	accounts, err := c.AdminService.ListAccounts(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, accounts)
}

// PartyHistory godoc
// @Summary 全部队伍完成记录
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.PartyHistoryEntry}
// @Router /api/admin/parties [get]
func (c *AdminController) PartyHistory(ctx *gin.Context) {
	history, err := c.AdminService.PartyHistory()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// DeleteAccount godoc
// @Summary 删除账号
// @Description 连同角色和周记录一起删除，master 账号不可删除
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "账号ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/accounts/{id} [delete]
func (c *AdminController) DeleteAccount(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.AdminService.DeleteAccount(id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// PurgeCurrentWeek godoc
// @Summary 清空本周数据
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.PurgeResult}
// @Router /api/admin/week [delete]
func (c *AdminController) PurgeCurrentWeek(ctx *gin.Context) {
	result, err := c.AdminService.PurgeCurrentWeek()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// SyncAccount godoc
// @Summary 同步账号全部角色
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "账号ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/accounts/{id}/sync [post]
func (c *AdminController) SyncAccount(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	synced, err := c.AdminService.SyncAccount(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"accountId": id, "synced": synced})
}

// Prune godoc
// @Summary 清理过期周数据
// @Description 立即执行一次保留期清理，不影响本周
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/prune [post]
func (c *AdminController) Prune(ctx *gin.Context) {
	weekly, parties, err := c.MaintenanceService.PruneExpired()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"weeklyCompletions": weekly, "partyCompletions": parties})
}
