package controller

import (
	"raid_checker_backend/internal/service"
	"raid_checker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AccountController struct {
	AccountService *service.AccountService
}

func NewAccountController(accountService *service.AccountService) *AccountController {
	return &AccountController{AccountService: accountService}
}

// Summary godoc
// @Summary 账号周汇总
// @Description 每个角色的本周金币和完成率，总金币不含优先级 7-10 的角色
// @Tags 账号
// @Produce json
// @Security ApiKeyAuth
// @Param accountId path int true "账号ID"
// @Success 200 {object} util.Response{data=service.AccountSummary}
// @Failure 404 {object} util.Response
// @Router /api/accounts/{accountId}/summary [get]
func (c *AccountController) Summary(ctx *gin.Context) {
	accountID, ok := paramID(ctx, "accountId")
	if !ok {
		return
	}
	summary, err := c.AccountService.Summary(accountID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// RaidComparison godoc
// @Summary 副本对比表
// @Tags 账号
// @Produce json
// @Security ApiKeyAuth
// @Param accountId path int true "账号ID"
// @Success 200 {object} util.Response{data=[]service.RaidComparisonRow}
// @Failure 404 {object} util.Response
// @Router /api/accounts/{accountId}/raid-comparison [get]
func (c *AccountController) RaidComparison(ctx *gin.Context) {
	accountID, ok := paramID(ctx, "accountId")
	if !ok {
		return
	}
	rows, err := c.AccountService.RaidComparison(accountID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
