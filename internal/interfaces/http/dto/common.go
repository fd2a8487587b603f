package dto

import (
	"github.com/gin-gonic/gin"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
)

// BindPage 从查询参数绑定分页
func BindPage(c *gin.Context) *repository.Pagination {
	page := &repository.Pagination{}
	_ = c.ShouldBindQuery(page)
	page.Normalize()
	return page
}
