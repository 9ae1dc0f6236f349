package handle

import (
	"github.com/gin-gonic/gin"
)

type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func (p Pagination) GetLimit() int {
	if p.Size < 1 || p.Size > 100 {
		return 100
	}
	return p.Size
}

func (p Pagination) GetOffset() int {
	page := p.Page
	if p.Page < 1 {
		page = 1
	}
	size := p.GetLimit()
	return (page - 1) * size
}

func GetClientIp(ctx *gin.Context) (string, string) {
	clientIP := ctx.Request.Header.Get("X-Real-IP")
	return clientIP, ctx.Request.RemoteAddr
}
