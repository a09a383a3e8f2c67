package main

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func paginate(page, limit, total int) pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// pageParams reads ?page and ?limit, returning the derived offset.
func pageParams(c *gin.Context, defLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit < 1 || limit > 100 {
		limit = defLimit
	}
	return page, limit, (page - 1) * limit
}
