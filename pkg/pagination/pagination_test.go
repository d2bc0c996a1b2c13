package pagination_test

import (
	"net/http/httptest"
	"testing"

	"fieldops/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(t *testing.T, query string) *pagination.PageParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/accounts"+query, nil)
	return pagination.ParsePageParams(c)
}

func TestParsePageParamsDefaults(t *testing.T) {
	p := paramsFor(t, "")
	assert.Equal(t, pagination.DefaultPage, p.Page)
	assert.Equal(t, pagination.DefaultPageSize, p.PageSize)
}

func TestParsePageParamsInvalidValues(t *testing.T) {
	p := paramsFor(t, "?page=abc&page_size=-5")
	assert.Equal(t, pagination.DefaultPage, p.Page)
	assert.Equal(t, pagination.DefaultPageSize, p.PageSize)

	p = paramsFor(t, "?page=0&page_size=xyz")
	assert.Equal(t, pagination.DefaultPage, p.Page)
	assert.Equal(t, pagination.DefaultPageSize, p.PageSize)
}

func TestParsePageParamsCapsPageSize(t *testing.T) {
	p := paramsFor(t, "?page=3&page_size=5000")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, pagination.MaxPageSize, p.PageSize)
}

func TestNewPageInfo(t *testing.T) {
	info := pagination.NewPageInfo(2, 20, 45)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNext)

	last := pagination.NewPageInfo(3, 20, 45)
	assert.False(t, last.HasNext)

	empty := pagination.NewPageInfo(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
