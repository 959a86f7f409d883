package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/byebilly/waitlist-api/internal/models"
	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestErrorTypedKinds(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrInvalidInput, "email is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"kind":"InvalidInput","error":"email is required"}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestErrorUntypedHidesDetail(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"kind":"Internal","error":"internal server error"}`, w.Body.String())
}

func TestPaginated(t *testing.T) {
	c, w := newContext()
	Paginated(c, []string{"a"}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["a"],"pagination":{"page":1,"pageSize":20,"totalCount":1}}`, w.Body.String())
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "waitlist-2026-10-18.csv", "text/csv; charset=utf-8", []byte("Name\n"))

	assert.Equal(t, `attachment; filename="waitlist-2026-10-18.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name\n", w.Body.String())
}
