package common_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-scan/internal/common"
)

func TestWriteErrorUsesAppErrorMetadata(t *testing.T) {
	base := errors.New("line 7 out of range")
	err := common.NewAppError("NOT_FOUND", "cart line not found", http.StatusNotFound, base).WithDetails(map[string]int{"index": 7})

	require.ErrorIs(t, err, base)

	rec := httptest.NewRecorder()
	common.WriteError(rec, err)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":{"code":"NOT_FOUND","message":"cart line not found","details":{"index":7}}}`, rec.Body.String())
}

func TestWriteErrorFallsBackToInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	common.WriteError(rec, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), `"INTERNAL"`)
}

func TestStatusConstructors(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:5432: connection refused")
	cases := []struct {
		err    *common.AppError
		status int
		code   string
	}{
		{common.BadRequest("code is required", nil), http.StatusBadRequest, "BAD_REQUEST"},
		{common.NotFound("product not found", nil), http.StatusNotFound, "NOT_FOUND"},
		{common.Unavailable("CATALOG_UNAVAILABLE", "catalog unavailable", cause), http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		common.WriteError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code)
		require.Contains(t, rec.Body.String(), `"code":"`+tc.code+`"`)
	}

	require.Equal(t, "CATALOG_UNAVAILABLE: "+cause.Error(), cases[2].err.Error())
	require.Equal(t, "BAD_REQUEST: code is required", cases[0].err.Error())
	require.NotContains(t, renderBody(t, cases[2].err), "connection refused")
}

func renderBody(t *testing.T, err error) string {
	t.Helper()
	rec := httptest.NewRecorder()
	common.WriteError(rec, err)
	return rec.Body.String()
}
