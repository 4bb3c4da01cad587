package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buildlab-academy/internal/http/response"

	"github.com/gin-gonic/gin"
)

func TestRespondMappedErrorMatchesWrappedTarget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := errors.New("duplicate")
	rules := ConcatMappedErrors(
		[]MappedError{{Target: target, Code: response.CodeConflict, Key: "error.usage_recorded"}},
		[]MappedError{{Target: target, Code: response.CodeBadRequest, Key: "error.bad_request"}},
	)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "wrapped", err: fmt.Errorf("record usage: %w", target), want: response.CodeConflict},
		{name: "fallback", err: errors.New("boom"), want: response.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			RespondMappedError(c, tc.err, rules, response.CodeInternal, "error.internal")

			if rec.Code != http.StatusOK {
				t.Fatalf("unexpected http status: %d", rec.Code)
			}
			var body response.Response
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body failed: %v", err)
			}
			if body.StatusCode != tc.want {
				t.Fatalf("want status_code %d got %d", tc.want, body.StatusCode)
			}
		})
	}
}
