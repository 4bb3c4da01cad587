package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestTFallsBackToDefaultLocale(t *testing.T) {
	require.Equal(t, "折扣码已过期", T(LocaleZH, "error.discount_code_expired"))
	// zh-TW 缺失条目回退英文
	require.Equal(t, T(LocaleEN, "error.usage_recorded"), T(LocaleTW, "error.usage_recorded"))
	require.Equal(t, "missing.key", T(LocaleEN, "missing.key"))
}

func TestSprintf(t *testing.T) {
	got := Sprintf(LocaleEN, "student.check.recognized_school", "jane@college.edu", "Example College")
	require.Equal(t, "Great! jane@college.edu appears to be a student email from Example College.", got)
}

func TestResolveLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query  string
		header string
		want   string
	}{
		{"", "", LocaleEN},
		{"", "zh-CN,zh;q=0.9", LocaleZH},
		{"", "zh-HK;q=0.8", LocaleTW},
		{"en", "zh-CN", LocaleEN},
		{"", "fr-FR", LocaleEN},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		target := "/"
		if tc.query != "" {
			target += "?lang=" + tc.query
		}
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		if tc.header != "" {
			c.Request.Header.Set("Accept-Language", tc.header)
		}
		require.Equal(t, tc.want, ResolveLocale(c), "query=%q header=%q", tc.query, tc.header)
	}
}
