package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/repository"
)

const (
	discountCodeUserFragmentLen = 8
	discountCodeSuffixLen       = 4
	defaultCodeIssueRetries     = 5
	base36Alphabet              = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// GenerateDiscountCode 生成 STUDENT-<用户片段>-<时间片段> 形式的折扣码
func GenerateDiscountCode(userID string, now time.Time) string {
	fragment := userID
	if len(fragment) > discountCodeUserFragmentLen {
		fragment = fragment[:discountCodeUserFragmentLen]
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", constants.DiscountCodePrefix, fragment, stamp))
}

// discountCodeIssuer 签发折扣码，落库前检查占用，冲突时追加随机后缀重试
type discountCodeIssuer struct {
	retries int
	now     func() time.Time
}

func newDiscountCodeIssuer(retries int) *discountCodeIssuer {
	if retries <= 0 {
		retries = defaultCodeIssueRetries
	}
	return &discountCodeIssuer{retries: retries, now: time.Now}
}

// Issue repo 应为当前事务绑定的仓库
func (i *discountCodeIssuer) Issue(repo repository.StudentVerificationRepository, userID string) (string, error) {
	for attempt := 0; attempt < i.retries; attempt++ {
		code := GenerateDiscountCode(userID, i.now())
		if attempt > 0 {
			suffix, err := randomBase36(discountCodeSuffixLen)
			if err != nil {
				return "", err
			}
			code = code + suffix
		}
		taken, err := repo.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrDiscountCodeIssueFailed
}

func randomBase36(n int) (string, error) {
	max := big.NewInt(int64(len(base36Alphabet)))
	var b strings.Builder
	b.Grow(n)
	for idx := 0; idx < n; idx++ {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(base36Alphabet[v.Int64()])
	}
	return b.String(), nil
}
