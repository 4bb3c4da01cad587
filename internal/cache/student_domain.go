package cache

import (
	"context"
	"strings"
	"time"
)

// StudentDomainEntry 学校域名登记快照，Found=false 表示负缓存
type StudentDomainEntry struct {
	Found             bool   `json:"found"`
	SchoolName        string `json:"school_name,omitempty"`
	Country           string `json:"country,omitempty"`
	VerificationLevel string `json:"verification_level,omitempty"`
}

func studentDomainKey(domain string) string {
	return "student_domain:" + strings.ToLower(strings.TrimSpace(domain))
}

// GetStudentDomain 读取域名快照
func GetStudentDomain(ctx context.Context, domain string) (*StudentDomainEntry, bool, error) {
	var entry StudentDomainEntry
	hit, err := GetJSON(ctx, studentDomainKey(domain), &entry)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &entry, true, nil
}

// SetStudentDomain 写入域名快照
func SetStudentDomain(ctx context.Context, domain string, entry StudentDomainEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, studentDomainKey(domain), entry, ttl)
}

// DelStudentDomain 域名变更后失效
func DelStudentDomain(ctx context.Context, domain string) error {
	return Del(ctx, studentDomainKey(domain))
}
