package models

import "github.com/buildlab-academy/internal/constants"

// VerificationMetadata 认证依据，按 Kind 区分三种变体，只填充对应字段
type VerificationMetadata struct {
	Kind       string              `json:"method"`
	Email      *EmailEvidence      `json:"email,omitempty"`
	ThirdParty *ThirdPartyEvidence `json:"third_party,omitempty"`
	Fallback   *FallbackEvidence   `json:"fallback,omitempty"`
}

// EmailEvidence 邮箱域名识别结果
type EmailEvidence struct {
	Confidence string `json:"confidence"`
	Domain     string `json:"domain"`
	SchoolName string `json:"school_name,omitempty"`
	Country    string `json:"country,omitempty"`
}

// ThirdPartyEvidence 第三方核验会话
type ThirdPartyEvidence struct {
	Provider        string `json:"provider"`
	Token           string `json:"token"`
	Status          string `json:"status"`
	VerificationURL string `json:"verification_url,omitempty"`
}

// FallbackEvidence 第三方失败后降级为邮箱识别
type FallbackEvidence struct {
	Confidence    string `json:"confidence"`
	Domain        string `json:"domain"`
	SchoolName    string `json:"school_name,omitempty"`
	ProviderError string `json:"provider_error"`
}

// NewEmailMetadata 邮箱识别变体
func NewEmailMetadata(evidence EmailEvidence) VerificationMetadata {
	return VerificationMetadata{Kind: constants.VerificationEvidenceEmail, Email: &evidence}
}

// NewThirdPartyMetadata 第三方核验变体
func NewThirdPartyMetadata(evidence ThirdPartyEvidence) VerificationMetadata {
	return VerificationMetadata{Kind: constants.VerificationEvidenceThirdParty, ThirdParty: &evidence}
}

// NewFallbackMetadata 降级变体
func NewFallbackMetadata(evidence FallbackEvidence) VerificationMetadata {
	return VerificationMetadata{Kind: constants.VerificationEvidenceThirdPartyFallback, Fallback: &evidence}
}

// Confidence 返回邮箱识别相关变体的置信度
func (m VerificationMetadata) Confidence() string {
	switch {
	case m.Email != nil:
		return m.Email.Confidence
	case m.Fallback != nil:
		return m.Fallback.Confidence
	default:
		return ""
	}
}
