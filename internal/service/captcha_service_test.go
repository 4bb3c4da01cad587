package service

import (
	"errors"
	"testing"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/constants"
)

func TestCaptchaVerifySkipsDisabledScene(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Enabled: true, Scenes: config.CaptchaSceneConfig{AdminLogin: true}})
	if err := svc.Verify(constants.CaptchaSceneNewsletterSubscribe, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled scene should pass, got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("expected ErrCaptchaRequired, got %v", err)
	}
}

func TestCaptchaVerifyImageRoundTrip(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Enabled: true, Scenes: config.CaptchaSceneConfig{AdminLogin: true}})
	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if challenge.CaptchaID == "" || challenge.ImageBase64 == "" {
		t.Fatalf("empty challenge: %+v", challenge)
	}
	if err := svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: "wrong"}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("expected ErrCaptchaInvalid, got %v", err)
	}
	// 错误校验后同样作废，需要重新生成
	challenge, err = svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	answer := svc.imageStore().Get(challenge.CaptchaID, false)
	if err := svc.Verify(constants.CaptchaSceneAdminLogin, CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: answer}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}
