package sheerid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrConfigMissing 缺少凭据，属于致命错误，不重试也不降级
	ErrConfigMissing   = errors.New("sheerid config missing")
	ErrRequestFailed   = errors.New("sheerid request failed")
	ErrResponseInvalid = errors.New("sheerid response invalid")
)

const (
	defaultAPIBaseURL = "https://services.sheerid.com/rest/v2"
	defaultTimeout    = 10 * time.Second
	defaultBackoff    = 300 * time.Millisecond
	maxRetries        = 5
)

// 会话状态
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

// Config SheerID 接入配置
type Config struct {
	APIBaseURL string
	APIToken   string
	ProgramID  string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// PersonInfo 申请人信息
type PersonInfo struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

// InitiateInput 发起核验输入
type InitiateInput struct {
	Person         PersonInfo
	SchoolName     string
	StudentID      string
	GraduationDate string
}

// Result 核验会话
type Result struct {
	Token           string
	Status          string
	VerificationURL string
	SchoolName      string
	Enrollment      string
	GraduationDate  string
}

type verificationRequest struct {
	ProgramID        string            `json:"programId"`
	PersonInfo       PersonInfo        `json:"personInfo"`
	OrganizationInfo organizationInfo  `json:"organizationInfo"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

type organizationInfo struct {
	Name string `json:"name,omitempty"`
}

type verificationResponse struct {
	Token           string `json:"token"`
	Status          string `json:"status"`
	VerificationURL string `json:"verificationUrl"`
	Metadata        struct {
		SchoolName       string `json:"schoolName"`
		EnrollmentStatus string `json:"enrollmentStatus"`
		GraduationDate   string `json:"graduationDate"`
	} `json:"metadata"`
}

// Client SheerID REST 客户端
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New 创建客户端，缺省字段使用默认值
func New(cfg Config) *Client {
	cfg.normalize()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured 凭据是否齐全
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIToken != "" && c.cfg.ProgramID != ""
}

// Initiate 发起核验会话
func (c *Client) Initiate(ctx context.Context, input InitiateInput) (*Result, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: api_token and program_id are required", ErrConfigMissing)
	}
	payload := verificationRequest{
		ProgramID:        c.cfg.ProgramID,
		PersonInfo:       input.Person,
		OrganizationInfo: organizationInfo{Name: strings.TrimSpace(input.SchoolName)},
	}
	if input.StudentID != "" || input.GraduationDate != "" {
		payload.Metadata = map[string]string{}
		if input.StudentID != "" {
			payload.Metadata["studentId"] = input.StudentID
		}
		if input.GraduationDate != "" {
			payload.Metadata["graduationDate"] = input.GraduationDate
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request", ErrRequestFailed)
	}
	return c.call(ctx, http.MethodPost, "/verification", body)
}

// Status 查询核验会话，每次都实时请求
func (c *Client) Status(ctx context.Context, token string) (*Result, error) {
	if c == nil || c.cfg.APIToken == "" {
		return nil, fmt.Errorf("%w: api_token is required", ErrConfigMissing)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrRequestFailed)
	}
	return c.call(ctx, http.MethodGet, "/verification/"+url.PathEscape(token), nil)
}

func (c *Client) call(ctx context.Context, method, path string, body []byte) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// 超时覆盖整个调用，含重试与退避
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrRequestFailed, ctx.Err())
			case <-time.After(c.cfg.Backoff * time.Duration(attempt)):
			}
		}
		respBody, status, err := c.do(ctx, method, path, body)
		if err != nil {
			lastErr = err
			continue
		}
		if status >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("%w: http status %d", ErrRequestFailed, status)
			continue
		}
		if status >= http.StatusBadRequest {
			return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, status)
		}
		return decodeResult(respBody)
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBaseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	return respBody, resp.StatusCode, nil
}

func decodeResult(body []byte) (*Result, error) {
	var parsed verificationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	token := strings.TrimSpace(parsed.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: token missing", ErrResponseInvalid)
	}
	return &Result{
		Token:           token,
		Status:          normalizeStatus(parsed.Status),
		VerificationURL: strings.TrimSpace(parsed.VerificationURL),
		SchoolName:      strings.TrimSpace(parsed.Metadata.SchoolName),
		Enrollment:      strings.TrimSpace(parsed.Metadata.EnrollmentStatus),
		GraduationDate:  strings.TrimSpace(parsed.Metadata.GraduationDate),
	}, nil
}

func normalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StatusVerified:
		return StatusVerified
	case StatusRejected:
		return StatusRejected
	case StatusExpired:
		return StatusExpired
	default:
		return StatusPending
	}
}

func (c *Config) normalize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	c.APIToken = strings.TrimSpace(c.APIToken)
	c.ProgramID = strings.TrimSpace(c.ProgramID)
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.MaxRetries > maxRetries {
		c.MaxRetries = maxRetries
	}
	if c.Backoff <= 0 {
		c.Backoff = defaultBackoff
	}
}
