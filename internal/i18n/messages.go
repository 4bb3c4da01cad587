package i18n

var catalog = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":                   "Invalid request parameters",
		"error.unauthorized":                  "Authentication required",
		"error.forbidden":                     "Permission denied",
		"error.not_found":                     "Resource not found",
		"error.internal":                      "Internal server error",
		"error.rate_limited":                  "Too many requests, please try again later",
		"error.invalid_email":                 "Please provide a valid email address",
		"error.applicant_required":            "Email, first name, and last name are required",
		"error.method_invalid":                "Verification method must be email or third-party",
		"error.graduation_date_invalid":       "Graduation date must use the YYYY-MM-DD format",
		"error.verification_not_found":        "Verification not found",
		"error.verification_conflict":         "Another verification is already active for this user",
		"error.admin_action_invalid":          "This action is not allowed for the current verification status",
		"error.provider_not_configured":       "Third-party verification is not configured",
		"error.code_issue_failed":             "Unable to issue a discount code, please retry",
		"error.discount_code_required":        "Discount code is required",
		"error.discount_code_invalid":         "Invalid or expired discount code",
		"error.discount_code_expired":         "This discount code has expired",
		"error.order_amount_invalid":          "Order amount must be greater than zero",
		"error.usage_fields_required":         "Verification ID, order ID, and amounts are required",
		"error.usage_amounts_invalid":         "Amounts must be non-negative and the final amount must equal the original minus the discount",
		"error.usage_not_owned":               "Invalid verification ID",
		"error.usage_recorded":                "Discount usage for this order has already been recorded",
		"error.newsletter_subscribed":         "This email is already subscribed to our newsletter",
		"error.newsletter_not_found":          "Subscription not found",
		"error.newsletter_content":            "Subject and content are required",
		"error.domain_invalid":                "Domain must look like @school.edu",
		"error.domain_exists":                 "This domain is already registered",
		"error.login_invalid":                 "Invalid username or password",
		"error.captcha_required":              "Captcha is required",
		"error.captcha_invalid":               "Captcha is invalid",
		"error.email_unavailable":             "Email service is unavailable",
		"error.queue_unavailable":             "Background queue is unavailable",
		"error.user_identity_required":        "User identity is required",
		"error.password_min_length":           "Password must be at least %d characters",
		"error.password_require_upper":        "Password must contain an uppercase letter",
		"error.password_require_lower":        "Password must contain a lowercase letter",
		"error.password_require_number":       "Password must contain a number",
		"error.password_require_special":      "Password must contain a special character",
		"student.check.recognized":            "Great! %s appears to be a student email.",
		"student.check.recognized_school":     "Great! %s appears to be a student email from %s.",
		"student.check.unrecognized":          "This email domain is not recognized as a student email. You can still apply for verification with additional documentation.",
		"student.apply.verified":              "Congratulations! Your student status has been verified. You now have access to a %d%% student discount!",
		"student.apply.pending":               "Your verification application has been submitted and is under review. You will be notified once it's processed.",
		"student.apply.pending_url":           " You may also complete additional verification steps using the provided link.",
		"student.apply.already_verified":      "You already have a verified student discount!",
		"student.apply.already_pending":       "Your verification is still pending. Please check back later.",
		"student.discount.valid":              "Student discount applied successfully",
		"student.usage.recorded":              "Discount usage recorded successfully",
		"newsletter.subscribed":               "Thank you for subscribing! Please check your email for a welcome message.",
		"newsletter.reactivated":              "Welcome back! Your newsletter subscription has been reactivated.",
		"newsletter.unsubscribed":             "You have been unsubscribed from our newsletter.",
		"email.verification_approved.subject": "[Build Lab Academy] Your student discount is ready",
		"email.verification_approved.body":    "Hi %s,\n\nYour student status has been verified. Use the code below at checkout to save %d%%:\n\n%s\n\nThe code is valid until %s.\n\nBuild Lab Academy",
		"email.newsletter_welcome.subject":    "[Build Lab Academy] Welcome to our newsletter",
		"email.newsletter_welcome.body":       "Thanks for subscribing to the Build Lab Academy newsletter. You will receive course updates, student offers, and event news.\n\nUnsubscribe at any time: %s",
		"email.newsletter_broadcast.footer":   "\n\n--\nYou are receiving this email because you subscribed to the Build Lab Academy newsletter.",
	},
	LocaleZH: {
		"error.bad_request":               "请求参数错误",
		"error.unauthorized":              "未登录或登录已失效",
		"error.forbidden":                 "无权限访问",
		"error.not_found":                 "资源不存在",
		"error.internal":                  "服务器内部错误",
		"error.rate_limited":              "请求过于频繁，请稍后再试",
		"error.invalid_email":             "请输入有效的邮箱地址",
		"error.applicant_required":        "邮箱、名和姓为必填项",
		"error.method_invalid":            "认证方式只能是 email 或 third-party",
		"error.graduation_date_invalid":   "毕业日期格式应为 YYYY-MM-DD",
		"error.verification_not_found":    "认证记录不存在",
		"error.verification_conflict":     "该用户已有进行中的认证",
		"error.admin_action_invalid":      "当前认证状态不允许该操作",
		"error.provider_not_configured":   "第三方核验未配置",
		"error.code_issue_failed":         "折扣码签发失败，请重试",
		"error.discount_code_required":    "请输入折扣码",
		"error.discount_code_invalid":     "折扣码无效或已过期",
		"error.discount_code_expired":     "折扣码已过期",
		"error.order_amount_invalid":      "订单金额必须大于 0",
		"error.usage_fields_required":     "认证 ID、订单号与金额为必填项",
		"error.usage_amounts_invalid":     "金额不能为负，且实付金额应等于原价减去优惠",
		"error.usage_not_owned":           "认证 ID 无效",
		"error.usage_recorded":            "该订单的折扣使用已记录",
		"error.newsletter_subscribed":     "该邮箱已订阅",
		"error.newsletter_not_found":      "订阅不存在",
		"error.newsletter_content":        "主题与内容不能为空",
		"error.domain_invalid":            "域名格式应为 @school.edu",
		"error.domain_exists":             "该域名已登记",
		"error.login_invalid":             "用户名或密码错误",
		"error.captcha_required":          "请输入验证码",
		"error.captcha_invalid":           "验证码错误",
		"error.email_unavailable":         "邮件服务不可用",
		"error.queue_unavailable":         "异步队列不可用",
		"error.user_identity_required":    "缺少用户身份",
		"error.password_min_length":       "密码长度至少 %d 位",
		"error.password_require_upper":    "密码需包含大写字母",
		"error.password_require_lower":    "密码需包含小写字母",
		"error.password_require_number":   "密码需包含数字",
		"error.password_require_special":  "密码需包含特殊字符",
		"student.check.recognized":        "%s 被识别为学生邮箱。",
		"student.check.recognized_school": "%s 被识别为 %s 的学生邮箱。",
		"student.check.unrecognized":      "该邮箱域名未被识别为学生邮箱，您仍可提交附加材料申请认证。",
		"student.apply.verified":          "恭喜！您的学生身份已通过认证，可享受 %d%% 学生折扣！",
		"student.apply.pending":           "认证申请已提交，正在审核中，处理完成后将通知您。",
		"student.apply.pending_url":       "您也可以通过提供的链接完成补充核验。",
		"student.apply.already_verified":  "您已拥有有效的学生折扣！",
		"student.apply.already_pending":   "您的认证仍在审核中，请稍后查看。",
		"student.discount.valid":          "学生折扣已生效",
		"student.usage.recorded":          "折扣使用已记录",
		"newsletter.subscribed":           "感谢订阅！欢迎邮件已发送，请查收。",
		"newsletter.reactivated":          "欢迎回来！您的订阅已重新启用。",
		"newsletter.unsubscribed":         "您已取消订阅。",
	},
	LocaleTW: {
		"error.bad_request":              "請求參數錯誤",
		"error.unauthorized":             "未登入或登入已失效",
		"error.forbidden":                "無權限訪問",
		"error.not_found":                "資源不存在",
		"error.internal":                 "伺服器內部錯誤",
		"error.rate_limited":             "請求過於頻繁，請稍後再試",
		"error.invalid_email":            "請輸入有效的郵箱地址",
		"error.discount_code_invalid":    "折扣碼無效或已過期",
		"error.discount_code_expired":    "折扣碼已過期",
		"student.apply.already_verified": "您已擁有有效的學生折扣！",
		"student.apply.already_pending":  "您的認證仍在審核中，請稍後查看。",
		"newsletter.subscribed":          "感謝訂閱！歡迎郵件已寄出，請查收。",
		"newsletter.reactivated":         "歡迎回來！您的訂閱已重新啟用。",
	},
}
