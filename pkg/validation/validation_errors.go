package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps payload field names to zh-TW labels.
var FieldLabels = map[string]string{
	"name":              "姓名",
	"phone":             "電話",
	"student_id":        "學號",
	"department":        "系所",
	"graduation_year":   "畢業年度",
	"degree":            "學位",
	"company_name":      "公司名稱",
	"tax_id":            "統一編號",
	"contact_name":      "聯絡人",
	"reason":            "退件原因",
	"identity_document": "身分證明文件",
	"diploma":           "畢業證書",
	"business_license":  "營業登記文件",
	"logo":              "公司標誌",
	"file":              "檔案",
	"description":       "描述",
	"website":           "網站",
	"tags":              "標籤",
	"title":             "標題",
	"location":          "地點",
	"employment_type":   "工作類型",
	"salary_min":        "最低薪資",
	"salary_max":        "最高薪資",
	"cover_letter":      "自我推薦信",
	"resume_id":         "履歷",
	"job_id":            "職缺",
	"role":              "角色",
	"status":            "狀態",
}

// FormatValidationErrors turns validator errors into one message per field.
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// FirstFieldError returns the payload name and message of the first failing
// field. ok is false when err is not a validation error.
func FirstFieldError(err error) (field, message string, ok bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "", "", false
	}
	first := validationErrors[0]
	return first.Field(), formatSingleError(first), true
}

func formatSingleError(e validator.FieldError) string {
	label := Label(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: 必填", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: 至少 %s 個字元", label, param)
		}
		return fmt.Sprintf("%s: 不可小於 %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: 最多 %s 個字元", label, param)
		}
		return fmt.Sprintf("%s: 不可大於 %s", label, param)
	case "len":
		return fmt.Sprintf("%s: 必須為 %s 個字元", label, param)
	case "oneof":
		return fmt.Sprintf("%s: 必須為下列其中之一: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return fmt.Sprintf("%s: Email 格式不正確", label)
	case "url":
		return fmt.Sprintf("%s: 網址格式不正確", label)
	case "valid_name":
		return fmt.Sprintf("%s: 僅允許文字、空白與常用標點", label)
	case "valid_phone":
		return fmt.Sprintf("%s: 電話格式不正確 (7-15 位數字)", label)
	case "no_emoji":
		return fmt.Sprintf("%s: 不可包含表情符號", label)
	case "tax_id":
		return fmt.Sprintf("%s: 必須為 8 位數字", label)
	case "max_current_year":
		return fmt.Sprintf("%s: 不可晚於今年", label)
	case "gtefield":
		return fmt.Sprintf("%s: 不可小於%s", label, Label(toSnake(param)))
	default:
		return fmt.Sprintf("%s: 驗證失敗 (%s)", label, e.Tag())
	}
}

// Label returns the display label for a payload field name.
func Label(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return field
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
