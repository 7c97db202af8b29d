// Package validate 注册业务自定义校验标签（血型、紧急程度、日期、时间、联系方式）
// 同一组标签同时用于 gin 参数绑定与 service 层校验
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// BloodTypes 支持的血型
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Urgencies 用血紧急程度
var Urgencies = []string{"High", "Medium", "Low"}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Default 返回已注册自定义标签的全局校验器
func Default() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		if err := Register(instance); err != nil {
			panic(err)
		}
	})
	return instance
}

// Register 向校验器注册自定义标签
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"bloodtype": func(fl validator.FieldLevel) bool {
			return contains(BloodTypes, fl.Field().String())
		},
		"urgency": func(fl validator.FieldLevel) bool {
			return contains(Urgencies, fl.Field().String())
		},
		"date": func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01-02", fl.Field().String())
			return err == nil
		},
		"clock": func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		},
		"contact": func(fl validator.FieldLevel) bool {
			return IsContact(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册校验标签 %s 失败: %w", tag, err)
		}
	}
	return nil
}

// Struct 使用全局校验器校验结构体
func Struct(s interface{}) error {
	return Default().Struct(s)
}

// IsContact 邮箱或手机号
func IsContact(s string) bool {
	if strings.Contains(s, "@") {
		return Default().Var(s, "email") == nil
	}
	return phonePattern.MatchString(s)
}

// FirstFailure 返回第一个校验失败的字段名与标签，非校验错误返回空串
func FirstFailure(err error) (field, tag string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Tag()
	}
	return "", ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
