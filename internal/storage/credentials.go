package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// 密码存储位置与出厂值
const (
	Namespace       = "smart-lock"
	PasswordKey     = "password"
	DefaultPassword = "123456"
	PasswordLength  = 6
)

// ErrInvalidPassword 密码不是 6 位 ASCII 数字
var ErrInvalidPassword = errors.New("storage: password must be 6 ascii digits")

// Credentials 访问密码
type Credentials struct {
	kv  KV
	log *zap.Logger
}

// NewCredentials 创建密码存取器
func NewCredentials(kv KV, log *zap.Logger) *Credentials {
	if log == nil {
		log = zap.NewNop()
	}
	return &Credentials{kv: kv, log: log}
}

// EnsureDefault 首次启动写入出厂密码，已存在时不覆盖
func (c *Credentials) EnsureDefault(ctx context.Context) error {
	created, err := c.kv.SetNX(ctx, Namespace, PasswordKey, DefaultPassword)
	if err != nil {
		return fmt.Errorf("ensure default password: %w", err)
	}
	if created {
		c.log.Info("factory default password written")
	}
	return nil
}

// Load 读取当前密码
func (c *Credentials) Load(ctx context.Context) ([]byte, error) {
	v, err := c.kv.Get(ctx, Namespace, PasswordKey)
	if err != nil {
		return nil, fmt.Errorf("load password: %w", err)
	}
	if err := ValidatePassword(v); err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// Change 修改密码
func (c *Credentials) Change(ctx context.Context, pw string) error {
	if err := ValidatePassword(pw); err != nil {
		return err
	}
	if err := c.kv.Set(ctx, Namespace, PasswordKey, pw); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	c.log.Info("password changed")
	return nil
}

// ValidatePassword 校验 6 位 ASCII 数字
func ValidatePassword(pw string) error {
	if len(pw) != PasswordLength {
		return ErrInvalidPassword
	}
	for i := 0; i < len(pw); i++ {
		if pw[i] < '0' || pw[i] > '9' {
			return ErrInvalidPassword
		}
	}
	return nil
}
