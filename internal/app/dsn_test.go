package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"带密码", "postgres://lock:secret@db:5432/smartlock", "postgres://lock:****@db:5432/smartlock"},
		{"无密码", "postgres://lock@db:5432/smartlock", "postgres://lock@db:5432/smartlock"},
		{"无用户", "postgres://db:5432/smartlock", "postgres://db:5432/smartlock"},
		{"密码含冒号和@", "postgres://lock:p:w@d@db:5432/smartlock", "postgres://lock:****@db:5432/smartlock"},
		{"无 scheme", "lock:secret@db:5432/smartlock", "lock:****@db:5432/smartlock"},
		{"查询参数带冒号", "postgres://lock@db:5432/smartlock?options=-c%20a:b", "postgres://lock@db:5432/smartlock?options=-c%20a:b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskDSN(tt.in))
		})
	}
}
