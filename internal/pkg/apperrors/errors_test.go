package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	cause := errors.New("HTTP 500")

	withCause := NewAppError(ErrAlertSend, "алерт не доставлен", cause)
	assert.Equal(t, "ALERT.SEND_FAILED: алерт не доставлен (HTTP 500)", withCause.Error())

	withoutCause := NewAppError(ErrInputInvalid, "пустое сообщение", nil)
	assert.Equal(t, "INPUT.INVALID: пустое сообщение", withoutCause.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("transport error")
	appErr := NewAppError(ErrAlertSend, "алерт не доставлен", fmt.Errorf("slack: %w", sentinel))

	assert.ErrorIs(t, appErr, sentinel)

	var target *AppError
	require.ErrorAs(t, fmt.Errorf("send: %w", appErr), &target)
	assert.Equal(t, ErrAlertSend, target.Code)
}

func TestAppError_JSON_HidesCause(t *testing.T) {
	appErr := NewAppError(ErrConfigLoad, "не удалось загрузить конфигурацию", errors.New("token=xoxb-secret"))

	data, err := json.Marshal(appErr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"CONFIG.LOAD_FAILED","message":"не удалось загрузить конфигурацию"}`, string(data))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"без ошибки", nil, ExitOK},
		{"загрузка конфигурации", NewAppError(ErrConfigLoad, "m", nil), ExitInvalidInput},
		{"валидация конфигурации", NewAppError(ErrConfigValidate, "m", nil), ExitInvalidInput},
		{"неверный ввод", fmt.Errorf("wrap: %w", NewAppError(ErrInputInvalid, "m", nil)), ExitInvalidInput},
		{"отправка", NewAppError(ErrAlertSend, "m", nil), ExitSendFailed},
		{"вывод", NewAppError(ErrOutputFormat, "m", nil), ExitSendFailed},
		{"обычная ошибка", errors.New("boom"), ExitSendFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestAppError_Category(t *testing.T) {
	assert.Equal(t, "CONFIG", NewAppError(ErrConfigValidate, "", nil).Category())
	assert.Equal(t, "BROKEN", NewAppError("BROKEN", "", nil).Category())
}
