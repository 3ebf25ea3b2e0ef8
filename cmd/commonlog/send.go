package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Kargones/commonlog/internal/config"
	"github.com/Kargones/commonlog/internal/constants"
	"github.com/Kargones/commonlog/internal/di"
	"github.com/Kargones/commonlog/internal/pkg/apperrors"
	"github.com/Kargones/commonlog/internal/pkg/charset"
	"github.com/Kargones/commonlog/internal/pkg/output"
	"github.com/Kargones/commonlog/internal/pkg/tracing"
	"github.com/Kargones/commonlog/pkg/commonlog/alert"
)

// sendOptions: значения флагов команды send.
type sendOptions struct {
	configPath     string
	level          string
	message        string
	channel        string
	provider       string
	traceFile      string
	traceEncoding  string
	attachmentURL  string
	attachmentName string
}

func newSendCommand(s streams) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   constants.CmdSend,
		Short: "Отправить алерт",
		Long: `Отправляет алерт в канал, выбранный по уровню, или в канал из --channel.
Алерты уровня info только пишутся в локальный лог.

Examples:
  commonlog send --level error --message "deploy failed" --trace-file build.log
  journalctl -u billing -n 200 | commonlog send --level warn --message "billing restarted" --trace-file -
  commonlog send --level error --message "job failed" --provider lark --channel oc_123 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("output")
			return runSend(cmd.Context(), opts, format, s)
		},
	}

	bindSendFlags(cmd.Flags(), opts)
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func bindSendFlags(f *pflag.FlagSet, opts *sendOptions) {
	f.StringVarP(&opts.configPath, "config", "c", "", "путь к YAML конфигурации (по умолчанию $"+constants.EnvConfigPath+")")
	f.StringVarP(&opts.level, "level", "l", "error", "уровень алерта: info, warn, error")
	f.StringVarP(&opts.message, "message", "m", "", "текст алерта")
	f.StringVar(&opts.channel, "channel", "", "канал вместо выбранного по уровню")
	f.StringVar(&opts.provider, "provider", "", "провайдер вместо настроенного: slack или lark")
	f.StringVar(&opts.traceFile, "trace-file", "", "файл с trace, '-' для stdin")
	f.StringVar(&opts.traceEncoding, "trace-encoding", charset.Auto, "кодировка trace: auto, utf-8, cp1251, cp866, koi8-r")
	f.StringVar(&opts.attachmentURL, "attachment-url", "", "ссылка, добавляемая к алерту")
	f.StringVar(&opts.attachmentName, "attachment-name", "", "подпись блока trace")
	f.SortFlags = false
}

// runSend выполняет команду send и выводит результат.
// Возвращает *apperrors.AppError, код которого определяет exit code.
func runSend(ctx context.Context, opts *sendOptions, format string, s streams) error {
	start := time.Now()
	ctx, traceID := tracing.StartCall(ctx)

	result := &output.Result{
		Status:   output.StatusSuccess,
		Command:  constants.CmdSend,
		Metadata: &output.Metadata{TraceID: traceID, APIVersion: output.APIVersion},
	}

	format, err := output.ParseFormat(format)
	if err != nil {
		return emit(output.NewTextWriter(), s.out, result, start,
			apperrors.NewAppError(apperrors.ErrInputInvalid, err.Error(), err))
	}
	writer := output.NewWriter(format)

	level, err := alert.ParseLevel(opts.level)
	if err != nil {
		return emit(writer, s.out, result, start,
			apperrors.NewAppError(apperrors.ErrInputInvalid, err.Error(), err))
	}
	if strings.TrimSpace(opts.message) == "" {
		return emit(writer, s.out, result, start,
			apperrors.NewAppError(apperrors.ErrInputInvalid, "пустое сообщение", nil))
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return emit(writer, s.out, result, start, err)
	}

	app, cleanup, err := di.InitializeApp(cfg, di.OutputFormat(format))
	if err != nil {
		return emit(writer, s.out, result, start,
			apperrors.NewAppError(apperrors.ErrConfigValidate, "не удалось инициализировать отправку алертов", err))
	}
	defer cleanup()
	defer shutdown(app)

	trace, truncated, err := readTrace(opts.traceFile, opts.traceEncoding, s.in)
	if err != nil {
		return emit(app.OutputWriter, s.out, result, start,
			apperrors.NewAppError(apperrors.ErrInputInvalid, err.Error(), err))
	}
	if truncated {
		app.Logger.Warn("trace обрезан", "limit_bytes", constants.MaxTraceBytes)
	}

	ac := app.Alerts.Config()
	data := &output.SendData{
		Provider:       string(ac.Provider),
		Method:         string(ac.SendMethod),
		Level:          level.String(),
		Channel:        effectiveChannel(ac, level, opts.channel),
		Transmitted:    level.Transmitted(),
		TraceTruncated: truncated,
	}
	result.Data = data

	att, trace := buildAttachment(opts.attachmentURL, opts.attachmentName, trace)

	if opts.provider != "" {
		data.Provider = opts.provider
		err = app.Alerts.CustomSend(ctx, alert.ProviderID(opts.provider), level, opts.message, att, trace, opts.channel)
	} else {
		err = app.Alerts.SendToChannel(ctx, level, opts.message, att, trace, opts.channel)
	}
	if err != nil {
		if errors.Is(err, alert.ErrUnsupportedProvider) {
			result.Data = nil
			return emit(app.OutputWriter, s.out, result, start,
				apperrors.NewAppError(apperrors.ErrInputInvalid, err.Error(), err))
		}
		return emit(app.OutputWriter, s.out, result, start,
			apperrors.NewAppError(apperrors.ErrAlertSend, err.Error(), err))
	}

	return emit(app.OutputWriter, s.out, result, start, nil)
}

// buildAttachment собирает вложение из флагов. Trace с заданной подписью
// становится содержимым вложения, иначе объединяется фасадом под trace.log.
func buildAttachment(url, name, trace string) (*alert.Attachment, string) {
	switch {
	case trace != "" && name != "":
		return &alert.Attachment{URL: url, FileName: name, Content: trace}, ""
	case url != "" || name != "":
		return &alert.Attachment{URL: url, FileName: name}, trace
	default:
		return nil, trace
	}
}

// loadConfig читает конфигурацию из path или из $CL_CONFIG.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(constants.EnvConfigPath)
	}

	cfg, err := config.Load(path)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, config.ErrValidation):
		return nil, apperrors.NewAppError(apperrors.ErrConfigValidate, err.Error(), err)
	default:
		return nil, apperrors.NewAppError(apperrors.ErrConfigLoad, err.Error(), err)
	}
}

// readTrace читает trace из файла или stdin ('-') и перекодирует в UTF-8.
func readTrace(path, encoding string, stdin io.Reader) (string, bool, error) {
	if path == "" {
		return "", false, nil
	}

	var r io.Reader
	if path == constants.StdinPath {
		r = stdin
	} else {
		f, err := os.Open(path) //nolint:gosec // путь задаёт оператор CLI
		if err != nil {
			return "", false, fmt.Errorf("чтение trace: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	return charset.ReadAll(r, encoding, constants.MaxTraceBytes)
}

// effectiveChannel повторяет выбор канала фасадом, чтобы показать его в результате.
func effectiveChannel(cfg alert.Config, level alert.Level, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg.ChannelResolver != nil {
		return cfg.ChannelResolver.ResolveChannel(level)
	}
	return cfg.Channel
}

// emit записывает результат и возвращает appErr.
// Ошибка записи результата возвращается как OUTPUT.FORMAT_FAILED, если appErr == nil.
func emit(w output.Writer, out io.Writer, result *output.Result, start time.Time, appErr error) error {
	result.Metadata.DurationMs = time.Since(start).Milliseconds()

	if appErr != nil {
		result.Status = output.StatusError
		result.Error = errorInfo(appErr)
	}

	if err := w.Write(out, result); err != nil && appErr == nil {
		return apperrors.NewAppError(apperrors.ErrOutputFormat, "не удалось вывести результат", err)
	}
	return appErr
}

func errorInfo(err error) *output.ErrorInfo {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &output.ErrorInfo{Code: appErr.Code, Message: appErr.Message}
	}
	return &output.ErrorInfo{Code: apperrors.ErrAlertSend, Message: err.Error()}
}

// shutdown отправляет метрики в Pushgateway и буферизированные span-ы.
// Выполняется и после отмены ctx команды.
func shutdown(app *di.App) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := app.MetricsCollector.Push(ctx); err != nil {
		app.Logger.Warn("ошибка отправки метрик", "error", err.Error())
	}
	if err := app.Tracing.Shutdown(ctx); err != nil {
		app.Logger.Warn("ошибка завершения tracing", "error", err.Error())
	}
}
