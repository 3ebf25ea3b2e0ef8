// Package main содержит CLI commonlog: отправку алерта в Slack или Lark
// из shell-скриптов и CI пайплайнов.
//
//	commonlog send --config commonlog.yaml --level error --message "deploy failed" --trace-file build.log
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kargones/commonlog/internal/config"
	"github.com/Kargones/commonlog/internal/constants"
	"github.com/Kargones/commonlog/internal/pkg/apperrors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// streams: потоки ввода-вывода команд.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// run выполняет CLI и возвращает exit code.
// Ошибки разбора флагов и аргументов считаются ошибками ввода (exit 2).
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(streams{in: stdin, out: stdout, err: stderr})
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitOK
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.ExitCode(err)
	}

	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return apperrors.ExitInvalidInput
}

func newRootCommand(s streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "Отправка алертов в Slack и Lark",
		Long: `commonlog отправляет алерты в Slack или Lark через webhook, HTTP relay или Web API.

Конфигурация читается из YAML файла (--config или ` + constants.EnvConfigPath + `)
и переменных окружения CL_*. Переменные окружения имеют приоритет.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(s.in)
	cmd.SetOut(s.out)
	cmd.SetErr(s.err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errInvalidFlags, err)
	})

	cmd.PersistentFlags().StringP("output", "o", constants.FormatText, "формат результата: text или json")
	cmd.SetUsageTemplate(cmd.UsageTemplate() + "\nПеременные окружения:\n" + config.Description())

	cmd.AddCommand(newSendCommand(s))
	cmd.AddCommand(newVersionCommand(s))
	return cmd
}

var errInvalidFlags = errors.New("invalid flags")
